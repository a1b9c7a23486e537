package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SPLSaul/DulceTentacionApp2.0/internal/cartsync"
	"github.com/SPLSaul/DulceTentacionApp2.0/internal/checkout"
	"github.com/SPLSaul/DulceTentacionApp2.0/internal/config"
	"github.com/SPLSaul/DulceTentacionApp2.0/internal/httpapi"
	"github.com/SPLSaul/DulceTentacionApp2.0/internal/remote"
)

func main() {
	cfg := config.Load()

	client, err := remote.NewClient("storefront-api", cfg.APIBaseURL, cfg.RequestTimeout)
	if err != nil {
		log.Fatalf("failed to build api client: %v", err)
	}

	cartAPI := remote.NewCartAPI(client)
	paymentAPI := remote.NewPaymentAPI(client)

	synchronizer := cartsync.NewSynchronizer(cartAPI)
	orchestrator := checkout.NewOrchestrator(paymentAPI, synchronizer, checkout.Options{
		MerchantName: cfg.MerchantName,
		Currency:     cfg.Currency,
	})

	router := httpapi.NewRouter(httpapi.Deps{
		Carts:          synchronizer,
		Binder:         synchronizer,
		Checkouts:      orchestrator,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("storefront starting on :%s (upstream %s)", cfg.HTTPPort, cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
	log.Println("server exited")
}
