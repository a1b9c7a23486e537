package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/SPLSaul/DulceTentacionApp2.0/internal/domain"
)

// PaymentAPI is the typed wrapper over the payments endpoints. Calls go
// through a circuit breaker so a struggling payment upstream sheds load
// quickly; business rejections do not count as breaker failures.
type PaymentAPI struct {
	c  *Client
	cb *gobreaker.CircuitBreaker[any]
}

func NewPaymentAPI(c *Client) *PaymentAPI {
	return &PaymentAPI{
		c: c,
		cb: gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:    "payments",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 5
			},
			IsSuccessful: func(err error) bool {
				if err == nil {
					return true
				}
				re := AsError(err)
				return re != nil && re.Kind == KindBusiness
			},
		}),
	}
}

func (a *PaymentAPI) CreateIntent(ctx context.Context, req domain.PaymentIntentRequest) (*domain.PaymentIntent, error) {
	v, err := a.cb.Execute(func() (any, error) {
		var intent domain.PaymentIntent
		if err := a.c.do(ctx, http.MethodPost, "/api/payments/create-payment-intent", "", req, &intent); err != nil {
			return nil, err
		}
		return &intent, nil
	})
	if err != nil {
		return nil, breakerError(err)
	}
	return v.(*domain.PaymentIntent), nil
}

func (a *PaymentAPI) ConfirmPayment(ctx context.Context, req domain.ConfirmPaymentRequest) (*domain.PaymentConfirmation, error) {
	v, err := a.cb.Execute(func() (any, error) {
		var conf domain.PaymentConfirmation
		if err := a.c.do(ctx, http.MethodPost, "/api/payments/confirm-payment", "", req, &conf); err != nil {
			return nil, err
		}
		return &conf, nil
	})
	if err != nil {
		return nil, breakerError(err)
	}
	return v.(*domain.PaymentConfirmation), nil
}

func (a *PaymentAPI) PaymentMethods(ctx context.Context, userID int64) ([]domain.PaymentMethod, error) {
	v, err := a.cb.Execute(func() (any, error) {
		var methods []domain.PaymentMethod
		query := fmt.Sprintf("userId=%d", userID)
		if err := a.c.do(ctx, http.MethodGet, "/api/payments/payment-methods", query, nil, &methods); err != nil {
			return nil, err
		}
		return methods, nil
	})
	if err != nil {
		return nil, breakerError(err)
	}
	return v.([]domain.PaymentMethod), nil
}

// breakerError maps an open breaker to a transient failure; anything else
// passes through already classified.
func breakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &Error{
			Kind:    KindTransient,
			Message: "Server error. Please try again later.",
			Err:     err,
		}
	}
	return err
}
