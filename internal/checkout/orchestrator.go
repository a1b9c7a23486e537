package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/SPLSaul/DulceTentacionApp2.0/internal/cartsync"
	"github.com/SPLSaul/DulceTentacionApp2.0/internal/domain"
	"github.com/SPLSaul/DulceTentacionApp2.0/internal/remote"
)

var (
	ErrInvalidState = errors.New("operation not allowed in current checkout state")
	ErrEmptyCart    = errors.New("cart is empty, nothing to checkout")
)

// PaymentAPI is the remote surface the orchestrator drives.
type PaymentAPI interface {
	CreateIntent(ctx context.Context, req domain.PaymentIntentRequest) (*domain.PaymentIntent, error)
	ConfirmPayment(ctx context.Context, req domain.ConfirmPaymentRequest) (*domain.PaymentConfirmation, error)
	PaymentMethods(ctx context.Context, userID int64) ([]domain.PaymentMethod, error)
}

// Carts is the synchronizer surface the orchestrator needs: it only reads the
// snapshot and delegates clearing after a successful payment.
type Carts interface {
	Snapshot() *domain.Cart
	UserID() int64
	Clear(ctx context.Context) error
}

// State is the checkout state machine's current phase plus its payload. The
// payload fields are only meaningful for the phases that set them.
type State struct {
	Phase          domain.CheckoutPhase `json:"phase"`
	ClientSecret   string               `json:"clientSecret,omitempty"`
	IntentID       string               `json:"paymentIntentId,omitempty"`
	Amount         int64                `json:"amount,omitempty"`
	Currency       string               `json:"currency,omitempty"`
	Message        string               `json:"message,omitempty"`
	Canceled       bool                 `json:"canceled,omitempty"` // Failed by user cancellation, not an error
	RequiresAction bool                 `json:"requiresAction,omitempty"`
	NextAction     string               `json:"nextAction,omitempty"`
	PaymentID      string               `json:"paymentId,omitempty"`
	OrderID        string               `json:"orderId,omitempty"`
	ReceiptURL     string               `json:"receiptUrl,omitempty"`
}

type Options struct {
	MerchantName string
	Currency     string
}

// Orchestrator drives one checkout attempt at a time through the payment
// lifecycle. It owns payment intent and method state; the cart snapshot is
// read-only from here.
type Orchestrator struct {
	api  PaymentAPI
	cart Carts
	opts Options

	op sync.Mutex // one lifecycle operation at a time

	mu       sync.RWMutex
	state    State
	methods  []domain.PaymentMethod
	cancel   context.CancelFunc
	onChange func()
}

func NewOrchestrator(api PaymentAPI, cart Carts, opts Options) *Orchestrator {
	if opts.Currency == "" {
		opts.Currency = "mxn"
	}
	return &Orchestrator{
		api:   api,
		cart:  cart,
		opts:  opts,
		state: State{Phase: domain.CheckoutIdle},
	}
}

// SetOnChange registers a hook invoked after every state change. Must be set
// before the orchestrator is shared.
func (o *Orchestrator) SetOnChange(fn func()) {
	o.onChange = fn
}

// State returns the current phase and payload without blocking on in-flight
// work.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Methods returns the last loaded payment-method list.
func (o *Orchestrator) Methods() []domain.PaymentMethod {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.methods
}

// StartCheckout begins a new attempt: it validates the preconditions, converts
// the cart total to minor units, and requests a payment intent. Precondition
// violations fail the attempt without any network call.
func (o *Orchestrator) StartCheckout(ctx context.Context) error {
	o.op.Lock()
	defer o.op.Unlock()

	if !o.transition(domain.CheckoutPreparing, func(st *State) {
		st.Currency = o.opts.Currency
	}) {
		return ErrInvalidState
	}

	userID := o.cart.UserID()
	if userID <= 0 {
		o.fail("No user identified. Sign in before paying.", false)
		return cartsync.ErrNotIdentified
	}
	snapshot := o.cart.Snapshot()
	if snapshot == nil || snapshot.Total <= 0 {
		o.fail(ErrEmptyCart.Error(), false)
		return ErrEmptyCart
	}

	ctx = o.bindCancel(ctx)
	defer o.unbindCancel()

	amount := domain.MinorUnits(snapshot.Total)
	intent, err := o.api.CreateIntent(ctx, domain.PaymentIntentRequest{
		UserID:   userID,
		Amount:   amount,
		Currency: o.opts.Currency,
		CartID:   snapshot.ID,
		Metadata: map[string]string{
			"cart_id":         fmt.Sprint(snapshot.ID),
			"idempotency_key": uuid.NewString(),
		},
		Description: fmt.Sprintf("%s order for user %d", o.opts.MerchantName, userID),
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		o.fail(failureMessage(err), false)
		return err
	}

	o.transition(domain.CheckoutReadyToPay, func(st *State) {
		st.ClientSecret = intent.ClientSecret
		st.IntentID = intent.PaymentIntentID
		st.Amount = intent.Amount
		st.Currency = intent.Currency
	})
	return nil
}

// PresentPayment hands the client secret to the external presenter and waits
// for its single outcome. Completion clears the cart through the
// synchronizer; cancellation fails the attempt without error guidance; a
// presenter failure surfaces the underlying reason.
func (o *Orchestrator) PresentPayment(ctx context.Context, p Presenter) error {
	o.op.Lock()
	defer o.op.Unlock()

	o.mu.RLock()
	st := o.state
	o.mu.RUnlock()
	if st.Phase != domain.CheckoutReadyToPay {
		return ErrInvalidState
	}

	ctx = o.bindCancel(ctx)
	defer o.unbindCancel()

	o.transition(domain.CheckoutConfirming, nil)

	result, err := p.Present(ctx, st.ClientSecret, PresenterConfig{MerchantName: o.opts.MerchantName})
	if err != nil {
		if ctx.Err() != nil {
			// Reset or user switch already decided the state; drop the result.
			return ctx.Err()
		}
		o.fail(fmt.Sprintf("Payment failed: %v", err), false)
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	switch result.Outcome {
	case OutcomeCompleted:
		o.clearCart(ctx)
		o.transition(domain.CheckoutSucceeded, nil)
		return nil
	case OutcomeCanceled:
		o.fail("Payment canceled", true)
		return nil
	default:
		o.fail(fmt.Sprintf("Payment failed: %v", result.Reason), false)
		return fmt.Errorf("payment failed: %s", result.Reason)
	}
}

// ConfirmPayment is the explicit-confirmation variant, used when the flow
// does not delegate UI entirely to the presenter. It requires ReadyToPay. A
// requires-action response returns to ReadyToPay carrying the next-action
// hint so the caller can re-present instead of abandoning.
func (o *Orchestrator) ConfirmPayment(ctx context.Context, paymentMethodID string) error {
	o.op.Lock()
	defer o.op.Unlock()

	o.mu.RLock()
	st := o.state
	o.mu.RUnlock()
	if st.Phase != domain.CheckoutReadyToPay {
		return ErrInvalidState
	}

	ctx = o.bindCancel(ctx)
	defer o.unbindCancel()

	o.transition(domain.CheckoutConfirming, nil)

	snapshot := o.cart.Snapshot()
	var cartID int64
	if snapshot != nil {
		cartID = snapshot.ID
	}
	conf, err := o.api.ConfirmPayment(ctx, domain.ConfirmPaymentRequest{
		PaymentIntentID: st.IntentID,
		PaymentMethodID: paymentMethodID,
		UserID:          o.cart.UserID(),
		CartID:          cartID,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		o.fail(failureMessage(err), false)
		return err
	}

	switch {
	case conf.Success:
		o.clearCart(ctx)
		o.transition(domain.CheckoutSucceeded, func(s *State) {
			s.PaymentID = conf.PaymentID
			s.OrderID = conf.OrderID
			s.ReceiptURL = conf.ReceiptURL
		})
		return nil
	case conf.RequiresAction:
		o.transition(domain.CheckoutReadyToPay, func(s *State) {
			s.RequiresAction = true
			s.NextAction = conf.NextAction
		})
		return nil
	default:
		o.fail("Payment confirmation failed", false)
		return errors.New("payment confirmation failed")
	}
}

// LoadPaymentMethods is an independent read; it never touches the checkout
// state machine.
func (o *Orchestrator) LoadPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	methods, err := o.api.PaymentMethods(ctx, o.cart.UserID())
	if err != nil {
		return nil, err
	}
	o.mu.Lock()
	o.methods = methods
	o.mu.Unlock()
	o.notify()
	return methods, nil
}

// Reset forces the machine back to Idle from any state and cancels any
// in-flight work. Calling it twice is a no-op the second time.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	changed := o.state.Phase != domain.CheckoutIdle
	o.state = State{Phase: domain.CheckoutIdle}
	o.mu.Unlock()
	if changed {
		o.notify()
	}
}

// transition applies a legal phase change, carrying the payload forward and
// letting mutate adjust it. Illegal moves leave the state untouched.
func (o *Orchestrator) transition(to domain.CheckoutPhase, mutate func(*State)) bool {
	o.mu.Lock()
	from := o.state.Phase
	if !domain.CanTransitionTo(from, to) {
		o.mu.Unlock()
		log.Printf("checkout: illegal transition %s -> %s", from, to)
		return false
	}
	next := o.state
	if to == domain.CheckoutPreparing {
		next = State{} // a new attempt starts from a clean payload
	}
	next.Phase = to
	if mutate != nil {
		mutate(&next)
	}
	o.state = next
	o.mu.Unlock()
	o.notify()
	return true
}

func (o *Orchestrator) fail(message string, canceled bool) {
	o.transition(domain.CheckoutFailed, func(st *State) {
		st.Message = message
		st.Canceled = canceled
	})
}

// clearCart reconciles the cart after a successful payment. The payment
// already went through, so a clear failure is logged and the attempt still
// succeeds; the next fetch converges the mirror.
func (o *Orchestrator) clearCart(ctx context.Context) {
	if err := o.cart.Clear(ctx); err != nil {
		log.Printf("checkout: cart clear after payment failed: %v", err)
	}
}

// bindCancel derives a cancelable context stored for Reset to fire.
func (o *Orchestrator) bindCancel(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	o.mu.Lock()
	o.cancel = cancel
	o.mu.Unlock()
	return ctx
}

func (o *Orchestrator) unbindCancel() {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.mu.Unlock()
}

func failureMessage(err error) string {
	if re := remote.AsError(err); re != nil {
		return re.Message
	}
	return err.Error()
}

func (o *Orchestrator) notify() {
	if o.onChange != nil {
		o.onChange()
	}
}
