package cartsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SPLSaul/DulceTentacionApp2.0/internal/domain"
	"github.com/SPLSaul/DulceTentacionApp2.0/internal/remote"
)

var (
	ErrNotIdentified = errors.New("no user identified, cart operations rejected")
	ErrItemNotFound  = errors.New("item not found in cart")
)

const maxFetchAttempts = 2

// CartAPI is the remote surface the synchronizer drives.
type CartAPI interface {
	GetCart(ctx context.Context, userID int64) (*domain.Cart, error)
	UpdateItem(ctx context.Context, itemID int64, req domain.UpdateItemRequest) (*domain.LineItem, error)
	RemoveItem(ctx context.Context, itemID int64) error
	Clear(ctx context.Context) error
}

// Synchronizer owns the authoritative local snapshot of one user's remote
// cart. Mutations are serialized: no two run concurrently for the same
// instance. Reads never block on in-flight work.
//
// After a successful mutation the canonical cart is always re-fetched, so the
// server-computed total is never reconstructed locally. Clear is the one
// exception: the resulting state is fully known, so the canonical empty cart
// is installed directly.
type Synchronizer struct {
	api        CartAPI
	retryDelay time.Duration

	op sync.Mutex // serializes mutations

	mu       sync.RWMutex
	userID   int64
	gen      uint64 // bumped on SetUser; stale results must not land
	cancel   context.CancelFunc
	cart     *domain.Cart
	busy     bool
	lastErr  string
	onChange func()
}

func NewSynchronizer(api CartAPI) *Synchronizer {
	return &Synchronizer{api: api, retryDelay: time.Second}
}

// SetOnChange registers a hook invoked after every observable state change.
// Must be set before the synchronizer is shared.
func (s *Synchronizer) SetOnChange(fn func()) {
	s.onChange = fn
}

// SetUser binds the synchronizer to a user, cancelling any in-flight work
// and discarding its eventual result. A non-positive id disables the
// instance: every subsequent operation is rejected with ErrNotIdentified and
// makes no network call. A valid id triggers an initial fetch.
func (s *Synchronizer) SetUser(ctx context.Context, userID int64) error {
	s.mu.Lock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.op.Lock()
	s.mu.Lock()
	s.userID = userID
	s.cart = nil
	s.lastErr = ""
	s.busy = false
	s.mu.Unlock()
	s.op.Unlock()
	s.notify()

	if userID <= 0 {
		return nil
	}
	return s.Fetch(ctx)
}

// Fetch retrieves the remote cart and replaces the local snapshot. On a
// transient server failure the canonical empty cart is installed as a
// degraded-but-renderable fallback, and the error is still reported.
func (s *Synchronizer) Fetch(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()

	ctx, gen, userID, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer s.end(gen)

	return s.fetchOnce(ctx, gen, userID)
}

// FetchWithRetry behaves like Fetch but retries transient and network
// failures up to a fixed bound, sleeping attempt × retryDelay between
// attempts. A business failure aborts immediately without further delay.
// Exhaustion installs the empty-cart fallback and reports a terminal error.
func (s *Synchronizer) FetchWithRetry(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()

	ctx, gen, userID, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer s.end(gen)

	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		cart, errGet := s.api.GetCart(ctx, userID)
		if errGet == nil {
			s.install(gen, cart)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = errGet

		if re := remote.AsError(errGet); re != nil && re.Kind == remote.KindBusiness {
			s.report(gen, re.Message)
			s.install(gen, domain.EmptyCart(userID))
			return errGet
		}
		if attempt == maxFetchAttempts {
			break
		}

		timer := time.NewTimer(time.Duration(attempt) * s.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	msg := "Server error. Showing empty cart."
	if re := remote.AsError(lastErr); re != nil && re.Kind == remote.KindNetwork {
		msg = re.Message
	}
	s.report(gen, msg)
	s.install(gen, domain.EmptyCart(userID))
	return lastErr
}

// UpdateQuantity resolves the item in the current snapshot, issues the remote
// update with the item's product id, then re-fetches the canonical cart. An
// unknown item id fails with ErrItemNotFound before any network call; an
// update must never silently create an item.
func (s *Synchronizer) UpdateQuantity(ctx context.Context, itemID int64, quantity int) error {
	s.op.Lock()
	defer s.op.Unlock()

	ctx, gen, userID, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer s.end(gen)

	s.mu.RLock()
	cart := s.cart
	s.mu.RUnlock()

	var item *domain.LineItem
	if cart != nil {
		item = cart.FindItem(itemID)
	}
	if item == nil {
		s.report(gen, "Item not found in cart.")
		return ErrItemNotFound
	}

	_, err = s.api.UpdateItem(ctx, itemID, domain.UpdateItemRequest{
		UserID:    userID,
		ProductID: item.ProductID,
		Quantity:  quantity,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.reportErr(gen, err)
		return err
	}

	return s.fetchOnce(ctx, gen, userID)
}

// RemoveItem removes a line item remotely, then re-fetches the canonical cart.
func (s *Synchronizer) RemoveItem(ctx context.Context, itemID int64) error {
	s.op.Lock()
	defer s.op.Unlock()

	ctx, gen, userID, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer s.end(gen)

	if err := s.api.RemoveItem(ctx, itemID); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.reportErr(gen, err)
		return err
	}

	return s.fetchOnce(ctx, gen, userID)
}

// Clear empties the remote cart. On success the canonical empty cart is
// installed directly; the server state is known, no re-fetch needed.
func (s *Synchronizer) Clear(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()

	ctx, gen, userID, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer s.end(gen)

	if err := s.api.Clear(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.reportErr(gen, err)
		return err
	}

	s.install(gen, domain.EmptyCart(userID))
	return nil
}

// Snapshot returns the current cart, or nil before the first fetch. The
// returned cart is replaced wholesale on every update and must be treated as
// read-only.
func (s *Synchronizer) Snapshot() *domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart
}

func (s *Synchronizer) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy
}

func (s *Synchronizer) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Synchronizer) ClearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
	s.notify()
}

func (s *Synchronizer) UserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// begin marks the operation busy and derives a cancelable context tied to the
// current generation. Callers must pair it with end.
func (s *Synchronizer) begin(ctx context.Context) (context.Context, uint64, int64, error) {
	s.mu.Lock()
	if s.userID <= 0 {
		s.mu.Unlock()
		return nil, 0, 0, ErrNotIdentified
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.busy = true
	gen, userID := s.gen, s.userID
	s.mu.Unlock()
	s.notify()
	return ctx, gen, userID, nil
}

// end clears the busy flag on every exit path, unless the operation was
// superseded by a user switch.
func (s *Synchronizer) end(gen uint64) {
	s.mu.Lock()
	if gen == s.gen {
		s.busy = false
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
	}
	s.mu.Unlock()
	s.notify()
}

// fetchOnce performs a single fetch and applies the fallback policy. Called
// with the op lock held and busy already set.
func (s *Synchronizer) fetchOnce(ctx context.Context, gen uint64, userID int64) error {
	cart, err := s.api.GetCart(ctx, userID)
	if err == nil {
		s.install(gen, cart)
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if remote.IsTransient(err) {
		s.report(gen, "Server error. Please try again later.")
		s.install(gen, domain.EmptyCart(userID))
		return err
	}
	s.reportErr(gen, err)
	return err
}

// install replaces the snapshot unless the operation was superseded.
func (s *Synchronizer) install(gen uint64, cart *domain.Cart) {
	s.mu.Lock()
	if gen == s.gen {
		s.cart = cart
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Synchronizer) report(gen uint64, msg string) {
	s.mu.Lock()
	if gen == s.gen {
		s.lastErr = msg
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Synchronizer) reportErr(gen uint64, err error) {
	if re := remote.AsError(err); re != nil {
		s.report(gen, re.Message)
		return
	}
	s.report(gen, err.Error())
}

func (s *Synchronizer) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}
