package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/SPLSaul/DulceTentacionApp2.0/internal/cartsync"
	"github.com/SPLSaul/DulceTentacionApp2.0/internal/domain"
)

type cartServiceMock struct {
	cart    *domain.Cart
	busy    bool
	lastErr string

	fetchCalls      int
	retryCalls      int
	updateItemID    int64
	updateQuantity  int
	removedItemID   int64
	clearCalls      int
	errorsDismissed int
	err             error
}

func (m *cartServiceMock) Snapshot() *domain.Cart { return m.cart }
func (m *cartServiceMock) Busy() bool             { return m.busy }
func (m *cartServiceMock) LastError() string      { return m.lastErr }
func (m *cartServiceMock) ClearError()            { m.errorsDismissed++ }

func (m *cartServiceMock) Fetch(context.Context) error {
	m.fetchCalls++
	return m.err
}

func (m *cartServiceMock) FetchWithRetry(context.Context) error {
	m.retryCalls++
	return m.err
}

func (m *cartServiceMock) UpdateQuantity(_ context.Context, itemID int64, quantity int) error {
	m.updateItemID = itemID
	m.updateQuantity = quantity
	return m.err
}

func (m *cartServiceMock) RemoveItem(_ context.Context, itemID int64) error {
	m.removedItemID = itemID
	return m.err
}

func (m *cartServiceMock) Clear(context.Context) error {
	m.clearCalls++
	return m.err
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetCart_ReturnsObservableState(t *testing.T) {
	mock := &cartServiceMock{
		cart:    &domain.Cart{ID: 3, UserID: 42, Total: 10},
		busy:    true,
		lastErr: "Server error. Please try again later.",
	}
	handler := NewCartHandler(mock)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)
	handler.GetCart(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var state CartStateDTO
	if err := json.NewDecoder(recorder.Body).Decode(&state); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if state.Cart == nil || state.Cart.ID != 3 {
		t.Errorf("Expected cart id 3, got %+v", state.Cart)
	}
	if !state.Busy {
		t.Error("Expected busy flag to be set")
	}
	if state.LastError == "" {
		t.Error("Expected last error to be surfaced")
	}
}

func TestRefresh_SelectsRetryVariant(t *testing.T) {
	mock := &cartServiceMock{cart: &domain.Cart{ID: 3}}
	handler := NewCartHandler(mock)

	recorder := httptest.NewRecorder()
	handler.Refresh(recorder, httptest.NewRequest("POST", "/?retry=1", nil))

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if mock.retryCalls != 1 || mock.fetchCalls != 0 {
		t.Errorf("Expected the retry variant, got fetch=%d retry=%d", mock.fetchCalls, mock.retryCalls)
	}

	handler.Refresh(httptest.NewRecorder(), httptest.NewRequest("POST", "/", nil))
	if mock.fetchCalls != 1 {
		t.Errorf("Expected the plain fetch, got %d calls", mock.fetchCalls)
	}
}

func TestUpdateQuantity_ValidatesInput(t *testing.T) {
	mock := &cartServiceMock{}
	handler := NewCartHandler(mock)

	// Bad item id
	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("PUT", "/", bytes.NewBufferString(`{"quantity":3}`)), "itemID", "zero")
	handler.UpdateQuantity(recorder, request)
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	// Quantity below 1
	recorder = httptest.NewRecorder()
	request = withURLParam(httptest.NewRequest("PUT", "/", bytes.NewBufferString(`{"quantity":0}`)), "itemID", "7")
	handler.UpdateQuantity(recorder, request)
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	if mock.updateItemID != 0 {
		t.Error("Expected no service call for invalid input")
	}
}

func TestUpdateQuantity_Success(t *testing.T) {
	mock := &cartServiceMock{cart: &domain.Cart{ID: 3, Total: 15}}
	handler := NewCartHandler(mock)

	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("PUT", "/", bytes.NewBufferString(`{"quantity":3}`)), "itemID", "7")
	handler.UpdateQuantity(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if mock.updateItemID != 7 || mock.updateQuantity != 3 {
		t.Errorf("Expected update of item 7 to quantity 3, got item %d quantity %d", mock.updateItemID, mock.updateQuantity)
	}
}

func TestUpdateQuantity_ItemNotFound(t *testing.T) {
	mock := &cartServiceMock{err: cartsync.ErrItemNotFound}
	handler := NewCartHandler(mock)

	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("PUT", "/", bytes.NewBufferString(`{"quantity":3}`)), "itemID", "99")
	handler.UpdateQuantity(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}

	var response ErrorResponse
	_ = json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "item_not_found" {
		t.Errorf("Expected code item_not_found, got %q", response.Code)
	}
}

func TestCartEndpoints_NotIdentified(t *testing.T) {
	mock := &cartServiceMock{err: cartsync.ErrNotIdentified}
	handler := NewCartHandler(mock)

	recorder := httptest.NewRecorder()
	handler.ClearCart(recorder, httptest.NewRequest("DELETE", "/", nil))

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestRemoveItem_Success(t *testing.T) {
	mock := &cartServiceMock{cart: &domain.Cart{ID: 3}}
	handler := NewCartHandler(mock)

	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("DELETE", "/", nil), "itemID", "7")
	handler.RemoveItem(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if mock.removedItemID != 7 {
		t.Errorf("Expected removal of item 7, got %d", mock.removedItemID)
	}
}

func TestDismissError(t *testing.T) {
	mock := &cartServiceMock{lastErr: "stale"}
	handler := NewCartHandler(mock)

	recorder := httptest.NewRecorder()
	handler.DismissError(recorder, httptest.NewRequest("DELETE", "/", nil))

	if recorder.Code != http.StatusNoContent {
		t.Errorf("Expected status code %d, got %d", http.StatusNoContent, recorder.Code)
	}
	if mock.errorsDismissed != 1 {
		t.Errorf("Expected one dismissal, got %d", mock.errorsDismissed)
	}
}
