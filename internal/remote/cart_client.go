package remote

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/SPLSaul/DulceTentacionApp2.0/internal/domain"
)

// CartAPI is the typed wrapper over the four Carritos endpoints. It carries
// no policy; retry and fallback live in the synchronizer.
type CartAPI struct {
	c   *Client
	sfg singleflight.Group // collapses concurrent fetches for the same user
}

func NewCartAPI(c *Client) *CartAPI {
	return &CartAPI{c: c}
}

func (a *CartAPI) GetCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	v, err, _ := a.sfg.Do(fmt.Sprintf("cart:%d", userID), func() (interface{}, error) {
		var cart domain.Cart
		query := fmt.Sprintf("userId=%d", userID)
		if err := a.c.do(ctx, http.MethodGet, "/api/Carritos", query, nil, &cart); err != nil {
			return nil, err
		}
		return &cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

func (a *CartAPI) UpdateItem(ctx context.Context, itemID int64, req domain.UpdateItemRequest) (*domain.LineItem, error) {
	var item domain.LineItem
	path := fmt.Sprintf("/api/Carritos/items/%d", itemID)
	if err := a.c.do(ctx, http.MethodPut, path, "", req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (a *CartAPI) RemoveItem(ctx context.Context, itemID int64) error {
	path := fmt.Sprintf("/api/Carritos/items/%d", itemID)
	return a.c.do(ctx, http.MethodDelete, path, "", nil, nil)
}

func (a *CartAPI) Clear(ctx context.Context) error {
	return a.c.do(ctx, http.MethodDelete, "/api/Carritos/clear", "", nil, nil)
}
