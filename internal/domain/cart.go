package domain

import "time"

// Cart mirrors the upstream cart resource. Field tags follow the wire names
// of the Carritos API; the server owns Total and every Subtotal.
type Cart struct {
	ID          int64            `json:"id"`
	UserID      int64            `json:"usuarioId"`
	Date        string           `json:"fecha"`
	Active      bool             `json:"activo"`
	Total       float64          `json:"total"`
	Items       []LineItem       `json:"items"`
	CustomItems []CustomLineItem `json:"customItems"`
}

type LineItem struct {
	ID           int64   `json:"id"`
	CartID       int64   `json:"carritoId"`
	ProductID    int64   `json:"pastelId"`
	ProductName  string  `json:"nombrePastel"`
	ProductImage string  `json:"imagenPastel"`
	Quantity     int     `json:"cantidad"`
	UnitPrice    float64 `json:"precioUnitario"`
	Subtotal     float64 `json:"subtotal"`
}

// CustomLineItem is a personalized product in the cart. The storefront never
// edits these; they only appear in fetched snapshots.
type CustomLineItem struct {
	ID           int64   `json:"id"`
	CartID       int64   `json:"carritoId"`
	ProductID    int64   `json:"personalizadoId"`
	ProductName  string  `json:"nombrePersonalizado"`
	ProductImage string  `json:"imagenPersonalizado"`
	Quantity     int     `json:"cantidad"`
	UnitPrice    float64 `json:"precioUnitario"`
	Subtotal     float64 `json:"subtotal"`
}

// UpdateItemRequest is the body of PUT /api/Carritos/items/{itemId}.
type UpdateItemRequest struct {
	UserID    int64 `json:"userId"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// FindItem returns the standard line item with the given id, or nil.
func (c *Cart) FindItem(itemID int64) *LineItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// EmptyCart builds the canonical empty cart for a user: the renderable
// fallback installed when the server cannot produce a snapshot.
func EmptyCart(userID int64) *Cart {
	return &Cart{
		ID:          0,
		UserID:      userID,
		Date:        time.Now().Format("2006-01-02"),
		Active:      true,
		Total:       0,
		Items:       []LineItem{},
		CustomItems: []CustomLineItem{},
	}
}
