package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/shopline/notify/internal/service/models/order"
	"github.com/corray333/shopline/notify/internal/service/models/orderitem"
	"github.com/go-playground/validator/v10"
)

// Service is the slice of the service layer this handler needs.
type Service interface {
	Create(ctx context.Context, o order.Order) (order.Order, error)
}

// itemInCreateOrderRequest represents an item in a create order request.
type itemInCreateOrderRequest struct {
	ItemID     int64  `json:"itemId"   validate:"gt=0"`
	Title      string `json:"title"    validate:"required"`
	Quantity   int    `json:"quantity" validate:"gt=0"`
	PriceCents *int64 `json:"priceCents,omitempty"`
	PriceNote  string `json:"priceNote,omitempty"`
}

func (r *itemInCreateOrderRequest) toModel() orderitem.OrderItem {
	return orderitem.OrderItem{
		ItemID:     r.ItemID,
		Title:      r.Title,
		Quantity:   r.Quantity,
		PriceCents: r.PriceCents,
		PriceNote:  r.PriceNote,
	}
}

// createOrderRequest represents a create order request.
type createOrderRequest struct {
	ShopID          int64                      `json:"shopId"      validate:"gt=0"`
	CustomerID      int64                      `json:"customerId"  validate:"gt=0"`
	OrderType       string                     `json:"orderType"   validate:"required"`
	TotalCents      int64                      `json:"totalCents"  validate:"gte=0"`
	DeliveryAddress string                     `json:"deliveryAddress,omitempty"`
	DeliveryLat     *float64                   `json:"deliveryLat,omitempty"`
	DeliveryLng     *float64                   `json:"deliveryLng,omitempty"`
	OrderItems      []itemInCreateOrderRequest `json:"orderItems"  validate:"required,min=1,dive"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *createOrderRequest) toModel() (*order.Order, error) {
	orderType, err := order.ParseType(r.OrderType)
	if err != nil {
		return nil, err
	}

	items := make([]orderitem.OrderItem, len(r.OrderItems))
	for i := range r.OrderItems {
		items[i] = r.OrderItems[i].toModel()
	}

	return &order.Order{
		ShopID:          r.ShopID,
		CustomerID:      r.CustomerID,
		Type:            orderType,
		TotalCents:      r.TotalCents,
		DeliveryAddress: r.DeliveryAddress,
		DeliveryLat:     r.DeliveryLat,
		DeliveryLng:     r.DeliveryLng,
		OrderItems:      items,
	}, nil
}

// CreateOrder handles the order placement request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service Service) {
	req := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for create order", "error", err)

		return
	}

	model, err := req.toModel()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error converting create order request to model", "error", err)

		return
	}

	created, err := service.Create(r.Context(), *model)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error creating order", "error", err)

		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		slog.Error("Error sending response for create order", "error", err)
	}
}
