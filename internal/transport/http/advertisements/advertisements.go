package advertisements

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/corray333/shopline/notify/internal/service/models/advertisement"
	"github.com/corray333/shopline/notify/internal/service/services/broadcastsvc"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Service is the slice of the service layer this handler needs.
type Service interface {
	CreateAdvertisement(ctx context.Context, ad advertisement.Advertisement) (advertisement.Advertisement, error)
	GetAdvertisement(ctx context.Context, id int64) (advertisement.Advertisement, int, error)
	UpdateAdvertisement(ctx context.Context, ad advertisement.Advertisement) error
	DeleteAdvertisement(ctx context.Context, id int64) error
	Broadcast(ctx context.Context, advertisementID int64) (broadcastsvc.Result, error)
}

// advertisementRequest represents a create or update advertisement request.
type advertisementRequest struct {
	ShopID          int64    `json:"shopId"  validate:"gt=0"`
	OwnerID         int64    `json:"ownerId" validate:"gt=0"`
	Message         string   `json:"message" validate:"required"`
	ImageURLs       []string `json:"imageUrls,omitempty"`
	VideoURLs       []string `json:"videoUrls,omitempty"`
	HasDiscount     bool     `json:"hasDiscount"`
	DiscountPercent *int     `json:"discountPercent,omitempty"`
	DiscountNote    string   `json:"discountNote,omitempty"`
	IsActive        *bool    `json:"isActive,omitempty"`
}

// Validate validates the advertisement request.
func (r *advertisementRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *advertisementRequest) toModel() advertisement.Advertisement {
	ad := advertisement.Advertisement{
		ShopID:          r.ShopID,
		OwnerID:         r.OwnerID,
		Message:         r.Message,
		ImageURLs:       r.ImageURLs,
		VideoURLs:       r.VideoURLs,
		HasDiscount:     r.HasDiscount,
		DiscountPercent: r.DiscountPercent,
		DiscountNote:    r.DiscountNote,
		IsActive:        true,
	}
	if r.IsActive != nil {
		ad.IsActive = *r.IsActive
	}

	return ad
}

// getAdvertisementResponse carries the advertisement plus its cumulative
// notified total alongside the per-call NotificationsSent counter.
type getAdvertisementResponse struct {
	advertisement.Advertisement
	TotalNotified int `json:"totalNotified"`
}

// CreateAdvertisement handles the create advertisement request.
func CreateAdvertisement(w http.ResponseWriter, r *http.Request, service Service) {
	req := advertisementRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for create advertisement", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for create advertisement", "error", err)

		return
	}

	created, err := service.CreateAdvertisement(r.Context(), req.toModel())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error creating advertisement", "error", err)

		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		slog.Error("Error sending response for create advertisement", "error", err)
	}
}

// GetAdvertisement handles the get advertisement request.
func GetAdvertisement(w http.ResponseWriter, r *http.Request, service Service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid advertisement id", http.StatusBadRequest)

		return
	}

	ad, total, err := service.GetAdvertisement(r.Context(), id)
	if err != nil {
		if errors.Is(err, advertisement.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			slog.Error("Error getting advertisement", "error", err, "advertisement_id", id)
		}

		return
	}

	resp := getAdvertisementResponse{Advertisement: ad, TotalNotified: total}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Error sending response for get advertisement", "error", err)
	}
}

// UpdateAdvertisement handles the edit advertisement request.
func UpdateAdvertisement(w http.ResponseWriter, r *http.Request, service Service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid advertisement id", http.StatusBadRequest)

		return
	}

	req := advertisementRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for update advertisement", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for update advertisement", "error", err)

		return
	}

	ad := req.toModel()
	ad.ID = id

	if err := service.UpdateAdvertisement(r.Context(), ad); err != nil {
		if errors.Is(err, advertisement.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			slog.Error("Error updating advertisement", "error", err, "advertisement_id", id)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteAdvertisement handles the delete advertisement request. All
// notifications referencing the advertisement are removed with it.
func DeleteAdvertisement(w http.ResponseWriter, r *http.Request, service Service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid advertisement id", http.StatusBadRequest)

		return
	}

	if err := service.DeleteAdvertisement(r.Context(), id); err != nil {
		if errors.Is(err, advertisement.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			slog.Error("Error deleting advertisement", "error", err, "advertisement_id", id)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Broadcast handles the broadcast/resend request.
func Broadcast(w http.ResponseWriter, r *http.Request, service Service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid advertisement id", http.StatusBadRequest)

		return
	}

	result, err := service.Broadcast(r.Context(), id)
	if err != nil {
		if errors.Is(err, advertisement.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			slog.Error("Error broadcasting advertisement", "error", err, "advertisement_id", id)
		}

		return
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		slog.Error("Error sending response for broadcast", "error", err)
	}
}
