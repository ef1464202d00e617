package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/corray333/shopline/notify/internal/service/models/ratelimit"
	"github.com/go-playground/validator/v10"
)

// Service is the slice of the service layer this handler needs.
type Service interface {
	RequestVerificationCode(ctx context.Context, email string) (ratelimit.Result, error)
	RequestPasswordReset(ctx context.Context, email string) (ratelimit.Result, error)
	ConfirmVerified(ctx context.Context, email string) error
}

// emailRequest carries the identity the issuance flows are keyed by.
type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Validate validates the email request.
func (r *emailRequest) Validate() error {
	return validator.New().Struct(r)
}

type issueResponse struct {
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
}

type deniedResponse struct {
	Error             string    `json:"error"`
	RetryAfterSeconds int       `json:"retryAfterSeconds"`
	ResetAt           time.Time `json:"resetAt"`
}

// RequestVerificationCode handles verification code issuance. A denial is
// a 429 with the time the caller may retry, not a generic failure.
func RequestVerificationCode(w http.ResponseWriter, r *http.Request, service Service) {
	issue(w, r, service.RequestVerificationCode, "verification code")
}

// RequestPasswordReset handles password reset issuance.
func RequestPasswordReset(w http.ResponseWriter, r *http.Request, service Service) {
	issue(w, r, service.RequestPasswordReset, "password reset")
}

func issue(
	w http.ResponseWriter,
	r *http.Request,
	request func(ctx context.Context, email string) (ratelimit.Result, error),
	flow string,
) {
	req := emailRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body", "flow", flow, "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body", "flow", flow, "error", err)

		return
	}

	result, err := request(r.Context(), req.Email)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error issuing code", "flow", flow, "error", err)

		return
	}

	if !result.Allowed {
		retryAfter := int(result.RetryAfter.Round(time.Second).Seconds())
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		w.WriteHeader(http.StatusTooManyRequests)
		resp := deniedResponse{
			Error:             "too many attempts, try again later",
			RetryAfterSeconds: retryAfter,
			ResetAt:           result.ResetAt,
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("Error sending rate limit response", "flow", flow, "error", err)
		}

		return
	}

	resp := issueResponse{
		Remaining: result.Remaining,
		ResetAt:   result.ResetAt,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Error sending response", "flow", flow, "error", err)
	}
}

// ConfirmVerified clears the verification budget after a successful
// verification.
func ConfirmVerified(w http.ResponseWriter, r *http.Request, service Service) {
	req := emailRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for confirm verified", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for confirm verified", "error", err)

		return
	}

	if err := service.ConfirmVerified(r.Context(), req.Email); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error confirming verification", "error", err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
