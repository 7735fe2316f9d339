package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"pledge/internal/platform/metrics"
	"pledge/internal/platform/middleware"
	"pledge/internal/pledge/models"
	"pledge/internal/pledge/service"
	dErrors "pledge/pkg/domain-errors"
)

// Response bodies are part of the public contract consumed by the pledge
// form; do not reword them.
const (
	bodyOK           = "Ok."
	bodyInvalid      = "Invalid request"
	bodyMissingField = "Invalid request: missing field"
	bodyBadEmail     = "Invalid request: Bad email address"
	bodyPaymentFail  = "Payment failed"
	bodyServerError  = "Server error"
)

// IntakeService runs the pledge pipeline after the handler has validated
// the submission.
type IntakeService interface {
	Submit(ctx context.Context, sub service.Submission) (*models.Pledge, error)
}

// TotalService returns the running total of pledged cents.
type TotalService interface {
	Total(ctx context.Context) (int64, error)
}

// Handler exposes the pledge intake and total endpoints.
type Handler struct {
	intake  IntakeService
	totals  TotalService
	metrics *metrics.Metrics
	logger  *slog.Logger

	// requirePhone folds phone into the non-empty check. The form has
	// always required the key to be present but accepted an empty value,
	// so this stays off unless the campaign decides otherwise.
	requirePhone bool
}

func New(intake IntakeService, totals TotalService, m *metrics.Metrics, logger *slog.Logger, requirePhone bool) *Handler {
	return &Handler{
		intake:       intake,
		totals:       totals,
		metrics:      m,
		logger:       logger,
		requirePhone: requirePhone,
	}
}

// Register mounts the routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/pledge.do", h.handlePledge)
	r.Get("/total", h.handleTotal)
}

// handleTotal writes the total pledged cents as a bare decimal string.
func (h *Handler) handleTotal(w http.ResponseWriter, r *http.Request) {
	total, err := h.totals.Total(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to compute total",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		writeText(w, http.StatusInternalServerError, bodyServerError)
		return
	}
	writeText(w, http.StatusOK, strconv.FormatInt(total, 10))
}

// handlePledge validates the submission in the same order the pledge form
// has always been validated, then hands off to the intake service.
func (h *Handler) handlePledge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		h.logger.WarnContext(ctx, "bad JSON request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		h.reject(w, "malformed_json", bodyInvalid)
		return
	}

	userinfo, ok := data["userinfo"].(map[string]any)
	if !ok ||
		!hasKeys(data, "email", "token", "amount") ||
		!hasKeys(userinfo, "occupation", "employer", "phone", "target") {
		h.reject(w, "missing_key", bodyInvalid)
		return
	}

	email, _ := data["email"].(string)
	token, _ := data["token"].(string)
	occupation, _ := userinfo["occupation"].(string)
	employer, _ := userinfo["employer"].(string)
	phone, _ := userinfo["phone"].(string)
	target, _ := userinfo["target"].(string)

	amountCents, err := coerceAmount(data["amount"])
	if err != nil {
		h.reject(w, "bad_amount", bodyInvalid)
		return
	}

	if email == "" || token == "" || amountCents == 0 ||
		occupation == "" || employer == "" || target == "" ||
		(h.requirePhone && phone == "") {
		h.reject(w, "empty_field", bodyMissingField)
		return
	}

	if !govalidator.IsEmail(email) {
		h.reject(w, "bad_email", bodyBadEmail)
		return
	}

	// The form posts the note as a query parameter, outside the JSON body.
	note := r.URL.Query().Get("note")

	_, err = h.intake.Submit(ctx, service.Submission{
		Email:       email,
		Token:       token,
		AmountCents: amountCents,
		Occupation:  occupation,
		Employer:    employer,
		Phone:       phone,
		Target:      target,
		Note:        note,
	})
	if err != nil {
		h.writeSubmitError(w, r, err)
		return
	}

	writeText(w, http.StatusOK, bodyOK)
}

func (h *Handler) writeSubmitError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	switch {
	case dErrors.HasCode(err, dErrors.CodeBadRequest):
		h.logger.WarnContext(ctx, "pledge rejected",
			"request_id", requestID,
			"error", err.Error(),
		)
		h.reject(w, "invalid_pledge", bodyInvalid)
	case dErrors.HasCode(err, dErrors.CodeUpstream):
		h.logger.ErrorContext(ctx, "charge failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		writeText(w, http.StatusBadGateway, bodyPaymentFail)
	default:
		h.logger.ErrorContext(ctx, "pledge submission failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		writeText(w, http.StatusInternalServerError, bodyServerError)
	}
}

func (h *Handler) reject(w http.ResponseWriter, reason, body string) {
	h.metrics.PledgesRejected.WithLabelValues(reason).Inc()
	writeText(w, http.StatusBadRequest, body)
}

func hasKeys(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}

// coerceAmount accepts the integer-like shapes the form has historically
// sent: JSON numbers (truncated to whole cents) and numeric strings.
func coerceAmount(v any) (int64, error) {
	switch amount := v.(type) {
	case float64:
		return int64(amount), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(amount), 10, 64)
		if err != nil {
			return 0, dErrors.New(dErrors.CodeBadRequest, "amount is not an integer")
		}
		return n, nil
	default:
		return 0, dErrors.New(dErrors.CodeBadRequest, "amount is not an integer")
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
