package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/davidbz/exportquote/internal/domain"
	"github.com/davidbz/exportquote/internal/observability"
)

const maxBodyBytes = 1 << 20

// Handler handles HTTP requests.
type Handler struct {
	pipeline *domain.PricingPipeline
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(pipeline *domain.PricingPipeline) *Handler {
	return &Handler{
		pipeline: pipeline,
	}
}

// IncotermView is one entry of the incoterm listing.
type IncotermView struct {
	Code         string `json:"code"`
	Name         string `json:"name,omitempty"`
	Rank         int    `json:"rank"`
	DutyEligible bool   `json:"dutyEligible"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleCalculate prices a single request.
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)

	var req domain.PricingCalculationRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.TenantID = observability.GetTenant(ctx)

	logger.Info("pricing request received",
		observability.String("incoterm", req.Incoterm),
		observability.Int("products", len(req.Products)),
		observability.Int("expenses", len(req.Expenses)),
	)

	response, err := h.pipeline.Calculate(ctx, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, response)
}

// HandleBatch prices up to ten independent scenarios.
func (h *Handler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.BatchCalculationRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	tenant := observability.GetTenant(ctx)
	for i := range req.Scenarios {
		req.Scenarios[i].TenantID = tenant
	}

	observability.FromContext(ctx).Info("batch pricing request received",
		observability.Int("scenarios", len(req.Scenarios)))

	response, err := h.pipeline.CalculateBatch(ctx, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, response)
}

// HandleBudget runs the budget calculation on caller-supplied figures.
func (h *Handler) HandleBudget(w http.ResponseWriter, r *http.Request) {
	var req domain.BudgetRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	result := domain.CalculateBudget(req.Items, req.Costs, req.Incoterm, req.DutyRate)
	writeJSON(w, r, http.StatusOK, result)
}

// HandleIncoterms lists the hierarchy in rank order.
func (h *Handler) HandleIncoterms(w http.ResponseWriter, r *http.Request) {
	hierarchy := h.pipeline.Hierarchy()
	codes := hierarchy.Codes()

	views := make([]IncotermView, len(codes))
	for i, code := range codes {
		views[i] = IncotermView{
			Code:         code,
			Name:         hierarchy.Name(code),
			Rank:         i,
			DutyEligible: hierarchy.IsDutyEligible(code),
		}
	}

	writeJSON(w, r, http.StatusOK, views)
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %w", domain.ErrInvalidRequest, err)
	}

	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownIncoterm):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := observability.FromContext(r.Context())

	if status == http.StatusInternalServerError {
		logger.Error("pricing request failed", observability.Error(err))
		writeJSON(w, r, status, errorResponse{Error: "internal error"})
		return
	}

	logger.Warn("pricing request rejected",
		observability.Int("status", status),
		observability.Error(err))
	writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Status is already written; just log.
		observability.FromContext(r.Context()).Error("failed to encode response", observability.Error(err))
	}
}
