package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/circuitbreaker"
	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/feed"
	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/poller"
)

// ErrorResponse represents an error in problem+json format
type ErrorResponse struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// MarkReadRequest is the body for POST .../read
type MarkReadRequest struct {
	IDs []string `json:"ids"`
}

// AckResultResponse is one per-id remote ack outcome. Failures are reported
// but the records stay locally read either way.
type AckResultResponse struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Handler serves the aggregated feed views over HTTP.
type Handler struct {
	logger  *zap.Logger
	manager *poller.Manager
	breaker *circuitbreaker.CircuitBreaker // nil when the feed client is unprotected
}

// NewHandler creates an API handler.
func NewHandler(logger *zap.Logger, manager *poller.Manager, breaker *circuitbreaker.CircuitBreaker) *Handler {
	return &Handler{
		logger:  logger,
		manager: manager,
		breaker: breaker,
	}
}

// GetDomainFeed handles GET /v1/businesses/{number}/feed/{domain}
// Query params: page (default 1), page_size (default 3, max 50).
func (h *Handler) GetDomainFeed(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	domain := feed.Domain(chi.URLParam(r, "domain"))

	p, ok := h.manager.Poller(number)
	if !ok {
		h.writeError(w, http.StatusNotFound, "not_found", "Unknown business", "No poller is configured for this business number")
		return
	}

	snap, err := p.Snapshot()
	if err != nil {
		if errors.Is(err, poller.ErrNoSnapshot) {
			h.writeError(w, http.StatusServiceUnavailable, "not_ready", "Feed not fetched yet", "The first fetch cycle has not completed")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load snapshot", "")
		return
	}

	page := 1
	pageSize := feed.CardPageSize

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil {
			page = p
		}
	}
	if sizeStr := r.URL.Query().Get("page_size"); sizeStr != "" {
		if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 50 {
			pageSize = s
		}
	}

	var (
		records interface{}
		total   int
	)
	switch domain {
	case feed.DomainFood:
		records = feed.Page(snap.Food, page, pageSize)
		total = len(snap.Food)
	case feed.DomainReservation:
		records = feed.Page(snap.Reservations, page, pageSize)
		total = len(snap.Reservations)
	case feed.DomainCallback:
		records = feed.Page(snap.Callbacks, page, pageSize)
		total = len(snap.Callbacks)
	case feed.DomainFAQ:
		records = feed.Page(snap.FAQs, page, pageSize)
		total = len(snap.FAQs)
	default:
		h.writeError(w, http.StatusNotFound, "not_found", "Unknown domain", "domain must be food, reservations, callbacks, or faqs")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"data":       records,
		"page":       page,
		"page_size":  pageSize,
		"total":      total,
		"page_count": feed.PageCount(total, pageSize),
		"fetched_at": snap.FetchedAt,
	})
}

// GetSummary handles GET /v1/businesses/{number}/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	p, ok := h.manager.Poller(number)
	if !ok {
		h.writeError(w, http.StatusNotFound, "not_found", "Unknown business", "No poller is configured for this business number")
		return
	}

	snap, err := p.Snapshot()
	if err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "not_ready", "Feed not fetched yet", "The first fetch cycle has not completed")
		return
	}

	totals := make(map[string]int, 4)
	for domain, count := range snap.Totals() {
		totals[string(domain)] = count
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"business_number": snap.BusinessNumber,
		"totals":          totals,
		"fetched_at":      snap.FetchedAt,
	})
}

// MarkRead handles POST /v1/businesses/{number}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	number := chi.URLParam(r, "number")

	p, ok := h.manager.Poller(number)
	if !ok {
		h.writeError(w, http.StatusNotFound, "not_found", "Unknown business", "No poller is configured for this business number")
		return
	}

	var req MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body", err.Error())
		return
	}
	if len(req.IDs) == 0 {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Missing ids", "ids must be a non-empty array of record ids")
		return
	}

	results := p.ReadState().MarkRead(ctx, req.IDs)

	resp := make([]AckResultResponse, 0, len(results))
	for _, res := range results {
		out := AckResultResponse{ID: res.ID, OK: res.Err == nil}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		resp = append(resp, out)
	}

	h.logger.Info("records marked read",
		zap.String("business_number", number),
		zap.Int("requested", len(req.IDs)),
		zap.Int("acked", len(resp)),
	)

	// Let the next snapshot pick up the server-side read flags.
	p.Refresh()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"results": resp,
	})
}

// GetBreakerStats handles GET /v1/breaker
func (h *Handler) GetBreakerStats(w http.ResponseWriter, r *http.Request) {
	if h.breaker == nil {
		h.writeError(w, http.StatusNotFound, "not_found", "No circuit breaker configured", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(h.breaker.Stats())
}

func (h *Handler) writeError(w http.ResponseWriter, status int, errType, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Type:   errType,
		Title:  title,
		Status: status,
		Detail: detail,
	})
}
