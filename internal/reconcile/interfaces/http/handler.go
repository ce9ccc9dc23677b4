package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"entsoe-feeder/internal/audit"
	"entsoe-feeder/internal/auth"
	"entsoe-feeder/internal/entsoe"
	"entsoe-feeder/internal/reconcile/application"
	reconcile "entsoe-feeder/internal/reconcile/domain"
	"entsoe-feeder/internal/reconcile/interfaces/export"
)

const defaultExportLimit = 48

// Refresher runs a reconciliation on demand.
type Refresher interface {
	RefreshConsumption(ctx context.Context, countryCode string) (*reconcile.ConsumptionRecord, error)
	RefreshProduction(ctx context.Context, countryCode string) (*reconcile.ProductionRecord, error)
	RefreshExchange(ctx context.Context, a, b string) (*reconcile.ExchangeRecord, error)
}

// Handler serves stored records, manual refreshes and production exports.
type Handler struct {
	refresher   Refresher
	repo        reconcile.RecordRepository
	auditLogger audit.Logger
	clock       reconcile.Clock
	logger      *log.Logger
}

// NewHandler constructs a handler. auditLogger may be nil.
func NewHandler(refresher Refresher, repo reconcile.RecordRepository, auditLogger audit.Logger, clock reconcile.Clock, logger *log.Logger) (*Handler, error) {
	if refresher == nil {
		return nil, errors.New("feeder handler: nil refresher")
	}
	if repo == nil {
		return nil, errors.New("feeder handler: nil repository")
	}
	if clock == nil {
		clock = reconcile.SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{refresher: refresher, repo: repo, auditLogger: auditLogger, clock: clock, logger: logger}, nil
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/consumption", h.handleConsumption)
	mux.HandleFunc("/api/v1/production", h.handleProduction)
	mux.HandleFunc("/api/v1/exchange", h.handleExchange)
	mux.HandleFunc("/api/v1/refresh", h.handleRefresh)
	mux.HandleFunc("/api/v1/exports/production.xlsx", h.handleExportXLSX)
	mux.HandleFunc("/api/v1/exports/production.pdf", h.handleExportPDF)
}

func (h *Handler) handleConsumption(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	country, ok := countryParam(w, r)
	if !ok {
		return
	}
	record, err := h.repo.LatestConsumption(r.Context(), country)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleProduction returns the latest snapshot, or the newest `limit` snapshots when limit is set.
func (h *Handler) handleProduction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	country, ok := countryParam(w, r)
	if !ok {
		return
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		list, err := h.repo.ListProduction(r.Context(), country, limit)
		if err != nil {
			h.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}
	record, err := h.repo.LatestProduction(r.Context(), country)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) handleExchange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	from, to, ok := pairParams(w, r)
	if !ok {
		return
	}
	record, err := h.repo.LatestExchange(r.Context(), reconcile.PairKey(from, to))
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type countryRefresh struct {
	Consumption *reconcile.ConsumptionRecord `json:"consumption"`
	Production  *reconcile.ProductionRecord  `json:"production"`
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	query := r.URL.Query()
	if query.Get("country") == "" {
		from, to, ok := pairParams(w, r)
		if !ok {
			return
		}
		record, err := h.refresher.RefreshExchange(r.Context(), from, to)
		h.logAudit(r, "refresh.exchange", reconcile.PairKey(from, to), err)
		if err != nil {
			h.respondError(w, err)
			return
		}
		if record == nil {
			http.Error(w, "no data", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, record)
		return
	}

	country, ok := countryParam(w, r)
	if !ok {
		return
	}
	var resp countryRefresh
	consumption, err := h.refresher.RefreshConsumption(r.Context(), country)
	if err != nil {
		h.logAudit(r, "refresh.country", country, err)
		h.respondError(w, err)
		return
	}
	resp.Consumption = consumption
	production, err := h.refresher.RefreshProduction(r.Context(), country)
	h.logAudit(r, "refresh.country", country, err)
	if err != nil {
		h.respondError(w, err)
		return
	}
	resp.Production = production
	if resp.Consumption == nil && resp.Production == nil {
		http.Error(w, "no data", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.handleExport(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.BuildProductionXLSX)
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	h.handleExport(w, r, "pdf", "application/pdf", export.BuildProductionPDF)
}

type exportBuilder func(countryCode string, records []reconcile.ProductionRecord, generatedAt time.Time) ([]byte, error)

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, ext, contentType string, build exportBuilder) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	country, ok := countryParam(w, r)
	if !ok {
		return
	}
	limit := defaultExportLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	records, err := h.repo.ListProduction(r.Context(), country, limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if len(records) == 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	data, err := build(country, records, h.clock.Now())
	if err != nil {
		h.logger.Printf("feeder export error: country=%s format=%s err=%v", country, ext, err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=production-"+strings.ToLower(country)+"."+ext)
	_, _ = w.Write(data)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reconcile.ErrRecordNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, application.ErrInvalidRequest), errors.Is(err, entsoe.ErrUnknownCountry):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, entsoe.ErrUpstream), errors.Is(err, entsoe.ErrMalformedDocument):
		h.logger.Printf("feeder upstream error: %v", err)
		http.Error(w, "upstream error", http.StatusBadGateway)
	default:
		h.logger.Printf("feeder handler error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) logAudit(r *http.Request, action, target string, err error) {
	if h.auditLogger == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	meta, _ := json.Marshal(map[string]any{"query": r.URL.RawQuery})
	if logErr := h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:     auth.SubjectFromContext(r.Context()),
		Role:      string(auth.RoleFromContext(r.Context())),
		Action:    action,
		Target:    target,
		Outcome:   outcome,
		Metadata:  meta,
		IP:        audit.ClientIP(r),
		UserAgent: r.UserAgent(),
		CreatedAt: h.clock.Now(),
	}); logErr != nil {
		h.logger.Printf("feeder audit error: %v", logErr)
	}
}

// countryParam reads and validates ?country=.
func countryParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	country := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("country")))
	if country == "" {
		http.Error(w, "country required", http.StatusBadRequest)
		return "", false
	}
	if _, err := entsoe.Domain(country); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return country, true
}

// pairParams reads and validates ?from=&to=.
func pairParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	from := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("from")))
	to := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("to")))
	if from == "" || to == "" {
		http.Error(w, "country or from/to required", http.StatusBadRequest)
		return "", "", false
	}
	if from == to {
		http.Error(w, "from and to must differ", http.StatusBadRequest)
		return "", "", false
	}
	for _, code := range []string{from, to} {
		if _, err := entsoe.Domain(code); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return "", "", false
		}
	}
	return from, to, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
