package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stocksentry/stocksentry/internal/advisor"
	"github.com/stocksentry/stocksentry/internal/config"
	"github.com/stocksentry/stocksentry/internal/notify"
	"github.com/stocksentry/stocksentry/internal/obs"
	"github.com/stocksentry/stocksentry/internal/report"
	"github.com/stocksentry/stocksentry/internal/store"
)

// App wires the HTTP handlers to the store and the collaborators. Advisor
// may be nil when the advisor channel is disabled.
type App struct {
	Cfg       config.Config
	Store     *store.Store
	Messenger notify.Messenger
	Advisor   advisor.Advisor
	started   time.Time
}

func NewApp(cfg config.Config, st *store.Store, msg notify.Messenger, adv advisor.Advisor) *App {
	return &App{Cfg: cfg, Store: st, Messenger: msg, Advisor: adv, started: time.Now()}
}

type addProductRequest struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// decodeJSON enforces the JSON content type and strict field checking shared
// by all write endpoints.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) addProductHandler(w http.ResponseWriter, r *http.Request) {
	var req addProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "id is required")
		return
	}
	if req.Name == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "name is required")
		return
	}
	if req.Quantity < 0 {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "quantity must be >= 0")
		return
	}
	if req.Price < 0 {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "price must be >= 0")
		return
	}
	p, err := a.Store.Add(req.ID, req.Name, req.Quantity, req.Price, req.Category)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	obs.Logger.Info("product_added",
		"request_id", RequestIDFromContext(r.Context()),
		"product_id", p.ID,
		"quantity", p.Quantity,
	)
	writeJSON(w, http.StatusCreated, p)
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Store.Snapshot())
}

func (a *App) getProductHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := a.Store.Get(id)
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type adjustRequest struct {
	Delta *int `json:"delta"`
}

func (a *App) adjustHandler(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Delta == nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "delta is required")
		return
	}
	p, err := a.Store.AdjustQuantity(chi.URLParam(r, "id"), *req.Delta)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	obs.Logger.Info("quantity_adjusted",
		"request_id", RequestIDFromContext(r.Context()),
		"product_id", p.ID,
		"delta", *req.Delta,
		"quantity", p.Quantity,
	)
	writeJSON(w, http.StatusOK, p)
}

type sellRequest struct {
	Quantity int `json:"quantity"`
}

func (a *App) sellHandler(w http.ResponseWriter, r *http.Request) {
	var req sellRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity <= 0 {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "quantity must be > 0")
		return
	}
	p, err := a.Store.Sell(chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	obs.Logger.Info("product_sold",
		"request_id", RequestIDFromContext(r.Context()),
		"product_id", p.ID,
		"sold", req.Quantity,
		"quantity", p.Quantity,
	)
	writeJSON(w, http.StatusOK, p)
}

func (a *App) removeProductHandler(w http.ResponseWriter, r *http.Request) {
	p, err := a.Store.Remove(chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	obs.Logger.Info("product_removed",
		"request_id", RequestIDFromContext(r.Context()),
		"product_id", p.ID,
	)
	writeJSON(w, http.StatusOK, p)
}

func (a *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Store.Status())
}

func (a *App) exportCSVHandler(w http.ResponseWriter, r *http.Request) {
	b, err := a.Store.ExportCSV()
	if err != nil {
		WriteJSONError(w, http.StatusInternalServerError, "export_error", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.AttachmentName(time.Now())))
	_, _ = w.Write(b)
}

func (a *App) activitiesHandler(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			WriteJSONError(w, http.StatusBadRequest, "validation_error", "limit must be a positive integer")
			return
		}
		limit = n
	}
	entries := a.Store.RecentActivities(limit)
	writeJSON(w, http.StatusOK, entries)
}

type adviceResponse struct {
	Advice string `json:"advice"`
}

func (a *App) suggestHandler(w http.ResponseWriter, r *http.Request) {
	if a.Advisor == nil {
		WriteJSONError(w, http.StatusServiceUnavailable, "advisor_disabled", "")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), a.Cfg.NotifyTimeout)
	defer cancel()
	advice, err := a.Advisor.Suggest(ctx, a.Store.Status())
	if err != nil {
		WriteJSONError(w, http.StatusBadGateway, "advisor_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, adviceResponse{Advice: advice})
}

type askRequest struct {
	Prompt string `json:"prompt"`
}

func (a *App) askHandler(w http.ResponseWriter, r *http.Request) {
	if a.Advisor == nil {
		WriteJSONError(w, http.StatusServiceUnavailable, "advisor_disabled", "")
		return
	}
	var req askRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Prompt == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "prompt is required")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), a.Cfg.NotifyTimeout)
	defer cancel()
	advice, err := a.Advisor.Ask(ctx, req.Prompt)
	if err != nil {
		WriteJSONError(w, http.StatusBadGateway, "advisor_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, adviceResponse{Advice: advice})
}

// digestHandler sends the recent-activity digest through the messenger.
func (a *App) digestHandler(w http.ResponseWriter, r *http.Request) {
	digest := report.Digest(a.Store.RecentActivities(5))
	ctx, cancel := context.WithTimeout(r.Context(), a.Cfg.NotifyTimeout)
	defer cancel()
	if err := a.Messenger.SendMessage(ctx, digest); err != nil {
		WriteJSONError(w, http.StatusBadGateway, "notification_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"uptime_sec": time.Since(a.started).Seconds(),
	})
}
