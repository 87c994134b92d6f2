package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dapurmanis/engine/internal/domain"
	"dapurmanis/engine/internal/pricing"
	"dapurmanis/engine/internal/store"
	"dapurmanis/engine/internal/workflow"
)

type API struct {
	engine        *workflow.Engine
	pricing       *pricing.Engine
	repo          store.Repository
	allowedOrigin string
}

func New(engine *workflow.Engine, pricingEngine *pricing.Engine, repo store.Repository, allowedOrigin string) *API {
	return &API{
		engine:        engine,
		pricing:       pricingEngine,
		repo:          repo,
		allowedOrigin: allowedOrigin,
	}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/api/v1/events", a.handleEvent)
	mux.HandleFunc("/api/v1/recipes/", a.handleRecipeActions)
	mux.HandleFunc("/api/v1/ingredients/", a.handleIngredientActions)
	mux.HandleFunc("/api/v1/pricing/bulk", a.handleBulkPricing)
	mux.HandleFunc("/api/v1/pricing/dynamic", a.handleDynamicPricing)
	mux.HandleFunc("/api/v1/alerts", a.handleAlerts)

	return a.withMiddleware(mux)
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Actor-ID")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(startedAt))
	})
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// eventEnvelope is the wire form of a dispatched event. The kind
// selects which payload fields apply.
type eventEnvelope struct {
	Kind string `json:"kind"`

	OrderID   string `json:"order_id,omitempty"`
	NewStatus string `json:"new_status,omitempty"`

	PurchaseID string                `json:"purchase_id,omitempty"`
	Items      []domain.PurchaseItem `json:"items,omitempty"`

	BatchID string `json:"batch_id,omitempty"`

	IngredientID string  `json:"ingredient_id,omitempty"`
	OldPrice     float64 `json:"old_price,omitempty"`
	NewPrice     float64 `json:"new_price,omitempty"`

	CostID    string  `json:"cost_id,omitempty"`
	OldAmount float64 `json:"old_amount,omitempty"`
	NewAmount float64 `json:"new_amount,omitempty"`

	RecipeID string `json:"recipe_id,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

func (env eventEnvelope) toEvent() (workflow.Event, error) {
	switch env.Kind {
	case "order.completed":
		return workflow.OrderCompleted{OrderID: env.OrderID}, nil
	case "order.cancelled":
		return workflow.OrderCancelled{OrderID: env.OrderID}, nil
	case "order.status_changed":
		return workflow.OrderStatusChanged{OrderID: env.OrderID, NewStatus: env.NewStatus}, nil
	case "purchase.completed":
		return workflow.PurchaseCompleted{PurchaseID: env.PurchaseID, Items: env.Items}, nil
	case "production.completed":
		return workflow.ProductionCompleted{BatchID: env.BatchID}, nil
	case "ingredient.price_changed":
		return workflow.IngredientPriceChanged{IngredientID: env.IngredientID, OldPrice: env.OldPrice, NewPrice: env.NewPrice}, nil
	case "operational_cost.changed":
		return workflow.OperationalCostChanged{CostID: env.CostID, OldAmount: env.OldAmount, NewAmount: env.NewAmount}, nil
	case "hpp.recalculation_needed":
		return workflow.HPPRecalculationNeeded{RecipeID: env.RecipeID, Reason: env.Reason}, nil
	default:
		return nil, fmt.Errorf("unsupported event kind %q", env.Kind)
	}
}

func (a *API) handleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	var env eventEnvelope
	if err := decodeJSON(r, &env); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	event, err := env.toEvent()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx := workflow.WithServerContext(r.Context())
	if actorID := strings.TrimSpace(r.Header.Get("X-Actor-ID")); actorID != "" {
		ctx = workflow.WithActor(ctx, domain.Actor{ID: actorID})
	}

	result := a.engine.Dispatch(ctx, event)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

func (a *API) handleRecipeActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/recipes/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusNotFound, errors.New("not found"))
		return
	}
	recipeID, action := parts[0], parts[1]
	ctx := r.Context()

	switch action {
	case "hpp":
		breakdown, err := a.engine.RecipeHPP(ctx, recipeID)
		if err != nil {
			writeError(w, statusFromError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, breakdown)
	case "pricing":
		result, err := a.engine.RecipePricing(ctx, recipeID)
		if err != nil {
			writeError(w, statusFromError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	case "feasibility":
		batches, _ := strconv.Atoi(r.URL.Query().Get("batches"))
		report, err := a.engine.CheckProductionFeasibility(ctx, recipeID, batches)
		if err != nil {
			writeError(w, statusFromError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	case "elasticity":
		records, err := a.repo.ListSalesRecords(ctx, recipeID, 500)
		if err != nil {
			writeError(w, statusFromError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, pricing.AnalyzeElasticity(records))
	default:
		writeError(w, http.StatusNotFound, errors.New("not found"))
	}
}

func (a *API) handleIngredientActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/ingredients/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "analysis" {
		writeError(w, http.StatusNotFound, errors.New("not found"))
		return
	}

	analysis, err := a.engine.AnalyzeInventory(r.Context(), parts[0])
	if err != nil {
		writeError(w, statusFromError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (a *API) handleBulkPricing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	var req struct {
		BasePrice float64 `json:"base_price"`
		Quantity  int     `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.BasePrice <= 0 || req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, errors.New("base_price and quantity are required"))
		return
	}

	writeJSON(w, http.StatusOK, pricing.BulkPrice(req.BasePrice, req.Quantity))
}

func (a *API) handleDynamicPricing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	var req struct {
		Cost        float64 `json:"cost"`
		Demand      float64 `json:"demand"`
		Competition float64 `json:"competition"`
		Season      float64 `json:"season"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Cost <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("cost is required"))
		return
	}

	tiers := a.pricing.Tiers(req.Cost)
	adjusted := a.pricing.DynamicAdjust(tiers, req.Demand, req.Competition, req.Season)
	writeJSON(w, http.StatusOK, map[string]any{
		"base":     tiers,
		"adjusted": adjusted,
	})
}

func (a *API) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	alerts, err := a.repo.ListAlerts(r.Context(), limit)
	if err != nil {
		writeError(w, statusFromError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidRecord):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeError(w http.ResponseWriter, status int, err error) {
	// 5xx responses return a generic message so internal details never
	// reach the client; 4xx messages are user-facing.
	msg := err.Error()
	if status >= 500 {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
