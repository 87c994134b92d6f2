package workflow

import (
	"context"

	"dapurmanis/engine/internal/domain"
)

// Event is the closed set of business events the engine reacts to.
// Each kind carries its own typed payload; dispatch is a type switch,
// not a string comparison.
type Event interface {
	Kind() string
}

type OrderCompleted struct {
	OrderID string
}

type OrderCancelled struct {
	OrderID string
}

type OrderStatusChanged struct {
	OrderID   string
	NewStatus string
}

type InventoryLowStock struct {
	IngredientID   string
	IngredientName string
	ProjectedStock float64
	MinStock       float64
	Severity       string
}

type InventoryOutOfStock struct {
	IngredientID   string
	IngredientName string
	ProjectedStock float64
}

type PurchaseCompleted struct {
	PurchaseID string
	Items      []domain.PurchaseItem
}

type ProductionCompleted struct {
	BatchID string
}

type IngredientPriceChanged struct {
	IngredientID string
	OldPrice     float64
	NewPrice     float64
}

type OperationalCostChanged struct {
	CostID    string
	OldAmount float64
	NewAmount float64
}

type HPPRecalculationNeeded struct {
	RecipeID string
	Reason   string
}

func (OrderCompleted) Kind() string         { return "order.completed" }
func (OrderCancelled) Kind() string         { return "order.cancelled" }
func (OrderStatusChanged) Kind() string     { return "order.status_changed" }
func (InventoryLowStock) Kind() string      { return "inventory.low_stock" }
func (InventoryOutOfStock) Kind() string    { return "inventory.out_of_stock" }
func (PurchaseCompleted) Kind() string      { return "purchase.completed" }
func (ProductionCompleted) Kind() string    { return "production.completed" }
func (IngredientPriceChanged) Kind() string { return "ingredient.price_changed" }
func (OperationalCostChanged) Kind() string { return "operational_cost.changed" }
func (HPPRecalculationNeeded) Kind() string { return "hpp.recalculation_needed" }

// Result is the uniform outcome every handler returns. Handlers never
// panic across this boundary; failures are reported, not thrown.
type Result struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
	Err     string         `json:"error,omitempty"`
}

func success(message string, data map[string]any) Result {
	return Result{Success: true, Message: message, Data: data}
}

func failure(message string, err error) Result {
	res := Result{Success: false, Message: message}
	if err != nil {
		res.Err = err.Error()
	}
	return res
}

type serverContextKey struct{}

// WithServerContext marks ctx as a server-side execution context.
// Handlers refuse to run without this marker.
func WithServerContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, serverContextKey{}, true)
}

func isServerContext(ctx context.Context) bool {
	ok, _ := ctx.Value(serverContextKey{}).(bool)
	return ok
}

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}
