package domain

import "time"

type Ingredient struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	PricePerUnit float64 `json:"price_per_unit"`
	CurrentStock float64 `json:"current_stock"`
	MinStock     float64 `json:"min_stock"`
}

type RecipeIngredient struct {
	RecipeID     string  `json:"recipe_id"`
	IngredientID string  `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

type Recipe struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Servings    int                `json:"servings"`
	Ingredients []RecipeIngredient `json:"ingredients"`

	// Cached cost/price fields, refreshed on recalculation. May be stale;
	// the cost engine is the source of truth.
	CostPerUnit      float64 `json:"cost_per_unit"`
	SellingPrice     float64 `json:"selling_price"`
	MarginPercentage float64 `json:"margin_percentage"`
}

type OrderItem struct {
	OrderID    string  `json:"order_id"`
	RecipeID   string  `json:"recipe_id"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
	HPPAtOrder float64 `json:"hpp_at_order"`
}

type Order struct {
	ID                string      `json:"id"`
	OrderNo           string      `json:"order_no"`
	Status            string      `json:"status"`
	CustomerID        string      `json:"customer_id"`
	Items             []OrderItem `json:"items"`
	TotalAmount       float64     `json:"total_amount"`
	DeliveryDate      *time.Time  `json:"delivery_date,omitempty"`
	FinancialRecordID string      `json:"financial_record_id,omitempty"`
	ProductionBatchID string      `json:"production_batch_id,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

type StockTransaction struct {
	ID           string    `json:"id"`
	IngredientID string    `json:"ingredient_id"`
	Type         string    `json:"type"`
	Quantity     float64   `json:"quantity"`
	UnitPrice    float64   `json:"unit_price"`
	TotalPrice   float64   `json:"total_price"`
	Reference    string    `json:"reference"`
	Note         string    `json:"note,omitempty"`
	ActorID      string    `json:"actor_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type StockReservation struct {
	ID           string    `json:"id"`
	IngredientID string    `json:"ingredient_id"`
	OrderID      string    `json:"order_id"`
	Quantity     float64   `json:"quantity"`
	Status       string    `json:"status"`
	ActorID      string    `json:"actor_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProductionBatch struct {
	ID               string     `json:"id"`
	RecipeID         string     `json:"recipe_id"`
	OrderID          string     `json:"order_id"`
	Quantity         int        `json:"quantity"`
	CostPerUnit      float64    `json:"cost_per_unit"`
	TotalCost        float64    `json:"total_cost"`
	Status           string     `json:"status"`
	PlannedStartTime time.Time  `json:"planned_start_time"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	Note             string     `json:"note,omitempty"`
}

type FinancialRecord struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Reference   string    `json:"reference"`
	Date        time.Time `json:"date"`
	ActorID     string    `json:"actor_id"`
}

type Customer struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Phone             string     `json:"phone,omitempty"`
	TotalOrders       int        `json:"total_orders"`
	TotalSpent        float64    `json:"total_spent"`
	AverageOrderValue float64    `json:"average_order_value"`
	LastOrderDate     *time.Time `json:"last_order_date,omitempty"`
}

type OperationalCost struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

type IngredientPriceHistory struct {
	ID           string    `json:"id"`
	IngredientID string    `json:"ingredient_id"`
	OldPrice     float64   `json:"old_price"`
	NewPrice     float64   `json:"new_price"`
	ChangedBy    string    `json:"changed_by"`
	ChangedAt    time.Time `json:"changed_at"`
}

type Alert struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Severity     string    `json:"severity"`
	IngredientID string    `json:"ingredient_id,omitempty"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
}

// SalesRecord is a historical sale used for price elasticity analysis.
type SalesRecord struct {
	RecipeID string    `json:"recipe_id"`
	Price    float64   `json:"price"`
	Quantity int       `json:"quantity"`
	Date     time.Time `json:"date"`
}

type PurchaseItem struct {
	IngredientID string  `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
}

type Actor struct {
	ID   string
	Name string
}

const (
	OrderStatusPending      = "PENDING"
	OrderStatusConfirmed    = "CONFIRMED"
	OrderStatusInProduction = "IN_PRODUCTION"
	OrderStatusReady        = "READY"
	OrderStatusDelivered    = "DELIVERED"
	OrderStatusCancelled    = "CANCELLED"
)

const (
	StockTxUsage      = "USAGE"
	StockTxAdjustment = "ADJUSTMENT"
	StockTxPurchase   = "PURCHASE"
	StockTxProduction = "PRODUCTION"
)

const (
	ReservationActive   = "ACTIVE"
	ReservationReleased = "RELEASED"
	ReservationConsumed = "CONSUMED"
)

const (
	BatchStatusPlanned    = "PLANNED"
	BatchStatusInProgress = "IN_PROGRESS"
	BatchStatusDone       = "DONE"
	BatchStatusCancelled  = "CANCELLED"
)

const (
	FinancialIncome  = "INCOME"
	FinancialExpense = "EXPENSE"
)

const (
	CostTypeFixed    = "fixed"
	CostTypeVariable = "variable"
)

const (
	AlertLowStock   = "low_stock"
	AlertOutOfStock = "out_of_stock"

	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// StockEffect returns the signed effect of a stock transaction on the
// ingredient aggregate. USAGE subtracts; every other type adds.
func StockEffect(txType string, quantity float64) float64 {
	if txType == StockTxUsage {
		return -quantity
	}
	return quantity
}
