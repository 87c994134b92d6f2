package store

import (
	"context"
	"errors"
	"time"

	"dapurmanis/engine/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidRecord     = errors.New("invalid record")
)

type Repository interface {
	ListIngredients(ctx context.Context) ([]domain.Ingredient, error)
	GetIngredientByID(ctx context.Context, ingredientID string) (*domain.Ingredient, error)
	CreateIngredient(ctx context.Context, ingredient domain.Ingredient) (*domain.Ingredient, error)
	UpdateIngredientPrice(ctx context.Context, ingredientID string, pricePerUnit float64) (*domain.Ingredient, error)

	ListRecipes(ctx context.Context) ([]domain.Recipe, error)
	GetRecipeByID(ctx context.Context, recipeID string) (*domain.Recipe, error)
	ListRecipesUsingIngredient(ctx context.Context, ingredientID string) ([]domain.Recipe, error)
	UpdateRecipeCost(ctx context.Context, recipeID string, costPerUnit float64, sellingPrice float64, marginPercentage float64) error

	GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error)
	SetOrderFinancialRecord(ctx context.Context, orderID string, financialRecordID string) error
	SetOrderProductionBatch(ctx context.Context, orderID string, batchID string) error
	SetOrderStatus(ctx context.Context, orderID string, status string) error

	GetCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error)
	UpdateCustomerStats(ctx context.Context, customer domain.Customer) error

	// CreateStockTransaction is the only stock mutation path. The store
	// applies the transaction's signed effect to the ingredient's
	// current_stock aggregate atomically with the insert.
	CreateStockTransaction(ctx context.Context, tx domain.StockTransaction) (*domain.StockTransaction, error)
	ListStockTransactions(ctx context.Context, ingredientID string, limit int) ([]domain.StockTransaction, error)
	ListStockTransactionsByReference(ctx context.Context, reference string) ([]domain.StockTransaction, error)

	CreateReservation(ctx context.Context, res domain.StockReservation) (*domain.StockReservation, error)
	ListActiveReservations(ctx context.Context, orderID string) ([]domain.StockReservation, error)
	SumActiveReservations(ctx context.Context, ingredientID string) (float64, error)
	SetReservationStatus(ctx context.Context, reservationID string, status string) error

	CreateProductionBatch(ctx context.Context, batch domain.ProductionBatch) (*domain.ProductionBatch, error)
	GetProductionBatchByID(ctx context.Context, batchID string) (*domain.ProductionBatch, error)
	ListProductionBatchesByOrder(ctx context.Context, orderID string) ([]domain.ProductionBatch, error)
	SetProductionBatchStatus(ctx context.Context, batchID string, status string, completedAt *time.Time) error

	CreateFinancialRecord(ctx context.Context, record domain.FinancialRecord) (*domain.FinancialRecord, error)
	GetFinancialRecordByID(ctx context.Context, recordID string) (*domain.FinancialRecord, error)
	ListFinancialRecordsByReference(ctx context.Context, reference string) ([]domain.FinancialRecord, error)
	DeleteFinancialRecord(ctx context.Context, recordID string) error

	ListOperationalCosts(ctx context.Context) ([]domain.OperationalCost, error)
	GetOperationalCostByID(ctx context.Context, costID string) (*domain.OperationalCost, error)

	CreateIngredientPriceHistory(ctx context.Context, entry domain.IngredientPriceHistory) error
	ListIngredientPriceHistory(ctx context.Context, ingredientID string, limit int) ([]domain.IngredientPriceHistory, error)

	CreateAlert(ctx context.Context, alert domain.Alert) error
	ListAlerts(ctx context.Context, limit int) ([]domain.Alert, error)

	ListSalesRecords(ctx context.Context, recipeID string, limit int) ([]domain.SalesRecord, error)
}
