package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"dapurmanis/engine/internal/domain"
)

func TestStockTriggerMaintainsAggregate(t *testing.T) {
	databaseURL := os.Getenv("DAPURMANIS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set DAPURMANIS_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	stamp := time.Now().UnixNano()
	ingredientID := fmt.Sprintf("ing-ledger-it-%d", stamp)
	reference := fmt.Sprintf("ORDER-LEDGER-IT-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM stock_transactions WHERE ingredient_id = $1`, ingredientID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM ingredients WHERE id = $1`, ingredientID)
	})

	if _, err := s.CreateIngredient(ctx, domain.Ingredient{
		ID: ingredientID, Name: "Tepung Ledger IT", Unit: "gram",
		PricePerUnit: 20, CurrentStock: 100, MinStock: 10,
	}); err != nil {
		t.Fatalf("create ingredient: %v", err)
	}

	steps := []struct {
		txType string
		qty    float64
	}{
		{domain.StockTxUsage, 30},
		{domain.StockTxPurchase, 50},
		{domain.StockTxAdjustment, 5},
	}
	expected := 100.0
	for _, step := range steps {
		if _, err := s.CreateStockTransaction(ctx, domain.StockTransaction{
			IngredientID: ingredientID,
			Type:         step.txType,
			Quantity:     step.qty,
			Reference:    reference,
		}); err != nil {
			t.Fatalf("create %s transaction: %v", step.txType, err)
		}
		expected += domain.StockEffect(step.txType, step.qty)
	}

	var currentStock float64
	if err := s.db.QueryRowContext(ctx, `
		SELECT current_stock
		FROM ingredients
		WHERE id = $1
	`, ingredientID).Scan(&currentStock); err != nil {
		t.Fatalf("query stock: %v", err)
	}
	if currentStock != expected {
		t.Fatalf("expected trigger-maintained stock %.2f, got %.2f", expected, currentStock)
	}
}
