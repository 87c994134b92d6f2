package workflow

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"dapurmanis/engine/internal/domain"
	"dapurmanis/engine/internal/xid"
)

// Inventory analysis constants, in rupiah and days.
const (
	orderingCostPerPurchase = 50000.0
	holdingCostRate         = 0.20
	usageLookbackDays       = 30

	reorderUrgentDays = 3
	reorderSoonDays   = 7
)

func (e *Engine) handleInventoryLowStock(ctx context.Context, ev InventoryLowStock) Result {
	alert := domain.Alert{
		ID:           xid.New("alert"),
		Kind:         domain.AlertLowStock,
		Severity:     ev.Severity,
		IngredientID: ev.IngredientID,
		Message:      fmt.Sprintf("Stok %s menipis: %.2f tersisa (minimum %.2f)", ev.IngredientName, ev.ProjectedStock, ev.MinStock),
		CreatedAt:    time.Now().UTC(),
	}
	if err := e.repo.CreateAlert(ctx, alert); err != nil {
		return failure("failed to record low stock alert", err)
	}
	log.Printf("[workflow] low stock (%s): %s", ev.Severity, alert.Message)
	return success("low stock alert recorded", map[string]any{"alert_id": alert.ID})
}

func (e *Engine) handleInventoryOutOfStock(ctx context.Context, ev InventoryOutOfStock) Result {
	alert := domain.Alert{
		ID:           xid.New("alert"),
		Kind:         domain.AlertOutOfStock,
		Severity:     domain.SeverityCritical,
		IngredientID: ev.IngredientID,
		Message:      fmt.Sprintf("Stok %s habis (%.2f)", ev.IngredientName, ev.ProjectedStock),
		CreatedAt:    time.Now().UTC(),
	}
	if err := e.repo.CreateAlert(ctx, alert); err != nil {
		return failure("failed to record out of stock alert", err)
	}
	log.Printf("[workflow] out of stock: %s", alert.Message)
	return success("out of stock alert recorded", map[string]any{"alert_id": alert.ID})
}

func (e *Engine) handlePurchaseCompleted(ctx context.Context, ev PurchaseCompleted) Result {
	if len(ev.Items) == 0 {
		return failure("purchase has no items", nil)
	}

	actorID := e.actorID(ctx)
	reference := "PURCHASE-" + ev.PurchaseID
	now := time.Now().UTC()

	var total float64
	received := 0
	for _, item := range ev.Items {
		if item.Quantity <= 0 {
			continue
		}
		_, err := e.repo.CreateStockTransaction(ctx, domain.StockTransaction{
			ID:           xid.New("stx"),
			IngredientID: item.IngredientID,
			Type:         domain.StockTxPurchase,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			TotalPrice:   item.Quantity * item.UnitPrice,
			Reference:    reference,
			Note:         fmt.Sprintf("Penerimaan pembelian %s", ev.PurchaseID),
			ActorID:      actorID,
			CreatedAt:    now,
		})
		if err != nil {
			log.Printf("[workflow] WARN: purchase receipt for %s failed: %v", item.IngredientID, err)
			continue
		}
		received++
		total += item.Quantity * item.UnitPrice
	}

	if total > 0 {
		_, err := e.repo.CreateFinancialRecord(ctx, domain.FinancialRecord{
			ID:          xid.New("fin"),
			Type:        domain.FinancialExpense,
			Category:    "Pembelian Bahan",
			Amount:      total,
			Description: fmt.Sprintf("Pembelian bahan baku %s", ev.PurchaseID),
			Reference:   reference,
			Date:        now,
			ActorID:     actorID,
		})
		if err != nil {
			log.Printf("[workflow] WARN: failed to record purchase expense %s: %v", ev.PurchaseID, err)
		}
	}

	return success(fmt.Sprintf("purchase %s received", ev.PurchaseID), map[string]any{
		"items_received": received,
		"total_amount":   total,
	})
}

func (e *Engine) handleProductionCompleted(ctx context.Context, ev ProductionCompleted) Result {
	batch, err := e.repo.GetProductionBatchByID(ctx, ev.BatchID)
	if err != nil {
		return failure("production batch not found", err)
	}

	now := time.Now().UTC()
	if err := e.repo.SetProductionBatchStatus(ctx, batch.ID, domain.BatchStatusDone, &now); err != nil {
		return failure("failed to mark batch done", err)
	}

	// The holds placed at confirmation are now consumed; the actual
	// stock deduction happens at order completion.
	consumed := 0
	if batch.OrderID != "" {
		reservations, err := e.repo.ListActiveReservations(ctx, batch.OrderID)
		if err != nil {
			log.Printf("[workflow] WARN: failed to list reservations for order %s: %v", batch.OrderID, err)
		} else {
			for _, res := range reservations {
				if err := e.repo.SetReservationStatus(ctx, res.ID, domain.ReservationConsumed); err != nil {
					log.Printf("[workflow] WARN: failed to consume reservation %s: %v", res.ID, err)
					continue
				}
				consumed++
			}
		}
	}

	return success(fmt.Sprintf("production batch %s completed", batch.ID), map[string]any{
		"batch_id":              batch.ID,
		"reservations_consumed": consumed,
	})
}

type FeasibilityReport struct {
	RecipeID            string   `json:"recipe_id"`
	BatchCount          int      `json:"batch_count"`
	CanProduce          bool     `json:"can_produce"`
	LimitingIngredients []string `json:"limiting_ingredients"`
	Warnings            []string `json:"warnings"`
}

// CheckProductionFeasibility reports whether current stock covers the
// requested batch count, plus non-blocking warnings for ingredients
// already at or below their reorder threshold.
func (e *Engine) CheckProductionFeasibility(ctx context.Context, recipeID string, batchCount int) (*FeasibilityReport, error) {
	recipe, err := e.repo.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if batchCount < 1 {
		batchCount = 1
	}

	report := &FeasibilityReport{
		RecipeID:            recipe.ID,
		BatchCount:          batchCount,
		LimitingIngredients: []string{},
		Warnings:            []string{},
	}

	for _, ri := range recipe.Ingredients {
		ing, err := e.repo.GetIngredientByID(ctx, ri.IngredientID)
		if err != nil {
			return nil, fmt.Errorf("resolve ingredient %s: %w", ri.IngredientID, err)
		}

		needed := ri.Quantity * float64(batchCount)
		if ing.CurrentStock < needed {
			report.LimitingIngredients = append(report.LimitingIngredients, ing.Name)
		}
		if ing.CurrentStock <= ing.MinStock {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s sudah mencapai batas minimum stok", ing.Name))
		}
	}

	report.CanProduce = len(report.LimitingIngredients) == 0
	return report, nil
}

type InventoryAnalysis struct {
	IngredientID        string  `json:"ingredient_id"`
	Status              string  `json:"status"`
	DailyUsage          float64 `json:"daily_usage"`
	DaysUntilStockout   float64 `json:"days_until_stockout"`
	ReorderUrgency      string  `json:"reorder_urgency"`
	EconomicOrderQty    float64 `json:"economic_order_qty"`
	EstimatedAnnualNeed float64 `json:"estimated_annual_need"`
}

// AnalyzeInventory derives usage rate, stockout horizon, and an EOQ
// estimate from the ingredient's recent usage transactions. EOQ uses
// the classic sqrt(2DS/H) form with a flat ordering cost and a holding
// cost of 20% of unit price.
func (e *Engine) AnalyzeInventory(ctx context.Context, ingredientID string) (*InventoryAnalysis, error) {
	ing, err := e.repo.GetIngredientByID(ctx, ingredientID)
	if err != nil {
		return nil, err
	}

	transactions, err := e.repo.ListStockTransactions(ctx, ingredientID, 500)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -usageLookbackDays)
	var recentUsage float64
	for _, tx := range transactions {
		if tx.Type != domain.StockTxUsage || tx.CreatedAt.Before(cutoff) {
			continue
		}
		recentUsage += tx.Quantity
	}
	dailyUsage := recentUsage / usageLookbackDays

	analysis := &InventoryAnalysis{
		IngredientID: ing.ID,
		DailyUsage:   dailyUsage,
		Status:       stockStatus(*ing),
	}

	if dailyUsage > 0 {
		analysis.DaysUntilStockout = ing.CurrentStock / dailyUsage
		analysis.EstimatedAnnualNeed = dailyUsage * 365

		holdingCost := ing.PricePerUnit * holdingCostRate
		if holdingCost > 0 {
			analysis.EconomicOrderQty = math.Sqrt(2 * analysis.EstimatedAnnualNeed * orderingCostPerPurchase / holdingCost)
		}

		switch {
		case analysis.DaysUntilStockout <= reorderUrgentDays:
			analysis.ReorderUrgency = "urgent"
		case analysis.DaysUntilStockout <= reorderSoonDays:
			analysis.ReorderUrgency = "soon"
		default:
			analysis.ReorderUrgency = "normal"
		}
	} else {
		analysis.ReorderUrgency = "normal"
	}

	return analysis, nil
}

func stockStatus(ing domain.Ingredient) string {
	switch {
	case ing.CurrentStock <= 0:
		return "out_of_stock"
	case ing.CurrentStock <= ing.MinStock*0.5:
		return "critical"
	case ing.CurrentStock <= ing.MinStock:
		return "low"
	case ing.MinStock > 0 && ing.CurrentStock > ing.MinStock*3:
		return "overstocked"
	default:
		return "normal"
	}
}
