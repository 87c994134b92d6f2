package workflow

import (
	"context"
	"math"
	"testing"
	"time"

	"dapurmanis/engine/internal/domain"
)

func TestPurchaseCompletedAddsStockAndRecordsExpense(t *testing.T) {
	engine, repo := newTestEngine(Options{})
	ctx := serverCtx()

	if _, err := repo.CreateIngredient(context.Background(), domain.Ingredient{
		ID: "ing-gula", Name: "Gula Pasir", Unit: "gram",
		PricePerUnit: 15, CurrentStock: 20, MinStock: 10,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res := engine.Dispatch(ctx, PurchaseCompleted{
		PurchaseID: "po-77",
		Items: []domain.PurchaseItem{
			{IngredientID: "ing-gula", Quantity: 100, UnitPrice: 15},
		},
	})
	if !res.Success {
		t.Fatalf("purchase failed: %s", res.Err)
	}

	ing, err := repo.GetIngredientByID(ctx, "ing-gula")
	if err != nil {
		t.Fatalf("get ingredient: %v", err)
	}
	if ing.CurrentStock != 120 {
		t.Fatalf("expected stock 120 after receipt, got %.2f", ing.CurrentStock)
	}

	transactions, err := repo.ListStockTransactionsByReference(ctx, "PURCHASE-po-77")
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(transactions) != 1 || transactions[0].Type != domain.StockTxPurchase {
		t.Fatalf("expected one purchase transaction, got %+v", transactions)
	}

	records, err := repo.ListFinancialRecordsByReference(ctx, "PURCHASE-po-77")
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one expense record, got %d", len(records))
	}
	record := records[0]
	if record.Type != domain.FinancialExpense || record.Category != "Pembelian Bahan" {
		t.Fatalf("unexpected expense record %+v", record)
	}
	if record.Amount != 1500 {
		t.Fatalf("expected expense 1500, got %.0f", record.Amount)
	}
}

func TestPurchaseCompletedRejectsEmptyPurchase(t *testing.T) {
	engine, _ := newTestEngine(Options{})
	res := engine.Dispatch(serverCtx(), PurchaseCompleted{PurchaseID: "po-empty"})
	if res.Success {
		t.Fatalf("expected failure for purchase without items")
	}
}

func TestProductionCompletedMarksBatchDoneAndConsumesHolds(t *testing.T) {
	engine, repo := newTestEngine(Options{})
	order := seedOrderFixture(t, repo, 100, 5, 2)
	ctx := serverCtx()

	if res := engine.Dispatch(ctx, OrderStatusChanged{OrderID: order.ID, NewStatus: domain.OrderStatusConfirmed}); !res.Success {
		t.Fatalf("confirmation failed: %s", res.Err)
	}

	linked, _ := repo.GetOrderByID(ctx, order.ID)
	if linked.ProductionBatchID == "" {
		t.Fatalf("expected a batch linked after confirmation")
	}

	stockBefore, _ := repo.GetIngredientByID(ctx, "ing-tepung")

	res := engine.Dispatch(ctx, ProductionCompleted{BatchID: linked.ProductionBatchID})
	if !res.Success {
		t.Fatalf("production completion failed: %s", res.Err)
	}

	batch, err := repo.GetProductionBatchByID(ctx, linked.ProductionBatchID)
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if batch.Status != domain.BatchStatusDone {
		t.Fatalf("expected DONE batch, got %s", batch.Status)
	}
	if batch.CompletedAt == nil {
		t.Fatalf("expected completion timestamp")
	}

	active, _ := repo.ListActiveReservations(ctx, order.ID)
	if len(active) != 0 {
		t.Fatalf("expected holds consumed, %d still active", len(active))
	}

	// Stock is deducted at order completion, not at production.
	stockAfter, _ := repo.GetIngredientByID(ctx, "ing-tepung")
	if stockAfter.CurrentStock != stockBefore.CurrentStock {
		t.Fatalf("expected production to leave stock alone, %.2f -> %.2f", stockBefore.CurrentStock, stockAfter.CurrentStock)
	}
}

func TestCheckProductionFeasibility(t *testing.T) {
	engine, repo := newTestEngine(Options{})
	seedOrderFixture(t, repo, 5, 4, 1)
	ctx := serverCtx()

	report, err := engine.CheckProductionFeasibility(ctx, "rcp-bolu", 3)
	if err != nil {
		t.Fatalf("feasibility: %v", err)
	}
	if !report.CanProduce {
		t.Fatalf("expected 3 batches feasible with stock 5, report %+v", report)
	}
	if len(report.Warnings) != 0 {
		t.Fatalf("expected no warnings above min stock, got %v", report.Warnings)
	}

	report, err = engine.CheckProductionFeasibility(ctx, "rcp-bolu", 8)
	if err != nil {
		t.Fatalf("feasibility: %v", err)
	}
	if report.CanProduce {
		t.Fatalf("expected 8 batches infeasible with stock 5")
	}
	if len(report.LimitingIngredients) != 1 || report.LimitingIngredients[0] != "Tepung Terigu" {
		t.Fatalf("expected flour flagged as limiting, got %v", report.LimitingIngredients)
	}
}

func TestCheckProductionFeasibilityClampsBatchCount(t *testing.T) {
	engine, repo := newTestEngine(Options{})
	seedOrderFixture(t, repo, 5, 2, 1)

	report, err := engine.CheckProductionFeasibility(serverCtx(), "rcp-bolu", 0)
	if err != nil {
		t.Fatalf("feasibility: %v", err)
	}
	if report.BatchCount != 1 {
		t.Fatalf("expected batch count clamped to 1, got %d", report.BatchCount)
	}
}

func TestCheckProductionFeasibilityWarnsAtMinStock(t *testing.T) {
	engine, repo := newTestEngine(Options{})
	seedOrderFixture(t, repo, 4, 4, 1)

	report, err := engine.CheckProductionFeasibility(serverCtx(), "rcp-bolu", 2)
	if err != nil {
		t.Fatalf("feasibility: %v", err)
	}
	if !report.CanProduce {
		t.Fatalf("expected feasible, report %+v", report)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("expected a min-stock warning, got %v", report.Warnings)
	}
}

func TestAnalyzeInventoryDerivesUsageAndEOQ(t *testing.T) {
	engine, repo := newTestEngine(Options{})
	ctx := serverCtx()

	if _, err := repo.CreateIngredient(context.Background(), domain.Ingredient{
		ID: "ing-mentega", Name: "Mentega", Unit: "gram",
		PricePerUnit: 50, CurrentStock: 1500, MinStock: 100,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// 600 grams used over the last month: 20/day.
	for i := 0; i < 3; i++ {
		if _, err := repo.CreateStockTransaction(ctx, domain.StockTransaction{
			IngredientID: "ing-mentega",
			Type:         domain.StockTxUsage,
			Quantity:     200,
			CreatedAt:    time.Now().UTC().AddDate(0, 0, -(i + 1)),
		}); err != nil {
			t.Fatalf("seed usage: %v", err)
		}
	}
	// Stale usage outside the lookback window must be ignored.
	if _, err := repo.CreateStockTransaction(ctx, domain.StockTransaction{
		IngredientID: "ing-mentega",
		Type:         domain.StockTxUsage,
		Quantity:     500,
		CreatedAt:    time.Now().UTC().AddDate(0, 0, -60),
	}); err != nil {
		t.Fatalf("seed stale usage: %v", err)
	}

	analysis, err := engine.AnalyzeInventory(ctx, "ing-mentega")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if math.Abs(analysis.DailyUsage-20) > 1e-9 {
		t.Fatalf("expected daily usage 20, got %.4f", analysis.DailyUsage)
	}
	if math.Abs(analysis.EstimatedAnnualNeed-7300) > 1e-9 {
		t.Fatalf("expected annual need 7300, got %.2f", analysis.EstimatedAnnualNeed)
	}

	// Current stock moved with the seeded transactions; recompute the
	// stockout horizon from the aggregate the ledger maintains.
	ing, _ := repo.GetIngredientByID(ctx, "ing-mentega")
	wantDays := ing.CurrentStock / 20
	if math.Abs(analysis.DaysUntilStockout-wantDays) > 1e-9 {
		t.Fatalf("expected %.2f days until stockout, got %.2f", wantDays, analysis.DaysUntilStockout)
	}

	wantEOQ := math.Sqrt(2 * 7300 * orderingCostPerPurchase / (50 * holdingCostRate))
	if math.Abs(analysis.EconomicOrderQty-wantEOQ) > 1e-6 {
		t.Fatalf("expected EOQ %.2f, got %.2f", wantEOQ, analysis.EconomicOrderQty)
	}
}

func TestAnalyzeInventoryUrgency(t *testing.T) {
	engine, repo := newTestEngine(Options{})
	ctx := serverCtx()

	if _, err := repo.CreateIngredient(context.Background(), domain.Ingredient{
		ID: "ing-telur", Name: "Telur", Unit: "butir",
		PricePerUnit: 2500, CurrentStock: 100, MinStock: 20,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Burn 90 units in the window: daily usage 3, remaining 10 covers
	// just over 3 days.
	if _, err := repo.CreateStockTransaction(ctx, domain.StockTransaction{
		IngredientID: "ing-telur",
		Type:         domain.StockTxUsage,
		Quantity:     90,
		CreatedAt:    time.Now().UTC().AddDate(0, 0, -5),
	}); err != nil {
		t.Fatalf("seed usage: %v", err)
	}

	analysis, err := engine.AnalyzeInventory(ctx, "ing-telur")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	// 10 remaining / 3 per day is about 3.3 days: soon, not yet urgent.
	if analysis.ReorderUrgency != "soon" {
		t.Fatalf("expected urgency soon, got %s", analysis.ReorderUrgency)
	}
	if analysis.Status != "critical" {
		t.Fatalf("expected status critical at stock 10 of min 20, got %s", analysis.Status)
	}
}

func TestAnalyzeInventoryWithoutUsage(t *testing.T) {
	engine, repo := newTestEngine(Options{})
	ctx := serverCtx()

	if _, err := repo.CreateIngredient(context.Background(), domain.Ingredient{
		ID: "ing-vanili", Name: "Vanili", Unit: "gram",
		PricePerUnit: 500, CurrentStock: 40, MinStock: 10,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	analysis, err := engine.AnalyzeInventory(ctx, "ing-vanili")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.DailyUsage != 0 || analysis.EconomicOrderQty != 0 {
		t.Fatalf("expected zeroed usage metrics, got %+v", analysis)
	}
	if analysis.ReorderUrgency != "normal" {
		t.Fatalf("expected normal urgency without usage, got %s", analysis.ReorderUrgency)
	}
	if analysis.Status != "overstocked" {
		t.Fatalf("expected overstocked at 4x min, got %s", analysis.Status)
	}
}

func TestStockStatusBuckets(t *testing.T) {
	cases := []struct {
		current, min float64
		want         string
	}{
		{0, 10, "out_of_stock"},
		{-2, 10, "out_of_stock"},
		{5, 10, "critical"},
		{8, 10, "low"},
		{10, 10, "low"},
		{15, 10, "normal"},
		{31, 10, "overstocked"},
		{100, 0, "normal"},
	}
	for _, tc := range cases {
		got := stockStatus(domain.Ingredient{CurrentStock: tc.current, MinStock: tc.min})
		if got != tc.want {
			t.Fatalf("stock %.0f min %.0f: expected %s, got %s", tc.current, tc.min, tc.want, got)
		}
	}
}
