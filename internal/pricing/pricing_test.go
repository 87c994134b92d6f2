package pricing

import (
	"math"
	"testing"
	"time"

	"dapurmanis/engine/internal/domain"
)

func newTestEngine() *Engine {
	return NewEngine(Config{
		MinimumProfitMargin: 10,
		DefaultProfitMargin: 30,
		FixedCostReference:  1000,
	})
}

func TestTiersFromReferenceCost(t *testing.T) {
	engine := newTestEngine()

	tiers := engine.Tiers(7700)
	if tiers.Economy.Price != 8500 {
		t.Fatalf("expected economy 8500, got %.0f", tiers.Economy.Price)
	}
	if tiers.Standard.Price != 11000 {
		t.Fatalf("expected standard 11000, got %.0f", tiers.Standard.Price)
	}
	// 7700 * 2 = 15400, rounded up to the next 1000.
	if tiers.Premium.Price != 16000 {
		t.Fatalf("expected premium 16000, got %.0f", tiers.Premium.Price)
	}
}

func TestTierRoundingProperties(t *testing.T) {
	engine := newTestEngine()

	costs := []float64{1, 499, 500, 777, 7700, 12345, 99999, 1234567}
	for _, cost := range costs {
		tiers := engine.Tiers(cost)

		if math.Mod(tiers.Economy.Price, 500) != 0 {
			t.Fatalf("cost %.0f: economy %.0f not a multiple of 500", cost, tiers.Economy.Price)
		}
		if math.Mod(tiers.Standard.Price, 1000) != 0 {
			t.Fatalf("cost %.0f: standard %.0f not a multiple of 1000", cost, tiers.Standard.Price)
		}
		if math.Mod(tiers.Premium.Price, 1000) != 0 {
			t.Fatalf("cost %.0f: premium %.0f not a multiple of 1000", cost, tiers.Premium.Price)
		}

		// Ceiling never rounds below the margin floor.
		if tiers.Economy.Price < cost*1.10 {
			t.Fatalf("cost %.0f: economy %.0f below margin floor", cost, tiers.Economy.Price)
		}
		if tiers.Standard.Price < cost*1.30 {
			t.Fatalf("cost %.0f: standard %.0f below margin floor", cost, tiers.Standard.Price)
		}
		if tiers.Premium.Price < cost*2 {
			t.Fatalf("cost %.0f: premium %.0f below margin floor", cost, tiers.Premium.Price)
		}
	}
}

func TestProfitability(t *testing.T) {
	engine := newTestEngine()

	p := engine.Profitability(11000, 7700)
	if p.ProfitAmount != 3300 {
		t.Fatalf("expected profit 3300, got %.0f", p.ProfitAmount)
	}
	if math.Abs(p.ProfitMargin-30) > 0.01 {
		t.Fatalf("expected margin 30%%, got %.2f", p.ProfitMargin)
	}
	if p.BreakEvenVolume != 1 {
		t.Fatalf("expected break-even volume 1, got %d", p.BreakEvenVolume)
	}

	tight := engine.Profitability(8000, 7700)
	if tight.BreakEvenVolume != 4 {
		t.Fatalf("expected break-even volume 4 for 300 profit, got %d", tight.BreakEvenVolume)
	}
}

func TestRecommendations(t *testing.T) {
	engine := newTestEngine()

	// High cost relative to standard price triggers the cost warning.
	highCost := 9000.0
	tiers := Tiers{
		Economy:  Tier{Price: 10000, RoundingUnit: 500},
		Standard: Tier{Price: 12000, RoundingUnit: 1000},
		Premium:  Tier{Price: 18000, RoundingUnit: 1000},
	}
	recs := engine.Recommendations(tiers, highCost)
	if len(recs) == 0 {
		t.Fatalf("expected at least one recommendation for cost %.0f", highCost)
	}

	// Economy below cost*1.2 triggers the loss-risk warning.
	tiers.Economy.Price = highCost * 1.1
	recs = engine.Recommendations(tiers, highCost)
	found := false
	for _, rec := range recs {
		if rec == "Harga ekonomis terlalu rendah, risiko kerugian tinggi." {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected economy loss-risk warning, got %v", recs)
	}
}

func TestDynamicAdjustPreservesRoundingUnits(t *testing.T) {
	engine := newTestEngine()

	tiers := engine.Tiers(7700)
	adjusted := engine.DynamicAdjust(tiers, 1.3, 1.1, 1.0)

	if math.Mod(adjusted.Economy.Price, 500) != 0 {
		t.Fatalf("adjusted economy %.0f not a multiple of 500", adjusted.Economy.Price)
	}
	if math.Mod(adjusted.Standard.Price, 1000) != 0 {
		t.Fatalf("adjusted standard %.0f not a multiple of 1000", adjusted.Standard.Price)
	}
	if math.Mod(adjusted.Premium.Price, 1000) != 0 {
		t.Fatalf("adjusted premium %.0f not a multiple of 1000", adjusted.Premium.Price)
	}
	if adjusted.Standard.Price <= tiers.Standard.Price {
		t.Fatalf("expected upward adjustment, got %.0f vs %.0f", adjusted.Standard.Price, tiers.Standard.Price)
	}
}

func TestDynamicAdjustClampsFactors(t *testing.T) {
	engine := newTestEngine()
	tiers := engine.Tiers(10000)

	// Factors beyond their documented ranges are clamped, so extreme
	// inputs behave like the range bounds.
	extreme := engine.DynamicAdjust(tiers, 99, 99, 1.0)
	bounded := engine.DynamicAdjust(tiers, 1.5, 1.2, 1.0)
	if extreme != bounded {
		t.Fatalf("expected clamped adjustment %+v, got %+v", bounded, extreme)
	}
}

func TestBulkPricing(t *testing.T) {
	quote := BulkPrice(10000, 75)
	if quote.Tier != "bulk" {
		t.Fatalf("expected tier bulk, got %s", quote.Tier)
	}
	if quote.DiscountPercent != 15 {
		t.Fatalf("expected 15%% discount, got %.0f", quote.DiscountPercent)
	}
	if quote.UnitPrice != 8500 {
		t.Fatalf("expected unit price 8500, got %.0f", quote.UnitPrice)
	}
}

func TestBulkPricingTierTable(t *testing.T) {
	cases := []struct {
		quantity int
		tier     string
		discount float64
	}{
		{1, "retail", 0},
		{9, "retail", 0},
		{10, "small-bulk", 5},
		{19, "small-bulk", 5},
		{20, "volume", 10},
		{50, "bulk", 15},
		{99, "bulk", 15},
		{100, "wholesale", 20},
		{500, "wholesale", 20},
	}

	for _, tc := range cases {
		quote := BulkPrice(10000, tc.quantity)
		if quote.Tier != tc.tier {
			t.Fatalf("qty %d: expected tier %s, got %s", tc.quantity, tc.tier, quote.Tier)
		}
		if quote.DiscountPercent != tc.discount {
			t.Fatalf("qty %d: expected discount %.0f, got %.0f", tc.quantity, tc.discount, quote.DiscountPercent)
		}
		if math.Mod(quote.UnitPrice, 100) != 0 {
			t.Fatalf("qty %d: unit price %.0f not a multiple of 100", tc.quantity, quote.UnitPrice)
		}
	}
}

func TestBulkPricingMonotonic(t *testing.T) {
	prev := math.Inf(1)
	for _, quantity := range []int{1, 10, 20, 50, 100} {
		quote := BulkPrice(10000, quantity)
		if quote.UnitPrice > prev {
			t.Fatalf("qty %d: unit price %.0f increased from %.0f", quantity, quote.UnitPrice, prev)
		}
		prev = quote.UnitPrice
	}
}

func TestAnalyzeElasticity(t *testing.T) {
	now := time.Now()
	records := []domain.SalesRecord{
		{RecipeID: "rcp", Price: 12000, Quantity: 40, Date: now},
		{RecipeID: "rcp", Price: 13000, Quantity: 36, Date: now},
		{RecipeID: "rcp", Price: 17000, Quantity: 30, Date: now},
		{RecipeID: "rcp", Price: 18000, Quantity: 28, Date: now},
		{RecipeID: "rcp", Price: 23000, Quantity: 10, Date: now},
	}

	result := AnalyzeElasticity(records)
	if len(result.Points) != 3 {
		t.Fatalf("expected 3 price buckets, got %d", len(result.Points))
	}
	// Bucket 15000 averages 29 units for 435000 projected revenue,
	// beating 10000 (38 avg, 380000) and 20000 (10 avg, 200000).
	if result.OptimalPrice != 15000 {
		t.Fatalf("expected optimal bucket 15000, got %.0f", result.OptimalPrice)
	}
}

func TestAnalyzeElasticityEmptyInput(t *testing.T) {
	result := AnalyzeElasticity(nil)
	if result.OptimalPrice != 0 || len(result.Points) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestClassifyMarginRisk(t *testing.T) {
	engine := newTestEngine()

	high := engine.ClassifyMarginRisk(15, 30)
	if high.Level != "HIGH" || high.Profitable {
		t.Fatalf("expected HIGH and not profitable, got %+v", high)
	}

	medium := engine.ClassifyMarginRisk(22, 30)
	if medium.Level != "MEDIUM" || !medium.Profitable {
		t.Fatalf("expected MEDIUM and profitable, got %+v", medium)
	}

	low := engine.ClassifyMarginRisk(28, 30)
	if low.Level != "LOW" {
		t.Fatalf("expected LOW, got %+v", low)
	}
}

func TestAnalyzeProducesFullResult(t *testing.T) {
	engine := newTestEngine()

	result := engine.Analyze(7700)
	if result.Tiers.Standard.Price != 11000 {
		t.Fatalf("expected standard 11000, got %.0f", result.Tiers.Standard.Price)
	}
	if len(result.Profitability) != 3 {
		t.Fatalf("expected profitability for 3 tiers, got %d", len(result.Profitability))
	}
	if result.Risk.Level == "" {
		t.Fatalf("expected a risk classification")
	}
}
