package hpp

import (
	"math"
	"testing"

	"dapurmanis/engine/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculateBreakdown(t *testing.T) {
	calc := NewDefaultCalculator()

	recipe := domain.Recipe{
		ID:       "rcp-test",
		Name:     "Kue Uji",
		Servings: 10,
		Ingredients: []domain.RecipeIngredient{
			{RecipeID: "rcp-test", IngredientID: "ing-tepung", Quantity: 200},
			{RecipeID: "rcp-test", IngredientID: "ing-gula", Quantity: 50},
		},
	}
	ingredients := map[string]domain.Ingredient{
		"ing-tepung": {ID: "ing-tepung", Name: "Tepung", Unit: "gram", PricePerUnit: 20},
		"ing-gula":   {ID: "ing-gula", Name: "Gula", Unit: "gram", PricePerUnit: 30},
	}

	breakdown := calc.Calculate(recipe, ingredients)

	if !almostEqual(breakdown.IngredientCost, 5500) {
		t.Fatalf("expected ingredient cost 5500, got %.2f", breakdown.IngredientCost)
	}
	if !almostEqual(breakdown.TotalCost, 7700) {
		t.Fatalf("expected total cost 7700, got %.2f", breakdown.TotalCost)
	}
	if !almostEqual(breakdown.CostPerServing, 770) {
		t.Fatalf("expected cost per serving 770, got %.2f", breakdown.CostPerServing)
	}
	if !almostEqual(breakdown.OverheadCost, 825) {
		t.Fatalf("expected overhead 825, got %.2f", breakdown.OverheadCost)
	}
	if !almostEqual(breakdown.LaborCost, 1100) {
		t.Fatalf("expected labor 1100, got %.2f", breakdown.LaborCost)
	}
	if !almostEqual(breakdown.PackagingCost, 275) {
		t.Fatalf("expected packaging 275, got %.2f", breakdown.PackagingCost)
	}
}

func TestCalculateTotalIsOneFortyPercentOfIngredientCost(t *testing.T) {
	calc := NewDefaultCalculator()

	costs := []float64{100, 999, 5500, 123456.78}
	for _, unitPrice := range costs {
		recipe := domain.Recipe{
			ID:       "rcp",
			Servings: 4,
			Ingredients: []domain.RecipeIngredient{
				{RecipeID: "rcp", IngredientID: "ing", Quantity: 1},
			},
		}
		ingredients := map[string]domain.Ingredient{
			"ing": {ID: "ing", PricePerUnit: unitPrice},
		}

		breakdown := calc.Calculate(recipe, ingredients)
		if !almostEqual(breakdown.TotalCost, unitPrice*1.40) {
			t.Fatalf("cost %.2f: expected total %.2f, got %.2f", unitPrice, unitPrice*1.40, breakdown.TotalCost)
		}
		if !almostEqual(breakdown.CostPerServing, breakdown.TotalCost/4) {
			t.Fatalf("cost %.2f: cost per serving mismatch", unitPrice)
		}
	}
}

func TestCalculateClampsServings(t *testing.T) {
	calc := NewDefaultCalculator()

	for _, servings := range []int{0, -3} {
		recipe := domain.Recipe{
			ID:       "rcp",
			Servings: servings,
			Ingredients: []domain.RecipeIngredient{
				{RecipeID: "rcp", IngredientID: "ing", Quantity: 10},
			},
		}
		ingredients := map[string]domain.Ingredient{
			"ing": {ID: "ing", PricePerUnit: 100},
		}

		breakdown := calc.Calculate(recipe, ingredients)
		if !almostEqual(breakdown.CostPerServing, breakdown.TotalCost) {
			t.Fatalf("servings %d: expected per-serving to equal total, got %.2f vs %.2f", servings, breakdown.CostPerServing, breakdown.TotalCost)
		}
	}
}

func TestCalculateEmptyRecipeYieldsZeroCost(t *testing.T) {
	calc := NewDefaultCalculator()

	breakdown := calc.Calculate(domain.Recipe{ID: "rcp-kosong", Servings: 5}, nil)
	if breakdown.TotalCost != 0 || breakdown.IngredientCost != 0 || breakdown.CostPerServing != 0 {
		t.Fatalf("expected zero breakdown, got %+v", breakdown)
	}
}

func TestCalculateSkipsUnknownIngredients(t *testing.T) {
	calc := NewDefaultCalculator()

	recipe := domain.Recipe{
		ID:       "rcp",
		Servings: 1,
		Ingredients: []domain.RecipeIngredient{
			{RecipeID: "rcp", IngredientID: "ing-known", Quantity: 2},
			{RecipeID: "rcp", IngredientID: "ing-missing", Quantity: 5},
		},
	}
	ingredients := map[string]domain.Ingredient{
		"ing-known": {ID: "ing-known", PricePerUnit: 50},
	}

	breakdown := calc.Calculate(recipe, ingredients)
	if !almostEqual(breakdown.IngredientCost, 100) {
		t.Fatalf("expected missing ingredient to be skipped, got %.2f", breakdown.IngredientCost)
	}
}

func TestCalculateWithOperationalCosts(t *testing.T) {
	calc := NewDefaultCalculator()

	recipe := domain.Recipe{
		ID:       "rcp",
		Servings: 2,
		Ingredients: []domain.RecipeIngredient{
			{RecipeID: "rcp", IngredientID: "ing", Quantity: 100},
		},
	}
	ingredients := map[string]domain.Ingredient{
		"ing": {ID: "ing", PricePerUnit: 10},
	}
	costs := []domain.OperationalCost{
		{ID: "cost-listrik", Name: "Listrik", Type: domain.CostTypeVariable, Amount: 2000, Unit: "batch"},
		{ID: "cost-gas", Name: "Gas", Type: domain.CostTypeVariable, Amount: 1500, Unit: "batch"},
	}

	breakdown := calc.CalculateWithOperationalCosts(recipe, ingredients, costs)
	if !almostEqual(breakdown.OverheadCost, 3500) {
		t.Fatalf("expected overhead 3500 from registry, got %.2f", breakdown.OverheadCost)
	}
	wantTotal := 1000.0 + 3500 + 200 + 50
	if !almostEqual(breakdown.TotalCost, wantTotal) {
		t.Fatalf("expected total %.2f, got %.2f", wantTotal, breakdown.TotalCost)
	}

	// Without a registry the flat percentages apply.
	plain := calc.CalculateWithOperationalCosts(recipe, ingredients, nil)
	if !almostEqual(plain.TotalCost, 1400) {
		t.Fatalf("expected fallback total 1400, got %.2f", plain.TotalCost)
	}
}
