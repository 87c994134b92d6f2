package workflow

import (
	"context"
	"testing"

	"dapurmanis/engine/internal/domain"
	"dapurmanis/engine/internal/store/memory"
)

// seedPricedRecipe loads an ingredient plus a recipe carrying stale
// cached cost fields so cascade tests can observe the recalculation.
func seedPricedRecipe(t *testing.T, repo *memory.Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := repo.CreateIngredient(ctx, domain.Ingredient{
		ID: "ing-coklat", Name: "Coklat Blok", Unit: "gram",
		PricePerUnit: 100, CurrentStock: 500, MinStock: 50,
	}); err != nil {
		t.Fatalf("seed ingredient: %v", err)
	}

	if err := repo.PutRecipe(ctx, domain.Recipe{
		ID: "rcp-brownies", Name: "Brownies", Servings: 10,
		Ingredients: []domain.RecipeIngredient{
			{RecipeID: "rcp-brownies", IngredientID: "ing-coklat", Quantity: 200},
		},
		CostPerUnit: 1, SellingPrice: 1, MarginPercentage: 1,
	}); err != nil {
		t.Fatalf("seed recipe: %v", err)
	}
}

func TestHPPRecalculationUpdatesRecipeCost(t *testing.T) {
	engine, repo := newTestEngine(Options{})
	seedPricedRecipe(t, repo)
	ctx := serverCtx()

	res := engine.Dispatch(ctx, HPPRecalculationNeeded{RecipeID: "rcp-brownies", Reason: "test"})
	if !res.Success {
		t.Fatalf("recalculation failed: %s", res.Err)
	}

	recipe, err := repo.GetRecipeByID(ctx, "rcp-brownies")
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	// Ingredients 200 x 100 = 20000, breakdown total 28000, per serving 2800.
	if recipe.CostPerUnit != 2800 {
		t.Fatalf("expected cost per serving 2800, got %.2f", recipe.CostPerUnit)
	}
	// Standard tier: ceil(2800 * 1.3 / 1000) * 1000 = 4000.
	if recipe.SellingPrice != 4000 {
		t.Fatalf("expected selling price 4000, got %.2f", recipe.SellingPrice)
	}
	if recipe.MarginPercentage <= 0 {
		t.Fatalf("expected positive margin, got %.2f", recipe.MarginPercentage)
	}
}

func TestIngredientPriceChangeAboveRecalcThresholdCascades(t *testing.T) {
	engine, repo := newTestEngine(Options{})
	seedPricedRecipe(t, repo)
	ctx := serverCtx()

	res := engine.Dispatch(ctx, IngredientPriceChanged{
		IngredientID: "ing-coklat", OldPrice: 80, NewPrice: 100,
	})
	if !res.Success {
		t.Fatalf("price change failed: %s", res.Err)
	}

	// 25% change triggers the cascade into affected recipes.
	recipe, err := repo.GetRecipeByID(ctx, "rcp-brownies")
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if recipe.CostPerUnit != 2800 {
		t.Fatalf("expected cascaded recalculation to set cost 2800, got %.2f", recipe.CostPerUnit)
	}

	history, err := repo.ListIngredientPriceHistory(ctx, "ing-coklat", 10)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one history entry, got %d", len(history))
	}
	if history[0].OldPrice != 80 || history[0].NewPrice != 100 {
		t.Fatalf("unexpected history entry %+v", history[0])
	}
}

func TestIngredientPriceChangeBelowThresholdOnlyRecordsHistory(t *testing.T) {
	engine, repo := newTestEngine(Options{})
	seedPricedRecipe(t, repo)
	ctx := serverCtx()

	res := engine.Dispatch(ctx, IngredientPriceChanged{
		IngredientID: "ing-coklat", OldPrice: 100, NewPrice: 108,
	})
	if !res.Success {
		t.Fatalf("price change failed: %s", res.Err)
	}

	recipe, _ := repo.GetRecipeByID(ctx, "rcp-brownies")
	if recipe.CostPerUnit != 1 {
		t.Fatalf("expected recipe cost untouched for 8%% change, got %.2f", recipe.CostPerUnit)
	}

	history, _ := repo.ListIngredientPriceHistory(ctx, "ing-coklat", 10)
	if len(history) != 1 {
		t.Fatalf("expected the change recorded regardless of size, got %d entries", len(history))
	}
}

func TestOperationalCostChangeCascadesToAllRecipes(t *testing.T) {
	engine, repo := newTestEngine(Options{})
	seedPricedRecipe(t, repo)
	ctx := serverCtx()

	res := engine.Dispatch(ctx, OperationalCostChanged{
		CostID: "cost-listrik", OldAmount: 500000, NewAmount: 600000,
	})
	if !res.Success {
		t.Fatalf("cost change failed: %s", res.Err)
	}

	recipe, _ := repo.GetRecipeByID(ctx, "rcp-brownies")
	if recipe.CostPerUnit != 2800 {
		t.Fatalf("expected 20%% cost change to recalculate recipes, got %.2f", recipe.CostPerUnit)
	}
}

func TestOperationalCostChangeBelowThresholdIsNoop(t *testing.T) {
	engine, repo := newTestEngine(Options{})
	seedPricedRecipe(t, repo)
	ctx := serverCtx()

	res := engine.Dispatch(ctx, OperationalCostChanged{
		CostID: "cost-listrik", OldAmount: 500000, NewAmount: 520000,
	})
	if !res.Success {
		t.Fatalf("cost change failed: %s", res.Err)
	}

	recipe, _ := repo.GetRecipeByID(ctx, "rcp-brownies")
	if recipe.CostPerUnit != 1 {
		t.Fatalf("expected no cascade for 4%% change, got cost %.2f", recipe.CostPerUnit)
	}
}

func TestPercentChangeFromZero(t *testing.T) {
	if got := percentChange(0, 0); got != 0 {
		t.Fatalf("expected 0, got %.2f", got)
	}
	if got := percentChange(0, 500); got != 100 {
		t.Fatalf("expected 100 for change from zero, got %.2f", got)
	}
	if got := percentChange(100, 85); got != 15 {
		t.Fatalf("expected 15, got %.2f", got)
	}
}
