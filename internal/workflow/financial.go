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

// Price-change cascade thresholds, as percentages of the old value.
const (
	priceChangeNotifyPercent = 10.0
	priceChangeRecalcPercent = 15.0
)

func percentChange(oldValue, newValue float64) float64 {
	if oldValue == 0 {
		if newValue == 0 {
			return 0
		}
		return 100
	}
	return math.Abs(newValue-oldValue) / oldValue * 100
}

func (e *Engine) handleIngredientPriceChanged(ctx context.Context, ev IngredientPriceChanged) Result {
	actorID := e.actorID(ctx)
	if err := e.repo.CreateIngredientPriceHistory(ctx, domain.IngredientPriceHistory{
		ID:           xid.New("iph"),
		IngredientID: ev.IngredientID,
		OldPrice:     ev.OldPrice,
		NewPrice:     ev.NewPrice,
		ChangedBy:    actorID,
		ChangedAt:    time.Now().UTC(),
	}); err != nil {
		log.Printf("[workflow] WARN: failed to record price history for %s: %v", ev.IngredientID, err)
	}

	change := percentChange(ev.OldPrice, ev.NewPrice)
	data := map[string]any{
		"ingredient_id":  ev.IngredientID,
		"change_percent": change,
	}

	if change > priceChangeNotifyPercent {
		log.Printf("[workflow] WARN: ingredient %s price moved %.1f%% (%.2f -> %.2f)", ev.IngredientID, change, ev.OldPrice, ev.NewPrice)
	}

	if change > priceChangeRecalcPercent {
		recipes, err := e.repo.ListRecipesUsingIngredient(ctx, ev.IngredientID)
		if err != nil {
			return failure("failed to list recipes using ingredient", err)
		}
		for _, recipe := range recipes {
			if err := e.cache.Delete(ctx, "pricing:"+recipe.ID); err != nil {
				log.Printf("[workflow] WARN: failed to drop cached pricing for %s: %v", recipe.ID, err)
			}
			e.emit(ctx, HPPRecalculationNeeded{
				RecipeID: recipe.ID,
				Reason:   fmt.Sprintf("harga bahan %s berubah %.1f%%", ev.IngredientID, change),
			})
		}
		data["recipes_recalculated"] = len(recipes)
	}

	return success("ingredient price change processed", data)
}

func (e *Engine) handleOperationalCostChanged(ctx context.Context, ev OperationalCostChanged) Result {
	change := percentChange(ev.OldAmount, ev.NewAmount)
	data := map[string]any{
		"cost_id":        ev.CostID,
		"change_percent": change,
	}

	if change <= priceChangeNotifyPercent {
		return success("operational cost change below threshold, no action", data)
	}

	// A material cost change invalidates every cached HPP.
	recipes, err := e.repo.ListRecipes(ctx)
	if err != nil {
		return failure("failed to list recipes", err)
	}
	for _, recipe := range recipes {
		if err := e.cache.Delete(ctx, "pricing:"+recipe.ID); err != nil {
			log.Printf("[workflow] WARN: failed to drop cached pricing for %s: %v", recipe.ID, err)
		}
		e.emit(ctx, HPPRecalculationNeeded{
			RecipeID: recipe.ID,
			Reason:   fmt.Sprintf("biaya operasional %s berubah %.1f%%", ev.CostID, change),
		})
	}
	data["recipes_recalculated"] = len(recipes)

	return success("operational cost change processed", data)
}

func (e *Engine) handleHPPRecalculation(ctx context.Context, ev HPPRecalculationNeeded) Result {
	recipe, err := e.repo.GetRecipeByID(ctx, ev.RecipeID)
	if err != nil {
		return failure("recipe not found", err)
	}

	ingredients, err := e.loadRecipeIngredients(ctx, *recipe)
	if err != nil {
		return failure("failed to resolve recipe ingredients", err)
	}

	breakdown := e.costs.Calculate(*recipe, ingredients)
	tiers := e.pricing.Tiers(breakdown.CostPerServing)

	if err := e.repo.UpdateRecipeCost(ctx, recipe.ID, breakdown.CostPerServing, tiers.Standard.Price, tiers.Standard.Margin); err != nil {
		return failure("failed to store recalculated cost", err)
	}
	if err := e.cache.Delete(ctx, "pricing:"+recipe.ID); err != nil {
		log.Printf("[workflow] WARN: failed to drop cached pricing for %s: %v", recipe.ID, err)
	}

	if ev.Reason != "" {
		log.Printf("[workflow] HPP recalculated for %s: %s", recipe.Name, ev.Reason)
	}

	return success(fmt.Sprintf("HPP recalculated for %s", recipe.Name), map[string]any{
		"recipe_id":        recipe.ID,
		"cost_per_serving": breakdown.CostPerServing,
		"selling_price":    tiers.Standard.Price,
	})
}
