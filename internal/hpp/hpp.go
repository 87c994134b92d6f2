// Package hpp computes HPP (harga pokok produksi), the production cost
// of a recipe, from its ingredient list and configurable surcharges.
package hpp

import (
	"dapurmanis/engine/internal/domain"
)

// Default surcharge percentages applied on top of raw ingredient cost.
const (
	DefaultOverheadPercent  = 15.0
	DefaultLaborPercent     = 20.0
	DefaultPackagingPercent = 5.0
)

// Default per-batch operational cost rates, used when no operational
// cost registry is configured.
const (
	DefaultLaborRatePerHour = 50000.0
	DefaultElectricityCost  = 2000.0
	DefaultGasCost          = 1500.0
	DefaultRentAllocation   = 500.0
)

type Breakdown struct {
	IngredientCost float64 `json:"ingredient_cost"`
	OverheadCost   float64 `json:"overhead_cost"`
	LaborCost      float64 `json:"labor_cost"`
	PackagingCost  float64 `json:"packaging_cost"`
	TotalCost      float64 `json:"total_cost"`
	CostPerServing float64 `json:"cost_per_serving"`
}

type Calculator struct {
	overheadPercent  float64
	laborPercent     float64
	packagingPercent float64
}

func NewCalculator(overheadPercent, laborPercent, packagingPercent float64) *Calculator {
	if overheadPercent < 0 {
		overheadPercent = DefaultOverheadPercent
	}
	if laborPercent < 0 {
		laborPercent = DefaultLaborPercent
	}
	if packagingPercent < 0 {
		packagingPercent = DefaultPackagingPercent
	}
	return &Calculator{
		overheadPercent:  overheadPercent,
		laborPercent:     laborPercent,
		packagingPercent: packagingPercent,
	}
}

func NewDefaultCalculator() *Calculator {
	return NewCalculator(DefaultOverheadPercent, DefaultLaborPercent, DefaultPackagingPercent)
}

// Calculate derives the full cost breakdown for a recipe. Ingredient
// prices are resolved through the supplied map keyed by ingredient id.
// A recipe with no ingredients yields a zero breakdown, not an error.
func (c *Calculator) Calculate(recipe domain.Recipe, ingredients map[string]domain.Ingredient) Breakdown {
	var ingredientCost float64
	for _, ri := range recipe.Ingredients {
		ing, ok := ingredients[ri.IngredientID]
		if !ok {
			continue
		}
		ingredientCost += ing.PricePerUnit * ri.Quantity
	}

	overhead := ingredientCost * c.overheadPercent / 100
	labor := ingredientCost * c.laborPercent / 100
	packaging := ingredientCost * c.packagingPercent / 100
	total := ingredientCost + overhead + labor + packaging

	servings := recipe.Servings
	if servings < 1 {
		servings = 1
	}

	return Breakdown{
		IngredientCost: ingredientCost,
		OverheadCost:   overhead,
		LaborCost:      labor,
		PackagingCost:  packaging,
		TotalCost:      total,
		CostPerServing: total / float64(servings),
	}
}

// CalculateWithOperationalCosts folds registered per-batch operational
// costs into the overhead component instead of the flat overhead
// percentage. Variable costs are counted per batch; fixed costs are
// taken as already-allocated per-batch amounts.
func (c *Calculator) CalculateWithOperationalCosts(recipe domain.Recipe, ingredients map[string]domain.Ingredient, costs []domain.OperationalCost) Breakdown {
	base := c.Calculate(recipe, ingredients)
	if len(costs) == 0 {
		return base
	}

	var operational float64
	for _, cost := range costs {
		operational += cost.Amount
	}

	base.OverheadCost = operational
	base.TotalCost = base.IngredientCost + base.OverheadCost + base.LaborCost + base.PackagingCost

	servings := recipe.Servings
	if servings < 1 {
		servings = 1
	}
	base.CostPerServing = base.TotalCost / float64(servings)
	return base
}
