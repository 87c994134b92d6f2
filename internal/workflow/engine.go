// Package workflow routes business events to their handlers and
// orchestrates the order lifecycle: inventory ledger updates,
// ingredient reservations, derived financial records, and the
// follow-up alerts those steps emit.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"dapurmanis/engine/internal/cache"
	"dapurmanis/engine/internal/domain"
	"dapurmanis/engine/internal/hpp"
	"dapurmanis/engine/internal/pricing"
	"dapurmanis/engine/internal/store"
	"dapurmanis/engine/internal/xid"
)

var errNotServerContext = errors.New("workflow invoked outside server execution context")

type Options struct {
	// StrictReservations re-validates stock availability before each
	// reservation. Off by default: reservations are soft holds and may
	// exceed available stock.
	StrictReservations bool
	PricingTTL         time.Duration
	DefaultActorID     string
}

type Engine struct {
	repo    store.Repository
	costs   *hpp.Calculator
	pricing *pricing.Engine
	cache   cache.PricingCache
	opts    Options
}

func New(repo store.Repository, costs *hpp.Calculator, pricingEngine *pricing.Engine, pricingCache cache.PricingCache, opts Options) *Engine {
	if costs == nil {
		costs = hpp.NewDefaultCalculator()
	}
	if pricingEngine == nil {
		pricingEngine = pricing.NewEngine(pricing.DefaultConfig())
	}
	if pricingCache == nil {
		pricingCache = cache.NoopPricingCache{}
	}
	if opts.PricingTTL <= 0 {
		opts.PricingTTL = 5 * time.Minute
	}
	if opts.DefaultActorID == "" {
		opts.DefaultActorID = "system"
	}
	return &Engine{
		repo:    repo,
		costs:   costs,
		pricing: pricingEngine,
		cache:   pricingCache,
		opts:    opts,
	}
}

// Dispatch routes an event to its handler. It refuses to run outside a
// server execution context and never mutates state in that case.
func (e *Engine) Dispatch(ctx context.Context, event Event) Result {
	if !isServerContext(ctx) {
		return failure("workflow requires a server execution context", errNotServerContext)
	}

	switch ev := event.(type) {
	case OrderCompleted:
		return e.handleOrderCompleted(ctx, ev)
	case OrderCancelled:
		return e.handleOrderCancelled(ctx, ev)
	case OrderStatusChanged:
		return e.handleOrderStatusChanged(ctx, ev)
	case InventoryLowStock:
		return e.handleInventoryLowStock(ctx, ev)
	case InventoryOutOfStock:
		return e.handleInventoryOutOfStock(ctx, ev)
	case PurchaseCompleted:
		return e.handlePurchaseCompleted(ctx, ev)
	case ProductionCompleted:
		return e.handleProductionCompleted(ctx, ev)
	case IngredientPriceChanged:
		return e.handleIngredientPriceChanged(ctx, ev)
	case OperationalCostChanged:
		return e.handleOperationalCostChanged(ctx, ev)
	case HPPRecalculationNeeded:
		return e.handleHPPRecalculation(ctx, ev)
	default:
		return failure(fmt.Sprintf("unknown event kind %q", event.Kind()), nil)
	}
}

// emit dispatches a follow-up event fire-and-forget: failures are
// logged and never propagated to the originating handler.
func (e *Engine) emit(ctx context.Context, event Event) {
	res := e.Dispatch(ctx, event)
	if !res.Success {
		log.Printf("[workflow] WARN: follow-up event %s failed: %s", event.Kind(), res.Err)
	}
}

func (e *Engine) actorID(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok && actor.ID != "" {
		return actor.ID
	}
	return e.opts.DefaultActorID
}

func (e *Engine) handleOrderCompleted(ctx context.Context, ev OrderCompleted) Result {
	order, err := e.repo.GetOrderByID(ctx, ev.OrderID)
	if err != nil {
		return failure("order not found", err)
	}

	actorID := e.actorID(ctx)
	reference := "ORDER-" + order.OrderNo
	now := time.Now().UTC()

	ingredientsTouched := 0
	for _, item := range order.Items {
		recipe, err := e.repo.GetRecipeByID(ctx, item.RecipeID)
		if err != nil {
			log.Printf("[workflow] WARN: recipe %s for order %s not found: %v", item.RecipeID, order.OrderNo, err)
			continue
		}

		for _, ri := range recipe.Ingredients {
			used := ri.Quantity * float64(item.Quantity)
			if used <= 0 {
				continue
			}

			ing, err := e.repo.GetIngredientByID(ctx, ri.IngredientID)
			if err != nil {
				log.Printf("[workflow] WARN: ingredient %s not found, skipping deduction: %v", ri.IngredientID, err)
				continue
			}

			_, err = e.repo.CreateStockTransaction(ctx, domain.StockTransaction{
				ID:           xid.New("stx"),
				IngredientID: ing.ID,
				Type:         domain.StockTxUsage,
				Quantity:     used,
				UnitPrice:    ing.PricePerUnit,
				TotalPrice:   used * ing.PricePerUnit,
				Reference:    reference,
				Note:         fmt.Sprintf("Pemakaian untuk %s (%s)", order.OrderNo, recipe.Name),
				ActorID:      actorID,
				CreatedAt:    now,
			})
			if err != nil {
				log.Printf("[workflow] WARN: stock transaction for %s failed: %v", ing.Name, err)
				continue
			}
			ingredientsTouched++

			// Projected stock is computed for alerting only; the store
			// maintains the real aggregate from the transaction itself.
			projected := ing.CurrentStock - used
			switch {
			case projected <= 0:
				e.emit(ctx, InventoryOutOfStock{
					IngredientID:   ing.ID,
					IngredientName: ing.Name,
					ProjectedStock: projected,
				})
			case projected <= ing.MinStock:
				severity := domain.SeverityWarning
				if projected <= ing.MinStock*0.5 {
					severity = domain.SeverityCritical
				}
				e.emit(ctx, InventoryLowStock{
					IngredientID:   ing.ID,
					IngredientName: ing.Name,
					ProjectedStock: projected,
					MinStock:       ing.MinStock,
					Severity:       severity,
				})
			}
		}
	}

	data := map[string]any{
		"order_id":            order.ID,
		"ingredients_updated": ingredientsTouched,
	}

	// At most one income record per completed order.
	if order.FinancialRecordID == "" {
		income, err := e.repo.CreateFinancialRecord(ctx, domain.FinancialRecord{
			ID:          xid.New("fin"),
			Type:        domain.FinancialIncome,
			Category:    "Penjualan",
			Amount:      order.TotalAmount,
			Description: fmt.Sprintf("Pendapatan pesanan %s", order.OrderNo),
			Reference:   reference,
			Date:        now,
			ActorID:     actorID,
		})
		if err != nil {
			return failure("failed to create income record", err)
		}
		if err := e.repo.SetOrderFinancialRecord(ctx, order.ID, income.ID); err != nil {
			return failure("failed to link income record to order", err)
		}
		data["financial_record_id"] = income.ID
	}

	var cogs float64
	for _, item := range order.Items {
		cogs += item.HPPAtOrder * float64(item.Quantity)
	}
	if cogs > 0 {
		expense, err := e.repo.CreateFinancialRecord(ctx, domain.FinancialRecord{
			ID:          xid.New("fin"),
			Type:        domain.FinancialExpense,
			Category:    "COGS",
			Amount:      cogs,
			Description: fmt.Sprintf("HPP pesanan %s", order.OrderNo),
			Reference:   reference,
			Date:        now,
			ActorID:     actorID,
		})
		if err != nil {
			log.Printf("[workflow] WARN: failed to create COGS record for %s: %v", order.OrderNo, err)
		} else {
			data["cogs_record_id"] = expense.ID
			data["cogs_amount"] = cogs
		}
	}

	if order.CustomerID != "" {
		if err := e.updateCustomerAfterOrder(ctx, order.CustomerID, order.TotalAmount, now); err != nil {
			log.Printf("[workflow] WARN: failed to update customer %s stats: %v", order.CustomerID, err)
		}
	}

	return success(fmt.Sprintf("order %s completed", order.OrderNo), data)
}

func (e *Engine) updateCustomerAfterOrder(ctx context.Context, customerID string, totalAmount float64, at time.Time) error {
	customer, err := e.repo.GetCustomerByID(ctx, customerID)
	if err != nil {
		return err
	}
	customer.TotalOrders++
	customer.TotalSpent += totalAmount
	customer.AverageOrderValue = customer.TotalSpent / float64(customer.TotalOrders)
	customer.LastOrderDate = &at
	return e.repo.UpdateCustomerStats(ctx, *customer)
}

func (e *Engine) handleOrderCancelled(ctx context.Context, ev OrderCancelled) Result {
	order, err := e.repo.GetOrderByID(ctx, ev.OrderID)
	if err != nil {
		return failure("order not found", err)
	}

	actorID := e.actorID(ctx)
	reference := "ORDER-" + order.OrderNo
	cancelReference := "ORDER-CANCEL-" + order.OrderNo
	now := time.Now().UTC()

	// Restore exactly what completion deducted: one additive adjustment
	// per recorded usage transaction.
	usages, err := e.repo.ListStockTransactionsByReference(ctx, reference)
	if err != nil {
		return failure("failed to load stock transactions for order", err)
	}
	restored := 0
	for _, usage := range usages {
		if usage.Type != domain.StockTxUsage {
			continue
		}
		_, err := e.repo.CreateStockTransaction(ctx, domain.StockTransaction{
			ID:           xid.New("stx"),
			IngredientID: usage.IngredientID,
			Type:         domain.StockTxAdjustment,
			Quantity:     usage.Quantity,
			UnitPrice:    usage.UnitPrice,
			TotalPrice:   usage.TotalPrice,
			Reference:    cancelReference,
			Note:         fmt.Sprintf("Pengembalian stok pembatalan %s", order.OrderNo),
			ActorID:      actorID,
			CreatedAt:    now,
		})
		if err != nil {
			log.Printf("[workflow] WARN: stock restore for ingredient %s failed: %v", usage.IngredientID, err)
			continue
		}
		restored++
	}

	// Deleting the income record is the reversal; no counter-record.
	if order.FinancialRecordID != "" {
		if err := e.repo.DeleteFinancialRecord(ctx, order.FinancialRecordID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return failure("failed to delete income record", err)
		}
		if err := e.repo.SetOrderFinancialRecord(ctx, order.ID, ""); err != nil {
			return failure("failed to unlink income record", err)
		}
	}
	records, err := e.repo.ListFinancialRecordsByReference(ctx, reference)
	if err == nil {
		for _, record := range records {
			if record.Type != domain.FinancialExpense {
				continue
			}
			if err := e.repo.DeleteFinancialRecord(ctx, record.ID); err != nil {
				log.Printf("[workflow] WARN: failed to delete COGS record %s: %v", record.ID, err)
			}
		}
	} else {
		log.Printf("[workflow] WARN: failed to list financial records for %s: %v", order.OrderNo, err)
	}

	reservations, err := e.repo.ListActiveReservations(ctx, order.ID)
	if err == nil {
		for _, res := range reservations {
			if err := e.repo.SetReservationStatus(ctx, res.ID, domain.ReservationReleased); err != nil {
				log.Printf("[workflow] WARN: failed to release reservation %s: %v", res.ID, err)
			}
		}
	} else {
		log.Printf("[workflow] WARN: failed to list reservations for order %s: %v", order.ID, err)
	}

	batches, err := e.repo.ListProductionBatchesByOrder(ctx, order.ID)
	if err == nil {
		for _, batch := range batches {
			if batch.Status != domain.BatchStatusPlanned {
				continue
			}
			if err := e.repo.SetProductionBatchStatus(ctx, batch.ID, domain.BatchStatusCancelled, nil); err != nil {
				log.Printf("[workflow] WARN: failed to cancel batch %s: %v", batch.ID, err)
			}
		}
	}

	if order.CustomerID != "" {
		if customer, err := e.repo.GetCustomerByID(ctx, order.CustomerID); err == nil {
			customer.LastOrderDate = &now
			if err := e.repo.UpdateCustomerStats(ctx, *customer); err != nil {
				log.Printf("[workflow] WARN: failed to refresh customer %s: %v", order.CustomerID, err)
			}
		}
	}

	if err := e.repo.SetOrderStatus(ctx, order.ID, domain.OrderStatusCancelled); err != nil {
		log.Printf("[workflow] WARN: failed to set order %s status: %v", order.ID, err)
	}

	return success(fmt.Sprintf("order %s cancelled", order.OrderNo), map[string]any{
		"order_id":              order.ID,
		"transactions_restored": restored,
	})
}

func (e *Engine) handleOrderStatusChanged(ctx context.Context, ev OrderStatusChanged) Result {
	if ev.NewStatus != domain.OrderStatusConfirmed {
		return success(fmt.Sprintf("no action for status %s", ev.NewStatus), nil)
	}

	order, err := e.repo.GetOrderByID(ctx, ev.OrderID)
	if err != nil {
		return failure("order not found", err)
	}
	if order.ProductionBatchID != "" {
		return success("production batches already created", map[string]any{
			"order_id":            order.ID,
			"production_batch_id": order.ProductionBatchID,
		})
	}

	actorID := e.actorID(ctx)
	now := time.Now().UTC()
	plannedStart := now
	if order.DeliveryDate != nil {
		plannedStart = *order.DeliveryDate
	}

	// Group items by recipe, preserving first-seen order.
	qtyByRecipe := make(map[string]int)
	recipeOrder := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		if _, seen := qtyByRecipe[item.RecipeID]; !seen {
			recipeOrder = append(recipeOrder, item.RecipeID)
		}
		qtyByRecipe[item.RecipeID] += item.Quantity
	}

	batchIDs := make([]string, 0, len(recipeOrder))
	for _, recipeID := range recipeOrder {
		recipe, err := e.repo.GetRecipeByID(ctx, recipeID)
		if err != nil {
			log.Printf("[workflow] WARN: recipe %s for order %s not found, skipping batch: %v", recipeID, order.OrderNo, err)
			continue
		}

		quantity := qtyByRecipe[recipeID]
		batch, err := e.repo.CreateProductionBatch(ctx, domain.ProductionBatch{
			ID:               xid.New("batch"),
			RecipeID:         recipe.ID,
			OrderID:          order.ID,
			Quantity:         quantity,
			CostPerUnit:      recipe.CostPerUnit,
			TotalCost:        recipe.CostPerUnit * float64(quantity),
			Status:           domain.BatchStatusPlanned,
			PlannedStartTime: plannedStart,
			Note:             fmt.Sprintf("Produksi untuk pesanan %s", order.OrderNo),
		})
		if err != nil {
			log.Printf("[workflow] WARN: failed to create batch for recipe %s: %v", recipe.ID, err)
			continue
		}
		batchIDs = append(batchIDs, batch.ID)

		if len(batchIDs) == 1 {
			if err := e.repo.SetOrderProductionBatch(ctx, order.ID, batch.ID); err != nil {
				log.Printf("[workflow] WARN: failed to link batch %s to order %s: %v", batch.ID, order.ID, err)
			}
		}

		e.reserveIngredients(ctx, *recipe, quantity, order.ID, actorID)
	}

	return success(fmt.Sprintf("created %d production batch(es) for order %s", len(batchIDs), order.OrderNo), map[string]any{
		"order_id":  order.ID,
		"batch_ids": batchIDs,
	})
}

// reserveIngredients places an ACTIVE soft hold per ingredient of the
// recipe. By default no availability check is made; holds may exceed
// stock. With StrictReservations the hold is skipped when current
// stock minus existing active holds cannot cover the requirement.
func (e *Engine) reserveIngredients(ctx context.Context, recipe domain.Recipe, quantity int, orderID string, actorID string) {
	for _, ri := range recipe.Ingredients {
		required := ri.Quantity * float64(quantity)
		if required <= 0 {
			continue
		}

		if e.opts.StrictReservations {
			ing, err := e.repo.GetIngredientByID(ctx, ri.IngredientID)
			if err != nil {
				log.Printf("[workflow] WARN: reservation lookup for %s failed: %v", ri.IngredientID, err)
				continue
			}
			reserved, err := e.repo.SumActiveReservations(ctx, ri.IngredientID)
			if err != nil {
				log.Printf("[workflow] WARN: reservation sum for %s failed: %v", ri.IngredientID, err)
				continue
			}
			if ing.CurrentStock-reserved < required {
				log.Printf("[workflow] WARN: insufficient stock to reserve %.2f %s of %s", required, ing.Unit, ing.Name)
				continue
			}
		}

		_, err := e.repo.CreateReservation(ctx, domain.StockReservation{
			ID:           xid.New("rsv"),
			IngredientID: ri.IngredientID,
			OrderID:      orderID,
			Quantity:     required,
			Status:       domain.ReservationActive,
			ActorID:      actorID,
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			log.Printf("[workflow] WARN: failed to reserve %.2f of %s: %v", required, ri.IngredientID, err)
		}
	}
}

// loadRecipeIngredients resolves the recipe's ingredients into a map
// keyed by ingredient id for the cost engine.
func (e *Engine) loadRecipeIngredients(ctx context.Context, recipe domain.Recipe) (map[string]domain.Ingredient, error) {
	ingredients := make(map[string]domain.Ingredient, len(recipe.Ingredients))
	for _, ri := range recipe.Ingredients {
		ing, err := e.repo.GetIngredientByID(ctx, ri.IngredientID)
		if err != nil {
			return nil, fmt.Errorf("resolve ingredient %s: %w", ri.IngredientID, err)
		}
		ingredients[ing.ID] = *ing
	}
	return ingredients, nil
}

// RecipeHPP computes the current cost breakdown for a recipe.
func (e *Engine) RecipeHPP(ctx context.Context, recipeID string) (*hpp.Breakdown, error) {
	recipe, err := e.repo.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	ingredients, err := e.loadRecipeIngredients(ctx, *recipe)
	if err != nil {
		return nil, err
	}
	breakdown := e.costs.Calculate(*recipe, ingredients)
	return &breakdown, nil
}

// RecipePricing returns the full pricing analysis for a recipe,
// served from cache when available.
func (e *Engine) RecipePricing(ctx context.Context, recipeID string) (*pricing.Result, error) {
	cacheKey := "pricing:" + recipeID
	if cached, ok, err := e.cache.Get(ctx, cacheKey); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Printf("[workflow] WARN: pricing cache get failed for %s: %v", recipeID, err)
	}

	breakdown, err := e.RecipeHPP(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	result := e.pricing.Analyze(breakdown.CostPerServing)
	if err := e.cache.Set(ctx, cacheKey, &result, e.opts.PricingTTL); err != nil {
		log.Printf("[workflow] WARN: pricing cache set failed for %s: %v", recipeID, err)
	}
	return &result, nil
}
