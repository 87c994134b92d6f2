package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"dapurmanis/engine/internal/domain"
	"dapurmanis/engine/internal/store"
	"dapurmanis/engine/internal/xid"
)

type Store struct {
	mu               sync.RWMutex
	ingredients      map[string]domain.Ingredient
	recipes          map[string]domain.Recipe
	orders           map[string]domain.Order
	customers        map[string]domain.Customer
	stockTxByID      map[string]domain.StockTransaction
	stockTxOrder     []string
	reservations     map[string]domain.StockReservation
	batches          map[string]domain.ProductionBatch
	financialRecords map[string]domain.FinancialRecord
	operationalCosts map[string]domain.OperationalCost
	priceHistory     map[string][]domain.IngredientPriceHistory
	alerts           []domain.Alert
	salesRecords     map[string][]domain.SalesRecord
}

func New() *Store {
	return &Store{
		ingredients:      make(map[string]domain.Ingredient),
		recipes:          make(map[string]domain.Recipe),
		orders:           make(map[string]domain.Order),
		customers:        make(map[string]domain.Customer),
		stockTxByID:      make(map[string]domain.StockTransaction),
		reservations:     make(map[string]domain.StockReservation),
		batches:          make(map[string]domain.ProductionBatch),
		financialRecords: make(map[string]domain.FinancialRecord),
		operationalCosts: make(map[string]domain.OperationalCost),
		priceHistory:     make(map[string][]domain.IngredientPriceHistory),
		alerts:           make([]domain.Alert, 0, 64),
		salesRecords:     make(map[string][]domain.SalesRecord),
	}
}

// NewSeeded returns a store preloaded with a small bakery dataset for
// dev/demo mode and tests.
func NewSeeded() *Store {
	s := New()

	ingredients := []domain.Ingredient{
		{ID: "ing-tepung", Name: "Tepung Terigu", Unit: "gram", PricePerUnit: 20, CurrentStock: 25000, MinStock: 5000},
		{ID: "ing-gula", Name: "Gula Pasir", Unit: "gram", PricePerUnit: 30, CurrentStock: 12000, MinStock: 3000},
		{ID: "ing-mentega", Name: "Mentega", Unit: "gram", PricePerUnit: 45, CurrentStock: 6000, MinStock: 1500},
		{ID: "ing-telur", Name: "Telur", Unit: "butir", PricePerUnit: 2500, CurrentStock: 180, MinStock: 48},
		{ID: "ing-coklat", Name: "Coklat Bubuk", Unit: "gram", PricePerUnit: 120, CurrentStock: 2500, MinStock: 800},
		{ID: "ing-keju", Name: "Keju Cheddar", Unit: "gram", PricePerUnit: 95, CurrentStock: 1800, MinStock: 500},
		{ID: "ing-susu", Name: "Susu Cair", Unit: "ml", PricePerUnit: 18, CurrentStock: 9000, MinStock: 2000},
		{ID: "ing-vanili", Name: "Vanili", Unit: "gram", PricePerUnit: 350, CurrentStock: 220, MinStock: 60},
	}
	for _, ing := range ingredients {
		s.ingredients[ing.ID] = ing
	}

	recipes := []domain.Recipe{
		{
			ID: "rcp-bolu-coklat", Name: "Bolu Coklat", Servings: 10,
			Ingredients: []domain.RecipeIngredient{
				{RecipeID: "rcp-bolu-coklat", IngredientID: "ing-tepung", Quantity: 250},
				{RecipeID: "rcp-bolu-coklat", IngredientID: "ing-gula", Quantity: 200},
				{RecipeID: "rcp-bolu-coklat", IngredientID: "ing-mentega", Quantity: 150},
				{RecipeID: "rcp-bolu-coklat", IngredientID: "ing-telur", Quantity: 4},
				{RecipeID: "rcp-bolu-coklat", IngredientID: "ing-coklat", Quantity: 50},
			},
			CostPerUnit: 3200, SellingPrice: 5000, MarginPercentage: 30,
		},
		{
			ID: "rcp-roti-keju", Name: "Roti Keju", Servings: 12,
			Ingredients: []domain.RecipeIngredient{
				{RecipeID: "rcp-roti-keju", IngredientID: "ing-tepung", Quantity: 300},
				{RecipeID: "rcp-roti-keju", IngredientID: "ing-gula", Quantity: 60},
				{RecipeID: "rcp-roti-keju", IngredientID: "ing-keju", Quantity: 120},
				{RecipeID: "rcp-roti-keju", IngredientID: "ing-susu", Quantity: 180},
			},
			CostPerUnit: 2100, SellingPrice: 3500, MarginPercentage: 30,
		},
		{
			ID: "rcp-kue-vanila", Name: "Kue Vanila", Servings: 8,
			Ingredients: []domain.RecipeIngredient{
				{RecipeID: "rcp-kue-vanila", IngredientID: "ing-tepung", Quantity: 200},
				{RecipeID: "rcp-kue-vanila", IngredientID: "ing-gula", Quantity: 150},
				{RecipeID: "rcp-kue-vanila", IngredientID: "ing-telur", Quantity: 3},
				{RecipeID: "rcp-kue-vanila", IngredientID: "ing-vanili", Quantity: 5},
			},
			CostPerUnit: 2800, SellingPrice: 4500, MarginPercentage: 30,
		},
	}
	for _, r := range recipes {
		s.recipes[r.ID] = r
	}

	s.customers["cust-ibu-sari"] = domain.Customer{ID: "cust-ibu-sari", Name: "Ibu Sari", Phone: "0812-3456-7890"}
	s.customers["cust-pak-budi"] = domain.Customer{ID: "cust-pak-budi", Name: "Pak Budi", Phone: "0813-9876-5432"}

	costs := []domain.OperationalCost{
		{ID: "cost-listrik", Name: "Listrik", Type: domain.CostTypeVariable, Amount: 2000, Unit: "batch"},
		{ID: "cost-gas", Name: "Gas", Type: domain.CostTypeVariable, Amount: 1500, Unit: "batch"},
		{ID: "cost-sewa", Name: "Sewa Tempat", Type: domain.CostTypeFixed, Amount: 500, Unit: "batch"},
	}
	for _, c := range costs {
		s.operationalCosts[c.ID] = c
	}

	return s
}

func (s *Store) ListIngredients(_ context.Context) ([]domain.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ingredients := make([]domain.Ingredient, 0, len(s.ingredients))
	for _, ing := range s.ingredients {
		ingredients = append(ingredients, ing)
	}
	slices.SortFunc(ingredients, func(a, b domain.Ingredient) int {
		return strings.Compare(a.Name, b.Name)
	})
	return ingredients, nil
}

func (s *Store) GetIngredientByID(_ context.Context, ingredientID string) (*domain.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ing, exists := s.ingredients[ingredientID]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyIng := ing
	return &copyIng, nil
}

func (s *Store) CreateIngredient(_ context.Context, ingredient domain.Ingredient) (*domain.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ingredient.Name == "" || ingredient.Unit == "" || ingredient.PricePerUnit < 0 {
		return nil, store.ErrInvalidRecord
	}
	if ingredient.ID == "" {
		ingredient.ID = xid.New("ing")
	}
	if _, exists := s.ingredients[ingredient.ID]; exists {
		return nil, store.ErrInvalidRecord
	}
	s.ingredients[ingredient.ID] = ingredient
	created := ingredient
	return &created, nil
}

func (s *Store) UpdateIngredientPrice(_ context.Context, ingredientID string, pricePerUnit float64) (*domain.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ing, exists := s.ingredients[ingredientID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if pricePerUnit < 0 {
		return nil, store.ErrInvalidRecord
	}
	ing.PricePerUnit = pricePerUnit
	s.ingredients[ingredientID] = ing
	updated := ing
	return &updated, nil
}

func (s *Store) ListRecipes(_ context.Context) ([]domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recipes := make([]domain.Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		recipes = append(recipes, cloneRecipe(r))
	}
	slices.SortFunc(recipes, func(a, b domain.Recipe) int {
		return strings.Compare(a.Name, b.Name)
	})
	return recipes, nil
}

func (s *Store) GetRecipeByID(_ context.Context, recipeID string) (*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recipe, exists := s.recipes[recipeID]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyRecipe := cloneRecipe(recipe)
	return &copyRecipe, nil
}

// PutRecipe stores a recipe directly, for seeding and tests.
func (s *Store) PutRecipe(_ context.Context, recipe domain.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if recipe.ID == "" || recipe.Name == "" {
		return store.ErrInvalidRecord
	}
	s.recipes[recipe.ID] = cloneRecipe(recipe)
	return nil
}

func (s *Store) ListRecipesUsingIngredient(_ context.Context, ingredientID string) ([]domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recipes := make([]domain.Recipe, 0, 4)
	for _, r := range s.recipes {
		for _, ri := range r.Ingredients {
			if ri.IngredientID == ingredientID {
				recipes = append(recipes, cloneRecipe(r))
				break
			}
		}
	}
	slices.SortFunc(recipes, func(a, b domain.Recipe) int {
		return strings.Compare(a.ID, b.ID)
	})
	return recipes, nil
}

func (s *Store) UpdateRecipeCost(_ context.Context, recipeID string, costPerUnit float64, sellingPrice float64, marginPercentage float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipe, exists := s.recipes[recipeID]
	if !exists {
		return store.ErrNotFound
	}
	recipe.CostPerUnit = costPerUnit
	recipe.SellingPrice = sellingPrice
	recipe.MarginPercentage = marginPercentage
	s.recipes[recipeID] = recipe
	return nil
}

func (s *Store) GetOrderByID(_ context.Context, orderID string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, exists := s.orders[orderID]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyOrder := cloneOrder(order)
	return &copyOrder, nil
}

// PutOrder stores an order directly. Order creation itself is owned by
// the host application; the engine only reads orders and attaches
// derived-record identifiers.
func (s *Store) PutOrder(_ context.Context, order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == "" || order.OrderNo == "" {
		return store.ErrInvalidRecord
	}
	s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (s *Store) SetOrderFinancialRecord(_ context.Context, orderID string, financialRecordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.orders[orderID]
	if !exists {
		return store.ErrNotFound
	}
	order.FinancialRecordID = financialRecordID
	order.UpdatedAt = time.Now().UTC()
	s.orders[orderID] = order
	return nil
}

func (s *Store) SetOrderProductionBatch(_ context.Context, orderID string, batchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.orders[orderID]
	if !exists {
		return store.ErrNotFound
	}
	order.ProductionBatchID = batchID
	order.UpdatedAt = time.Now().UTC()
	s.orders[orderID] = order
	return nil
}

func (s *Store) SetOrderStatus(_ context.Context, orderID string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.orders[orderID]
	if !exists {
		return store.ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	s.orders[orderID] = order
	return nil
}

func (s *Store) GetCustomerByID(_ context.Context, customerID string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, exists := s.customers[customerID]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyCustomer := customer
	return &copyCustomer, nil
}

// PutCustomer stores a customer directly, for seeding and tests.
func (s *Store) PutCustomer(_ context.Context, customer domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if customer.ID == "" || customer.Name == "" {
		return store.ErrInvalidRecord
	}
	s.customers[customer.ID] = customer
	return nil
}

func (s *Store) UpdateCustomerStats(_ context.Context, customer domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.customers[customer.ID]; !exists {
		return store.ErrNotFound
	}
	s.customers[customer.ID] = customer
	return nil
}

// CreateStockTransaction appends a ledger entry and applies its signed
// effect to the ingredient aggregate in the same critical section,
// mirroring the database trigger of the SQL store.
func (s *Store) CreateStockTransaction(_ context.Context, tx domain.StockTransaction) (*domain.StockTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.IngredientID == "" || tx.Quantity <= 0 || tx.Type == "" {
		return nil, store.ErrInvalidRecord
	}
	ing, exists := s.ingredients[tx.IngredientID]
	if !exists {
		return nil, store.ErrNotFound
	}

	if tx.ID == "" {
		tx.ID = xid.New("stx")
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	s.stockTxByID[tx.ID] = tx
	s.stockTxOrder = append(s.stockTxOrder, tx.ID)

	ing.CurrentStock += domain.StockEffect(tx.Type, tx.Quantity)
	s.ingredients[tx.IngredientID] = ing

	created := tx
	return &created, nil
}

func (s *Store) ListStockTransactions(_ context.Context, ingredientID string, limit int) ([]domain.StockTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.StockTransaction, 0, 16)
	for i := len(s.stockTxOrder) - 1; i >= 0; i-- {
		tx := s.stockTxByID[s.stockTxOrder[i]]
		if tx.IngredientID != ingredientID {
			continue
		}
		result = append(result, tx)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (s *Store) ListStockTransactionsByReference(_ context.Context, reference string) ([]domain.StockTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.StockTransaction, 0, 8)
	for _, id := range s.stockTxOrder {
		tx := s.stockTxByID[id]
		if tx.Reference == reference {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (s *Store) CreateReservation(_ context.Context, res domain.StockReservation) (*domain.StockReservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if res.IngredientID == "" || res.OrderID == "" || res.Quantity <= 0 {
		return nil, store.ErrInvalidRecord
	}
	if _, exists := s.ingredients[res.IngredientID]; !exists {
		return nil, store.ErrNotFound
	}
	if res.ID == "" {
		res.ID = xid.New("rsv")
	}
	if res.Status == "" {
		res.Status = domain.ReservationActive
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	s.reservations[res.ID] = res
	created := res
	return &created, nil
}

func (s *Store) ListActiveReservations(_ context.Context, orderID string) ([]domain.StockReservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.StockReservation, 0, 8)
	for _, res := range s.reservations {
		if res.OrderID == orderID && res.Status == domain.ReservationActive {
			result = append(result, res)
		}
	}
	slices.SortFunc(result, func(a, b domain.StockReservation) int {
		return strings.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (s *Store) SumActiveReservations(_ context.Context, ingredientID string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum float64
	for _, res := range s.reservations {
		if res.IngredientID == ingredientID && res.Status == domain.ReservationActive {
			sum += res.Quantity
		}
	}
	return sum, nil
}

func (s *Store) SetReservationStatus(_ context.Context, reservationID string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, exists := s.reservations[reservationID]
	if !exists {
		return store.ErrNotFound
	}
	res.Status = status
	s.reservations[reservationID] = res
	return nil
}

func (s *Store) CreateProductionBatch(_ context.Context, batch domain.ProductionBatch) (*domain.ProductionBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if batch.RecipeID == "" || batch.Quantity < 1 {
		return nil, store.ErrInvalidRecord
	}
	if batch.ID == "" {
		batch.ID = xid.New("batch")
	}
	if batch.Status == "" {
		batch.Status = domain.BatchStatusPlanned
	}
	s.batches[batch.ID] = batch
	created := batch
	return &created, nil
}

func (s *Store) GetProductionBatchByID(_ context.Context, batchID string) (*domain.ProductionBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch, exists := s.batches[batchID]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyBatch := batch
	return &copyBatch, nil
}

func (s *Store) ListProductionBatchesByOrder(_ context.Context, orderID string) ([]domain.ProductionBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.ProductionBatch, 0, 4)
	for _, batch := range s.batches {
		if batch.OrderID == orderID {
			result = append(result, batch)
		}
	}
	slices.SortFunc(result, func(a, b domain.ProductionBatch) int {
		return strings.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (s *Store) SetProductionBatchStatus(_ context.Context, batchID string, status string, completedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch, exists := s.batches[batchID]
	if !exists {
		return store.ErrNotFound
	}
	batch.Status = status
	if completedAt != nil {
		batch.CompletedAt = completedAt
	}
	s.batches[batchID] = batch
	return nil
}

func (s *Store) CreateFinancialRecord(_ context.Context, record domain.FinancialRecord) (*domain.FinancialRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.Type == "" || record.Amount < 0 {
		return nil, store.ErrInvalidRecord
	}
	if record.ID == "" {
		record.ID = xid.New("fin")
	}
	if record.Date.IsZero() {
		record.Date = time.Now().UTC()
	}
	s.financialRecords[record.ID] = record
	created := record
	return &created, nil
}

func (s *Store) GetFinancialRecordByID(_ context.Context, recordID string) (*domain.FinancialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.financialRecords[recordID]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyRecord := record
	return &copyRecord, nil
}

func (s *Store) ListFinancialRecordsByReference(_ context.Context, reference string) ([]domain.FinancialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.FinancialRecord, 0, 4)
	for _, record := range s.financialRecords {
		if record.Reference == reference {
			result = append(result, record)
		}
	}
	slices.SortFunc(result, func(a, b domain.FinancialRecord) int {
		return strings.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (s *Store) DeleteFinancialRecord(_ context.Context, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.financialRecords[recordID]; !exists {
		return store.ErrNotFound
	}
	delete(s.financialRecords, recordID)
	return nil
}

func (s *Store) ListOperationalCosts(_ context.Context) ([]domain.OperationalCost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	costs := make([]domain.OperationalCost, 0, len(s.operationalCosts))
	for _, c := range s.operationalCosts {
		costs = append(costs, c)
	}
	slices.SortFunc(costs, func(a, b domain.OperationalCost) int {
		return strings.Compare(a.Name, b.Name)
	})
	return costs, nil
}

func (s *Store) GetOperationalCostByID(_ context.Context, costID string) (*domain.OperationalCost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cost, exists := s.operationalCosts[costID]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyCost := cost
	return &copyCost, nil
}

func (s *Store) CreateIngredientPriceHistory(_ context.Context, entry domain.IngredientPriceHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("iph")
	}
	if entry.ChangedAt.IsZero() {
		entry.ChangedAt = time.Now().UTC()
	}
	s.priceHistory[entry.IngredientID] = append(s.priceHistory[entry.IngredientID], entry)
	return nil
}

func (s *Store) ListIngredientPriceHistory(_ context.Context, ingredientID string, limit int) ([]domain.IngredientPriceHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.priceHistory[ingredientID]
	if len(history) == 0 {
		return []domain.IngredientPriceHistory{}, nil
	}

	result := make([]domain.IngredientPriceHistory, len(history))
	copy(result, history)
	slices.SortFunc(result, func(a, b domain.IngredientPriceHistory) int {
		if a.ChangedAt.Equal(b.ChangedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.ChangedAt.After(b.ChangedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateAlert(_ context.Context, alert domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if alert.ID == "" {
		alert.ID = xid.New("alert")
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	s.alerts = append(s.alerts, alert)
	return nil
}

func (s *Store) ListAlerts(_ context.Context, limit int) ([]domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Alert, 0, len(s.alerts))
	for i := len(s.alerts) - 1; i >= 0; i-- {
		result = append(result, s.alerts[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// PutSalesRecord stores a historical sale for elasticity analysis.
func (s *Store) PutSalesRecord(_ context.Context, record domain.SalesRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.RecipeID == "" || record.Price <= 0 {
		return store.ErrInvalidRecord
	}
	s.salesRecords[record.RecipeID] = append(s.salesRecords[record.RecipeID], record)
	return nil
}

func (s *Store) ListSalesRecords(_ context.Context, recipeID string, limit int) ([]domain.SalesRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.salesRecords[recipeID]
	result := make([]domain.SalesRecord, len(records))
	copy(result, records)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func cloneRecipe(r domain.Recipe) domain.Recipe {
	copied := r
	copied.Ingredients = make([]domain.RecipeIngredient, len(r.Ingredients))
	copy(copied.Ingredients, r.Ingredients)
	return copied
}

func cloneOrder(o domain.Order) domain.Order {
	copied := o
	copied.Items = make([]domain.OrderItem, len(o.Items))
	copy(copied.Items, o.Items)
	return copied
}
