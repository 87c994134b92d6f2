package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"dapurmanis/engine/internal/domain"
	"dapurmanis/engine/internal/store"
	"dapurmanis/engine/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, unit, price_per_unit, current_stock, min_stock
		FROM ingredients
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ingredients := make([]domain.Ingredient, 0, 64)
	for rows.Next() {
		var ing domain.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Unit, &ing.PricePerUnit, &ing.CurrentStock, &ing.MinStock); err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ingredients, nil
}

func (s *Store) GetIngredientByID(ctx context.Context, ingredientID string) (*domain.Ingredient, error) {
	var ing domain.Ingredient
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, unit, price_per_unit, current_stock, min_stock
		FROM ingredients
		WHERE id = $1
	`, ingredientID).Scan(&ing.ID, &ing.Name, &ing.Unit, &ing.PricePerUnit, &ing.CurrentStock, &ing.MinStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &ing, nil
}

func (s *Store) CreateIngredient(ctx context.Context, ingredient domain.Ingredient) (*domain.Ingredient, error) {
	if ingredient.Name == "" || ingredient.Unit == "" || ingredient.PricePerUnit < 0 {
		return nil, store.ErrInvalidRecord
	}
	if ingredient.ID == "" {
		ingredient.ID = xid.New("ing")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingredients (id, name, unit, price_per_unit, current_stock, min_stock, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,now(),now())
	`, ingredient.ID, ingredient.Name, ingredient.Unit, ingredient.PricePerUnit, ingredient.CurrentStock, ingredient.MinStock)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRecord
		}
		return nil, err
	}

	created := ingredient
	return &created, nil
}

func (s *Store) UpdateIngredientPrice(ctx context.Context, ingredientID string, pricePerUnit float64) (*domain.Ingredient, error) {
	if pricePerUnit < 0 {
		return nil, store.ErrInvalidRecord
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE ingredients
		SET price_per_unit = $2, updated_at = now()
		WHERE id = $1
	`, ingredientID, pricePerUnit)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return s.GetIngredientByID(ctx, ingredientID)
}

func (s *Store) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, servings, cost_per_unit, selling_price, margin_percentage
		FROM recipes
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipes := make([]domain.Recipe, 0, 32)
	for rows.Next() {
		var r domain.Recipe
		if err := rows.Scan(&r.ID, &r.Name, &r.Servings, &r.CostPerUnit, &r.SellingPrice, &r.MarginPercentage); err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range recipes {
		ingredients, err := s.listRecipeIngredients(ctx, recipes[i].ID)
		if err != nil {
			return nil, err
		}
		recipes[i].Ingredients = ingredients
	}

	return recipes, nil
}

func (s *Store) GetRecipeByID(ctx context.Context, recipeID string) (*domain.Recipe, error) {
	var r domain.Recipe
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, servings, cost_per_unit, selling_price, margin_percentage
		FROM recipes
		WHERE id = $1
	`, recipeID).Scan(&r.ID, &r.Name, &r.Servings, &r.CostPerUnit, &r.SellingPrice, &r.MarginPercentage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	r.Ingredients, err = s.listRecipeIngredients(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) listRecipeIngredients(ctx context.Context, recipeID string) ([]domain.RecipeIngredient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT recipe_id, ingredient_id, quantity
		FROM recipe_ingredients
		WHERE recipe_id = $1
		ORDER BY ingredient_id
	`, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ingredients := make([]domain.RecipeIngredient, 0, 8)
	for rows.Next() {
		var ri domain.RecipeIngredient
		if err := rows.Scan(&ri.RecipeID, &ri.IngredientID, &ri.Quantity); err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ri)
	}
	return ingredients, rows.Err()
}

func (s *Store) ListRecipesUsingIngredient(ctx context.Context, ingredientID string) ([]domain.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT r.id, r.name, r.servings, r.cost_per_unit, r.selling_price, r.margin_percentage
		FROM recipes r
		JOIN recipe_ingredients ri ON ri.recipe_id = r.id
		WHERE ri.ingredient_id = $1
		ORDER BY r.id
	`, ingredientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipes := make([]domain.Recipe, 0, 8)
	for rows.Next() {
		var r domain.Recipe
		if err := rows.Scan(&r.ID, &r.Name, &r.Servings, &r.CostPerUnit, &r.SellingPrice, &r.MarginPercentage); err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range recipes {
		ingredients, err := s.listRecipeIngredients(ctx, recipes[i].ID)
		if err != nil {
			return nil, err
		}
		recipes[i].Ingredients = ingredients
	}

	return recipes, nil
}

func (s *Store) UpdateRecipeCost(ctx context.Context, recipeID string, costPerUnit float64, sellingPrice float64, marginPercentage float64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE recipes
		SET cost_per_unit = $2, selling_price = $3, margin_percentage = $4, updated_at = now()
		WHERE id = $1
	`, recipeID, costPerUnit, sellingPrice, marginPercentage)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var o domain.Order
	var financialRecordID, productionBatchID sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, order_no, status, customer_id, total_amount, delivery_date,
		       financial_record_id, production_batch_id, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, orderID).Scan(&o.ID, &o.OrderNo, &o.Status, &o.CustomerID, &o.TotalAmount, &o.DeliveryDate,
		&financialRecordID, &productionBatchID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	o.FinancialRecordID = financialRecordID.String
	o.ProductionBatchID = productionBatchID.String

	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, recipe_id, quantity, unit_price, total_price, hpp_at_order
		FROM order_items
		WHERE order_id = $1
		ORDER BY line_no
	`, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.OrderID, &item.RecipeID, &item.Quantity, &item.UnitPrice, &item.TotalPrice, &item.HPPAtOrder); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &o, nil
}

func (s *Store) SetOrderFinancialRecord(ctx context.Context, orderID string, financialRecordID string) error {
	var value any
	if financialRecordID != "" {
		value = financialRecordID
	}
	return s.touchOrder(ctx, `UPDATE orders SET financial_record_id = $2, updated_at = now() WHERE id = $1`, orderID, value)
}

func (s *Store) SetOrderProductionBatch(ctx context.Context, orderID string, batchID string) error {
	var value any
	if batchID != "" {
		value = batchID
	}
	return s.touchOrder(ctx, `UPDATE orders SET production_batch_id = $2, updated_at = now() WHERE id = $1`, orderID, value)
}

func (s *Store) SetOrderStatus(ctx context.Context, orderID string, status string) error {
	return s.touchOrder(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, orderID, status)
}

func (s *Store) touchOrder(ctx context.Context, query string, orderID string, value any) error {
	res, err := s.db.ExecContext(ctx, query, orderID, value)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	var c domain.Customer
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, total_orders, total_spent, average_order_value, last_order_date
		FROM customers
		WHERE id = $1
	`, customerID).Scan(&c.ID, &c.Name, &c.Phone, &c.TotalOrders, &c.TotalSpent, &c.AverageOrderValue, &c.LastOrderDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) UpdateCustomerStats(ctx context.Context, customer domain.Customer) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET total_orders = $2, total_spent = $3, average_order_value = $4, last_order_date = $5, updated_at = now()
		WHERE id = $1
	`, customer.ID, customer.TotalOrders, customer.TotalSpent, customer.AverageOrderValue, customer.LastOrderDate)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// CreateStockTransaction inserts the ledger row. The current_stock
// aggregate on ingredients is maintained by the apply_stock_transaction
// trigger (see Schema), never by application code.
func (s *Store) CreateStockTransaction(ctx context.Context, tx domain.StockTransaction) (*domain.StockTransaction, error) {
	if tx.IngredientID == "" || tx.Quantity <= 0 || tx.Type == "" {
		return nil, store.ErrInvalidRecord
	}
	if tx.ID == "" {
		tx.ID = xid.New("stx")
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stock_transactions (id, ingredient_id, type, quantity, unit_price, total_price, reference, note, actor_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, tx.ID, tx.IngredientID, tx.Type, tx.Quantity, tx.UnitPrice, tx.TotalPrice, tx.Reference, tx.Note, tx.ActorID, tx.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	created := tx
	return &created, nil
}

func (s *Store) ListStockTransactions(ctx context.Context, ingredientID string, limit int) ([]domain.StockTransaction, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ingredient_id, type, quantity, unit_price, total_price, reference, note, actor_id, created_at
		FROM stock_transactions
		WHERE ingredient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, ingredientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanStockTransactions(rows)
}

func (s *Store) ListStockTransactionsByReference(ctx context.Context, reference string) ([]domain.StockTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ingredient_id, type, quantity, unit_price, total_price, reference, note, actor_id, created_at
		FROM stock_transactions
		WHERE reference = $1
		ORDER BY created_at
	`, reference)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanStockTransactions(rows)
}

func scanStockTransactions(rows *sql.Rows) ([]domain.StockTransaction, error) {
	transactions := make([]domain.StockTransaction, 0, 16)
	for rows.Next() {
		var tx domain.StockTransaction
		if err := rows.Scan(&tx.ID, &tx.IngredientID, &tx.Type, &tx.Quantity, &tx.UnitPrice, &tx.TotalPrice, &tx.Reference, &tx.Note, &tx.ActorID, &tx.CreatedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func (s *Store) CreateReservation(ctx context.Context, res domain.StockReservation) (*domain.StockReservation, error) {
	if res.IngredientID == "" || res.OrderID == "" || res.Quantity <= 0 {
		return nil, store.ErrInvalidRecord
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stock_reservations (id, ingredient_id, order_id, quantity, status, actor_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, res.ID, res.IngredientID, res.OrderID, res.Quantity, res.Status, res.ActorID, res.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	created := res
	return &created, nil
}

func (s *Store) ListActiveReservations(ctx context.Context, orderID string) ([]domain.StockReservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ingredient_id, order_id, quantity, status, actor_id, created_at
		FROM stock_reservations
		WHERE order_id = $1 AND status = $2
		ORDER BY id
	`, orderID, domain.ReservationActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]domain.StockReservation, 0, 8)
	for rows.Next() {
		var res domain.StockReservation
		if err := rows.Scan(&res.ID, &res.IngredientID, &res.OrderID, &res.Quantity, &res.Status, &res.ActorID, &res.CreatedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func (s *Store) SumActiveReservations(ctx context.Context, ingredientID string) (float64, error) {
	var sum float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock_reservations
		WHERE ingredient_id = $1 AND status = $2
	`, ingredientID, domain.ReservationActive).Scan(&sum)
	return sum, err
}

func (s *Store) SetReservationStatus(ctx context.Context, reservationID string, status string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE stock_reservations SET status = $2 WHERE id = $1
	`, reservationID, status)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateProductionBatch(ctx context.Context, batch domain.ProductionBatch) (*domain.ProductionBatch, error) {
	if batch.RecipeID == "" || batch.Quantity < 1 {
		return nil, store.ErrInvalidRecord
	}
	if batch.ID == "" {
		batch.ID = xid.New("batch")
	}
	if batch.Status == "" {
		batch.Status = domain.BatchStatusPlanned
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO production_batches (id, recipe_id, order_id, quantity, cost_per_unit, total_cost, status, planned_start_time, note, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now())
	`, batch.ID, batch.RecipeID, batch.OrderID, batch.Quantity, batch.CostPerUnit, batch.TotalCost, batch.Status, batch.PlannedStartTime, batch.Note)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	created := batch
	return &created, nil
}

func (s *Store) GetProductionBatchByID(ctx context.Context, batchID string) (*domain.ProductionBatch, error) {
	var batch domain.ProductionBatch
	err := s.db.QueryRowContext(ctx, `
		SELECT id, recipe_id, order_id, quantity, cost_per_unit, total_cost, status, planned_start_time, completed_at, note
		FROM production_batches
		WHERE id = $1
	`, batchID).Scan(&batch.ID, &batch.RecipeID, &batch.OrderID, &batch.Quantity, &batch.CostPerUnit, &batch.TotalCost, &batch.Status, &batch.PlannedStartTime, &batch.CompletedAt, &batch.Note)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

func (s *Store) ListProductionBatchesByOrder(ctx context.Context, orderID string) ([]domain.ProductionBatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recipe_id, order_id, quantity, cost_per_unit, total_cost, status, planned_start_time, completed_at, note
		FROM production_batches
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	batches := make([]domain.ProductionBatch, 0, 4)
	for rows.Next() {
		var batch domain.ProductionBatch
		if err := rows.Scan(&batch.ID, &batch.RecipeID, &batch.OrderID, &batch.Quantity, &batch.CostPerUnit, &batch.TotalCost, &batch.Status, &batch.PlannedStartTime, &batch.CompletedAt, &batch.Note); err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, rows.Err()
}

func (s *Store) SetProductionBatchStatus(ctx context.Context, batchID string, status string, completedAt *time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE production_batches SET status = $2, completed_at = COALESCE($3, completed_at) WHERE id = $1
	`, batchID, status, completedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateFinancialRecord(ctx context.Context, record domain.FinancialRecord) (*domain.FinancialRecord, error) {
	if record.Type == "" || record.Amount < 0 {
		return nil, store.ErrInvalidRecord
	}
	if record.ID == "" {
		record.ID = xid.New("fin")
	}
	if record.Date.IsZero() {
		record.Date = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO financial_records (id, type, category, amount, description, reference, date, actor_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, record.ID, record.Type, record.Category, record.Amount, record.Description, record.Reference, record.Date, record.ActorID)
	if err != nil {
		return nil, err
	}

	created := record
	return &created, nil
}

func (s *Store) GetFinancialRecordByID(ctx context.Context, recordID string) (*domain.FinancialRecord, error) {
	var record domain.FinancialRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, type, category, amount, description, reference, date, actor_id
		FROM financial_records
		WHERE id = $1
	`, recordID).Scan(&record.ID, &record.Type, &record.Category, &record.Amount, &record.Description, &record.Reference, &record.Date, &record.ActorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (s *Store) ListFinancialRecordsByReference(ctx context.Context, reference string) ([]domain.FinancialRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, category, amount, description, reference, date, actor_id
		FROM financial_records
		WHERE reference = $1
		ORDER BY id
	`, reference)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.FinancialRecord, 0, 4)
	for rows.Next() {
		var record domain.FinancialRecord
		if err := rows.Scan(&record.ID, &record.Type, &record.Category, &record.Amount, &record.Description, &record.Reference, &record.Date, &record.ActorID); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *Store) DeleteFinancialRecord(ctx context.Context, recordID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM financial_records WHERE id = $1`, recordID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListOperationalCosts(ctx context.Context) ([]domain.OperationalCost, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, amount, unit
		FROM operational_costs
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	costs := make([]domain.OperationalCost, 0, 8)
	for rows.Next() {
		var cost domain.OperationalCost
		if err := rows.Scan(&cost.ID, &cost.Name, &cost.Type, &cost.Amount, &cost.Unit); err != nil {
			return nil, err
		}
		costs = append(costs, cost)
	}
	return costs, rows.Err()
}

func (s *Store) GetOperationalCostByID(ctx context.Context, costID string) (*domain.OperationalCost, error) {
	var cost domain.OperationalCost
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, amount, unit
		FROM operational_costs
		WHERE id = $1
	`, costID).Scan(&cost.ID, &cost.Name, &cost.Type, &cost.Amount, &cost.Unit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &cost, nil
}

func (s *Store) CreateIngredientPriceHistory(ctx context.Context, entry domain.IngredientPriceHistory) error {
	if entry.ID == "" {
		entry.ID = xid.New("iph")
	}
	if entry.ChangedAt.IsZero() {
		entry.ChangedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingredient_price_history (id, ingredient_id, old_price, new_price, changed_by, changed_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, entry.ID, entry.IngredientID, entry.OldPrice, entry.NewPrice, entry.ChangedBy, entry.ChangedAt)
	return err
}

func (s *Store) ListIngredientPriceHistory(ctx context.Context, ingredientID string, limit int) ([]domain.IngredientPriceHistory, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ingredient_id, old_price, new_price, changed_by, changed_at
		FROM ingredient_price_history
		WHERE ingredient_id = $1
		ORDER BY changed_at DESC
		LIMIT $2
	`, ingredientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]domain.IngredientPriceHistory, 0, 16)
	for rows.Next() {
		var entry domain.IngredientPriceHistory
		if err := rows.Scan(&entry.ID, &entry.IngredientID, &entry.OldPrice, &entry.NewPrice, &entry.ChangedBy, &entry.ChangedAt); err != nil {
			return nil, err
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

func (s *Store) CreateAlert(ctx context.Context, alert domain.Alert) error {
	if alert.ID == "" {
		alert.ID = xid.New("alert")
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts (id, kind, severity, ingredient_id, message, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, alert.ID, alert.Kind, alert.Severity, alert.IngredientID, alert.Message, alert.CreatedAt)
	return err
}

func (s *Store) ListAlerts(ctx context.Context, limit int) ([]domain.Alert, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, severity, ingredient_id, message, created_at
		FROM alerts
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := make([]domain.Alert, 0, limit)
	for rows.Next() {
		var alert domain.Alert
		if err := rows.Scan(&alert.ID, &alert.Kind, &alert.Severity, &alert.IngredientID, &alert.Message, &alert.CreatedAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func (s *Store) ListSalesRecords(ctx context.Context, recipeID string, limit int) ([]domain.SalesRecord, error) {
	if limit < 1 {
		limit = 200
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT recipe_id, price, quantity, date
		FROM sales_records
		WHERE recipe_id = $1
		ORDER BY date DESC
		LIMIT $2
	`, recipeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.SalesRecord, 0, limit)
	for rows.Next() {
		var record domain.SalesRecord
		if err := rows.Scan(&record.RecipeID, &record.Price, &record.Quantity, &record.Date); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}
