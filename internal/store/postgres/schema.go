package postgres

import "context"

// Schema creates all tables plus the trigger that keeps
// ingredients.current_stock equal to the running sum of its stock
// transactions. USAGE subtracts, every other type adds; the engine
// never writes current_stock directly.
const Schema = `
CREATE TABLE IF NOT EXISTS ingredients (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	unit TEXT NOT NULL,
	price_per_unit DOUBLE PRECISION NOT NULL DEFAULT 0,
	current_stock DOUBLE PRECISION NOT NULL DEFAULT 0,
	min_stock DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS recipes (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	servings INTEGER NOT NULL DEFAULT 1,
	cost_per_unit DOUBLE PRECISION NOT NULL DEFAULT 0,
	selling_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	margin_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS recipe_ingredients (
	recipe_id TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
	ingredient_id TEXT NOT NULL REFERENCES ingredients(id),
	quantity DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (recipe_id, ingredient_id)
);

CREATE TABLE IF NOT EXISTS customers (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	total_orders INTEGER NOT NULL DEFAULT 0,
	total_spent DOUBLE PRECISION NOT NULL DEFAULT 0,
	average_order_value DOUBLE PRECISION NOT NULL DEFAULT 0,
	last_order_date TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS orders (
	id TEXT PRIMARY KEY,
	order_no TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL DEFAULT 'PENDING',
	customer_id TEXT NOT NULL DEFAULT '',
	total_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
	delivery_date TIMESTAMPTZ,
	financial_record_id TEXT,
	production_batch_id TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS order_items (
	order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	line_no SERIAL,
	recipe_id TEXT NOT NULL REFERENCES recipes(id),
	quantity INTEGER NOT NULL,
	unit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	hpp_at_order DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (order_id, line_no)
);

CREATE TABLE IF NOT EXISTS stock_transactions (
	id TEXT PRIMARY KEY,
	ingredient_id TEXT NOT NULL REFERENCES ingredients(id),
	type TEXT NOT NULL,
	quantity DOUBLE PRECISION NOT NULL CHECK (quantity > 0),
	unit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	reference TEXT NOT NULL DEFAULT '',
	note TEXT NOT NULL DEFAULT '',
	actor_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_stock_transactions_ingredient ON stock_transactions (ingredient_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_stock_transactions_reference ON stock_transactions (reference);

CREATE TABLE IF NOT EXISTS stock_reservations (
	id TEXT PRIMARY KEY,
	ingredient_id TEXT NOT NULL REFERENCES ingredients(id),
	order_id TEXT NOT NULL,
	quantity DOUBLE PRECISION NOT NULL CHECK (quantity > 0),
	status TEXT NOT NULL DEFAULT 'ACTIVE',
	actor_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_stock_reservations_order ON stock_reservations (order_id, status);

CREATE TABLE IF NOT EXISTS production_batches (
	id TEXT PRIMARY KEY,
	recipe_id TEXT NOT NULL REFERENCES recipes(id),
	order_id TEXT NOT NULL DEFAULT '',
	quantity INTEGER NOT NULL,
	cost_per_unit DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'PLANNED',
	planned_start_time TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ,
	note TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS financial_records (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	amount DOUBLE PRECISION NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	reference TEXT NOT NULL DEFAULT '',
	date TIMESTAMPTZ NOT NULL DEFAULT now(),
	actor_id TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_financial_records_reference ON financial_records (reference);

CREATE TABLE IF NOT EXISTS operational_costs (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL DEFAULT 'variable',
	amount DOUBLE PRECISION NOT NULL DEFAULT 0,
	unit TEXT NOT NULL DEFAULT 'batch'
);

CREATE TABLE IF NOT EXISTS ingredient_price_history (
	id TEXT PRIMARY KEY,
	ingredient_id TEXT NOT NULL REFERENCES ingredients(id),
	old_price DOUBLE PRECISION NOT NULL,
	new_price DOUBLE PRECISION NOT NULL,
	changed_by TEXT NOT NULL DEFAULT '',
	changed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS alerts (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	severity TEXT NOT NULL DEFAULT 'warning',
	ingredient_id TEXT NOT NULL DEFAULT '',
	message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sales_records (
	recipe_id TEXT NOT NULL REFERENCES recipes(id),
	price DOUBLE PRECISION NOT NULL,
	quantity INTEGER NOT NULL,
	date TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE OR REPLACE FUNCTION apply_stock_transaction() RETURNS trigger AS $$
BEGIN
	IF NEW.type = 'USAGE' THEN
		UPDATE ingredients
		SET current_stock = current_stock - NEW.quantity, updated_at = now()
		WHERE id = NEW.ingredient_id;
	ELSE
		UPDATE ingredients
		SET current_stock = current_stock + NEW.quantity, updated_at = now()
		WHERE id = NEW.ingredient_id;
	END IF;
	RETURN NEW;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_apply_stock_transaction ON stock_transactions;
CREATE TRIGGER trg_apply_stock_transaction
AFTER INSERT ON stock_transactions
FOR EACH ROW EXECUTE FUNCTION apply_stock_transaction();
`

// EnsureSchema applies the schema. Safe to run at startup; all
// statements are idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, Schema)
	return err
}
