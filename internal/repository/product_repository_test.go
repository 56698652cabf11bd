package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"shopkart/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	// Get connection string
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Create connection pool
	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	// Create schema
	createSchema(t, pool)

	// Cleanup function
	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// createSchema creates the necessary database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			price DECIMAL(10,2) NOT NULL CHECK (price >= 0),
			category TEXT NOT NULL,
			image TEXT NOT NULL DEFAULT '',
			stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			address TEXT NOT NULL,
			city TEXT NOT NULL,
			state TEXT NOT NULL,
			country TEXT NOT NULL,
			pin_code TEXT NOT NULL,
			phone_no TEXT NOT NULL,
			payment_id TEXT NOT NULL,
			payment_status TEXT NOT NULL,
			items_price DOUBLE PRECISION NOT NULL,
			tax_price DOUBLE PRECISION NOT NULL,
			shipping_price DOUBLE PRECISION NOT NULL,
			total_price DOUBLE PRECISION NOT NULL,
			order_status TEXT NOT NULL,
			stock_updated BOOLEAN NOT NULL DEFAULT FALSE,
			paid_at TIMESTAMPTZ NOT NULL,
			shipped_at TIMESTAMPTZ,
			soon_at TIMESTAMPTZ,
			delivered_at TIMESTAMPTZ,
			cancelled_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_user_payment ON orders(user_id, payment_id);

		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id TEXT NOT NULL,
			name TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			image TEXT NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL CHECK (quantity > 0)
		);
		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);

		CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			order_id UUID,
			read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id);
	`

	_, err := pool.Exec(ctx, schema)
	require.NoError(t, err)
}

// seedProducts inserts test products into the database.
func seedProducts(t *testing.T, pool *pgxpool.Pool, products []model.Product) {
	ctx := context.Background()

	query := `
		INSERT INTO products (id, name, price, category, image, stock, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, p := range products {
		_, err := pool.Exec(ctx, query, p.ID, p.Name, p.Price, p.Category, p.Image, p.Stock, p.CreatedAt)
		require.NoError(t, err)
	}
}

// productStock reads a product's current stock directly.
func productStock(t *testing.T, pool *pgxpool.Pool, id string) int {
	var stock int
	err := pool.QueryRow(context.Background(), `SELECT stock FROM products WHERE id = $1`, id).Scan(&stock)
	require.NoError(t, err)
	return stock
}

func TestProductRepository_GetAll(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewProductRepository(pool, logger)

	now := time.Now()
	testProducts := []model.Product{
		{ID: "P001", Name: "Product A", Price: 10.00, Category: "Cat1", Stock: 5, CreatedAt: now},
		{ID: "P002", Name: "Product B", Price: 20.00, Category: "Cat2", Stock: 5, CreatedAt: now},
		{ID: "P003", Name: "Product C", Price: 30.00, Category: "Cat1", Stock: 5, CreatedAt: now},
		{ID: "P004", Name: "Product D", Price: 40.00, Category: "Cat3", Stock: 5, CreatedAt: now},
		{ID: "P005", Name: "Product E", Price: 50.00, Category: "Cat2", Stock: 5, CreatedAt: now},
	}
	seedProducts(t, pool, testProducts)

	tests := []struct {
		name     string
		limit    int
		offset   int
		expected int
	}{
		{
			name:     "Get all products",
			limit:    10,
			offset:   0,
			expected: 5,
		},
		{
			name:     "Get first page",
			limit:    2,
			offset:   0,
			expected: 2,
		},
		{
			name:     "Get last page",
			limit:    2,
			offset:   4,
			expected: 1,
		},
		{
			name:     "Offset beyond results",
			limit:    10,
			offset:   10,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			products, err := repo.GetAll(ctx, tt.limit, tt.offset)

			require.NoError(t, err)
			assert.Len(t, products, tt.expected)

			// Verify products are ordered by name
			for i := 1; i < len(products); i++ {
				assert.LessOrEqual(t, products[i-1].Name, products[i].Name)
			}
		})
	}
}

func TestProductRepository_GetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewProductRepository(pool, logger)

	now := time.Now()
	testProduct := model.Product{
		ID:        "P001",
		Name:      "Test Product",
		Price:     99.99,
		Category:  "TestCat",
		Image:     "test.png",
		Stock:     7,
		CreatedAt: now,
	}
	seedProducts(t, pool, []model.Product{testProduct})

	tests := []struct {
		name      string
		id        string
		expectNil bool
	}{
		{
			name:      "Product exists",
			id:        "P001",
			expectNil: false,
		},
		{
			name:      "Product does not exist",
			id:        "P999",
			expectNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			product, err := repo.GetByID(ctx, tt.id)

			require.NoError(t, err)

			if tt.expectNil {
				assert.Nil(t, product)
			} else {
				require.NotNil(t, product)
				assert.Equal(t, testProduct.ID, product.ID)
				assert.Equal(t, testProduct.Name, product.Name)
				assert.Equal(t, testProduct.Price, product.Price)
				assert.Equal(t, testProduct.Stock, product.Stock)
			}
		})
	}
}

func TestProductRepository_DecrementStock(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewProductRepository(pool, logger)

	seedProducts(t, pool, []model.Product{
		{ID: "P001", Name: "Widget", Price: 100, Category: "Cat1", Stock: 10, CreatedAt: time.Now()},
	})

	tests := []struct {
		name          string
		productID     string
		quantity      int
		expectErr     error
		expectedStock int
	}{
		{
			name:          "Sufficient stock",
			productID:     "P001",
			quantity:      3,
			expectedStock: 7,
		},
		{
			name:          "Exactly remaining stock",
			productID:     "P001",
			quantity:      7,
			expectedStock: 0,
		},
		{
			name:          "Insufficient stock",
			productID:     "P001",
			quantity:      1,
			expectErr:     model.ErrInsufficientStock,
			expectedStock: 0,
		},
		{
			name:          "Unknown product",
			productID:     "P999",
			quantity:      1,
			expectErr:     model.ErrInsufficientStock,
			expectedStock: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			tx, err := pool.Begin(ctx)
			require.NoError(t, err)

			err = repo.DecrementStock(ctx, tx, tt.productID, tt.quantity)
			if tt.expectErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectErr)
				require.NoError(t, tx.Rollback(ctx))
			} else {
				require.NoError(t, err)
				require.NoError(t, tx.Commit(ctx))
			}

			assert.Equal(t, tt.expectedStock, productStock(t, pool, "P001"))
		})
	}
}

func TestProductRepository_DecrementStock_Concurrent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewProductRepository(pool, logger)

	seedProducts(t, pool, []model.Product{
		{ID: "P001", Name: "Widget", Price: 100, Category: "Cat1", Stock: 5, CreatedAt: time.Now()},
	})

	// Ten buyers race for five units. The conditional update must hand out
	// exactly five and never drive stock negative.
	const buyers = 10
	results := make(chan error, buyers)
	var wg sync.WaitGroup

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := context.Background()

			tx, err := pool.Begin(ctx)
			if err != nil {
				results <- err
				return
			}

			err = repo.DecrementStock(ctx, tx, "P001", 1)
			if err != nil {
				_ = tx.Rollback(ctx)
				results <- err
				return
			}
			results <- tx.Commit(ctx)
		}()
	}

	wg.Wait()
	close(results)

	succeeded := 0
	insufficient := 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, model.ErrInsufficientStock):
			insufficient++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 5, insufficient)
	assert.Equal(t, 0, productStock(t, pool, "P001"))
}

func TestProductRepository_RestoreStock(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewProductRepository(pool, logger)

	seedProducts(t, pool, []model.Product{
		{ID: "P001", Name: "Widget", Price: 100, Category: "Cat1", Stock: 3, CreatedAt: time.Now()},
	})

	ctx := context.Background()

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.RestoreStock(ctx, tx, "P001", 4))

	// Restoring to a deleted product is not an error; the cancellation
	// still proceeds.
	require.NoError(t, repo.RestoreStock(ctx, tx, "P999", 2))

	require.NoError(t, tx.Commit(ctx))

	assert.Equal(t, 7, productStock(t, pool, "P001"))
}
