package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stockkeep/inventory-service/internal/model"
	"github.com/stockkeep/inventory-service/internal/repository"
)

const productColumns = "id, sku, name, description, category, price, stock, barcode, supplier_id, reorder_point, reorder_quantity, lead_time_days, is_active, created_at"

// ProductRepository implements repository.ProductRepository on PostgreSQL.
type ProductRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &ProductRepository{db: db}
}

// getExecutor returns the active executor (transaction if exists, otherwise db)
func (r *ProductRepository) getExecutor() dbExecutor {
	if r.txn != nil {
		return r.txn
	}
	return r.db
}

// Create inserts a new product. The record ID comes from the database
// sequence and is never reused; the SKU unique constraint makes concurrent
// creates with the same SKU resolve to exactly one winner.
func (r *ProductRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	product.InitMeta()

	query := `INSERT INTO products (sku, name, description, category, price, stock, barcode, supplier_id, reorder_point, reorder_quantity, lead_time_days, is_active, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          RETURNING id`

	executor := r.getExecutor()
	stmt, err := executor.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx,
		product.SKU, product.Name, product.Description, product.Category,
		product.Price, product.Stock, product.Barcode, product.SupplierID,
		product.ReorderPoint, product.ReorderQuantity, product.LeadTimeDays,
		product.IsActive, product.CreatedAt,
	).Scan(&product.ID)
	if err != nil {
		if detail, ok := uniqueViolation(err); ok {
			return nil, &repository.UniqueConstraintError{Detail: detail}
		}
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	return product, nil
}

// FindByID retrieves a single product by ID.
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	executor := r.getExecutor()
	stmt, err := executor.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	var result model.Product
	err = scanProduct(stmt.QueryRowContext(ctx, id), &result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &result, nil
}

// List retrieves products in insertion order, optionally filtered by
// category. No matches yields an empty slice, never an error.
func (r *ProductRepository) List(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + productColumns + " FROM products WHERE 1=1")

	var args []interface{}
	argIndex := 1

	if query.Category != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND category = $%d", argIndex))
		args = append(args, query.Category)
		argIndex++
	}

	// Resume after the cursor
	if query.Paginator != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND (created_at, id) > ($%d, $%d)", argIndex, argIndex+1))
		args = append(args, query.Paginator.LastCreatedAt, query.Paginator.LastID)
		argIndex += 2
	}

	// Insertion order: created_at is non-decreasing, id breaks ties
	queryBuilder.WriteString(" ORDER BY created_at ASC, id ASC")

	limit := query.Limit
	if limit <= 0 {
		limit = repository.DefaultPaginationLimit
	}
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argIndex))
	args = append(args, limit)

	executor := r.getExecutor()
	stmt, err := executor.PrepareContext(ctx, queryBuilder.String())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []*model.Product{}
	for rows.Next() {
		var product model.Product
		if err := scanProduct(rows, &product); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, &product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

// Update replaces the mutable fields of an existing product. ID and
// created_at are never touched.
func (r *ProductRepository) Update(ctx context.Context, product *model.Product) (*model.Product, error) {
	query := `UPDATE products
	          SET sku = $1, name = $2, description = $3, category = $4, price = $5, stock = $6,
	              barcode = $7, supplier_id = $8, reorder_point = $9, reorder_quantity = $10,
	              lead_time_days = $11, is_active = $12
	          WHERE id = $13`

	executor := r.getExecutor()
	stmt, err := executor.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare update statement: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		product.SKU, product.Name, product.Description, product.Category,
		product.Price, product.Stock, product.Barcode, product.SupplierID,
		product.ReorderPoint, product.ReorderQuantity, product.LeadTimeDays,
		product.IsActive, product.ID,
	)
	if err != nil {
		if detail, ok := uniqueViolation(err); ok {
			return nil, &repository.UniqueConstraintError{Detail: detail}
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("product %d: %w", product.ID, repository.ErrNotFound)
	}

	return product, nil
}

// DeleteByID permanently removes a product. Deletion is final: the ID is
// never reassigned and the SKU becomes reusable.
func (r *ProductRepository) DeleteByID(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id = $1`

	executor := r.getExecutor()
	stmt, err := executor.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, repository.ErrNotFound)
	}

	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner, product *model.Product) error {
	return row.Scan(
		&product.ID, &product.SKU, &product.Name, &product.Description,
		&product.Category, &product.Price, &product.Stock, &product.Barcode,
		&product.SupplierID, &product.ReorderPoint, &product.ReorderQuantity,
		&product.LeadTimeDays, &product.IsActive, &product.CreatedAt,
	)
}

// uniqueViolation detects a unique constraint violation from either
// PostgreSQL driver in use: pgx for the services, lib/pq for the
// integration suite.
func uniqueViolation(err error) (string, bool) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) && pgxErr.Code == pqUniqueViolationErrCode {
		detail := pgxErr.Detail
		if detail == "" {
			detail = pgxErr.Message
		}
		return detail, true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolationErrCode {
		detail := pqErr.Detail
		if detail == "" {
			detail = pqErr.Message
		}
		return detail, true
	}

	return "", false
}
