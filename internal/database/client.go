package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"fitmyear-backend/internal/models"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrStatusRegression = errors.New("upload status may not regress")
)

type Client struct {
	db *sql.DB
}

func NewClient(connectionString string) (*Client, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{db: db}, nil
}

// CreateUpload registers one upload record for a successfully stored image.
// Records always start in 'pending'; only the reconstruction backend
// advances them.
func (c *Client) CreateUpload(ctx context.Context, userID uuid.UUID, imageURL string) (*models.UploadRecord, error) {
	var rec models.UploadRecord
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO uploads (id, user_id, image_url, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING id, user_id, image_url, status, model_url, created_at
	`, uuid.New(), userID, imageURL).Scan(
		&rec.ID, &rec.UserID, &rec.ImageURL, &rec.Status, &rec.ModelURL, &rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload record: %w", err)
	}

	return &rec, nil
}

// ListUserUploads returns the user's upload records newest first. Ties on
// created_at are broken by id so the "latest" selection stays deterministic.
func (c *Client) ListUserUploads(ctx context.Context, userID uuid.UUID) ([]models.UploadRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, user_id, image_url, status, model_url, created_at
		FROM uploads
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	var records []models.UploadRecord
	for rows.Next() {
		var rec models.UploadRecord
		err := rows.Scan(&rec.ID, &rec.UserID, &rec.ImageURL, &rec.Status, &rec.ModelURL, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetUpload fetches one upload record by id.
func (c *Client) GetUpload(ctx context.Context, uploadID uuid.UUID) (*models.UploadRecord, error) {
	var rec models.UploadRecord
	err := c.db.QueryRowContext(ctx, `
		SELECT id, user_id, image_url, status, model_url, created_at
		FROM uploads
		WHERE id = $1
	`, uploadID).Scan(&rec.ID, &rec.UserID, &rec.ImageURL, &rec.Status, &rec.ModelURL, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upload: %w", err)
	}

	return &rec, nil
}

// AdvanceUploadStatus moves an upload record forward along the status
// progression. A regression (e.g. done back to processing) is rejected with
// ErrStatusRegression; the check and update run in one transaction.
func (c *Client) AdvanceUploadStatus(ctx context.Context, uploadID uuid.UUID, status models.UploadStatus, modelURL string) (*models.UploadRecord, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current models.UploadStatus
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM uploads WHERE id = $1 FOR UPDATE
	`, uploadID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read upload status: %w", err)
	}

	if status.Rank() < current.Rank() {
		return nil, fmt.Errorf("%w: %s -> %s", ErrStatusRegression, current, status)
	}

	var model sql.NullString
	if modelURL != "" {
		model = sql.NullString{String: modelURL, Valid: true}
	}

	var rec models.UploadRecord
	err = tx.QueryRowContext(ctx, `
		UPDATE uploads
		SET status = $1, model_url = $2
		WHERE id = $3
		RETURNING id, user_id, image_url, status, model_url, created_at
	`, status, model, uploadID).Scan(
		&rec.ID, &rec.UserID, &rec.ImageURL, &rec.Status, &rec.ModelURL, &rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to advance upload status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}

	return &rec, nil
}

// CreateOrder persists a freshly created order. Price is computed by the
// caller and never recomputed afterwards.
func (c *Client) CreateOrder(ctx context.Context, order *models.Order) error {
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO orders (id, user_id, reconstruction_job_id, variant, quantity, price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, order.ID, order.UserID, order.ReconstructionJob, order.Variant,
		order.Quantity, order.Price, order.Status,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// GetOrder fetches one order by id.
func (c *Client) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, user_id, reconstruction_job_id, variant, quantity, price, status,
		       shipping_address, tracking_number, estimated_delivery, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, orderID)

	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

// ListUserOrders returns the user's orders newest first.
func (c *Client) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, user_id, reconstruction_job_id, variant, quantity, price, status,
		       shipping_address, tracking_number, estimated_delivery, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// ListAllOrders returns every order, newest first. Admin only.
func (c *Client) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, user_id, reconstruction_job_id, variant, quantity, price, status,
		       shipping_address, tracking_number, estimated_delivery, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// UpdateOrder writes the order's mutable fields (status, address, tracking,
// delivery estimate) and refreshes updated_at.
func (c *Client) UpdateOrder(ctx context.Context, order *models.Order) error {
	var address []byte
	if order.ShippingAddress != nil {
		var err error
		address, err = json.Marshal(order.ShippingAddress)
		if err != nil {
			return fmt.Errorf("failed to marshal shipping address: %w", err)
		}
	}

	err := c.db.QueryRowContext(ctx, `
		UPDATE orders
		SET status = $1, shipping_address = $2, tracking_number = $3,
		    estimated_delivery = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`, order.Status, address, order.TrackingNumber, order.EstimatedDelivery, order.ID,
	).Scan(&order.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	return nil
}

// Stats aggregates the admin dashboard counters. Revenue sums the price of
// every non-cancelled order.
func (c *Client) Stats(ctx context.Context) (totalUploads, totalOrders, pendingJobs, pendingOrders int, revenue decimal.Decimal, err error) {
	err = c.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM uploads),
			(SELECT COUNT(*) FROM uploads WHERE status IN ('pending', 'processing')),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM orders WHERE status IN ('pending', 'confirmed')),
			(SELECT COALESCE(SUM(price), 0) FROM orders WHERE status <> 'cancelled')
	`).Scan(&totalUploads, &pendingJobs, &totalOrders, &pendingOrders, &revenue)
	if err != nil {
		err = fmt.Errorf("failed to aggregate stats: %w", err)
	}
	return
}

func (c *Client) Close() error {
	return c.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		order   models.Order
		address []byte
	)
	err := row.Scan(
		&order.ID, &order.UserID, &order.ReconstructionJob, &order.Variant,
		&order.Quantity, &order.Price, &order.Status,
		&address, &order.TrackingNumber, &order.EstimatedDelivery,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(address) > 0 {
		var addr models.ShippingAddress
		if err := json.Unmarshal(address, &addr); err != nil {
			return nil, fmt.Errorf("corrupt shipping address on order %s: %w", order.ID, err)
		}
		order.ShippingAddress = &addr
	}

	return &order, nil
}

func collectOrders(rows *sql.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}
