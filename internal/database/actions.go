package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vuminh/shoprec/internal/models"
)

// ActionRepository handles user action database operations. Actions are
// append-only: there are no update or delete paths.
type ActionRepository struct {
	db *DB
}

// NewActionRepository creates a new action repository
func NewActionRepository(db *DB) *ActionRepository {
	return &ActionRepository{db: db}
}

func actionTypeStrings(types []models.ActionType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

// Insert appends a new action event
func (r *ActionRepository) Insert(ctx context.Context, action *models.RawAction) error {
	query := `
		INSERT INTO user_actions (id, customer_id, action_type, product_id, category_id, keyword, store_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if action.ID == uuid.Nil {
		action.ID = uuid.New()
	}
	if action.CreatedAt.IsZero() {
		action.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		action.ID,
		action.CustomerID,
		string(action.ActionType),
		nullableString(action.ProductID),
		nullableString(action.CategoryID),
		nullableString(action.Keyword),
		nullableString(action.StoreID),
		action.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert action: %w", err)
	}

	return nil
}

// FindByCustomer returns the customer's actions whose type is in the given
// set, restricted to the [from, to] window, in chronological order.
func (r *ActionRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, types []models.ActionType, from, to time.Time) ([]*models.RawAction, error) {
	query := `
		SELECT id, customer_id, action_type, product_id, category_id, keyword, store_id, created_at
		FROM user_actions
		WHERE customer_id = $1
		  AND action_type = ANY($2)
		  AND created_at >= $3
		  AND created_at <= $4
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, customerID, pq.Array(actionTypeStrings(types)), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			_ = err
		}
	}()

	return scanActions(rows)
}

// FindByTypes returns all actions across all customers whose type is in
// the given set. Used to build the training matrix.
func (r *ActionRepository) FindByTypes(ctx context.Context, types []models.ActionType) ([]*models.RawAction, error) {
	query := `
		SELECT id, customer_id, action_type, product_id, category_id, keyword, store_id, created_at
		FROM user_actions
		WHERE action_type = ANY($1)
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(actionTypeStrings(types)))
	if err != nil {
		return nil, fmt.Errorf("failed to query actions by type: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			_ = err
		}
	}()

	return scanActions(rows)
}

// SeenProductIDs returns the set of product ids the customer has
// interacted with through any action type.
func (r *ActionRepository) SeenProductIDs(ctx context.Context, customerID uuid.UUID) (map[string]struct{}, error) {
	query := `
		SELECT DISTINCT product_id
		FROM user_actions
		WHERE customer_id = $1 AND product_id IS NOT NULL
	`

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seen products: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			_ = err
		}
	}()

	seen := make(map[string]struct{})
	for rows.Next() {
		var productID string
		if err := rows.Scan(&productID); err != nil {
			return nil, fmt.Errorf("failed to scan product ID: %w", err)
		}
		seen[productID] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seen products: %w", err)
	}

	return seen, nil
}

func scanActions(rows *sql.Rows) ([]*models.RawAction, error) {
	var actions []*models.RawAction
	for rows.Next() {
		action := &models.RawAction{}
		var actionType string
		var productID, categoryID, keyword, storeID sql.NullString

		if err := rows.Scan(
			&action.ID,
			&action.CustomerID,
			&actionType,
			&productID,
			&categoryID,
			&keyword,
			&storeID,
			&action.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}

		action.ActionType = models.ActionType(actionType)
		action.ProductID = productID.String
		action.CategoryID = categoryID.String
		action.Keyword = keyword.String
		action.StoreID = storeID.String
		actions = append(actions, action)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating actions: %w", err)
	}

	return actions, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
