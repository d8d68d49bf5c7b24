package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vuminh/shoprec/internal/models"
)

// ProductRepository handles read-only product catalog queries. The
// analysis and recommendation paths never mutate the catalog.
type ProductRepository struct {
	db *DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetByIDs returns the products with the given ids, keyed by id string.
// Missing ids are simply absent from the result; callers treat them as
// products that no longer exist in the catalog.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[string]*models.Product, error) {
	if len(ids) == 0 {
		return map[string]*models.Product{}, nil
	}

	query := `
		SELECT id, category_ids, brand, price, keywords, tags, name, description
		FROM products
		WHERE id = ANY($1)
	`

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	rows, err := r.db.QueryContext(ctx, query, pq.Array(idStrings))
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			_ = err
		}
	}()

	products := make(map[string]*models.Product)
	for rows.Next() {
		product := &models.Product{}
		var categoryIDs []string
		var brand, description sql.NullString
		var price sql.NullFloat64

		if err := rows.Scan(
			&product.ID,
			pq.Array(&categoryIDs),
			&brand,
			&price,
			pq.Array(&product.Keywords),
			pq.Array(&product.Tags),
			&product.Name,
			&description,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		product.Brand = brand.String
		product.Description = description.String
		if price.Valid {
			p := price.Float64
			product.Price = &p
		}
		for _, cid := range categoryIDs {
			parsed, err := uuid.Parse(cid)
			if err != nil {
				// Skip malformed category ids rather than failing the lookup.
				continue
			}
			product.CategoryIDs = append(product.CategoryIDs, parsed)
		}

		products[product.ID.String()] = product
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// AllIDs returns every product id in catalog enumeration order. The order
// is deterministic so ranking tie-breaks are reproducible.
func (r *ProductRepository) AllIDs(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT id FROM products ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query product ids: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			_ = err
		}
	}()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan product ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product ids: %w", err)
	}

	return ids, nil
}

// AllKeywordSets returns the id and keyword list of every product, in
// catalog enumeration order. Products without keywords are included with
// an empty list; the keyword recommender filters them out.
func (r *ProductRepository) AllKeywordSets(ctx context.Context) ([]models.ProductKeywords, error) {
	query := `SELECT id, keywords FROM products ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query product keywords: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			_ = err
		}
	}()

	var sets []models.ProductKeywords
	for rows.Next() {
		var pk models.ProductKeywords
		if err := rows.Scan(&pk.ID, pq.Array(&pk.Keywords)); err != nil {
			return nil, fmt.Errorf("failed to scan product keywords: %w", err)
		}
		sets = append(sets, pk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product keywords: %w", err)
	}

	return sets, nil
}
