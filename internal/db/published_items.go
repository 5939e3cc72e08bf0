package db

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"newsreview/internal/models"
)

const publishedTable = "newsletters"

// publishedColumns is the standard column list for published newsletter queries.
const publishedColumns = `id, title, description, short_description, pricing, frequency, categories,
	url, image, slug, related, version, created_at`

func scanPublishedItem(row pgx.Row) (*models.PublishedItem, error) {
	var p models.PublishedItem
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.ShortDescription,
		&p.Pricing,
		&p.Frequency,
		&p.Categories,
		&p.URL,
		&p.Image,
		&p.Slug,
		&p.Related,
		&p.Version,
		&p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPublishedNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPublishedItems returns every published newsletter ordered by id.
// The order is relied on as the similarity tie-break.
func (d *DB) ListPublishedItems(ctx context.Context) ([]models.PublishedItem, error) {
	query, args, err := psql.Select(publishedColumns).
		From(publishedTable).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.PublishedItem{}
	for rows.Next() {
		p, err := scanPublishedItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// GetPublishedItem retrieves a published newsletter by ID.
func (d *DB) GetPublishedItem(ctx context.Context, id int64) (*models.PublishedItem, error) {
	query, args, err := psql.Select(publishedColumns).
		From(publishedTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanPublishedItem(d.Pool.QueryRow(ctx, query, args...))
}

// InsertPublishedItem inserts a newsletter and fills in its assigned ID, version and
// creation time.
func (d *DB) InsertPublishedItem(ctx context.Context, item *models.PublishedItem) error {
	return insertPublishedItem(ctx, d.Pool, item)
}

func insertPublishedItem(ctx context.Context, q querier, item *models.PublishedItem) error {
	query := `
		INSERT INTO newsletters
			(title, description, short_description, pricing, frequency, categories, url, image, slug, related)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, version, created_at
	`
	return q.QueryRow(ctx, query,
		item.Title,
		nonNilStrings(item.Description),
		item.ShortDescription,
		item.Pricing,
		item.Frequency,
		nonNilStrings(item.Categories),
		item.URL,
		item.Image,
		item.Slug,
		nonNilIDs(item.Related),
	).Scan(&item.ID, &item.Version, &item.CreatedAt)
}

// SetRelatedItems replaces a newsletter's related list if its version still matches.
// Returns ErrVersionConflict when another writer got there first.
func (d *DB) SetRelatedItems(ctx context.Context, id int64, related []int64, version int64) error {
	query, args, err := psql.Update(publishedTable).
		Set("related", nonNilIDs(related)).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": id, "version": version}).
		ToSql()
	if err != nil {
		return err
	}

	result, err := d.Pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	exists, err := publishedItemExists(ctx, d.Pool, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrPublishedNotFound
	}
	return ErrVersionConflict
}

// appendRelatedItem atomically adds relatedID to a newsletter's related list.
// Already-present ids are left alone.
func appendRelatedItem(ctx context.Context, q querier, id, relatedID int64) error {
	result, err := q.Exec(ctx, `
		UPDATE newsletters
		SET related = array_append(related, $1), version = version + 1
		WHERE id = $2 AND NOT ($1 = ANY(related))
	`, relatedID, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	exists, err := publishedItemExists(ctx, q, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrPublishedNotFound
	}
	return nil
}

func publishedItemExists(ctx context.Context, q querier, id int64) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM newsletters WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
