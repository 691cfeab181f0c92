package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/erazemk/ladak/internal/model"
	"github.com/erazemk/ladak/internal/store"
)

const crateTypeColumns = `id, label, archived, image IS NOT NULL`

func scanCrateType(row pgx.Row) (model.CrateType, error) {
	var c model.CrateType
	err := row.Scan(&c.ID, &c.Label, &c.Archived, &c.HasImage)
	return c, err
}

func (s *Store) ListCrateTypes(ctx context.Context) ([]model.CrateType, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+crateTypeColumns+` FROM crate_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing crate types: %w", err)
	}
	types, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.CrateType, error) {
		return scanCrateType(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning crate types: %w", err)
	}
	return types, nil
}

func (s *Store) CreateCrateType(ctx context.Context, c model.CrateType) (*model.CrateType, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO crate_types (id, label, archived) VALUES ($1, $2, $3)`,
		c.ID, c.Label, c.Archived,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("creating crate type %q: %w", c.ID, store.ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("creating crate type: %w", err)
	}
	c.HasImage = false
	return &c, nil
}

func (s *Store) UpdateCrateType(ctx context.Context, id string, patch model.CrateTypePatch) (*model.CrateType, error) {
	c, err := scanCrateType(s.pool.QueryRow(ctx,
		`UPDATE crate_types SET
		     label = COALESCE($2, label),
		     archived = COALESCE($3, archived)
		 WHERE id = $1
		 RETURNING `+crateTypeColumns,
		id, patch.Label, patch.Archived,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating crate type: %w", err)
	}
	return &c, nil
}

func (s *Store) DeleteCrateType(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM crate_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting crate type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) SetCrateTypeImage(ctx context.Context, id string, data []byte, mime string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE crate_types SET image = $2, image_mime = $3 WHERE id = $1`,
		id, data, mime,
	)
	if err != nil {
		return fmt.Errorf("setting crate type image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetCrateTypeImage(ctx context.Context, id string) ([]byte, string, error) {
	var data []byte
	var mime *string
	err := s.pool.QueryRow(ctx,
		`SELECT image, image_mime FROM crate_types WHERE id = $1`, id,
	).Scan(&data, &mime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", store.ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting crate type image: %w", err)
	}
	if data == nil {
		return nil, "", store.ErrNotFound
	}
	if mime == nil {
		return data, "", nil
	}
	return data, *mime, nil
}
