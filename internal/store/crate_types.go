package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/ladak/internal/model"
)

const crateTypeColumns = `id, label, archived, image IS NOT NULL AS has_image`

// ListCrateTypes returns all crate types sorted by id.
func (s *SQLite) ListCrateTypes(ctx context.Context) ([]model.CrateType, error) {
	types := []model.CrateType{}
	err := s.db.SelectContext(ctx, &types,
		`SELECT `+crateTypeColumns+` FROM crate_types ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing crate types: %w", err)
	}
	return types, nil
}

func (s *SQLite) getCrateType(ctx context.Context, id string) (*model.CrateType, error) {
	c := &model.CrateType{}
	err := s.db.GetContext(ctx, c,
		`SELECT `+crateTypeColumns+` FROM crate_types WHERE id = ?`, id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting crate type: %w", err)
	}
	return c, nil
}

// CreateCrateType inserts a crate type. The id is stored as given.
func (s *SQLite) CreateCrateType(ctx context.Context, c model.CrateType) (*model.CrateType, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO crate_types (id, label, archived) VALUES (?, ?, ?)`,
		c.ID, c.Label, c.Archived,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("creating crate type %q: %w", c.ID, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("creating crate type: %w", err)
	}
	c.HasImage = false
	return &c, nil
}

// UpdateCrateType applies the non-nil fields of patch.
func (s *SQLite) UpdateCrateType(ctx context.Context, id string, patch model.CrateTypePatch) (*model.CrateType, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE crate_types SET
		     label = COALESCE(?, label),
		     archived = COALESCE(?, archived)
		 WHERE id = ?`,
		patch.Label, patch.Archived, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating crate type: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.getCrateType(ctx, id)
}

// DeleteCrateType removes a crate type. Movements referencing it are kept.
func (s *SQLite) DeleteCrateType(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM crate_types WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting crate type: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetCrateTypeImage stores a photo for a crate type.
func (s *SQLite) SetCrateTypeImage(ctx context.Context, id string, data []byte, mime string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE crate_types SET image = ?, image_mime = ? WHERE id = ?`,
		data, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting crate type image: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetCrateTypeImage returns a crate type photo and its MIME type.
func (s *SQLite) GetCrateTypeImage(ctx context.Context, id string) ([]byte, string, error) {
	var row struct {
		Image []byte         `db:"image"`
		Mime  sql.NullString `db:"image_mime"`
	}
	err := s.db.GetContext(ctx, &row,
		`SELECT image, image_mime FROM crate_types WHERE id = ?`, id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting crate type image: %w", err)
	}
	if row.Image == nil {
		return nil, "", ErrNotFound
	}
	return row.Image, row.Mime.String, nil
}
