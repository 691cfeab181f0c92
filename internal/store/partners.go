package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/ladak/internal/model"
)

// ListPartners returns all partners sorted by name.
func (s *SQLite) ListPartners(ctx context.Context) ([]model.Partner, error) {
	partners := []model.Partner{}
	err := s.db.SelectContext(ctx, &partners,
		`SELECT id, name, contact, note FROM partners`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing partners: %w", err)
	}
	SortPartners(partners)
	return partners, nil
}

func (s *SQLite) getPartner(ctx context.Context, id string) (*model.Partner, error) {
	p := &model.Partner{}
	err := s.db.GetContext(ctx, p,
		`SELECT id, name, contact, note FROM partners WHERE id = ?`, id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting partner: %w", err)
	}
	return p, nil
}

// CreatePartner inserts a partner.
func (s *SQLite) CreatePartner(ctx context.Context, p model.Partner) (*model.Partner, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO partners (id, name, contact, note) VALUES (:id, :name, :contact, :note)`,
		p,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("creating partner %q: %w", p.ID, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("creating partner: %w", err)
	}
	return &p, nil
}

// UpdatePartner applies the non-nil fields of patch.
func (s *SQLite) UpdatePartner(ctx context.Context, id string, patch model.PartnerPatch) (*model.Partner, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE partners SET
		     name = COALESCE(?, name),
		     contact = COALESCE(?, contact),
		     note = COALESCE(?, note)
		 WHERE id = ?`,
		patch.Name, patch.Contact, patch.Note, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating partner: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.getPartner(ctx, id)
}

// DeletePartner removes a partner. Its movements are kept.
func (s *SQLite) DeletePartner(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM partners WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting partner: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
