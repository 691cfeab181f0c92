package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/erazemk/ladak/internal/model"
	"github.com/erazemk/ladak/internal/store"
)

func (s *Store) ListPartners(ctx context.Context) ([]model.Partner, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, contact, note FROM partners`)
	if err != nil {
		return nil, fmt.Errorf("listing partners: %w", err)
	}
	partners, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Partner, error) {
		var p model.Partner
		err := row.Scan(&p.ID, &p.Name, &p.Contact, &p.Note)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning partners: %w", err)
	}
	store.SortPartners(partners)
	return partners, nil
}

func (s *Store) CreatePartner(ctx context.Context, p model.Partner) (*model.Partner, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO partners (id, name, contact, note) VALUES ($1, $2, $3, $4)`,
		p.ID, p.Name, p.Contact, p.Note,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("creating partner %q: %w", p.ID, store.ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("creating partner: %w", err)
	}
	return &p, nil
}

func (s *Store) UpdatePartner(ctx context.Context, id string, patch model.PartnerPatch) (*model.Partner, error) {
	var p model.Partner
	err := s.pool.QueryRow(ctx,
		`UPDATE partners SET
		     name = COALESCE($2, name),
		     contact = COALESCE($3, contact),
		     note = COALESCE($4, note)
		 WHERE id = $1
		 RETURNING id, name, contact, note`,
		id, patch.Name, patch.Contact, patch.Note,
	).Scan(&p.ID, &p.Name, &p.Contact, &p.Note)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating partner: %w", err)
	}
	return &p, nil
}

func (s *Store) DeletePartner(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM partners WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting partner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
