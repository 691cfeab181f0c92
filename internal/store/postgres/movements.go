package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/erazemk/ladak/internal/model"
	"github.com/erazemk/ladak/internal/store"
)

func (s *Store) ListMovements(ctx context.Context) ([]model.Movement, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, partner_id, crate_type_id, direction, qty, date, note, driver_name, created_at
		 FROM movements ORDER BY created_at DESC, seq DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}
	movements, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Movement, error) {
		var m model.Movement
		var direction string
		var createdAt int64
		err := row.Scan(&m.ID, &m.PartnerID, &m.CrateTypeID, &direction, &m.Qty,
			&m.Date, &m.Note, &m.DriverName, &createdAt)
		m.Direction = model.Direction(direction)
		m.CreatedAt = time.Unix(0, createdAt).UTC()
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning movements: %w", err)
	}
	return movements, nil
}

func (s *Store) CreateMovement(ctx context.Context, nm model.NewMovement) (*model.Movement, error) {
	m := model.Movement{
		ID:          uuid.NewString(),
		PartnerID:   nm.PartnerID,
		CrateTypeID: nm.CrateTypeID,
		Direction:   nm.Direction,
		Qty:         float64(nm.Qty),
		Date:        nm.Date,
		Note:        nm.Note,
		DriverName:  nm.DriverName,
		CreatedAt:   time.Unix(0, time.Now().UnixNano()).UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO movements (id, partner_id, crate_type_id, direction, qty, date, note, driver_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.PartnerID, m.CrateTypeID, string(m.Direction), m.Qty, m.Date, m.Note, m.DriverName,
		m.CreatedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating movement: %w", err)
	}
	return &m, nil
}

func (s *Store) DeleteMovement(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
