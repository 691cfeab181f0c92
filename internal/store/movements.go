package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/ladak/internal/model"
)

// movementRow is the SQLite shape of a movement; created_at is stored as
// Unix nanoseconds.
type movementRow struct {
	ID          string  `db:"id"`
	PartnerID   string  `db:"partner_id"`
	CrateTypeID string  `db:"crate_type_id"`
	Direction   string  `db:"direction"`
	Qty         float64 `db:"qty"`
	Date        string  `db:"date"`
	Note        string  `db:"note"`
	DriverName  string  `db:"driver_name"`
	CreatedAt   int64   `db:"created_at"`
}

func (r movementRow) movement() model.Movement {
	return model.Movement{
		ID:          r.ID,
		PartnerID:   r.PartnerID,
		CrateTypeID: r.CrateTypeID,
		Direction:   model.Direction(r.Direction),
		Qty:         r.Qty,
		Date:        r.Date,
		Note:        r.Note,
		DriverName:  r.DriverName,
		CreatedAt:   time.Unix(0, r.CreatedAt).UTC(),
	}
}

// ListMovements returns all movements, newest first.
func (s *SQLite) ListMovements(ctx context.Context) ([]model.Movement, error) {
	var rows []movementRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, partner_id, crate_type_id, direction, qty, date, note, driver_name, created_at
		 FROM movements ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}

	movements := make([]model.Movement, 0, len(rows))
	for _, r := range rows {
		movements = append(movements, r.movement())
	}
	return movements, nil
}

// CreateMovement records a movement.
func (s *SQLite) CreateMovement(ctx context.Context, m model.NewMovement) (*model.Movement, error) {
	row := movementRow{
		ID:          uuid.NewString(),
		PartnerID:   m.PartnerID,
		CrateTypeID: m.CrateTypeID,
		Direction:   string(m.Direction),
		Qty:         float64(m.Qty),
		Date:        m.Date,
		Note:        m.Note,
		DriverName:  m.DriverName,
		CreatedAt:   time.Now().UnixNano(),
	}

	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO movements (id, partner_id, crate_type_id, direction, qty, date, note, driver_name, created_at)
		 VALUES (:id, :partner_id, :crate_type_id, :direction, :qty, :date, :note, :driver_name, :created_at)`,
		row,
	)
	if err != nil {
		return nil, fmt.Errorf("creating movement: %w", err)
	}

	mv := row.movement()
	return &mv, nil
}

// DeleteMovement removes a movement.
func (s *SQLite) DeleteMovement(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM movements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting movement: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
