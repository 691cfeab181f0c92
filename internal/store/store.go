// Package store persists partners, crate types, movements and session state.
package store

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/ladak/internal/model"
)

var (
	// ErrNotFound is returned when an update or delete targets a missing id.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert reuses an existing id.
	ErrDuplicate = errors.New("already exists")
	// ErrConfigMissing is returned when the backend cannot be opened because
	// its settings are absent.
	ErrConfigMissing = errors.New("store configuration missing")
)

// Lister reads the three ledger collections.
type Lister interface {
	ListPartners(ctx context.Context) ([]model.Partner, error)
	ListCrateTypes(ctx context.Context) ([]model.CrateType, error)
	ListMovements(ctx context.Context) ([]model.Movement, error)
}

// Store is the persistence backend. Every write is a single statement: it is
// applied entirely or not at all.
type Store interface {
	Lister

	// CreatePartner inserts p, assigning an id when p.ID is empty.
	CreatePartner(ctx context.Context, p model.Partner) (*model.Partner, error)
	UpdatePartner(ctx context.Context, id string, patch model.PartnerPatch) (*model.Partner, error)
	DeletePartner(ctx context.Context, id string) error

	CreateCrateType(ctx context.Context, c model.CrateType) (*model.CrateType, error)
	UpdateCrateType(ctx context.Context, id string, patch model.CrateTypePatch) (*model.CrateType, error)
	DeleteCrateType(ctx context.Context, id string) error
	SetCrateTypeImage(ctx context.Context, id string, data []byte, mime string) error
	// GetCrateTypeImage returns ErrNotFound when the crate type is missing or
	// has no image.
	GetCrateTypeImage(ctx context.Context, id string) ([]byte, string, error)

	// CreateMovement stores m with a fresh id and creation time.
	CreateMovement(ctx context.Context, m model.NewMovement) (*model.Movement, error)
	DeleteMovement(ctx context.Context, id string) error

	// JWTSecret returns the persisted token signing secret, creating it on
	// first use.
	JWTSecret(ctx context.Context) (string, error)
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)

	Close() error
}

// Snapshot is a consistent-enough view of the ledger for one request.
type Snapshot struct {
	Partners   []model.Partner
	CrateTypes []model.CrateType
	Movements  []model.Movement
}

// PartnersByID indexes the snapshot partners.
func (s *Snapshot) PartnersByID() map[string]model.Partner {
	return model.PartnersByID(s.Partners)
}

// CrateTypesByID indexes the snapshot crate types.
func (s *Snapshot) CrateTypesByID() map[string]model.CrateType {
	return model.CrateTypesByID(s.CrateTypes)
}

// LoadAll reads the three collections concurrently. Any failure fails the
// whole load.
func LoadAll(ctx context.Context, l Lister) (*Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		snap.Partners, err = l.ListPartners(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.CrateTypes, err = l.ListCrateTypes(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Movements, err = l.ListMovements(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}
