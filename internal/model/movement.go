package model

import "time"

// Direction of a movement as seen from the operation.
type Direction string

// Directions.
const (
	DirectionOut Direction = "out" // crates leave to the partner
	DirectionIn  Direction = "in"  // crates come back from the partner
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionOut || d == DirectionIn
}

// DateLayout is the calendar date format used for movement dates.
const DateLayout = "2006-01-02"

// Movement records crates going out to, or coming back from, a partner.
//
// Qty is a float64 so that corrupt stored values (NaN, infinities) survive a
// round trip; balance computation treats them as zero.
type Movement struct {
	ID          string    `json:"id"`
	PartnerID   string    `json:"partner_id"`
	CrateTypeID string    `json:"crate_type_id"`
	Direction   Direction `json:"direction"`
	Qty         float64   `json:"qty"`
	Date        string    `json:"date"`
	Note        string    `json:"note,omitempty"`
	DriverName  string    `json:"driver_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewMovement holds the caller-supplied fields of a movement; the store
// assigns ID and CreatedAt.
type NewMovement struct {
	PartnerID   string
	CrateTypeID string
	Direction   Direction
	Qty         int
	Date        string
	Note        string
	DriverName  string
}
