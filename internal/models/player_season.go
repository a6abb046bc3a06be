package models

import (
	"time"

	"github.com/google/uuid"
)

// PlayerShotRecord represents one player-season of three-point shooting
type PlayerShotRecord struct {
	ID        uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	Player    string    `db:"player" json:"player" validate:"required"`
	Season    string    `db:"season" json:"season" validate:"required"`
	Attempts  int       `db:"attempts" json:"attempts" validate:"gte=0"`
	Made      int       `db:"made" json:"made" validate:"gte=0"`
	Pct       float64   `db:"pct" json:"pct"`
	Source    string    `db:"source" json:"source,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Missed returns the derived miss count
func (r *PlayerShotRecord) Missed() int {
	return r.Attempts - r.Made
}

// RawPct returns made/attempts, or 0 when no attempts were taken
func (r *PlayerShotRecord) RawPct() float64 {
	if r.Attempts == 0 {
		return 0
	}
	return float64(r.Made) / float64(r.Attempts)
}

// Validate checks the record's count invariants
func (r *PlayerShotRecord) Validate() error {
	if r.Attempts < 0 || r.Made < 0 {
		return ErrInvalidRecord
	}
	if r.Made > r.Attempts {
		return ErrInvalidRecord
	}
	return nil
}
