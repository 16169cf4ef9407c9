package domain

import (
	"database/sql/driver"

	"github.com/pgvector/pgvector-go"
)

// NullVector is a pgvector column that may be NULL. Absence is carried
// structurally (Valid=false) so "no embedding yet" is distinguishable
// from an all-zero vector.
type NullVector struct {
	Vector pgvector.Vector
	Valid  bool
}

// NewVector wraps a slice of float32 values as a present NullVector.
func NewVector(values []float32) NullVector {
	return NullVector{Vector: pgvector.NewVector(values), Valid: true}
}

// Scan implements sql.Scanner.
func (v *NullVector) Scan(src any) error {
	if src == nil {
		v.Valid = false
		v.Vector = pgvector.Vector{}
		return nil
	}
	if err := v.Vector.Scan(src); err != nil {
		return err
	}
	v.Valid = true
	return nil
}

// Value implements driver.Valuer.
func (v NullVector) Value() (driver.Value, error) {
	if !v.Valid {
		return nil, nil
	}
	return v.Vector.Value()
}

// Slice returns the raw values, or nil when absent.
func (v NullVector) Slice() []float32 {
	if !v.Valid {
		return nil
	}
	return v.Vector.Slice()
}
