package dbtypes

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UUIDArray maps a Postgres uuid[] column. The array literal is also what the
// sqlite test schema stores, so both drivers share one codec.
type UUIDArray []uuid.UUID

func (a UUIDArray) Contains(id uuid.UUID) bool {
	for _, candidate := range a {
		if candidate == id {
			return true
		}
	}
	return false
}

func (a *UUIDArray) Scan(src any) error {
	var ids []uuid.UUID
	if err := (pq.GenericArray{A: &ids}).Scan(src); err != nil {
		return fmt.Errorf("scan uuid[]: %w", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	*a = ids
	return nil
}

func (a UUIDArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	return pq.GenericArray{A: []uuid.UUID(a)}.Value()
}
