package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/haani-backend/pkg/enums"
)

// PayoutMethodSnapshot is a payee's payout method frozen at the moment a
// request was filed or a payout materialized. Later edits to the live method
// never change a snapshot.
type PayoutMethodSnapshot struct {
	MethodID      uuid.UUID              `json:"methodId"`
	Type          enums.PayoutMethodType `json:"type"`
	AccountHolder string                 `json:"accountHolder"`
	Institution   string                 `json:"institution,omitempty"`
	AccountNumber string                 `json:"accountNumber"`
	CapturedAt    time.Time              `json:"capturedAt"`
}

// IsZero reports whether the snapshot carries no method.
func (s PayoutMethodSnapshot) IsZero() bool {
	return s.MethodID == uuid.Nil && s.AccountNumber == ""
}

// Masked returns the account number with all but the last four characters hidden.
func (s PayoutMethodSnapshot) Masked() string {
	n := len(s.AccountNumber)
	if n <= 4 {
		return s.AccountNumber
	}
	return strings.Repeat("*", n-4) + s.AccountNumber[n-4:]
}

// Value implements driver.Valuer.
func (s PayoutMethodSnapshot) Value() (driver.Value, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (s *PayoutMethodSnapshot) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if data == nil {
		*s = PayoutMethodSnapshot{}
		return nil
	}
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("PayoutMethodSnapshot: %w", err)
	}
	return nil
}
