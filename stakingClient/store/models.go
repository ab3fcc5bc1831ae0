// Package store contains GORM-backed SQLite models used by the token quest client.
//
// Database Structure (database file: journal.db):
//
//	databases/
//	└── journal.db
//	    └── submissions
package store

import (
	"database/sql/driver"
	"fmt"
	"strconv"

	"gorm.io/gorm"
)

// Submission statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
	StatusDryRun    = "dry_run"
)

// Submission records one attempt to run a program operation. A row is
// written before the transaction is sent and updated with the outcome, so an
// interrupted run leaves a pending row behind.
type Submission struct {
	gorm.Model
	Operation   string `gorm:"index;not null"` // Program instruction name, e.g. "deposit_sol"
	Asset       string // "sol" or the token mint
	Signer      string `gorm:"index;not null"` // Wallet that signed and paid
	Amount      Amount `gorm:"type:text"` // Deposit amount in lamports or token base units, 0 otherwise
	Signature   string `gorm:"index"`          // Transaction signature (empty until sent)
	Status      string `gorm:"index;not null"` // "pending", "confirmed", "failed", "dry_run"
	ProgramCode *int64 // Custom program error number when the program rejected the call
	ErrorMsg    string `gorm:"type:text"` // Error message if the submission failed
}

// TableName specifies the table name for Submission.
func (Submission) TableName() string {
	return "submissions"
}

// Amount is a u64 token amount stored as a decimal string, since
// database/sql rejects uint64 values above MaxInt64.
type Amount uint64

// Value implements driver.Valuer.
func (a Amount) Value() (driver.Value, error) {
	return strconv.FormatUint(uint64(a), 10), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = 0
		return nil
	case int64:
		if v < 0 {
			return fmt.Errorf("negative amount %d", v)
		}
		*a = Amount(v)
		return nil
	case string:
		return a.parse(v)
	case []byte:
		return a.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Amount", src)
	}
}

func (a *Amount) parse(s string) error {
	if s == "" {
		*a = 0
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	*a = Amount(n)
	return nil
}
