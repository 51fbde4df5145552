package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChangeEvent is emitted after a committed mutation and delivered to every
// subscriber of the couple's table feed. Record and OldRecord hold domain
// values (*Rule, *Profile, ...); the transport decides their wire shape.
type ChangeEvent struct {
	Table     Table
	Type      ChangeType
	CoupleID  uuid.UUID
	Record    any
	OldRecord any
	Version   int64
	CommitAt  time.Time
}
