package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the internal identity a processor-side customer resolves to.
// Resolution happens by email match; events for unresolvable customers
// are dropped before risk scoring.
type User struct {
	Id        uuid.UUID
	Email     string
	FullName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
