// internal/domain/review/entity.go
package review

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	UID        uuid.UUID  `json:"uid" db:"uid"`
	Rating     int        `json:"rating" db:"rating"`
	ReviewText string     `json:"review_text" db:"review_text"`
	UserUID    *uuid.UUID `json:"user_uid,omitempty" db:"user_uid"`
	BookUID    *uuid.UUID `json:"book_uid,omitempty" db:"book_uid"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}
