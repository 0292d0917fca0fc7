package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is an API account checked by HTTP Basic authentication.
type User struct {
	bun.BaseModel `bun:"table:auth.users,alias:u"`

	ID           uuid.UUID `bun:"type:uuid,default:gen_random_uuid(),pk"`
	Username     string    `bun:",unique,notnull"`
	PasswordHash string    `bun:",notnull"`
	Disabled     bool      `bun:",notnull,default:false"`

	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}
