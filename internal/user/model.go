package user

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/fkhayef/meetup/internal/authz"
)

// User represents a user in the system. Deleted users keep their row with DeletedAt set.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID         int64      `bun:"id,pk,autoincrement"`
	Name       string     `bun:"name,notnull"`
	Email      string     `bun:"email,notnull"`
	Birthday   *time.Time `bun:"birthday,type:date"`
	CityID     *int64     `bun:"city_id"`
	CategoryID int64      `bun:"category_id,notnull"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	DeletedAt  *time.Time `bun:"deleted_at"`
}

// Holder implements authz.Resource: a user owns their own account
func (u *User) Holder(role authz.Role) (int64, bool) {
	if role == authz.AccountOwner {
		return u.ID, true
	}
	return 0, false
}
