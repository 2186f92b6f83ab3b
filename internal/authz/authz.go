// Package authz checks that a caller holds a role on a resource.
package authz

import "github.com/fkhayef/meetup/pkg/apperror"

// Role is a capability a single user holds on a resource
type Role int

const (
	ClubLead Role = iota
	EventHost
	ReviewAuthor
	AccountOwner
)

func (r Role) String() string {
	switch r {
	case ClubLead:
		return "club lead"
	case EventHost:
		return "event host"
	case ReviewAuthor:
		return "review author"
	case AccountOwner:
		return "account owner"
	default:
		return "unknown role"
	}
}

// Resource reports which user holds a role on it
type Resource interface {
	Holder(role Role) (userID int64, ok bool)
}

// Require returns a Forbidden error unless userID holds role on res
func Require(res Resource, role Role, userID int64) error {
	if Holds(res, role, userID) {
		return nil
	}
	return apperror.Forbidden("only the " + role.String() + " can perform this action")
}

// Holds reports whether userID holds role on res
func Holds(res Resource, role Role, userID int64) bool {
	if res == nil {
		return false
	}
	holder, ok := res.Holder(role)
	return ok && holder == userID
}
