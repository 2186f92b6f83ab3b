package user

import (
	"time"

	"github.com/oapi-codegen/nullable"
)

const dateLayout = "2006-01-02"

// CreateUserRequest represents the request body for registering a user profile
type CreateUserRequest struct {
	Name       string  `json:"name" validate:"required,min=1,max=50"`
	Email      string  `json:"email" validate:"required,email,max=255"`
	Birthday   *string `json:"birthday,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CityID     *int64  `json:"city_id,omitempty" validate:"omitempty,gt=0"`
	CategoryID int64   `json:"category_id" validate:"required,gt=0"`
}

// PatchUserRequest represents a partial update. Omitted fields are unchanged;
// null clears birthday and city_id and is rejected for the rest.
type PatchUserRequest struct {
	Name       nullable.Nullable[string] `json:"name" swaggertype:"string"`
	Email      nullable.Nullable[string] `json:"email" swaggertype:"string"`
	Birthday   nullable.Nullable[string] `json:"birthday" swaggertype:"string"`
	CityID     nullable.Nullable[int64]  `json:"city_id" swaggertype:"integer"`
	CategoryID nullable.Nullable[int64]  `json:"category_id" swaggertype:"integer"`
}

// UserResponse represents the response for a single user
type UserResponse struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Birthday   *string `json:"birthday"`
	CityID     *int64  `json:"city_id"`
	CategoryID int64   `json:"category_id"`
	CreatedAt  string  `json:"created_at"`
}

// ToResponse converts a User model to a UserResponse DTO
func (u *User) ToResponse() *UserResponse {
	var birthday *string
	if u.Birthday != nil {
		b := u.Birthday.Format(dateLayout)
		birthday = &b
	}
	return &UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Birthday:   birthday,
		CityID:     u.CityID,
		CategoryID: u.CategoryID,
		CreatedAt:  u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
