package models

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicUser is a User without its password, used for exports and API responses
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Specialty: u.Specialty,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
	}
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=4"`
	Name      string `json:"name" validate:"notblank,max=200"`
	Specialty string `json:"specialty" validate:"max=200"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdate merges non-nil fields into a user's profile
type ProfileUpdate struct {
	Name      *string `json:"name,omitempty" validate:"omitnil,notblank,max=200"`
	Specialty *string `json:"specialty,omitempty" validate:"omitnil,max=200"`
	Phone     *string `json:"phone,omitempty" validate:"omitnil,phone"`
}
