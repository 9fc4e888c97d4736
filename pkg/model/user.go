package model

import "time"

type User struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=1,max=255"`
	Email     string    `json:"email" bson:"email" validate:"required,email,max=512"`
	CreatedAt time.Time `json:"-" bson:"created_at"`
}

type UserUpdate struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Email *string `json:"email,omitempty" validate:"omitempty,email,max=512"`
}

func (u *UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil
}
