package model

type Item struct {
	ID          string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID     string `json:"owner_id,omitempty" bson:"owner_id"`
	Name        string `json:"name" bson:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" bson:"description" validate:"required,min=1,max=1000"`
	Available   *bool  `json:"available" bson:"available" validate:"required"`
	RequestID   string `json:"request_id,omitempty" bson:"request_id,omitempty" validate:"omitempty,mongodb"`
}

// IsAvailable treats a missing flag as unavailable.
func (i *Item) IsAvailable() bool {
	return i.Available != nil && *i.Available
}

type ItemUpdate struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,min=1,max=1000"`
	Available   *bool   `json:"available,omitempty"`
}

func (u *ItemUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Available == nil
}

type ItemResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Available   bool               `json:"available"`
	RequestID   string             `json:"request_id,omitempty"`
	LastBooking *BookingShort      `json:"last_booking"`
	NextBooking *BookingShort      `json:"next_booking"`
	Comments    []*CommentResponse `json:"comments"`
}

func (i *Item) Response() *ItemResponse {
	return &ItemResponse{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Available:   i.IsAvailable(),
		RequestID:   i.RequestID,
		Comments:    []*CommentResponse{},
	}
}
