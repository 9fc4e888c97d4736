package model

import (
	"time"
)

// Booking is the persisted booking record. OwnerID copies the booked item's
// owner at creation time so owner-side queries need no join.
type Booking struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	ItemID    string    `json:"item_id" bson:"item_id"`
	OwnerID   string    `json:"owner_id" bson:"owner_id"`
	BookerID  string    `json:"booker_id" bson:"booker_id"`
	StartTime time.Time `json:"start" bson:"start_time"`
	EndTime   time.Time `json:"end" bson:"end_time"`
	Approved  *bool     `json:"approved" bson:"approved"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// BookingRequest is the body of POST /bookings.
type BookingRequest struct {
	ItemID    string    `json:"item_id" validate:"required,mongodb"`
	StartTime time.Time `json:"start" validate:"required"`
	EndTime   time.Time `json:"end" validate:"required"`
}

type BookingResponse struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start"`
	EndTime   time.Time `json:"end"`
	Status    string    `json:"status"`
	Item      ItemRef   `json:"item"`
	Booker    UserRef   `json:"booker"`
}

// BookingShort is the last/next booking summary attached to an item.
type BookingShort struct {
	ID        string    `json:"id"`
	BookerID  string    `json:"booker_id"`
	StartTime time.Time `json:"start"`
	EndTime   time.Time `json:"end"`
}

type ItemRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserRef struct {
	ID string `json:"id"`
}

func (b *Booking) Short() *BookingShort {
	if b == nil {
		return nil
	}
	return &BookingShort{
		ID:        b.ID,
		BookerID:  b.BookerID,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
	}
}
