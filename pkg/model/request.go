package model

import "time"

// ItemRequest is a user's ask for an item nobody lists yet. Owners answer it
// by creating an item carrying the request id.
type ItemRequest struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty"`
	Description string    `json:"description" bson:"description" validate:"required,min=1,max=2000"`
	RequesterID string    `json:"requester_id" bson:"requester_id"`
	CreatedAt   time.Time `json:"created" bson:"created_at"`
}

type ItemRequestResponse struct {
	ID          string       `json:"id"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"created"`
	Items       []*ItemReply `json:"items"`
}

type ItemReply struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	RequestID   string `json:"request_id"`
	OwnerID     string `json:"owner_id"`
}

func (r *ItemRequest) Response(items []*Item) *ItemRequestResponse {
	replies := make([]*ItemReply, 0, len(items))
	for _, it := range items {
		replies = append(replies, &ItemReply{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			Available:   it.IsAvailable(),
			RequestID:   it.RequestID,
			OwnerID:     it.OwnerID,
		})
	}
	return &ItemRequestResponse{
		ID:          r.ID,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		Items:       replies,
	}
}
