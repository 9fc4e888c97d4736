package model

import "time"

type Comment struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	ItemID    string    `json:"item_id" bson:"item_id"`
	AuthorID  string    `json:"author_id" bson:"author_id"`
	Text      string    `json:"text" bson:"text" validate:"required,min=1,max=2000"`
	CreatedAt time.Time `json:"created" bson:"created_at"`
}

type CommentResponse struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created"`
}
