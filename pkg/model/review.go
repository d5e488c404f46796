package model

import "time"

type Review struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	ListingID string    `json:"listing_id" bson:"listing_id"`
	Comment   string    `json:"comment" bson:"comment"`
	Rating    int       `json:"rating" bson:"rating"`
	Author    string    `json:"author" bson:"author"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type ReviewRequest struct {
	Comment string `json:"comment" validate:"required,min=1,max=2000"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
}
