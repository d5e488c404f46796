package model

import "time"

type User struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	Username  string    `json:"username" bson:"username"`
	Email     string    `json:"email" bson:"email"`
	Wishlist  []string  `json:"wishlist" bson:"wishlist"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Credentials are kept apart from User so that nothing reading profiles ever
// loads a password hash. ID is the owning user's id.
type Credentials struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	PasswordHash []byte    `bson:"password_hash"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=30"`
	Password string `json:"password" validate:"required,max=72"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

type Dashboard struct {
	MyListings []Listing            `json:"my_listings"`
	MyBookings []BookingWithListing `json:"my_bookings"`
	Wishlist   []Listing            `json:"wishlist"`
}

type WishlistState struct {
	ListingID  string `json:"listing_id"`
	Wishlisted bool   `json:"wishlisted"`
}
