package model

import "time"

const (
	CategoryBeach        = "Beach"
	CategoryMountains    = "Mountains"
	CategoryTrending     = "Trending"
	CategoryIconicCities = "Iconic Cities"
	CategoryRooms        = "Rooms"
	CategoryCastles      = "Castles"
	CategoryArctic       = "Arctic"
	CategoryLuxe         = "Luxe"
	CategoryFarms        = "Farms"
	CategoryCamping      = "Camping"
	CategoryBoats        = "Boats"
	CategoryDomes        = "Domes"
	CategoryTreeHouse    = "Tree House"
)

var Categories = []string{
	CategoryBeach, CategoryMountains, CategoryTrending, CategoryIconicCities,
	CategoryRooms, CategoryCastles, CategoryArctic, CategoryLuxe, CategoryFarms,
	CategoryCamping, CategoryBoats, CategoryDomes, CategoryTreeHouse,
}

func IsValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Image struct {
	URL      string `json:"url" bson:"url" validate:"omitempty,url,max=2048"`
	Filename string `json:"filename" bson:"filename" validate:"omitempty,max=255"`
}

// Geometry is a GeoJSON point; Coordinates are [longitude, latitude].
type Geometry struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

func NewPoint(lon, lat float64) *Geometry {
	return &Geometry{Type: "Point", Coordinates: []float64{lon, lat}}
}

type Listing struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Image       *Image    `json:"image,omitempty" bson:"image,omitempty"`
	Price       float64   `json:"price" bson:"price"`
	Location    string    `json:"location" bson:"location"`
	Country     string    `json:"country" bson:"country"`
	Category    string    `json:"category" bson:"category"`
	Owner       string    `json:"owner" bson:"owner"`
	Reviews     []string  `json:"reviews" bson:"reviews"`
	Geometry    *Geometry `json:"geometry,omitempty" bson:"geometry,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

type ListingRequest struct {
	Title       string  `json:"title" validate:"required,min=2,max=120"`
	Description string  `json:"description" validate:"required,min=1,max=5000"`
	Image       *Image  `json:"image,omitempty" validate:"omitempty"`
	Price       float64 `json:"price" validate:"gte=0,lte=10000000"`
	Location    string  `json:"location" validate:"required,min=1,max=200"`
	Country     string  `json:"country" validate:"required,min=1,max=100"`
	Category    string  `json:"category" validate:"required,listing_category"`
}

type ListingUpdate struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=2,max=120"`
	Description *string  `json:"description,omitempty" validate:"omitempty,min=1,max=5000"`
	Image       *Image   `json:"image,omitempty" validate:"omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0,lte=10000000"`
	Location    *string  `json:"location,omitempty" validate:"omitempty,min=1,max=200"`
	Country     *string  `json:"country,omitempty" validate:"omitempty,min=1,max=100"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,listing_category"`
}

func (u *ListingUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Image == nil && u.Price == nil &&
		u.Location == nil && u.Country == nil && u.Category == nil
}

type ListingFilter struct {
	Category string
	Search   string
	Limit    int
}

type ListingSummary struct {
	Listing
	AverageRating float64 `json:"average_rating"`
}

type ListingDetail struct {
	Listing
	ReviewDocs    []Review      `json:"review_docs"`
	BookedRanges  []BookedRange `json:"booked_ranges"`
	AverageRating float64       `json:"average_rating"`
}
