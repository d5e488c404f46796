package model

// Recommendation mirrors one item returned by the recommendation engine.
type Recommendation struct {
	ID         string  `json:"_id"`
	Title      string  `json:"title"`
	Location   string  `json:"location"`
	Price      float64 `json:"price"`
	Image      *Image  `json:"image,omitempty"`
	MatchScore float64 `json:"matchScore"`
	Reason     string  `json:"reason"`
}
