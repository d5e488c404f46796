package service

import "math"

// AverageRating is the mean rounded to one decimal place, or 0 without ratings.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	total := 0
	for _, r := range ratings {
		total += r
	}
	mean := float64(total) / float64(len(ratings))
	return math.Round(mean*10) / 10
}
