package review

import (
	"math"

	"github.com/stayfinder/listing_reviews/internal/domain"
)

// RatingSummary holds the derived statistics over a listing's review set
type RatingSummary struct {
	Count         int     `json:"count"`
	AverageRating float64 `json:"average_rating"`
}

// Aggregate computes count and mean rating over the given reviews, with
// the mean rounded to one fraction digit. It is recomputed from the
// review set on every read; nothing is stored. An empty set yields
// {0, 0.0} rather than a division by zero.
func Aggregate(reviews []*domain.ReviewWithAuthor) RatingSummary {
	if len(reviews) == 0 {
		return RatingSummary{Count: 0, AverageRating: 0.0}
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}

	avg := float64(sum) / float64(len(reviews))

	return RatingSummary{
		Count:         len(reviews),
		AverageRating: math.Round(avg*10) / 10,
	}
}
