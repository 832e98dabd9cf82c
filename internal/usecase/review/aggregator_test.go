package review

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stayfinder/listing_reviews/internal/domain"
)

func withRatings(ratings ...int) []*domain.ReviewWithAuthor {
	reviews := make([]*domain.ReviewWithAuthor, 0, len(ratings))
	for _, r := range ratings {
		reviews = append(reviews, &domain.ReviewWithAuthor{Review: domain.Review{Rating: r}})
	}
	return reviews
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		count   int
		average float64
	}{
		{name: "empty set", ratings: nil, count: 0, average: 0.0},
		{name: "single review", ratings: []int{5}, count: 1, average: 5.0},
		{name: "rounds up", ratings: []int{4, 5, 5}, count: 3, average: 4.7},
		{name: "rounds down", ratings: []int{4, 4, 5}, count: 3, average: 4.3},
		{name: "half rounds away from zero", ratings: []int{1, 2}, count: 2, average: 1.5},
		{name: "repeating fraction", ratings: []int{1, 1, 2}, count: 3, average: 1.3},
		{name: "exact mean", ratings: []int{2, 4}, count: 2, average: 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := Aggregate(withRatings(tt.ratings...))
			assert.Equal(t, tt.count, summary.Count)
			assert.Equal(t, tt.average, summary.AverageRating)
		})
	}
}
