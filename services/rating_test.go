package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAverageRating(t *testing.T) {
	tests := []struct {
		name         string
		total, count int64
		want         float64
	}{
		{"no reviews", 0, 0, 0},
		{"single", 10, 1, 10},
		{"exact", 14, 2, 7},
		{"half", 17, 2, 8.5},
		{"thirds round up", 23, 3, 7.67},
		{"thirds round down", 19, 3, 6.33},
		{"half up at third decimal", 1, 8, 0.13},
		{"two thirds", 20, 3, 6.67},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, averageRating(tt.total, tt.count))
		})
	}
}
