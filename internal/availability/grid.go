package availability

import (
	"iter"
	"slices"

	"github.com/navikt/roomboard/internal/models"
)

// Bounds of the grid shared by every room. The last slot starts at 17:30.
const (
	GridStart Clock = 8 * 60
	GridEnd   Clock = 18 * 60
)

// SlotGrid yields the bookable slot labels of a day in ascending order.
// The sequence can be ranged over any number of times.
func SlotGrid() iter.Seq[string] {
	return func(yield func(string) bool) {
		for c := GridStart; c < GridEnd; c = c.Add(models.SlotMinutes) {
			if !yield(c.String()) {
				return
			}
		}
	}
}

// SlotLabels returns the whole grid as a slice
func SlotLabels() []string {
	return slices.Collect(SlotGrid())
}

// OnGrid reports whether label is one of the grid's slot starts
func OnGrid(label string) bool {
	c, err := ParseClock(label)
	if err != nil {
		return false
	}
	return c >= GridStart && c < GridEnd && (c-GridStart)%models.SlotMinutes == 0
}
