package readability

import (
	"fmt"
	"math"
)

// Band labels.
const (
	BandKindergarten = "Kindergarten"
	BandCollege      = "College"
	BandPostGraduate = "Post-graduate"
	BandUnavailable  = "No score available"
)

// Band maps a grade level to a human-readable label. Grades between 1 and 12
// map to a "floor-ceil grade" range; a whole-number grade such as 7.0 yields
// "7-7 grade".
func Band(gradeLevel float64) string {
	switch {
	case math.IsNaN(gradeLevel) || math.IsInf(gradeLevel, 0):
		return BandUnavailable
	case gradeLevel < 1:
		return BandKindergarten
	case gradeLevel > 16:
		return BandPostGraduate
	case gradeLevel > 12:
		return BandCollege
	}
	return fmt.Sprintf("%d-%d grade", int(math.Floor(gradeLevel)), int(math.Ceil(gradeLevel)))
}
