// Package distress classifies a user's expressed emotional state into a
// coarse distress level used to pick a support-resource category.
package distress

import (
	"math"
	"strings"
)

type Level string

const (
	None     Level = "none"
	Mild     Level = "mild"
	Moderate Level = "moderate"
	Crisis   Level = "crisis"
)

// Fallback is used whenever a classification cannot be trusted.
const Fallback = Mild

// Levels lists every level from least to most severe.
var Levels = []Level{None, Mild, Moderate, Crisis}

func (l Level) String() string { return string(l) }

// Severity orders levels: none=0 < mild < moderate < crisis=3. Unknown is -1.
func (l Level) Severity() int {
	for i, v := range Levels {
		if v == l {
			return i
		}
	}
	return -1
}

// ParseLevel matches s against the level names after trimming and lower-casing.
func ParseLevel(s string) (Level, bool) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if l.Severity() < 0 {
		return "", false
	}
	return l, true
}

// Sentiment valence boundaries. Each range is closed on its upper side:
// exactly -0.60 is moderate, exactly -0.25 is mild, exactly 0 is none.
const (
	crisisBelow   = -0.60
	moderateBelow = -0.25
	mildBelow     = 0.0
)

// FromScore maps a sentiment valence to a level. NaN maps to Fallback.
func FromScore(score float64) Level {
	switch {
	case math.IsNaN(score):
		return Fallback
	case score < crisisBelow:
		return Crisis
	case score < moderateBelow:
		return Moderate
	case score < mildBelow:
		return Mild
	default:
		return None
	}
}
