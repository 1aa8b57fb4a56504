package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type Category string

const (
	CategoryHarmful                Category = "Harmful"
	CategorySeverelyIncompatible   Category = "Severely Incompatible"
	CategoryModeratelyIncompatible Category = "Moderately Incompatible"
	CategoryMildlyIncompatible     Category = "Mildly Incompatible"
	CategoryNeutral                Category = "Neutral"
	CategoryMildlyCompatible       Category = "Mildly Compatible"
	CategoryHighlyCompatible       Category = "Highly Compatible"
	CategoryNecessary              Category = "Necessary"
)

const (
	MinScore = 0
	MaxScore = 100
)

type threshold struct {
	upper    int
	category Category
}

// Checked in order; the first upper bound >= score wins.
var thresholds = []threshold{
	{20, CategoryHarmful},
	{40, CategorySeverelyIncompatible},
	{50, CategoryModeratelyIncompatible},
	{60, CategoryMildlyIncompatible},
	{70, CategoryNeutral},
	{80, CategoryMildlyCompatible},
	{90, CategoryHighlyCompatible},
	{100, CategoryNecessary},
}

// Classify maps a score in [0,100] to its resonance category.
func Classify(score int) (Category, error) {
	if score < MinScore || score > MaxScore {
		return "", fmt.Errorf("%w: %d is outside %d..%d", ErrInvalidScore, score, MinScore, MaxScore)
	}
	for _, t := range thresholds {
		if score <= t.upper {
			return t.category, nil
		}
	}
	return "", fmt.Errorf("%w: %d", ErrInvalidScore, score)
}

// ParseScore parses operator input. Only whole numbers are accepted; "42.5" is
// rejected rather than truncated.
func ParseScore(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: score is empty", ErrInvalidScore)
	}
	score, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidScore, raw)
	}
	if _, err := Classify(score); err != nil {
		return 0, err
	}
	return score, nil
}

// Categories returns all labels from least to most compatible.
func Categories() []Category {
	out := make([]Category, len(thresholds))
	for i, t := range thresholds {
		out[i] = t.category
	}
	return out
}

// Rank is the ordinal of c in Categories, or -1 for an unknown label.
func (c Category) Rank() int {
	for i, t := range thresholds {
		if t.category == c {
			return i
		}
	}
	return -1
}

func (c Category) String() string {
	return string(c)
}
