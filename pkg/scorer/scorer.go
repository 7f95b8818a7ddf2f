// Package scorer reads the score line at the top of an ATS or job match
// report and rates it.
package scorer

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind names the analysis a score came from.
type Kind string

const (
	// KindATS is an applicant tracking system compatibility score.
	KindATS Kind = "ats"
	// KindMatch is a job description match score.
	KindMatch Kind = "match"
)

// Rating buckets a score.
type Rating string

const (
	// RatingStrong needs no changes before applying.
	RatingStrong Rating = "strong"
	// RatingFair would benefit from the report's suggestions.
	RatingFair Rating = "fair"
	// RatingWeak needs work before applying.
	RatingWeak Rating = "weak"
)

// Thresholds are the lowest scores that earn each rating.
type Thresholds struct {
	Strong int
	Fair   int
}

// DefaultThresholds returns the thresholds used by Parse.
func DefaultThresholds() (t Thresholds) {
	t = Thresholds{
		Strong: 80,
		Fair:   60,
	}
	return t
}

// Score is the parsed score line of a report.
type Score struct {
	Kind   Kind
	Value  int
	Rating Rating
}

//nolint:gochecknoglobals // Compiled once
var scoreLine = regexp.MustCompile(`(?i)^\W*(ats|match)\s+score\W*\s*(\d{1,3})\s*%`)

// Parse finds the score line among the first lines of a report. ok is false
// when the report carries no score, e.g. when the model ignored the format.
func Parse(report string) (score Score, ok bool) {
	score, ok = ParseWith(report, DefaultThresholds())
	return score, ok
}

// ParseWith is Parse with custom thresholds.
func ParseWith(report string, t Thresholds) (score Score, ok bool) {
	lines := strings.SplitN(strings.TrimSpace(report), "\n", 4)
	for _, line := range lines {
		m := scoreLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		value, err := strconv.Atoi(m[2])
		if err != nil || value > 100 {
			continue
		}

		score = Score{
			Kind:   KindATS,
			Value:  value,
			Rating: t.Rate(value),
		}
		if strings.EqualFold(m[1], "match") {
			score.Kind = KindMatch
		}
		ok = true
		return score, ok
	}

	return score, ok
}

// Rate buckets value by the thresholds.
func (t Thresholds) Rate(value int) (rating Rating) {
	switch {
	case value >= t.Strong:
		rating = RatingStrong
	case value >= t.Fair:
		rating = RatingFair
	default:
		rating = RatingWeak
	}
	return rating
}
