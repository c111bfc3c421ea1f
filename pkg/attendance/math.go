// Package attendance provides the pure arithmetic used by dashboards,
// leaderboards, alerts and reports. All functions are stateless and
// deterministic over non-negative integer class counts.
package attendance

import (
	"math"

	appErrors "github.com/bunkmate/bunkmate-api/pkg/errors"
)

const (
	// DefaultThreshold is the minimum acceptable attendance percentage.
	DefaultThreshold = 75
	// WarningThreshold is the lower bound of the warning band.
	WarningThreshold = 70
)

// Band classifies an attendance percentage.
type Band string

const (
	StatusSafe     Band = "SAFE"
	StatusWarning  Band = "WARNING"
	StatusCritical Band = "CRITICAL"
)

// Percentage returns attended/total as a percentage rounded to two
// decimals. A total of zero yields 0 rather than a division error.
// attended > total is allowed and produces a value above 100.
func Percentage(attended, total int) (float64, error) {
	if err := validateCounts(attended, total); err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	return round2(float64(attended) / float64(total) * 100), nil
}

// ClassesNeeded returns the minimum number of additional consecutive
// classes that must be attended for the percentage to reach threshold.
// Already at or above threshold yields 0.
func ClassesNeeded(attended, total, threshold int) (int, error) {
	if err := validateCounts(attended, total); err != nil {
		return 0, err
	}
	if err := validateThreshold(threshold); err != nil {
		return 0, err
	}
	numerator := threshold*total - 100*attended
	if numerator <= 0 {
		return 0, nil
	}
	denominator := 100 - threshold
	return (numerator + denominator - 1) / denominator, nil
}

// BunkSlack returns the maximum number of additional classes that can be
// held without attending while the percentage stays at or above
// threshold. Below threshold already yields 0.
func BunkSlack(attended, total, threshold int) (int, error) {
	if err := validateCounts(attended, total); err != nil {
		return 0, err
	}
	if err := validateThreshold(threshold); err != nil {
		return 0, err
	}
	numerator := 100*attended - threshold*total
	if numerator < 0 {
		return 0, nil
	}
	return numerator / threshold, nil
}

// Status maps a percentage onto its band. Band lower bounds are
// inclusive: exactly safe is Safe, exactly warn is Warning.
func Status(percentage, safe, warn float64) Band {
	switch {
	case percentage >= safe:
		return StatusSafe
	case percentage >= warn:
		return StatusWarning
	default:
		return StatusCritical
	}
}

// Predict projects the percentage after classesToMiss further classes
// are held but not attended.
func Predict(attended, total, classesToMiss int) (float64, error) {
	if classesToMiss < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "classesToMiss must not be negative")
	}
	return Percentage(attended, total+classesToMiss)
}

func validateCounts(attended, total int) error {
	if total < 0 {
		return appErrors.Clone(appErrors.ErrValidation, "total must not be negative")
	}
	if attended < 0 {
		return appErrors.Clone(appErrors.ErrValidation, "attended must not be negative")
	}
	return nil
}

func validateThreshold(threshold int) error {
	if threshold <= 0 || threshold >= 100 {
		return appErrors.Clone(appErrors.ErrValidation, "threshold must be between 1 and 99")
	}
	return nil
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
