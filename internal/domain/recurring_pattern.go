package domain

import (
	"errors"
	"time"

	"github.com/robfig/cron/v3"
)

// RecurringPattern-specific validation errors
var (
	// ErrPatternTypeInvalid is returned when a pattern type is not a known value.
	ErrPatternTypeInvalid = errors.New("invalid recurring pattern type")

	// ErrPatternIntervalInvalid is returned when a pattern interval is less than 1.
	ErrPatternIntervalInvalid = errors.New("recurring pattern interval must be at least 1")

	// ErrPatternCronMissing is returned when a custom pattern has no cron expression.
	ErrPatternCronMissing = errors.New("custom recurring pattern requires a cron expression")

	// ErrPatternCronInvalid is returned when a custom cron expression does not parse.
	ErrPatternCronInvalid = errors.New("invalid cron expression for custom recurring pattern")
)

// PatternType classifies how a recurring task repeats.
type PatternType string

// Valid recurring pattern types.
const (
	PatternDaily   PatternType = "daily"
	PatternWeekly  PatternType = "weekly"
	PatternMonthly PatternType = "monthly"
	PatternYearly  PatternType = "yearly"
	PatternCustom  PatternType = "custom"
)

// IsValid reports whether the pattern type is a known value.
func (p PatternType) IsValid() bool {
	switch p {
	case PatternDaily, PatternWeekly, PatternMonthly, PatternYearly, PatternCustom:
		return true
	}
	return false
}

// RecurringPattern describes how a recurring task repeats. A task references
// at most one pattern; a pattern may be shared by many tasks.
type RecurringPattern struct {
	ID          int64       `json:"id"`
	PatternType PatternType `json:"pattern_type"`
	Interval    int         `json:"interval"`
	EndDate     *time.Time  `json:"end_date,omitempty"`
	CustomCron  *string     `json:"custom_cron,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewRecurringPattern creates a new RecurringPattern and sets the
// creation/update timestamps. Returns an error if validation fails.
func NewRecurringPattern(
	patternType PatternType,
	interval int,
	endDate *time.Time,
	customCron *string,
) (*RecurringPattern, error) {
	now := time.Now().UTC()

	pattern := &RecurringPattern{
		PatternType: patternType,
		Interval:    interval,
		EndDate:     endDate,
		CustomCron:  customCron,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if pattern.Interval == 0 {
		pattern.Interval = 1
	}

	if err := pattern.Validate(); err != nil {
		return nil, err
	}

	return pattern, nil
}

// Validate checks if the RecurringPattern has valid data. Custom patterns
// must carry a parseable standard cron expression; the expression is only
// used when pattern_type is custom.
func (p *RecurringPattern) Validate() error {
	if !p.PatternType.IsValid() {
		return ErrPatternTypeInvalid
	}

	if p.Interval < 1 {
		return ErrPatternIntervalInvalid
	}

	if p.PatternType == PatternCustom {
		if p.CustomCron == nil || *p.CustomCron == "" {
			return ErrPatternCronMissing
		}
		if _, err := cron.ParseStandard(*p.CustomCron); err != nil {
			return ErrPatternCronInvalid
		}
	}

	return nil
}
