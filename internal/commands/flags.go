package commands

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ pflag.Value = (*TimeFlag)(nil)

// timeLayouts are tried in order; layouts without a zone use Location
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// TimeFlag is an optional timestamp flag. It stays unset until Set is called.
type TimeFlag struct {
	value    *time.Time
	Location *time.Location
}

// String implements pflag.Value
func (f *TimeFlag) String() string {
	if f.value == nil {
		return ""
	}
	return f.value.Format(time.RFC3339)
}

// Set implements pflag.Value
func (f *TimeFlag) Set(s string) error {
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			f.value = &t
			return nil
		}
	}
	return fmt.Errorf("invalid time %q: use RFC3339 or YYYY-MM-DD", s)
}

// Type implements pflag.Value
func (f *TimeFlag) Type() string {
	return "time"
}

// Value returns the parsed time, nil when the flag was not given
func (f *TimeFlag) Value() *time.Time {
	return f.value
}
