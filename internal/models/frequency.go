package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

type FrequencyType string

const (
	FrequencyDaily        FrequencyType = "daily"
	FrequencySpecificDays FrequencyType = "specific_days"
	FrequencyTimesPerWeek FrequencyType = "times_per_week"
)

// Frequency describes how often a habit is expected. It is a closed set:
// Daily, SpecificDays and TimesPerWeek are the only implementations.
type Frequency interface {
	Type() FrequencyType
	isFrequency()
}

// Daily habits are due every day.
type Daily struct{}

// SpecificDays habits are due on the listed weekdays only.
type SpecificDays struct {
	Days []time.Weekday
}

// TimesPerWeek habits should be done Times times in a week, on any days.
type TimesPerWeek struct {
	Times int
}

func (Daily) Type() FrequencyType        { return FrequencyDaily }
func (SpecificDays) Type() FrequencyType { return FrequencySpecificDays }
func (TimesPerWeek) Type() FrequencyType { return FrequencyTimesPerWeek }

func (Daily) isFrequency()        {}
func (SpecificDays) isFrequency() {}
func (TimesPerWeek) isFrequency() {}

// Includes reports whether wd is one of the selected days.
func (s SpecificDays) Includes(wd time.Weekday) bool {
	for _, d := range s.Days {
		if d == wd {
			return true
		}
	}
	return false
}

type timesValue struct {
	Times int `json:"times"`
}

// EncodeFrequency converts a frequency into its wire pair (frequency_type, frequency_value).
// A nil frequency is encoded as daily.
func EncodeFrequency(f Frequency) (FrequencyType, json.RawMessage, error) {
	switch v := f.(type) {
	case nil, Daily:
		return FrequencyDaily, json.RawMessage("null"), nil
	case SpecificDays:
		days := make([]int, 0, len(v.Days))
		for _, d := range v.Days {
			days = append(days, int(d))
		}
		sort.Ints(days)
		raw, err := json.Marshal(days)
		if err != nil {
			return "", nil, err
		}
		return FrequencySpecificDays, raw, nil
	case TimesPerWeek:
		raw, err := json.Marshal(timesValue{Times: v.Times})
		if err != nil {
			return "", nil, err
		}
		return FrequencyTimesPerWeek, raw, nil
	default:
		return "", nil, fmt.Errorf("unknown frequency %T", f)
	}
}

// DecodeFrequency resolves the wire pair back into a Frequency variant.
// An empty type is treated as daily.
func DecodeFrequency(t FrequencyType, raw json.RawMessage) (Frequency, error) {
	switch t {
	case "", FrequencyDaily:
		return Daily{}, nil
	case FrequencySpecificDays:
		var days []int
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &days); err != nil {
				return nil, fmt.Errorf("invalid specific_days value: %w", err)
			}
		}
		out := SpecificDays{Days: make([]time.Weekday, 0, len(days))}
		for _, d := range days {
			if d < 0 || d > 6 {
				return nil, fmt.Errorf("invalid weekday %d in specific_days value", d)
			}
			out.Days = append(out.Days, time.Weekday(d))
		}
		return out, nil
	case FrequencyTimesPerWeek:
		var v timesValue
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, fmt.Errorf("invalid times_per_week value: %w", err)
			}
		}
		return TimesPerWeek{Times: v.Times}, nil
	default:
		return nil, fmt.Errorf("unknown frequency type %q", t)
	}
}
