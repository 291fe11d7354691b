package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/yukikurage/task-insights-api/internal/utils"
)

// DateTime is a request timestamp that accepts RFC3339, a zone-less
// 2006-01-02T15:04:05 or a plain 2006-01-02. Values without a zone are UTC.
type DateTime struct {
	time.Time
}

// UnmarshalJSON parses a JSON string through utils.ParseTime
func (d *DateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, err := utils.ParseTime(raw, time.UTC)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Ptr returns the wrapped time, or nil for a missing value
func (d *DateTime) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}
