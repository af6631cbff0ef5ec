package models

import (
	"strings"
	"time"
)

// Base holds the fields shared by every ordered content entity
type Base struct {
	ID        string    `json:"id"`
	Order     int       `json:"order" validate:"gte=0"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Meta gives generic code access to the shared fields
func (b *Base) Meta() *Base {
	return b
}

// Date accepts either a calendar date (2006-01-02) or an RFC3339 timestamp
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ParseDate parses a calendar date or an RFC3339 timestamp
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
