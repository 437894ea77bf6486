package fields

import (
	"fmt"
	"strings"
	"time"
)

// Score is a rating on the API's 0..10 scale. The interface renders it as
// five stars worth two points each, so odd values are half stars.
type Score int

const MaxScore Score = 10

func (s Score) Valid() bool {
	return s >= 0 && s <= MaxScore
}

// FullStars reports how many of the five star positions render full.
func (s Score) FullStars() int {
	return int(s) / 2
}

func (s Score) HasHalfStar() bool {
	return int(s)%2 == 1
}

// Date is a calendar date without a time component, wired as "2006-01-02".
// The API sometimes ships full timestamps for the same fields, so both
// layouts are accepted on the way in.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.Local)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", d.Format(dateLayout))), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}
