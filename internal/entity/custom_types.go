package entity

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateOnly это календарная дата без времени суток (даты заезда и выезда)
type DateOnly struct {
	time.Time
}

const dateOnlyLayout = "2006-01-02"

func NewDateOnly(year int, month time.Month, day int) DateOnly {
	return DateOnly{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf обрезает время суток, оставляя только дату
func DateOf(t time.Time) DateOnly {
	y, m, d := t.Date()
	return NewDateOnly(y, m, d)
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid date: %s", string(b))
	}
	t, err := time.ParseInLocation(dateOnlyLayout, string(b[1:len(b)-1]), time.UTC)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateOnlyLayout) + `"`), nil
}

func (d DateOnly) Value() (driver.Value, error) {
	return d.Time, nil
}

func (d *DateOnly) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case time.Time:
		*d = DateOf(v)
	case []byte:
		t, err := time.ParseInLocation(dateOnlyLayout, string(v), time.UTC)
		if err != nil {
			return err
		}
		d.Time = t
	case string:
		t, err := time.ParseInLocation(dateOnlyLayout, v, time.UTC)
		if err != nil {
			return err
		}
		d.Time = t
	default:
		return fmt.Errorf("cannot scan type %T into DateOnly", value)
	}
	return nil
}

// Before сравнивает календарные даты
func (d DateOnly) Before(other DateOnly) bool {
	return d.Time.Before(other.Time)
}

func (d DateOnly) After(other DateOnly) bool {
	return d.Time.After(other.Time)
}

func (d DateOnly) String() string {
	return d.Format(dateOnlyLayout)
}
