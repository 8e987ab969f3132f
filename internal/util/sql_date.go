package util

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day stored as a YYYY-MM-DD string.
type Date time.Time

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func ParseDate(str string) (Date, error) {
	t, err := time.Parse(dateLayout, str)
	if err != nil {
		return Date{}, ErrPublic(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", str))
	}

	return Date(t), nil
}

func (d Date) Time() time.Time {
	return time.Time(d)
}

func (d Date) IsZero() bool {
	return d.Time().IsZero()
}

func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

func (d Date) Value() (driver.Value, error) {
	return driver.Value(d.String()), nil
}

func (d *Date) Scan(src interface{}) error {
	var str string
	switch src := src.(type) {
	case []byte:
		str = string(src)
	case string:
		str = src
	case time.Time:
		*d = NewDate(src)
		return nil
	default:
		return fmt.Errorf("expected []byte or string, got %T", src)
	}

	tmp, err := time.Parse(dateLayout, str)
	if err != nil {
		return err
	}

	*d = Date(tmp)
	return nil
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	tmp, err := ParseDate(string(b))
	if err != nil {
		return err
	}

	*d = tmp
	return nil
}
