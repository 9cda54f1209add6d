package user

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"time"
)

// User is the single entity managed by this service. DateOfBirth travels as
// "YYYY-MM-DD" on the wire and lives in a DATE column.
type User struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	DateOfBirth Date   `json:"dateOfBirth"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
}

// emailPattern is the legacy email constraint, anchored so partial matches
// don't slip through.
var emailPattern = regexp.MustCompile("^[A-Za-z0-9!#$%&'*+/=?^_`{|}~-]+(?:\\.[A-Za-z0-9!#$%&'*+/=?^_`{|}~-]+)*@(?:[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?\\.)+[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?$")

// Validate checks the field-level constraints against the given current
// time. Violations are aggregated into a single ValidationError rather than
// failing on the first one.
func (u User) Validate(now time.Time) error {
	var violations []string
	if u.FirstName == "" {
		violations = append(violations, "Can't be empty")
	}
	if u.LastName == "" {
		violations = append(violations, "Can't be empty")
	}
	if !emailPattern.MatchString(u.Email) {
		violations = append(violations, "Invalid email")
	}
	if u.DateOfBirth.IsZero() || !u.DateOfBirth.Time.Before(truncateToDay(now)) {
		violations = append(violations, "Date of birth must be less than today")
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

const dateLayout = "2006-01-02"

// Date is a calendar day with no time component, normalized to midnight UTC.
type Date struct {
	time.Time
}

// NewDate builds a Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the date as a time.Time so the driver writes a DATE.
func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
