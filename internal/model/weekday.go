package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayOfWeek uses ISO numbering: Monday=1 .. Sunday=7.
type DayOfWeek int

const (
	Monday DayOfWeek = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var (
	dayNames     = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	fullDayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
)

// AllDays lists the week in ISO order.
func AllDays() []DayOfWeek {
	return []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

func (d DayOfWeek) Valid() bool { return d >= Monday && d <= Sunday }

func (d DayOfWeek) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DayOfWeek(%d)", int(d))
	}
	return dayNames[d-1]
}

// ISODayOfWeek converts a Go weekday (Sunday=0) to ISO numbering.
func ISODayOfWeek(wd time.Weekday) DayOfWeek {
	if wd == time.Sunday {
		return Sunday
	}
	return DayOfWeek(wd)
}

// ParseDayOfWeek accepts ISO numbers ("1".."7"), English names and their
// prefixes of at least three letters ("mon", "Tues", "Monday").
func ParseDayOfWeek(raw string) (DayOfWeek, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, fmt.Errorf("empty weekday")
	}
	if n, err := strconv.Atoi(s); err == nil {
		d := DayOfWeek(n)
		if !d.Valid() {
			return 0, fmt.Errorf("weekday %d out of range 1..7", n)
		}
		return d, nil
	}
	if len(s) >= 3 {
		for i, name := range fullDayNames {
			if strings.HasPrefix(name, s) {
				return DayOfWeek(i + 1), nil
			}
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", raw)
}

// ParseDays splits a comma separated list like "mon,wed,5" and drops duplicates.
func ParseDays(raw string) ([]DayOfWeek, error) {
	seen := make(map[DayOfWeek]bool)
	var out []DayOfWeek
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d, err := ParseDayOfWeek(part)
		if err != nil {
			return nil, err
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out, nil
}
