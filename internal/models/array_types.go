package models

import (
	"database/sql/driver"

	"github.com/lib/pq"
)

// WeekdayArray is a custom type for handling TEXT[] weekday columns in PostgreSQL
type WeekdayArray []string

// Value implements the driver.Valuer interface
func (a WeekdayArray) Value() (driver.Value, error) {
	if a == nil {
		return pq.Array([]string{}).Value()
	}
	return pq.Array([]string(a)).Value()
}

// Scan implements the sql.Scanner interface
func (a *WeekdayArray) Scan(src interface{}) error {
	if src == nil {
		*a = WeekdayArray{}
		return nil
	}
	slice := (*[]string)(a)
	return pq.Array(slice).Scan(src)
}
