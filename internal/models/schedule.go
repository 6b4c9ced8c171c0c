package models

import (
	"strconv"
	"strings"
	"time"
)

// BoatType represents the vessel category of a sailing
type BoatType string

const (
	BoatTypeFastcraft BoatType = "Fastcraft"
	BoatTypeRORO      BoatType = "RORO"
)

// ScheduleStatus represents whether a sailing is currently bookable
type ScheduleStatus string

const (
	StatusAvailable   ScheduleStatus = "Available"
	StatusUnavailable ScheduleStatus = "Unavailable"
)

// Weekdays is the fixed vocabulary for weekly_schedule entries
var Weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// ScheduleRecord represents a single sailing entry in the schedules collection
type ScheduleRecord struct {
	ID             string         `json:"id" db:"id"`
	BoatName       string         `json:"boatName" db:"boat_name"`
	From           string         `json:"from" db:"origin"`
	To             string         `json:"to" db:"destination"`
	Price          float64        `json:"price" db:"price"`
	Capacity       int            `json:"capacity" db:"capacity"`
	Time           string         `json:"time" db:"departure_time"`
	BoatType       BoatType       `json:"boatType" db:"boat_type"`
	Status         ScheduleStatus `json:"status" db:"status"`
	WeeklySchedule WeekdayArray   `json:"weeklySchedule" db:"weekly_schedule"`
	Note           *string        `json:"note,omitempty" db:"note"`
	UserID         string         `json:"userId" db:"user_id"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time      `json:"updatedAt" db:"updated_at"`
}

// ScheduleForm carries the raw string fields exactly as entered in the
// admin form. Validation runs on these before any numeric coercion so a
// non-numeric price still counts as "present" for the required-field check.
type ScheduleForm struct {
	BoatName       string   `json:"boatName"`
	From           string   `json:"from"`
	To             string   `json:"to"`
	Price          string   `json:"price"`
	Capacity       string   `json:"capacity"`
	Time           string   `json:"time"`
	BoatType       string   `json:"boatType"`
	Status         string   `json:"status"`
	WeeklySchedule []string `json:"weeklySchedule"`
	Note           string   `json:"note"`
}

// ScheduleDraft is a well-typed candidate record ready for the repository.
// It never carries id, userId or timestamps; the store assigns those.
type ScheduleDraft struct {
	BoatName       string
	From           string
	To             string
	Price          float64
	Capacity       int
	Time           string
	BoatType       BoatType
	Status         ScheduleStatus
	WeeklySchedule []string
	Note           *string
}

// Validate checks the required fields and the closed vocabularies.
// All-or-nothing: a form failing validation must not be submitted.
func (f *ScheduleForm) Validate() *ValidationError {
	missing := []string{}
	required := []struct {
		name  string
		value string
	}{
		{"boatName", f.BoatName},
		{"from", f.From},
		{"to", f.To},
		{"price", f.Price},
		{"time", f.Time},
		{"capacity", f.Capacity},
	}
	for _, field := range required {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{MissingFields: missing}
	}

	if f.BoatType != "" && !validBoatType(f.BoatType) {
		return &ValidationError{Reason: "invalid boatType: must be Fastcraft or RORO"}
	}
	if f.Status != "" && !validStatus(f.Status) {
		return &ValidationError{Reason: "invalid status: must be Available or Unavailable"}
	}
	for _, day := range f.WeeklySchedule {
		if !validWeekday(day) {
			return &ValidationError{Reason: "invalid weekday: " + day}
		}
	}

	return nil
}

// ToDraft coerces the raw form into a typed draft. Numeric fields follow the
// parse-or-zero rule the mobile client used; an empty note becomes absent so
// partial updates never clobber an existing note with a blank.
func (f *ScheduleForm) ToDraft() ScheduleDraft {
	draft := ScheduleDraft{
		BoatName:       f.BoatName,
		From:           f.From,
		To:             f.To,
		Price:          coerceNumber(f.Price),
		Capacity:       int(coerceNumber(f.Capacity)),
		Time:           f.Time,
		BoatType:       BoatTypeFastcraft,
		Status:         StatusAvailable,
		WeeklySchedule: f.WeeklySchedule,
	}
	if f.BoatType != "" {
		draft.BoatType = BoatType(f.BoatType)
	}
	if f.Status != "" {
		draft.Status = ScheduleStatus(f.Status)
	}
	if f.Note != "" {
		note := f.Note
		draft.Note = &note
	}
	if draft.WeeklySchedule == nil {
		draft.WeeklySchedule = []string{}
	}
	return draft
}

// coerceNumber mirrors Number(x) || 0: unparsable or negative-garbage input
// silently becomes zero rather than an error.
func coerceNumber(s string) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func validBoatType(s string) bool {
	t := BoatType(s)
	return t == BoatTypeFastcraft || t == BoatTypeRORO
}

func validStatus(s string) bool {
	st := ScheduleStatus(s)
	return st == StatusAvailable || st == StatusUnavailable
}

func validWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// OperatesOn reports whether the sailing runs on the given weekday
func (r *ScheduleRecord) OperatesOn(day string) bool {
	for _, d := range r.WeeklySchedule {
		if d == day {
			return true
		}
	}
	return false
}
