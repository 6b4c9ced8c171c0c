package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tawidapp/tawid-backend/internal/models"
)

// ParseTimeLabel converts a "H:MM AM/PM" departure label into minutes since
// midnight. Unparsable labels fail explicitly instead of propagating a junk
// sort key.
func ParseTimeLabel(label string) (int, error) {
	parts := strings.Fields(strings.TrimSpace(label))
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time label %q", label)
	}

	modifier := strings.ToUpper(parts[1])
	if modifier != "AM" && modifier != "PM" {
		return 0, fmt.Errorf("invalid time label %q", label)
	}

	clock := strings.Split(parts[0], ":")
	if len(clock) != 2 {
		return 0, fmt.Errorf("invalid time label %q", label)
	}

	hours, err := strconv.Atoi(clock[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time label %q", label)
	}
	minutes, err := strconv.Atoi(clock[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time label %q", label)
	}

	if hours < 1 || hours > 12 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid time label %q", label)
	}

	if modifier == "PM" && hours != 12 {
		hours += 12
	}
	if modifier == "AM" && hours == 12 {
		hours = 0
	}

	return hours*60 + minutes, nil
}

// SortByDeparture returns a copy of records stably sorted by departure time.
// Records whose time label does not parse sort after all parsable ones, in
// their original relative order.
func SortByDeparture(records []models.ScheduleRecord) []models.ScheduleRecord {
	sorted := make([]models.ScheduleRecord, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		return departureKey(sorted[i]) < departureKey(sorted[j])
	})

	return sorted
}

func departureKey(r models.ScheduleRecord) int {
	minutes, err := ParseTimeLabel(r.Time)
	if err != nil {
		return 24 * 60
	}
	return minutes
}

// GroupByBoatType splits records into Fastcraft and RORO groups, preserving
// order, the way the passenger screen sections its list.
func GroupByBoatType(records []models.ScheduleRecord) (fastcraft, roro []models.ScheduleRecord) {
	fastcraft = []models.ScheduleRecord{}
	roro = []models.ScheduleRecord{}
	for _, r := range records {
		switch r.BoatType {
		case models.BoatTypeRORO:
			roro = append(roro, r)
		default:
			fastcraft = append(fastcraft, r)
		}
	}
	return fastcraft, roro
}
