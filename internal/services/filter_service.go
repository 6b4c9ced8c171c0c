package services

import (
	"strings"

	"github.com/tawidapp/tawid-backend/internal/models"
)

// ApplyFilters computes the ordered sublist of records matching the search
// text and filter configuration. Pure: same inputs always yield the same
// output, the input slice is never mutated and relative order is preserved.
//
// Clauses are AND'ed together; within a clause the accepted values are OR'ed.
// An empty set on a clause means no restriction. The price bound is always
// applied; at the default {0,1000} it is a no-op for realistic fares.
func ApplyFilters(records []models.ScheduleRecord, searchText string, filters models.FilterState) []models.ScheduleRecord {
	filtered := make([]models.ScheduleRecord, 0, len(records))
	for _, record := range records {
		if !matchesSearch(&record, searchText) {
			continue
		}
		if !matchesSet(string(record.BoatType), filters.BoatTypes) {
			continue
		}
		if !matchesSet(string(record.Status), filters.Statuses) {
			continue
		}
		if record.Price < filters.PriceRange.Min || record.Price > filters.PriceRange.Max {
			continue
		}
		if !matchesDays(&record, filters.Days) {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}

// matchesSearch does a case-insensitive substring match against boat name
// and route endpoints. The query is deliberately not trimmed; the client
// sends it verbatim.
func matchesSearch(record *models.ScheduleRecord, searchText string) bool {
	if searchText == "" {
		return true
	}
	query := strings.ToLower(searchText)
	return strings.Contains(strings.ToLower(record.BoatName), query) ||
		strings.Contains(strings.ToLower(record.From), query) ||
		strings.Contains(strings.ToLower(record.To), query)
}

func matchesSet(value string, accepted []string) bool {
	if len(accepted) == 0 {
		return true
	}
	for _, a := range accepted {
		if a == value {
			return true
		}
	}
	return false
}

// matchesDays accepts a record whose weekly schedule intersects the
// requested days. Empty request set matches everything.
func matchesDays(record *models.ScheduleRecord, days []string) bool {
	if len(days) == 0 {
		return true
	}
	for _, day := range days {
		if record.OperatesOn(day) {
			return true
		}
	}
	return false
}
