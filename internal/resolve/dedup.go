package resolve

import (
	"strings"

	"github.com/foodkaki/makanbot/internal/models"
)

// Dedup merges candidate lists, keeping first-seen order. Two entries are
// the same place when their ids match or when any of map link, name, or
// address match (both sides non-empty) — this catches both id duplicates
// and externally sourced records of the same restaurant.
func Dedup(lists ...[]models.Place) []models.Place {
	var merged []models.Place
	for _, list := range lists {
		for _, p := range list {
			if !containsPlace(merged, p) {
				merged = append(merged, p)
			}
		}
	}
	return merged
}

func containsPlace(have []models.Place, p models.Place) bool {
	for _, h := range have {
		if samePlace(h, p) {
			return true
		}
	}
	return false
}

func samePlace(a, b models.Place) bool {
	if a.ID != 0 && a.ID == b.ID {
		return true
	}
	if fieldMatch(a.MapLink, b.MapLink) {
		return true
	}
	if fieldMatch(a.Name, b.Name) {
		return true
	}
	if fieldMatch(a.Address, b.Address) {
		return true
	}
	return false
}

// fieldMatch compares two identity fields, ignoring case and surrounding
// whitespace. Empty fields never match anything.
func fieldMatch(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}
