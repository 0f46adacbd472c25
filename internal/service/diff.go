package service

import (
	"fmt"
	"strconv"

	"oms-customers/internal/models"
)

// diffCustomer lists the human-readable field transitions from old to updated,
// in form order. An empty result means nothing changed.
func diffCustomer(old, updated *models.Customer) []string {
	var changes []string
	add := func(label, from, to string) {
		if from != to {
			changes = append(changes, fmt.Sprintf("%s: '%s' → '%s'", label, from, to))
		}
	}

	add("Name", old.Name, updated.Name)
	if !equalOptional(old.Email, updated.Email) {
		add("Email", optionalText(old.Email), optionalText(updated.Email))
	}
	add("Phone", old.Phone, updated.Phone)
	if !equalOptional(old.Phone2, updated.Phone2) {
		add("Secondary Phone", optionalText(old.Phone2), optionalText(updated.Phone2))
	}
	add("Status", string(old.Status), string(updated.Status))
	add("Address Line 1", old.AddressLine1, updated.AddressLine1)
	add("Address Line 2", old.AddressLine2, updated.AddressLine2)
	add("City ID", strconv.FormatUint(uint64(old.CityID), 10), strconv.FormatUint(uint64(updated.CityID), 10))

	return changes
}

// equalOptional treats nil and "" as the same value.
func equalOptional(a, b *string) bool {
	return deref(a) == deref(b)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalText(s *string) string {
	if s == nil || *s == "" {
		return "NULL"
	}
	return *s
}
