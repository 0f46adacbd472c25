package handlers

import (
	"strconv"
	"strings"

	"oms-customers/internal/models"
)

// customerForm is the raw update submission; every field arrives as text.
type customerForm struct {
	CustomerID   string `form:"customer_id"`
	Name         string `form:"name"`
	Email        string `form:"email"`
	Phone        string `form:"phone"`
	Phone2       string `form:"phone2"`
	Status       string `form:"status"`
	AddressLine1 string `form:"address_line1"`
	AddressLine2 string `form:"address_line2"`
	CityID       string `form:"city_id"`
}

// normalize trims text, coerces numbers and turns blank optional fields into nil.
func (f customerForm) normalize() models.CustomerInput {
	return models.CustomerInput{
		ID:           coerceInt(f.CustomerID),
		Name:         strings.TrimSpace(f.Name),
		Email:        optional(f.Email),
		Phone:        strings.TrimSpace(f.Phone),
		Phone2:       optional(f.Phone2),
		Status:       models.ParseCustomerStatus(strings.TrimSpace(f.Status)),
		AddressLine1: strings.TrimSpace(f.AddressLine1),
		AddressLine2: strings.TrimSpace(f.AddressLine2),
		CityID:       coerceInt(f.CityID),
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// coerceInt reads the leading integer of s ("12abc" -> 12); anything else is 0.
func coerceInt(s string) int64 {
	s = strings.TrimSpace(s)

	end := 0
	if end < len(s) && (s[0] == '-' || s[0] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
