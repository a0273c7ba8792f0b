// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

/*
Package checkout validates the checkout form and drives the simulated payment
sequence that turns a cart into an order.

The payment itself is a fixed delay. What matters is what happens after it:
every DIGITAL line is granted to the shopper's library, then the cart is
cleared and the flow reaches its terminal OrderComplete phase.
*/
package checkout

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dentuss/Bazinga-Comics/internal/platform/apperr"
	"github.com/dentuss/Bazinga-Comics/internal/platform/validate"
)

// Field names, as used in validation details.
const (
	FieldFirstName  = "firstName"
	FieldLastName   = "lastName"
	FieldEmail      = "email"
	FieldAddress    = "address"
	FieldCity       = "city"
	FieldZip        = "zip"
	FieldCardNumber = "cardNumber"
	FieldExpiry     = "expiry"
	FieldCVV        = "cvv"
)

// Format messages shown under the payment fields.
const (
	MsgCardNumber = "Card number must be 16 digits."
	MsgExpiry     = "Use MM/YY with a valid date."
	MsgCVV        = "CVV must be 3 digits."
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)
	cvvPattern        = regexp.MustCompile(`^\d{3}$`)
)

// Form is the shipping and payment input.
type Form struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Zip        string `json:"zip"`
	CardNumber string `json:"cardNumber"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

// Check is the outcome of each form rule.
type Check struct {
	FieldsFilled    bool
	CardNumberValid bool
	ExpiryValid     bool
	CVVValid        bool
}

// Valid reports whether the form may be submitted.
func (c Check) Valid() bool {
	return c.FieldsFilled && c.CardNumberValid && c.ExpiryValid && c.CVVValid
}

// fields lists every input in display order.
func (f Form) fields() []struct{ name, value string } {
	return []struct{ name, value string }{
		{FieldFirstName, f.FirstName},
		{FieldLastName, f.LastName},
		{FieldEmail, f.Email},
		{FieldAddress, f.Address},
		{FieldCity, f.City},
		{FieldZip, f.Zip},
		{FieldCardNumber, f.CardNumber},
		{FieldExpiry, f.Expiry},
		{FieldCVV, f.CVV},
	}
}

// Check evaluates the form against the month containing now.
func (f Form) Check(now time.Time) Check {
	filled := true
	for _, field := range f.fields() {
		if strings.TrimSpace(field.value) == "" {
			filled = false
			break
		}
	}

	return Check{
		FieldsFilled:    filled,
		CardNumberValid: cardNumberPattern.MatchString(strings.TrimSpace(f.CardNumber)),
		ExpiryValid:     ExpiryValid(f.Expiry, now),
		CVVValid:        cvvPattern.MatchString(strings.TrimSpace(f.CVV)),
	}
}

/*
Validate returns a VALIDATION_ERROR listing every failing field, or nil.

A blank field reports only that it is required; the format rules apply to
fields that have a value.
*/
func (f Form) Validate(now time.Time) error {
	validator := &validate.Validator{}
	for _, field := range f.fields() {
		validator.Required(field.name, field.value)
	}

	if !validator.Failed(FieldCardNumber) {
		validator.Pattern(FieldCardNumber, strings.TrimSpace(f.CardNumber), cardNumberPattern, MsgCardNumber)
	}
	if !validator.Failed(FieldExpiry) {
		validator.Custom(FieldExpiry, !ExpiryValid(f.Expiry, now), MsgExpiry)
	}
	if !validator.Failed(FieldCVV) {
		validator.Pattern(FieldCVV, strings.TrimSpace(f.CVV), cvvPattern, MsgCVV)
	}

	return validator.Err()
}

// ExpiryValid reports whether raw is an MM/YY date (year 20YY) that is not
// before the year and month of now. A card expiring this month is valid.
func ExpiryValid(raw string, now time.Time) bool {
	match := expiryPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return false
	}

	month, _ := strconv.Atoi(match[1])
	year, _ := strconv.Atoi(match[2])
	year += 2000

	if year != now.Year() {
		return year > now.Year()
	}
	return month >= int(now.Month())
}

// fieldMessages flattens a validation error for display.
func fieldMessages(err error) map[string]string {
	ae := apperr.As(err)
	if ae == nil {
		return nil
	}
	messages := make(map[string]string, len(ae.Details))
	for _, detail := range ae.Details {
		if _, seen := messages[detail.Field]; !seen {
			messages[detail.Field] = detail.Message
		}
	}
	return messages
}
