// Package sms computes the billable unit cost of outbound sends.
package sms

import "unicode/utf8"

// SegmentSize is the number of characters carried by one SMS unit.
const SegmentSize = 160

// Contact is the slice of a contact record the meter needs for
// personalized sends.
type Contact struct {
	FirstName string `json:"first_name"`
	Phone     string `json:"phone"`
}

// Segments returns the number of SMS segments needed for one message.
// An empty message still occupies one segment.
func Segments(message string) int64 {
	n := utf8.RuneCountInString(message)
	if n == 0 {
		return 1
	}
	return int64((n + SegmentSize - 1) / SegmentSize)
}

// CostSMS returns the unit cost of sending the same message to every
// recipient.
func CostSMS(message string, recipients int) int64 {
	return Segments(message) * int64(recipients)
}

// Render builds the personalized message sent to a single contact.
func Render(greeting, firstName, message string) string {
	return greeting + " " + firstName + ", " + message
}

// CostPersonalized returns the unit cost of a personalized send, costing each
// contact's rendered message independently.
func CostPersonalized(message, greeting string, contacts []Contact) int64 {
	var total int64
	for _, contact := range contacts {
		total += Segments(Render(greeting, contact.FirstName, message))
	}
	return total
}

// CostEmail returns the unit cost of an email send. Emails cost one unit per
// recipient regardless of length.
func CostEmail(recipients int) int64 {
	return int64(recipients)
}
