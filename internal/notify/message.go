// Package notify delivers appointment notices to customers.
package notify

import (
	"fmt"
	"strings"
	"time"
)

const (
	KindBooked      = "appointment.booked"
	KindCancelled   = "appointment.cancelled"
	KindRescheduled = "appointment.rescheduled"
)

const longLayout = "Monday, January 2, 2006 at 3:04 PM"

// Message is one customer notice. It doubles as the published event body.
type Message struct {
	Kind        string    `json:"kind"`
	OrderNumber string    `json:"orderNumber"`
	To          string    `json:"to"`
	CC          []string  `json:"cc,omitempty"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Slot        string    `json:"slot,omitempty"`
	Previous    string    `json:"previous,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

func bookedMessage(orderKey string, slot time.Time, email string) Message {
	when := slot.UTC().Format(longLayout)
	return Message{
		Kind:        KindBooked,
		OrderNumber: orderKey,
		To:          strings.TrimSpace(email),
		Subject:     fmt.Sprintf("Appointment Confirmation - Order %s", orderKey),
		Body: fmt.Sprintf("Your pickup appointment for order %s is confirmed for %s (UTC). "+
			"Please bring your order number when you arrive.", orderKey, when),
		Slot: slot.UTC().Format(time.RFC3339),
	}
}

func cancelledMessage(orderKey, date, timeOfDay, email string) Message {
	return Message{
		Kind:        KindCancelled,
		OrderNumber: orderKey,
		To:          strings.TrimSpace(email),
		Subject:     fmt.Sprintf("Appointment Cancelled - Order %s", orderKey),
		Body: fmt.Sprintf("Your pickup appointment for order %s on %s at %s has been cancelled. "+
			"You can book a new time at any point.", orderKey, date, timeOfDay),
		Previous: date + " " + timeOfDay,
	}
}

func rescheduledMessage(orderKey, oldDate, oldTime string, newSlot time.Time, email string) Message {
	return Message{
		Kind:        KindRescheduled,
		OrderNumber: orderKey,
		To:          strings.TrimSpace(email),
		Subject:     fmt.Sprintf("Appointment Rescheduled - Order %s", orderKey),
		Body: fmt.Sprintf("Your pickup appointment for order %s has moved from %s at %s to %s (UTC).",
			orderKey, oldDate, oldTime, newSlot.UTC().Format(longLayout)),
		Slot:     newSlot.UTC().Format(time.RFC3339),
		Previous: oldDate + " " + oldTime,
	}
}
