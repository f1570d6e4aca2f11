package appointment

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrOrderNotFound       = errors.New("order not found or not ready for pickup yet")
	ErrOrderNotReady       = errors.New("order is not ready for pickup yet")
	ErrAlreadyPickedUp     = errors.New("order has already been picked up, no appointment needed")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrAlreadyBooked       = errors.New("order already has a scheduled appointment")
	ErrSlotContended       = errors.New("time slot is currently being booked by another customer")
	ErrSlotUnavailable     = errors.New("time slot is no longer available")
	ErrStoreUnavailable    = errors.New("record store unavailable")
	ErrMalformedRecord     = errors.New("malformed record")
)

// RecordStore is the whole-file view of the order and appointment sheets.
// There is no partial update: callers read a snapshot and replace it whole.
type RecordStore interface {
	FetchOrders(ctx context.Context) ([]OrderRecord, error)
	// FetchAppointments returns an empty list when the file does not exist yet.
	FetchAppointments(ctx context.Context) ([]AppointmentRecord, error)
	ReplaceAppointments(ctx context.Context, appts []AppointmentRecord) error
}

// Notifier tells customers about changes to their pickup appointment.
// The service never lets a notifier error change a committed outcome.
type Notifier interface {
	BookingConfirmed(ctx context.Context, orderKey string, slot time.Time, email string) error
	Cancelled(ctx context.Context, orderKey, date, timeOfDay, email string) error
	Rescheduled(ctx context.Context, orderKey, oldDate, oldTime string, newSlot time.Time, email string) error
}

// Class groups errors by what the customer should do next.
type Class string

const (
	ClassNone             Class = ""
	ClassTryDifferentSlot Class = "try_different_slot"
	ClassContactStaff     Class = "contact_staff"
	ClassTryAgainLater    Class = "try_again_later"
)

func ClassOf(err error) Class {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, ErrAlreadyBooked),
		errors.Is(err, ErrSlotContended),
		errors.Is(err, ErrSlotUnavailable):
		return ClassTryDifferentSlot
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrOrderNotReady),
		errors.Is(err, ErrAlreadyPickedUp),
		errors.Is(err, ErrAppointmentNotFound):
		return ClassContactStaff
	default:
		return ClassTryAgainLater
	}
}

// Hint is the human-readable follow-up for a class.
func (c Class) Hint() string {
	switch c {
	case ClassTryDifferentSlot:
		return "Please pick a different time slot or try again shortly."
	case ClassContactStaff:
		return "Please check your order number or contact our staff."
	case ClassTryAgainLater:
		return "Something went wrong on our side, please try again later."
	default:
		return ""
	}
}

func invalidRequest(msg string) error {
	return errors.Mark(errors.New(msg), ErrInvalidRequest)
}
