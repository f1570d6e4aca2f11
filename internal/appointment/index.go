package appointment

import (
	"strings"

	"go.uber.org/zap"

	"github.com/hackgods/pickup-appointment-scheduling/internal/slots"
)

// BookedSlots collects the instants held by appointments that carry both a
// date and a time. Rows that cannot be parsed are logged and skipped.
func BookedSlots(appts []AppointmentRecord, log *zap.Logger) slots.Set {
	booked := slots.Set{}
	for _, a := range appts {
		if !a.HasSchedule() {
			continue
		}
		at, err := a.Instant()
		if err != nil {
			if log != nil {
				log.Warn("skipping malformed appointment",
					zap.String("order_number", a.OrderNumber),
					zap.String("date", a.AppointmentDate),
					zap.String("time", a.AppointmentTime),
					zap.Error(err),
				)
			}
			continue
		}
		booked.Add(at)
	}
	return booked
}

// FindOrder matches key against the ready column only, so an order with no
// ready value can never be found.
func FindOrder(orders []OrderRecord, key string) (OrderRecord, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return OrderRecord{}, false
	}
	for _, o := range orders {
		if strings.TrimSpace(o.Key) == key {
			return o, true
		}
	}
	return OrderRecord{}, false
}

// FindAppointment returns the first appointment for key and its position.
func FindAppointment(appts []AppointmentRecord, key string) (AppointmentRecord, int, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return AppointmentRecord{}, -1, false
	}
	for i, a := range appts {
		if strings.TrimSpace(a.OrderNumber) == key {
			return a, i, true
		}
	}
	return AppointmentRecord{}, -1, false
}

func IsReady(o OrderRecord) bool {
	return strings.TrimSpace(o.Key) != ""
}

func IsFulfilled(o OrderRecord) bool {
	return strings.EqualFold(strings.TrimSpace(o.PickupStatus), "fulfilled") ||
		strings.EqualFold(strings.TrimSpace(o.StorageFeeStatus), "picked up")
}

// withoutOrder returns a copy of appts with every row for key removed.
func withoutOrder(appts []AppointmentRecord, key string) ([]AppointmentRecord, int) {
	key = strings.TrimSpace(key)
	out := make([]AppointmentRecord, 0, len(appts))
	removed := 0
	for _, a := range appts {
		if strings.TrimSpace(a.OrderNumber) == key {
			removed++
			continue
		}
		out = append(out, a)
	}
	return out, removed
}

func withoutIndex(appts []AppointmentRecord, idx int) []AppointmentRecord {
	out := make([]AppointmentRecord, 0, len(appts))
	out = append(out, appts[:idx]...)
	return append(out, appts[idx+1:]...)
}
