package appointment

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/hackgods/pickup-appointment-scheduling/internal/clock"
	"github.com/hackgods/pickup-appointment-scheduling/internal/config"
	"github.com/hackgods/pickup-appointment-scheduling/internal/lock"
	"github.com/hackgods/pickup-appointment-scheduling/internal/slots"
)

type Service struct {
	store    RecordStore
	locker   lock.Locker
	notifier Notifier
	clock    clock.Clock
	slots    config.Slots
	notifyTO time.Duration
	log      *zap.Logger
}

func NewService(store RecordStore, locker lock.Locker, notifier Notifier, cfg config.Config, clk clock.Clock, log *zap.Logger) *Service {
	if clk == nil {
		clk = clock.NewReal()
	}
	if log == nil {
		log = zap.NewNop()
	}
	notifyTO := cfg.NotifyTimeout
	if notifyTO <= 0 {
		notifyTO = 5 * time.Second
	}
	return &Service{
		store:    store,
		locker:   locker,
		notifier: notifier,
		clock:    clk,
		slots:    cfg.Slots,
		notifyTO: notifyTO,
		log:      log,
	}
}

// OrderStatus is the outcome of a successful order validation.
type OrderStatus struct {
	OrderNumber     string
	Status          string
	ReadyDate       string
	HasAppointment  bool
	AppointmentDate string
	AppointmentTime string
}

type Availability struct {
	Slots       []time.Time
	TotalSlots  int
	BookedSlots int
}

type BookInput struct {
	OrderNumber   string
	SlotTime      string
	CustomerEmail string
}

type Booking struct {
	OrderNumber string
	Slot        time.Time
	Appointment AppointmentRecord
}

// ValidateOrder checks whether an order can be scheduled. A picked-up order
// loses any appointment it still has as a side effect.
func (s *Service) ValidateOrder(ctx context.Context, orderNumber string) (*OrderStatus, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, invalidRequest("order number is required")
	}

	orders, err := s.store.FetchOrders(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch orders")
	}
	appts, err := s.store.FetchAppointments(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch appointments")
	}

	order, err := checkOrder(orders, orderNumber)
	if errors.Is(err, ErrAlreadyPickedUp) {
		s.dropFulfilled(ctx, appts, orderNumber)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	status := &OrderStatus{
		OrderNumber: strings.TrimSpace(order.Key),
		Status:      order.DisplayStatus(),
		ReadyDate:   order.ReadyDate,
	}
	if existing, _, ok := FindAppointment(appts, orderNumber); ok && existing.HasSchedule() {
		status.HasAppointment = true
		status.AppointmentDate = existing.AppointmentDate
		status.AppointmentTime = existing.AppointmentTime
	}
	return status, nil
}

func (s *Service) dropFulfilled(ctx context.Context, appts []AppointmentRecord, orderNumber string) {
	remaining, removed := withoutOrder(appts, orderNumber)
	if removed == 0 {
		return
	}
	if err := s.store.ReplaceAppointments(ctx, remaining); err != nil {
		s.log.Warn("failed to remove appointment for picked up order",
			zap.String("order_number", orderNumber), zap.Error(err))
		return
	}
	s.log.Info("removed appointment for picked up order", zap.String("order_number", orderNumber))
}

// AvailableSlots returns the generated slots that no appointment holds.
func (s *Service) AvailableSlots(ctx context.Context) (*Availability, error) {
	all := slots.Generate(s.slots, s.clock.Now())

	appts, err := s.store.FetchAppointments(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch appointments")
	}
	booked := BookedSlots(appts, s.log)

	return &Availability{
		Slots:       slots.Available(all, booked),
		TotalSlots:  len(all),
		BookedSlots: len(booked),
	}, nil
}

// Book reserves a slot for an order. The (order, slot) lock is held across
// the fresh read, the availability re-check and the write, and is released
// before the confirmation is sent.
//
// Two different orders racing for the same slot hold different locks; the
// re-check narrows that window but the store has no transactions, so a
// near-simultaneous double booking across orders remains possible.
func (s *Service) Book(ctx context.Context, in BookInput) (*Booking, error) {
	orderNumber := strings.TrimSpace(in.OrderNumber)
	email := strings.TrimSpace(in.CustomerEmail)
	switch {
	case orderNumber == "" || strings.TrimSpace(in.SlotTime) == "":
		return nil, invalidRequest("order number and slot time are required")
	case email == "":
		return nil, invalidRequest("email address is required")
	}
	slot, err := s.bookableSlot(in.SlotTime)
	if err != nil {
		return nil, err
	}

	var booked *Booking

	err = s.locker.WithSlotLock(ctx, lock.NewKey(orderNumber, slot), func(lockCtx context.Context) error {
		// Inside the critical section always work from a fresh read
		orders, err := s.store.FetchOrders(lockCtx)
		if err != nil {
			return errors.Wrap(err, "fetch orders")
		}
		appts, err := s.store.FetchAppointments(lockCtx)
		if err != nil {
			return errors.Wrap(err, "fetch appointments")
		}

		order, err := checkOrder(orders, orderNumber)
		if err != nil {
			return err
		}

		existing, idx, found := FindAppointment(appts, orderNumber)
		if found && existing.HasSchedule() {
			return ErrAlreadyBooked
		}
		if BookedSlots(appts, s.log).Has(slot) {
			return ErrSlotUnavailable
		}

		orderKey := strings.TrimSpace(order.Key)
		rec := newRecord(orderKey, slot, email, s.clock.Now().Format(time.RFC3339))

		next := make([]AppointmentRecord, len(appts), len(appts)+1)
		copy(next, appts)
		if found {
			next[idx] = rec
		} else {
			next = append(next, rec)
		}

		if err := s.store.ReplaceAppointments(lockCtx, next); err != nil {
			return errors.Wrap(err, "save appointments")
		}

		booked = &Booking{OrderNumber: orderKey, Slot: slot, Appointment: rec}
		return nil
	})
	if err != nil {
		if errors.Is(err, lock.ErrLockNotAcquired) {
			s.log.Info("booking contended",
				zap.String("order_number", orderNumber), zap.Time("slot", slot))
			return nil, ErrSlotContended
		}
		return nil, err
	}

	s.log.Info("appointment booked",
		zap.String("order_number", booked.OrderNumber), zap.Time("slot", slot))

	s.notify(ctx, "booking_confirmed", booked.OrderNumber, func(ctx context.Context) error {
		return s.notifier.BookingConfirmed(ctx, booked.OrderNumber, slot, email)
	})

	return booked, nil
}

// ListAppointments is the admin view. Rows without a schedule and rows whose
// order has been picked up are pruned from the store before returning. The
// result is sorted by appointment time for display only.
func (s *Service) ListAppointments(ctx context.Context) ([]AppointmentRecord, error) {
	kept, _, err := s.prune(ctx)
	if err != nil {
		return nil, err
	}

	type keyed struct {
		rec AppointmentRecord
		at  time.Time
		ok  bool
	}
	rows := make([]keyed, len(kept))
	for i, a := range kept {
		at, err := a.Instant()
		rows[i] = keyed{rec: a, at: at, ok: err == nil}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ok != rows[j].ok {
			return rows[i].ok
		}
		return rows[i].at.Before(rows[j].at)
	})

	out := make([]AppointmentRecord, len(rows))
	for i, r := range rows {
		out[i] = r.rec
	}
	return out, nil
}

// PruneAppointments runs the admin view's self-healing pass on its own and
// reports how many rows were dropped.
func (s *Service) PruneAppointments(ctx context.Context) (int, error) {
	_, removed, err := s.prune(ctx)
	return removed, err
}

func (s *Service) prune(ctx context.Context) ([]AppointmentRecord, int, error) {
	orders, err := s.store.FetchOrders(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "fetch orders")
	}
	appts, err := s.store.FetchAppointments(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "fetch appointments")
	}

	kept := make([]AppointmentRecord, 0, len(appts))
	for _, a := range appts {
		if !a.Complete() {
			s.log.Info("pruning incomplete appointment", zap.String("order_number", a.OrderNumber))
			continue
		}
		if order, ok := FindOrder(orders, a.OrderNumber); ok && IsFulfilled(order) {
			s.log.Info("pruning appointment for picked up order", zap.String("order_number", a.OrderNumber))
			continue
		}
		kept = append(kept, a)
	}

	removed := len(appts) - len(kept)
	if removed > 0 {
		if err := s.store.ReplaceAppointments(ctx, kept); err != nil {
			return nil, 0, errors.Wrap(err, "save pruned appointments")
		}
		s.log.Info("appointments pruned", zap.Int("removed", removed))
	}
	return kept, removed, nil
}

// Cancel removes the appointment for an order.
func (s *Service) Cancel(ctx context.Context, orderNumber string) (*AppointmentRecord, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, invalidRequest("order number is required")
	}

	appts, err := s.store.FetchAppointments(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch appointments")
	}
	cancelled, _, ok := FindAppointment(appts, orderNumber)
	if !ok {
		return nil, ErrAppointmentNotFound
	}

	remaining, _ := withoutOrder(appts, orderNumber)
	if err := s.store.ReplaceAppointments(ctx, remaining); err != nil {
		return nil, errors.Wrap(err, "save appointments")
	}
	s.log.Info("appointment cancelled", zap.String("order_number", orderNumber))

	s.notify(ctx, "cancelled", orderNumber, func(ctx context.Context) error {
		return s.notifier.Cancelled(ctx, strings.TrimSpace(cancelled.OrderNumber),
			cancelled.AppointmentDate, cancelled.AppointmentTime, cancelled.CustomerEmail)
	})

	return &cancelled, nil
}

// Reschedule moves an appointment to a new slot, keeping its email and
// creation time. Moving it onto the slot it already holds changes nothing.
func (s *Service) Reschedule(ctx context.Context, orderNumber, newSlotTime string) (*AppointmentRecord, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" || strings.TrimSpace(newSlotTime) == "" {
		return nil, invalidRequest("order number and new slot time are required")
	}
	slot, err := s.bookableSlot(newSlotTime)
	if err != nil {
		return nil, err
	}

	appts, err := s.store.FetchAppointments(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch appointments")
	}
	current, idx, ok := FindAppointment(appts, orderNumber)
	if !ok {
		return nil, ErrAppointmentNotFound
	}

	if at, err := current.Instant(); err == nil && at.Equal(slot) {
		return &current, nil
	}

	if BookedSlots(withoutIndex(appts, idx), s.log).Has(slot) {
		return nil, ErrSlotUnavailable
	}

	createdAt := current.CreatedAt
	if strings.TrimSpace(createdAt) == "" {
		createdAt = s.clock.Now().Format(time.RFC3339)
	}
	updated := newRecord(strings.TrimSpace(current.OrderNumber), slot, current.CustomerEmail, createdAt)

	next := make([]AppointmentRecord, len(appts))
	copy(next, appts)
	next[idx] = updated

	if err := s.store.ReplaceAppointments(ctx, next); err != nil {
		return nil, errors.Wrap(err, "save appointments")
	}
	s.log.Info("appointment rescheduled",
		zap.String("order_number", orderNumber), zap.Time("slot", slot))

	s.notify(ctx, "rescheduled", orderNumber, func(ctx context.Context) error {
		return s.notifier.Rescheduled(ctx, updated.OrderNumber,
			current.AppointmentDate, current.AppointmentTime, slot, current.CustomerEmail)
	})

	return &updated, nil
}

// notify runs a best-effort notification. The request context may already
// be done by the time it runs, so it gets its own deadline.
func (s *Service) notify(ctx context.Context, kind, orderNumber string, send func(ctx context.Context) error) {
	if s.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTO)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("notifier panicked",
				zap.String("kind", kind), zap.String("order_number", orderNumber), zap.Any("recover", r))
		}
	}()

	if err := send(nctx); err != nil {
		s.log.Warn("failed to send notification",
			zap.String("kind", kind), zap.String("order_number", orderNumber), zap.Error(err))
	}
}

// bookableSlot parses a client slot and rejects instants that are past or
// off the configured slot grid.
func (s *Service) bookableSlot(raw string) (time.Time, error) {
	slot, err := ParseSlot(raw)
	if err != nil {
		return time.Time{}, errors.Mark(err, ErrInvalidRequest)
	}
	if !slots.OnGrid(s.slots, slot) {
		return time.Time{}, invalidRequest("slot time is not a bookable slot")
	}
	if !slot.After(s.clock.Now()) {
		return time.Time{}, invalidRequest("slot time is in the past")
	}
	return slot, nil
}

func checkOrder(orders []OrderRecord, orderNumber string) (OrderRecord, error) {
	order, ok := FindOrder(orders, orderNumber)
	if !ok {
		return OrderRecord{}, ErrOrderNotFound
	}
	if !IsReady(order) {
		return OrderRecord{}, ErrOrderNotReady
	}
	if IsFulfilled(order) {
		return OrderRecord{}, ErrAlreadyPickedUp
	}
	return order, nil
}
