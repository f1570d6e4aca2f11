// Package records maps the order and appointment sheets held in a docstore
// onto the appointment package's record types.
package records

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/hackgods/pickup-appointment-scheduling/internal/appointment"
	"github.com/hackgods/pickup-appointment-scheduling/internal/config"
	"github.com/hackgods/pickup-appointment-scheduling/internal/docstore"
	"github.com/hackgods/pickup-appointment-scheduling/internal/sheet"
)

// SheetStore implements appointment.RecordStore on top of a docstore.
type SheetStore struct {
	docs          docstore.Store
	ordersName    string
	apptsName     string
	retryBase     time.Duration
	retryAttempts int
	log           *zap.Logger
}

func NewSheetStore(docs docstore.Store, cfg config.Config, log *zap.Logger) *SheetStore {
	if log == nil {
		log = zap.NewNop()
	}
	attempts := cfg.StoreRetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &SheetStore{
		docs:          docs,
		ordersName:    cfg.OrdersFilePath,
		apptsName:     cfg.AppointmentsFilePath,
		retryBase:     cfg.StoreRetryBase,
		retryAttempts: attempts,
		log:           log,
	}
}

var _ appointment.RecordStore = (*SheetStore)(nil)

func (s *SheetStore) FetchOrders(ctx context.Context) ([]appointment.OrderRecord, error) {
	data, err := s.docs.Get(ctx, s.ordersName)
	if err != nil {
		return nil, unavailable(err, "read order sheet %s", s.ordersName)
	}
	tbl, err := sheet.Decode(s.ordersName, data, appointment.ColReadyOrderNumber)
	if err != nil {
		return nil, unavailable(err, "parse order sheet %s", s.ordersName)
	}

	orders := make([]appointment.OrderRecord, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		orders = append(orders, appointment.OrderRecord{
			Key:              row[appointment.ColReadyOrderNumber],
			PickupStatus:     row[appointment.ColPickupStatus],
			StorageFeeStatus: row[appointment.ColStorageFee],
			ReadyDate:        row[appointment.ColReadyDate],
		})
	}
	return orders, nil
}

func (s *SheetStore) FetchAppointments(ctx context.Context) ([]appointment.AppointmentRecord, error) {
	data, err := s.docs.Get(ctx, s.apptsName)
	if errors.Is(err, docstore.ErrNotFound) {
		return []appointment.AppointmentRecord{}, nil
	}
	if err != nil {
		return nil, unavailable(err, "read appointment sheet %s", s.apptsName)
	}
	tbl, err := sheet.Decode(s.apptsName, data, appointment.ColOrderNumber)
	if err != nil {
		return nil, unavailable(err, "parse appointment sheet %s", s.apptsName)
	}

	appts := make([]appointment.AppointmentRecord, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		appts = append(appts, appointment.AppointmentRecord{
			OrderNumber:     row[appointment.ColOrderNumber],
			AppointmentDate: row[appointment.ColAppointmentDate],
			AppointmentTime: row[appointment.ColAppointmentTime],
			CustomerEmail:   row[appointment.ColCustomerEmail],
			CreatedAt:       row[appointment.ColCreatedTime],
		})
	}
	return appts, nil
}

// ReplaceAppointments rewrites the whole appointment sheet. A locked file is
// retried with exponential backoff; any other failure is returned at once.
func (s *SheetStore) ReplaceAppointments(ctx context.Context, appts []appointment.AppointmentRecord) error {
	rows := make([]map[string]string, len(appts))
	for i, a := range appts {
		rows[i] = map[string]string{
			appointment.ColOrderNumber:     a.OrderNumber,
			appointment.ColAppointmentDate: a.AppointmentDate,
			appointment.ColAppointmentTime: a.AppointmentTime,
			appointment.ColCustomerEmail:   a.CustomerEmail,
			appointment.ColCreatedTime:     a.CreatedAt,
		}
	}
	data, err := sheet.Encode(s.apptsName, appointment.AppointmentColumns, rows)
	if err != nil {
		return unavailable(err, "encode appointment sheet")
	}
	return s.put(ctx, s.apptsName, data)
}

// SaveOrders writes the order sheet. Only seeding and tooling use it; the
// service treats orders as read-only.
func (s *SheetStore) SaveOrders(ctx context.Context, orders []appointment.OrderRecord) error {
	cols := []string{
		appointment.ColReadyOrderNumber,
		appointment.ColPickupStatus,
		appointment.ColStorageFee,
		appointment.ColReadyDate,
	}
	rows := make([]map[string]string, len(orders))
	for i, o := range orders {
		rows[i] = map[string]string{
			appointment.ColReadyOrderNumber: o.Key,
			appointment.ColPickupStatus:     o.PickupStatus,
			appointment.ColStorageFee:       o.StorageFeeStatus,
			appointment.ColReadyDate:        o.ReadyDate,
		}
	}
	data, err := sheet.Encode(s.ordersName, cols, rows)
	if err != nil {
		return unavailable(err, "encode order sheet")
	}
	return s.put(ctx, s.ordersName, data)
}

func (s *SheetStore) put(ctx context.Context, name string, data []byte) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryBase
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = s.retryBase << s.retryAttempts
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.retryAttempts-1)), ctx)

	attempt := 0
	op := func() error {
		attempt++
		err := s.docs.Put(ctx, name, data)
		if err == nil || errors.Is(err, docstore.ErrLocked) {
			return err
		}
		return backoff.Permanent(err)
	}
	onRetry := func(err error, wait time.Duration) {
		s.log.Warn("document locked, retrying write",
			zap.String("document", name),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
		)
	}

	if err := backoff.RetryNotify(op, policy, onRetry); err != nil {
		if errors.Is(err, docstore.ErrLocked) {
			return unavailable(err, "%s is locked after %d attempts", name, attempt)
		}
		return unavailable(err, "write %s", name)
	}
	return nil
}

func unavailable(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), appointment.ErrStoreUnavailable)
}
