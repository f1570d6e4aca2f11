package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/pickup-appointment-scheduling/internal/clock"
	"github.com/hackgods/pickup-appointment-scheduling/internal/config"
	"github.com/hackgods/pickup-appointment-scheduling/internal/lock"
)

var (
	monday8am = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	nineAM    = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	tenAM     = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
)

type fakeStore struct {
	mu           sync.Mutex
	orders       []OrderRecord
	appts        []AppointmentRecord
	replaceCalls int
	replaceErr   error
	fetchDelay   time.Duration
}

func (f *fakeStore) FetchOrders(ctx context.Context) ([]OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]OrderRecord(nil), f.orders...), nil
}

func (f *fakeStore) FetchAppointments(ctx context.Context) ([]AppointmentRecord, error) {
	if f.fetchDelay > 0 {
		time.Sleep(f.fetchDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]AppointmentRecord(nil), f.appts...), nil
}

func (f *fakeStore) ReplaceAppointments(ctx context.Context, appts []AppointmentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaceCalls++
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.appts = append([]AppointmentRecord(nil), appts...)
	return nil
}

func (f *fakeStore) snapshot() []AppointmentRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]AppointmentRecord(nil), f.appts...)
}

type sentNotice struct {
	kind, orderKey, email string
	oldDate, oldTime      string
	slot                  time.Time
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotice
	err  error
}

func (n *fakeNotifier) record(s sentNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, s)
	return n.err
}

func (n *fakeNotifier) BookingConfirmed(ctx context.Context, orderKey string, slot time.Time, email string) error {
	return n.record(sentNotice{kind: "booked", orderKey: orderKey, slot: slot, email: email})
}

func (n *fakeNotifier) Cancelled(ctx context.Context, orderKey, date, timeOfDay, email string) error {
	return n.record(sentNotice{kind: "cancelled", orderKey: orderKey, oldDate: date, oldTime: timeOfDay, email: email})
}

func (n *fakeNotifier) Rescheduled(ctx context.Context, orderKey, oldDate, oldTime string, newSlot time.Time, email string) error {
	return n.record(sentNotice{kind: "rescheduled", orderKey: orderKey, oldDate: oldDate, oldTime: oldTime, slot: newSlot, email: email})
}

type harness struct {
	svc      *Service
	store    *fakeStore
	notifier *fakeNotifier
	locker   *lock.Memory
}

func newHarness(orders []OrderRecord, appts []AppointmentRecord) *harness {
	clk := clock.NewFixed(monday8am)
	store := &fakeStore{orders: orders, appts: appts}
	notifier := &fakeNotifier{}
	locker := lock.NewMemory(time.Minute, clk)
	cfg := config.Config{
		Slots:         config.Slots{StartHour: 9, EndHour: 17, IntervalMinutes: 30, DaysAhead: 1},
		NotifyTimeout: time.Second,
	}
	return &harness{
		svc:      NewService(store, locker, notifier, cfg, clk, nil),
		store:    store,
		notifier: notifier,
		locker:   locker,
	}
}

func readyOrders() []OrderRecord {
	return []OrderRecord{
		{Key: "A100", PickupStatus: "Ready", ReadyDate: "10/15/2026"},
		{Key: "B200"},
		{Key: "", PickupStatus: "Processing"},
	}
}

func TestValidateOrder(t *testing.T) {
	t.Run("requires order number", func(t *testing.T) {
		h := newHarness(readyOrders(), nil)
		_, err := h.svc.ValidateOrder(context.Background(), "   ")
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("unknown order", func(t *testing.T) {
		h := newHarness(readyOrders(), nil)
		_, err := h.svc.ValidateOrder(context.Background(), "Z999")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("ready without appointment", func(t *testing.T) {
		h := newHarness(readyOrders(), nil)
		got, err := h.svc.ValidateOrder(context.Background(), " B200 ")
		require.NoError(t, err)
		assert.Equal(t, "B200", got.OrderNumber)
		assert.Equal(t, "Ready to Pickup", got.Status)
		assert.False(t, got.HasAppointment)
	})

	t.Run("ready with appointment", func(t *testing.T) {
		h := newHarness(readyOrders(), []AppointmentRecord{
			{OrderNumber: "A100", AppointmentDate: "10/19/2026", AppointmentTime: "9:00 AM"},
		})
		got, err := h.svc.ValidateOrder(context.Background(), "A100")
		require.NoError(t, err)
		assert.True(t, got.HasAppointment)
		assert.Equal(t, "10/19/2026", got.AppointmentDate)
		assert.Equal(t, "9:00 AM", got.AppointmentTime)
		assert.Equal(t, "10/15/2026", got.ReadyDate)
	})

	t.Run("fulfilled order loses its appointment", func(t *testing.T) {
		orders := []OrderRecord{{Key: "A100", PickupStatus: "Fulfilled"}}
		h := newHarness(orders, []AppointmentRecord{
			{OrderNumber: "A100", AppointmentDate: "10/19/2026", AppointmentTime: "9:00 AM"},
			{OrderNumber: "B200", AppointmentDate: "10/19/2026", AppointmentTime: "9:30 AM"},
		})

		_, err := h.svc.ValidateOrder(context.Background(), "A100")

		assert.ErrorIs(t, err, ErrAlreadyPickedUp)
		remaining := h.store.snapshot()
		require.Len(t, remaining, 1)
		assert.Equal(t, "B200", remaining[0].OrderNumber)
	})

	t.Run("storage fee picked up counts as fulfilled", func(t *testing.T) {
		orders := []OrderRecord{{Key: "A100", StorageFeeStatus: " Picked Up "}}
		h := newHarness(orders, nil)

		_, err := h.svc.ValidateOrder(context.Background(), "A100")

		assert.ErrorIs(t, err, ErrAlreadyPickedUp)
		assert.Zero(t, h.store.replaceCalls, "nothing to remove, nothing written")
	})
}

func TestAvailableSlots(t *testing.T) {
	h := newHarness(readyOrders(), []AppointmentRecord{
		{OrderNumber: "A100", AppointmentDate: "10/19/2026", AppointmentTime: "9:00 AM"},
		{OrderNumber: "B200", AppointmentDate: "2026-10-19", AppointmentTime: "14:30"},
		{OrderNumber: "C300", AppointmentDate: "garbage", AppointmentTime: "9:30 AM"},
	})

	got, err := h.svc.AvailableSlots(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 16, got.TotalSlots)
	assert.Equal(t, 2, got.BookedSlots)
	require.Len(t, got.Slots, 14)
	assert.Equal(t, time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC), got.Slots[0])
}

func TestBook_Success(t *testing.T) {
	h := newHarness(readyOrders(), nil)

	got, err := h.svc.Book(context.Background(), BookInput{
		OrderNumber:   " A100 ",
		SlotTime:      "2026-10-19T14:30:00.000Z",
		CustomerEmail: "jane@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "A100", got.OrderNumber)
	assert.Equal(t, time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC), got.Slot)

	stored := h.store.snapshot()
	require.Len(t, stored, 1)
	assert.Equal(t, AppointmentRecord{
		OrderNumber:     "A100",
		AppointmentDate: "10/19/2026",
		AppointmentTime: "2:30 PM",
		CustomerEmail:   "jane@example.com",
		CreatedAt:       "2026-10-19T08:00:00Z",
	}, stored[0])

	require.Len(t, h.notifier.sent, 1)
	assert.Equal(t, "booked", h.notifier.sent[0].kind)
	assert.Equal(t, "jane@example.com", h.notifier.sent[0].email)
	assert.Zero(t, h.locker.Held(), "lock released after booking")
}

func TestBook_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   BookInput
	}{
		{"missing order", BookInput{SlotTime: "2026-10-19T09:00:00Z", CustomerEmail: "a@b.c"}},
		{"missing slot", BookInput{OrderNumber: "A100", CustomerEmail: "a@b.c"}},
		{"missing email", BookInput{OrderNumber: "A100", SlotTime: "2026-10-19T09:00:00Z"}},
		{"unparsable slot", BookInput{OrderNumber: "A100", SlotTime: "tomorrow", CustomerEmail: "a@b.c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(readyOrders(), nil)
			_, err := h.svc.Book(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrInvalidRequest)
			assert.Equal(t, ClassContactStaff, ClassOf(err))
			assert.Zero(t, h.store.replaceCalls)
		})
	}
}

func TestBook_Rejections(t *testing.T) {
	existing := []AppointmentRecord{
		{OrderNumber: "B200", AppointmentDate: "10/19/2026", AppointmentTime: "9:00 AM", CustomerEmail: "b@example.com"},
	}
	tests := []struct {
		name    string
		orders  []OrderRecord
		order   string
		slot    time.Time
		wantErr error
	}{
		{"slot held by another order", readyOrders(), "A100", nineAM, ErrSlotUnavailable},
		{"order already booked", readyOrders(), "B200", tenAM, ErrAlreadyBooked},
		{"unknown order", readyOrders(), "Z999", tenAM, ErrOrderNotFound},
		{"picked up order", []OrderRecord{{Key: "A100", PickupStatus: "fulfilled"}}, "A100", tenAM, ErrAlreadyPickedUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(tt.orders, existing)

			_, err := h.svc.Book(context.Background(), BookInput{
				OrderNumber:   tt.order,
				SlotTime:      tt.slot.Format(time.RFC3339),
				CustomerEmail: "a@example.com",
			})

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, h.store.replaceCalls, "rejected booking must not write")
			assert.Equal(t, existing, h.store.snapshot())
			assert.Empty(t, h.notifier.sent)
			assert.Zero(t, h.locker.Held())
		})
	}
}

func TestBook_RejectsSlotsOffTheGrid(t *testing.T) {
	existing := []AppointmentRecord{
		{OrderNumber: "B200", AppointmentDate: "10/19/2026", AppointmentTime: "9:00 AM", CustomerEmail: "b@example.com"},
	}
	tests := []struct {
		name string
		slot string
	}{
		{"seconds inside a held slot", "2026-10-19T09:00:30Z"},
		{"fractional seconds", "2026-10-19T10:00:00.250Z"},
		{"between intervals", "2026-10-19T09:15:00Z"},
		{"after closing", "2026-10-19T17:00:00Z"},
		{"weekend", "2026-10-24T10:00:00Z"},
		{"past", "2026-10-16T10:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(readyOrders(), existing)

			_, err := h.svc.Book(context.Background(), BookInput{
				OrderNumber: "A100", SlotTime: tt.slot, CustomerEmail: "a@example.com",
			})

			assert.ErrorIs(t, err, ErrInvalidRequest)
			assert.Zero(t, h.store.replaceCalls)
			assert.Equal(t, existing, h.store.snapshot())
			assert.Zero(t, h.locker.Held())
		})
	}
}

func TestBook_ReplacesIncompleteRowInPlace(t *testing.T) {
	h := newHarness(readyOrders(), []AppointmentRecord{
		{OrderNumber: "A100", CreatedAt: "old"},
		{OrderNumber: "B200", AppointmentDate: "10/19/2026", AppointmentTime: "9:00 AM"},
	})

	_, err := h.svc.Book(context.Background(), BookInput{
		OrderNumber: "A100", SlotTime: "2026-10-19T10:00:00Z", CustomerEmail: "a@example.com",
	})

	require.NoError(t, err)
	stored := h.store.snapshot()
	require.Len(t, stored, 2)
	assert.Equal(t, "A100", stored[0].OrderNumber)
	assert.Equal(t, "10:00 AM", stored[0].AppointmentTime)
	assert.Equal(t, "B200", stored[1].OrderNumber)
}

func TestBook_ContendedLock(t *testing.T) {
	h := newHarness(readyOrders(), nil)
	require.True(t, h.locker.Acquire(lock.NewKey("A100", nineAM)))

	_, err := h.svc.Book(context.Background(), BookInput{
		OrderNumber: "A100", SlotTime: nineAM.Format(time.RFC3339), CustomerEmail: "a@example.com",
	})

	assert.ErrorIs(t, err, ErrSlotContended)
	assert.Equal(t, ClassTryDifferentSlot, ClassOf(err))
	assert.Zero(t, h.store.replaceCalls)
}

func TestBook_StoreFailureReleasesLock(t *testing.T) {
	h := newHarness(readyOrders(), nil)
	h.store.replaceErr = errors.Mark(errors.New("locked"), ErrStoreUnavailable)

	_, err := h.svc.Book(context.Background(), BookInput{
		OrderNumber: "A100", SlotTime: nineAM.Format(time.RFC3339), CustomerEmail: "a@example.com",
	})

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, ClassTryAgainLater, ClassOf(err))
	assert.Zero(t, h.locker.Held())
	assert.Empty(t, h.notifier.sent)
}

func TestBook_NotifierFailureKeepsBooking(t *testing.T) {
	h := newHarness(readyOrders(), nil)
	h.notifier.err = errors.New("smtp down")

	got, err := h.svc.Book(context.Background(), BookInput{
		OrderNumber: "A100", SlotTime: nineAM.Format(time.RFC3339), CustomerEmail: "a@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "A100", got.OrderNumber)
	assert.Len(t, h.store.snapshot(), 1)
}

func TestBook_ConcurrentSameOrderAndSlot(t *testing.T) {
	h := newHarness(readyOrders(), nil)
	h.store.fetchDelay = 5 * time.Millisecond

	const workers = 16
	errs := make([]error, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = h.svc.Book(context.Background(), BookInput{
				OrderNumber: "A100", SlotTime: nineAM.Format(time.RFC3339), CustomerEmail: "a@example.com",
			})
		}(i)
	}
	close(start)
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.True(t,
			errors.Is(err, ErrSlotContended) || errors.Is(err, ErrSlotUnavailable) || errors.Is(err, ErrAlreadyBooked),
			"unexpected error: %v", err)
	}
	assert.Equal(t, 1, successes)
	assert.Len(t, h.store.snapshot(), 1)
	assert.Zero(t, h.locker.Held())
}

func TestCancel(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		h := newHarness(readyOrders(), nil)
		_, err := h.svc.Cancel(context.Background(), "A100")
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})

	t.Run("removes and notifies", func(t *testing.T) {
		h := newHarness(readyOrders(), []AppointmentRecord{
			{OrderNumber: "A100", AppointmentDate: "10/19/2026", AppointmentTime: "9:00 AM", CustomerEmail: "a@example.com"},
			{OrderNumber: "B200", AppointmentDate: "10/19/2026", AppointmentTime: "9:30 AM"},
		})

		got, err := h.svc.Cancel(context.Background(), " A100")

		require.NoError(t, err)
		assert.Equal(t, "9:00 AM", got.AppointmentTime)
		stored := h.store.snapshot()
		require.Len(t, stored, 1)
		assert.Equal(t, "B200", stored[0].OrderNumber)

		require.Len(t, h.notifier.sent, 1)
		assert.Equal(t, sentNotice{
			kind: "cancelled", orderKey: "A100", oldDate: "10/19/2026", oldTime: "9:00 AM", email: "a@example.com",
		}, h.notifier.sent[0])
	})
}

func TestReschedule(t *testing.T) {
	appts := func() []AppointmentRecord {
		return []AppointmentRecord{
			{OrderNumber: "A100", AppointmentDate: "10/19/2026", AppointmentTime: "9:00 AM", CustomerEmail: "a@example.com", CreatedAt: "2026-10-01T10:00:00Z"},
			{OrderNumber: "B200", AppointmentDate: "10/19/2026", AppointmentTime: "10:00 AM"},
		}
	}

	t.Run("not found", func(t *testing.T) {
		h := newHarness(readyOrders(), appts())
		_, err := h.svc.Reschedule(context.Background(), "Z999", tenAM.Format(time.RFC3339))
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})

	t.Run("slot held by another order", func(t *testing.T) {
		h := newHarness(readyOrders(), appts())
		_, err := h.svc.Reschedule(context.Background(), "A100", tenAM.Format(time.RFC3339))
		assert.ErrorIs(t, err, ErrSlotUnavailable)
		assert.Zero(t, h.store.replaceCalls)
	})

	t.Run("same slot is a no-op", func(t *testing.T) {
		h := newHarness(readyOrders(), appts())
		got, err := h.svc.Reschedule(context.Background(), "A100", nineAM.Format(time.RFC3339))
		require.NoError(t, err)
		assert.Equal(t, "9:00 AM", got.AppointmentTime)
		assert.Zero(t, h.store.replaceCalls)
		assert.Empty(t, h.notifier.sent)
	})

	t.Run("moves in place keeping email and creation time", func(t *testing.T) {
		h := newHarness(readyOrders(), appts())
		newSlot := time.Date(2026, 10, 20, 15, 0, 0, 0, time.UTC)

		got, err := h.svc.Reschedule(context.Background(), "A100", newSlot.Format(time.RFC3339))

		require.NoError(t, err)
		want := AppointmentRecord{
			OrderNumber:     "A100",
			AppointmentDate: "10/20/2026",
			AppointmentTime: "3:00 PM",
			CustomerEmail:   "a@example.com",
			CreatedAt:       "2026-10-01T10:00:00Z",
		}
		assert.Equal(t, want, *got)
		stored := h.store.snapshot()
		require.Len(t, stored, 2)
		assert.Equal(t, want, stored[0])

		require.Len(t, h.notifier.sent, 1)
		n := h.notifier.sent[0]
		assert.Equal(t, "rescheduled", n.kind)
		assert.Equal(t, "9:00 AM", n.oldTime)
		assert.Equal(t, newSlot, n.slot)
	})
}

func TestReschedule_RejectsSlotsOffTheGrid(t *testing.T) {
	existing := []AppointmentRecord{
		{OrderNumber: "A100", AppointmentDate: "10/19/2026", AppointmentTime: "10:00 AM", CustomerEmail: "a@example.com"},
		{OrderNumber: "B200", AppointmentDate: "10/19/2026", AppointmentTime: "9:00 AM", CustomerEmail: "b@example.com"},
	}
	for _, slot := range []string{"2026-10-19T09:00:45Z", "2026-10-19T11:10:00Z", "2026-10-18T10:00:00Z"} {
		t.Run(slot, func(t *testing.T) {
			h := newHarness(readyOrders(), existing)

			_, err := h.svc.Reschedule(context.Background(), "A100", slot)

			assert.ErrorIs(t, err, ErrInvalidRequest)
			assert.Zero(t, h.store.replaceCalls)
			assert.Empty(t, h.notifier.sent)
		})
	}
}

func TestListAppointments_PrunesAndSorts(t *testing.T) {
	orders := []OrderRecord{
		{Key: "A100"},
		{Key: "B200", PickupStatus: "Fulfilled"},
		{Key: "C300"},
		{Key: "D400", StorageFeeStatus: "picked up"},
	}
	h := newHarness(orders, []AppointmentRecord{
		{OrderNumber: "A100", AppointmentDate: "10/20/2026", AppointmentTime: "9:00 AM"},
		{OrderNumber: "B200", AppointmentDate: "10/19/2026", AppointmentTime: "9:00 AM"},
		{OrderNumber: "C300", AppointmentDate: "2026-10-19", AppointmentTime: "13:00"},
		{OrderNumber: "D400", AppointmentDate: "10/19/2026", AppointmentTime: "11:00 AM"},
		{OrderNumber: "", AppointmentDate: "10/19/2026", AppointmentTime: "11:30 AM"},
		{OrderNumber: "E500"},
	})

	got, err := h.svc.ListAppointments(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "C300", got[0].OrderNumber)
	assert.Equal(t, "A100", got[1].OrderNumber)

	stored := h.store.snapshot()
	require.Len(t, stored, 2)
	assert.Equal(t, "A100", stored[0].OrderNumber, "stored order is untouched by the display sort")
	assert.Equal(t, 1, h.store.replaceCalls)
}

func TestListAppointments_NothingToPrune(t *testing.T) {
	h := newHarness(readyOrders(), []AppointmentRecord{
		{OrderNumber: "A100", AppointmentDate: "10/20/2026", AppointmentTime: "9:00 AM"},
	})

	got, err := h.svc.ListAppointments(context.Background())

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Zero(t, h.store.replaceCalls)
}

func TestPruneAppointments(t *testing.T) {
	h := newHarness([]OrderRecord{{Key: "A100", PickupStatus: "fulfilled"}}, []AppointmentRecord{
		{OrderNumber: "A100", AppointmentDate: "10/20/2026", AppointmentTime: "9:00 AM"},
		{OrderNumber: "B200"},
		{OrderNumber: "C300", AppointmentDate: "10/20/2026", AppointmentTime: "9:30 AM"},
	})

	removed, err := h.svc.PruneAppointments(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Len(t, h.store.snapshot(), 1)
}

func TestAtMostOneAppointmentPerOrder(t *testing.T) {
	h := newHarness(readyOrders(), nil)
	ctx := context.Background()
	book := func(order string, at time.Time) error {
		_, err := h.svc.Book(ctx, BookInput{OrderNumber: order, SlotTime: at.Format(time.RFC3339), CustomerEmail: "x@example.com"})
		return err
	}

	require.NoError(t, book("A100", nineAM))
	assert.ErrorIs(t, book("A100", tenAM), ErrAlreadyBooked)
	require.NoError(t, book("B200", tenAM))
	_, err := h.svc.Reschedule(ctx, "A100", time.Date(2026, 10, 19, 11, 0, 0, 0, time.UTC).Format(time.RFC3339))
	require.NoError(t, err)
	_, err = h.svc.Cancel(ctx, "A100")
	require.NoError(t, err)
	require.NoError(t, book("A100", nineAM))

	counts := map[string]int{}
	for _, a := range h.store.snapshot() {
		counts[a.OrderNumber]++
	}
	assert.Equal(t, map[string]int{"A100": 1, "B200": 1}, counts)
}

func TestClassOf(t *testing.T) {
	assert.Equal(t, ClassNone, ClassOf(nil))
	assert.Equal(t, ClassTryDifferentSlot, ClassOf(errors.Wrap(ErrSlotUnavailable, "book")))
	assert.Equal(t, ClassContactStaff, ClassOf(ErrOrderNotFound))
	assert.Equal(t, ClassTryAgainLater, ClassOf(errors.New("boom")))
	assert.NotEmpty(t, ClassTryAgainLater.Hint())
}
