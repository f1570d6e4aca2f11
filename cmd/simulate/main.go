package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/hackgods/pickup-appointment-scheduling/internal/api"
	"github.com/hackgods/pickup-appointment-scheduling/internal/appointment"
	"github.com/hackgods/pickup-appointment-scheduling/internal/config"
	"github.com/hackgods/pickup-appointment-scheduling/internal/docstore"
	"github.com/hackgods/pickup-appointment-scheduling/internal/logging"
	"github.com/hackgods/pickup-appointment-scheduling/internal/records"
)

// simulate drives a running api-server with concurrent customers and then
// checks the resulting appointment list for double bookings.

type SimConfig struct {
	APIBaseURL    string
	AdminPassword string
	Duration      time.Duration
	Workers       int
	BookingRatio  float64
	ValidateRatio float64
	ReadRatio     float64
	HotSlots      int // bookings only target the first N slots; 0 means all
}

type DataPool struct {
	Orders []string
	Slots  []string
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]
	return avg, min, max, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	Booking        OperationMetrics
	Validate       OperationMetrics
	AvailableSlots OperationMetrics
	AdminList      OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	metrics Metrics
	log     *zap.Logger
}

func main() {
	baseCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(baseCfg.Env, baseCfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg := loadConfig(baseCfg)
	if err := validateConfig(cfg); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}
	log.Info("simulator starting",
		zap.Duration("duration", cfg.Duration),
		zap.Int("workers", cfg.Workers),
		zap.Float64("booking", cfg.BookingRatio),
		zap.Float64("validate", cfg.ValidateRatio),
		zap.Float64("read", cfg.ReadRatio),
		zap.Int("hot_slots", cfg.HotSlots),
	)

	sim := &Simulator{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := sim.loadDataPool(ctx, baseCfg)
	if err != nil {
		log.Fatal("load data pool", zap.Error(err))
	}
	sim.pool = pool
	log.Info("data pool loaded", zap.Int("orders", len(pool.Orders)), zap.Int("slots", len(pool.Slots)))

	sim.Run()
	sim.PrintReport()

	if err := sim.checkNoDoubleBooking(context.Background()); err != nil {
		log.Error("consistency check failed", zap.Error(err))
		os.Exit(2)
	}
	log.Info("consistency check passed")
}

func loadConfig(base config.Config) SimConfig {
	cfg := SimConfig{
		APIBaseURL:    getEnv("SIM_API_BASE_URL", "http://localhost:"+base.HTTPPort),
		AdminPassword: base.AdminPassword,
		Duration:      getDuration("SIM_DURATION", 30*time.Second),
		Workers:       getInt("SIM_WORKERS", 10),
		BookingRatio:  getFloat("SIM_BOOKING_RATIO", 0.5),
		ValidateRatio: getFloat("SIM_VALIDATE_RATIO", 0.2),
		ReadRatio:     getFloat("SIM_READ_RATIO", 0.3),
		HotSlots:      getInt("SIM_HOT_SLOTS", 3),
	}

	total := cfg.BookingRatio + cfg.ValidateRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.ValidateRatio /= total
		cfg.ReadRatio /= total
	}
	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return errors.New("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return errors.New("SIM_DURATION must be > 0")
	}
	return nil
}

// loadDataPool reads bookable orders straight from the docstore and the
// open slots from the API.
func (s *Simulator) loadDataPool(ctx context.Context, base config.Config) (*DataPool, error) {
	backend, err := docstore.Open(ctx, base, s.log)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	orders, err := records.NewSheetStore(backend.Store, base, s.log).FetchOrders(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load orders")
	}

	pool := &DataPool{}
	for _, o := range orders {
		if appointment.IsReady(o) && !appointment.IsFulfilled(o) {
			pool.Orders = append(pool.Orders, strings.TrimSpace(o.Key))
		}
	}

	var slots api.AvailableSlotsResponse
	if _, err := s.call(ctx, http.MethodGet, "/api/available-slots", nil, nil, &slots); err != nil {
		return nil, errors.Wrap(err, "load slots")
	}
	pool.Slots = slots.Slots

	if len(pool.Orders) == 0 {
		return nil, errors.New("no bookable orders loaded, run cmd/seed first")
	}
	if len(pool.Slots) == 0 {
		return nil, errors.New("no open slots")
	}
	return pool, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}
	wg.Wait()
	s.log.Info("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	seed := time.Now().UnixNano() + int64(workerID)
	rng := rand.New(rand.NewSource(seed))
	faker := gofakeit.New(uint64(seed))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		r := rng.Float64()
		switch {
		case r < s.config.BookingRatio:
			s.doBooking(ctx, rng, faker)
		case r < s.config.BookingRatio+s.config.ValidateRatio:
			s.doValidate(ctx, rng)
		case rng.Intn(2) == 0:
			s.doAvailableSlots(ctx)
		default:
			s.doAdminList(ctx)
		}
	}
}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand, faker *gofakeit.Faker) {
	slots := s.pool.Slots
	if s.config.HotSlots > 0 && s.config.HotSlots < len(slots) {
		slots = slots[:s.config.HotSlots]
	}
	req := api.BookAppointmentRequest{
		OrderNumber:   s.pool.Orders[rng.Intn(len(s.pool.Orders))],
		SlotTime:      slots[rng.Intn(len(slots))],
		CustomerEmail: faker.Email(),
	}

	start := time.Now()
	status, err := s.call(ctx, http.MethodPost, "/api/book-appointment", req, nil, nil)
	latency := time.Since(start)

	if ctx.Err() != nil {
		return
	}
	// already-booked and not-found are expected outcomes under random load
	expected := status == http.StatusConflict || status == http.StatusBadRequest
	s.metrics.Booking.Record(latency, err == nil && status == http.StatusCreated, expected)
}

func (s *Simulator) doValidate(ctx context.Context, rng *rand.Rand) {
	req := api.ValidateOrderRequest{OrderNumber: s.pool.Orders[rng.Intn(len(s.pool.Orders))]}

	start := time.Now()
	status, err := s.call(ctx, http.MethodPost, "/api/validate-order", req, nil, nil)
	latency := time.Since(start)
	if ctx.Err() != nil {
		return
	}
	s.metrics.Validate.Record(latency, err == nil && status == http.StatusOK, status == http.StatusBadRequest)
}

func (s *Simulator) doAvailableSlots(ctx context.Context) {
	start := time.Now()
	status, err := s.call(ctx, http.MethodGet, "/api/available-slots", nil, nil, nil)
	latency := time.Since(start)
	if ctx.Err() != nil {
		return
	}
	s.metrics.AvailableSlots.Record(latency, err == nil && status == http.StatusOK, false)
}

func (s *Simulator) doAdminList(ctx context.Context) {
	start := time.Now()
	status, err := s.call(ctx, http.MethodGet, "/api/admin/appointments", nil, s.adminHeader(), nil)
	latency := time.Since(start)
	if ctx.Err() != nil {
		return
	}
	s.metrics.AdminList.Record(latency, err == nil && status == http.StatusOK, false)
}

// checkNoDoubleBooking fails if any slot or any order appears twice.
func (s *Simulator) checkNoDoubleBooking(ctx context.Context) error {
	var list api.ListAppointmentsResponse
	if _, err := s.call(ctx, http.MethodGet, "/api/admin/appointments", nil, s.adminHeader(), &list); err != nil {
		return errors.Wrap(err, "list appointments")
	}

	bySlot := map[string][]string{}
	byOrder := map[string]int{}
	for _, a := range list.Appointments {
		key := a.AppointmentDate + " " + a.AppointmentTime
		bySlot[key] = append(bySlot[key], a.OrderNumber)
		byOrder[a.OrderNumber]++
	}

	var problems []string
	for slot, orders := range bySlot {
		if len(orders) > 1 {
			problems = append(problems, fmt.Sprintf("slot %s held by %v", slot, orders))
		}
	}
	for order, n := range byOrder {
		if n > 1 {
			problems = append(problems, fmt.Sprintf("order %s has %d appointments", order, n))
		}
	}

	fmt.Printf("Appointments on file: %d\n", len(list.Appointments))
	if len(problems) > 0 {
		sort.Strings(problems)
		return errors.Newf("%d double bookings: %s", len(problems), strings.Join(problems, "; "))
	}
	return nil
}

func (s *Simulator) adminHeader() http.Header {
	return http.Header{"X-Admin-Password": []string{s.config.AdminPassword}}
}

// call sends a JSON request and decodes a successful JSON response into out.
func (s *Simulator) call(ctx context.Context, method, path string, body any, header http.Header, out any) (int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e api.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return resp.StatusCode, errors.Newf("%s %s: %d %s", method, path, resp.StatusCode, e.Error)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, errors.Wrap(err, "decode response")
		}
	}
	return resp.StatusCode, nil
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Validate order", &s.metrics.Validate)
	printOperationReport("Available slots", &s.metrics.AvailableSlots)
	printOperationReport("Admin list", &s.metrics.AdminList)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Rejected: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
