package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"github.com/hackgods/pickup-appointment-scheduling/internal/appointment"
	"github.com/hackgods/pickup-appointment-scheduling/internal/config"
	"github.com/hackgods/pickup-appointment-scheduling/internal/docstore"
	"github.com/hackgods/pickup-appointment-scheduling/internal/logging"
	"github.com/hackgods/pickup-appointment-scheduling/internal/records"
)

// seed writes a fake order sheet and an empty appointment sheet into the
// configured docstore, for local runs and the simulator.
func main() {
	orders := flag.Int("orders", 200, "number of orders to generate")
	seed := flag.Int64("seed", 0, "random seed, 0 picks one from the clock")
	keep := flag.Bool("keep-appointments", false, "leave an existing appointment sheet untouched")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("seed starting", zap.Int("orders", *orders), zap.String("orders_file", cfg.OrdersFilePath))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend, err := docstore.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("docstore open error", zap.Error(err))
	}
	defer backend.Close()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	faker := gofakeit.New(uint64(*seed))

	store := records.NewSheetStore(backend.Store, cfg, log)
	generated := fakeOrders(faker, *orders)
	if err := store.SaveOrders(ctx, generated); err != nil {
		log.Fatal("seed orders", zap.Error(err))
	}
	log.Info("orders seeded", zap.Int("count", len(generated)))

	if !*keep {
		if err := store.ReplaceAppointments(ctx, nil); err != nil {
			log.Fatal("reset appointments", zap.Error(err))
		}
		log.Info("appointment sheet reset", zap.String("file", cfg.AppointmentsFilePath))
	}

	log.Info("seed complete")
}

// fakeOrders mixes ready, not-yet-ready and picked-up orders in roughly the
// proportions a real export has.
func fakeOrders(faker *gofakeit.Faker, count int) []appointment.OrderRecord {
	out := make([]appointment.OrderRecord, 0, count)
	for i := 0; i < count; i++ {
		key := fmt.Sprintf("%s%04d", strings.ToUpper(faker.LetterN(1)), 1000+i)
		ready := faker.DateRange(time.Now().AddDate(0, 0, -14), time.Now()).UTC()

		rec := appointment.OrderRecord{Key: key, ReadyDate: appointment.FormatDate(ready)}
		switch roll := faker.Number(1, 100); {
		case roll <= 10:
			// not ready yet: nothing in the ready column
			rec = appointment.OrderRecord{PickupStatus: "Processing"}
		case roll <= 25:
			rec.PickupStatus = "Fulfilled"
		case roll <= 30:
			rec.StorageFeeStatus = "Picked Up"
		case roll <= 60:
			rec.PickupStatus = "Ready"
		}
		out = append(out, rec)
	}
	return out
}
