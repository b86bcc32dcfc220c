package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/doubles-ladder/internal/config"
	"github.com/mauv0809/doubles-ladder/internal/database"
	"github.com/mauv0809/doubles-ladder/internal/ladder"
	"github.com/mauv0809/doubles-ladder/internal/metrics"
	"github.com/mauv0809/doubles-ladder/internal/pubsub"
	"github.com/mauv0809/doubles-ladder/internal/recorder"
)

const numMatches = 200

var demoPlayers = []string{
	"Seeder Player A",
	"Seeder Player B",
	"Seeder Player C",
	"Seeder Player D",
	"Seeder Player E",
	"Seeder Player F",
	"Seeder Player G",
	"Seeder Player H",
}

func main() {
	log.Info("Starting database seeder...")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %s", err)
	}

	db, teardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()
	log.Info("Successfully connected to the database.")

	ctx := context.Background()
	store := ladder.New(db)

	ids := make([]int64, 0, len(demoPlayers))
	for _, name := range demoPlayers {
		p, err := store.AddPlayer(ctx, name)
		if err != nil {
			log.Fatalf("Failed to insert dummy player %s: %s", name, err)
		}
		ids = append(ids, p.ID)
	}
	log.Info("Registered dummy players.", "count", len(ids))

	// Events are never published from the seeder.
	noEvents, err := pubsub.New(ctx, "")
	if err != nil {
		log.Fatalf("Failed to create pubsub client: %s", err)
	}
	rec := recorder.New(store, nil, metrics.NewMock(), noEvents)

	log.Info("Simulating matches...", "total", numMatches)
	startTime := time.Now()
	rng := rand.New(rand.NewSource(startTime.UnixNano()))
	firstDay := startTime.AddDate(0, 0, -numMatches/4)

	for i := 0; i < numMatches; i++ {
		order := rng.Perm(len(ids))
		sub := recorder.Submission{
			Team1:       [2]int64{ids[order[0]], ids[order[1]]},
			Team2:       [2]int64{ids[order[2]], ids[order[3]]},
			Team1Points: 21,
			Team2Points: rng.Intn(20),
			Date:        firstDay.AddDate(0, 0, i/4).Format(ladder.DateLayout),
		}
		if rng.Intn(2) == 0 {
			sub.Team1Points, sub.Team2Points = sub.Team2Points, sub.Team1Points
		}
		if _, err := rec.RecordMatch(ctx, sub, false); err != nil {
			log.Fatalf("Failed to record match %d: %s", i, err)
		}
		if (i+1)%50 == 0 {
			log.Info("Recorded batch", "matches", i+1)
		}
	}

	log.Info("Seeding complete!", "matches", numMatches, "duration", time.Since(startTime))
}
