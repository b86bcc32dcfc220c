package recorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/doubles-ladder/internal/ladder"
	"github.com/mauv0809/doubles-ladder/internal/metrics"
	"github.com/mauv0809/doubles-ladder/internal/pubsub"
	"github.com/mauv0809/doubles-ladder/internal/rating"
	"github.com/mauv0809/doubles-ladder/internal/team"
	"golang.org/x/sync/semaphore"
)

// New creates a new Recorder. notifier may be nil when Slack is not configured.
func New(store Store, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Recorder {
	return &Recorder{
		store:    store,
		pubsub:   pubsub,
		notifier: notifier,
		metrics:  metrics,
		gate:     semaphore.NewWeighted(1),
		now:      time.Now,
	}
}

// WithClock replaces the clock used to default the match date.
func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	r.now = now
	return r
}

// RecordMatch validates sub and, in one transaction, resolves both teams, applies the
// rating engine, stores the match and updates every player and team. Nothing is
// written if any step fails. With dryRun the transaction is rolled back after the
// result has been computed and no event is published.
func (r *Recorder) RecordMatch(ctx context.Context, sub Submission, dryRun bool) (*ladder.MatchRecord, error) {
	startTime := time.Now()
	logger := log.FromContext(ctx)
	m := rating.MatchResult{
		Team1:       rating.Pair(sub.Team1),
		Team2:       rating.Pair(sub.Team2),
		Team1Points: sub.Team1Points,
		Team2Points: sub.Team2Points,
	}
	if err := m.Validate(); err != nil {
		r.reject(logger, err, sub)
		return nil, err
	}
	date, err := r.matchDate(sub.Date)
	if err != nil {
		r.reject(logger, err, sub)
		return nil, err
	}

	if err := r.gate.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting to record match: %w", err)
	}
	defer r.gate.Release(1)

	record := &ladder.MatchRecord{DryRun: dryRun}
	err = r.store.WithTx(ctx, func(tx ladder.Tx) error {
		res, err := rating.Apply(ctx, tx, m)
		if err != nil {
			return err
		}
		t1, err := team.Resolve(ctx, tx, m.Team1[0], m.Team1[1])
		if err != nil {
			return err
		}
		t2, err := team.Resolve(ctx, tx, m.Team2[0], m.Team2[1])
		if err != nil {
			return err
		}

		match := ladder.Match{
			ID:          uuid.NewString(),
			Team1:       t1,
			Team2:       t2,
			Date:        date,
			Team1Points: m.Team1Points,
			Team2Points: m.Team2Points,
			Winner:      res.Winner,
		}
		if err := tx.InsertMatch(ctx, &match); err != nil {
			return err
		}
		if err := tx.ApplyPlayerUpdates(ctx, match.ID, res.Players); err != nil {
			return err
		}
		if err := tx.ApplyTeamUpdate(ctx, t1, res.Teams[0]); err != nil {
			return err
		}
		if err := tx.ApplyTeamUpdate(ctx, t2, res.Teams[1]); err != nil {
			return err
		}
		names, err := tx.PlayerNames(ctx, m.PlayerIDs())
		if err != nil {
			return err
		}

		record.Match = match
		record.Result = res
		record.PlayerNames = names
		if dryRun {
			return errDryRun
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		r.reject(logger, err, sub)
		return nil, err
	}
	logger.Debug("Computed rating changes", "scaling", record.Result.Scaling,
		"team1Expected", record.Result.Team1Expected, "team2Expected", record.Result.Team2Expected)

	if dryRun {
		logger.Info("[Dry Run] Computed match without saving", "team1Delta", record.Result.Team1Delta, "team2Delta", record.Result.Team2Delta)
		return record, nil
	}

	r.metrics.IncMatchesRecorded()
	r.metrics.ObserveRatingDelta(record.Result.Team1Delta)
	r.metrics.ObserveRecordDuration(time.Since(startTime).Seconds())
	logger.Info("Recorded match", "matchID", record.Match.ID, "winner", record.Match.Winner,
		"score", fmt.Sprintf("%d-%d", m.Team1Points, m.Team2Points), "team1Delta", record.Result.Team1Delta)

	if err := r.pubsub.SendMessage(ctx, pubsub.EventMatchRecorded, record); err != nil {
		// Best effort, the match is already committed.
		logger.Error("Failed to publish match recorded event", "error", err, "matchID", record.Match.ID)
	} else {
		r.metrics.IncEventsPublished()
	}
	return record, nil
}

// HandleMatchRecorded consumes a match-recorded event by posting the result to Slack.
func (r *Recorder) HandleMatchRecorded(record *ladder.MatchRecord, dryRun bool) error {
	if r.notifier == nil {
		log.Debug("No notifier configured, skipping match result", "matchID", record.Match.ID)
		return nil
	}
	if err := r.notifier.SendMatchResult(record, dryRun); err != nil {
		return fmt.Errorf("failed to send match result: %w", err)
	}
	return nil
}

func (r *Recorder) matchDate(date string) (string, error) {
	if date == "" {
		return r.now().Format(ladder.DateLayout), nil
	}
	if _, err := time.Parse(ladder.DateLayout, date); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return date, nil
}

func (r *Recorder) reject(logger *log.Logger, err error, sub Submission) {
	reason := rejectionReason(err)
	if reason == "" {
		logger.Error("Failed to record match", "error", err, "team1", sub.Team1, "team2", sub.Team2)
		return
	}
	logger.Warn("Rejected match submission", "reason", reason, "error", err, "team1", sub.Team1, "team2", sub.Team2)
	r.metrics.IncMatchesRejected(reason)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, rating.ErrDuplicatePlayer):
		return metrics.ReasonDuplicatePlayer
	case errors.Is(err, rating.ErrTiedMatch):
		return metrics.ReasonTie
	case errors.Is(err, rating.ErrInvalidPoints):
		return metrics.ReasonInvalidPoints
	case errors.Is(err, rating.ErrPlayerNotFound):
		return metrics.ReasonPlayerNotFound
	case errors.Is(err, ErrInvalidDate):
		return metrics.ReasonInvalidDate
	}
	return ""
}
