package recorder

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/mauv0809/doubles-ladder/internal/database"
	"github.com/mauv0809/doubles-ladder/internal/ladder"
	"github.com/mauv0809/doubles-ladder/internal/metrics"
	"github.com/mauv0809/doubles-ladder/internal/notifier"
	"github.com/mauv0809/doubles-ladder/internal/pubsub"
	"github.com/mauv0809/doubles-ladder/internal/rating"
	"github.com/mauv0809/doubles-ladder/internal/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   ladder.LadderStore
	rec     *Recorder
	metrics *metrics.Mock
	pubsub  *pubsub.MockPubSubClient
	notif   *notifier.Mock
	ids     []int64
}

// setup creates a recorder over an in-memory database with four registered players.
func setup(t *testing.T) *fixture {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	f := &fixture{
		store:   ladder.New(db),
		metrics: metrics.NewMock(),
		pubsub:  pubsub.NewMock(),
		notif:   notifier.NewMock(),
	}
	f.rec = New(f.store, f.notif, f.metrics, f.pubsub).WithClock(func() time.Time {
		return time.Date(2024, 1, 11, 19, 30, 0, 0, time.UTC)
	})
	for _, name := range []string{"Ann", "Bo", "Cy", "Di"} {
		p, err := f.store.AddPlayer(context.Background(), name)
		require.NoError(t, err)
		f.ids = append(f.ids, p.ID)
	}
	return f
}

func (f *fixture) players(t *testing.T) map[int64]ladder.Player {
	t.Helper()
	all, err := f.store.GetAllPlayers(context.Background())
	require.NoError(t, err)
	out := make(map[int64]ladder.Player, len(all))
	for _, p := range all {
		out[p.ID] = p
	}
	return out
}

func TestRecordMatch_Shutout(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	record, err := f.rec.RecordMatch(ctx, Submission{
		Team1:       [2]int64{f.ids[0], f.ids[1]},
		Team2:       [2]int64{f.ids[2], f.ids[3]},
		Team1Points: 21,
		Team2Points: 0,
	}, false)
	require.NoError(t, err)

	assert.Equal(t, rating.TeamOne, record.Result.Winner)
	assert.Equal(t, "2024-01-11", record.Match.Date, "date defaults to today")
	assert.InDelta(t, 21.0, record.Result.Team1Delta, 1e-9)
	assert.InDelta(t, -21.0, record.Result.Team2Delta, 1e-9)
	assert.Equal(t, "Ann & Bo", record.TeamName(rating.TeamOne))

	players := f.players(t)
	assert.InDelta(t, 1221.0, players[f.ids[0]].Rating, 1e-9)
	assert.InDelta(t, 1221.0, players[f.ids[1]].Rating, 1e-9)
	assert.InDelta(t, 1179.0, players[f.ids[2]].Rating, 1e-9)
	assert.InDelta(t, 1179.0, players[f.ids[3]].Rating, 1e-9)

	stored, err := f.store.GetMatch(ctx, record.Match.ID)
	require.NoError(t, err)
	assert.Equal(t, record.Match.Team1, stored.Team1)

	assert.Equal(t, 1, f.metrics.MatchesRecorded())
	assert.Equal(t, 1, f.metrics.EventsPublished())
	require.Len(t, f.pubsub.SendMessageCalls, 1)
	assert.Equal(t, pubsub.EventMatchRecorded, f.pubsub.SendMessageCalls[0].Topic)
	assert.Same(t, record, f.pubsub.SendMessageCalls[0].Data)
}

func TestRecordMatch_UpdatesRecords(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	before := f.players(t)
	_, err := f.rec.RecordMatch(ctx, Submission{
		Team1:       [2]int64{f.ids[3], f.ids[0]},
		Team2:       [2]int64{f.ids[2], f.ids[1]},
		Team1Points: 15,
		Team2Points: 21,
		Date:        "2024-02-01",
	}, false)
	require.NoError(t, err)
	after := f.players(t)

	for _, id := range f.ids {
		assert.Equal(t, before[id].MatchesPlayed()+1, after[id].MatchesPlayed(), "player %d", id)
	}
	// One player from each side.
	assert.Equal(t, 36, after[f.ids[0]].PointsWon+after[f.ids[1]].PointsWon)
	assert.Equal(t, 1, after[f.ids[1]].Wins)
	assert.Equal(t, 1, after[f.ids[0]].Losses)

	teams, err := f.store.GetAllTeams(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, team.Key{Low: f.ids[1], High: f.ids[2]}, teams[0].Key)
	assert.Equal(t, 1, teams[0].Wins)
	assert.Equal(t, team.Key{Low: f.ids[0], High: f.ids[3]}, teams[1].Key)
	assert.Equal(t, 1, teams[1].Losses)

	history, err := f.store.GetRatingHistory(ctx, f.ids[1])
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "2024-02-01", history[0].MatchDate)
	assert.Greater(t, history[0].Delta, 0.0)
}

func TestRecordMatch_RejectedWithoutStateChange(t *testing.T) {
	tests := []struct {
		name   string
		sub    func(ids []int64) Submission
		err    error
		reason string
	}{
		{
			name: "duplicate player across teams",
			sub: func(ids []int64) Submission {
				return Submission{Team1: [2]int64{ids[0], ids[0]}, Team2: [2]int64{ids[1], ids[2]}, Team1Points: 21, Team2Points: 10}
			},
			err:    rating.ErrDuplicatePlayer,
			reason: metrics.ReasonDuplicatePlayer,
		},
		{
			name: "tie",
			sub: func(ids []int64) Submission {
				return Submission{Team1: [2]int64{ids[0], ids[1]}, Team2: [2]int64{ids[2], ids[3]}, Team1Points: 21, Team2Points: 21}
			},
			err:    rating.ErrTiedMatch,
			reason: metrics.ReasonTie,
		},
		{
			name: "negative points",
			sub: func(ids []int64) Submission {
				return Submission{Team1: [2]int64{ids[0], ids[1]}, Team2: [2]int64{ids[2], ids[3]}, Team1Points: 21, Team2Points: -1}
			},
			err:    rating.ErrInvalidPoints,
			reason: metrics.ReasonInvalidPoints,
		},
		{
			name: "points above the cap",
			sub: func(ids []int64) Submission {
				return Submission{Team1: [2]int64{ids[0], ids[1]}, Team2: [2]int64{ids[2], ids[3]}, Team1Points: math.MaxInt64, Team2Points: 0}
			},
			err:    rating.ErrInvalidPoints,
			reason: metrics.ReasonInvalidPoints,
		},
		{
			name: "unknown player",
			sub: func(ids []int64) Submission {
				return Submission{Team1: [2]int64{ids[0], ids[1]}, Team2: [2]int64{ids[2], 999}, Team1Points: 21, Team2Points: 3}
			},
			err:    rating.ErrPlayerNotFound,
			reason: metrics.ReasonPlayerNotFound,
		},
		{
			name: "bad date",
			sub: func(ids []int64) Submission {
				return Submission{Team1: [2]int64{ids[0], ids[1]}, Team2: [2]int64{ids[2], ids[3]}, Team1Points: 21, Team2Points: 3, Date: "11/01/2024"}
			},
			err:    ErrInvalidDate,
			reason: metrics.ReasonInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			ctx := context.Background()
			before := f.players(t)

			record, err := f.rec.RecordMatch(ctx, tt.sub(f.ids), false)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.Nil(t, record)

			assert.Equal(t, before, f.players(t))
			teams, err := f.store.GetAllTeams(ctx)
			require.NoError(t, err)
			assert.Empty(t, teams)
			matches, err := f.store.GetAllMatches(ctx)
			require.NoError(t, err)
			assert.Empty(t, matches)

			assert.Equal(t, 1, f.metrics.MatchesRejected(tt.reason))
			assert.Equal(t, 0, f.metrics.MatchesRecorded())
			assert.Empty(t, f.pubsub.SendMessageCalls)
		})
	}
}

func TestRecordMatch_DryRun(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	before := f.players(t)

	record, err := f.rec.RecordMatch(ctx, Submission{
		Team1:       [2]int64{f.ids[0], f.ids[1]},
		Team2:       [2]int64{f.ids[2], f.ids[3]},
		Team1Points: 21,
		Team2Points: 0,
	}, true)
	require.NoError(t, err)
	assert.True(t, record.DryRun)
	assert.InDelta(t, 21.0, record.Result.Team1Delta, 1e-9)
	assert.Equal(t, "Cy & Di", record.TeamName(rating.TeamTwo))

	assert.Equal(t, before, f.players(t))
	_, err = f.store.GetMatch(ctx, record.Match.ID)
	assert.ErrorIs(t, err, ladder.ErrNotFound)
	assert.Empty(t, f.pubsub.SendMessageCalls)
	assert.Equal(t, 0, f.metrics.MatchesRecorded())
}

func TestRecordMatch_PublishFailureKeepsMatch(t *testing.T) {
	f := setup(t)
	f.pubsub.SendMessageFunc = func(topic pubsub.EventType, data any) error {
		return errors.New("pubsub unavailable")
	}

	record, err := f.rec.RecordMatch(context.Background(), Submission{
		Team1:       [2]int64{f.ids[0], f.ids[1]},
		Team2:       [2]int64{f.ids[2], f.ids[3]},
		Team1Points: 21,
		Team2Points: 19,
	}, false)
	require.NoError(t, err)

	_, err = f.store.GetMatch(context.Background(), record.Match.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0, f.metrics.EventsPublished())
}

func TestRecordMatch_RollsBackOnStoreFailure(t *testing.T) {
	store := ladder.NewMock()
	store.Tx.Ratings = map[int64]float64{1: 1200, 2: 1200, 3: 1200, 4: 1200}
	store.Tx.ApplyTeamUpdateFunc = func(ctx context.Context, key team.Key, update rating.TeamUpdate) error {
		return errors.New("disk full")
	}
	metr := metrics.NewMock()
	ps := pubsub.NewMock()
	rec := New(store, nil, metr, ps)

	_, err := rec.RecordMatch(context.Background(), Submission{
		Team1: [2]int64{1, 2}, Team2: [2]int64{3, 4}, Team1Points: 21, Team2Points: 5,
	}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, store.WithTxCalls)
	assert.Len(t, store.Tx.InsertMatchCalls, 1)
	assert.Empty(t, ps.SendMessageCalls)
	assert.Equal(t, 0, metr.MatchesRecorded())
}

func TestRecordMatch_DuplicateNeverOpensTransaction(t *testing.T) {
	store := ladder.NewMock()
	rec := New(store, nil, metrics.NewMock(), pubsub.NewMock())

	_, err := rec.RecordMatch(context.Background(), Submission{
		Team1: [2]int64{1, 1}, Team2: [2]int64{2, 3}, Team1Points: 21, Team2Points: 5,
	}, false)
	assert.ErrorIs(t, err, rating.ErrDuplicatePlayer)
	assert.Equal(t, 0, store.WithTxCalls)
}

func TestRecordMatch_Serialized(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sub := Submission{Team1: [2]int64{f.ids[0], f.ids[1]}, Team2: [2]int64{f.ids[2], f.ids[3]}, Team1Points: 21, Team2Points: i}
			if i%2 == 1 {
				sub.Team1Points, sub.Team2Points = i, 21
			}
			_, err := f.rec.RecordMatch(ctx, sub, false)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	players := f.players(t)
	total := 0.0
	for _, id := range f.ids {
		assert.Equal(t, 8, players[id].MatchesPlayed())
		total += players[id].Rating
	}
	assert.InDelta(t, 4*rating.DefaultRating, total, 1e-6, "rating pool is conserved")

	matches, err := f.store.GetAllMatches(ctx)
	require.NoError(t, err)
	assert.Len(t, matches, 8)
}

func TestHandleMatchRecorded(t *testing.T) {
	notif := notifier.NewMock()
	rec := New(ladder.NewMock(), notif, metrics.NewMock(), pubsub.NewMock())
	record := &ladder.MatchRecord{Match: ladder.Match{ID: "m1"}}

	require.NoError(t, rec.HandleMatchRecorded(record, false))
	require.Len(t, notif.SendMatchResultCalls, 1)
	assert.Same(t, record, notif.SendMatchResultCalls[0].Record)

	notif.SendMatchResultFunc = func(record *ladder.MatchRecord, dryRun bool) error {
		return errors.New("slack down")
	}
	assert.Error(t, rec.HandleMatchRecorded(record, false))

	withoutSlack := New(ladder.NewMock(), nil, metrics.NewMock(), pubsub.NewMock())
	assert.NoError(t, withoutSlack.HandleMatchRecorded(record, false))
}
