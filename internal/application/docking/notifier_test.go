package docking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

func dockedFixture(t *testing.T) (*fixture, *CompletionNotifier) {
	t.Helper()

	ship := idleShip(1, station.RaceHuman, station.ClassPersonal)
	f := newFixture(t, []station.Bay{openBay(1), openBay(2)}, []station.Ship{ship, idleShip(2, station.RaceHuman, station.ClassPersonal)})

	sel, err := f.catalog.Acquire(&ship)
	require.NoError(t, err)
	require.Equal(t, 1, sel.Bay.DockID)
	require.NoError(t, f.registry.MarkDocked(1, 1))

	return f, NewCompletionNotifier(f.catalog, f.registry, f.recorder, f.clock)
}

func TestCompletionNotifier_ReleasesBayAndUndocks(t *testing.T) {
	f, notifier := dockedFixture(t)

	changed, err := notifier.OnServiceComplete(context.Background(), 1, 1)

	require.NoError(t, err)
	assert.True(t, changed)

	bay, _ := f.catalog.Bay(1)
	assert.False(t, bay.InUse)
	assert.Empty(t, bay.OccupyingShipName)

	ship, _ := f.registry.Get(1)
	assert.False(t, ship.Docked)
	assert.Zero(t, ship.AssignedBayID)
	assert.True(t, ship.ServiceComplete)

	assert.Equal(t, []station.EventKind{
		station.EventServiceComplete,
		station.EventUndocked,
		station.EventBayReleased,
	}, f.kinds(1))
}

func TestCompletionNotifier_IsIdempotent(t *testing.T) {
	f, notifier := dockedFixture(t)

	first, err := notifier.OnServiceComplete(context.Background(), 1, 1)
	require.NoError(t, err)
	second, err := notifier.OnServiceComplete(context.Background(), 1, 1)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
	assert.Len(t, f.recorder.OfKind(station.EventBayReleased), 1)
	inUse, free := f.catalog.CountInUse()
	assert.Equal(t, 0, inUse)
	assert.Equal(t, 2, free)
}

// slowSink stalls on service_complete so concurrent completions overlap
type slowSink struct {
	recorder *station.EventRecorder
}

func (s slowSink) Publish(ctx context.Context, e station.ServiceEvent) {
	if e.Kind == station.EventServiceComplete {
		time.Sleep(time.Millisecond)
	}
	s.recorder.Publish(ctx, e)
}

func TestCompletionNotifier_ConcurrentDoubleCompletion(t *testing.T) {
	for i := 0; i < 50; i++ {
		f, _ := dockedFixture(t)
		notifier := NewCompletionNotifier(f.catalog, f.registry, slowSink{recorder: f.recorder}, f.clock)

		var (
			wg      sync.WaitGroup
			results [2]bool
			errs    [2]error
		)
		for j := range results {
			wg.Add(1)
			go func(j int) {
				defer wg.Done()
				results[j], errs[j] = notifier.OnServiceComplete(context.Background(), 1, 1)
			}(j)
		}
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])
		assert.True(t, results[0] != results[1], "exactly one call reports the release")
		assert.Len(t, f.recorder.OfKind(station.EventServiceComplete), 1)
		assert.Len(t, f.recorder.OfKind(station.EventUndocked), 1)
		assert.Len(t, f.recorder.OfKind(station.EventBayReleased), 1)
	}
}

func TestCompletionNotifier_DirectCompletionKeepsDispatchSequence(t *testing.T) {
	f, notifier := dockedFixture(t)
	notifier.track(1, 7)

	_, err := notifier.OnServiceComplete(context.Background(), 1, 1)
	require.NoError(t, err)

	events := f.recorder.Filter(func(e station.ServiceEvent) bool { return e.ShipID == 1 })
	require.Len(t, events, 3)
	for _, e := range events {
		assert.Equal(t, 7, e.Sequence, e.Kind)
	}
	assert.Empty(t, notifier.sequences)
}

func TestCompletionNotifier_RefusesForeignRelease(t *testing.T) {
	f, notifier := dockedFixture(t)

	changed, err := notifier.OnServiceComplete(context.Background(), 1, 2)

	var ownership *shared.BayOwnershipError
	require.ErrorAs(t, err, &ownership)
	assert.False(t, changed)
	assert.Equal(t, 1, ownership.OccupantID)

	bay, _ := f.catalog.Bay(1)
	assert.True(t, bay.InUse, "bay stays with its occupant")
	ship, _ := f.registry.Get(1)
	assert.True(t, ship.Docked)
}

func TestCompletionNotifier_UnknownIDs(t *testing.T) {
	_, notifier := dockedFixture(t)

	_, err := notifier.OnServiceComplete(context.Background(), 1, 99)
	var shipErr *shared.ShipNotFoundError
	assert.ErrorAs(t, err, &shipErr)

	_, err = notifier.OnServiceComplete(context.Background(), 42, 1)
	var bayErr *shared.BayNotFoundError
	assert.ErrorAs(t, err, &bayErr)
}

func TestCompletionNotifier_FailedOutcomeIsNotServiced(t *testing.T) {
	f, notifier := dockedFixture(t)
	outcome := station.ServiceOutcome{Sequence: 1, ShipID: 1, DockID: 1, Status: station.OutcomeCancelled, Reason: "stopped"}

	changed, err := notifier.Notify(context.Background(), Completion{DockID: 1, ShipID: 1, Outcome: outcome})

	require.NoError(t, err)
	assert.True(t, changed)
	ship, _ := f.registry.Get(1)
	assert.False(t, ship.ServiceComplete)

	failed := f.recorder.OfKind(station.EventShipFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, shared.ErrorTagCancelled, failed[0].ErrorTag)
	assert.Empty(t, f.recorder.OfKind(station.EventServiceComplete))
}
