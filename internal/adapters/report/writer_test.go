package report

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

var epoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestWriter_OneFilePerShip(t *testing.T) {
	fs := afero.NewMemMapFs()
	w, err := NewWriter(fs, "Reports", nil)
	require.NoError(t, err)
	ctx := context.Background()

	w.Publish(ctx, station.ServiceEvent{Timestamp: epoch, Kind: station.EventRunStarted, Message: "run started"})
	w.Publish(ctx, station.ServiceEvent{Timestamp: epoch, Kind: station.EventDequeued, Sequence: 1, ShipID: 74205, ShipName: "USS Defiant", Message: "dequeued"})
	w.Publish(ctx, station.ServiceEvent{Timestamp: epoch, Kind: station.EventDequeued, Sequence: 2, ShipID: 20, ShipName: "Rio/Grande", Message: "dequeued"})
	w.Publish(ctx, station.ServiceEvent{Timestamp: epoch.Add(time.Minute), Kind: station.EventStageCompleted, Sequence: 1, ShipID: 74205, ShipName: "USS Defiant", DockID: 3, Stage: station.StageRefuel, Message: "refuel complete"})
	w.Publish(ctx, station.ServiceEvent{Timestamp: epoch, Kind: station.EventShipFailed, Sequence: 2, ShipID: 20, ShipName: "Rio/Grande", ErrorTag: shared.ErrorTagUnrecognizedRace, Message: "race not recognized"})

	files := w.Files()
	assert.Equal(t, "001-USS_Defiant.txt", files[74205])
	assert.Equal(t, "002-Rio_Grande.txt", files[20])

	defiant := readFile(t, fs, filepath.Join("Reports", "001-USS_Defiant.txt"))
	lines := strings.Split(strings.TrimSpace(defiant), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2026-03-14 09:01:00 [INFO] stage_completed bay=3 stage=refuel: refuel complete", lines[1])

	rio := readFile(t, fs, filepath.Join("Reports", "002-Rio_Grande.txt"))
	assert.Contains(t, rio, "[ERROR] ship_failed error=unrecognized-race: race not recognized")

	assert.Contains(t, readFile(t, fs, filepath.Join("Reports", "station.txt")), "run_started: run started")
}

func TestWriter_UnsequencedShipHasNoPrefix(t *testing.T) {
	fs := afero.NewMemMapFs()
	w, err := NewWriter(fs, "Reports", nil)
	require.NoError(t, err)

	w.Publish(context.Background(), station.ServiceEvent{Timestamp: epoch, Kind: station.EventServiceComplete, ShipID: 9, ShipName: "Nomad", DockID: 2, Message: "service complete"})

	assert.Equal(t, "Nomad.txt", w.Files()[9])
	assert.Contains(t, readFile(t, fs, filepath.Join("Reports", "Nomad.txt")), "service_complete bay=2: service complete")
}

func TestWriter_ConcurrentPublish(t *testing.T) {
	fs := afero.NewMemMapFs()
	w, err := NewWriter(fs, "r", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for ship := 1; ship <= 8; ship++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				w.Publish(context.Background(), station.ServiceEvent{Kind: station.EventStageStarted, Sequence: id, ShipID: id, ShipName: "ship", Message: "tick"})
			}
		}(ship)
	}
	wg.Wait()

	for id, name := range w.Files() {
		body := readFile(t, fs, filepath.Join("r", name))
		assert.Len(t, strings.Split(strings.TrimSpace(body), "\n"), 25, "ship %d", id)
	}
}

func TestWriter_FinishRunWritesSummary(t *testing.T) {
	fs := afero.NewMemMapFs()
	w, err := NewWriter(fs, "Reports", nil)
	require.NoError(t, err)

	err = w.FinishRun(context.Background(), station.RunSummary{
		RunID: "ds9-1", Station: "DS9", Status: shared.LifecycleStatusCompleted,
		Total: 4, Serviced: 3, Failed: 1, Duration: 2 * time.Second,
	})
	require.NoError(t, err)

	summary := readFile(t, fs, filepath.Join("Reports", "summary.txt"))
	assert.Contains(t, summary, "Status:    COMPLETED")
	assert.Contains(t, summary, "Serviced:  3")
	assert.Contains(t, summary, "Duration:  2s")
}
