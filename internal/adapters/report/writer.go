package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

const (
	stationLogName = "station.txt"
	summaryName    = "summary.txt"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Writer keeps one text report per dispatched ship, named
// NNN-<ship name>.txt after the dispatch index, plus a station log for
// run-level events and a summary written when the run finishes.
//
// Publish is called from the dispatch loop and every worker, so file
// appends are serialized. Thread-safe.
type Writer struct {
	mu     sync.Mutex
	fs     afero.Fs
	dir    string
	logger *zap.Logger
	files  map[int]string
}

// NewWriter creates a report writer rooted at dir
func NewWriter(fs afero.Fs, dir string, logger *zap.Logger) (*Writer, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report dir %s: %w", dir, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		fs:     fs,
		dir:    dir,
		logger: logger,
		files:  make(map[int]string),
	}, nil
}

// Publish implements station.EventSink. Write errors are logged; a broken
// report must not stall the dispatch loop.
func (w *Writer) Publish(_ context.Context, event station.ServiceEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	name := stationLogName
	if event.ShipID != 0 {
		name = w.shipFileUnsafe(event)
	}
	if err := w.appendUnsafe(name, formatLine(event)); err != nil {
		w.logger.Error("write report", zap.String("file", name), zap.Error(err))
	}
}

// FinishRun writes the run summary
func (w *Writer) FinishRun(_ context.Context, summary station.RunSummary) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Station:   %s\n", summary.Station)
	fmt.Fprintf(&b, "Run:       %s\n", summary.RunID)
	fmt.Fprintf(&b, "Status:    %s\n", summary.Status)
	fmt.Fprintf(&b, "Ships:     %d\n", summary.Total)
	fmt.Fprintf(&b, "Serviced:  %d\n", summary.Serviced)
	fmt.Fprintf(&b, "Failed:    %d\n", summary.Failed)
	fmt.Fprintf(&b, "Cancelled: %d\n", summary.Cancelled)
	fmt.Fprintf(&b, "Duration:  %s\n", summary.Duration.Round(time.Millisecond))

	path := filepath.Join(w.dir, summaryName)
	if err := afero.WriteFile(w.fs, path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// Files returns the report file of every ship seen so far, by ship id
func (w *Writer) Files() map[int]string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make(map[int]string, len(w.files))
	for id, name := range w.files {
		out[id] = name
	}
	return out
}

func (w *Writer) shipFileUnsafe(event station.ServiceEvent) string {
	if name, ok := w.files[event.ShipID]; ok {
		return name
	}
	shipName := unsafeChars.ReplaceAllString(strings.TrimSpace(event.ShipName), "_")
	if shipName == "" {
		shipName = fmt.Sprintf("ship-%d", event.ShipID)
	}
	// events raised outside a dispatch carry no sequence
	name := shipName + ".txt"
	if event.Sequence > 0 {
		name = fmt.Sprintf("%03d-%s.txt", event.Sequence, shipName)
	}
	w.files[event.ShipID] = name
	return name
}

func (w *Writer) appendUnsafe(name, line string) error {
	f, err := w.fs.OpenFile(filepath.Join(w.dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func formatLine(e station.ServiceEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", e.Timestamp.Format("2006-01-02 15:04:05"), e.Level(), e.Kind)
	if e.DockID != 0 {
		fmt.Fprintf(&b, " bay=%d", e.DockID)
	}
	if e.Stage != "" {
		fmt.Fprintf(&b, " stage=%s", e.Stage)
	}
	if e.ErrorTag != "" {
		fmt.Fprintf(&b, " error=%s", e.ErrorTag)
	}
	fmt.Fprintf(&b, ": %s\n", e.Message)
	return b.String()
}
