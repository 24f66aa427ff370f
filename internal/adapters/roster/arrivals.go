package roster

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

// DecodeShip parses one JSON ship record, as used for arrivals in
// continuous mode
func DecodeShip(line []byte) (station.Ship, error) {
	var rec ShipRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return station.Ship{}, fmt.Errorf("invalid ship record: %w", err)
	}
	if err := validator.New().Struct(rec); err != nil {
		return station.Ship{}, fmt.Errorf("invalid ship record: %w", err)
	}
	return rec.ToShip(), nil
}

// StreamArrivals reads one JSON ship record per line from r and sends the
// ships on out until EOF or ctx is done. Blank lines and lines starting
// with '#' are ignored; malformed lines go to onError and are skipped.
// out is closed on return.
func StreamArrivals(ctx context.Context, r io.Reader, out chan<- station.Ship, onError func(error)) error {
	defer close(out)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		ship, err := DecodeShip([]byte(line))
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("line %d: %w", lineNo, err))
			}
			continue
		}

		select {
		case out <- ship:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}
