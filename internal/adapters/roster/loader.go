package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

// Paths locates the roster files
type Paths struct {
	Ships string
	Bays  string
	// Order is optional; empty means roster order
	Order string
}

// FileLoader reads rosters from a filesystem. The format is chosen by file
// extension: .yaml and .yml are YAML, anything else is JSON.
type FileLoader struct {
	fs       afero.Fs
	paths    Paths
	validate *validator.Validate
}

// NewFileLoader creates a loader over fs
func NewFileLoader(fs afero.Fs, paths Paths) *FileLoader {
	return &FileLoader{
		fs:       fs,
		paths:    paths,
		validate: validator.New(),
	}
}

// LoadBays reads and converts the bay roster
func (l *FileLoader) LoadBays(ctx context.Context) ([]station.Bay, error) {
	var records []BayRecord
	if err := l.decode(ctx, l.paths.Bays, &records); err != nil {
		return nil, err
	}

	bays := make([]station.Bay, 0, len(records))
	var errs []error
	for i, rec := range records {
		if err := l.validate.Struct(rec); err != nil {
			errs = append(errs, fmt.Errorf("%s: bay #%d: %w", l.paths.Bays, i+1, err))
			continue
		}
		bay, err := rec.ToBay()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", l.paths.Bays, err))
			continue
		}
		bays = append(bays, bay)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return bays, nil
}

// LoadShips reads and converts the ship roster
func (l *FileLoader) LoadShips(ctx context.Context) ([]station.Ship, error) {
	var records []ShipRecord
	if err := l.decode(ctx, l.paths.Ships, &records); err != nil {
		return nil, err
	}

	ships := make([]station.Ship, 0, len(records))
	var errs []error
	for i, rec := range records {
		if err := l.validate.Struct(rec); err != nil {
			errs = append(errs, fmt.Errorf("%s: ship #%d: %w", l.paths.Ships, i+1, err))
			continue
		}
		ships = append(ships, rec.ToShip())
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return ships, nil
}

// LoadOrder reads the optional order file: a list of federation ids
func (l *FileLoader) LoadOrder(ctx context.Context) ([]int, error) {
	if l.paths.Order == "" {
		return nil, nil
	}

	var ids []int
	if err := l.decode(ctx, l.paths.Order, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (l *FileLoader) decode(ctx context.Context, path string, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("roster file %s does not exist", path)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, out)
	default:
		err = json.Unmarshal(data, out)
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
