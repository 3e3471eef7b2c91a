package mapgrid

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Manager loads map grids on demand from a directory of binary map files
// and caches them for the life of the process. NewManager loads nothing;
// Preload walks a list of map ids up front so start zones are resident
// before the first player connects.
type Manager struct {
	dir  string
	log  *zap.Logger
	grids map[int]*Grid

	cellWidth, cellHeight float64
}

func NewManager(dir string, cellWidth, cellHeight float64, log *zap.Logger) *Manager {
	return &Manager{
		dir:        dir,
		log:        log,
		grids:      make(map[int]*Grid),
		cellWidth:  cellWidth,
		cellHeight: cellHeight,
	}
}

// Preload loads every map id in ids up front, returning the first error
// encountered (start-up prerequisite failures are fatal).
func (m *Manager) Preload(ids []int) error {
	for _, id := range ids {
		if _, err := m.Get(id); err != nil {
			return fmt.Errorf("preload map %d: %w", id, err)
		}
	}
	return nil
}

// Get returns the grid for mapID, loading and caching it on first access.
func (m *Manager) Get(mapID int) (*Grid, error) {
	if g, ok := m.grids[mapID]; ok {
		return g, nil
	}
	path := filepath.Join(m.dir, fmt.Sprintf("%d.map", mapID))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open map %d: %w", mapID, err)
	}
	defer f.Close()

	grid, err := LoadGrid(f, m.cellWidth, m.cellHeight)
	if err != nil {
		return nil, fmt.Errorf("load map %d: %w", mapID, err)
	}
	m.grids[mapID] = grid
	m.log.Info("loaded map", zap.Int("map_id", mapID), zap.Int32("width", grid.Width))
	return grid, nil
}
