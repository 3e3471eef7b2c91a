package world

import "github.com/dreadmyst/server/internal/entity"

// cellGrid is a cell-bucketed index of GUIDs by map and position, with a
// configurable cell size over any GUID. A 3x3 neighbourhood of cells
// fully covers a visibility radius <= cellSize, so GetNearby only needs
// to scan 9 buckets.
type cellGrid struct {
	cellSize float64
	cells    map[cellKey]map[entity.GUID]struct{}
}

type cellKey struct {
	mapID  int
	cx, cy int64
}

func newCellGrid(cellSize float64) *cellGrid {
	if cellSize <= 0 {
		cellSize = 20
	}
	return &cellGrid{cellSize: cellSize, cells: make(map[cellKey]map[entity.GUID]struct{})}
}

func (g *cellGrid) coord(v float64) int64 {
	return int64(v / g.cellSize)
}

func (g *cellGrid) key(mapID int, x, y float64) cellKey {
	return cellKey{mapID: mapID, cx: g.coord(x), cy: g.coord(y)}
}

func (g *cellGrid) Add(guid entity.GUID, mapID int, x, y float64) {
	k := g.key(mapID, x, y)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[entity.GUID]struct{})
		g.cells[k] = cell
	}
	cell[guid] = struct{}{}
}

func (g *cellGrid) Remove(guid entity.GUID, mapID int, x, y float64) {
	k := g.key(mapID, x, y)
	cell := g.cells[k]
	if cell == nil {
		return
	}
	delete(cell, guid)
	if len(cell) == 0 {
		delete(g.cells, k)
	}
}

func (g *cellGrid) Move(guid entity.GUID, mapID int, oldX, oldY, newX, newY float64) {
	oldK := g.key(mapID, oldX, oldY)
	newK := g.key(mapID, newX, newY)
	if oldK == newK {
		return
	}
	g.Remove(guid, mapID, oldX, oldY)
	g.Add(guid, mapID, newX, newY)
}

// GetNearby returns every GUID in the 3x3 cell neighbourhood around
// (x, y). Callers apply their own fine-grained distance filter.
func (g *cellGrid) GetNearby(mapID int, x, y float64) []entity.GUID {
	cx, cy := g.coord(x), g.coord(y)
	var result []entity.GUID
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			k := cellKey{mapID: mapID, cx: cx + dx, cy: cy + dy}
			for guid := range g.cells[k] {
				result = append(result, guid)
			}
		}
	}
	return result
}
