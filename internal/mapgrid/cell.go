// Package mapgrid implements the per-map walkability/line-of-sight grid
// and the on-demand map loader/cache that sits in front of it.
package mapgrid

// CellFlags is the 8-bit flag set carried by every cell.
type CellFlags uint8

const (
	Unwalkable CellFlags = 1 << 0
	BlocksLOS  CellFlags = 1 << 1
)

func (f CellFlags) Walkable() bool { return f&Unwalkable == 0 }
func (f CellFlags) BlocksLineOfSight() bool { return f&BlocksLOS != 0 }

// CellID identifies a single cell within a map's flat cell array.
type CellID int32

// Grid is a square cell grid over one map. Out-of-bounds cells report
// unwalkable and line-of-sight-blocking.
type Grid struct {
	Width  int32
	Height int32

	// BaseCellWidth/BaseCellHeight convert a world position to a cell;
	// the Manager passes its configured cell size for every map (NewGrid
	// falls back to 1.0 for a non-positive value).
	BaseCellWidth  float64
	BaseCellHeight float64

	cells []CellFlags
}

func NewGrid(width, height int32, cellWidth, cellHeight float64) *Grid {
	if cellWidth <= 0 {
		cellWidth = 1
	}
	if cellHeight <= 0 {
		cellHeight = 1
	}
	return &Grid{
		Width:          width,
		Height:         height,
		BaseCellWidth:  cellWidth,
		BaseCellHeight: cellHeight,
		cells:          make([]CellFlags, width*height),
	}
}

func (g *Grid) inBounds(id CellID) bool {
	return id >= 0 && int32(id) < g.Width*g.Height
}

// SetFlags sets a cell's flag byte. Out-of-range ids are ignored.
func (g *Grid) SetFlags(id CellID, flags CellFlags) {
	if !g.inBounds(id) {
		return
	}
	g.cells[id] = flags
}

// IsWalkable reports whether id is in-bounds and not flagged unwalkable.
func (g *Grid) IsWalkable(id CellID) bool {
	if !g.inBounds(id) {
		return false
	}
	return g.cells[id].Walkable()
}

// BlocksLineOfSight reports whether id is out-of-bounds or flagged as blocking LOS.
func (g *Grid) BlocksLineOfSight(id CellID) bool {
	if !g.inBounds(id) {
		return true
	}
	return g.cells[id].BlocksLineOfSight()
}

// CellIDFromCoords converts grid coordinates to a cell id.
func (g *Grid) CellIDFromCoords(cx, cy int32) CellID {
	return CellID(cy*g.Width + cx)
}

// CoordsFromCellID converts a cell id back to grid coordinates.
func (g *Grid) CoordsFromCellID(id CellID) (cx, cy int32) {
	if g.Width == 0 {
		return 0, 0
	}
	cx = int32(id) % g.Width
	cy = int32(id) / g.Width
	return cx, cy
}

// CellIDFromWorldPos converts a floating-point world position to a cell id
// by dividing by the map's configured base cell width/height.
func (g *Grid) CellIDFromWorldPos(x, y float64) CellID {
	cx := int32(x / g.BaseCellWidth)
	cy := int32(y / g.BaseCellHeight)
	return g.CellIDFromCoords(cx, cy)
}
