package mapgrid

import (
	"encoding/binary"
	"fmt"
	"io"
)

// numLayers is the number of optional per-cell layer payloads a cell
// record's layer-present-flags byte may indicate, matching the client's
// four-layer isometric cell format (texture per layer).
const numLayers = 4

// LoadGrid parses a binary map file per the external map-file contract:
// a little-endian int32 width (maps are square, so height == width), a
// cell-texture section the server skips, an array of width*width cell
// records (cell-id int32, flags uint8, layer-present-flags uint8 plus one
// 4-byte payload per set layer bit), then a terrain/zone/area section the
// server also skips.
func LoadGrid(r io.Reader, cellWidth, cellHeight float64) (*Grid, error) {
	var width int32
	if err := binary.Read(r, binary.LittleEndian, &width); err != nil {
		return nil, fmt.Errorf("read map width: %w", err)
	}
	if width <= 0 {
		return nil, fmt.Errorf("invalid map width %d", width)
	}

	if err := skipTextureSection(r, width); err != nil {
		return nil, fmt.Errorf("skip texture section: %w", err)
	}

	grid := NewGrid(width, width, cellWidth, cellHeight)

	count := width * width
	for i := int32(0); i < count; i++ {
		var cellID int32
		if err := binary.Read(r, binary.LittleEndian, &cellID); err != nil {
			return nil, fmt.Errorf("read cell %d id: %w", i, err)
		}
		var flags uint8
		if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
			return nil, fmt.Errorf("read cell %d flags: %w", i, err)
		}
		var layerFlags uint8
		if err := binary.Read(r, binary.LittleEndian, &layerFlags); err != nil {
			return nil, fmt.Errorf("read cell %d layer flags: %w", i, err)
		}
		for layer := 0; layer < numLayers; layer++ {
			if layerFlags&(1<<uint(layer)) == 0 {
				continue
			}
			var payload [4]byte
			if _, err := io.ReadFull(r, payload[:]); err != nil {
				return nil, fmt.Errorf("read cell %d layer %d payload: %w", i, layer, err)
			}
		}
		grid.SetFlags(CellID(cellID), CellFlags(flags))
	}

	// Terrain/zone/area trailer is an external contract the server never
	// interprets; stop reading once every cell record has been consumed.
	return grid, nil
}

// skipTextureSection discards the texture table that precedes the cell
// array. The section is one length-prefixed string per map row.
func skipTextureSection(r io.Reader, width int32) error {
	for row := int32(0); row < width; row++ {
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return fmt.Errorf("row %d texture length: %w", row, err)
		}
		if n == 0 {
			continue
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return fmt.Errorf("row %d texture bytes: %w", row, err)
		}
	}
	return nil
}
