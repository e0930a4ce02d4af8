package chunk

import (
	"fmt"

	"github.com/mcanvil/reader/internal/nbt"
)

// heightmapBits is the fixed bits-per-entry Anvil uses for all six
// heightmap grids, wide enough for any legal world height.
const heightmapBits = 9

const heightmapCellCount = 256

func projectHeightmaps(t nbt.Tag) (Heightmaps, error) {
	var hm Heightmaps
	fields := t.Map()

	targets := map[string]*[256]uint16{
		"MOTION_BLOCKING":           &hm.MotionBlocking,
		"MOTION_BLOCKING_NO_LEAVES": &hm.MotionBlockingNoLeaves,
		"OCEAN_FLOOR":               &hm.OceanFloor,
		"OCEAN_FLOOR_WG":            &hm.OceanFloorWG,
		"WORLD_SURFACE":             &hm.WorldSurface,
		"WORLD_SURFACE_WG":          &hm.WorldSurfaceWG,
	}

	for name, dst := range targets {
		tag, ok := fields[name]
		if !ok {
			continue
		}
		longs, err := tag.AsLongArray()
		if err != nil {
			return hm, fmt.Errorf("%s: %w", name, err)
		}
		grid, err := UnpackGrid(heightmapBits, heightmapCellCount, longs, 1<<heightmapBits)
		if err != nil {
			return hm, fmt.Errorf("%s: %w", name, err)
		}
		for i, v := range grid {
			dst[i] = uint16(v)
		}
	}
	return hm, nil
}
