// Package chunk projects a decoded NBT tag tree into strongly typed
// chunk records, decoding palette-indexed block/biome grids along
// the way.
package chunk

import "github.com/mcanvil/reader/internal/nbt"

// BlockCellCount is the number of block cells in one 16x16x16 section.
const BlockCellCount = 4096

// BiomeCellCount is the number of biome cells in one section (4x4x4
// biome cube grid).
const BiomeCellCount = 64

// BlockState is one entry of a section's block-state palette.
type BlockState struct {
	Name       string
	Properties map[string]string
}

// BlockStates is a section's decoded block grid: the deduplicated
// palette plus one palette index per of the 4096 block cells.
type BlockStates struct {
	Palette []BlockState
	Data    [BlockCellCount]uint32
}

// Biomes is a section's decoded biome grid: the deduplicated palette
// plus one palette index per of the 64 biome cells.
type Biomes struct {
	Palette []string
	Data    [BiomeCellCount]uint32
}

// Section is one 16-high horizontal slice of a chunk.
type Section struct {
	Y             int8
	BlockStates   BlockStates
	Biomes        Biomes
	BlockLight    [4096]uint8 // one nibble value (0-15) per cell, 0 if absent
	SkyLight      [4096]uint8
	HasBlockLight bool
	HasSkyLight   bool
}

// BlockEntity is a captured (id, properties) pair from the chunk's
// block_entities list. Properties retains the full decoded tag so
// callers can pull out whatever fields they need without this
// package having to model every block entity type.
type BlockEntity struct {
	ID         string
	Properties nbt.Tag
}

// Heightmaps holds the six named 256-entry (16x16) surface height
// grids tracked per chunk.
type Heightmaps struct {
	MotionBlocking         [256]uint16
	MotionBlockingNoLeaves [256]uint16
	OceanFloor             [256]uint16
	OceanFloorWG           [256]uint16
	WorldSurface           [256]uint16
	WorldSurfaceWG         [256]uint16
}

// StructureReference is one packed chunk coordinate recorded under a
// structure's References compound.
type StructureReference struct {
	ChunkX, ChunkZ int32
}

// StructureStart is one entry of the structures.starts compound: just
// enough to identify the structure without interpreting its
// semantics.
type StructureStart struct {
	Key    string // the compound's child name this start was read from
	ID     string
	ChunkX int32
	ChunkZ int32
	Raw    nbt.Tag
}

// Structures is the chunk's structures compound, split into cross-
// chunk references and local structure starts.
type Structures struct {
	References map[string][]StructureReference
	Starts     []StructureStart
}

// Chunk is the fully projected record for one Anvil chunk.
type Chunk struct {
	DataVersion   int32
	XPos          int32
	ZPos          int32
	YPos          int32
	Status        string
	LastUpdate    int64
	InhabitedTime int64

	Sections      []Section
	BlockEntities []BlockEntity
	Heightmaps    Heightmaps
	Structures    Structures

	// Raw retains the less commonly used fields from §4.6 that the
	// core records without interpreting: Lights, isLightOn,
	// PostProcessing, CarvingMasks, block_ticks, fluid_ticks, entities.
	Raw map[string]nbt.Tag

	// UnknownFields lists top-level child names the projector did not
	// recognize. These are warnings, not failures: the format evolves
	// across game versions.
	UnknownFields []string
}

// WorldBlockOrigin returns the world coordinates of this chunk's
// northwest block, given the region coordinates it was read from.
func WorldBlockOrigin(regionX, regionZ, cx, cz int32) (x, z int32) {
	return regionX*512 + cx*16, regionZ*512 + cz*16
}
