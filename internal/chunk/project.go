package chunk

import (
	"errors"
	"fmt"

	"github.com/mcanvil/reader/internal/nbt"
)

// MinSupportedDataVersion is the lowest DataVersion this projector
// accepts. Anvil switched block/biome palettes to the non-spanning,
// fixed-width packing this spec implements in snapshot 20w17a
// (DataVersion 2529); chunks saved before it use the older packing
// that lets an entry span a long boundary, which this core does not
// decode (see SPEC_FULL.md §9 / DESIGN.md).
const MinSupportedDataVersion = 2529

// ErrUnsupportedDataVersion is returned by Project for a chunk whose
// DataVersion predates the non-spanning palette packing.
var ErrUnsupportedDataVersion = errors.New("chunk: DataVersion predates supported Anvil palette packing")

// MissingRequiredFieldError reports that a required top-level or
// section field was absent from the NBT tree.
type MissingRequiredFieldError struct{ Field string }

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("chunk: missing required field %q", e.Field)
}

func missingField(name string) error { return &MissingRequiredFieldError{Field: name} }

// knownTopLevelFields lists the root compound children this
// projector interprets; anything else is recorded in
// Chunk.UnknownFields instead of aborting projection.
var knownTopLevelFields = map[string]bool{
	"DataVersion": true, "xPos": true, "yPos": true, "zPos": true,
	"Status": true, "LastUpdate": true, "InhabitedTime": true,
	"sections": true, "block_entities": true, "Heightmaps": true,
	"Lights": true, "isLightOn": true, "PostProcessing": true,
	"CarvingMasks": true, "block_ticks": true, "fluid_ticks": true,
	"entities": true, "structures": true,
}

var rawFields = []string{
	"Lights", "isLightOn", "PostProcessing", "CarvingMasks",
	"block_ticks", "fluid_ticks", "entities",
}

// Project maps the root Compound tag of a decompressed chunk into a
// Chunk. root must be the chunk's top-level tag (an NBT Compound).
func Project(root nbt.Tag) (*Chunk, error) {
	if root.ID != nbt.IDCompound {
		return nil, fmt.Errorf("chunk: root tag is not a Compound (got %s)", root.ID)
	}
	fields := root.Map()

	dataVersionTag, ok := fields["DataVersion"]
	if !ok {
		return nil, missingField("DataVersion")
	}
	dataVersion, err := dataVersionTag.AsInt()
	if err != nil {
		return nil, fmt.Errorf("chunk: DataVersion: %w", err)
	}
	if dataVersion < MinSupportedDataVersion {
		return nil, fmt.Errorf("%w: %d < %d", ErrUnsupportedDataVersion, dataVersion, MinSupportedDataVersion)
	}

	c := &Chunk{DataVersion: dataVersion, Raw: make(map[string]nbt.Tag)}

	if c.XPos, err = requireInt(fields, "xPos"); err != nil {
		return nil, err
	}
	if c.YPos, err = requireInt(fields, "yPos"); err != nil {
		return nil, err
	}
	if c.ZPos, err = requireInt(fields, "zPos"); err != nil {
		return nil, err
	}
	if status, ok := fields["Status"]; ok {
		if c.Status, err = status.AsString(); err != nil {
			return nil, fmt.Errorf("chunk: Status: %w", err)
		}
	}
	if lu, ok := fields["LastUpdate"]; ok {
		if c.LastUpdate, err = lu.AsLong(); err != nil {
			return nil, fmt.Errorf("chunk: LastUpdate: %w", err)
		}
	}
	if it, ok := fields["InhabitedTime"]; ok {
		if c.InhabitedTime, err = it.AsLong(); err != nil {
			return nil, fmt.Errorf("chunk: InhabitedTime: %w", err)
		}
	}

	if sectionsTag, ok := fields["sections"]; ok {
		list, err := sectionsTag.AsList()
		if err != nil {
			return nil, fmt.Errorf("chunk: sections: %w", err)
		}
		for i, elem := range list.Elems {
			if elem.ID == nbt.IDEnd {
				continue
			}
			sec, err := projectSection(elem)
			if err != nil {
				return nil, fmt.Errorf("chunk: section %d: %w", i, err)
			}
			c.Sections = append(c.Sections, sec)
		}
	}

	if beTag, ok := fields["block_entities"]; ok {
		list, err := beTag.AsList()
		if err != nil {
			return nil, fmt.Errorf("chunk: block_entities: %w", err)
		}
		for _, elem := range list.Elems {
			if elem.ID == nbt.IDEnd {
				continue
			}
			be, err := projectBlockEntity(elem)
			if err != nil {
				return nil, fmt.Errorf("chunk: block entity: %w", err)
			}
			c.BlockEntities = append(c.BlockEntities, be)
		}
	}

	if hmTag, ok := fields["Heightmaps"]; ok {
		if c.Heightmaps, err = projectHeightmaps(hmTag); err != nil {
			return nil, fmt.Errorf("chunk: Heightmaps: %w", err)
		}
	}

	if stTag, ok := fields["structures"]; ok {
		if c.Structures, err = projectStructures(stTag); err != nil {
			return nil, fmt.Errorf("chunk: structures: %w", err)
		}
	}

	for _, name := range rawFields {
		if tag, ok := fields[name]; ok {
			c.Raw[name] = tag
		}
	}

	for name := range fields {
		if !knownTopLevelFields[name] {
			c.UnknownFields = append(c.UnknownFields, name)
		}
	}

	return c, nil
}

func requireInt(fields map[string]nbt.Tag, name string) (int32, error) {
	tag, ok := fields[name]
	if !ok {
		return 0, missingField(name)
	}
	v, err := tag.AsInt()
	if err != nil {
		return 0, fmt.Errorf("chunk: %s: %w", name, err)
	}
	return v, nil
}

func projectSection(t nbt.Tag) (Section, error) {
	var sec Section
	fields := t.Map()

	if yTag, ok := fields["Y"]; ok {
		y, err := yTag.AsByte()
		if err != nil {
			return sec, fmt.Errorf("Y: %w", err)
		}
		sec.Y = y
	}

	if bsTag, ok := fields["block_states"]; ok {
		bs, err := projectBlockStates(bsTag)
		if err != nil {
			return sec, fmt.Errorf("block_states: %w", err)
		}
		sec.BlockStates = bs
	}

	if bTag, ok := fields["biomes"]; ok {
		b, err := projectBiomes(bTag)
		if err != nil {
			return sec, fmt.Errorf("biomes: %w", err)
		}
		sec.Biomes = b
	}

	if blTag, ok := fields["BlockLight"]; ok {
		b, err := blTag.AsByteArray()
		if err != nil {
			return sec, fmt.Errorf("BlockLight: %w", err)
		}
		sec.BlockLight = expandNibbles(b)
		sec.HasBlockLight = true
	}
	if slTag, ok := fields["SkyLight"]; ok {
		b, err := slTag.AsByteArray()
		if err != nil {
			return sec, fmt.Errorf("SkyLight: %w", err)
		}
		sec.SkyLight = expandNibbles(b)
		sec.HasSkyLight = true
	}

	return sec, nil
}

// expandNibbles unpacks a 2048-byte light array into 4096 nibble
// values, low nibble first: byte i yields out[2i] = byte&0x0F and
// out[2i+1] = (byte>>4)&0x0F.
func expandNibbles(b []byte) [4096]uint8 {
	var out [4096]uint8
	for i, v := range b {
		if 2*i >= len(out) {
			break
		}
		out[2*i] = v & 0x0F
		if 2*i+1 < len(out) {
			out[2*i+1] = (v >> 4) & 0x0F
		}
	}
	return out
}

func projectBlockStates(t nbt.Tag) (BlockStates, error) {
	var bs BlockStates
	fields := t.Map()

	paletteTag, ok := fields["palette"]
	if !ok {
		return bs, missingField("palette")
	}
	paletteList, err := paletteTag.AsList()
	if err != nil {
		return bs, fmt.Errorf("palette: %w", err)
	}
	for _, elem := range paletteList.Elems {
		if elem.ID == nbt.IDEnd {
			continue
		}
		st, err := projectBlockState(elem)
		if err != nil {
			return bs, fmt.Errorf("palette entry: %w", err)
		}
		bs.Palette = append(bs.Palette, st)
	}

	if len(bs.Palette) == 1 {
		// data tag is omitted on disk for a single-entry palette.
		copy(bs.Data[:], ZeroGrid(BlockCellCount))
		return bs, nil
	}

	dataTag, ok := fields["data"]
	if !ok {
		return bs, missingField("data")
	}
	longs, err := dataTag.AsLongArray()
	if err != nil {
		return bs, fmt.Errorf("data: %w", err)
	}
	bits := BlockBits(len(bs.Palette))
	grid, err := UnpackGrid(bits, BlockCellCount, longs, len(bs.Palette))
	if err != nil {
		return bs, err
	}
	copy(bs.Data[:], grid)
	return bs, nil
}

func projectBlockState(t nbt.Tag) (BlockState, error) {
	fields := t.Map()
	nameTag, ok := fields["Name"]
	if !ok {
		return BlockState{}, missingField("Name")
	}
	name, err := nameTag.AsString()
	if err != nil {
		return BlockState{}, fmt.Errorf("Name: %w", err)
	}

	st := BlockState{Name: name}
	if propsTag, ok := fields["Properties"]; ok {
		children, err := propsTag.AsCompoundChildren()
		if err != nil {
			return BlockState{}, fmt.Errorf("Properties: %w", err)
		}
		st.Properties = make(map[string]string, len(children))
		for _, child := range children {
			if child.ID == nbt.IDEnd {
				continue
			}
			v, err := child.AsString()
			if err != nil {
				return BlockState{}, fmt.Errorf("Properties.%s: %w", child.Name, err)
			}
			if _, exists := st.Properties[child.Name]; !exists {
				st.Properties[child.Name] = v
			}
		}
	}
	return st, nil
}

func projectBiomes(t nbt.Tag) (Biomes, error) {
	var bm Biomes
	fields := t.Map()

	paletteTag, ok := fields["palette"]
	if !ok {
		return bm, missingField("palette")
	}
	paletteList, err := paletteTag.AsList()
	if err != nil {
		return bm, fmt.Errorf("palette: %w", err)
	}
	for _, elem := range paletteList.Elems {
		if elem.ID == nbt.IDEnd {
			continue
		}
		name, err := elem.AsString()
		if err != nil {
			return bm, fmt.Errorf("palette entry: %w", err)
		}
		bm.Palette = append(bm.Palette, name)
	}

	if len(bm.Palette) == 1 {
		copy(bm.Data[:], ZeroGrid(BiomeCellCount))
		return bm, nil
	}

	dataTag, ok := fields["data"]
	if !ok {
		return bm, missingField("data")
	}
	longs, err := dataTag.AsLongArray()
	if err != nil {
		return bm, fmt.Errorf("data: %w", err)
	}
	bits := BiomeBits(len(bm.Palette))
	grid, err := UnpackGrid(bits, BiomeCellCount, longs, len(bm.Palette))
	if err != nil {
		return bm, err
	}
	copy(bm.Data[:], grid)
	return bm, nil
}

func projectBlockEntity(t nbt.Tag) (BlockEntity, error) {
	fields := t.Map()
	idTag, ok := fields["id"]
	if !ok {
		return BlockEntity{}, missingField("id")
	}
	id, err := idTag.AsString()
	if err != nil {
		return BlockEntity{}, fmt.Errorf("id: %w", err)
	}
	return BlockEntity{ID: id, Properties: t}, nil
}
