package chunk

import (
	"fmt"

	"github.com/mcanvil/reader/internal/nbt"
)

// projectStructures decodes the chunk's structures compound: a
// References compound of LongArray tags (each long a packed chunk
// coordinate, Z in the high 32 bits and X in the low 32 bits, both
// sign-extended) and a starts compound of per-structure records. Full
// structure semantics are not interpreted; this only records enough
// to identify each one.
func projectStructures(t nbt.Tag) (Structures, error) {
	st := Structures{References: make(map[string][]StructureReference)}
	fields := t.Map()

	if refTag, ok := fields["References"]; ok {
		children, err := refTag.AsCompoundChildren()
		if err != nil {
			return st, fmt.Errorf("References: %w", err)
		}
		for _, child := range children {
			if child.ID == nbt.IDEnd {
				continue
			}
			longs, err := child.AsLongArray()
			if err != nil {
				return st, fmt.Errorf("References.%s: %w", child.Name, err)
			}
			refs := make([]StructureReference, len(longs))
			for i, packed := range longs {
				refs[i] = unpackStructureReference(packed)
			}
			st.References[child.Name] = refs
		}
	}

	if startsTag, ok := fields["starts"]; ok {
		children, err := startsTag.AsCompoundChildren()
		if err != nil {
			return st, fmt.Errorf("starts: %w", err)
		}
		for _, child := range children {
			if child.ID == nbt.IDEnd {
				continue
			}
			start, ok, err := projectStructureStart(child)
			if err != nil {
				return st, fmt.Errorf("starts.%s: %w", child.Name, err)
			}
			if ok {
				st.Starts = append(st.Starts, start)
			}
		}
	}

	return st, nil
}

// unpackStructureReference splits a packed (chunkX, chunkZ) long: Z in
// the high 32 bits, X in the low 32 bits, both sign-extended 32-bit
// values.
func unpackStructureReference(packed int64) StructureReference {
	x := int32(uint32(packed))
	z := int32(uint32(packed >> 32))
	return StructureReference{ChunkX: x, ChunkZ: z}
}

// projectStructureStart reads one starts.<key> record. A start whose
// id is "INVALID" (the vanilla marker for "no structure here") is
// skipped.
func projectStructureStart(t nbt.Tag) (StructureStart, bool, error) {
	fields := t.Map()

	idTag, ok := fields["id"]
	if !ok {
		return StructureStart{}, false, missingField("id")
	}
	id, err := idTag.AsString()
	if err != nil {
		return StructureStart{}, false, fmt.Errorf("id: %w", err)
	}
	if id == "INVALID" {
		return StructureStart{}, false, nil
	}

	start := StructureStart{Key: t.Name, ID: id, Raw: t}
	if cx, ok := fields["ChunkX"]; ok {
		if start.ChunkX, err = cx.AsInt(); err != nil {
			return StructureStart{}, false, fmt.Errorf("ChunkX: %w", err)
		}
	}
	if cz, ok := fields["ChunkZ"]; ok {
		if start.ChunkZ, err = cz.AsInt(); err != nil {
			return StructureStart{}, false, fmt.Errorf("ChunkZ: %w", err)
		}
	}
	return start, true, nil
}
