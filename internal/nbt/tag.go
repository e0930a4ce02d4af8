// Package nbt implements a recursive decoder for the Named Binary Tag
// format used by Anvil chunk payloads. It purposely does not lean on
// any third-party NBT library: the tag tree is a closed, well-known
// binary grammar, and decoding it by hand with the cursor package
// keeps every byte- and bit-level rule in one auditable place.
package nbt

import (
	"errors"
	"fmt"

	"github.com/mcanvil/reader/internal/cursor"
)

// ID is the on-disk tag type discriminator.
type ID uint8

const (
	IDEnd       ID = 0
	IDByte      ID = 1
	IDShort     ID = 2
	IDInt       ID = 3
	IDLong      ID = 4
	IDFloat     ID = 5
	IDDouble    ID = 6
	IDByteArray ID = 7
	IDString    ID = 8
	IDList      ID = 9
	IDCompound  ID = 10
	IDIntArray  ID = 11
	IDLongArray ID = 12
)

func (id ID) String() string {
	switch id {
	case IDEnd:
		return "End"
	case IDByte:
		return "Byte"
	case IDShort:
		return "Short"
	case IDInt:
		return "Int"
	case IDLong:
		return "Long"
	case IDFloat:
		return "Float"
	case IDDouble:
		return "Double"
	case IDByteArray:
		return "ByteArray"
	case IDString:
		return "String"
	case IDList:
		return "List"
	case IDCompound:
		return "Compound"
	case IDIntArray:
		return "IntArray"
	case IDLongArray:
		return "LongArray"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(id))
	}
}

// Errors returned by the decoder. They correspond 1:1 to the parser
// error kinds from the format taxonomy.
var (
	ErrUnexpectedEOF  = cursor.ErrUnexpectedEOF
	ErrBadUTF8        = cursor.ErrBadUTF8
	ErrInvalidTagType = errors.New("nbt: invalid tag type id")
	ErrNegativeLength = errors.New("nbt: negative length")
)

// List holds a homogeneous NBT list: one element type id and the
// decoded payloads, each wrapped as a bodiless, nameless Tag so list
// elements share the same payload representation as named tags.
type List struct {
	ElemID ID
	Elems  []Tag
}

// Tag is a named NBT value. Exactly one of the typed fields below is
// meaningful, selected by ID. End carries no payload.
type Tag struct {
	Name string
	ID   ID

	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	ByteArray []byte
	Str       string
	ListVal   List
	Children  []Tag // Compound; terminated by an explicit End tag, included for fidelity
	IntArray  []int32
	LongArray []int64
}

// Decode parses one tag, including its name, starting at the cursor's
// current position, and advances the cursor past it. The tag at the
// top of a chunk payload is always a Compound in practice, but Decode
// does not require this — it will happily decode any single tag.
func Decode(c *cursor.Cursor) (Tag, error) {
	idByte, err := c.U8()
	if err != nil {
		return Tag{}, err
	}
	id := ID(idByte)
	if id == IDEnd {
		return Tag{ID: IDEnd}, nil
	}

	name, err := readName(c)
	if err != nil {
		return Tag{}, err
	}

	tag := Tag{Name: name, ID: id}
	if err := decodePayload(c, &tag); err != nil {
		return Tag{}, err
	}
	return tag, nil
}

func readName(c *cursor.Cursor) (string, error) {
	n, err := c.U16()
	if err != nil {
		return "", err
	}
	return c.UTF8(int(n))
}

// decodePayload fills in tag.ID's payload field by dispatching on the
// tag's type id. The type id and name have already been consumed.
func decodePayload(c *cursor.Cursor, tag *Tag) error {
	switch tag.ID {
	case IDByte:
		v, err := c.I8()
		if err != nil {
			return err
		}
		tag.Byte = v
	case IDShort:
		v, err := c.I16()
		if err != nil {
			return err
		}
		tag.Short = v
	case IDInt:
		v, err := c.I32()
		if err != nil {
			return err
		}
		tag.Int = v
	case IDLong:
		v, err := c.I64()
		if err != nil {
			return err
		}
		tag.Long = v
	case IDFloat:
		v, err := c.F32()
		if err != nil {
			return err
		}
		tag.Float = v
	case IDDouble:
		v, err := c.F64()
		if err != nil {
			return err
		}
		tag.Double = v
	case IDByteArray:
		n, err := c.I32()
		if err != nil {
			return err
		}
		if n < 0 {
			return ErrNegativeLength
		}
		b, err := c.Advance(int(n))
		if err != nil {
			return err
		}
		tag.ByteArray = append([]byte(nil), b...)
	case IDString:
		n, err := c.U16()
		if err != nil {
			return err
		}
		s, err := c.UTF8(int(n))
		if err != nil {
			return err
		}
		tag.Str = s
	case IDList:
		l, err := decodeList(c)
		if err != nil {
			return err
		}
		tag.ListVal = l
	case IDCompound:
		children, err := decodeCompound(c)
		if err != nil {
			return err
		}
		tag.Children = children
	case IDIntArray:
		n, err := c.I32()
		if err != nil {
			return err
		}
		if n < 0 {
			return ErrNegativeLength
		}
		arr := make([]int32, n)
		for i := range arr {
			v, err := c.I32()
			if err != nil {
				return err
			}
			arr[i] = v
		}
		tag.IntArray = arr
	case IDLongArray:
		n, err := c.I32()
		if err != nil {
			return err
		}
		if n < 0 {
			return ErrNegativeLength
		}
		arr := make([]int64, n)
		for i := range arr {
			v, err := c.I64()
			if err != nil {
				return err
			}
			arr[i] = v
		}
		tag.LongArray = arr
	default:
		return fmt.Errorf("%w: %d", ErrInvalidTagType, tag.ID)
	}
	return nil
}

// decodeList reads a List payload: one element-type byte, one i32
// count, then that many anonymous payloads of the element type. List
// elements carry no name and no per-element type byte.
func decodeList(c *cursor.Cursor) (List, error) {
	elemIDByte, err := c.U8()
	if err != nil {
		return List{}, err
	}
	elemID := ID(elemIDByte)

	n, err := c.I32()
	if err != nil {
		return List{}, err
	}
	if n < 0 {
		return List{}, ErrNegativeLength
	}

	elems := make([]Tag, n)
	for i := range elems {
		if elemID == IDEnd {
			// A List of End carries no payload per element; this only
			// arises validly when n == 0, but an explicit End payload
			// read is a no-op either way.
			elems[i] = Tag{ID: IDEnd}
			continue
		}
		elem := Tag{ID: elemID}
		if err := decodePayload(c, &elem); err != nil {
			return List{}, err
		}
		elems[i] = elem
	}
	return List{ElemID: elemID, Elems: elems}, nil
}

// decodeCompound reads named child tags until an End tag is produced,
// appending every child including the terminating End for fidelity
// with the on-disk encoding.
func decodeCompound(c *cursor.Cursor) ([]Tag, error) {
	var children []Tag
	for {
		child, err := Decode(c)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
		if child.ID == IDEnd {
			return children, nil
		}
	}
}
