package nbt

import (
	"testing"

	"github.com/mcanvil/reader/internal/cursor"
)

func decodeBytes(t *testing.T, b []byte) Tag {
	t.Helper()
	tag, err := Decode(cursor.New(b))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return tag
}

func TestDecodeInt(t *testing.T) {
	// S1: "Test_Int" tag
	b := []byte{
		0x03, 0x00, 0x08, 'T', 'e', 's', 't', '_', 'I', 'n', 't',
		0x01, 0x02, 0x03, 0x04,
	}
	tag := decodeBytes(t, b)
	if tag.ID != IDInt {
		t.Fatalf("ID = %s, want Int", tag.ID)
	}
	if tag.Name != "Test_Int" {
		t.Fatalf("Name = %q, want Test_Int", tag.Name)
	}
	if tag.Int != 16909060 {
		t.Fatalf("Int = %d, want 16909060", tag.Int)
	}
}

func TestDecodeString(t *testing.T) {
	// S2: "Test_String foo"
	b := []byte{
		0x08, 0x00, 0x0B, 'T', 'e', 's', 't', '_', 'S', 't', 'r', 'i', 'n', 'g',
		0x00, 0x03, 'f', 'o', 'o',
	}
	tag := decodeBytes(t, b)
	if tag.ID != IDString {
		t.Fatalf("ID = %s, want String", tag.ID)
	}
	if tag.Name != "Test_String" {
		t.Fatalf("Name = %q, want Test_String", tag.Name)
	}
	if tag.Str != "foo" {
		t.Fatalf("Str = %q, want foo", tag.Str)
	}
}

func TestDecodeListOfBytes(t *testing.T) {
	// S3: "Test_List" of 8 Bytes 1..8
	b := []byte{
		0x09, 0x00, 0x09, 'T', 'e', 's', 't', '_', 'L', 'i', 's', 't',
		0x01, 0x00, 0x00, 0x00, 0x08,
		1, 2, 3, 4, 5, 6, 7, 8,
	}
	tag := decodeBytes(t, b)
	if tag.ID != IDList {
		t.Fatalf("ID = %s, want List", tag.ID)
	}
	if tag.ListVal.ElemID != IDByte {
		t.Fatalf("ElemID = %s, want Byte", tag.ListVal.ElemID)
	}
	if len(tag.ListVal.Elems) != 8 {
		t.Fatalf("len(Elems) = %d, want 8", len(tag.ListVal.Elems))
	}
	for i, elem := range tag.ListVal.Elems {
		if elem.Byte != int8(i+1) {
			t.Fatalf("Elems[%d].Byte = %d, want %d", i, elem.Byte, i+1)
		}
	}
}

func TestDecodeEndTagCarriesNoName(t *testing.T) {
	tag := decodeBytes(t, []byte{0x00})
	if tag.ID != IDEnd {
		t.Fatalf("ID = %s, want End", tag.ID)
	}
	if tag.Name != "" {
		t.Fatalf("End tag got a name: %q", tag.Name)
	}
}

func TestDecodeEmptyCompound(t *testing.T) {
	b := []byte{
		0x0A, 0x00, 0x00, // Compound, name ""
		0x00, // End
	}
	tag := decodeBytes(t, b)
	children, err := tag.AsCompoundChildren()
	if err != nil {
		t.Fatal(err)
	}
	if len(children) != 1 || children[0].ID != IDEnd {
		t.Fatalf("expected exactly the terminating End tag, got %+v", children)
	}
	if len(tag.Map()) != 0 {
		t.Fatalf("Map() of an empty compound should be empty, got %v", tag.Map())
	}
}

func TestDecodeEmptyListOfEnd(t *testing.T) {
	b := []byte{
		0x09, 0x00, 0x00, // List, name ""
		0x00,                   // elem id: End
		0x00, 0x00, 0x00, 0x00, // count 0
	}
	tag := decodeBytes(t, b)
	list, err := tag.AsList()
	if err != nil {
		t.Fatal(err)
	}
	if list.ElemID != IDEnd {
		t.Fatalf("ElemID = %s, want End", list.ElemID)
	}
	if len(list.Elems) != 0 {
		t.Fatalf("len(Elems) = %d, want 0", len(list.Elems))
	}
}

func TestDecodeNestedCompound(t *testing.T) {
	// Compound "root" { Int "x" = 5 }
	b := []byte{
		0x0A, 0x00, 0x04, 'r', 'o', 'o', 't',
		0x03, 0x00, 0x01, 'x', 0x00, 0x00, 0x00, 0x05,
		0x00,
	}
	tag := decodeBytes(t, b)
	child, ok := tag.Find("x")
	if !ok {
		t.Fatal("expected to find child 'x'")
	}
	v, err := child.AsInt()
	if err != nil {
		t.Fatal(err)
	}
	if v != 5 {
		t.Fatalf("x = %d, want 5", v)
	}
}

func TestDecodeTruncatedFails(t *testing.T) {
	// Int tag header with only 2 of 4 payload bytes.
	b := []byte{0x03, 0x00, 0x01, 'x', 0x00, 0x00}
	if _, err := Decode(cursor.New(b)); err == nil {
		t.Fatal("expected a truncation error")
	}
}

func TestDecodeInvalidTagType(t *testing.T) {
	b := []byte{0x0D, 0x00, 0x00} // id 13 is not a valid tag
	if _, err := Decode(cursor.New(b)); err == nil {
		t.Fatal("expected an invalid tag type error")
	}
}

func TestWrongTagTypeAccessor(t *testing.T) {
	tag := Tag{ID: IDInt, Int: 5}
	if _, err := tag.AsString(); err == nil {
		t.Fatal("expected a wrong-type error")
	}
}

func TestFindPrefersFirstDuplicate(t *testing.T) {
	tag := Tag{
		ID: IDCompound,
		Children: []Tag{
			{ID: IDInt, Name: "x", Int: 1},
			{ID: IDInt, Name: "x", Int: 2},
			{ID: IDEnd},
		},
	}
	found, ok := tag.Find("x")
	if !ok {
		t.Fatal("expected to find x")
	}
	if found.Int != 1 {
		t.Fatalf("Find(x).Int = %d, want 1 (first occurrence)", found.Int)
	}
}
