package region

import (
	"bytes"
	"errors"
	"testing"

	kgzip "github.com/klauspost/compress/gzip"
	kzlib "github.com/klauspost/compress/zlib"
)

func TestReadFrameZlibExample(t *testing.T) {
	// S6's frame bytes: length=5, compression=zlib, 4 bytes of payload.
	b := []byte{0x00, 0x00, 0x00, 0x05, 0x02, 0xAA, 0xBB, 0xCC, 0xDD}
	f, err := ReadFrame(b)
	if err != nil {
		t.Fatal(err)
	}
	if f.Length != 5 {
		t.Fatalf("Length = %d, want 5", f.Length)
	}
	if f.Compression != CompressionZlib {
		t.Fatalf("Compression = %d, want zlib", f.Compression)
	}
	if !bytes.Equal(f.Payload, []byte{0xAA, 0xBB, 0xCC, 0xDD}) {
		t.Fatalf("Payload = %x", f.Payload)
	}
}

func TestReadFrameZeroLength(t *testing.T) {
	b := []byte{0x00, 0x00, 0x00, 0x00}
	if _, err := ReadFrame(b); err == nil {
		t.Fatal("expected an error for a zero-length frame")
	}
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	b := []byte{0x00, 0x00, 0x00, 0x05, 0x02, 0xAA} // declares 4 payload bytes, has 1
	if _, err := ReadFrame(b); err == nil {
		t.Fatal("expected an error for a truncated payload")
	}
}

func TestDecompressZlibRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := kzlib.NewWriter(&buf)
	if _, err := w.Write([]byte("hello nbt")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f := Frame{Compression: CompressionZlib, Payload: buf.Bytes()}
	got, err := Decompress(f)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello nbt" {
		t.Fatalf("got %q", got)
	}
}

func TestDecompressGZipRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := kgzip.NewWriter(&buf)
	if _, err := w.Write([]byte("hello nbt")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f := Frame{Compression: CompressionGZip, Payload: buf.Bytes()}
	got, err := Decompress(f)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello nbt" {
		t.Fatalf("got %q", got)
	}
}

func TestDecompressUncompressedPassthrough(t *testing.T) {
	f := Frame{Compression: CompressionUncompressed, Payload: []byte("raw bytes")}
	got, err := Decompress(f)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "raw bytes" {
		t.Fatalf("got %q", got)
	}
}

func TestDecompressUnknownCompression(t *testing.T) {
	f := Frame{Compression: Compression(9), Payload: []byte("x")}
	_, err := Decompress(f)
	var unknown *UnknownCompressionError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want *UnknownCompressionError", err)
	}
	if unknown.Byte != 9 {
		t.Fatalf("Byte = %d, want 9", unknown.Byte)
	}
}
