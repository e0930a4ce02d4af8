package region

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	kgzip "github.com/klauspost/compress/gzip"
	kzlib "github.com/klauspost/compress/zlib"
	"github.com/valyala/bytebufferpool"

	"github.com/mcanvil/reader/internal/cursor"
)

// CompressionMax bounds the decompressed size of a single chunk to
// guard against unbounded memory use on malformed input.
const CompressionMax = 16 * 1024 * 1024 // 16 MiB

// Compression is the framing byte that selects how a chunk's payload
// is encoded on disk.
type Compression uint8

const (
	CompressionGZip         Compression = 1
	CompressionZlib         Compression = 2
	CompressionUncompressed Compression = 3
)

// Errors returned while framing or decompressing a chunk.
var (
	ErrChunkTooLarge    = errors.New("region: decompressed chunk exceeds the size cap")
	ErrDecompressFailed = errors.New("region: decompression failed")
)

// UnknownCompressionError reports a framing byte outside {1,2,3}.
type UnknownCompressionError struct{ Byte uint8 }

func (e *UnknownCompressionError) Error() string {
	return fmt.Sprintf("region: unknown compression byte %d", e.Byte)
}

// Frame is the raw byte window a present slot's sector range holds:
// a declared length, a compression byte, and the payload bytes that
// follow. Bytes in the sector range past Length are padding.
type Frame struct {
	Length      uint32
	Compression Compression
	Payload     []byte
}

// ReadFrame parses a chunk frame out of the bytes sliced from a
// slot's sector range. It does not decompress the payload.
func ReadFrame(sectorBytes []byte) (Frame, error) {
	c := cursor.New(sectorBytes)
	length, err := c.U32()
	if err != nil {
		return Frame{}, fmt.Errorf("region: reading frame length: %w", err)
	}
	if length == 0 {
		return Frame{}, fmt.Errorf("region: zero-length frame")
	}
	compByte, err := c.U8()
	if err != nil {
		return Frame{}, fmt.Errorf("region: reading frame compression byte: %w", err)
	}
	payload, err := c.Advance(int(length) - 1)
	if err != nil {
		return Frame{}, fmt.Errorf("region: reading frame payload: %w", err)
	}
	return Frame{Length: length, Compression: Compression(compByte), Payload: payload}, nil
}

// Decompress returns the raw NBT bytes for a frame's payload,
// dispatching on its compression byte. The output is capped at
// CompressionMax; exceeding it fails with ErrChunkTooLarge.
func Decompress(f Frame) ([]byte, error) {
	switch f.Compression {
	case CompressionGZip:
		return decompressCapped(f.Payload, func(r io.Reader) (io.ReadCloser, error) {
			return kgzip.NewReader(r)
		})
	case CompressionZlib:
		return decompressCapped(f.Payload, func(r io.Reader) (io.ReadCloser, error) {
			return kzlib.NewReader(r)
		})
	case CompressionUncompressed:
		out := append([]byte(nil), f.Payload...)
		return out, nil
	default:
		return nil, &UnknownCompressionError{Byte: uint8(f.Compression)}
	}
}

func decompressCapped(payload []byte, newReader func(io.Reader) (io.ReadCloser, error)) ([]byte, error) {
	zr, err := newReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressFailed, err)
	}
	defer zr.Close()

	dst := bytebufferpool.Get()
	defer bytebufferpool.Put(dst)

	limited := io.LimitReader(zr, CompressionMax+1)
	if _, err := dst.ReadFrom(limited); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressFailed, err)
	}
	if dst.Len() > CompressionMax {
		return nil, ErrChunkTooLarge
	}
	out := make([]byte, dst.Len())
	copy(out, dst.Bytes())
	return out, nil
}
