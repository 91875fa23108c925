package trace

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the per-record codec of a spool.
type Compression uint8

const (
	// CompressionNone stores records raw.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast, modest ratio).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD block compression (slower, better ratio,
	// the choice for archived spools).
	CompressionZSTD Compression = 2
)

// String returns the name used in flags and job files.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	}
	return fmt.Sprintf("compression(%d)", uint8(c))
}

// ParseCompression maps a codec name from a flag or job file.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	}
	return 0, fmt.Errorf("trace: unknown compression %q (want none, lz4 or zstd)", s)
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Block format: [UncompressedSize uint32][CompressedSize uint32][Data...]
// A CompressedSize of 0 means the data is stored raw, which happens when
// the codec gains less than 10 percent on a record.
const blockHeaderSize = 8

// compress wraps data into a block using the given codec.
func compress(data []byte, codec Compression) ([]byte, error) {
	var compressed []byte
	switch codec {
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		buf := make([]byte, bound)
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("trace: lz4 compress: %w", err)
		}
		if n > 0 {
			compressed = buf[:n]
		}
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("trace: cannot compress with codec %v", codec)
	}

	// Keep the raw bytes when compression does not pay for itself.
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		out := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(out[4:], 0)
		copy(out[blockHeaderSize:], data)
		return out, nil
	}

	out := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed)))
	copy(out[blockHeaderSize:], compressed)
	return out, nil
}

// decompress unwraps a block produced by compress.
func decompress(data []byte, codec Compression) ([]byte, error) {
	if len(data) < blockHeaderSize {
		return nil, fmt.Errorf("trace: block shorter than its header: %w", ErrFormat)
	}
	uncompressedSize := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])

	if compressedSize == 0 {
		if uint32(len(data)) < blockHeaderSize+uncompressedSize {
			return nil, fmt.Errorf("trace: stored block truncated: %w", ErrFormat)
		}
		return data[blockHeaderSize : blockHeaderSize+uncompressedSize], nil
	}

	if uint32(len(data)) < blockHeaderSize+compressedSize {
		return nil, fmt.Errorf("trace: compressed block truncated: %w", ErrFormat)
	}
	payload := data[blockHeaderSize : blockHeaderSize+compressedSize]
	out := make([]byte, uncompressedSize)

	switch codec {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("trace: lz4 decompress: %w", err)
		}
		if uint32(n) != uncompressedSize {
			return nil, fmt.Errorf("trace: decompressed %d bytes, header says %d: %w", n, uncompressedSize, ErrFormat)
		}
		return out, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		decoded, err := dec.DecodeAll(payload, out[:0])
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, fmt.Errorf("trace: zstd decompress: %w", err)
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, fmt.Errorf("trace: decompressed %d bytes, header says %d: %w", len(decoded), uncompressedSize, ErrFormat)
		}
		return decoded, nil
	}
	return nil, fmt.Errorf("trace: cannot decompress codec %v: %w", codec, ErrFormat)
}
