package trace

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Spool file layout:
//
//	[magic uint32][version uint8][codec uint8][reserved uint16]
//	repeated records: [recordLen uint32][record recordLen bytes]
//
// A record is the encoded header, a uint32 sample count, and the raw
// little-endian sample words; with a codec other than none it is wrapped
// in a compression block. All integers little-endian.
const (
	spoolMagic   = 0x4c505353 // "SSPL"
	spoolVersion = 1

	fileHeaderSize = 8

	// maxRecordSize bounds a single record so a corrupt length prefix
	// cannot ask for an absurd allocation.
	maxRecordSize = 1 << 28
)

// Writer streams traces into a spool.
type Writer struct {
	w     *bufio.Writer
	dst   io.Writer
	codec Compression
	buf   []byte
	count int
}

// NewWriter writes the spool file header to w and returns a Writer
// appending records with the given codec. Call Close (or Flush) when
// done; nothing is guaranteed on disk before that.
func NewWriter(w io.Writer, codec Compression) (*Writer, error) {
	switch codec {
	case CompressionNone, CompressionLZ4, CompressionZSTD:
	default:
		return nil, fmt.Errorf("trace: unknown compression %d", codec)
	}

	sw := &Writer{w: bufio.NewWriter(w), dst: w, codec: codec}
	var hdr [fileHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], spoolMagic)
	hdr[4] = spoolVersion
	hdr[5] = uint8(codec)
	if _, err := sw.w.Write(hdr[:]); err != nil {
		return nil, fmt.Errorf("trace: write spool header: %w", err)
	}
	return sw, nil
}

// Append writes one trace record.
func (sw *Writer) Append(tr *Trace) error {
	need := headerSize + 4 + 4*len(tr.Samples)
	if cap(sw.buf) < need {
		sw.buf = make([]byte, need)
	}
	rec := sw.buf[:need]

	tr.Header.encode(rec)
	binary.LittleEndian.PutUint32(rec[headerSize:], uint32(len(tr.Samples)))
	off := headerSize + 4
	for _, s := range tr.Samples {
		binary.LittleEndian.PutUint32(rec[off:], math.Float32bits(s))
		off += 4
	}

	if sw.codec != CompressionNone {
		wrapped, err := compress(rec, sw.codec)
		if err != nil {
			return err
		}
		rec = wrapped
	}

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(rec)))
	if _, err := sw.w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("trace: write record length: %w", err)
	}
	if _, err := sw.w.Write(rec); err != nil {
		return fmt.Errorf("trace: write record: %w", err)
	}
	sw.count++
	return nil
}

// Count returns the number of traces appended so far.
func (sw *Writer) Count() int { return sw.count }

// Flush pushes buffered records to the underlying writer.
func (sw *Writer) Flush() error {
	if err := sw.w.Flush(); err != nil {
		return fmt.Errorf("trace: flush spool: %w", err)
	}
	return nil
}

// Close flushes and, when the underlying writer is a Closer, closes it.
func (sw *Writer) Close() error {
	if err := sw.Flush(); err != nil {
		return err
	}
	if c, ok := sw.dst.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("trace: close spool: %w", err)
		}
	}
	return nil
}

// Reader streams traces out of a spool.
type Reader struct {
	r     *bufio.Reader
	src   io.Reader
	codec Compression
	buf   []byte
	count int
}

// NewReader validates the spool file header of r and returns a Reader.
func NewReader(r io.Reader) (*Reader, error) {
	sr := &Reader{r: bufio.NewReader(r), src: r}

	var hdr [fileHeaderSize]byte
	if _, err := io.ReadFull(sr.r, hdr[:]); err != nil {
		return nil, fmt.Errorf("trace: read spool header: %w", err)
	}
	if binary.LittleEndian.Uint32(hdr[0:]) != spoolMagic {
		return nil, fmt.Errorf("trace: bad magic %#x: %w", binary.LittleEndian.Uint32(hdr[0:]), ErrFormat)
	}
	if hdr[4] != spoolVersion {
		return nil, fmt.Errorf("trace: unsupported spool version %d: %w", hdr[4], ErrFormat)
	}
	codec := Compression(hdr[5])
	switch codec {
	case CompressionNone, CompressionLZ4, CompressionZSTD:
	default:
		return nil, fmt.Errorf("trace: unknown compression %d: %w", hdr[5], ErrFormat)
	}
	sr.codec = codec
	return sr, nil
}

// Codec returns the compression the spool was written with.
func (sr *Reader) Codec() Compression { return sr.codec }

// Count returns the number of traces read so far.
func (sr *Reader) Count() int { return sr.count }

// Next returns the next trace, or io.EOF after the last one. A spool
// that ends mid-record fails with an error wrapping ErrFormat.
func (sr *Reader) Next() (*Trace, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(sr.r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("trace: record length truncated: %w", ErrFormat)
	}
	recLen := binary.LittleEndian.Uint32(lenBuf[:])
	if recLen > maxRecordSize {
		return nil, fmt.Errorf("trace: record of %d bytes exceeds limit: %w", recLen, ErrFormat)
	}

	if cap(sr.buf) < int(recLen) {
		sr.buf = make([]byte, recLen)
	}
	rec := sr.buf[:recLen]
	if _, err := io.ReadFull(sr.r, rec); err != nil {
		return nil, fmt.Errorf("trace: record truncated: %w", ErrFormat)
	}

	if sr.codec != CompressionNone {
		var err error
		rec, err = decompress(rec, sr.codec)
		if err != nil {
			return nil, err
		}
	}

	if len(rec) < headerSize+4 {
		return nil, fmt.Errorf("trace: record of %d bytes shorter than header: %w", len(rec), ErrFormat)
	}
	tr := &Trace{}
	tr.Header.decode(rec)
	ns := binary.LittleEndian.Uint32(rec[headerSize:])
	if uint32(len(rec)) != uint32(headerSize+4)+4*ns {
		return nil, fmt.Errorf("trace: record claims %d samples in %d bytes: %w", ns, len(rec), ErrFormat)
	}
	if ns > 0 {
		tr.Samples = make([]float32, ns)
		off := headerSize + 4
		for i := range tr.Samples {
			tr.Samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(rec[off:]))
			off += 4
		}
	}
	sr.count++
	return tr, nil
}

// Each calls fn for every remaining trace, stopping at the first error.
func (sr *Reader) Each(fn func(*Trace) error) error {
	for {
		tr, err := sr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(tr); err != nil {
			return err
		}
	}
}
