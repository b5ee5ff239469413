package gifenc

import (
	"bufio"
	"fmt"
	"image"
	"io"
)

// Section indicators and extension labels.
const (
	sExtension       = 0x21
	sImageDescriptor = 0x2C
	sTrailer         = 0x3B

	gcLabel     = 0xF9
	gcBlockSize = 0x04

	fColorTable = 1 << 7
)

var log2Lookup = [8]int{2, 4, 8, 16, 32, 64, 128, 256}

func log2(x int) int {
	for i, v := range log2Lookup {
		if x <= v {
			return i
		}
	}
	return -1
}

// Little-endian.
func writeUint16(b []uint8, u uint16) {
	b[0] = uint8(u)
	b[1] = uint8(u >> 8)
}

type writer interface {
	Flush() error
	io.Writer
	io.ByteWriter
}

// Encoder serializes one animation. The output is only valid as a complete
// stream: callers must discard everything on error rather than keep a
// truncated file.
type Encoder struct {
	w   writer
	err error

	width, height int
	pal           *Palette
	// loopCount follows the NETSCAPE convention: 0 loops forever, a negative
	// value plays once (no extension), n > 0 repeats n times.
	loopCount int
	animated  bool

	// buf is scratch space; it must hold 256 bytes for the blockWriter.
	buf        [256]byte
	colorTable [3 * 256]byte

	headerWritten bool
}

// NewEncoder prepares a GIF89a stream for a canvas of the given size with one
// global color table. animated controls whether the looping extension is
// emitted.
func NewEncoder(w io.Writer, width, height int, pal *Palette, loopCount int, animated bool) (*Encoder, error) {
	if width <= 0 || height <= 0 || width >= 1<<16 || height >= 1<<16 {
		return nil, fmt.Errorf("%w: canvas %dx%d", ErrOverflow, width, height)
	}
	if pal == nil || len(pal.Colors) == 0 || len(pal.Colors) > maxPaletteSize {
		return nil, fmt.Errorf("%w: unusable palette", ErrOverflow)
	}
	e := &Encoder{width: width, height: height, pal: pal, loopCount: loopCount, animated: animated}
	if ww, ok := w.(writer); ok {
		e.w = ww
	} else {
		e.w = bufio.NewWriter(w)
	}
	return e, nil
}

func (e *Encoder) write(p []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(p)
}

func (e *Encoder) writeByte(b byte) {
	if e.err != nil {
		return
	}
	e.err = e.w.WriteByte(b)
}

func (e *Encoder) writeHeader() {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, "GIF89a")

	// Logical screen descriptor.
	writeUint16(e.buf[0:2], uint16(e.width))
	writeUint16(e.buf[2:4], uint16(e.height))
	e.write(e.buf[:4])

	paddedSize := log2(len(e.pal.Colors)) // Global color table holds 2^(1+n) entries.
	e.buf[0] = fColorTable | uint8(paddedSize)
	e.buf[1] = 0x00 // Background color index.
	e.buf[2] = 0x00 // Pixel aspect ratio.
	e.write(e.buf[:3])

	n := e.encodeColorTable(paddedSize)
	e.write(e.colorTable[:n])

	if e.animated && e.loopCount >= 0 {
		e.buf[0] = sExtension // Extension introducer.
		e.buf[1] = 0xff       // Application label.
		e.buf[2] = 0x0b       // Block size.
		e.write(e.buf[:3])
		if e.err == nil {
			_, e.err = io.WriteString(e.w, "NETSCAPE2.0")
		}
		e.buf[0] = 0x03 // Block size.
		e.buf[1] = 0x01 // Sub-block index.
		writeUint16(e.buf[2:4], uint16(e.loopCount))
		e.buf[4] = 0x00 // Block terminator.
		e.write(e.buf[:5])
	}
	e.headerWritten = true
}

func (e *Encoder) encodeColorTable(paddedSize int) int {
	for i, c := range e.pal.Colors {
		e.colorTable[3*i+0] = c.R
		e.colorTable[3*i+1] = c.G
		e.colorTable[3*i+2] = c.B
	}
	n := log2Lookup[paddedSize]
	// Pad with black.
	fill := e.colorTable[3*len(e.pal.Colors) : 3*n]
	for i := range fill {
		fill[i] = 0
	}
	return 3 * n
}

// WriteFrame emits one graphic control extension and image descriptor for
// the given sub-rectangle with its palette-index stream. pix holds exactly
// rect.Dx()*rect.Dy() indices in row order.
func (e *Encoder) WriteFrame(rect image.Rectangle, pix []byte, delayCS int, disposal byte) error {
	if !e.headerWritten {
		e.writeHeader()
	}
	if e.err != nil {
		return e.err
	}
	if !rect.In(image.Rect(0, 0, e.width, e.height)) || rect.Empty() {
		return fmt.Errorf("%w: frame rect %v outside %dx%d canvas", ErrOverflow, rect, e.width, e.height)
	}
	if len(pix) != rect.Dx()*rect.Dy() {
		return fmt.Errorf("%w: %d indices for rect %v", ErrOverflow, len(pix), rect)
	}

	// Graphic control extension.
	e.buf[0] = sExtension
	e.buf[1] = gcLabel
	e.buf[2] = gcBlockSize
	e.buf[3] = disposal << 2
	if e.pal.TransparentIndex >= 0 {
		e.buf[3] |= 0x01
	}
	writeUint16(e.buf[4:6], uint16(delayCS))
	if e.pal.TransparentIndex >= 0 {
		e.buf[6] = uint8(e.pal.TransparentIndex)
	} else {
		e.buf[6] = 0x00
	}
	e.buf[7] = 0x00 // Block terminator.
	e.write(e.buf[:8])

	// Image descriptor, restricted to the update region, global table only.
	e.buf[0] = sImageDescriptor
	writeUint16(e.buf[1:3], uint16(rect.Min.X))
	writeUint16(e.buf[3:5], uint16(rect.Min.Y))
	writeUint16(e.buf[5:7], uint16(rect.Dx()))
	writeUint16(e.buf[7:9], uint16(rect.Dy()))
	e.buf[9] = 0x00
	e.write(e.buf[:10])

	litWidth := log2(len(e.pal.Colors)) + 1
	if litWidth < 2 {
		litWidth = 2
	}
	e.writeByte(uint8(litWidth)) // LZW minimum code size.

	bw := &blockWriter{e: e}
	bw.setup()
	lzw := newLZWWriter(bw, uint(litWidth))
	if _, err := lzw.Write(pix); err != nil && e.err == nil {
		e.err = err
	}
	lzw.Close()
	bw.close()
	return e.err
}

// Close writes the trailer and flushes. The stream is complete only if Close
// returns nil.
func (e *Encoder) Close() error {
	if !e.headerWritten {
		e.writeHeader()
	}
	e.writeByte(sTrailer)
	if e.err != nil {
		return e.err
	}
	e.err = e.w.Flush()
	return e.err
}

// blockWriter chops the LZW output into (n, n bytes) sub-blocks with
// 1 <= n <= 255, so the compressor itself never sees the blocking.
type blockWriter struct {
	e *Encoder
}

func (b *blockWriter) setup() { b.e.buf[0] = 0 }

func (b *blockWriter) WriteByte(c byte) error {
	if b.e.err != nil {
		return b.e.err
	}
	b.e.buf[0]++
	b.e.buf[b.e.buf[0]] = c
	if b.e.buf[0] < 255 {
		return nil
	}
	b.e.write(b.e.buf[:256])
	b.e.buf[0] = 0
	return b.e.err
}

// close flushes any pending sub-block and writes the block terminator.
func (b *blockWriter) close() {
	if b.e.buf[0] == 0 {
		b.e.writeByte(0)
	} else {
		n := uint(b.e.buf[0])
		b.e.buf[n+1] = 0
		b.e.write(b.e.buf[:n+2])
	}
}
