package gifenc

// GIF-flavored LZW: variable code width starting at litWidth+1 bits, packed
// least-significant-bit first, a clear code emitted up front and again
// whenever the dictionary fills, and an end-of-information code at close.
// Code 4095 is never assigned; the table resets one entry early, which every
// conformant decoder accepts.

const maxLZWCode = 1<<12 - 1

const invalidCode = 0xFFFF

type lzwWriter struct {
	bw       *blockWriter
	litWidth uint

	clear uint32
	eoi   uint32

	// hi is the last code assigned; overflow is the code at which the write
	// width must grow.
	hi       uint32
	overflow uint32
	width    uint

	table map[uint32]uint16
	saved uint16

	bits  uint32
	nBits uint
}

func newLZWWriter(bw *blockWriter, litWidth uint) *lzwWriter {
	if litWidth < 2 {
		litWidth = 2
	}
	w := &lzwWriter{
		bw:       bw,
		litWidth: litWidth,
		clear:    1 << litWidth,
		saved:    invalidCode,
		table:    make(map[uint32]uint16),
	}
	w.eoi = w.clear + 1
	w.reset()
	w.writeCode(w.clear)
	return w
}

func (w *lzwWriter) reset() {
	w.width = w.litWidth + 1
	w.hi = w.eoi
	w.overflow = 1 << w.width
	clear(w.table)
}

func (w *lzwWriter) writeCode(c uint32) {
	w.bits |= c << w.nBits
	w.nBits += w.width
	for w.nBits >= 8 {
		w.bw.WriteByte(byte(w.bits))
		w.bits >>= 8
		w.nBits -= 8
	}
}

// incHi assigns the next dictionary code, growing the code width when the new
// code no longer fits, and resetting the dictionary just before code 4095.
// It reports whether the dictionary survived.
func (w *lzwWriter) incHi() bool {
	w.hi++
	if w.hi == w.overflow {
		w.width++
		w.overflow <<= 1
	}
	if w.hi == maxLZWCode {
		w.writeCode(w.clear)
		w.reset()
		return false
	}
	return true
}

func (w *lzwWriter) Write(p []byte) (int, error) {
	for _, x := range p {
		if w.saved == invalidCode {
			w.saved = uint16(x)
			continue
		}
		key := uint32(w.saved)<<8 | uint32(x)
		if code, ok := w.table[key]; ok {
			w.saved = code
			continue
		}
		w.writeCode(uint32(w.saved))
		if w.incHi() {
			w.table[key] = uint16(w.hi)
		}
		w.saved = uint16(x)
	}
	return len(p), nil
}

// Close flushes the pending code, the end-of-information code, and any
// partial byte.
func (w *lzwWriter) Close() {
	if w.saved != invalidCode {
		w.writeCode(uint32(w.saved))
		w.saved = invalidCode
	}
	w.writeCode(w.eoi)
	if w.nBits > 0 {
		w.bw.WriteByte(byte(w.bits))
		w.bits, w.nBits = 0, 0
	}
}
