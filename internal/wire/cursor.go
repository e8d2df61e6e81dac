package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// writer accumulates a payload in big-endian field order.
type writer struct {
	buf []byte
}

func newWriter(capacity int) *writer {
	return &writer{buf: make([]byte, 0, capacity)}
}

func (w *writer) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *writer) bool(v bool)  { if v { w.u8(1) } else { w.u8(0) } }

func (w *writer) u16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) f32(v float32) {
	w.u32(math.Float32bits(v))
}

func (w *writer) bytes(b []byte) { w.buf = append(w.buf, b...) }

// str8 writes a one-byte length prefix followed by the string's UTF-8 bytes.
func (w *writer) str8(s string) {
	w.u8(uint8(len(s)))
	w.bytes([]byte(s))
}

func (w *writer) bytesOut() []byte { return w.buf }

// reader consumes a payload in big-endian field order, reporting
// ErrMalformed on any underrun instead of panicking or zero-filling.
type reader struct {
	data []byte
	off  int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) remaining() int { return len(r.data) - r.off }

func (r *reader) need(n int) error {
	if r.remaining() < n {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrMalformed, n, r.remaining())
	}
	return nil
}

func (r *reader) u8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

func (r *reader) boolean() (bool, error) {
	v, err := r.u8()
	return v != 0, err
}

func (r *reader) u16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) f32() (float32, error) {
	v, err := r.u32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *reader) take(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// str8 reads a one-byte length prefix followed by that many UTF-8 bytes.
func (r *reader) str8() (string, error) {
	n, err := r.u8()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", fmt.Errorf("%w: string length %d exceeds remaining bytes", ErrMalformed, n)
	}
	return string(b), nil
}

// rest returns every unread byte.
func (r *reader) rest() []byte {
	b := r.data[r.off:]
	r.off = len(r.data)
	return b
}

// atEnd fails if any bytes remain — used by decoders whose payload has a
// fixed expected length and shouldn't tolerate trailing garbage.
func (r *reader) atEnd() error {
	if r.remaining() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrMalformed, r.remaining())
	}
	return nil
}
