package common

import (
	"encoding/binary"
	"io"
)

// Writer writes big-endian JPCS fields
type Writer struct {
	w   io.Writer
	buf [4]byte
}

// NewWriter creates a new JPCS writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteByte writes a single byte
func (w *Writer) WriteByte(b byte) error {
	w.buf[0] = b
	_, err := w.w.Write(w.buf[:1])
	return err
}

// WriteUint16 writes a 16-bit big-endian value
func (w *Writer) WriteUint16(v uint16) error {
	binary.BigEndian.PutUint16(w.buf[:2], v)
	_, err := w.w.Write(w.buf[:2])
	return err
}

// WriteInt16 writes a 16-bit big-endian two's complement value
func (w *Writer) WriteInt16(v int16) error {
	return w.WriteUint16(uint16(v))
}

// WriteUint32 writes a 32-bit big-endian value
func (w *Writer) WriteUint32(v uint32) error {
	binary.BigEndian.PutUint32(w.buf[:4], v)
	_, err := w.w.Write(w.buf[:4])
	return err
}

// WriteBytes writes raw bytes
func (w *Writer) WriteBytes(data []byte) error {
	_, err := w.w.Write(data)
	return err
}
