package font

import "encoding/binary"

// BinaryReader is a big-endian cursor over an in-memory font buffer. Reads
// past the end of the buffer set a sticky error and return zero values, so a
// parser can issue a batch of reads and check Err once afterwards.
type BinaryReader struct {
	buf []byte
	pos uint32
	err error
}

// NewBinaryReader returns a reader positioned at the start of buf.
func NewBinaryReader(buf []byte) *BinaryReader {
	return &BinaryReader{buf: buf}
}

// Err returns the first error encountered by a read or seek.
func (r *BinaryReader) Err() error {
	return r.err
}

// Pos returns the current offset.
func (r *BinaryReader) Pos() uint32 {
	return r.pos
}

// Len returns the number of bytes left to read.
func (r *BinaryReader) Len() uint32 {
	if uint32(len(r.buf)) < r.pos {
		return 0
	}
	return uint32(len(r.buf)) - r.pos
}

// Seek sets the read offset. Offsets at or past the end of the buffer are out
// of range, except that seeking to offset 0 of an empty buffer is allowed.
func (r *BinaryReader) Seek(pos uint32) error {
	if len(r.buf) <= int(pos) && !(pos == 0 && len(r.buf) == 0) {
		r.err = ErrOutOfRange
		return ErrOutOfRange
	}
	r.pos = pos
	return nil
}

// ReadBytes consumes the next n bytes. The returned slice aliases the buffer.
func (r *BinaryReader) ReadBytes(n uint32) []byte {
	if r.err != nil {
		return nil
	}
	if r.Len() < n {
		r.err = ErrUnexpectedEnd
		r.pos = uint32(len(r.buf))
		return nil
	}
	buf := r.buf[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return buf
}

// ReadString consumes n bytes as a string.
func (r *BinaryReader) ReadString(n uint32) string {
	return string(r.ReadBytes(n))
}

// ReadTag consumes 4 bytes as a table or axis tag.
func (r *BinaryReader) ReadTag() string {
	return r.ReadString(4)
}

func (r *BinaryReader) ReadByte() byte {
	b := r.ReadBytes(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *BinaryReader) ReadUint8() uint8 {
	return r.ReadByte()
}

func (r *BinaryReader) ReadInt8() int8 {
	return int8(r.ReadByte())
}

func (r *BinaryReader) ReadUint16() uint16 {
	b := r.ReadBytes(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (r *BinaryReader) ReadInt16() int16 {
	return int16(r.ReadUint16())
}

func (r *BinaryReader) ReadUint32() uint32 {
	b := r.ReadBytes(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *BinaryReader) ReadInt32() int32 {
	return int32(r.ReadUint32())
}

func (r *BinaryReader) ReadUint64() uint64 {
	b := r.ReadBytes(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// ReadFixed reads a 16.16 fixed-point number.
func (r *BinaryReader) ReadFixed() float64 {
	return float64(r.ReadInt32()) / 65536.0
}

// ReadF2Dot14 reads a 2.14 fixed-point number.
func (r *BinaryReader) ReadF2Dot14() float64 {
	return float64(r.ReadInt16()) / 16384.0
}

// BinaryWriter appends big-endian values to a growing buffer. It mirrors
// BinaryReader and is used to assemble font data, mainly in tests.
type BinaryWriter struct {
	buf []byte
}

// NewBinaryWriter returns a writer that appends to buf.
func NewBinaryWriter(buf []byte) *BinaryWriter {
	return &BinaryWriter{buf[:0]}
}

// Bytes returns the written buffer.
func (w *BinaryWriter) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *BinaryWriter) Len() uint32 {
	return uint32(len(w.buf))
}

func (w *BinaryWriter) WriteBytes(v []byte) {
	w.buf = append(w.buf, v...)
}

func (w *BinaryWriter) WriteByte(v byte) {
	w.buf = append(w.buf, v)
}

func (w *BinaryWriter) WriteString(v string) {
	w.WriteBytes([]byte(v))
}

// WriteTag writes a 4-byte tag, padding or truncating to 4 bytes.
func (w *BinaryWriter) WriteTag(v string) {
	tag := []byte("    ")
	copy(tag, v)
	w.WriteBytes(tag[:4])
}

func (w *BinaryWriter) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *BinaryWriter) WriteInt8(v int8) {
	w.WriteUint8(uint8(v))
}

func (w *BinaryWriter) WriteUint16(v uint16) {
	pos := len(w.buf)
	w.buf = append(w.buf, 0, 0)
	binary.BigEndian.PutUint16(w.buf[pos:], v)
}

func (w *BinaryWriter) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

func (w *BinaryWriter) WriteUint32(v uint32) {
	pos := len(w.buf)
	w.buf = append(w.buf, 0, 0, 0, 0)
	binary.BigEndian.PutUint32(w.buf[pos:], v)
}

func (w *BinaryWriter) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *BinaryWriter) WriteUint64(v uint64) {
	pos := len(w.buf)
	w.buf = append(w.buf, 0, 0, 0, 0, 0, 0, 0, 0)
	binary.BigEndian.PutUint64(w.buf[pos:], v)
}

// WriteFixed writes a 16.16 fixed-point number.
func (w *BinaryWriter) WriteFixed(v float64) {
	w.WriteInt32(int32(v * 65536.0))
}

// WriteF2Dot14 writes a 2.14 fixed-point number.
func (w *BinaryWriter) WriteF2Dot14(v float64) {
	w.WriteInt16(int16(v * 16384.0))
}
