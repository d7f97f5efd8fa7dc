// SPDX-License-Identifier: GPL-2.0-or-later

// Package ucfb reads the chunked "ucfb" container produced by the asset
// munging pipeline.
//
// A chunk is {magic: 4 bytes, size: u32 little-endian, payload: size bytes},
// with the next sibling starting at the following four byte boundary. A
// Reader is a non-owning view of one chunk. Its only mutable state is the
// read head; copying a reader with Fork gives an independent head over the
// same payload. A single Reader must not be mutated concurrently, but
// distinct readers over the same backing buffer are safe to use from
// multiple goroutines.
package ucfb

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

var (
	ErrBounds             = errors.New("read past end of chunk")
	ErrSizeMismatch       = errors.New("chunk size mismatch")
	ErrUnexpectedMagic    = errors.New("unexpected magic number")
	ErrUnterminatedString = errors.New("unterminated string")
)

const headerSize = 8

// Reader is a cursor over a single chunk's payload.
type Reader struct {
	magic uint32
	data  []byte
	head  int
}

// NewReader wraps a complete chunk, header included. The declared size must
// match the span exactly.
func NewReader(data []byte) (*Reader, error) {
	if len(data) < headerSize {
		return nil, errors.Wrapf(ErrSizeMismatch, "span of %d bytes is too small for a chunk header", len(data))
	}
	magic := binary.LittleEndian.Uint32(data[0:4])
	size := binary.LittleEndian.Uint32(data[4:8])
	if uint64(len(data)) != headerSize+uint64(size) {
		return nil, errors.Wrapf(ErrSizeMismatch, "%s: declared size %d but span holds %d payload bytes",
			MagicString(magic), size, len(data)-headerSize)
	}
	return &Reader{magic: magic, data: data[headerSize:]}, nil
}

// Magic returns the chunk's magic number.
func (r *Reader) Magic() uint32 { return r.magic }

// Size returns the chunk's payload size in bytes.
func (r *Reader) Size() int { return len(r.data) }

// Head returns the current read offset within the payload.
func (r *Reader) Head() int { return r.head }

// More reports whether unread payload remains.
func (r *Reader) More() bool { return r.head < len(r.data) }

// ResetHead moves the read head back to the start of the payload.
func (r *Reader) ResetHead() { r.head = 0 }

// Fork returns a copy of the reader with an independent head.
func (r *Reader) Fork() *Reader {
	c := *r
	return &c
}

// Payload returns a view of the chunk's full payload, ignoring the head.
func (r *Reader) Payload() []byte { return r.data }

// take reserves n bytes at the head, returning their start offset. Aligned
// takes round the head up to the next four byte boundary afterwards; the
// rounding itself never fails, it is clamped to the chunk size.
func (r *Reader) take(n int, aligned bool) (int, error) {
	pos := r.head
	if n < 0 || n > len(r.data)-pos {
		return 0, errors.Wrapf(ErrBounds, "%s: %d byte read at offset %d in chunk of %d",
			MagicString(r.magic), n, pos, len(r.data))
	}
	r.head = pos + n
	if aligned {
		r.alignHead()
	}
	return pos, nil
}

func (r *Reader) alignHead() {
	if rem := r.head % 4; rem != 0 {
		r.head += 4 - rem
		if r.head > len(r.data) {
			r.head = len(r.data)
		}
	}
}

// Consume advances the head by n bytes and realigns it.
func (r *Reader) Consume(n int) error {
	_, err := r.take(n, true)
	return err
}

// ConsumeUnaligned advances the head by exactly n bytes.
func (r *Reader) ConsumeUnaligned(n int) error {
	_, err := r.take(n, false)
	return err
}

// ReadBytes returns a view of the next n payload bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	pos, err := r.take(n, true)
	if err != nil {
		return nil, err
	}
	return r.data[pos : pos+n], nil
}

// ReadBytesUnaligned is ReadBytes without the trailing alignment.
func (r *Reader) ReadBytesUnaligned(n int) ([]byte, error) {
	pos, err := r.take(n, false)
	if err != nil {
		return nil, err
	}
	return r.data[pos : pos+n], nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	pos, err := r.take(1, true)
	if err != nil {
		return 0, err
	}
	return r.data[pos], nil
}

func (r *Reader) ReadUint8Unaligned() (uint8, error) {
	pos, err := r.take(1, false)
	if err != nil {
		return 0, err
	}
	return r.data[pos], nil
}

func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

func (r *Reader) ReadUint16() (uint16, error) {
	pos, err := r.take(2, true)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r.data[pos:]), nil
}

func (r *Reader) ReadUint16Unaligned() (uint16, error) {
	pos, err := r.take(2, false)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r.data[pos:]), nil
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

func (r *Reader) ReadUint32() (uint32, error) {
	pos, err := r.take(4, true)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.data[pos:]), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadVec2 reads two consecutive float32 values.
func (r *Reader) ReadVec2() (mgl32.Vec2, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return mgl32.Vec2{}, err
	}
	return mgl32.Vec2{
		math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
	}, nil
}

// ReadVec3 reads three consecutive float32 values.
func (r *Reader) ReadVec3() (mgl32.Vec3, error) {
	b, err := r.ReadBytes(12)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return mgl32.Vec3{
		math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}, nil
}

// ReadVec4 reads four consecutive float32 values.
func (r *Reader) ReadVec4() (mgl32.Vec4, error) {
	b, err := r.ReadBytes(16)
	if err != nil {
		return mgl32.Vec4{}, err
	}
	return mgl32.Vec4{
		math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[12:])),
	}, nil
}

// ReadUint16s reads n little-endian uint16 values.
func (r *Reader) ReadUint16s(n int) ([]uint16, error) {
	b, err := r.ReadBytes(2 * n)
	if err != nil {
		return nil, err
	}
	out := make([]uint16, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return out, nil
}

// ReadUint32s reads n little-endian uint32 values.
func (r *Reader) ReadUint32s(n int) ([]uint32, error) {
	b, err := r.ReadBytes(4 * n)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[4*i:])
	}
	return out, nil
}

func (r *Reader) readString(aligned bool) (string, error) {
	rest := r.data[r.head:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", errors.Wrapf(ErrUnterminatedString, "%s: string at offset %d", MagicString(r.magic), r.head)
	}
	// take cannot fail here, the terminator is in bounds
	pos, _ := r.take(end+1, aligned)
	return string(r.data[pos : pos+end]), nil
}

// ReadString reads a NUL-terminated string and realigns the head. The
// returned string is a copy and does not borrow from the backing buffer.
func (r *Reader) ReadString() (string, error) {
	return r.readString(true)
}

// ReadStringUnaligned reads a NUL-terminated string, advancing the head
// exactly past the terminator.
func (r *Reader) ReadStringUnaligned() (string, error) {
	return r.readString(false)
}

// peekChild decodes the chunk header at the head without moving it. It
// returns the child and the unaligned byte count of the child's footprint.
func (r *Reader) peekChild() (*Reader, int, error) {
	if len(r.data)-r.head < headerSize {
		return nil, 0, errors.Wrapf(ErrBounds, "%s: child header at offset %d in chunk of %d",
			MagicString(r.magic), r.head, len(r.data))
	}
	magic := binary.LittleEndian.Uint32(r.data[r.head:])
	size := binary.LittleEndian.Uint32(r.data[r.head+4:])
	if uint64(size) > uint64(len(r.data)-r.head-headerSize) {
		return nil, 0, errors.Wrapf(ErrBounds, "%s: child %s declares %d bytes but only %d remain",
			MagicString(r.magic), MagicString(magic), size, len(r.data)-r.head-headerSize)
	}
	child := &Reader{
		magic: magic,
		data:  r.data[r.head+headerSize : r.head+headerSize+int(size)],
	}
	return child, headerSize + int(size), nil
}

// ReadChild reads the chunk at the head, whatever its magic, and advances
// the head past its padded footprint.
func (r *Reader) ReadChild() (*Reader, error) {
	child, footprint, err := r.peekChild()
	if err != nil {
		return nil, err
	}
	r.head += footprint
	r.alignHead()
	return child, nil
}

// TryReadChild is ReadChild with failures converted into nil. The head does
// not move when nil is returned.
func (r *Reader) TryReadChild() *Reader {
	child, footprint, err := r.peekChild()
	if err != nil {
		return nil
	}
	r.head += footprint
	r.alignHead()
	return child
}

// ReadChildStrict reads a child chunk whose magic must equal tag. On a
// mismatch the head does not move.
func (r *Reader) ReadChildStrict(tag uint32) (*Reader, error) {
	child, footprint, err := r.peekChild()
	if err != nil {
		return nil, err
	}
	if child.magic != tag {
		return nil, errors.Wrapf(ErrUnexpectedMagic, "%s: wanted child %s, found %s",
			MagicString(r.magic), MagicString(tag), MagicString(child.magic))
	}
	r.head += footprint
	r.alignHead()
	return child, nil
}

// ReadChildStrictOptional reads a child chunk if its magic equals tag,
// returning nil and leaving the head in place otherwise.
func (r *Reader) ReadChildStrictOptional(tag uint32) *Reader {
	child, footprint, err := r.peekChild()
	if err != nil || child.magic != tag {
		return nil
	}
	r.head += footprint
	r.alignHead()
	return child
}
