package esp

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Cursor is a bounds-checked little-endian reader over an immutable
// byte buffer. Reads advance the position; slices returned by
// ReadBytes alias the underlying buffer and must not be mutated.
// A Cursor belongs to a single traversal and is not safe for
// concurrent use.
type Cursor struct {
	buf []byte
	pos int
}

func NewCursor(b []byte) *Cursor {
	return &Cursor{buf: b}
}

func (c *Cursor) Pos() int {
	return c.pos
}

func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

func (c *Cursor) require(n int) error {
	if n < 0 || c.Remaining() < n {
		return errors.Wrapf(ErrUnexpectedEOF, "need %d bytes at offset 0x%x, have %d", n, c.pos, c.Remaining())
	}
	return nil
}

// ReadBytes returns the next n bytes without copying.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if err := c.require(n); err != nil {
		return nil, err
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *Cursor) Skip(n int) error {
	if err := c.require(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}

func (c *Cursor) ReadUint8() (uint8, error) {
	if err := c.require(1); err != nil {
		return 0, err
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

func (c *Cursor) ReadUint16() (uint16, error) {
	if err := c.require(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *Cursor) ReadUint32() (uint32, error) {
	if err := c.require(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *Cursor) ReadUint64() (uint64, error) {
	if err := c.require(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(c.buf[c.pos:])
	c.pos += 8
	return v, nil
}

func (c *Cursor) ReadInt32() (int32, error) {
	v, err := c.ReadUint32()
	return int32(v), err
}

func (c *Cursor) ReadFloat32() (float32, error) {
	v, err := c.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadTag reads a fixed 4-byte tag string ("GRUP", "TES4", ...).
func (c *Cursor) ReadTag() (string, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// PeekTag returns the next 4-byte tag without advancing.
func (c *Cursor) PeekTag() (string, error) {
	if err := c.require(4); err != nil {
		return "", err
	}
	return string(c.buf[c.pos : c.pos+4]), nil
}
