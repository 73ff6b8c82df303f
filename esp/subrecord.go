package esp

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const subrecordHeaderSize = 6

// extendedSizeTag marks a subrecord that carries no payload of its
// own; its 32-bit value overrides the 16-bit size of the subrecord
// that follows it.
const extendedSizeTag = "XXXX"

// Subrecord is one tagged field inside a record payload. Data aliases
// the record payload buffer.
type Subrecord struct {
	Tag  string
	Data []byte
}

// SubrecordReader decodes a record payload into an ordered sequence
// of subrecords. It is lazy, finite and not restartable.
type SubrecordReader struct {
	c *Cursor
}

func NewSubrecordReader(payload []byte) *SubrecordReader {
	return &SubrecordReader{c: NewCursor(payload)}
}

// Next returns the next subrecord, or (nil, nil) when the payload is
// exhausted. Unknown tags are returned as opaque payloads; relevance
// is the consumer's business.
func (r *SubrecordReader) Next() (*Subrecord, error) {
	var extendedSize uint32
	haveExtendedSize := false

	for r.c.Remaining() > 0 {
		tag, err := r.c.ReadTag()
		if err != nil {
			return nil, err
		}
		declared, err := r.c.ReadUint16()
		if err != nil {
			return nil, err
		}

		size := int(declared)
		if haveExtendedSize {
			size = int(extendedSize)
			haveExtendedSize = false
		}
		if size > r.c.Remaining() {
			return nil, errors.Wrapf(ErrTruncatedSubrecord,
				"subrecord %q declares %d bytes, %d left in record", tag, size, r.c.Remaining())
		}

		data, err := r.c.ReadBytes(size)
		if err != nil {
			return nil, err
		}

		if tag == extendedSizeTag {
			if len(data) < 4 {
				return nil, errors.Wrapf(ErrTruncatedSubrecord,
					"%s subrecord holds %d bytes, need 4", extendedSizeTag, len(data))
			}
			extendedSize = binary.LittleEndian.Uint32(data)
			haveExtendedSize = true
			continue
		}

		return &Subrecord{Tag: tag, Data: data}, nil
	}
	return nil, nil
}
