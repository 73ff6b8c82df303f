package esp

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/critterman/skyrim_plugin_browser/utils"
)

const recordHeaderSize = 24

// Record type tags the extractor cares about. Every other type is
// accepted structurally and skipped without subrecord decoding.
const (
	recordTypeHeader = "TES4"
	recordTypeWorld  = "WRLD"
	recordTypeCell   = "CELL"
)

const recordFlagCompressed = 0x00040000

type recordHeader struct {
	Type     string
	DataSize uint32
	Flags    uint32
	FormID   uint32
	Revision uint32
	Version  uint16
	Unknown  uint16
}

func (h *recordHeader) compressed() bool {
	return h.Flags&recordFlagCompressed != 0
}

func readRecordHeader(c *Cursor) (recordHeader, error) {
	var h recordHeader
	var err error

	if h.Type, err = c.ReadTag(); err != nil {
		return h, err
	}
	if h.DataSize, err = c.ReadUint32(); err != nil {
		return h, err
	}
	if h.Flags, err = c.ReadUint32(); err != nil {
		return h, err
	}
	if h.FormID, err = c.ReadUint32(); err != nil {
		return h, err
	}
	if h.Revision, err = c.ReadUint32(); err != nil {
		return h, err
	}
	if h.Version, err = c.ReadUint16(); err != nil {
		return h, err
	}
	if h.Unknown, err = c.ReadUint16(); err != nil {
		return h, err
	}
	return h, nil
}

// readRecordData consumes the record's nominal payload and returns
// the effective payload for subrecord decoding: a slice of the input
// for plain records, or a freshly inflated buffer for compressed
// ones. Downstream decoding never sees the difference.
func readRecordData(c *Cursor, h *recordHeader) ([]byte, error) {
	raw, err := c.ReadBytes(int(h.DataSize))
	if err != nil {
		return nil, err
	}
	if !h.compressed() {
		return raw, nil
	}

	if len(raw) < 4 {
		return nil, errors.Wrapf(ErrDecompression,
			"record %q 0x%08x: compressed payload of %d bytes has no size field", h.Type, h.FormID, len(raw))
	}
	uncompressedSize := binary.LittleEndian.Uint32(raw)

	zr, err := zlib.NewReader(bytes.NewReader(raw[4:]))
	if err != nil {
		return nil, errors.Wrapf(ErrDecompression, "record %q 0x%08x: %v", h.Type, h.FormID, err)
	}
	defer zr.Close()

	inflated := make([]byte, uncompressedSize)
	if _, err := io.ReadFull(zr, inflated); err != nil {
		return nil, errors.Wrapf(ErrDecompression,
			"record %q 0x%08x: stream shorter than declared %d bytes: %v", h.Type, h.FormID, uncompressedSize, err)
	}
	var extra [1]byte
	if n, _ := zr.Read(extra[:]); n != 0 {
		return nil, errors.Wrapf(ErrDecompression,
			"record %q 0x%08x: stream longer than declared %d bytes", h.Type, h.FormID, uncompressedSize)
	}
	return inflated, nil
}

// decodeHeaderRecord extracts the plugin header from a TES4 payload.
// HEDR and CNAM are mandatory; SNAM and repeated MAST are optional.
func decodeHeaderRecord(data []byte) (Header, error) {
	var header Header
	seenHEDR, seenCNAM := false, false

	sr := NewSubrecordReader(data)
	for {
		sub, err := sr.Next()
		if err != nil {
			return header, err
		}
		if sub == nil {
			break
		}

		switch sub.Tag {
		case "HEDR":
			f := NewCursor(sub.Data)
			if header.Version, err = f.ReadFloat32(); err != nil {
				return header, err
			}
			if header.NumRecordsAndGroups, err = f.ReadUint32(); err != nil {
				return header, err
			}
			if header.NextObjectID, err = f.ReadUint32(); err != nil {
				return header, err
			}
			seenHEDR = true
		case "CNAM":
			if header.Author, err = utils.DecodeZString(sub.Data); err != nil {
				return header, err
			}
			seenCNAM = true
		case "SNAM":
			desc, err := utils.DecodeZString(sub.Data)
			if err != nil {
				return header, err
			}
			header.Description = &desc
		case "MAST":
			master, err := utils.DecodeZString(sub.Data)
			if err != nil {
				return header, err
			}
			header.Masters = append(header.Masters, master)
		}
	}

	if !seenHEDR {
		return header, errors.Wrap(ErrMissingHeader, "TES4 record has no HEDR subrecord")
	}
	if !seenCNAM {
		return header, errors.Wrap(ErrMissingHeader, "TES4 record has no CNAM subrecord")
	}
	return header, nil
}

func decodeWorldRecord(h *recordHeader, data []byte) (World, error) {
	world := World{FormID: h.FormID}

	sr := NewSubrecordReader(data)
	for {
		sub, err := sr.Next()
		if err != nil {
			return world, err
		}
		if sub == nil {
			return world, nil
		}

		if sub.Tag == "EDID" {
			editorID, err := utils.DecodeZString(sub.Data)
			if err != nil {
				return world, err
			}
			world.EditorID = &editorID
		}
	}
}

func decodeCellRecord(h *recordHeader, data []byte, ctx traversalContext) (Cell, error) {
	cell := Cell{FormID: h.FormID, IsPersistent: ctx.persistent}

	var gridX, gridY int32
	hasGrid := false

	sr := NewSubrecordReader(data)
	for {
		sub, err := sr.Next()
		if err != nil {
			return cell, err
		}
		if sub == nil {
			break
		}

		switch sub.Tag {
		case "EDID":
			editorID, err := utils.DecodeZString(sub.Data)
			if err != nil {
				return cell, err
			}
			cell.EditorID = &editorID
		case "XCLC":
			// First two fields are the grid coordinates; a trailing
			// flag word is present in newer format versions and
			// carries nothing we extract.
			f := NewCursor(sub.Data)
			if gridX, err = f.ReadInt32(); err != nil {
				return cell, err
			}
			if gridY, err = f.ReadInt32(); err != nil {
				return cell, err
			}
			hasGrid = true
		}
	}

	// Grid coordinates and the owning world space travel together:
	// both known means an exterior cell, anything less is reported as
	// an interior one.
	if ctx.hasWorld && hasGrid {
		world := ctx.worldFormID
		x, y := gridX, gridY
		cell.WorldFormID = &world
		cell.X = &x
		cell.Y = &y
	}
	return cell, nil
}
