package esp

// Fixture builders assembling plugin buffers from parts. Layout
// mirrors what the game's own editor emits: a TES4 record followed by
// top-level groups, with block/sub-block hierarchies below them.

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"math"

	"github.com/critterman/skyrim_plugin_browser/utils"
)

func leU16(v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return b[:]
}

func leU32(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func leI32(v int32) []byte {
	return leU32(uint32(v))
}

func leF32(v float32) []byte {
	return leU32(math.Float32bits(v))
}

func cat(parts ...[]byte) []byte {
	var buf bytes.Buffer
	for _, p := range parts {
		buf.Write(p)
	}
	return buf.Bytes()
}

// buildSub assembles one subrecord: tag, 16-bit size, payload.
func buildSub(tag string, data []byte) []byte {
	return cat([]byte(tag), leU16(uint16(len(data))), data)
}

// buildZSub assembles a zero-terminated string subrecord.
func buildZSub(tag, s string) []byte {
	return buildSub(tag, utils.StringToBytes(s, true))
}

// buildRecord assembles a record with an uncompressed payload.
func buildRecord(recordType string, flags, formID uint32, payload []byte) []byte {
	return cat(
		[]byte(recordType),
		leU32(uint32(len(payload))),
		leU32(flags),
		leU32(formID),
		leU32(0), // revision
		leU16(44),
		leU16(0),
		payload,
	)
}

// buildCompressedRecord deflates the payload and prepends the
// uncompressed-size word, setting the compressed flag bit.
func buildCompressedRecord(recordType string, flags, formID uint32, payload []byte) []byte {
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(payload); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	data := cat(leU32(uint32(len(payload))), compressed.Bytes())
	return buildRecord(recordType, flags|recordFlagCompressed, formID, data)
}

// buildGroup assembles a group around its contents. The label must be
// exactly 4 bytes (a type tag, a packed form id, or grid coordinates).
func buildGroup(label []byte, kind groupKind, contents []byte) []byte {
	if len(label) != 4 {
		panic("group label must be 4 bytes")
	}
	return cat(
		[]byte(groupTag),
		leU32(uint32(groupHeaderSize+len(contents))),
		label,
		leI32(int32(kind)),
		leU16(0), // timestamp
		leU16(0), // version control
		leU32(0),
		contents,
	)
}

func buildHEDR(version float32, numRecords, nextObjectID uint32) []byte {
	return buildSub("HEDR", cat(leF32(version), leU32(numRecords), leU32(nextObjectID)))
}

// buildTES4 assembles a minimal valid header record.
func buildTES4(author string, masters ...string) []byte {
	payload := cat(buildHEDR(1.0, 1, 0x800), buildZSub("CNAM", author))
	for _, m := range masters {
		payload = cat(payload, buildZSub("MAST", m))
	}
	return buildRecord(recordTypeHeader, 0, 0, payload)
}

// buildXCLC assembles grid coordinates with the trailing flag word
// found in current-version cells.
func buildXCLC(x, y int32) []byte {
	return buildSub("XCLC", cat(leI32(x), leI32(y), leU32(0)))
}

func strPtr(s string) *string { return &s }
func i32Ptr(v int32) *int32   { return &v }
func u32Ptr(v uint32) *uint32 { return &v }
