package esp

import (
	"github.com/pkg/errors"

	"github.com/critterman/skyrim_plugin_browser/utils"
)

var (
	// ErrUnexpectedEOF is returned when a read would cross the end of
	// the plugin buffer. All offsets in the format depend on
	// correctly-sized predecessors, so this always aborts the parse.
	ErrUnexpectedEOF = errors.New("unexpected end of plugin data")

	// ErrInvalidText is returned when a text subrecord holds bytes
	// with no mapping in the configured codepage.
	ErrInvalidText = utils.ErrInvalidText

	// ErrTruncatedSubrecord is returned when a subrecord declares a
	// size larger than the remaining record payload.
	ErrTruncatedSubrecord = errors.New("subrecord size exceeds record payload")

	// ErrDecompression is returned when a compressed record payload
	// cannot be inflated to exactly its declared uncompressed size.
	ErrDecompression = errors.New("record decompression failed")

	// ErrGroupSizeMismatch is returned when traversal of a group does
	// not consume exactly the group's declared size.
	ErrGroupSizeMismatch = errors.New("group size mismatch")

	// ErrMissingHeader is returned when the plugin does not begin with
	// a valid TES4 header record.
	ErrMissingHeader = errors.New("plugin does not start with TES4 header record")
)
