package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/transform"

	"github.com/critterman/skyrim_plugin_browser/config"
)

// ErrInvalidText is returned when a byte string contains bytes that
// have no mapping in the configured codepage.
var ErrInvalidText = errors.New("bytes not representable in the configured codepage")

// DecodeZString decodes a zero-terminated byte string from a plugin
// into UTF-8 using the configured codepage. A single trailing zero
// terminator is stripped if present.
func DecodeZString(bs []byte) (string, error) {
	if n := len(bs); n > 0 && bs[n-1] == 0 {
		bs = bs[:n-1]
	}

	decoded, _, err := transform.Bytes(config.GetEncoding().NewDecoder(), bs)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidText, "decode %q: %v", bs, err)
	}

	// Charmap decoders substitute U+FFFD for bytes without a mapping
	// instead of failing. No defined codepage entry maps to U+FFFD,
	// so its presence always means undecodable input.
	s := string(decoded)
	if strings.ContainsRune(s, utf8.RuneError) {
		return "", errors.Wrapf(ErrInvalidText, "decode %q", bs)
	}
	return s, nil
}

// StringToBytes encodes a UTF-8 string into the configured codepage.
// Used by fixtures and the upload path, where the input is known to
// be representable.
func StringToBytes(s string, nilTerminate bool) []byte {
	bs, _, err := transform.Bytes(config.GetEncoding().NewEncoder(), []byte(s))
	if err != nil {
		panic(err)
	}

	if nilTerminate {
		bs = append(bs, 0)
	}
	return bs
}

// BytesStringLength returns the length of a zero-terminated string
// inside a buffer, excluding the terminator.
func BytesStringLength(bs []byte) int {
	if l := strings.IndexByte(string(bs), 0); l != -1 {
		return l
	}
	return len(bs)
}
