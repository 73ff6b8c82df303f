// Package esp extracts world and cell placement data from Skyrim
// plugin files (.esp/.esm/.esl). It parses the plugin header, WRLD
// and CELL records; every other record type and every irrelevant
// group subtree is skipped without being decoded.
package esp

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Header describes the plugin itself, taken from the mandatory TES4
// record at the start of the file.
type Header struct {
	Version             float32  `json:"version"`
	NumRecordsAndGroups uint32   `json:"num_records_and_groups"`
	NextObjectID        uint32   `json:"next_object_id"`
	Author              string   `json:"author"`
	Description         *string  `json:"description"`
	Masters             []string `json:"masters"`
}

// World is one world-space record. The form id is local to this
// plugin; it is not resolved against the master load order.
type World struct {
	FormID   uint32  `json:"form_id"`
	EditorID *string `json:"editor_id"`
}

// Cell is one cell record. X, Y and WorldFormID are either all set
// (exterior cell with a known owning world space) or all nil
// (interior cell). IsPersistent reflects the group the cell was found
// in, not any flag bits of the record itself.
type Cell struct {
	FormID       uint32  `json:"form_id"`
	EditorID     *string `json:"editor_id"`
	X            *int32  `json:"x"`
	Y            *int32  `json:"y"`
	WorldFormID  *uint32 `json:"world_form_id"`
	IsPersistent bool    `json:"is_persistent"`
}

// Worlds is a mapping of world spaces by form id that remembers
// discovery order. Re-adding an id overwrites the value but keeps the
// original position.
type Worlds struct {
	index map[uint32]int
	list  []World
}

func NewWorlds() *Worlds {
	return &Worlds{
		index: make(map[uint32]int),
		list:  make([]World, 0),
	}
}

func (w *Worlds) Put(world World) {
	if i, ok := w.index[world.FormID]; ok {
		w.list[i] = world
		return
	}
	w.index[world.FormID] = len(w.list)
	w.list = append(w.list, world)
}

func (w *Worlds) Get(formID uint32) (World, bool) {
	if i, ok := w.index[formID]; ok {
		return w.list[i], true
	}
	return World{}, false
}

func (w *Worlds) Len() int {
	return len(w.list)
}

// All returns the world spaces in discovery order. The returned slice
// is shared; callers must not mutate it.
func (w *Worlds) All() []World {
	return w.list
}

func (w *Worlds) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.list)
}

// Plugin is the extraction result. It holds no reference to parser
// state; the caller owns it outright.
type Plugin struct {
	Header Header  `json:"header"`
	Worlds *Worlds `json:"worlds"`
	Cells  []Cell  `json:"cells"`
}

// ParsePlugin extracts the header, world spaces and cells from the
// raw bytes of a plugin file. Parsing is single-pass and
// whole-or-nothing: the first malformed structure aborts the call and
// no partial result is returned. The input buffer is only borrowed;
// it is never written to.
func ParsePlugin(data []byte) (*Plugin, error) {
	c := NewCursor(data)

	tag, err := c.PeekTag()
	if err != nil {
		return nil, err
	}
	if tag != recordTypeHeader {
		return nil, errors.Wrapf(ErrMissingHeader, "first record is %q", tag)
	}

	h, err := readRecordHeader(c)
	if err != nil {
		return nil, err
	}
	payload, err := readRecordData(c, &h)
	if err != nil {
		return nil, err
	}
	header, err := decodeHeaderRecord(payload)
	if err != nil {
		return nil, err
	}

	plugin := &Plugin{
		Header: header,
		Worlds: NewWorlds(),
		Cells:  make([]Cell, 0),
	}

	t := &traversal{c: c, plugin: plugin}
	if err := t.walkRange(len(data), traversalContext{}); err != nil {
		return nil, err
	}
	return plugin, nil
}
