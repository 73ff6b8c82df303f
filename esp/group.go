package esp

import (
	"github.com/pkg/errors"
)

const groupHeaderSize = 24

const groupTag = "GRUP"

// Group kinds, following the format's numeric convention. The set is
// closed: kinds outside it are treated as skippable containers.
type groupKind int32

const (
	groupTopLevel               groupKind = 0
	groupWorldChildren          groupKind = 1
	groupInteriorBlock          groupKind = 2
	groupInteriorSubBlock       groupKind = 3
	groupExteriorBlock          groupKind = 4
	groupExteriorSubBlock       groupKind = 5
	groupCellChildren           groupKind = 6
	groupTopicChildren          groupKind = 7
	groupPersistentChildren     groupKind = 8
	groupTemporaryChildren      groupKind = 9
	groupVisibleDistantChildren groupKind = 10
)

type groupHeader struct {
	Size           uint32 // total size, header included
	Label          [4]byte
	Kind           groupKind
	Timestamp      uint16
	VersionControl uint16
}

func readGroupHeader(c *Cursor) (groupHeader, error) {
	var h groupHeader

	tag, err := c.ReadTag()
	if err != nil {
		return h, err
	}
	if tag != groupTag {
		return h, errors.Wrapf(ErrGroupSizeMismatch, "expected %s header, found %q", groupTag, tag)
	}
	if h.Size, err = c.ReadUint32(); err != nil {
		return h, err
	}
	label, err := c.ReadBytes(4)
	if err != nil {
		return h, err
	}
	copy(h.Label[:], label)
	kind, err := c.ReadInt32()
	if err != nil {
		return h, err
	}
	h.Kind = groupKind(kind)
	if h.Timestamp, err = c.ReadUint16(); err != nil {
		return h, err
	}
	if h.VersionControl, err = c.ReadUint16(); err != nil {
		return h, err
	}
	// Unknown word, fixed by the format but not needed for extraction.
	if err := c.Skip(4); err != nil {
		return h, err
	}
	return h, nil
}

// enter is the descent decision: only world and cell hierarchies are
// worth parsing, everything else is skipped in one cursor jump.
func (h *groupHeader) enter() bool {
	switch h.Kind {
	case groupTopLevel:
		label := string(h.Label[:])
		return label == recordTypeWorld || label == recordTypeCell
	case groupWorldChildren, groupInteriorBlock, groupInteriorSubBlock,
		groupExteriorBlock, groupExteriorSubBlock, groupCellChildren,
		groupPersistentChildren, groupTemporaryChildren, groupVisibleDistantChildren:
		return true
	case groupTopicChildren:
		return false
	}
	return false
}

// traversalContext carries the positional state of the walk. It is
// copied into each nested group frame, so leaving a subtree restores
// the parent's view without explicit cleanup.
type traversalContext struct {
	worldFormID uint32
	hasWorld    bool
	persistent  bool
}

type traversal struct {
	c      *Cursor
	plugin *Plugin
}

// walkGroup consumes one group, cursor positioned at its header.
// Whether the group was entered or skipped, the cursor must land
// exactly at the group's declared end.
func (t *traversal) walkGroup(ctx traversalContext) error {
	start := t.c.Pos()
	h, err := readGroupHeader(t.c)
	if err != nil {
		return err
	}
	if h.Size < groupHeaderSize {
		return errors.Wrapf(ErrGroupSizeMismatch,
			"group %q at 0x%x declares %d bytes, less than its own header", h.Label, start, h.Size)
	}
	end := start + int(h.Size)

	if !h.enter() {
		if err := t.c.Skip(end - t.c.Pos()); err != nil {
			return err
		}
		return nil
	}

	switch h.Kind {
	case groupTopLevel:
		// A fresh world or cell hierarchy; no world space is current
		// until a WRLD record inside establishes one.
		ctx.hasWorld = false
	case groupPersistentChildren:
		ctx.persistent = true
	case groupTemporaryChildren, groupVisibleDistantChildren:
		ctx.persistent = false
	}

	if err := t.walkRange(end, ctx); err != nil {
		return err
	}
	if t.c.Pos() != end {
		return errors.Wrapf(ErrGroupSizeMismatch,
			"group %q at 0x%x: declared end 0x%x, traversal stopped at 0x%x", h.Label, start, end, t.c.Pos())
	}
	return nil
}

// walkRange alternates between records and nested groups until the
// cursor reaches end.
func (t *traversal) walkRange(end int, ctx traversalContext) error {
	for t.c.Pos() < end {
		tag, err := t.c.PeekTag()
		if err != nil {
			return err
		}
		if tag == groupTag {
			// Nested frames get a copy of the context; mutations
			// below this point must not leak back up.
			if err := t.walkGroup(ctx); err != nil {
				return err
			}
			continue
		}
		if err := t.walkRecord(&ctx); err != nil {
			return err
		}
	}
	return nil
}

// walkRecord consumes one record. A WRLD record updates the world
// context for the siblings that follow it in the current frame.
func (t *traversal) walkRecord(ctx *traversalContext) error {
	h, err := readRecordHeader(t.c)
	if err != nil {
		return err
	}

	switch h.Type {
	case recordTypeWorld:
		data, err := readRecordData(t.c, &h)
		if err != nil {
			return err
		}
		world, err := decodeWorldRecord(&h, data)
		if err != nil {
			return err
		}
		t.plugin.Worlds.Put(world)
		ctx.worldFormID = h.FormID
		ctx.hasWorld = true
	case recordTypeCell:
		data, err := readRecordData(t.c, &h)
		if err != nil {
			return err
		}
		cell, err := decodeCellRecord(&h, data, *ctx)
		if err != nil {
			return err
		}
		t.plugin.Cells = append(t.plugin.Cells, cell)
	default:
		// Not an extraction target: jump the payload without looking
		// at its subrecords.
		if err := t.c.Skip(int(h.DataSize)); err != nil {
			return err
		}
	}
	return nil
}
