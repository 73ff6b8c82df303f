// Package report renders a parsed plugin as JSON, a flat text table,
// or a spew debug dump. It only consumes the esp data model and never
// touches the raw plugin bytes.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/critterman/skyrim_plugin_browser/esp"
	"github.com/critterman/skyrim_plugin_browser/utils"
)

// WriteJSON writes the plugin as a JSON document, optionally
// indented. Absent optional fields serialize as null.
func WriteJSON(w io.Writer, plugin *esp.Plugin, pretty bool) error {
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(plugin, "", "  ")
	} else {
		data, err = json.Marshal(plugin)
	}
	if err != nil {
		return errors.Wrap(err, "Failed to marshal plugin")
	}
	data = append(data, '\n')

	_, err = w.Write(data)
	return errors.Wrap(err, "Failed to write report")
}

// WriteText writes a flat human-readable report: header block, world
// table, cell table. Absent optionals render as "-".
func WriteText(w io.Writer, plugin *esp.Plugin) error {
	h := plugin.Header
	fmt.Fprintf(w, "version:                %g\n", h.Version)
	fmt.Fprintf(w, "records and groups:     %d\n", h.NumRecordsAndGroups)
	fmt.Fprintf(w, "next object id:         %d\n", h.NextObjectID)
	fmt.Fprintf(w, "author:                 %s\n", h.Author)
	fmt.Fprintf(w, "description:            %s\n", optString(h.Description))
	if len(h.Masters) == 0 {
		fmt.Fprintf(w, "masters:                -\n")
	} else {
		for i, m := range h.Masters {
			if i == 0 {
				fmt.Fprintf(w, "masters:                %s\n", m)
			} else {
				fmt.Fprintf(w, "                        %s\n", m)
			}
		}
	}

	fmt.Fprintf(w, "\nworlds (%d):\n", plugin.Worlds.Len())
	fmt.Fprintf(w, "%-12s %s\n", "form id", "editor id")
	for _, world := range plugin.Worlds.All() {
		fmt.Fprintf(w, "%-12d %s\n", world.FormID, optString(world.EditorID))
	}

	fmt.Fprintf(w, "\ncells (%d):\n", len(plugin.Cells))
	fmt.Fprintf(w, "%-12s %-7s %-7s %-12s %-10s %s\n",
		"form id", "x", "y", "world", "persist", "editor id")
	for _, cell := range plugin.Cells {
		fmt.Fprintf(w, "%-12d %-7s %-7s %-12s %-10v %s\n",
			cell.FormID, optInt32(cell.X), optInt32(cell.Y),
			optUint32(cell.WorldFormID), cell.IsPersistent, optString(cell.EditorID))
	}

	return nil
}

// WriteDump writes the spew rendering of the whole plugin structure,
// the closest thing to the raw in-memory result.
func WriteDump(w io.Writer, plugin *esp.Plugin) error {
	_, err := io.WriteString(w, utils.SDump(plugin))
	return errors.Wrap(err, "Failed to write dump")
}

func optString(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func optInt32(v *int32) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(int64(*v), 10)
}

func optUint32(v *uint32) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatUint(uint64(*v), 10)
}
