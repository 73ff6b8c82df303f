package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/critterman/skyrim_plugin_browser/esp"
)

func examplePlugin() *esp.Plugin {
	editorID := "Tamriel"
	cellEditorID := "WildernessA"
	x, y := int32(32), int32(3)
	worldID := uint32(60)

	worlds := esp.NewWorlds()
	worlds.Put(esp.World{FormID: 60, EditorID: &editorID})

	return &esp.Plugin{
		Header: esp.Header{
			Version:             1.0,
			NumRecordsAndGroups: 792,
			NextObjectID:        221145,
			Author:              "Critterman",
		},
		Worlds: worlds,
		Cells: []esp.Cell{
			{FormID: 100000001},
			{FormID: 3444, EditorID: &cellEditorID, X: &x, Y: &y, WorldFormID: &worldID, IsPersistent: true},
		},
	}
}

func TestWriteJSONSchema(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, examplePlugin(), false); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var doc struct {
		Header struct {
			Version             float64  `json:"version"`
			NumRecordsAndGroups uint32   `json:"num_records_and_groups"`
			NextObjectID        uint32   `json:"next_object_id"`
			Author              string   `json:"author"`
			Description         *string  `json:"description"`
			Masters             []string `json:"masters"`
		} `json:"header"`
		Worlds []struct {
			FormID   uint32  `json:"form_id"`
			EditorID *string `json:"editor_id"`
		} `json:"worlds"`
		Cells []struct {
			FormID       uint32  `json:"form_id"`
			EditorID     *string `json:"editor_id"`
			X            *int32  `json:"x"`
			Y            *int32  `json:"y"`
			WorldFormID  *uint32 `json:"world_form_id"`
			IsPersistent bool    `json:"is_persistent"`
		} `json:"cells"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if doc.Header.Author != "Critterman" || doc.Header.NumRecordsAndGroups != 792 {
		t.Errorf("header = %+v", doc.Header)
	}
	if doc.Header.Description != nil {
		t.Errorf("description = %v, want null", *doc.Header.Description)
	}
	if len(doc.Worlds) != 1 || doc.Worlds[0].FormID != 60 {
		t.Errorf("worlds = %+v", doc.Worlds)
	}
	if len(doc.Cells) != 2 {
		t.Fatalf("cells = %+v", doc.Cells)
	}
	if doc.Cells[0].X != nil || doc.Cells[0].WorldFormID != nil {
		t.Errorf("interior cell serialized with coordinates: %+v", doc.Cells[0])
	}
	if doc.Cells[1].X == nil || *doc.Cells[1].X != 32 || !doc.Cells[1].IsPersistent {
		t.Errorf("exterior cell = %+v", doc.Cells[1])
	}

	// Null must be spelled out for absent optionals, not omitted.
	if !strings.Contains(buf.String(), `"description":null`) {
		t.Error(`compact JSON lacks "description":null`)
	}
}

func TestWriteJSONPretty(t *testing.T) {
	var compact, pretty bytes.Buffer
	plugin := examplePlugin()
	if err := WriteJSON(&compact, plugin, false); err != nil {
		t.Fatal(err)
	}
	if err := WriteJSON(&pretty, plugin, true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(pretty.String(), "\n  ") {
		t.Error("pretty output is not indented")
	}

	var a, b interface{}
	if err := json.Unmarshal(compact.Bytes(), &a); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(pretty.Bytes(), &b); err != nil {
		t.Fatal(err)
	}
	if !jsonEqual(a, b) {
		t.Error("pretty and compact JSON differ in content")
	}
}

func jsonEqual(a, b interface{}) bool {
	ab, _ := json.Marshal(a)
	bb, _ := json.Marshal(b)
	return bytes.Equal(ab, bb)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, examplePlugin()); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"author:",
		"Critterman",
		"worlds (1):",
		"Tamriel",
		"cells (2):",
		"100000001",
		"WildernessA",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report lacks %q:\n%s", want, out)
		}
	}

	// The interior cell renders dashes for the absent grid fields.
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "100000001") {
			if !strings.Contains(line, "-") {
				t.Errorf("interior cell line lacks placeholders: %q", line)
			}
		}
	}
}

func TestWriteDump(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDump(&buf, examplePlugin()); err != nil {
		t.Fatalf("WriteDump: %v", err)
	}
	if !strings.Contains(buf.String(), "Critterman") {
		t.Error("dump output lacks plugin contents")
	}
}
