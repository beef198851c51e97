package entities

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestWindowOptionsWireFormat(t *testing.T) {
	tests := []struct {
		name string
		opts WindowOptions
		want string
	}{
		{
			name: "defaults omit everything but size",
			opts: DefaultWindowOptions(),
			want: `{"width":800,"height":600}`,
		},
		{
			name: "explicit zero position is kept",
			opts: WindowOptions{Width: 814, Height: 607, X: Int(-7), Y: Int(0)},
			want: `{"width":814,"height":607,"x":-7,"y":0}`,
		},
		{
			name: "false flags and nested prefs are sent",
			opts: WindowOptions{
				Show:           Bool(false),
				Title:          "main",
				WebPreferences: &WebPreferences{NodeIntegration: Bool(false)},
			},
			want: `{"title":"main","show":false,"webPreferences":{"nodeIntegration":false}}`,
		},
		{
			name: "empty options",
			opts: WindowOptions{},
			want: `{}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.opts)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}
			if string(data) != tt.want {
				t.Fatalf("Marshal() = %s, want %s", data, tt.want)
			}
			if strings.Contains(string(data), "null") {
				t.Fatalf("Marshal() emitted null: %s", data)
			}
		})
	}
}

func TestHasDefaultPosition(t *testing.T) {
	if !DefaultWindowOptions().HasDefaultPosition() {
		t.Fatal("DefaultWindowOptions() should use default positioning")
	}
	if (WindowOptions{X: Int(0)}).HasDefaultPosition() {
		t.Fatal("explicit X should not be default positioning")
	}
}

func TestAssignMenuIDs(t *testing.T) {
	in := []MenuItem{
		{Label: "File", Submenu: []MenuItem{{Label: "Open"}, {ID: "quit", Label: "Quit"}}},
	}
	out := AssignMenuIDs(in)

	if in[0].ID != "" || in[0].Submenu[0].ID != "" {
		t.Fatal("AssignMenuIDs() modified its input")
	}
	if out[0].ID == "" || out[0].Submenu[0].ID == "" {
		t.Fatalf("AssignMenuIDs() left empty ids: %+v", out)
	}
	if out[0].Submenu[1].ID != "quit" {
		t.Fatalf("existing id = %q, want %q", out[0].Submenu[1].ID, "quit")
	}

	found, ok := FindMenuItem(out, out[0].Submenu[0].ID)
	if !ok || found.Label != "Open" {
		t.Fatalf("FindMenuItem() = %+v, %v", found, ok)
	}
	if _, ok := FindMenuItem(out, "missing"); ok {
		t.Fatal("FindMenuItem() found a missing id")
	}
}

func TestMenuItemClickNotSerialized(t *testing.T) {
	data, err := json.Marshal(MenuItem{ID: "a", Label: "A", Click: func() {}})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(data) != `{"id":"a","label":"A"}` {
		t.Fatalf("Marshal() = %s", data)
	}
}
