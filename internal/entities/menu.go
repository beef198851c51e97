package entities

import "github.com/google/uuid"

// MenuItem is one entry of a window menu. Click runs locally when the host
// reports the item was clicked.
type MenuItem struct {
	ID          string     `json:"id,omitempty"`
	Label       string     `json:"label,omitempty"`
	Type        string     `json:"type,omitempty"`
	Role        string     `json:"role,omitempty"`
	Accelerator string     `json:"accelerator,omitempty"`
	Sublabel    string     `json:"sublabel,omitempty"`
	Icon        string     `json:"icon,omitempty"`
	Enabled     *bool      `json:"enabled,omitempty"`
	Visible     *bool      `json:"visible,omitempty"`
	Checked     bool       `json:"checked,omitempty"`
	Submenu     []MenuItem `json:"submenu,omitempty"`

	Click func() `json:"-"`
}

// ThumbarButton is a button in the Windows taskbar thumbnail toolbar.
type ThumbarButton struct {
	ID      string   `json:"id,omitempty"`
	Icon    string   `json:"icon"`
	Tooltip string   `json:"tooltip,omitempty"`
	Flags   []string `json:"flags,omitempty"`

	Click func() `json:"-"`
}

// AssignMenuIDs gives every item without an id a fresh one, recursively,
// and returns the updated copy. The input slice is not modified.
func AssignMenuIDs(items []MenuItem) []MenuItem {
	if items == nil {
		return nil
	}
	out := make([]MenuItem, len(items))
	for i, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.Submenu = AssignMenuIDs(item.Submenu)
		out[i] = item
	}
	return out
}

// FindMenuItem searches items depth-first for id.
func FindMenuItem(items []MenuItem, id string) (MenuItem, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
		if found, ok := FindMenuItem(item.Submenu, id); ok {
			return found, true
		}
	}
	return MenuItem{}, false
}

// AssignThumbarIDs gives every button without an id a fresh one.
func AssignThumbarIDs(buttons []ThumbarButton) []ThumbarButton {
	if buttons == nil {
		return nil
	}
	out := make([]ThumbarButton, len(buttons))
	for i, b := range buttons {
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		out[i] = b
	}
	return out
}
