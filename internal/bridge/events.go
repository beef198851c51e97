// Package bridge mirrors host-owned windows and views in the controller.
//
// Creation requests are correlated with their one-shot response events,
// created entities are tracked in ordered registries, and the window registry
// is reconciled against the host's periodic report of live window ids.
package bridge

import "strconv"

// Manager-level event names.
const (
	EventCreateWindow        = "createBrowserWindow"
	EventWindowCreated       = "BrowserWindowCreated"
	EventWindowClosed        = "BrowserWindowClosed"
	EventCreateView          = "createBrowserView"
	EventViewCreated         = "BrowserViewCreated"
	EventQuitOnWindowsClosed = "quit-app-window-all-closed-event"
)

// scoped appends an entity id to a base event name so that responses and
// notifications for different entities never share a name.
func scoped(base string, id int) string {
	return base + strconv.Itoa(id)
}

// completed is the response name for a query event on entity id.
func completed(event string, id int) string {
	return scoped(event+"-completed", id)
}
