package actions

import "sync"

// Menus tracks the contextual action menus. At most one menu is open
// process-wide; opening another closes it, and a click outside any
// trigger closes all.
type Menus struct {
	mu   sync.Mutex
	open string // path of the item whose menu is open, "" = none
}

// NewMenus creates the menu tracker.
func NewMenus() *Menus {
	return &Menus{}
}

// Toggle opens the menu for path, closing any other. Toggling the
// already open menu closes it. Returns true if the menu is now open.
func (m *Menus) Toggle(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open == path {
		m.open = ""
		return false
	}
	m.open = path
	return true
}

// Open returns the path whose menu is open, or "" when none is.
func (m *Menus) Open() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// CloseAll closes any open menu.
func (m *Menus) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = ""
}
