package nav

import "sync"

// Item is a landing page link
type Item struct {
	Name string
	Href string
}

// LandingItems are the marketing links shown in the landing header
var LandingItems = []Item{
	{Name: "home", Href: "/"},
	{Name: "features", Href: "/#features"},
	{Name: "pricing", Href: "/#pricing"},
	{Name: "contact", Href: "/#contact"},
}

// Menu is the landing header state: the link list plus the mobile menu
// toggle and the solid-background flag set once the page scrolls.
type Menu struct {
	Items []Item

	mu    sync.Mutex
	open  bool
	solid bool
}

// NewMenu returns a closed menu over items
func NewMenu(items []Item) *Menu {
	return &Menu{Items: items}
}

// Toggle flips the mobile menu and returns the new state
func (m *Menu) Toggle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = !m.open
	return m.open
}

// Open reports whether the mobile menu is shown
func (m *Menu) Open() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// SetScrolled switches the header background
func (m *Menu) SetScrolled(scrolled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.solid = scrolled
}

// Background is the header background class
func (m *Menu) Background() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.solid {
		return "bg-black"
	}
	return "bg-none"
}
