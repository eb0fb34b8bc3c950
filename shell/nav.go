// client/shell/nav.go
package shell

import (
	"os"
	"strconv"

	"golang.org/x/term"
)

const (
	// NarrowWidth is the column count below which the tag sidebar becomes a
	// drawer toggled by the sidebar command.
	NarrowWidth  = 80
	DefaultWidth = 100
)

// Nav holds the only piece of navigation state: whether the sidebar drawer
// is open on a narrow terminal.
type Nav struct {
	SidebarVisible bool
}

func (n *Nav) Toggle() { n.SidebarVisible = !n.SidebarVisible }
func (n *Nav) Open()   { n.SidebarVisible = true }
func (n *Nav) Close()  { n.SidebarVisible = false }

// ShowSidebar reports whether the sidebar is drawn at the given width.
func (n Nav) ShowSidebar(width int) bool {
	return width >= NarrowWidth || n.SidebarVisible
}

// TerminalWidth prefers COLUMNS, then the size of f when it is a terminal.
func TerminalWidth(f *os.File) int {
	if v, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && v > 0 {
		return v
	}
	if f != nil && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return DefaultWidth
}
