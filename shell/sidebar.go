// client/shell/sidebar.go
package shell

import (
	"fmt"
	"io"

	"github.com/vinizap/lumi/client/store"
)

const (
	AllTagsLabel = "All"
	NoTagsLabel  = "No tags yet"
)

// RenderSidebar lists the tag filter. "All" is always listed and is marked
// when nothing is selected.
func RenderSidebar(w io.Writer, tags []string, f store.Filter) {
	fmt.Fprintln(w, "Tags")
	fmt.Fprintf(w, "  %s %s\n", mark(len(f.Tags) == 0), AllTagsLabel)
	if len(tags) == 0 {
		fmt.Fprintf(w, "    %s\n", NoTagsLabel)
		return
	}
	for _, t := range tags {
		fmt.Fprintf(w, "  %s %s\n", mark(f.Selected(t)), t)
	}
}

func mark(on bool) string {
	if on {
		return "*"
	}
	return " "
}
