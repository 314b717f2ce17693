package tui

import (
	"testing"

	"github.com/theirongolddev/finburn/internal/tui/components"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	n := len(components.Tabs)
	for active := 0; active < n; active++ {
		a := App{activeTab: active}
		pos := 0

		for i := 0; i < n; i++ {
			w := len(components.Tabs[i].Name) + 2 // padding or surrounding spaces
			x := pos + w/2                         // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w
			if i < n-1 {
				if got := a.tabAtX(pos); got != -1 {
					t.Fatalf("active=%d separator x=%d -> tab=%d, want -1", active, pos, got)
				}
				pos++ // separator
			}
		}
		if got := a.tabAtX(pos + 5); got != -1 {
			t.Fatalf("active=%d past end -> tab=%d, want -1", active, got)
		}
	}
}
