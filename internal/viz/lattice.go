package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/decaysim/internal/decay"
)

const (
	undecayedGlyph = "●"
	decayedGlyph   = "·"
)

// RenderLattice draws one glyph per nucleus in the theme's colors.
// Consecutive cells in the same state share a single styled span.
func RenderLattice(l *decay.Lattice, theme Theme) string {
	live := lipgloss.NewStyle().Foreground(theme.Undecayed)
	dead := lipgloss.NewStyle().Foreground(theme.Decayed)

	var b strings.Builder
	for r := 0; r < l.Size(); r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		row := l.Row(r)
		for start := 0; start < len(row); {
			end := start
			for end < len(row) && row[end] == row[start] {
				end++
			}
			glyph, style := decayedGlyph, dead
			if row[start] == decay.Undecayed {
				glyph, style = undecayedGlyph, live
			}
			span := strings.TrimSuffix(strings.Repeat(glyph+" ", end-start), " ")
			if end < len(row) {
				span += " "
			}
			b.WriteString(style.Render(span))
			start = end
		}
	}
	return b.String()
}
