package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/decaysim/internal/decay"
)

const (
	svgBackground = "#0a0a0a"
	svgUndecayed  = "#00ff88"
)

// LatticeToSVG draws every undecayed nucleus as a filled square of side
// cell on a dark background; decayed cells stay empty.
func LatticeToSVG(l *decay.Lattice, cell float64) string {
	rows := make([][]int, l.Size())
	for r := range rows {
		rows[r] = make([]int, l.Size())
		for c, n := range l.Row(r) {
			rows[r][c] = int(n)
		}
	}
	return RowsToSVG(rows, cell)
}

// RowsToSVG is LatticeToSVG for a lattice already flattened to 0/1 rows,
// as read back from a stored run.
func RowsToSVG(rows [][]int, cell float64) string {
	if len(rows) == 0 || cell <= 0 {
		return ""
	}

	width := float64(len(rows[0])) * cell
	height := float64(len(rows)) * cell

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, svgBackground, svgUndecayed))

	inset := cell * 0.1
	side := cell - 2*inset
	for r, row := range rows {
		for c, v := range row {
			if v == 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>
`, float64(c)*cell+inset, float64(r)*cell+inset, side, side))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
