package preprocess

import "unicode/utf8"

// annotateTableWidths marks tables that are too wide for the renderer's
// column budget with per-column source character widths. Narrow tables
// are left unannotated so the renderer keeps its default layout.
func annotateTableWidths(doc *Node, columns int) {
	Walk(doc, func(n *Node) {
		if n.Kind != KindTable || n.SourceWidth <= columns {
			return
		}
		n.Widths = columnWidths(n)
	})
}

// columnWidths measures each column as the rune count of the widest cell
// content in it. Only the relative proportions matter downstream; the
// filter turns the counts into fractions of their sum.
func columnWidths(table *Node) []int {
	widths := make([]int, len(table.Alignments))
	for _, row := range table.Children {
		if row.Kind != KindTableHead && row.Kind != KindTableRow {
			continue
		}
		col := 0
		for _, cell := range row.Children {
			if cell.Kind != KindTableCell {
				continue
			}
			if col >= len(widths) {
				break
			}
			w := utf8.RuneCountInString(PlainText(cell))
			if w > widths[col] {
				widths[col] = w
			}
			col++
		}
	}
	return widths
}
