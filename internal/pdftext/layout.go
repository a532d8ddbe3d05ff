package pdftext

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// Glyph is a positioned run of text in PDF user space (Y grows upwards).
type Glyph struct {
	X, Y     float64
	W        float64
	FontSize float64
	S        string
}

// LayoutOptions tunes line grouping and table detection. Zero values take defaults.
type LayoutOptions struct {
	RowTolerance float64 // max Y distance for glyphs on the same line, default 3pt
	CellGap      float64 // min horizontal gap that splits cells, default 2x font size
	MinRows      int     // default 2
	MinCols      int     // default 2
}

func (o LayoutOptions) withDefaults() LayoutOptions {
	if o.RowTolerance <= 0 {
		o.RowTolerance = 3
	}
	if o.MinRows <= 0 {
		o.MinRows = 2
	}
	if o.MinCols <= 0 {
		o.MinCols = 2
	}
	return o
}

// Cell is a horizontally contiguous run of glyphs on one line.
type Cell struct {
	X0, X1 float64
	Text   string
}

// Line is a set of cells sharing a baseline, left to right.
type Line struct {
	Y     float64
	Cells []Cell
}

const defaultFontSize = 10

func glyphEnd(g Glyph) float64 {
	if g.W > 0 {
		return g.X + g.W
	}
	fs := g.FontSize
	if fs <= 0 {
		fs = defaultFontSize
	}
	return g.X + float64(utf8.RuneCountInString(g.S))*fs*0.5
}

// GroupLines clusters glyphs into lines top to bottom and splits each line into cells.
func GroupLines(glyphs []Glyph, opts LayoutOptions) []Line {
	opts = opts.withDefaults()
	if len(glyphs) == 0 {
		return nil
	}
	sorted := make([]Glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows [][]Glyph
	var cur []Glyph
	var curY float64
	for _, g := range sorted {
		if len(cur) > 0 && math.Abs(g.Y-curY) > opts.RowTolerance {
			rows = append(rows, cur)
			cur = nil
		}
		if len(cur) == 0 {
			curY = g.Y
		}
		cur = append(cur, g)
	}
	if len(cur) > 0 {
		rows = append(rows, cur)
	}

	lines := make([]Line, 0, len(rows))
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		cells := splitCells(row, opts)
		if len(cells) == 0 {
			continue
		}
		lines = append(lines, Line{Y: row[0].Y, Cells: cells})
	}
	return lines
}

func splitCells(row []Glyph, opts LayoutOptions) []Cell {
	var cells []Cell
	var b strings.Builder
	var cell Cell
	open := false
	space := false
	prevEnd := 0.0

	flush := func() {
		if !open {
			return
		}
		cell.Text = strings.TrimSpace(b.String())
		if cell.Text != "" {
			cells = append(cells, cell)
		}
		b.Reset()
		open = false
	}

	for _, g := range row {
		if strings.TrimSpace(g.S) == "" {
			space = true
			continue
		}
		fs := g.FontSize
		if fs <= 0 {
			fs = defaultFontSize
		}
		cellGap := opts.CellGap
		if cellGap <= 0 {
			cellGap = 2 * fs
		}
		gap := g.X - prevEnd

		switch {
		case !open:
			cell = Cell{X0: g.X}
			open = true
		case gap > cellGap:
			flush()
			cell = Cell{X0: g.X}
			open = true
		case space || gap > 0.2*fs:
			b.WriteByte(' ')
		}
		b.WriteString(g.S)
		space = false
		prevEnd = glyphEnd(g)
		cell.X1 = prevEnd
	}
	flush()
	return cells
}

// LinesText renders lines as plain text, cells separated by a space.
func LinesText(lines []Line) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		parts := make([]string, len(l.Cells))
		for i, c := range l.Cells {
			parts[i] = c.Text
		}
		out = append(out, strings.Join(parts, " "))
	}
	return strings.Join(out, "\n")
}

// DetectTables finds runs of consecutive multi-cell lines and aligns their cells into
// columns anchored on the widest line of the run. Missing cells are "".
func DetectTables(lines []Line, opts LayoutOptions) [][][]string {
	opts = opts.withDefaults()
	var tables [][][]string
	var run []Line

	emit := func() {
		if len(run) >= opts.MinRows {
			tables = append(tables, alignRun(run))
		}
		run = nil
	}

	for _, l := range lines {
		if len(l.Cells) >= opts.MinCols {
			run = append(run, l)
			continue
		}
		emit()
	}
	emit()
	return tables
}

func alignRun(run []Line) [][]string {
	widest := run[0]
	for _, l := range run[1:] {
		if len(l.Cells) > len(widest.Cells) {
			widest = l
		}
	}
	anchors := make([]float64, len(widest.Cells))
	for i, c := range widest.Cells {
		anchors[i] = c.X0
	}

	table := make([][]string, 0, len(run))
	for _, l := range run {
		row := make([]string, len(anchors))
		for _, c := range l.Cells {
			col := nearest(anchors, c.X0)
			if row[col] != "" {
				row[col] += " " + c.Text
			} else {
				row[col] = c.Text
			}
		}
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		table = append(table, row)
	}
	return table
}

func nearest(anchors []float64, x float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, a := range anchors {
		if d := math.Abs(a - x); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
