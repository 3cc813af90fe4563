package wrapper

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	rowTolerance        = 3.0  // 3pt Y tolerance for same row
	wordSpaceMultiplier = 0.3  // 30% of font size = space
	blockLineSpacing    = 1.5  // max baseline distance, in font sizes, inside one block
	defaultFontSize     = 12.0 // used when the engine reports no size
)

// pageBox is a page MediaBox in PDF user space (origin bottom-left)
type pageBox struct {
	x0, y0, x1, y1 float64
}

var letterBox = pageBox{x0: 0, y0: 0, x1: 612, y1: 792}

// textRow is one visual line of glyph runs
type textRow struct {
	text     string
	x0, x1   float64
	baseline float64
	fontSize float64
}

func (r textRow) top() float64 {
	return r.baseline + r.fontSize
}

// groupRows buckets glyph runs into rows by baseline and orders them top to
// bottom, left to right.
func groupRows(texts []pdf.Text) []textRow {
	type rowBucket struct {
		yMin, yMax float64
		runs       []pdf.Text
	}

	var buckets []rowBucket
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		found := false
		for i := range buckets {
			if t.Y >= buckets[i].yMin-rowTolerance && t.Y <= buckets[i].yMax+rowTolerance {
				buckets[i].runs = append(buckets[i].runs, t)
				buckets[i].yMin = math.Min(buckets[i].yMin, t.Y)
				buckets[i].yMax = math.Max(buckets[i].yMax, t.Y)
				found = true
				break
			}
		}
		if !found {
			buckets = append(buckets, rowBucket{yMin: t.Y, yMax: t.Y, runs: []pdf.Text{t}})
		}
	}

	// Higher Y is nearer the top of the page
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].yMax > buckets[j].yMax
	})

	rows := make([]textRow, 0, len(buckets))
	for _, b := range buckets {
		if row, ok := buildRow(b.runs, b.yMin); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

func buildRow(runs []pdf.Text, baseline float64) (textRow, bool) {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].X < runs[j].X
	})

	var sb strings.Builder
	row := textRow{
		x0:       runs[0].X,
		x1:       runs[0].X + runs[0].W,
		baseline: baseline,
	}
	prevEnd := runs[0].X
	for i, t := range runs {
		size := t.FontSize
		if size <= 0 {
			size = defaultFontSize
		}
		if i > 0 {
			gap := t.X - prevEnd
			written := sb.String()
			if gap > wordSpaceMultiplier*size &&
				!strings.HasSuffix(written, " ") && !strings.HasPrefix(t.S, " ") {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(t.S)

		prevEnd = math.Max(prevEnd, t.X+t.W)
		row.x0 = math.Min(row.x0, t.X)
		row.x1 = math.Max(row.x1, t.X+t.W)
		row.fontSize = math.Max(row.fontSize, size)
	}

	row.text = strings.TrimRight(sb.String(), " \t\r\n")
	if strings.TrimSpace(row.text) == "" {
		return textRow{}, false
	}
	return row, true
}

// rowsText renders rows as newline-terminated lines
func rowsText(rows []textRow) string {
	var sb strings.Builder
	for _, r := range rows {
		sb.WriteString(r.text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// groupBlocks merges consecutive, horizontally overlapping rows with tight
// line spacing into blocks and converts their boxes to a top-left origin.
func groupBlocks(rows []textRow, box pageBox) []Block {
	blocks := make([]Block, 0, len(rows))

	var current []textRow
	var left, right float64
	flush := func() {
		if len(current) == 0 {
			return
		}
		blocks = append(blocks, makeBlock(current, box))
		current = nil
	}

	for _, r := range rows {
		if len(current) > 0 {
			last := current[len(current)-1]
			spacing := blockLineSpacing * math.Max(last.fontSize, r.fontSize)
			overlaps := r.x0 <= right && r.x1 >= left
			if last.baseline-r.baseline <= spacing && overlaps {
				current = append(current, r)
				left = math.Min(left, r.x0)
				right = math.Max(right, r.x1)
				continue
			}
			flush()
		}
		current = []textRow{r}
		left, right = r.x0, r.x1
	}
	flush()

	return blocks
}

func makeBlock(rows []textRow, box pageBox) Block {
	lines := make([]string, len(rows))
	left, right := rows[0].x0, rows[0].x1
	bottom, top := rows[0].baseline, rows[0].top()
	for i, r := range rows {
		lines[i] = r.text
		left = math.Min(left, r.x0)
		right = math.Max(right, r.x1)
		bottom = math.Min(bottom, r.baseline)
		top = math.Max(top, r.top())
	}

	return Block{
		Text: strings.Join(lines, "\n") + "\n",
		X0:   left - box.x0,
		Y0:   box.y1 - top,
		X1:   right - box.x0,
		Y1:   box.y1 - bottom,
	}
}

// readMediaBox finds the page MediaBox, following inherited attributes
// through the page tree.
func readMediaBox(v pdf.Value) pageBox {
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		mb := v.Key("MediaBox")
		if mb.Kind() == pdf.Array && mb.Len() == 4 {
			b := pageBox{
				x0: mb.Index(0).Float64(),
				y0: mb.Index(1).Float64(),
				x1: mb.Index(2).Float64(),
				y1: mb.Index(3).Float64(),
			}
			if b.x0 > b.x1 {
				b.x0, b.x1 = b.x1, b.x0
			}
			if b.y0 > b.y1 {
				b.y0, b.y1 = b.y1, b.y0
			}
			return b
		}
		v = v.Key("Parent")
	}
	return letterBox
}
