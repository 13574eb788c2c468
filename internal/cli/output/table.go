package output

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// Table writes rows under headers. Text mode draws a box table, markdown
// mode writes a pipe table. Tables are not written in JSON mode.
func (r *Renderer) Table(headers []string, rows [][]string) {
	mode := r.EffectiveMode()
	if mode == ModeJSON {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, cells := range rows {
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		t.AppendRow(row)
	}

	if mode == ModeMarkdown {
		t.RenderMarkdown()
		return
	}
	t.Render()
}
