package srt

import (
	"strconv"
	"strings"

	"captionsearch/types"
)

// Format renders entries back into SubRip text. Parse(Format(e)) reproduces e.
func Format(entries []types.CaptionEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strconv.Itoa(e.Index))
		b.WriteString("\n")
		b.WriteString(types.FormatTimestamp(e.StartMS))
		b.WriteString(" --> ")
		b.WriteString(types.FormatTimestamp(e.EndMS))
		if e.Position != "" {
			b.WriteString(" ")
			b.WriteString(e.Position)
		}
		b.WriteString("\n")
		b.WriteString(e.Text)
		b.WriteString("\n")
	}
	return b.String()
}
