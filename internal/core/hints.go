package core

import (
	"strings"

	"github.com/illarion/pph/internal/metadata"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffHints shows which metadata hints differ between a stored profile and
// the values just provided, in unified style: "-" lines are stored, "+"
// lines are provided. It returns "" when the hints agree.
func DiffHints(stored, provided map[string]string) string {
	before := metadata.FormatHints(stored)
	after := metadata.FormatHints(provided)
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var out strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix)
			out.WriteString(line)
		}
	}
	return out.String()
}
