package engine

import (
	"bytes"
	"context"
)

// collapseBlankLines implements spec.md §4.11's final step: delete runs of
// two or more consecutive blank lines down to one, then re-parse from
// scratch (the collapsed text has no incremental relationship to the
// prior tree).
func (e *Engine) collapseBlankLines(ctx context.Context) error {
	collapsed := collapseBlankLineRuns(e.Unit.Code)
	if bytes.Equal(collapsed, e.Unit.Code) {
		return nil
	}
	return e.Unit.ReplaceAndReparse(ctx, collapsed, true)
}

func collapseBlankLineRuns(code []byte) []byte {
	lines := bytes.Split(code, []byte("\n"))
	out := make([][]byte, 0, len(lines))

	blankRun := 0
	for _, line := range lines {
		if len(bytes.TrimSpace(line)) == 0 {
			blankRun++
			if blankRun > 1 {
				continue
			}
		} else {
			blankRun = 0
		}
		out = append(out, line)
	}
	return bytes.Join(out, []byte("\n"))
}
