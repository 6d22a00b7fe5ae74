package filestack

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// CalculateDepMap returns, for each rev, the set of earlier revs that
// contributed at least one surviving line to that rev's content.
//
// This is a line-level blame: starting from rev 0 (every line "belongs" to
// rev 0), each later rev is diffed line-by-line against its predecessor
// using diffmatchpatch's line mode. Lines the diff reports as unchanged
// keep whichever rev introduced them; inserted lines belong to the current
// rev. A rev's dependency set is the distinct set of earlier revs among the
// lines that survive into it — the minimal set of revs its content actually
// draws from, rather than a blanket "depends on the previous rev".
func (s *Stack) CalculateDepMap() (map[int]map[int]struct{}, error) {
	dmp := diffmatchpatch.New()

	depMap := make(map[int]map[int]struct{}, len(s.revs))
	if len(s.revs) == 0 {
		return depMap, nil
	}

	prevLines := splitLines(s.revs[0])
	prevProv := make([]int, len(prevLines))
	depMap[0] = map[int]struct{}{}

	for r := 1; r < len(s.revs); r++ {
		curLines, curProv := blameAgainst(dmp, prevLines, prevProv, s.revs[r], r)

		deps := map[int]struct{}{}
		for _, p := range curProv {
			if p < r {
				deps[p] = struct{}{}
			}
		}
		depMap[r] = deps

		prevLines, prevProv = curLines, curProv
	}

	return depMap, nil
}

// blameAgainst diffs curText against the previous revision's lines (with
// per-line provenance prevProv) and returns curText's lines along with the
// rev that introduced each one: prevProv's value for unchanged lines, curRev
// for newly inserted lines.
func blameAgainst(
	dmp *diffmatchpatch.DiffMatchPatch, prevLines []string, prevProv []int,
	curText string, curRev int,
) (curLines []string, curProv []int) {
	prevText := strings.Join(prevLines, "")

	a, b, lineArray := dmp.DiffLinesToChars(prevText, curText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	pi := 0

	for _, d := range diffs {
		lines := splitLines(d.Text)

		switch d.Type {
		case diffmatchpatch.DiffEqual:
			for _, ln := range lines {
				curLines = append(curLines, ln)
				if pi < len(prevProv) {
					curProv = append(curProv, prevProv[pi])
				} else {
					curProv = append(curProv, curRev)
				}
				pi++
			}
		case diffmatchpatch.DiffDelete:
			pi += len(lines)
		case diffmatchpatch.DiffInsert:
			for _, ln := range lines {
				curLines = append(curLines, ln)
				curProv = append(curProv, curRev)
			}
		}
	}

	return curLines, curProv
}

// splitLines splits s into lines, each retaining its trailing newline
// (except possibly the last), matching diffmatchpatch's line-mode encoding.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}

	var lines []string

	for {
		idx := strings.IndexByte(s, '\n')
		if idx < 0 {
			lines = append(lines, s)

			return lines
		}

		lines = append(lines, s[:idx+1])
		s = s[idx+1:]

		if s == "" {
			return lines
		}
	}
}
