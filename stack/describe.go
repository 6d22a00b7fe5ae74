package stack

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DescribeFileStacks renders a debug trace of every file stack, one line
// per stack: "<idx>:<rev0> <rev1> ...", where each revision is rendered as
// "<commitLabel>/<path>(<content>)" ("." labels the pre-stack baseline,
// and the parenthesized content is omitted for an absent file).
func (s *State) DescribeFileStacks() (string, error) {
	var sb strings.Builder

	for i, fstack := range s.fileStacks {
		if i > 0 {
			sb.WriteByte('\n')
		}

		fmt.Fprintf(&sb, "%d:", i)

		for j, r := range fstack.Revs() {
			if j > 0 {
				sb.WriteByte(' ')
			}

			entry, err := s.describeFileStackRev(i, r)
			if err != nil {
				return "", err
			}

			sb.WriteString(entry)
		}
	}

	return sb.String(), nil
}

func (s *State) describeFileStackRev(stackIdx, rev int) (string, error) {
	ci, ok := s.idx.fileToCommit[FileIdx{StackIdx: stackIdx, FileRev: rev}]
	if !ok {
		return "?/?", nil
	}

	var (
		label  string
		absent bool
	)

	if ci.Rev < 0 {
		label = "."
		absent = s.bottom[ci.Path].Absent()
	} else {
		c, err := s.Commit(ci.Rev)
		if err != nil {
			return "", err
		}

		label = c.Key
		absent = c.Files[ci.Path].Absent()
	}

	if absent {
		return fmt.Sprintf("%s/%s", label, ci.Path), nil
	}

	fstack := s.fileStacks[stackIdx]

	text, err := fstack.GetRev(rev)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s(%s)", label, ci.Path, text), nil
}

// DiffFileStacks renders a single multi-file unified diff between each
// touched file's first and last revision, for "stax stack describe --diff"
// to hand to diff.Parse/output.FormatText the way a real "git diff" would.
// Paths with a single revision (no recorded change) are omitted.
func (s *State) DiffFileStacks() (string, error) {
	type pathDiff struct {
		path string
		text string
	}

	diffs := make([]pathDiff, 0, len(s.fileStacks))

	for i, fstack := range s.fileStacks {
		revs := fstack.Revs()
		if len(revs) < 2 {
			continue
		}

		ci, ok := s.idx.fileToCommit[FileIdx{StackIdx: i, FileRev: revs[0]}]
		if !ok {
			continue
		}

		oldText, err := fstack.GetRev(revs[0])
		if err != nil {
			return "", err
		}

		newText, err := fstack.GetRev(revs[len(revs)-1])
		if err != nil {
			return "", err
		}

		if oldText == newText {
			continue
		}

		diffs = append(diffs, pathDiff{path: ci.Path, text: unifiedDiffText(ci.Path, oldText, newText)})
	}

	sort.Slice(diffs, func(i, j int) bool { return diffs[i].path < diffs[j].path })

	var sb strings.Builder
	for _, d := range diffs {
		sb.WriteString(d.text)
	}

	return sb.String(), nil
}

func unifiedDiffText(path, oldText, newText string) string {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var hunk strings.Builder

	for _, d := range diffs {
		prefix := " "

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}

		for _, ln := range strings.SplitAfter(d.Text, "\n") {
			if ln == "" {
				continue
			}

			hunk.WriteString(prefix)
			hunk.WriteString(strings.TrimSuffix(ln, "\n"))
			hunk.WriteByte('\n')
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "diff --git a/%s b/%s\n", path, path)
	fmt.Fprintf(&sb, "--- a/%s\n", path)
	fmt.Fprintf(&sb, "+++ b/%s\n", path)
	fmt.Fprintf(&sb, "@@ -1,%d +1,%d @@\n",
		len(strings.Split(oldText, "\n")), len(strings.Split(newText, "\n")))
	sb.WriteString(hunk.String())

	return sb.String()
}
