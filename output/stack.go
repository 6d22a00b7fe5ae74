package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gitstax/stax/stack"
	"github.com/gitstax/stax/vcsio"
)

// CommitSummary is one line of "stax stack list" output.
type CommitSummary struct {
	Rev     int    `json:"rev"`
	Key     string `json:"key"`
	Subject string `json:"subject"`
}

// FormatStackListText writes a plain-text commit listing.
func FormatStackListText(w io.Writer, s *stack.State) error {
	for rev := 0; rev < s.Len(); rev++ {
		c, err := s.Commit(stack.Rev(rev))
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%d\t%s\t%s\n", rev, c.Key, firstLine(c.Text))
	}

	return nil
}

// FormatStackListJSON writes the commit listing as JSON.
func FormatStackListJSON(w io.Writer, s *stack.State) error {
	summaries := make([]CommitSummary, 0, s.Len())

	for rev := 0; rev < s.Len(); rev++ {
		c, err := s.Commit(stack.Rev(rev))
		if err != nil {
			return err
		}

		summaries = append(summaries, CommitSummary{
			Rev: rev, Key: c.Key, Subject: firstLine(c.Text),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(summaries)
}

// FormatStackDescribeText writes describeFileStacks' text trace as-is; it
// is already formatted for terminal display.
func FormatStackDescribeText(w io.Writer, s *stack.State) error {
	text, err := s.DescribeFileStacks()
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, text)

	return err
}

// FormatStackDescribeJSON wraps describeFileStacks' text trace in a JSON
// envelope for machine consumption.
func FormatStackDescribeJSON(w io.Writer, s *stack.State) error {
	text, err := s.DescribeFileStacks()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(struct {
		FileStacks string `json:"file_stacks"`
	}{FileStacks: text})
}

// ImportActionOutput is one entry of "stax stack export"'s action-list
// output.
type ImportActionOutput struct {
	Kind   string   `json:"kind"`
	Mark   string   `json:"mark,omitempty"`
	Commit string   `json:"commit,omitempty"`
	Nodes  []string `json:"nodes,omitempty"`
}

// FormatImportStackJSON writes imp as a JSON action list.
func FormatImportStackJSON(w io.Writer, imp *vcsio.ImportStack) error {
	out := make([]ImportActionOutput, 0, len(imp.Actions))

	for _, a := range imp.Actions {
		entry := ImportActionOutput{Kind: string(a.Kind), Mark: a.Mark, Nodes: a.Nodes}
		if a.Commit != nil {
			entry.Mark = a.Commit.Mark
			entry.Commit = firstLine(a.Commit.Text)
		}

		out = append(out, entry)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}

// FormatImportStackText writes imp as a human-readable action list.
func FormatImportStackText(w io.Writer, imp *vcsio.ImportStack) error {
	for _, a := range imp.Actions {
		switch a.Kind {
		case vcsio.ActionCommit:
			fmt.Fprintf(w, "commit %s: %s\n", a.Commit.Mark, firstLine(a.Commit.Text))
		case vcsio.ActionGoto, vcsio.ActionReset:
			fmt.Fprintf(w, "%s %s\n", a.Kind, a.Mark)
		case vcsio.ActionHide:
			fmt.Fprintf(w, "hide %v\n", a.Nodes)
		}
	}

	return nil
}

// FormatGraphSummaryText writes a one-line-per-commit dependency summary,
// the plain-text counterpart to the dot source "stax stack graph" prints.
func FormatGraphSummaryText(w io.Writer, s *stack.State) error {
	deps, err := s.DepMap()
	if err != nil {
		return err
	}

	for rev := 0; rev < s.Len(); rev++ {
		fmt.Fprintf(w, "r%d depends on %v\n", rev, sortedRevs(deps[stack.Rev(rev)]))
	}

	return nil
}

func sortedRevs(deps map[stack.Rev]struct{}) []int {
	out := make([]int, 0, len(deps))
	for r := range deps {
		out = append(out, int(r))
	}

	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}

	return out
}

func firstLine(text string) string {
	for i, r := range text {
		if r == '\n' {
			return text[:i]
		}
	}

	return text
}
