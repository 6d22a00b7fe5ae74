package stack

import (
	"sort"

	"github.com/gitstax/stax/vcsio"
)

// CalculateImportStack computes the minimal ImportStack (spec.md §4.9)
// needed to bring the host repository from s.original to s's current
// content. gotoHash, if non-empty, is the original hash the host wants the
// working copy to land on; preserveDirtyFiles selects "reset" over "goto".
func (s *State) CalculateImportStack(gotoHash string, preserveDirtyFiles bool) (*vcsio.ImportStack, error) {
	materialized, err := s.UseFileContent()
	if err != nil {
		return nil, err
	}

	reference, err := New(s.original)
	if err != nil {
		return nil, err
	}

	firstChanged := firstChangedRev(materialized.commits, reference.commits)

	out := &vcsio.ImportStack{}

	for i := firstChanged; i < len(materialized.commits); i++ {
		c := materialized.commits[i]

		action := vcsio.ImportAction{
			Kind: vcsio.ActionCommit,
			Commit: &vcsio.ImportCommit{
				Mark:         vcsio.Mark(i),
				Author:       c.Author,
				Date:         c.Date,
				Text:         c.Text,
				Parents:      parentRefs(materialized.commits, c, firstChanged),
				Predecessors: sortedKeys(c.OriginalNodes),
				Files:        exportFiles(c.Files),
			},
		}

		out.Actions = append(out.Actions, action)
	}

	if gotoHash != "" {
		if action, ok := s.gotoAction(materialized, firstChanged, gotoHash, preserveDirtyFiles); ok {
			out.Actions = append(out.Actions, action)
		}
	}

	orphaned := s.orphanedNodes(materialized)
	if len(orphaned) > 0 {
		out.Actions = append(out.Actions, vcsio.ImportAction{
			Kind:  vcsio.ActionHide,
			Nodes: orphaned,
		})
	}

	return out, nil
}

// firstChangedRev returns the first index at which cur and ref diverge
// structurally, or the length of the shorter sequence if one is a proper
// prefix of the other.
func firstChangedRev(cur, ref []*CommitState) int {
	n := len(cur)
	if len(ref) < n {
		n = len(ref)
	}

	for i := 0; i < n; i++ {
		if !commitsEqual(cur[i], ref[i]) {
			return i
		}
	}

	return n
}

// commitsEqual is the structural equality spec.md §4.9 compares
// commit-by-commit to find firstChangedRev.
func commitsEqual(a, b *CommitState) bool {
	if a.Key != b.Key || a.Author != b.Author || a.Text != b.Text {
		return false
	}
	if a.Date != b.Date {
		return false
	}
	if len(a.Files) != len(b.Files) {
		return false
	}

	for path, af := range a.Files {
		bf, ok := b.Files[path]
		if !ok || !af.contentEqual(bf) {
			return false
		}
	}

	return true
}

// parentRefs returns the parent identifier list for an ImportCommit: the
// mark of a changed parent, or its stable original hash (Key) for one left
// untouched.
func parentRefs(commits []*CommitState, c *CommitState, firstChanged int) []string {
	if len(c.Parents) == 0 {
		return nil
	}

	p := c.Parents[0]
	if int(p) >= firstChanged {
		return []string{vcsio.Mark(int(p))}
	}

	return []string{commits[p].Key}
}

// exportFiles converts a commit's file map into vcsio's wire shape.
func exportFiles(files map[string]FileState) map[string]*vcsio.ExportFile {
	out := make(map[string]*vcsio.ExportFile, len(files))

	for path, fs := range files {
		if fs.Absent() {
			out[path] = nil
			continue
		}

		ef := &vcsio.ExportFile{CopyFrom: fs.CopyFrom, Flags: fs.Flags}
		if fs.IsBinary() {
			ef.Binary = true
			ef.DataBase85 = fs.Data.Blob
		} else {
			ef.Data = fs.Data.Text
		}

		out[path] = ef
	}

	return out
}

// gotoAction resolves the caller's requested goto/reset target, applying
// the goto-at-top sticky rule: a goto to the original top-of-stack hash
// always retargets to the new top, regardless of where it moved.
func (s *State) gotoAction(
	materialized *State, firstChanged int, gotoHash string, preserveDirtyFiles bool,
) (vcsio.ImportAction, bool) {
	kind := vcsio.ActionGoto
	if preserveDirtyFiles {
		kind = vcsio.ActionReset
	}

	if len(s.original.Commits) > 0 && gotoHash == s.original.Commits[len(s.original.Commits)-1].Node {
		top := len(materialized.commits) - 1

		return vcsio.ImportAction{Kind: kind, Mark: vcsio.Mark(top)}, true
	}

	for i, c := range materialized.commits {
		if !c.OriginalNodes[gotoHash] {
			continue
		}

		if i < firstChanged {
			return vcsio.ImportAction{}, false
		}

		return vcsio.ImportAction{Kind: kind, Mark: vcsio.Mark(i)}, true
	}

	return vcsio.ImportAction{}, false
}

// orphanedNodes returns the original hashes that were requested and
// mutable but no longer appear in any current commit's OriginalNodes.
func (s *State) orphanedNodes(materialized *State) []string {
	surviving := map[string]bool{}

	for _, c := range materialized.commits {
		for node := range c.OriginalNodes {
			surviving[node] = true
		}
	}

	var orphaned []string

	for _, ec := range s.original.Commits {
		if ec.Requested && !ec.Immutable && !surviving[ec.Node] {
			orphaned = append(orphaned, ec.Node)
		}
	}

	sort.Strings(orphaned)

	return orphaned
}

// sortedKeys returns the true-valued keys of a set map, sorted for
// deterministic output.
func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		if v {
			out = append(out, k)
		}
	}

	sort.Strings(out)

	return out
}
