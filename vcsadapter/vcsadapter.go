// Package vcsadapter connects the commit-stack engine to a real git
// repository: Export walks a commit range into a vcsio.ExportStack, Apply
// writes a computed vcsio.ImportStack back as new commits and ref updates.
package vcsadapter

import (
	"encoding/ascii85"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/gitstax/stax/vcsio"
)

// Adapter wraps a go-git repository opened on disk.
type Adapter struct {
	repo *git.Repository
	path string
}

// Open opens the git repository rooted at path.
func Open(path string) (*Adapter, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open repository at %q: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	return &Adapter{repo: repo, path: absPath}, nil
}

// ResolveRef resolves a branch, tag, or symbolic name such as "HEAD" to its
// commit hash.
func (a *Adapter) ResolveRef(ref string) (string, error) {
	hash, err := a.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", fmt.Errorf("resolve ref %q: %w", ref, err)
	}

	return hash.String(), nil
}

// Export walks the commit chain from fromHash (exclusive) to toHash
// (inclusive) and builds the ExportStack the engine operates on, root
// commit first. fromHash may be empty, in which case toHash's entire
// ancestry is exported.
func (a *Adapter) Export(fromHash, toHash string) (*vcsio.ExportStack, error) {
	head, err := a.repo.CommitObject(plumbing.NewHash(toHash))
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", toHash, err)
	}

	var chain []*object.Commit

	cur := head
	for {
		chain = append(chain, cur)

		if cur.Hash.String() == fromHash {
			break
		}

		if cur.NumParents() == 0 {
			break
		}

		parent, err := cur.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("walk parent of %s: %w", cur.Hash, err)
		}

		cur = parent
	}

	if fromHash != "" && chain[len(chain)-1].Hash.String() == fromHash {
		chain = chain[:len(chain)-1]
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	out := &vcsio.ExportStack{Commits: make([]vcsio.ExportCommit, 0, len(chain))}

	for _, c := range chain {
		ec, err := a.exportCommit(c)
		if err != nil {
			return nil, err
		}

		out.Commits = append(out.Commits, ec)
	}

	// The first exported commit is the stack's root: its parent (fromHash)
	// lies outside the stack, so it is not listed.
	if fromHash != "" && len(out.Commits) > 0 {
		out.Commits[0].Parents = nil
	}

	return out, nil
}

// exportCommit builds one ExportCommit by diffing c against its first
// parent (or its empty tree, for a root commit).
func (a *Adapter) exportCommit(c *object.Commit) (vcsio.ExportCommit, error) {
	_, offset := c.Author.When.Zone()

	ec := vcsio.ExportCommit{
		Node:          c.Hash.String(),
		Requested:     true,
		Author:        c.Author.Email,
		Date:          [2]int64{c.Author.When.Unix(), int64(offset / 60)},
		Text:          c.Message,
		Files:         map[string]*vcsio.ExportFile{},
		RelevantFiles: map[string]*vcsio.ExportFile{},
	}

	curTree, err := c.Tree()
	if err != nil {
		return ec, fmt.Errorf("tree of %s: %w", c.Hash, err)
	}

	if c.NumParents() == 0 {
		err := curTree.Files().ForEach(func(f *object.File) error {
			content, err := f.Contents()
			if err != nil {
				return err
			}

			ec.Files[f.Name] = &vcsio.ExportFile{Data: content}

			return nil
		})
		if err != nil {
			return ec, err
		}

		return ec, nil
	}

	parent, err := c.Parent(0)
	if err != nil {
		return ec, err
	}

	ec.Parents = []string{parent.Hash.String()}

	parentTree, err := parent.Tree()
	if err != nil {
		return ec, fmt.Errorf("tree of %s: %w", parent.Hash, err)
	}

	changes, err := parentTree.Diff(curTree)
	if err != nil {
		return ec, fmt.Errorf("diff %s..%s: %w", parent.Hash, c.Hash, err)
	}

	for _, change := range changes {
		action, err := change.Action()
		if err != nil {
			return ec, err
		}

		switch action {
		case merkletrie.Insert:
			ef, err := fileFromEntry(curTree, change.To.Name)
			if err != nil {
				return ec, err
			}

			ec.Files[change.To.Name] = ef

		case merkletrie.Delete:
			ec.Files[change.From.Name] = nil

			if ef, err := fileFromEntry(parentTree, change.From.Name); err == nil {
				ec.RelevantFiles[change.From.Name] = ef
			}

		default: // modify
			ef, err := fileFromEntry(curTree, change.To.Name)
			if err != nil {
				return ec, err
			}

			ec.Files[change.To.Name] = ef

			if before, err := fileFromEntry(parentTree, change.From.Name); err == nil {
				ec.RelevantFiles[change.From.Name] = before
			}
		}
	}

	return ec, nil
}

// fileFromEntry reads path's content out of tree as an ExportFile, treating
// non-UTF-8 content as an opaque base85 blob the way vcsio.ExportFile
// requires (spec.md §4.1's "binary stays a black box" rule).
func fileFromEntry(tree *object.Tree, path string) (*vcsio.ExportFile, error) {
	f, err := tree.File(path)
	if err != nil {
		return nil, err
	}

	isBinary, err := f.IsBinary()
	if err != nil {
		return nil, err
	}

	if isBinary {
		raw, err := f.Contents()
		if err != nil {
			return nil, err
		}

		enc := make([]byte, ascii85.MaxEncodedLen(len(raw)))
		n := ascii85.Encode(enc, []byte(raw))

		return &vcsio.ExportFile{Binary: true, DataBase85: string(enc[:n])}, nil
	}

	content, err := f.Contents()
	if err != nil {
		return nil, err
	}

	return &vcsio.ExportFile{Data: content}, nil
}

// Apply writes a computed ImportStack back as real commits. Each commit is
// made on a detached HEAD after checking out its parent; baseHash is the
// parent of a commit that lists none. Branch refs are not moved.
func (a *Adapter) Apply(imp *vcsio.ImportStack, baseHash string) error {
	wt, err := a.repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}

	marks := map[string]plumbing.Hash{}
	current := plumbing.NewHash(baseHash)

	for _, action := range imp.Actions {
		switch action.Kind {
		case vcsio.ActionCommit:
			hash, err := a.applyCommit(wt, action.Commit, marks, current)
			if err != nil {
				return err
			}

			marks[action.Commit.Mark] = hash
			current = hash

		case vcsio.ActionGoto, vcsio.ActionReset:
			target, ok := resolveMark(action.Mark, marks)
			if !ok {
				return fmt.Errorf("%s: unresolved mark %q", action.Kind, action.Mark)
			}

			err := wt.Checkout(&git.CheckoutOptions{
				Hash:  target,
				Force: action.Kind == vcsio.ActionReset,
			})
			if err != nil {
				return fmt.Errorf("checkout %s: %w", target, err)
			}

		case vcsio.ActionHide:
			// Orphaned original commits are simply left unreferenced;
			// reclaiming them is the host repository's garbage collector's
			// job, not this adapter's.
		}
	}

	return nil
}

// applyCommit checks out ic's parent, rewrites its file set on disk, stages
// and commits it, returning the new commit's hash.
func (a *Adapter) applyCommit(
	wt *git.Worktree, ic *vcsio.ImportCommit, marks map[string]plumbing.Hash,
	fallbackParent plumbing.Hash,
) (plumbing.Hash, error) {
	parent := fallbackParent

	if len(ic.Parents) > 0 {
		if h, ok := resolveMark(ic.Parents[0], marks); ok {
			parent = h
		} else {
			parent = plumbing.NewHash(ic.Parents[0])
		}
	}

	if !parent.IsZero() {
		err := wt.Checkout(&git.CheckoutOptions{Hash: parent, Force: true})
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("checkout parent %s: %w", parent, err)
		}
	}

	for path, ef := range ic.Files {
		full := filepath.Join(a.path, path)

		if ef.IsAbsent() {
			if _, err := wt.Remove(path); err != nil {
				return plumbing.ZeroHash, fmt.Errorf("remove %s: %w", path, err)
			}

			continue
		}

		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return plumbing.ZeroHash, err
		}

		var content []byte

		if ef.Binary {
			dec := make([]byte, len(ef.DataBase85))
			n, _, err := ascii85.Decode(dec, []byte(ef.DataBase85), true)
			if err != nil {
				return plumbing.ZeroHash, fmt.Errorf("decode %s: %w", path, err)
			}

			content = dec[:n]
		} else {
			content = []byte(ef.Data)
		}

		if err := os.WriteFile(full, content, 0o644); err != nil {
			return plumbing.ZeroHash, err
		}

		if _, err := wt.Add(path); err != nil {
			return plumbing.ZeroHash, fmt.Errorf("add %s: %w", path, err)
		}
	}

	hash, err := wt.Commit(ic.Text, &git.CommitOptions{
		Author: &object.Signature{
			Name:  ic.Author,
			Email: ic.Author,
			When:  time.Unix(ic.Date[0], 0),
		},
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("commit %s: %w", ic.Mark, err)
	}

	return hash, nil
}

// resolveMark translates a mark/hash string to a concrete hash: a prior
// commit in this Apply call's mark table, or a literal hash otherwise.
// Marks always start with ":" (vcsio.Mark's format); anything else is
// treated as a literal original hash.
func resolveMark(ref string, marks map[string]plumbing.Hash) (plumbing.Hash, bool) {
	if h, ok := marks[ref]; ok {
		return h, true
	}

	if strings.HasPrefix(ref, ":") {
		return plumbing.ZeroHash, false
	}

	return plumbing.NewHash(ref), true
}
