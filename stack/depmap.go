package stack

import (
	"fmt"
	"sync"

	"github.com/alitto/pond"
)

// depMapCache memoizes the expensive parts of dependency analysis for one
// State value. It is never shared across States (rebuildFileStacks always
// discards the old one), so it needs no identity key beyond "which State
// owns it".
type depMapCache struct {
	mu sync.Mutex

	// perStack[i] is file stack i's own CalculateDepMap result, computed at
	// most once per State.
	perStack []map[int]map[int]struct{}

	// commit[rev] is rev's fully resolved commit-level dependency set.
	commit map[Rev]map[Rev]struct{}
}

func newDepMapCache(numStacks int) *depMapCache {
	return &depMapCache{
		perStack: make([]map[int]map[int]struct{}, numStacks),
		commit:   make(map[Rev]map[Rev]struct{}),
	}
}

// fileStackDeps returns (and caches) file stack idx's own per-rev dependency
// map, computing every file stack's map in parallel via a worker pool the
// first time any of them is requested.
func (s *State) fileStackDeps(idx int) (map[int]map[int]struct{}, error) {
	s.depCache.mu.Lock()
	if s.depCache.perStack[idx] != nil {
		d := s.depCache.perStack[idx]
		s.depCache.mu.Unlock()

		return d, nil
	}
	s.depCache.mu.Unlock()

	if err := s.computeAllFileStackDeps(); err != nil {
		return nil, err
	}

	s.depCache.mu.Lock()
	d := s.depCache.perStack[idx]
	s.depCache.mu.Unlock()

	return d, nil
}

// computeAllFileStackDeps fills every not-yet-cached entry of
// s.depCache.perStack, fanning the per-file-stack blame analysis out across
// a worker pool since each file stack's CalculateDepMap is independent.
func (s *State) computeAllFileStackDeps() error {
	pool := pond.New(maxWorkers(len(s.fileStacks)), 0, pond.MinWorkers(1))

	type result struct {
		idx  int
		deps map[int]map[int]struct{}
		err  error
	}

	results := make([]result, len(s.fileStacks))

	for i, fstack := range s.fileStacks {
		s.depCache.mu.Lock()
		done := s.depCache.perStack[i] != nil
		s.depCache.mu.Unlock()

		if done {
			continue
		}

		i, fstack := i, fstack
		pool.Submit(func() {
			deps, err := fstack.CalculateDepMap()
			results[i] = result{idx: i, deps: deps, err: err}
		})
	}

	pool.StopAndWait()

	s.depCache.mu.Lock()
	defer s.depCache.mu.Unlock()

	for _, r := range results {
		if r.deps == nil && r.err == nil {
			continue
		}
		if r.err != nil {
			return fmt.Errorf("%w: file stack dependency analysis: %w", ErrInvariant, r.err)
		}

		s.depCache.perStack[r.idx] = r.deps
	}

	return nil
}

func maxWorkers(n int) int {
	if n < 1 {
		return 1
	}

	return n
}

// DepsOf returns the set of revs that rev's commit depends on: the union of
// content dependencies (translated from its files' underlying file-stack
// blame) and structural dependencies (the commit that last established any
// path this commit renamed or copied from, or any path whose existence this
// commit changes by adding or deleting it).
func (s *State) DepsOf(rev Rev) (map[Rev]struct{}, error) {
	s.depCache.mu.Lock()
	if d, ok := s.depCache.commit[rev]; ok {
		s.depCache.mu.Unlock()

		return d, nil
	}
	s.depCache.mu.Unlock()

	c, err := s.Commit(rev)
	if err != nil {
		return nil, err
	}

	deps := map[Rev]struct{}{}

	for path, fs := range c.Files {
		fi, ok := s.idx.commitToFile[CommitIdx{Rev: rev, Path: path}]
		if ok {
			fileDeps, err := s.fileStackDeps(fi.StackIdx)
			if err != nil {
				return nil, err
			}

			for dr := range fileDeps[fi.FileRev] {
				if ci, ok := s.idx.fileToCommit[FileIdx{StackIdx: fi.StackIdx, FileRev: dr}]; ok {
					if ci.Rev >= 0 && ci.Rev != rev {
						deps[ci.Rev] = struct{}{}
					}
				}
			}
		}

		lookupPath := path
		if fs.CopyFrom != "" {
			lookupPath = fs.CopyFrom
		}

		parentRev, parentFile, err := s.locateParentFile(rev, lookupPath)
		if err != nil {
			return nil, err
		}

		if parentRev >= 0 && (parentFile.Absent() != fs.Absent() || lookupPath != path) {
			deps[parentRev] = struct{}{}
		}
	}

	s.depCache.mu.Lock()
	s.depCache.commit[rev] = deps
	s.depCache.mu.Unlock()

	return deps, nil
}

// DepMap returns the full rev -> dependency-set map for every commit in the
// stack (spec.md §4.6's calculateDepMap()).
func (s *State) DepMap() (map[Rev]map[Rev]struct{}, error) {
	out := make(map[Rev]map[Rev]struct{}, len(s.commits))

	for _, c := range s.commits {
		d, err := s.DepsOf(c.Rev)
		if err != nil {
			return nil, err
		}

		out[c.Rev] = d
	}

	return out, nil
}
