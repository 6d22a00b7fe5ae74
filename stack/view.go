package stack

// UseFileStack returns a new State whose UTF-8 modified files hold lazy
// (fileStackIndex, fileRev) references instead of inline strings. Fold,
// drop and reorder call this first so content survives the file-stack
// rebuild that follows (spec.md §4.8).
func (s *State) UseFileStack() *State {
	commits := make([]*CommitState, len(s.commits))

	for i, c := range s.commits {
		nc := c.clone()

		for path, fs := range nc.Files {
			if fs.IsBinary() || fs.IsLazy() {
				continue
			}

			if fi, ok := s.idx.commitToFile[CommitIdx{Rev: c.Rev, Path: path}]; ok {
				fs.Data = LazyData(fi)
				nc.Files[path] = fs
			}
		}

		commits[i] = nc
	}

	next := s.shallowCopy()
	next.commits = commits

	return next
}

// UseFileContent returns a new State whose lazy file references are
// materialized back to inline strings; binary blobs are untouched.
func (s *State) UseFileContent() (*State, error) {
	commits := make([]*CommitState, len(s.commits))

	for i, c := range s.commits {
		nc := c.clone()

		for path, fs := range nc.Files {
			if !fs.IsLazy() {
				continue
			}

			resolved, err := s.resolveLazy(fs)
			if err != nil {
				return nil, err
			}

			nc.Files[path] = resolved
		}

		commits[i] = nc
	}

	next := s.shallowCopy()
	next.commits = commits

	return next, nil
}

// shallowCopy returns a new *State sharing s's file stacks, index, bottom
// and original export, but with its own commits slice and a fresh dep
// cache (commits are about to change under the caller).
func (s *State) shallowCopy() *State {
	return &State{
		commits:        append([]*CommitState(nil), s.commits...),
		bottom:         s.bottom,
		fileStacks:     s.fileStacks,
		idx:            s.idx,
		original:       s.original,
		requestedOrder: s.requestedOrder,
		depCache:       newDepMapCache(len(s.fileStacks)),
	}
}
