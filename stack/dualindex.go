package stack

// CommitIdx addresses one path's modification at one commit revision.
type CommitIdx struct {
	Rev  Rev
	Path string
}

// dualIndex is the bijection between (rev, path) and (fileStackIdx, fileRev)
// described in spec.md §3/§4.3. The two maps are always rebuilt together;
// nothing in this package mutates one without the other.
type dualIndex struct {
	commitToFile map[CommitIdx]FileIdx
	fileToCommit map[FileIdx]CommitIdx
}

func newDualIndex() *dualIndex {
	return &dualIndex{
		commitToFile: make(map[CommitIdx]FileIdx),
		fileToCommit: make(map[FileIdx]CommitIdx),
	}
}

// set records both directions of one (rev,path) <-> (stackIdx,fileRev) link.
func (d *dualIndex) set(ci CommitIdx, fi FileIdx) {
	d.commitToFile[ci] = fi
	d.fileToCommit[fi] = ci
}
