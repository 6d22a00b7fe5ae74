package stack

import "github.com/gitstax/stax/vcsio"

// deriveBottomFiles implements spec.md §4.1: iterate commits in export
// order, merging relevantFiles into BottomFiles only if the path is absent
// (earlier commits are lower in the stack, so the first value wins), then
// insert AbsentFile for any path referenced by a later Files entry that
// still has no bottom entry (it is introduced later; below the stack it
// does not exist).
func deriveBottomFiles(export *vcsio.ExportStack) BottomFiles {
	bottom := make(BottomFiles)

	for _, c := range export.Commits {
		for path, ef := range c.RelevantFiles {
			if _, ok := bottom[path]; !ok {
				bottom[path] = fileStateFromExport(ef)
			}
		}
	}

	for _, c := range export.Commits {
		for path := range c.Files {
			if _, ok := bottom[path]; !ok {
				bottom[path] = AbsentFile
			}
		}
	}

	return bottom
}

// fileStateFromExport converts a vcsio.ExportFile (nil meaning absent) into
// a FileState.
func fileStateFromExport(ef *vcsio.ExportFile) FileState {
	if ef == nil || ef.IsAbsent() {
		return AbsentFile
	}

	fs := FileState{CopyFrom: ef.CopyFrom, Flags: ef.Flags}
	if ef.Binary {
		fs.Data = BinaryData(ef.DataBase85)
	} else {
		fs.Data = TextData(ef.Data)
	}

	return fs
}
