package testutil

import "github.com/gitstax/stax/vcsio"

// CommitBuilder incrementally builds a vcsio.ExportCommit for engine tests.
type CommitBuilder struct {
	c vcsio.ExportCommit
}

// Commit starts a new commit fixture. key becomes both the original node
// hash and, once loaded, the resulting CommitState's Key, so tests can
// refer to commits by short readable labels ("A", "B", ...) the way
// spec scenarios do.
func Commit(key string) *CommitBuilder {
	return &CommitBuilder{c: vcsio.ExportCommit{
		Node:      key,
		Requested: true,
		Author:    "test",
		Text:      key,
		Files:     map[string]*vcsio.ExportFile{},
	}}
}

// Parent sets this commit's sole parent hash.
func (b *CommitBuilder) Parent(key string) *CommitBuilder {
	b.c.Parents = []string{key}
	return b
}

// Text overrides the commit message.
func (b *CommitBuilder) Text(text string) *CommitBuilder {
	b.c.Text = text
	return b
}

// Immutable marks the commit host-immutable.
func (b *CommitBuilder) Immutable() *CommitBuilder {
	b.c.Immutable = true
	return b
}

// NotRequested marks the commit as outside the caller's requested range.
func (b *CommitBuilder) NotRequested() *CommitBuilder {
	b.c.Requested = false
	return b
}

// File adds or modifies a UTF-8 file.
func (b *CommitBuilder) File(path, content string) *CommitBuilder {
	b.c.Files[path] = &vcsio.ExportFile{Data: content}
	return b
}

// Rename marks path as having been renamed from src with the given
// content, and marks src itself absent in the same commit.
func (b *CommitBuilder) Rename(src, path, content string) *CommitBuilder {
	b.c.Files[path] = &vcsio.ExportFile{Data: content, CopyFrom: src}
	b.c.Files[src] = &vcsio.ExportFile{Flags: vcsio.FlagAbsent}
	return b
}

// Copy adds path as a copy of src without removing src.
func (b *CommitBuilder) Copy(src, path, content string) *CommitBuilder {
	b.c.Files[path] = &vcsio.ExportFile{Data: content, CopyFrom: src}
	return b
}

// Delete marks path absent.
func (b *CommitBuilder) Delete(path string) *CommitBuilder {
	b.c.Files[path] = &vcsio.ExportFile{Flags: vcsio.FlagAbsent}
	return b
}

// Relevant records path's pre-stack snapshot (seeds BottomFiles).
func (b *CommitBuilder) Relevant(path, content string) *CommitBuilder {
	if b.c.RelevantFiles == nil {
		b.c.RelevantFiles = map[string]*vcsio.ExportFile{}
	}
	b.c.RelevantFiles[path] = &vcsio.ExportFile{Data: content}
	return b
}

// Build returns the assembled ExportCommit.
func (b *CommitBuilder) Build() vcsio.ExportCommit { return b.c }

// Stack assembles an ExportStack from a sequence of CommitBuilders.
func Stack(commits ...*CommitBuilder) *vcsio.ExportStack {
	out := &vcsio.ExportStack{Commits: make([]vcsio.ExportCommit, len(commits))}
	for i, c := range commits {
		out.Commits[i] = c.Build()
	}

	return out
}
