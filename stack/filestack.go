package stack

import "github.com/gitstax/stax/stackiface"

// FileStack is the external contract of spec.md §4.2: a linear sequence of
// UTF-8 text revisions for one path. The core treats it as a black box; it
// never inspects a FileStack's internals, only calls these methods.
//
// fileRev 0 is always the stack's pre-stack (or prior-commit) baseline;
// later revs are appended as commits modify the path.
//
// Aliased from stackiface so the concrete filestack package can implement
// it without importing this package back.
type FileStack = stackiface.FileStack
