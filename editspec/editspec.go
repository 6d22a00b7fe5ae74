// Package editspec provides declarative descriptions of a sequence of
// stack edits, so a caller (a script or an AI agent) can describe a whole
// batch of fold/drop/reorder operations without driving the CLI
// interactively, and Apply them against a stack.State in one call.
package editspec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gitstax/stax/stack"
)

// OpType identifies a single edit-spec operation.
type OpType string

const (
	OpFold     OpType = "fold"
	OpDrop     OpType = "drop"
	OpMoveUp   OpType = "move-up"
	OpMoveDown OpType = "move-down"
	OpReorder  OpType = "reorder"
)

// Valid reports whether o is a recognized operation.
func (o OpType) Valid() bool {
	switch o {
	case OpFold, OpDrop, OpMoveUp, OpMoveDown, OpReorder:
		return true
	default:
		return false
	}
}

// Op is a single edit-spec operation.
type Op struct {
	// Op is the kind of operation.
	Op OpType `json:"op"`

	// Rev is the target revision (required for fold/drop/move-up/move-down).
	Rev stack.Rev `json:"rev,omitempty"`

	// Order is the full target permutation (required for reorder).
	Order []stack.Rev `json:"order,omitempty"`
}

// Validate checks that op is well formed (it does not check it against
// any particular State; use the matching Can* predicate for that).
func (op *Op) Validate() error {
	if !op.Op.Valid() {
		return fmt.Errorf("invalid op type: %q", op.Op)
	}

	if op.Op == OpReorder {
		if len(op.Order) == 0 {
			return fmt.Errorf("reorder requires a non-empty order")
		}

		return nil
	}

	if len(op.Order) != 0 {
		return fmt.Errorf("%s does not take an order", op.Op)
	}

	return nil
}

// Spec is an ordered batch of edit-spec operations.
type Spec struct {
	Ops []Op `json:"ops"`
}

// Validate checks that every op in s is individually well formed.
func (s *Spec) Validate() error {
	if len(s.Ops) == 0 {
		return fmt.Errorf("edit spec has no ops")
	}

	for i, op := range s.Ops {
		if err := op.Validate(); err != nil {
			return fmt.Errorf("op %d: %w", i+1, err)
		}
	}

	return nil
}

// Apply runs every op in s against s0 in order, returning the resulting
// state. It stops and returns an error at the first op that fails its
// precondition or encounters a structural error.
func (s *Spec) Apply(s0 *stack.State) (*stack.State, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	cur := s0

	for i, op := range s.Ops {
		next, err := applyOne(cur, op)
		if err != nil {
			return nil, fmt.Errorf("op %d (%s): %w", i+1, op.Op, err)
		}

		cur = next
	}

	return cur, nil
}

func applyOne(s *stack.State, op Op) (*stack.State, error) {
	switch op.Op {
	case OpFold:
		return s.FoldDown(op.Rev)
	case OpDrop:
		return s.Drop(op.Rev)
	case OpMoveUp:
		return s.MoveUp(op.Rev)
	case OpMoveDown:
		return s.MoveDown(op.Rev)
	case OpReorder:
		return s.Reorder(op.Order)
	default:
		return nil, fmt.Errorf("unhandled op type: %q", op.Op)
	}
}

// ParseSpec parses a Spec from JSON data.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec

	if err := json.Unmarshal(data, &spec); err != nil {
		snippet := string(data)
		if len(snippet) > 100 {
			snippet = snippet[:100] + "..."
		}

		return nil, fmt.Errorf("invalid JSON edit spec: %w\ninput: %s", err, snippet)
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return &spec, nil
}

// ParseCLISpec parses the CLI shorthand syntax.
//
// Supported formats:
//   - "fold:2" - fold rev 2 down into its parent
//   - "drop:3" - drop rev 3
//   - "move-up:1,move-down:0" - multiple ops, comma separated
//   - "reorder:0;2;1" - reorder to the given permutation (semicolon separated)
func ParseCLISpec(args []string) (*Spec, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no edit ops specified")
	}

	var ops []Op

	combined := strings.Join(args, ",")

	for _, part := range splitTopLevel(combined) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		op, err := parseOpSpec(part)
		if err != nil {
			return nil, fmt.Errorf("invalid op %q: %w", part, err)
		}

		ops = append(ops, op)
	}

	spec := &Spec{Ops: ops}

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return spec, nil
}

// parseOpSpec parses a single "type:arg" shorthand entry. "reorder"'s arg
// is itself a list of revs; since commas already separate ops, its revs
// are delimited with semicolons: "reorder:0;2;1".
func parseOpSpec(s string) (Op, error) {
	colonIdx := strings.Index(s, ":")
	if colonIdx < 0 {
		return Op{}, fmt.Errorf("missing ':' separator")
	}

	opStr := strings.ToLower(s[:colonIdx])
	rest := strings.TrimSpace(s[colonIdx+1:])

	opType := OpType(opStr)
	if !opType.Valid() {
		return Op{}, fmt.Errorf("unknown op: %q", opStr)
	}

	if opType == OpReorder {
		order, err := parseRevList(rest, ";")
		if err != nil {
			return Op{}, err
		}

		return Op{Op: OpReorder, Order: order}, nil
	}

	rev, err := parseRev(rest)
	if err != nil {
		return Op{}, err
	}

	return Op{Op: opType, Rev: rev}, nil
}

func parseRev(s string) (stack.Rev, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid rev %q: %w", s, err)
	}

	return stack.Rev(n), nil
}

func parseRevList(s, sep string) ([]stack.Rev, error) {
	fields := strings.Split(s, sep)

	out := make([]stack.Rev, 0, len(fields))

	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}

		rev, err := parseRev(f)
		if err != nil {
			return nil, err
		}

		out = append(out, rev)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("empty order")
	}

	return out, nil
}

// splitTopLevel splits s on commas that separate whole ops, i.e. commas
// not inside a reorder's semicolon-delimited order list. Since reorder
// uses ';' internally, a plain comma split is always safe here.
func splitTopLevel(s string) []string {
	return strings.Split(s, ",")
}
