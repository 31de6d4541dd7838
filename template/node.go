package template

// Kind discriminates the variants of a parsed template node.
type Kind int

const (
	KindMapping Kind = iota
	KindSequence
	KindScalar
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	case KindScalar:
		return "scalar"
	case KindFunction:
		return "function"
	}
	return "unknown"
}

// FnTag is the closed set of intrinsic functions the loader recognizes.
type FnTag string

const (
	FnRef         FnTag = "Ref"
	FnGetAtt      FnTag = "GetAtt"
	FnJoin        FnTag = "Join"
	FnSub         FnTag = "Sub"
	FnFindInMap   FnTag = "FindInMap"
	FnImportValue FnTag = "ImportValue"
	FnBase64      FnTag = "Base64"
)

type Entry struct {
	Key   string
	Value *Node
}

// Node is the immutable parse tree. Exactly one variant is populated,
// selected by Kind: Entries for mappings (key order preserved), Items for
// sequences, Value/Tag for scalars, Fn/Args for intrinsic calls.
type Node struct {
	Kind Kind

	Entries []Entry
	Items   []*Node

	Value string
	Tag   string

	Fn   FnTag
	Args []*Node

	Line   int
	Column int
}

func (n *Node) Lookup(key string) (*Node, bool) {
	if n == nil || n.Kind != KindMapping {
		return nil, false
	}
	for _, entry := range n.Entries {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return nil, false
}

func (n *Node) Keys() []string {
	if n == nil || n.Kind != KindMapping {
		return nil
	}
	keys := make([]string, 0, len(n.Entries))
	for _, entry := range n.Entries {
		keys = append(keys, entry.Key)
	}
	return keys
}

func (n *Node) IsScalar() bool {
	return n != nil && n.Kind == KindScalar
}

// Equal reports structural equality, ignoring source positions.
func Equal(a *Node, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindScalar:
		return a.Value == b.Value && a.Tag == b.Tag
	case KindSequence:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for idx := range a.Items {
			if !Equal(a.Items[idx], b.Items[idx]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(a.Entries) != len(b.Entries) {
			return false
		}
		for idx := range a.Entries {
			if a.Entries[idx].Key != b.Entries[idx].Key {
				return false
			}
			if !Equal(a.Entries[idx].Value, b.Entries[idx].Value) {
				return false
			}
		}
		return true
	case KindFunction:
		if a.Fn != b.Fn || len(a.Args) != len(b.Args) {
			return false
		}
		for idx := range a.Args {
			if !Equal(a.Args[idx], b.Args[idx]) {
				return false
			}
		}
		return true
	}

	return false
}
