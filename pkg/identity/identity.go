// Package identity implements the deterministic id scheme shared by every
// seed batch. An id is a UUID laid out as
//
//	KKKKKKKK-0000-0000-NNNN-SSSSSSSSSSSS
//
// where K is the entity kind prefix, N the namespace (the WIR stage for
// stage-scoped kinds, the authoring generation for references) and S the
// sequence within that namespace. Namespace and sequence are written as
// decimal digits so ids stay readable in batch files.
package identity

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
)

// Kind identifies the entity type encoded in an id prefix.
type Kind string

// Entity kinds. The order of Kinds() is the dependency order used for writes.
const (
	KindUnknown       Kind = ""
	KindWIRMaster     Kind = "wir_master"
	KindCategory      Kind = "category"
	KindReference     Kind = "reference"
	KindChecklistItem Kind = "checklist_item"
)

// prefixes maps each kind to the first group of its ids.
var prefixes = map[Kind]string{
	KindWIRMaster:     "10000001",
	KindChecklistItem: "20000001",
	KindReference:     "30000001",
	KindCategory:      "40000001",
}

// Kinds returns all known kinds in write order.
func Kinds() []Kind {
	return []Kind{KindWIRMaster, KindCategory, KindReference, KindChecklistItem}
}

// String returns the kind name.
func (k Kind) String() string {
	if k == KindUnknown {
		return "unknown"
	}
	return string(k)
}

// Prefix returns the id prefix owned by the kind.
func (k Kind) Prefix() string {
	return prefixes[k]
}

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := prefixes[k]; !ok {
		return KindUnknown, errors.NewValidationError("kind", s, "unknown entity kind")
	}
	return k, nil
}

const (
	maxNamespace = 9999
	maxSequence  = 999999999999
)

// ID is a catalog identifier.
type ID struct {
	uuid.UUID
}

// Nil is the zero id.
var Nil = ID{}

// New mints the id for the given kind, namespace and sequence.
func New(kind Kind, namespace, sequence int) (ID, error) {
	prefix, ok := prefixes[kind]
	if !ok {
		return Nil, errors.NewValidationError("kind", kind, "unknown entity kind")
	}
	if namespace < 0 || namespace > maxNamespace {
		return Nil, errors.NewValidationError("namespace", namespace, "must be between 0 and 9999")
	}
	if sequence <= 0 || sequence > maxSequence {
		return Nil, errors.NewValidationError("sequence", sequence, "must be between 1 and 999999999999")
	}
	return Parse(fmt.Sprintf("%s-0000-0000-%04d-%012d", prefix, namespace, sequence))
}

// MustNew is like New but panics on error. Intended for tests and fixtures.
func MustNew(kind Kind, namespace, sequence int) ID {
	id, err := New(kind, namespace, sequence)
	if err != nil {
		panic(err)
	}
	return id
}

// Parse parses the canonical textual form of an id.
func Parse(s string) (ID, error) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return Nil, errors.NewParseError("uuid", "", fmt.Sprintf("invalid id %q", s), err)
	}
	return ID{UUID: u}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsNil reports whether the id is the zero id.
func (id ID) IsNil() bool {
	return id.UUID == uuid.Nil
}

// Kind classifies the id by its prefix.
func (id ID) Kind() Kind {
	prefix := id.String()[:8]
	for k, p := range prefixes {
		if p == prefix {
			return k
		}
	}
	return KindUnknown
}

// Namespace returns the namespace segment, or -1 when it is not decimal.
func (id ID) Namespace() int {
	return decimal(id.String()[19:23])
}

// Sequence returns the sequence segment, or -1 when it is not decimal.
func (id ID) Sequence() int {
	return decimal(id.String()[24:])
}

// Conformant reports whether the id follows the partitioning convention:
// a known prefix, zero middle groups and decimal namespace and sequence.
func (id ID) Conformant() bool {
	s := id.String()
	return id.Kind() != KindUnknown &&
		s[9:18] == "0000-0000" &&
		id.Namespace() >= 0 &&
		id.Sequence() > 0
}

// KindCompatible reports whether two ids carry the same kind prefix.
func KindCompatible(a, b ID) bool {
	return a.String()[:8] == b.String()[:8]
}

// NextIn returns the next free sequence id in a namespace, for authoring
// new records after the ones already present.
func NextIn(ids []ID, kind Kind, namespace int) (ID, error) {
	highest := 0
	for _, id := range ids {
		if id.Kind() == kind && id.Namespace() == namespace && id.Sequence() > highest {
			highest = id.Sequence()
		}
	}
	return New(kind, namespace, highest+1)
}

// Sort orders ids by their textual form, which groups them by kind,
// namespace and sequence.
func Sort(ids []ID) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func decimal(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return -1
	}
	return n
}
