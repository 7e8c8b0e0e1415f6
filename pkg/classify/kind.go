package classify

import (
	"slices"
	"strings"

	"github.com/matzehuels/hyperscene/pkg/errors"
)

// Kind is the visual treatment a relation receives.
type Kind int

const (
	// None marks relations that are not rendered (definitions, unrecognised kinds).
	None Kind = iota
	// Containment nests the child node inside the parent node.
	Containment
	// PartOf draws a dotted straight edge from part to whole.
	PartOf
	// IsA draws a solid straight edge from subclass to superclass.
	IsA
	// InstanceOf draws a dashed straight edge from instance to class.
	InstanceOf
	// Connects draws a solid curved edge between endpoints.
	Connects
)

var kindNames = map[Kind]string{
	None:        "none",
	Containment: "containment",
	PartOf:      "partOf",
	IsA:         "isA",
	InstanceOf:  "instanceOf",
	Connects:    "connects",
}

// String returns the camel-case name used in configuration files and JSON.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind parses a kind name as produced by [Kind.String]. Matching is
// case-insensitive and ignores dashes and underscores.
func ParseKind(s string) (Kind, bool) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(s))
	for k, name := range kindNames {
		if strings.ToLower(name) == norm {
			return k, true
		}
	}
	return None, false
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler via [ParseKind].
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, ok := ParseKind(string(b))
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "unknown relation kind %q", b)
	}
	*k = parsed
	return nil
}

// Set is a set of kinds.
type Set map[Kind]struct{}

// NewSet returns a set containing ks.
func NewSet(ks ...Kind) Set {
	s := make(Set, len(ks))
	for _, k := range ks {
		s.Add(k)
	}
	return s
}

// Add inserts k. None is never stored.
func (s Set) Add(k Kind) {
	if k != None {
		s[k] = struct{}{}
	}
}

// Has reports whether k is in the set.
func (s Set) Has(k Kind) bool {
	_, ok := s[k]
	return ok
}

// Union adds every member of o to s.
func (s Set) Union(o Set) {
	for k := range o {
		s[k] = struct{}{}
	}
}

// Sorted returns the members in ascending Kind order.
func (s Set) Sorted() []Kind {
	out := make([]Kind, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Style is the line style of a visual edge.
type Style int

const (
	SolidStraight Style = iota
	DashedStraight
	DottedStraight
	SolidCurved
)

var styleNames = [...]string{"solid", "dashed", "dotted", "curved"}

func (s Style) String() string {
	if int(s) < len(styleNames) {
		return styleNames[s]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s Style) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Style) UnmarshalText(b []byte) error {
	i := slices.Index(styleNames[:], string(b))
	if i < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "unknown edge style %q", b)
	}
	*s = Style(i)
	return nil
}

// StyleOf returns the edge style for k. Containment and None have no line;
// they report SolidStraight with ok=false.
func StyleOf(k Kind) (Style, bool) {
	switch k {
	case PartOf:
		return DottedStraight, true
	case IsA:
		return SolidStraight, true
	case InstanceOf:
		return DashedStraight, true
	case Connects:
		return SolidCurved, true
	default:
		return SolidStraight, false
	}
}
