// Package addr provides the hierarchical operator address used to key
// profile rows and operator memberships.
//
// An [Addr] is an ordered sequence of unsigned integers such as [0, 8, 10].
// Addresses compare lexicographically element by element, with a strict
// prefix ordering before any longer address that extends it. Because Go
// slices cannot key a map, every address also has a canonical string form,
// [Addr.Key], which is what indexes and ownership maps use.
package addr

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
)

// Addr identifies one measured unit of work. Treat values as immutable;
// constructors copy their input.
type Addr []uint32

// Key is the canonical, comparable form of an Addr. Two addresses have the
// same Key iff they have the same length and elements.
type Key string

// New returns a copy of parts as an Addr.
func New(parts ...uint32) Addr {
	return slices.Clone(Addr(parts))
}

// Key returns the canonical map key for a.
func (a Addr) Key() Key {
	var b strings.Builder
	for i, p := range a {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.FormatUint(uint64(p), 10))
	}
	return Key(b.String())
}

// String renders a in the profile table form, e.g. "[0, 8, 10]".
func (a Addr) String() string {
	parts := make([]string, len(a))
	for i, p := range a {
		parts[i] = strconv.FormatUint(uint64(p), 10)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Equal reports whether a and b have identical length and elements.
func (a Addr) Equal(b Addr) bool { return slices.Equal(a, b) }

// Compare orders addresses lexicographically. It returns -1, 0 or +1.
func Compare(a, b Addr) int {
	return slices.Compare(a, b)
}

// Sort orders addrs in place using [Compare].
func Sort(addrs []Addr) {
	slices.SortFunc(addrs, Compare)
}

// Parse reads the bracketed form "[0, 8, 10]". Whitespace around elements is
// ignored and empty elements are skipped, so "[]" yields an empty address.
func Parse(s string) (Addr, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, flowerrors.New(flowerrors.ErrCodeInvalidAddress, "addr must be bracketed: %s", s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return Addr{}, nil
	}
	var out Addr
	for _, part := range strings.Split(inner, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, flowerrors.Wrap(flowerrors.ErrCodeInvalidAddress, err, "bad addr element %q", p)
		}
		out = append(out, uint32(n))
	}
	return out, nil
}

// MustParse is like Parse but panics on error. It is intended for tests
// and static tables.
func MustParse(s string) Addr {
	a, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("addr.MustParse(%q): %v", s, err))
	}
	return a
}

// CompareKeys orders two keys by the addresses they encode.
func CompareKeys(a, b Key) int {
	return Compare(a.Addr(), b.Addr())
}

// Addr decodes a canonical key back into an address. Keys not produced by
// [Addr.Key] decode to an empty address.
func (k Key) Addr() Addr {
	if k == "" {
		return Addr{}
	}
	parts := strings.Split(string(k), ".")
	out := make(Addr, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return Addr{}
		}
		out = append(out, uint32(n))
	}
	return out
}
