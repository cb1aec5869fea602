// Package logfile parses operator profile tables.
//
// A profile table has one row per operator:
//
//	addr         activations  total_active_ms  name
//	[0, 8, 10]   33           853.886          ThresholdTotal
//
// Columns are separated by any run of whitespace and the name may itself
// contain spaces. Blank lines and the header line are skipped. Every other
// line must parse, and an address may appear only once.
package logfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/flowprof/pkg/addr"
	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
)

var lineRE = regexp.MustCompile(`^\s*(\[[^\]]*\])\s+(\d+)\s+([0-9]+(?:\.[0-9]+)?)\s+(.*?)\s*$`)

const maxLineBytes = 1 << 20

// Row is one operator measurement.
type Row struct {
	Addr          addr.Addr
	Activations   uint64
	TotalActiveMs float64
	OpName        string
	Line          int // 1-based line in the source, 0 when built in memory
}

// Index holds rows keyed by address.
type Index struct {
	rows map[addr.Key]Row
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{rows: make(map[addr.Key]Row)}
}

// Add inserts row. A second row for the same address is rejected with
// *DuplicateAddressError.
func (ix *Index) Add(row Row) error {
	k := row.Addr.Key()
	if prev, ok := ix.rows[k]; ok {
		return &DuplicateAddressError{Addr: row.Addr, Line: row.Line, FirstLine: prev.Line}
	}
	row.Addr = addr.New(row.Addr...)
	ix.rows[k] = row
	return nil
}

// Get returns the row for a.
func (ix *Index) Get(a addr.Addr) (Row, bool) {
	r, ok := ix.rows[a.Key()]
	return r, ok
}

// Len returns the number of rows.
func (ix *Index) Len() int { return len(ix.rows) }

// Rows returns all rows ordered by address.
func (ix *Index) Rows() []Row {
	out := make([]Row, 0, len(ix.rows))
	for _, r := range ix.rows {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b Row) int { return addr.Compare(a.Addr, b.Addr) })
	return out
}

// DuplicateAddressError reports an address listed twice.
type DuplicateAddressError struct {
	Addr      addr.Addr
	Line      int
	FirstLine int
}

func (e *DuplicateAddressError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("duplicate addr %s at line %d (first seen at line %d)", e.Addr, e.Line, e.FirstLine)
	}
	return fmt.Sprintf("duplicate addr %s", e.Addr)
}

// Code returns DUPLICATE_ADDRESS.
func (e *DuplicateAddressError) Code() flowerrors.Code { return flowerrors.ErrCodeDuplicateAddress }

// Parse reads a profile table from r. source names the input in error
// messages.
func Parse(r io.Reader, source string) (*Index, error) {
	ix := NewIndex()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), " \t\r")
		if strings.TrimSpace(line) == "" || isHeader(line) {
			continue
		}

		row, err := parseLine(line)
		if err != nil {
			return nil, flowerrors.Wrap(flowerrors.GetCode(err), err, "%s:%d: cannot parse line %q", source, lineNo, line)
		}
		row.Line = lineNo
		if err := ix.Add(row); err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return ix, nil
}

// ParseFile reads the profile table at path.
func ParseFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, path)
}

func isHeader(line string) bool {
	return strings.Contains(line, "addr") &&
		strings.Contains(line, "activations") &&
		strings.Contains(line, "total_active_ms")
}

func parseLine(line string) (Row, error) {
	m := lineRE.FindStringSubmatch(line)
	if m == nil {
		return Row{}, flowerrors.New(flowerrors.ErrCodeInvalidLogLine, "line does not match profile table format")
	}
	a, err := addr.Parse(m[1])
	if err != nil {
		return Row{}, err
	}
	act, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return Row{}, flowerrors.Wrap(flowerrors.ErrCodeInvalidLogLine, err, "bad activations %q", m[2])
	}
	ms, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return Row{}, flowerrors.Wrap(flowerrors.ErrCodeInvalidLogLine, err, "bad total_active_ms %q", m[3])
	}
	return Row{Addr: a, Activations: act, TotalActiveMs: ms, OpName: m[4]}, nil
}
