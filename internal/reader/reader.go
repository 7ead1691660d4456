// Package reader implements the lazy, one-step-lookahead event reader
// (spec §4.1, component C1).
package reader

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/ajsharma/tlogcompile/internal/event"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// lineRE matches "<timestamp> { ... }" or just "{ ... }", per the grammar
// in spec §6: line := WS* (ts WS+)? object WS*.
var lineRE = regexp.MustCompile(`^\s*(\d+)?\s*(\{.*\})\s*$`)

// ParseError is returned when a non-blank line doesn't match the input
// grammar, or its JSON object fails to decode. It carries the 1-based
// line number so callers can report it the way the Python LogIterator did.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Reader produces a lazy, finite sequence of events from an input stream,
// with Peek(n) lookahead.
type Reader struct {
	scanner   *bufio.Scanner
	lineNum   int
	lookahead []event.Event
	ignored   map[string]bool
	done      bool
}

// New creates a Reader over r. ignoredEvents, if non-nil, names events that
// are filtered out before ever being returned (spec §4.1's reader-level
// filter).
func New(r io.Reader, ignoredEvents []string) *Reader {
	ignored := make(map[string]bool, len(ignoredEvents))
	for _, n := range ignoredEvents {
		ignored[n] = true
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Reader{scanner: sc, ignored: ignored}
}

// CurrentLine returns the line number of the most recently read input
// line, including lines read ahead by Peek.
func (r *Reader) CurrentLine() int {
	return r.lineNum
}

// Next consumes and returns the next event, or io.EOF when the input is
// exhausted.
func (r *Reader) Next() (event.Event, error) {
	if len(r.lookahead) > 0 {
		e := r.lookahead[0]
		r.lookahead = r.lookahead[1:]
		return e, nil
	}
	return r.nextImpl()
}

// Peek returns, but does not consume, the event at the given index (0 =
// next event) in the lookahead buffer.
func (r *Reader) Peek(index int) (event.Event, error) {
	for len(r.lookahead) <= index {
		e, err := r.nextImpl()
		if err != nil {
			return nil, err
		}
		r.lookahead = append(r.lookahead, e)
	}
	return r.lookahead[index], nil
}

func (r *Reader) nextImpl() (event.Event, error) {
	for {
		line, ok := r.readLine()
		if !ok {
			return nil, io.EOF
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		m := lineRE.FindStringSubmatch(line)
		if m == nil {
			return nil, &ParseError{Line: r.lineNum, Msg: fmt.Sprintf("unexpected format: %q", line)}
		}

		var e event.Event
		if err := json.Unmarshal([]byte(m[2]), &e); err != nil {
			return nil, &ParseError{Line: r.lineNum, Msg: "parsing JSON: " + err.Error()}
		}

		if m[1] != "" {
			ts, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				return nil, &ParseError{Line: r.lineNum, Msg: "parsing timestamp: " + err.Error()}
			}
			e["time"] = ts
		}

		if r.ignored[e.Name()] {
			continue
		}
		return e, nil
	}
}

func (r *Reader) readLine() (string, bool) {
	if r.done {
		return "", false
	}
	if !r.scanner.Scan() {
		r.done = true
		return "", false
	}
	r.lineNum++
	return r.scanner.Text(), true
}
