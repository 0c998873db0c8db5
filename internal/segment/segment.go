// Package segment turns line-oriented input into ordered sequences of units.
//
// A unit is either a single line (no delimiter configured) or a block of
// lines closed by a delimiter line. Blocks keep their inner line breaks as
// '\n'; the delimiter lines themselves are not part of any unit.
package segment

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const readBufSize = 1 << 20

// ErrInvalidUTF8 is the cause carried by a ParseError for undecodable lines.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// ParseError reports the 1-based line at which segmentation failed.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error parsing line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Segment reads r to EOF and returns its units.
//
// With delim == nil every line is a unit. Otherwise a line whose trimmed
// content equals the trimmed *delim (an empty delimiter means a blank line)
// closes the current unit, and at EOF the pending buffer is always emitted
// as a final unit, even when it is empty.
func Segment(r io.Reader, delim *string) ([]string, error) {
	br := bufio.NewReaderSize(r, readBufSize)
	var want string
	if delim != nil {
		want = strings.TrimSpace(*delim)
	}

	var (
		units   []string
		buf     strings.Builder
		pending bool // buf holds at least one line, possibly empty
		lineNo  int
	)
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, &ParseError{Line: lineNo + 1, Err: err}
		}
		if len(line) == 0 && err == io.EOF {
			break
		}
		lineNo++
		line = stripEOL(line)
		if !utf8.ValidString(line) {
			return nil, &ParseError{Line: lineNo, Err: ErrInvalidUTF8}
		}

		switch {
		case delim == nil:
			units = append(units, line)
		case strings.TrimSpace(line) == want:
			units = append(units, buf.String())
			buf.Reset()
			pending = false
		default:
			if pending {
				buf.WriteByte('\n')
			}
			buf.WriteString(line)
			pending = true
		}

		if err == io.EOF {
			break
		}
	}
	if delim != nil {
		units = append(units, buf.String())
	}
	return units, nil
}

// stripEOL removes a trailing "\n" or "\r\n".
func stripEOL(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
