// Package record implements the line format of persisted cache snapshots.
//
// Each record is one line of the form <key>=<value>. The characters '%',
// '=', '\n' and '\r' inside keys and values are percent-encoded, so the first
// '=' of a line is always the delimiter.
package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Record is one encoded key/value pair.
type Record struct {
	Key   string
	Value string
}

var (
	// ErrEmptyLine is returned for a blank line inside a snapshot.
	ErrEmptyLine = errors.New("record: empty line")

	// ErrNoDelimiter is returned for a line without '='.
	ErrNoDelimiter = errors.New("record: missing '=' delimiter")
)

// ParseError reports a malformed line in a snapshot.
type ParseError struct {
	Line int    // 1-based line number
	Text string // raw line, without the trailing newline
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("record: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var escaper = strings.NewReplacer(
	"%", "%25",
	"=", "%3D",
	"\n", "%0A",
	"\r", "%0D",
)

// Escape encodes s so that it contains no '=' and no line breaks.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape reverses Escape.
func Unescape(s string) (string, error) {
	if !strings.Contains(s, "%") {
		return s, nil
	}
	return url.PathUnescape(s)
}

// Write writes records to w, one per line, each terminated by '\n'.
func Write(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		if _, err := bw.WriteString(Escape(r.Key)); err != nil {
			return err
		}
		if err := bw.WriteByte('='); err != nil {
			return err
		}
		if _, err := bw.WriteString(Escape(r.Value)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read parses every record in r, in order.
// A final line without a trailing newline is accepted.
func Read(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)

	var records []Record
	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("reading line %d: %w", lineNo, err)
		}
		if line == "" && err == io.EOF {
			return records, nil
		}

		rec, perr := parseLine(line)
		if perr != nil {
			return nil, &ParseError{Line: lineNo, Text: trimEOL(line), Err: perr}
		}
		records = append(records, rec)

		if err == io.EOF {
			return records, nil
		}
	}
}

func parseLine(line string) (Record, error) {
	line = trimEOL(line)
	if line == "" {
		return Record{}, ErrEmptyLine
	}

	rawKey, rawValue, ok := strings.Cut(line, "=")
	if !ok {
		return Record{}, ErrNoDelimiter
	}

	key, err := Unescape(rawKey)
	if err != nil {
		return Record{}, fmt.Errorf("key: %w", err)
	}
	value, err := Unescape(rawValue)
	if err != nil {
		return Record{}, fmt.Errorf("value: %w", err)
	}

	return Record{Key: key, Value: value}, nil
}

// trimEOL strips "\n" and a CRLF's "\r". Escaped data never contains a raw '\r'.
func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
