package wordlib

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mrlokans/wordbook/internal/entities"
)

// Library file format, version 1:
//
//	#wordlib v1
//	<term>\t<definition>[\t<example>[\t<CAT,CAT,...>]]
//
// One record per line. Inside a field, backslash, tab, newline and carriage
// return are written as \\, \t, \n and \r. Blank lines are ignored. A file
// without the header line is read as version 1.
const (
	FormatVersion = "v1"
	Header        = headerPrefix + " " + FormatVersion

	headerPrefix   = "#wordlib"
	fieldSeparator = "\t"
	categorySep    = ","
	minFields      = 2
	maxFields      = 4

	// Longest physical line accepted by Decode.
	maxLineSize = 1 << 20
)

// ErrMalformed marks content that could not be decoded as a word library.
var ErrMalformed = errors.New("malformed word library")

// LineError describes the first malformed line of a library file.
type LineError struct {
	Line   int
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s: line %d: %s", ErrMalformed, e.Line, e.Reason)
}

func (e *LineError) Unwrap() error {
	return ErrMalformed
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"\t", `\t`,
	"\n", `\n`,
	"\r", `\r`,
)

// Parse decodes the full text of a library file.
//
// The returned WordLib is never nil. Malformed text yields an empty library
// together with an error wrapping ErrMalformed, so callers can log the
// problem and carry on with an empty library.
func Parse(text string) (*WordLib, error) {
	return Decode(strings.NewReader(text))
}

// Decode reads a library from r. Like Parse, it always returns a usable
// WordLib; on error that library is empty.
func Decode(r io.Reader) (*WordLib, error) {
	lib := New()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")

		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
			if isHeader(line) {
				if version := strings.TrimSpace(strings.TrimPrefix(line, headerPrefix)); version != FormatVersion {
					return New(), &LineError{Line: lineNo, Reason: fmt.Sprintf("unsupported format version %q", version)}
				}
				continue
			}
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		entry, err := decodeRecord(line)
		if err != nil {
			return New(), &LineError{Line: lineNo, Reason: err.Error()}
		}
		// Duplicate terms: the later record wins.
		lib.entries[entry.Term] = entry
	}

	if err := scanner.Err(); err != nil {
		return New(), fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return lib, nil
}

// Serialize encodes the library in the current file format. Records are
// ordered by term so equal libraries serialize to identical text.
func (l *WordLib) Serialize() string {
	var sb strings.Builder
	// strings.Builder never returns a write error.
	_ = l.Encode(&sb)
	return sb.String()
}

// Encode writes the serialized library to w.
func (l *WordLib) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(Header + "\n"); err != nil {
		return err
	}
	for _, entry := range l.Entries() {
		if _, err := bw.WriteString(encodeRecord(entry) + "\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func isHeader(line string) bool {
	return line == headerPrefix || strings.HasPrefix(line, headerPrefix+" ")
}

func encodeRecord(entry entities.Entry) string {
	fields := []string{escaper.Replace(entry.Term), escaper.Replace(entry.Definition)}

	var cats string
	if len(entry.Categories) > 0 {
		names := make([]string, len(entry.Categories))
		for i, c := range entry.Categories {
			names[i] = string(c)
		}
		cats = strings.Join(names, categorySep)
	}

	// Trailing empty fields are omitted.
	switch {
	case cats != "":
		fields = append(fields, escaper.Replace(entry.Example), cats)
	case entry.Example != "":
		fields = append(fields, escaper.Replace(entry.Example))
	}

	return strings.Join(fields, fieldSeparator)
}

func decodeRecord(line string) (entities.Entry, error) {
	raw := strings.Split(line, fieldSeparator)
	if len(raw) < minFields || len(raw) > maxFields {
		return entities.Entry{}, fmt.Errorf("expected %d to %d tab-separated fields, got %d", minFields, maxFields, len(raw))
	}

	fields := make([]string, len(raw))
	for i, f := range raw {
		v, err := unescape(f)
		if err != nil {
			return entities.Entry{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		fields[i] = v
	}

	entry := entities.Entry{
		Term:       NormalizeTerm(fields[0]),
		Definition: fields[1],
	}
	if entry.Term == "" {
		return entities.Entry{}, fmt.Errorf("blank term")
	}
	if len(fields) > 2 {
		entry.Example = fields[2]
	}
	if len(fields) > 3 && fields[3] != "" {
		for _, name := range strings.Split(fields[3], categorySep) {
			c, err := entities.ParseCategory(name)
			if err != nil {
				return entities.Entry{}, err
			}
			entry.Categories = append(entry.Categories, c)
		}
	}

	return entry, nil
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i == len(s) {
			return "", fmt.Errorf("dangling escape at end of field")
		}
		switch s[i] {
		case '\\':
			sb.WriteByte('\\')
		case 't':
			sb.WriteByte('\t')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		default:
			return "", fmt.Errorf("unknown escape sequence \\%c", s[i])
		}
	}
	return sb.String(), nil
}
