package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/log2csv/internal/model"
)

const (
	// TagWidth is the number of leading characters holding the record tag
	TagWidth = 6
	// PayloadOffset skips the tag and the single separator after it
	PayloadOffset = TagWidth + 1
)

// ErrMalformedLine is returned for a known tag with too few tokens
var ErrMalformedLine = errors.New("malformed line")

// LineError describes a malformed line
type LineError struct {
	Line     int
	Tag      string
	Expected int
	Got      int
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s record needs %d fields, got %d", e.Line, e.Tag, e.Expected, e.Got)
}

// Unwrap lets errors.Is match ErrMalformedLine
func (e *LineError) Unwrap() error {
	return ErrMalformedLine
}

// SplitLine cuts a raw log line into its tag and payload. Lines shorter
// than the tag width carry no tag.
func SplitLine(line string) (tag, payload string, ok bool) {
	if len(line) < TagWidth {
		return "", "", false
	}
	tag = line[:TagWidth]
	if len(line) > PayloadOffset {
		payload = line[PayloadOffset:]
	}
	return tag, payload, true
}

// RecordExtractor maps tagged log lines onto record schemas
type RecordExtractor struct {
	lookup func(tag string) (model.Schema, bool)
}

// NewRecordExtractor creates an extractor over the built-in schemas
func NewRecordExtractor() *RecordExtractor {
	return &RecordExtractor{lookup: model.SchemaForTag}
}

// Extract parses one line. ok is false for lines whose tag is not a
// known record tag; those are not errors.
func (e *RecordExtractor) Extract(lineNo int, line string) (rec model.Record, ok bool, err error) {
	tag, payload, hasTag := SplitLine(line)
	if !hasTag {
		return model.Record{}, false, nil
	}

	schema, known := e.lookup(tag)
	if !known {
		return model.Record{}, false, nil
	}

	tokens := strings.Fields(payload)
	if len(tokens) < len(schema.Fields) {
		return model.Record{}, false, &LineError{
			Line:     lineNo,
			Tag:      tag,
			Expected: len(schema.Fields),
			Got:      len(tokens),
		}
	}

	values := make([]string, len(schema.Fields))
	for i := range schema.Fields {
		values[i] = tokens[i]
	}

	return model.Record{
		Kind:   schema.Kind,
		Values: values,
		Line:   lineNo,
	}, true, nil
}
