package extract

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ppiankov/log2csv/internal/model"
)

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantTag     string
		wantPayload string
		wantOK      bool
	}{
		{"participant", "[PART] 1 34 F", "[PART]", "1 34 F", true},
		{"tag only", "[PART]", "[PART]", "", true},
		{"tag and separator", "[PART] ", "[PART]", "", true},
		{"short", "[PAR", "", "", false},
		{"empty", "", "", "", false},
		{"no separator eats first char", "[PART]1 34 F", "[PART]", " 34 F", true},
		{"tab separator", "[TRAN]\t1 2 home 5", "[TRAN]", "1 2 home 5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, payload, ok := SplitLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if tag != tt.wantTag {
				t.Errorf("tag = %q, want %q", tag, tt.wantTag)
			}
			if payload != tt.wantPayload {
				t.Errorf("payload = %q, want %q", payload, tt.wantPayload)
			}
		})
	}
}

func TestRecordExtractor_Extract(t *testing.T) {
	e := NewRecordExtractor()

	tests := []struct {
		name   string
		line   string
		kind   model.Kind
		values []string
	}{
		{
			name:   "participant",
			line:   "[PART] 1 34 F",
			kind:   model.KindParticipant,
			values: []string{"1", "34", "F"},
		},
		{
			name:   "contact",
			line:   "[CONT] 1 34 40 1 0 0 0 0 5",
			kind:   model.KindContact,
			values: []string{"1", "34", "40", "1", "0", "0", "0", "0", "5"},
		},
		{
			name:   "transmission",
			line:   "[TRAN] 1 2 home 5",
			kind:   model.KindTransmission,
			values: []string{"1", "2", "home", "5"},
		},
		{
			name:   "extra tokens ignored",
			line:   "[TRAN] 1 2 home 5 extra tokens",
			kind:   model.KindTransmission,
			values: []string{"1", "2", "home", "5"},
		},
		{
			name:   "irregular whitespace and CRLF",
			line:   "[PART]  7\t\t21   M\r",
			kind:   model.KindParticipant,
			values: []string{"7", "21", "M"},
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok, err := e.Extract(i+1, tt.line)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ok {
				t.Fatal("expected line to be recognised")
			}
			if rec.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", rec.Kind, tt.kind)
			}
			if !reflect.DeepEqual(rec.Values, tt.values) {
				t.Errorf("values = %v, want %v", rec.Values, tt.values)
			}
			if rec.Line != i+1 {
				t.Errorf("line = %d, want %d", rec.Line, i+1)
			}
		})
	}
}

func TestRecordExtractor_UnknownLinesSkipped(t *testing.T) {
	e := NewRecordExtractor()

	for _, line := range []string{"", "[NOTE] something", "hello", "[PART", "PART] 1 2 3"} {
		_, ok, err := e.Extract(1, line)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", line, err)
		}
		if ok {
			t.Errorf("%q: expected line to be skipped", line)
		}
	}
}

func TestRecordExtractor_MalformedLine(t *testing.T) {
	e := NewRecordExtractor()

	_, ok, err := e.Extract(12, "[CONT] 1 34 40")
	if ok {
		t.Error("malformed line must not yield a record")
	}
	if !errors.Is(err, ErrMalformedLine) {
		t.Fatalf("expected ErrMalformedLine, got %v", err)
	}

	var lineErr *LineError
	if !errors.As(err, &lineErr) {
		t.Fatalf("expected *LineError, got %T", err)
	}
	if lineErr.Line != 12 || lineErr.Expected != 9 || lineErr.Got != 3 || lineErr.Tag != "[CONT]" {
		t.Errorf("unexpected line error: %+v", lineErr)
	}
	if got := err.Error(); got != "line 12: [CONT] record needs 9 fields, got 3" {
		t.Errorf("unexpected message: %s", got)
	}
}
