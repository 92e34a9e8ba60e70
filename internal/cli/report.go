package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ppiankov/log2csv/internal/cache"
	"github.com/ppiankov/log2csv/internal/extract"
	"github.com/ppiankov/log2csv/internal/model"
	"github.com/ppiankov/log2csv/internal/pipeline"
)

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	skipMark = color.New(color.FgYellow).SprintFunc()
	failMark = color.New(color.FgRed, color.Bold).SprintFunc()
)

func printSummary(w io.Writer, s *pipeline.Summary, verbose bool) {
	for _, schema := range model.Schemas() {
		rows := s.Rows[schema.Kind]
		if rows == 0 {
			if verbose {
				fmt.Fprintf(w, "%s %s: no rows, not written\n", skipMark("-"), schema.Kind)
			}
			continue
		}
		fmt.Fprintf(w, "%s %s: %d rows -> %s\n", okMark("✓"), schema.Kind, rows, pipeline.TablePath(s.BasePath, schema))
	}

	if verbose {
		fmt.Fprintf(w, "\n  Lines:    %d\n", s.Lines)
		fmt.Fprintf(w, "  Skipped:  %d\n", s.Skipped)
		fmt.Fprintf(w, "  Duration: %v\n", s.Duration)
	}
	if s.SourceKept {
		fmt.Fprintf(w, "%s kept %s\n", skipMark("-"), s.SourcePath)
	} else if verbose {
		fmt.Fprintf(w, "%s removed %s\n", okMark("✓"), s.SourcePath)
	}
}

func printFailure(w io.Writer, basePath string, err error) {
	var lineErr *extract.LineError
	switch {
	case errors.As(err, &lineErr):
		fmt.Fprintf(w, "%s %s: malformed %s record on line %d (want %d fields, got %d)\n",
			failMark("✗"), pipeline.SourcePath(basePath), lineErr.Tag, lineErr.Line, lineErr.Expected, lineErr.Got)
	case errors.Is(err, pipeline.ErrSourceMissing):
		fmt.Fprintf(w, "%s %s: no such logfile\n", failMark("✗"), pipeline.SourcePath(basePath))
	case errors.Is(err, cache.ErrInFlight):
		fmt.Fprintf(w, "%s %s: another conversion is running\n", failMark("✗"), basePath)
	default:
		fmt.Fprintf(w, "%s %s: %v\n", failMark("✗"), basePath, err)
	}
}

// reportedError marks an error whose diagnostics were already printed
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Report prints err unless it was already reported and returns the
// process exit code: 0 on success, 2 on misuse, 1 otherwise
func Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, ErrUsage) {
		return 2
	}
	var reported *reportedError
	if !errors.As(err, &reported) {
		fmt.Fprintf(w, "%s %v\n", failMark("✗"), err)
	}
	return 1
}
