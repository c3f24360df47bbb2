package report

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// TSVHeader is the first line of a breakpoint table.
const TSVHeader = "Start\tEnd\tCount"

// BreakpointsPath returns the breakpoint table path for an output prefix.
func BreakpointsPath(prefix string) string {
	return prefix + ".breakpoints.txt"
}

// WriteTSV writes calls as a tab-separated table with a header line.
func WriteTSV(w io.Writer, calls []Call) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, TSVHeader)
	for _, c := range calls {
		fmt.Fprintf(bw, "%d\t%d\t%d\n", c.Start, c.End, c.Count)
	}
	return bw.Flush()
}

// ReadTSV parses a table written by WriteTSV. The first line is always
// treated as the header.
func ReadTSV(r io.Reader) ([]Call, error) {
	s := bufio.NewScanner(r)
	var calls []Call
	line := 0
	for s.Scan() {
		line++
		if line == 1 {
			continue
		}
		text := strings.TrimSpace(s.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: line %d: expected 3 columns, got %d", ErrMalformedTable, line, len(fields))
		}
		var nums [3]int
		for i, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedTable, line, err)
			}
			nums[i] = n
		}
		calls = append(calls, Call{Start: nums[0], End: nums[1], Count: nums[2]})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return calls, nil
}

// ReadTSVFile reads a breakpoint table from disk.
func ReadTSVFile(path string) ([]Call, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open breakpoint table: %w", err)
	}
	defer f.Close()

	calls, err := ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return calls, nil
}

// TSVSink writes the breakpoint table to Path.
type TSVSink struct {
	Path string
}

// WriteCalls implements Sink.
func (s *TSVSink) WriteCalls(_ context.Context, _ string, calls []Call) error {
	return writeFile(s.Path, func(w io.Writer) error {
		return WriteTSV(w, calls)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
