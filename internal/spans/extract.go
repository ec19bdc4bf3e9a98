package spans

import (
	"fmt"
	"io"
	"strings"
)

// Extract returns the function spans found in text, in the order their
// closing braces were reached. Contexts still open at the end of input are
// dropped. Extract never fails and keeps no state between calls.
func Extract(text string) []FunctionSpan {
	state := scanState{}
	for i, line := range splitLines(text) {
		lineNo := i + 1
		if m := MatchLine(line); m.Found() {
			state.push(m, lineNo)
		}
		state.scanLine(line, lineNo)
	}
	if state.closed == nil {
		return []FunctionSpan{}
	}
	return state.closed
}

// ExtractReader reads r to the end and extracts spans from its contents
func ExtractReader(r io.Reader) ([]FunctionSpan, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	return Extract(string(data)), nil
}

// splitLines splits on '\n' and trims a trailing '\r' from each line
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
