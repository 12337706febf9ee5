// Package input reads the list of show titles from a stream.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// MaxLineLength is the longest title line accepted.
const MaxLineLength = 1024 * 1024

// ReadItems reads one item per line from r. Surrounding whitespace is
// trimmed and blank lines are skipped. Duplicates are kept in input order.
func ReadItems(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineLength)

	var items []string
	line := 0
	for scanner.Scan() {
		line++
		item := strings.TrimSpace(scanner.Text())
		if item == "" {
			continue
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return items, fmt.Errorf("reading input after line %d: %w", line, err)
	}

	return items, nil
}
