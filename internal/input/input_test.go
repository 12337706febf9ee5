package input

import (
	"bufio"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

func TestReadItems(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "simple",
			input: "Show A\nShow B\nShow C\n",
			want:  []string{"Show A", "Show B", "Show C"},
		},
		{
			name:  "no_trailing_newline",
			input: "Show A\nShow B",
			want:  []string{"Show A", "Show B"},
		},
		{
			name:  "blank_lines_skipped",
			input: "\n\nShow A\n   \n\t\nShow B\n\n",
			want:  []string{"Show A", "Show B"},
		},
		{
			name:  "whitespace_trimmed",
			input: "  Show A  \n\tShow B\t\n",
			want:  []string{"Show A", "Show B"},
		},
		{
			name:  "crlf",
			input: "Show A\r\nShow B\r\n",
			want:  []string{"Show A", "Show B"},
		},
		{
			name:  "inner_whitespace_kept",
			input: "The   Wire\n",
			want:  []string{"The   Wire"},
		},
		{
			name:  "duplicates_kept",
			input: "Show A\nShow A\n",
			want:  []string{"Show A", "Show A"},
		},
		{
			name:  "unicode",
			input: "Les Revenants\nハイキュー!!\n",
			want:  []string{"Les Revenants", "ハイキュー!!"},
		},
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "only_blank",
			input: "\n \n\t\n",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadItems(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadItems() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadItems() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadItems_LongLine(t *testing.T) {
	long := strings.Repeat("x", 200*1024)

	got, err := ReadItems(strings.NewReader(long + "\nShow A\n"))
	if err != nil {
		t.Fatalf("ReadItems() error = %v", err)
	}
	if len(got) != 2 || got[0] != long {
		t.Fatalf("long line not preserved, got %d items", len(got))
	}
}

func TestReadItems_LineTooLong(t *testing.T) {
	tooLong := strings.Repeat("x", MaxLineLength+1)

	_, err := ReadItems(strings.NewReader("Show A\n" + tooLong + "\n"))
	if !errors.Is(err, bufio.ErrTooLong) {
		t.Fatalf("expected bufio.ErrTooLong, got %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestReadItems_ReadError(t *testing.T) {
	_, err := ReadItems(failingReader{})
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
}
