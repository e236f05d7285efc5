package ai

import (
	"strings"
	"testing"
)

func collectFiltered(t *testing.T, chunks []string) string {
	t.Helper()

	var filter ThinkFilter
	var out strings.Builder
	emit := func(s string) error {
		out.WriteString(s)
		return nil
	}

	for _, chunk := range chunks {
		if err := filter.Consume(chunk, emit); err != nil {
			t.Fatalf("Consume(%q) returned error: %v", chunk, err)
		}
	}
	if err := filter.Flush(emit); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	return out.String()
}

func TestThinkFilter(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   string
	}{
		{
			name:   "plain text passes through",
			chunks: []string{"hola ", "qué tal"},
			want:   "hola qué tal",
		},
		{
			name:   "delimiters split across chunks",
			chunks: []string{"<th", "ink>secret</thi", "nk> visible"},
			want:   "visible",
		},
		{
			name:   "block in the middle of text",
			chunks: []string{"hello <think>reasoning</think> world"},
			want:   "hello world",
		},
		{
			name:   "unterminated block discards remainder",
			chunks: []string{"visible <think>hidden reasoning that never closes"},
			want:   "visible ",
		},
		{
			name:   "multiple blocks",
			chunks: []string{"<think>a</think>one<think>b</think> two"},
			want:   "onetwo",
		},
		{
			name:   "partial open tag that never completes is flushed",
			chunks: []string{"a <thin"},
			want:   "a <thin",
		},
		{
			name:   "whitespace after close is trimmed across chunks",
			chunks: []string{"<think>x</think>", "  ", "  hola"},
			want:   "hola",
		},
		{
			name:   "empty stream",
			chunks: nil,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collectFiltered(t, tt.chunks)
			if got != tt.want {
				t.Fatalf("filtered stream = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestThinkFilterStopsOnEmitError(t *testing.T) {
	var filter ThinkFilter
	wantErr := "sink closed"
	err := filter.Consume("some text", func(string) error {
		return &emitErr{wantErr}
	})
	if err == nil || err.Error() != wantErr {
		t.Fatalf("Consume error = %v, want %q", err, wantErr)
	}
}

type emitErr struct{ msg string }

func (e *emitErr) Error() string { return e.msg }

func TestStripThinking(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no block", "hola mundo", "hola mundo"},
		{"single block", "<think>reasoning</think>  hola", "hola"},
		{"block in middle", "antes <think>x</think> después", "antes después"},
		{"unterminated block", "antes <think>never closed", "antes"},
		{"multiline block", "<think>line1\nline2</think>resultado", "resultado"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripThinking(tt.input); got != tt.want {
				t.Fatalf("StripThinking(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
