package ai

import (
	"regexp"
	"strings"
)

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

var (
	thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>\s*`)
	thinkTailRe  = regexp.MustCompile(`(?s)<think>.*`)
)

// StripThinking removes <think>...</think> reasoning blocks from a complete
// model response, including an unterminated trailing block.
func StripThinking(text string) string {
	text = thinkBlockRe.ReplaceAllString(text, "")
	text = thinkTailRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// ThinkFilter strips <think>...</think> reasoning blocks from a token
// stream. Delimiters may arrive split across arbitrary chunk boundaries,
// so the filter withholds any buffer tail that could be the start of a
// delimiter until the next chunk disambiguates it.
//
// The filter is a two-state machine: outside a block it forwards text and
// watches for "<think>"; inside it discards text and watches for
// "</think>". Whitespace immediately after a closing tag is dropped.
type ThinkFilter struct {
	buf         string
	inside      bool
	trimLeading bool
}

// Consume feeds one chunk into the filter. Visible text is passed to emit,
// possibly zero or multiple times. If emit returns an error, Consume stops
// and returns it.
func (f *ThinkFilter) Consume(chunk string, emit func(string) error) error {
	f.buf += chunk

	for {
		if f.inside {
			idx := strings.Index(f.buf, thinkClose)
			if idx < 0 {
				// Discard hidden content, keep only a possible partial close tag.
				f.buf = tailOverlap(f.buf, thinkClose)
				return nil
			}
			f.buf = f.buf[idx+len(thinkClose):]
			f.inside = false
			f.trimLeading = true
			continue
		}

		idx := strings.Index(f.buf, thinkOpen)
		if idx >= 0 {
			if err := f.emitVisible(f.buf[:idx], emit); err != nil {
				return err
			}
			f.buf = f.buf[idx+len(thinkOpen):]
			f.inside = true
			continue
		}

		keep := tailOverlap(f.buf, thinkOpen)
		out := f.buf[:len(f.buf)-len(keep)]
		f.buf = keep
		return f.emitVisible(out, emit)
	}
}

// Flush drains the filter at end of stream. Text withheld as a potential
// delimiter is emitted; the remainder of an unterminated think block is
// discarded.
func (f *ThinkFilter) Flush(emit func(string) error) error {
	if f.inside {
		f.buf = ""
		return nil
	}
	out := f.buf
	f.buf = ""
	return f.emitVisible(out, emit)
}

func (f *ThinkFilter) emitVisible(s string, emit func(string) error) error {
	if f.trimLeading {
		s = strings.TrimLeft(s, " \t\r\n")
		if s == "" {
			return nil
		}
		f.trimLeading = false
	}
	if s == "" {
		return nil
	}
	return emit(s)
}

// tailOverlap returns the longest suffix of s that is a proper prefix of
// delim.
func tailOverlap(s, delim string) string {
	max := len(delim) - 1
	if max > len(s) {
		max = len(s)
	}
	for n := max; n > 0; n-- {
		if strings.HasSuffix(s, delim[:n]) {
			return s[len(s)-n:]
		}
	}
	return ""
}
