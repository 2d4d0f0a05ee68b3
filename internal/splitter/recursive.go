package splitter

import (
	"strings"
	"sync"
)

// RecursiveSplitter splits text into segments of at most chunkSize runes,
// preferring language-aware separators. Separators stay attached to the
// segment they open, so the concatenation of all segments reproduces the
// input exactly.
type RecursiveSplitter struct {
	separators []string
	chunkSize  int
}

func NewRecursiveSplitter(language string, chunkSize int) *RecursiveSplitter {
	return &RecursiveSplitter{
		separators: separatorsFor(language),
		chunkSize:  chunkSize,
	}
}

// Split returns the ordered segments of text. Empty input yields no
// segments.
func (s *RecursiveSplitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *RecursiveSplitter) split(text string, separators []string) []string {
	sep, rest := pickSeparator(text, separators)
	if sep == "" {
		return splitRunes(text, s.chunkSize)
	}

	pieces := splitKeepSeparator(text, sep)

	var out []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			out = append(out, current.String())
			current.Reset()
		}
	}

	for _, piece := range pieces {
		n := len([]rune(piece))
		switch {
		case n > s.chunkSize:
			// Too big on its own: flush what we have and go one
			// separator finer.
			flush()
			out = append(out, s.split(piece, rest)...)
		case len([]rune(current.String()))+n > s.chunkSize:
			flush()
			current.WriteString(piece)
		default:
			current.WriteString(piece)
		}
	}
	flush()
	return out
}

// pickSeparator returns the first separator present in text and the
// remaining, finer separators after it. An empty separator means fall back
// to rune-level splitting.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}

// splitKeepSeparator splits text on sep, attaching each separator to the
// piece it introduces.
func splitKeepSeparator(text, sep string) []string {
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, part := range parts {
		if i > 0 {
			part = sep + part
		}
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitRunes(text string, size int) []string {
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

// splitterCache keeps one splitter per language, matching how splitters are
// reused across documents of a crawl run.
type splitterCache struct {
	mu        sync.Mutex
	splitters map[string]*RecursiveSplitter
	chunkSize int
}

func newSplitterCache(chunkSize int) *splitterCache {
	return &splitterCache{
		splitters: make(map[string]*RecursiveSplitter),
		chunkSize: chunkSize,
	}
}

func (c *splitterCache) forLanguage(language string) *RecursiveSplitter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sp, ok := c.splitters[language]; ok {
		return sp
	}
	sp := NewRecursiveSplitter(language, c.chunkSize)
	c.splitters[language] = sp
	return sp
}
