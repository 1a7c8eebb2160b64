// FILE: lixenwraith/config/hocon/tokenizer.go
package hocon

// Tokenizer scans a text buffer with one token of lookahead. Next reports the
// token at the cursor without moving it; Consume advances past it.
type Tokenizer struct {
	rules   []rule
	content string
	offset  int
	pending int // offset after the last successful match, -1 when none
}

// NewTokenizer creates a tokenizer over content using the standard lexicon.
func NewTokenizer(content string) *Tokenizer {
	return &Tokenizer{
		rules:   lexicon,
		content: content,
		pending: -1,
	}
}

// Offset returns the current cursor position in the buffer.
func (t *Tokenizer) Offset() int {
	return t.offset
}

// Include splices text into the buffer at the cursor, surrounded by line
// breaks, so it is scanned next.
func (t *Tokenizer) Include(text string) {
	t.content = t.content[:t.offset] + "\n" + text + "\n" + t.content[t.offset:]
	t.pending = -1
}

// Next skips any ignorable tokens, then returns the first requested token found
// at the cursor. It returns false at the end of input or when no requested rule
// matches.
func (t *Tokenizer) Next(requested, ignore TokenSet) (Token, bool) {
	t.pending = -1

	if !t.skip(ignore) {
		return Token{Type: TokenEOF}, false
	}

	for _, r := range t.rules {
		if !requested.Has(r.typ) {
			continue
		}
		if value, next, ok := r.match(t.content, t.offset); ok {
			t.pending = next
			return Token{Type: r.typ, Value: value}, true
		}
	}

	return Token{Type: TokenUnknown}, false
}

// Consume moves the cursor past the token returned by the last successful Next.
func (t *Tokenizer) Consume() {
	if t.pending >= 0 {
		t.offset = t.pending
		t.pending = -1
	}
}

// AtEnd skips ignorable tokens and reports whether the input is exhausted.
func (t *Tokenizer) AtEnd(ignore TokenSet) bool {
	t.pending = -1
	return !t.skip(ignore)
}

// Peek reports the type of whatever token sits at the cursor, trying every rule
// in catalog order. It does not skip or consume anything.
func (t *Tokenizer) Peek() TokenType {
	if t.eof() {
		return TokenEOF
	}
	for _, r := range t.rules {
		if _, _, ok := r.match(t.content, t.offset); ok {
			return r.typ
		}
	}
	return TokenUnknown
}

// skip consumes ignorable tokens until none match. It returns false when the
// end of input is reached.
func (t *Tokenizer) skip(ignore TokenSet) bool {
	for {
		if t.eof() {
			return false
		}

		matched := false
		for _, r := range t.rules {
			if !ignore.Has(r.typ) {
				continue
			}
			if _, next, ok := r.match(t.content, t.offset); ok && next > t.offset {
				t.offset = next
				matched = true
				break
			}
		}

		if !matched {
			return true
		}
	}
}

func (t *Tokenizer) eof() bool {
	return t.offset >= len(t.content)
}
