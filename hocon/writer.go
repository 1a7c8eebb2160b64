// FILE: lixenwraith/config/hocon/writer.go
package hocon

import (
	"io"
	"slices"
	"strings"
)

// Write renders entries as nested configuration text. header, when not empty,
// is emitted first with every line commented out.
func Write(w io.Writer, entries []Entry, header string) error {
	_, err := io.WriteString(w, WriteString(entries, header))
	return err
}

// WriteString renders entries as nested configuration text. Entries are sorted
// by path, so the output does not depend on input order.
func WriteString(entries []Entry, header string) string {
	var b strings.Builder

	for _, line := range strings.FieldsFunc(header, func(r rune) bool { return r == '\n' || r == '\r' }) {
		b.WriteString("# ")
		b.WriteString(line)
		b.WriteByte('\n')
	}

	sorted := slices.Clone(entries)
	sortEntries(sorted)

	var blocks []string
	closeBlocks := func(path string) bool {
		closed := false
		for len(blocks) > 0 && !strings.HasPrefix(path, blocks[len(blocks)-1]+".") {
			blocks = blocks[:len(blocks)-1]
			indent(&b, len(blocks))
			b.WriteString("}\n")
			closed = true
		}
		return closed
	}
	segment := func(path string) string {
		if len(blocks) == 0 {
			return path
		}
		return strings.TrimPrefix(path, blocks[len(blocks)-1]+".")
	}

	for _, entry := range sorted {
		if entry.IsNode() {
			closeBlocks(entry.Path)
			b.WriteByte('\n')
			indent(&b, len(blocks))
			b.WriteString(segment(entry.Path))
			b.WriteString(" {\n")
			blocks = append(blocks, entry.Path)
			continue
		}

		if closeBlocks(entry.Path) || len(blocks) == 0 {
			b.WriteByte('\n')
		}
		indent(&b, len(blocks))
		b.WriteString(segment(entry.Path))
		b.WriteString(" : ")
		writeValue(&b, entry.Value)
		b.WriteByte('\n')
	}

	closeBlocks("")
	return b.String()
}

// EntriesFromMap converts a flat path map into entries.
func EntriesFromMap(flat map[string]any) []Entry {
	entries := make([]Entry, 0, len(flat))
	for path, value := range flat {
		entries = append(entries, Entry{Path: path, Value: value})
	}
	sortEntries(entries)
	return entries
}

func indent(b *strings.Builder, depth int) {
	for range depth {
		b.WriteByte('\t')
	}
}
