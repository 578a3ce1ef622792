// File: pkg/document/parse.go
package document

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoTerminator is returned by Parse when the terminator line is missing.
var ErrNoTerminator = errors.New("document has no terminator")

// Document is the parsed form of a combined document.
type Document struct {
	Preamble string       // Preamble text without its final newline.
	Records  []FileRecord // Records in document order.
	Trailer  string       // Text after the terminator, conventionally instructions.
}

// Parse reads a combined document. Content that itself contains a delimiter
// line or a terminator at the start of a line cannot be recovered exactly.
func Parse(r io.Reader) (Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read document: %w", err)
	}
	text := string(raw)

	end := terminatorIndex(text)
	if end < 0 {
		return Document{}, ErrNoTerminator
	}

	doc := Document{Trailer: text[end+len(Terminator):]}
	body := text[:end]
	if strings.HasPrefix(body, Delimiter+"\n") {
		body = "\n" + body
	}

	parts := strings.Split(body, "\n"+Delimiter+"\n")
	doc.Preamble = parts[0]
	if len(parts) == 1 {
		doc.Preamble = strings.TrimSuffix(doc.Preamble, "\n")
		return doc, nil
	}

	for i, part := range parts[1:] {
		if i == len(parts)-2 {
			part = strings.TrimSuffix(part, "\n")
		}
		path, content, found := strings.Cut(part, "\n")
		if !found {
			return Document{}, fmt.Errorf("record %d has no path line", i+1)
		}
		doc.Records = append(doc.Records, FileRecord{Path: path, Content: content})
	}
	return doc, nil
}

// terminatorIndex finds the first terminator that starts a line.
func terminatorIndex(text string) int {
	for start := 0; start <= len(text); {
		i := strings.Index(text[start:], Terminator)
		if i < 0 {
			return -1
		}
		i += start
		if i == 0 || text[i-1] == '\n' {
			return i
		}
		start = i + 1
	}
	return -1
}
