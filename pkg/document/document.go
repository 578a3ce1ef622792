// Package document implements the combined repository document format:
// a preamble, one delimited record per file, and a terminator sentinel.
//
//	<preamble>
//	----!@#$----
//	<relative/path>
//	<content>
//	--END--
package document

import (
	"fmt"
	"io"
)

const (
	// Delimiter opens every file record.
	Delimiter = "----!@#$----"
	// Terminator ends the repository content. It is written without a trailing newline.
	Terminator = "--END--"
	// DefaultPreamble describes the format when no preamble file is supplied.
	DefaultPreamble = "The following text is a Git repository with code. The structure of the text are sections that begin with " +
		Delimiter + ", followed by a single line containing the file path and file name, followed by a variable amount of lines containing the file contents. The text representing the Git repository ends when the symbols " +
		Terminator + " are encounted. Any further text beyond " + Terminator +
		" are meant to be interpreted as instructions using the aforementioned Git repository as context."
)

// FileRecord is one file of the combined document.
type FileRecord struct {
	Path    string // Path relative to the traversal root.
	Content string // Full text content.
}

// Writer writes the parts of a document to an underlying sink.
type Writer struct {
	w io.Writer
	n int64
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WritePreamble writes text followed by a newline.
func (dw *Writer) WritePreamble(text string) error {
	if err := dw.write(text, "\n"); err != nil {
		return fmt.Errorf("failed to write preamble: %w", err)
	}
	return nil
}

// WriteRecord writes the delimiter line, the path line and the content followed by a newline.
func (dw *Writer) WriteRecord(rec FileRecord) error {
	if err := dw.write(Delimiter, "\n", rec.Path, "\n", rec.Content, "\n"); err != nil {
		return fmt.Errorf("failed to write record %s: %w", rec.Path, err)
	}
	return nil
}

// WriteTerminator writes the terminator sentinel.
func (dw *Writer) WriteTerminator() error {
	if err := dw.write(Terminator); err != nil {
		return fmt.Errorf("failed to write terminator: %w", err)
	}
	return nil
}

// Written returns the number of bytes written so far.
func (dw *Writer) Written() int64 {
	return dw.n
}

func (dw *Writer) write(parts ...string) error {
	for _, part := range parts {
		if part == "" {
			continue
		}
		n, err := io.WriteString(dw.w, part)
		dw.n += int64(n)
		if err != nil {
			return err
		}
	}
	return nil
}
