package document

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct {
	after int
}

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.after <= 0 {
		return 0, errors.New("disk full")
	}
	f.after--
	return len(p), nil
}

func render(t *testing.T, preamble string, records []FileRecord) string {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WritePreamble(preamble))
	for _, rec := range records {
		require.NoError(t, w.WriteRecord(rec))
	}
	require.NoError(t, w.WriteTerminator())
	assert.Equal(t, int64(buf.Len()), w.Written())
	return buf.String()
}

func TestWriterFormat(t *testing.T) {
	got := render(t, "intro", []FileRecord{
		{Path: "a.txt", Content: "hello"},
		{Path: "sub/c.txt", Content: "world"},
	})

	want := "intro\n" +
		"----!@#$----\na.txt\nhello\n" +
		"----!@#$----\nsub/c.txt\nworld\n" +
		"--END--"
	assert.Equal(t, want, got)
}

func TestWriterEmptyDocument(t *testing.T) {
	got := render(t, DefaultPreamble, nil)

	assert.Equal(t, DefaultPreamble+"\n--END--", got)
	assert.NotContains(t, got, Delimiter+"\n")
}

func TestDefaultPreambleDescribesFormat(t *testing.T) {
	assert.Contains(t, DefaultPreamble, Delimiter)
	assert.Contains(t, DefaultPreamble, Terminator)
	assert.Len(t, Delimiter, 12)
	assert.Len(t, Terminator, 7)
}

func TestRoundTrip(t *testing.T) {
	records := []FileRecord{
		{Path: "a.txt", Content: "hello"},
		{Path: "trailing.txt", Content: "line one\nline two\n"},
		{Path: "blank-lines.md", Content: "\n\nmiddle\n\n"},
		{Path: "dir/deep/file.go", Content: "package deep\n\nfunc X() {}"},
		{Path: "last.txt", Content: "ends with newline\n"},
	}

	for _, preamble := range []string{"custom preamble\nover two lines", DefaultPreamble, ""} {
		doc, err := Parse(strings.NewReader(render(t, preamble, records)))
		require.NoError(t, err)

		assert.Equal(t, preamble, doc.Preamble)
		assert.Equal(t, records, doc.Records)
		assert.Empty(t, doc.Trailer)
	}
}

func TestParseWithoutRecords(t *testing.T) {
	doc, err := Parse(strings.NewReader(render(t, "just the preamble", nil)))
	require.NoError(t, err)

	assert.Equal(t, "just the preamble", doc.Preamble)
	assert.Empty(t, doc.Records)
}

func TestParseTrailer(t *testing.T) {
	text := render(t, "p", []FileRecord{{Path: "a.txt", Content: "x"}}) + "\nExplain a.txt"

	doc, err := Parse(strings.NewReader(text))
	require.NoError(t, err)

	assert.Equal(t, "\nExplain a.txt", doc.Trailer)
	require.Len(t, doc.Records, 1)
	assert.Equal(t, "x", doc.Records[0].Content)
}

func TestParseNoTerminator(t *testing.T) {
	_, err := Parse(strings.NewReader("p\n----!@#$----\na.txt\nx\n"))
	assert.ErrorIs(t, err, ErrNoTerminator)
}

func TestParseIgnoresMidLineTerminator(t *testing.T) {
	text := render(t, "p", []FileRecord{{Path: "a.txt", Content: "say --END-- here"}})

	doc, err := Parse(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, doc.Records, 1)
	assert.Equal(t, "say --END-- here", doc.Records[0].Content)
}

func TestWriterPropagatesErrors(t *testing.T) {
	w := NewWriter(&failingWriter{after: 1})

	require.NoError(t, w.WritePreamble(""))
	err := w.WriteRecord(FileRecord{Path: "a.txt", Content: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.txt")
	assert.Error(t, w.WriteTerminator())
}
