package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-extract/internal/intelligence"
	"github.com/a3tai/pdf-extract/internal/output"
	pdferrors "github.com/a3tai/pdf-extract/internal/pdf/errors"
	"github.com/a3tai/pdf-extract/internal/pdf/wrapper"
	"github.com/a3tai/pdf-extract/internal/pdf/wrapper/wrappertest"
)

type fakeLibrary struct {
	doc     *fakeDocument
	openErr error
	opened  []string
}

func (l *fakeLibrary) OpenFile(path string) (wrapper.Document, error) {
	l.opened = append(l.opened, path)
	if l.openErr != nil {
		return nil, l.openErr
	}
	return l.doc, nil
}

func (l *fakeLibrary) GetLibraryType() wrapper.LibraryType {
	return wrapper.LibraryType("fake")
}

type fakeDocument struct {
	pages    []*wrapper.Page
	metadata wrapper.Metadata
	failPage int
	closed   bool
}

func (d *fakeDocument) PageCount() int             { return len(d.pages) }
func (d *fakeDocument) Metadata() wrapper.Metadata { return d.metadata }
func (d *fakeDocument) Close() error               { d.closed = true; return nil }

func (d *fakeDocument) Page(n int) (*wrapper.Page, error) {
	if n == d.failPage {
		return nil, errors.New("content stream is corrupt")
	}
	return d.pages[n-1], nil
}

// recordingWriter keeps a deep copy of every snapshot it is asked to write
type recordingWriter struct {
	snapshots []Result
	failAt    int
}

func (w *recordingWriter) Write(_ string, v any) error {
	if w.failAt > 0 && len(w.snapshots)+1 == w.failAt {
		return errors.New("disk full")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var snap Result
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	w.snapshots = append(w.snapshots, snap)
	return nil
}

type fakeProber struct {
	result *wrapper.ProbeResult
	err    error
}

func (p *fakeProber) Probe(string) (*wrapper.ProbeResult, error) {
	return p.result, p.err
}

func twoPageDocument() *fakeDocument {
	return &fakeDocument{
		pages: []*wrapper.Page{
			{
				Number: 1,
				Text:   "Header text\nIntroduction\nThis is intro.\n",
				Blocks: []wrapper.Block{
					{Text: "Header text\n", X0: 72, Y0: 60, X1: 150, Y1: 72},
					{Text: "Introduction\nThis is intro.\n", X0: 72, Y0: 90, X1: 180, Y1: 116},
				},
			},
			{
				Number: 2,
				Text:   "Conclusion\nDone.\n",
				Blocks: []wrapper.Block{
					{Text: "Conclusion\nDone.\n", X0: 72, Y0: 60, X1: 140, Y1: 86},
				},
			},
		},
		metadata: wrapper.Metadata{
			wrapper.MetaTitle:   "A Study",
			wrapper.MetaAuthor:  "Someone",
			wrapper.MetaSubject: "Things",
		},
	}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestParseWriteMode(t *testing.T) {
	mode, err := ParseWriteMode("per-page")
	require.NoError(t, err)
	assert.Equal(t, WritePerPage, mode)

	mode, err = ParseWriteMode("final")
	require.NoError(t, err)
	assert.Equal(t, WriteFinal, mode)

	_, err = ParseWriteMode("sometimes")
	assert.Error(t, err)
}

func TestExtractor_TwoPageDocument(t *testing.T) {
	doc := twoPageDocument()
	writer := &recordingWriter{}
	e := New(&fakeLibrary{doc: doc}, writer, WithLogger(quietLogger()))

	result, err := e.Extract("paper.pdf", "paper.json")
	require.NoError(t, err)

	assert.Equal(t, 2, result.PageCount)
	assert.Equal(t, "Header text\nIntroduction\nThis is intro.\nConclusion\nDone.\n", result.Text)
	assert.Equal(t, []intelligence.Section{
		{Name: "Header", Content: "Header text\n"},
		{Name: "Introduction", Content: "This is intro.\n"},
		{Name: "Conclusion", Content: "Done.\n"},
	}, result.Sections)
	assert.Equal(t, Metadata{Title: "A Study", Author: "Someone", Subject: "Things", Keywords: ""}, result.Metadata)

	require.Len(t, result.Pages, 2)
	assert.Equal(t, 1, result.Pages[0].PageNum)
	assert.Equal(t, 2, result.Pages[1].PageNum)
	assert.Equal(t, Block{Text: "Conclusion\nDone.\n", X0: 72, Y0: 60, X1: 140, Y1: 86}, result.Pages[1].Blocks[0])

	assert.True(t, doc.closed, "document is released after the run")
}

func TestExtractor_WritesSnapshotPerPage(t *testing.T) {
	writer := &recordingWriter{}
	e := New(&fakeLibrary{doc: twoPageDocument()}, writer, WithLogger(quietLogger()))

	_, err := e.Extract("paper.pdf", "paper.json")
	require.NoError(t, err)

	require.Len(t, writer.snapshots, 2)

	first := writer.snapshots[0]
	assert.Len(t, first.Pages, 1)
	assert.Equal(t, 2, first.PageCount)
	assert.Equal(t, "Header text\nIntroduction\nThis is intro.\n", first.Text)
	assert.Equal(t, []intelligence.Section{
		{Name: "Header", Content: "Header text\n"},
		{Name: "Introduction", Content: "This is intro.\n"},
	}, first.Sections)

	second := writer.snapshots[1]
	assert.Len(t, second.Pages, 2)
	assert.Len(t, second.Sections, 3)
}

func TestExtractor_FinalWriteMode(t *testing.T) {
	writer := &recordingWriter{}
	e := New(&fakeLibrary{doc: twoPageDocument()}, writer,
		WithWriteMode(WriteFinal), WithLogger(quietLogger()))

	result, err := e.Extract("paper.pdf", "paper.json")
	require.NoError(t, err)

	require.Len(t, writer.snapshots, 1)
	assert.Equal(t, *result, writer.snapshots[0])
	assert.Len(t, result.Sections, 3)
}

// A document without pages never reaches the write inside the page loop, so
// per-page mode reports success while leaving no output file behind. This is
// the expected, if surprising, behavior.
func TestExtractor_ZeroPageDocumentWritesNothing(t *testing.T) {
	var logs bytes.Buffer
	writer := &recordingWriter{}
	doc := &fakeDocument{metadata: wrapper.Metadata{wrapper.MetaTitle: "Empty"}}
	e := New(&fakeLibrary{doc: doc}, writer, WithLogger(log.New(&logs, "", 0)))

	result, err := e.Extract("empty.pdf", "empty.json")
	require.NoError(t, err)
	assert.Equal(t, 0, result.PageCount)
	assert.Empty(t, writer.snapshots)
	assert.Contains(t, logs.String(), "no output written")
}

func TestExtractor_ZeroPageDocumentFinalMode(t *testing.T) {
	writer := &recordingWriter{}
	doc := &fakeDocument{metadata: wrapper.Metadata{wrapper.MetaTitle: "Empty"}}
	e := New(&fakeLibrary{doc: doc}, writer, WithWriteMode(WriteFinal), WithLogger(quietLogger()))

	_, err := e.Extract("empty.pdf", "empty.json")
	require.NoError(t, err)
	require.Len(t, writer.snapshots, 1)
	assert.Equal(t, "Empty", writer.snapshots[0].Metadata.Title)
	assert.Empty(t, writer.snapshots[0].Pages)
}

func TestExtractor_OpenFailure(t *testing.T) {
	writer := &recordingWriter{}
	lib := &fakeLibrary{openErr: errors.New("not a PDF")}
	e := New(lib, writer, WithLogger(quietLogger()))

	result, err := e.Extract("broken.pdf", "broken.json")
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, pdferrors.IsType(err, pdferrors.ErrorTypeDocumentOpen))
	assert.Empty(t, writer.snapshots)
}

func TestExtractor_ProbeFailureStopsBeforeOpen(t *testing.T) {
	lib := &fakeLibrary{doc: twoPageDocument()}
	writer := &recordingWriter{}
	e := New(lib, writer,
		WithProber(&fakeProber{err: errors.New("corrupt xref")}),
		WithLogger(quietLogger()))

	_, err := e.Extract("broken.pdf", "broken.json")
	require.Error(t, err)
	assert.True(t, pdferrors.IsType(err, pdferrors.ErrorTypeDocumentOpen))
	assert.Empty(t, lib.opened)
	assert.Empty(t, writer.snapshots)
}

func TestExtractor_ProbePageCountMismatchIsLogged(t *testing.T) {
	var logs bytes.Buffer
	e := New(&fakeLibrary{doc: twoPageDocument()}, &recordingWriter{},
		WithProber(&fakeProber{result: &wrapper.ProbeResult{PageCount: 3}}),
		WithLogger(log.New(&logs, "", 0)))

	_, err := e.Extract("paper.pdf", "paper.json")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "page count mismatch")
}

func TestExtractor_PageFailureKeepsEarlierSnapshot(t *testing.T) {
	doc := twoPageDocument()
	doc.failPage = 2
	writer := &recordingWriter{}
	e := New(&fakeLibrary{doc: doc}, writer, WithLogger(quietLogger()))

	result, err := e.Extract("paper.pdf", "paper.json")
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, pdferrors.IsType(err, pdferrors.ErrorTypeExtraction))

	var ee *pdferrors.ExtractError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 2, ee.Page)

	require.Len(t, writer.snapshots, 1, "the page 1 snapshot remains")
	assert.True(t, doc.closed)
}

func TestExtractor_WriteFailure(t *testing.T) {
	writer := &recordingWriter{failAt: 1}
	e := New(&fakeLibrary{doc: twoPageDocument()}, writer, WithLogger(quietLogger()))

	_, err := e.Extract("paper.pdf", "paper.json")
	require.Error(t, err)
	assert.True(t, pdferrors.IsType(err, pdferrors.ErrorTypeOutput))
}

func TestExtractor_DebugLogging(t *testing.T) {
	var logs bytes.Buffer
	e := New(&fakeLibrary{doc: twoPageDocument()}, &recordingWriter{},
		WithDebug(true), WithLogger(log.New(&logs, "", 0)))

	_, err := e.Extract("paper.pdf", "paper.json")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "Page 1/2")
	assert.Contains(t, logs.String(), "Page 2/2")
}

func TestExtractor_MetadataDefaultsInOutputFile(t *testing.T) {
	doc := twoPageDocument()
	writer, err := output.NewWriter(true)
	require.NoError(t, err)

	outPath := filepath.Join(t.TempDir(), "paper.json")
	e := New(&fakeLibrary{doc: doc}, writer, WithLogger(quietLogger()))
	_, err = e.Extract("paper.pdf", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	md, ok := raw["metadata"].(map[string]any)
	require.True(t, ok)
	keywords, present := md["keywords"]
	assert.True(t, present, "absent keywords are written as an empty string")
	assert.Equal(t, "", keywords)
}

func TestExtractor_EndToEndWithLedongthuc(t *testing.T) {
	dir := t.TempDir()
	pdfPath := wrappertest.Write(t, dir, "paper.pdf", wrappertest.Doc{
		Pages: []wrappertest.Page{
			{Lines: []wrappertest.Line{
				{X: 72, Y: 720, Text: "Header text"},
				{X: 72, Y: 690, Text: "Introduction"},
				{X: 72, Y: 660, Text: "This is intro."},
			}},
			{Lines: []wrappertest.Line{
				{X: 72, Y: 720, Text: "Conclusion"},
				{X: 72, Y: 690, Text: "Done."},
			}},
		},
		Info: map[string]string{"Title": "A Study"},
	})
	outPath := filepath.Join(dir, "paper.json")

	factory := wrapper.NewPDFLibraryFactory()
	lib, err := factory.CreateDefault()
	require.NoError(t, err)
	writer, err := output.NewWriter(true)
	require.NoError(t, err)

	e := New(lib, writer, WithProber(factory.CreateProbe()), WithLogger(quietLogger()))
	result, err := e.Extract(pdfPath, outPath)
	require.NoError(t, err)

	assert.Equal(t, 2, result.PageCount)
	assert.Equal(t, "A Study", result.Metadata.Title)
	assert.Equal(t, []intelligence.Section{
		{Name: "Header", Content: "Header text\n"},
		{Name: "Introduction", Content: "This is intro.\n"},
		{Name: "Conclusion", Content: "Done.\n"},
	}, result.Sections)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var onDisk Result
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, *result, onDisk)
}
