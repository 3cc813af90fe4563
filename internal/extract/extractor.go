package extract

import (
	"fmt"
	"log"
	"strings"

	"github.com/a3tai/pdf-extract/internal/intelligence"
	pdferrors "github.com/a3tai/pdf-extract/internal/pdf/errors"
	"github.com/a3tai/pdf-extract/internal/pdf/wrapper"
)

// WriteMode controls when the result file is written
type WriteMode string

const (
	// WritePerPage re-segments and rewrites the output after every page.
	// A document without pages produces no output file.
	WritePerPage WriteMode = "per-page"
	// WriteFinal segments and writes once, after the last page.
	WriteFinal WriteMode = "final"
)

// ParseWriteMode converts a configuration string into a WriteMode
func ParseWriteMode(s string) (WriteMode, error) {
	switch WriteMode(s) {
	case WritePerPage, WriteFinal:
		return WriteMode(s), nil
	default:
		return "", fmt.Errorf("unknown write mode %q (must be %q or %q)", s, WritePerPage, WriteFinal)
	}
}

// ResultWriter persists a result snapshot
type ResultWriter interface {
	Write(path string, v any) error
}

// Prober checks a file's structure before it is opened for extraction
type Prober interface {
	Probe(path string) (*wrapper.ProbeResult, error)
}

// Extractor turns a PDF into a Result and writes it to disk
type Extractor struct {
	library wrapper.Library
	writer  ResultWriter
	prober  Prober
	mode    WriteMode
	logger  *log.Logger
	debug   bool
}

// Option configures an Extractor
type Option func(*Extractor)

// WithProber runs p before opening each document
func WithProber(p Prober) Option {
	return func(e *Extractor) {
		e.prober = p
	}
}

// WithWriteMode selects when snapshots are written
func WithWriteMode(mode WriteMode) Option {
	return func(e *Extractor) {
		e.mode = mode
	}
}

// WithLogger sets the logger used for progress and warnings
func WithLogger(l *log.Logger) Option {
	return func(e *Extractor) {
		e.logger = l
	}
}

// WithDebug enables per-page progress logging
func WithDebug(debug bool) Option {
	return func(e *Extractor) {
		e.debug = debug
	}
}

// New creates an Extractor reading through library and writing through writer
func New(library wrapper.Library, writer ResultWriter, opts ...Option) *Extractor {
	e := &Extractor{
		library: library,
		writer:  writer,
		mode:    WritePerPage,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads every page of pdfPath in order and writes the result to
// outputPath. A nil error means success. On failure the last snapshot that
// was written, if any, stays on disk.
func (e *Extractor) Extract(pdfPath, outputPath string) (*Result, error) {
	var probed *wrapper.ProbeResult
	if e.prober != nil {
		var err error
		probed, err = e.prober.Probe(pdfPath)
		if err != nil {
			return nil, pdferrors.DocumentOpen(pdfPath, err)
		}
	}

	doc, err := e.library.OpenFile(pdfPath)
	if err != nil {
		return nil, pdferrors.DocumentOpen(pdfPath, err)
	}
	defer func() {
		if err := doc.Close(); err != nil {
			e.logger.Printf("Failed to close %s: %v", pdfPath, err)
		}
	}()

	result := newResult(doc.PageCount(), doc.Metadata())
	if probed != nil && probed.PageCount != result.PageCount {
		e.logger.Printf("Warning: %s page count mismatch (probe %d, reader %d)",
			pdfPath, probed.PageCount, result.PageCount)
	}

	var fullText strings.Builder
	for pageNum := 1; pageNum <= result.PageCount; pageNum++ {
		page, err := doc.Page(pageNum)
		if err != nil {
			return nil, pdferrors.Extraction(pdfPath, pageNum, err)
		}

		fullText.WriteString(page.Text)
		result.Pages = append(result.Pages, pageRecord(pageNum, page))
		result.Text = fullText.String()

		if e.mode == WritePerPage {
			result.Sections = intelligence.Segment(result.Text)
			if err := e.writer.Write(outputPath, result); err != nil {
				return nil, pdferrors.Output(outputPath, err)
			}
		}

		if e.debug {
			e.logger.Printf("Page %d/%d: %d chars, %d blocks, %d sections so far",
				pageNum, result.PageCount, len(page.Text), len(page.Blocks), len(result.Sections))
		}
	}

	switch {
	case e.mode == WriteFinal:
		result.Sections = intelligence.Segment(result.Text)
		if err := e.writer.Write(outputPath, result); err != nil {
			return nil, pdferrors.Output(outputPath, err)
		}
	case result.PageCount == 0:
		e.logger.Printf("Warning: %s has no pages; no output written to %s", pdfPath, outputPath)
	}

	return result, nil
}

func pageRecord(pageNum int, p *wrapper.Page) Page {
	blocks := make([]Block, len(p.Blocks))
	for i, b := range p.Blocks {
		blocks[i] = Block{Text: b.Text, X0: b.X0, Y0: b.Y0, X1: b.X1, Y1: b.Y1}
	}
	return Page{PageNum: pageNum, Text: p.Text, Blocks: blocks}
}
