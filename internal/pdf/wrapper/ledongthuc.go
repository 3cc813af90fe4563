package wrapper

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// infoKeys maps Info dictionary names to Metadata keys
var infoKeys = map[string]string{
	"Title":    MetaTitle,
	"Author":   MetaAuthor,
	"Subject":  MetaSubject,
	"Keywords": MetaKeywords,
	"Creator":  MetaCreator,
	"Producer": MetaProducer,
}

// LedongthucLibrary implements Library using ledongthuc/pdf
type LedongthucLibrary struct {
	config FactoryConfig
}

// NewLedongthucLibrary creates a new ledongthuc library wrapper
func NewLedongthucLibrary(config FactoryConfig) *LedongthucLibrary {
	return &LedongthucLibrary{config: config}
}

// OpenFile opens a PDF from a file path
func (l *LedongthucLibrary) OpenFile(path string) (Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &WrapperError{Library: LibraryLedongthuc, Op: "open_file", Err: err}
	}
	if info.IsDir() {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "open_file",
			Err:     fmt.Errorf("path is a directory, not a file: %s", path),
		}
	}
	if l.config.MaxFileSize > 0 && info.Size() > l.config.MaxFileSize {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "open_file",
			Err:     fmt.Errorf("file too large: %d bytes (max: %d bytes)", info.Size(), l.config.MaxFileSize),
		}
	}

	f, reader, err := openRecovered(path)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "open_file",
			Err:     fmt.Errorf("failed to open PDF: %w", err),
		}
	}

	return &LedongthucDocument{
		reader: reader,
		file:   f,
		debug:  l.config.DebugMode,
	}, nil
}

// GetLibraryType returns the library type
func (l *LedongthucLibrary) GetLibraryType() LibraryType {
	return LibraryLedongthuc
}

// openRecovered guards pdf.Open, which panics on some malformed trailers
func openRecovered(path string) (f *os.File, r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if f != nil {
				f.Close()
			}
			f, r, err = nil, nil, fmt.Errorf("malformed PDF: %v", rec)
		}
	}()
	return pdf.Open(path)
}

// LedongthucDocument implements Document using ledongthuc/pdf
type LedongthucDocument struct {
	reader   *pdf.Reader
	file     *os.File
	metadata Metadata
	closed   bool
	debug    bool
}

// PageCount returns the number of pages in the document
func (d *LedongthucDocument) PageCount() int {
	if d.closed {
		return 0
	}
	return d.reader.NumPage()
}

// Metadata returns the Info dictionary entries the document carries
func (d *LedongthucDocument) Metadata() Metadata {
	if d.metadata == nil {
		d.metadata = readMetadata(d.reader)
	}
	return d.metadata
}

// Page extracts the text and blocks of one page
func (d *LedongthucDocument) Page(pageNum int) (*Page, error) {
	if d.closed {
		return nil, &WrapperError{Library: LibraryLedongthuc, Op: "page", Err: ErrDocumentClosed.Err}
	}

	if pageNum < 1 || pageNum > d.reader.NumPage() {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "page",
			Err:     fmt.Errorf("%w %d (document has %d pages)", ErrInvalidPage.Err, pageNum, d.reader.NumPage()),
		}
	}

	return d.extractPage(pageNum)
}

func (d *LedongthucDocument) extractPage(pageNum int) (page *Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			page = nil
			err = &WrapperError{
				Library: LibraryLedongthuc,
				Op:      "page",
				Err:     fmt.Errorf("page %d: %v", pageNum, r),
			}
		}
	}()

	p := d.reader.Page(pageNum)
	if p.V.IsNull() {
		return &Page{Number: pageNum, Blocks: []Block{}}, nil
	}

	runs := p.Content().Text
	rows := groupRows(runs)
	if d.debug {
		log.Printf("ledongthuc: page %d has %d text runs in %d rows", pageNum, len(runs), len(rows))
	}
	return &Page{
		Number: pageNum,
		Text:   rowsText(rows),
		Blocks: groupBlocks(rows, readMediaBox(p.V)),
	}, nil
}

// Close closes the document
func (d *LedongthucDocument) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// readMetadata reads the trailer Info dictionary. Missing or unreadable
// entries are simply left out.
func readMetadata(r *pdf.Reader) (md Metadata) {
	md = make(Metadata)

	defer func() {
		// A broken Info dictionary must not fail the extraction
		_ = recover()
	}()

	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return md
	}

	for name, key := range infoKeys {
		v := info.Key(name)
		if v.IsNull() {
			continue
		}
		if s := strings.TrimSpace(v.Text()); s != "" {
			md[key] = s
		}
	}
	return md
}
