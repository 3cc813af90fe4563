package wrapper

import (
	"fmt"
)

// Library opens documents through a concrete PDF engine
type Library interface {
	OpenFile(path string) (Document, error)
	GetLibraryType() LibraryType
}

// Document is an open PDF handle. It is owned by a single extraction run and
// must be closed when the run ends.
type Document interface {
	PageCount() int
	Metadata() Metadata
	// Page returns the text and blocks of a 1-based page number.
	Page(pageNum int) (*Page, error)
	Close() error
}

// LibraryType represents the underlying PDF library being used
type LibraryType string

const (
	LibraryPDFCPU     LibraryType = "pdfcpu"
	LibraryLedongthuc LibraryType = "ledongthuc"
	LibraryAuto       LibraryType = "auto" // Automatically select best library
)

// Metadata keys recognized in the document Info dictionary
const (
	MetaTitle    = "title"
	MetaAuthor   = "author"
	MetaSubject  = "subject"
	MetaKeywords = "keywords"
	MetaCreator  = "creator"
	MetaProducer = "producer"
)

// Metadata maps lowercase Info dictionary keys to their values
type Metadata map[string]string

// Get returns the value stored under key, or "" when it is absent
func (m Metadata) Get(key string) string {
	if m == nil {
		return ""
	}
	return m[key]
}

// Page is one extracted page
type Page struct {
	Number int
	Text   string
	Blocks []Block
}

// Block is a positioned run of text. Coordinates use a top-left origin, so y
// grows downward; X0 <= X1 and Y0 <= Y1.
type Block struct {
	Text string
	X0   float64
	Y0   float64
	X1   float64
	Y1   float64
}

// BlockFromTuple converts an engine block tuple (x0, y0, x1, y1, text, ...)
// into a Block. Elements past the fifth are ignored.
func BlockFromTuple(tuple []any) (Block, error) {
	if len(tuple) < 5 {
		return Block{}, fmt.Errorf("block tuple has %d elements, need at least 5", len(tuple))
	}

	var coords [4]float64
	for i := 0; i < 4; i++ {
		v, err := toFloat(tuple[i])
		if err != nil {
			return Block{}, fmt.Errorf("block tuple element %d: %w", i, err)
		}
		coords[i] = v
	}

	text, ok := tuple[4].(string)
	if !ok {
		return Block{}, fmt.Errorf("block tuple element 4 is %T, want string", tuple[4])
	}

	return Block{Text: text, X0: coords[0], Y0: coords[1], X1: coords[2], Y1: coords[3]}, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("unsupported coordinate type %T", v)
	}
}

// WrapperError reports a failure inside a PDF engine adapter
type WrapperError struct {
	Library LibraryType `json:"library"`
	Op      string      `json:"operation"`
	Err     error       `json:"error"`
}

func (e *WrapperError) Error() string {
	return fmt.Sprintf("PDF %s library error in %s: %v", e.Library, e.Op, e.Err)
}

func (e *WrapperError) Unwrap() error {
	return e.Err
}

// Common error variables
var (
	ErrUnsupportedLibrary = &WrapperError{Op: "factory", Err: fmt.Errorf("unsupported library type")}
	ErrDocumentClosed     = &WrapperError{Op: "document", Err: fmt.Errorf("document is closed")}
	ErrInvalidPage        = &WrapperError{Op: "page", Err: fmt.Errorf("invalid page number")}
	ErrEncrypted          = &WrapperError{Op: "security", Err: fmt.Errorf("encrypted documents are not supported")}
)
