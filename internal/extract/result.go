package extract

import (
	"github.com/a3tai/pdf-extract/internal/intelligence"
	"github.com/a3tai/pdf-extract/internal/pdf/wrapper"
)

// Result is the document written to the output file
type Result struct {
	Text      string                 `json:"text"`
	PageCount int                    `json:"pageCount"`
	Metadata  Metadata               `json:"metadata"`
	Pages     []Page                 `json:"pages"`
	Sections  []intelligence.Section `json:"sections"`
}

// Metadata holds the recognized Info dictionary entries. Absent entries are
// empty strings, never omitted.
type Metadata struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Subject  string `json:"subject"`
	Keywords string `json:"keywords"`
}

// Page is the per-page record of a Result
type Page struct {
	PageNum int     `json:"pageNum"`
	Text    string  `json:"text"`
	Blocks  []Block `json:"blocks"`
}

// Block is a positioned run of text, y growing downward
type Block struct {
	Text string  `json:"text"`
	X0   float64 `json:"x0"`
	Y0   float64 `json:"y0"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
}

// newResult seeds a result from the document's page count and metadata
func newResult(pageCount int, md wrapper.Metadata) *Result {
	return &Result{
		PageCount: pageCount,
		Metadata: Metadata{
			Title:    md.Get(wrapper.MetaTitle),
			Author:   md.Get(wrapper.MetaAuthor),
			Subject:  md.Get(wrapper.MetaSubject),
			Keywords: md.Get(wrapper.MetaKeywords),
		},
		Pages:    make([]Page, 0, max(pageCount, 0)),
		Sections: make([]intelligence.Section, 0),
	}
}
