// Package wrappertest builds small, well-formed PDF files for tests.
package wrappertest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Line is one line of text drawn with the built-in Helvetica font
type Line struct {
	X, Y float64
	Size float64
	Text string
}

// Page is a single US Letter page
type Page struct {
	Lines []Line
}

// Doc describes the document to build
type Doc struct {
	Pages []Page
	// Info entries are written to the trailer Info dictionary, e.g. "Title".
	Info map[string]string
}

// Build renders doc as PDF bytes with a correct cross-reference table
func Build(doc Doc) []byte {
	var objects []string

	// 1: catalog, 2: page tree, 3: font, then page/content pairs, then info
	pageRefs := make([]string, len(doc.Pages))
	for i := range doc.Pages {
		pageRefs[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>",
			strings.Join(pageRefs, " "), len(doc.Pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)

	for i, page := range doc.Pages {
		contentNum := 5 + 2*i
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", contentNum),
			contentStream(page),
		)
	}

	infoNum := 0
	if len(doc.Info) > 0 {
		keys := make([]string, 0, len(doc.Info))
		for k := range doc.Info {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sb strings.Builder
		sb.WriteString("<<")
		for _, k := range keys {
			fmt.Fprintf(&sb, " /%s (%s)", k, escape(doc.Info[k]))
		}
		sb.WriteString(" >>")
		objects = append(objects, sb.String())
		infoNum = len(objects)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	buf.WriteString("trailer\n")
	if infoNum > 0 {
		fmt.Fprintf(&buf, "<< /Size %d /Root 1 0 R /Info %d 0 R >>\n", len(objects)+1, infoNum)
	} else {
		fmt.Fprintf(&buf, "<< /Size %d /Root 1 0 R >>\n", len(objects)+1)
	}
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)

	return buf.Bytes()
}

// Write builds doc into dir/name and returns the file path
func Write(t testing.TB, dir, name string, doc Doc) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(doc), 0o644); err != nil {
		t.Fatalf("failed to write test PDF: %v", err)
	}
	return path
}

func contentStream(page Page) string {
	var sb strings.Builder
	for _, line := range page.Lines {
		size := line.Size
		if size == 0 {
			size = 12
		}
		fmt.Fprintf(&sb, "BT /F1 %.2f Tf %.2f %.2f Td (%s) Tj ET\n", size, line.X, line.Y, escape(line.Text))
	}
	data := sb.String()
	return fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(data), data)
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
