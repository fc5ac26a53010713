// Package textextract decodes PDF files into ordered page text.
package textextract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	ErrNotPDF  = errors.New("not a PDF file")
	ErrNoPages = errors.New("PDF has no pages")
)

// Page is the text of one page. Number is 1-based and pages are returned in
// document order. Text is empty for pages without a text layer.
type Page struct {
	Number int
	Text   string
}

// ExtractPages decodes every page of the PDF in data. Malformed files return
// an error; the decoder's panics are converted to errors too.
func ExtractPages(data io.ReaderAt, size int64) (pages []Page, err error) {
	header := make([]byte, 5)
	if _, err := data.ReadAt(header, 0); err != nil || !bytes.Equal(header, []byte("%PDF-")) {
		return nil, ErrNotPDF
	}

	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("decode PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	n := reader.NumPage()
	if n == 0 {
		return nil, ErrNoPages
	}

	pages = make([]Page, 0, n)
	for i := 1; i <= n; i++ {
		p := reader.Page(i)
		page := Page{Number: i}
		if !p.V.IsNull() {
			text, err := p.GetPlainText(nil)
			if err != nil {
				return nil, fmt.Errorf("read page %d: %w", i, err)
			}
			page.Text = normalize(text)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
