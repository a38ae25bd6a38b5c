package ingest

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

type docType string

const (
	docPDF  docType = "PDF"
	docText docType = "TEXT"
	docErr  docType = "ERROR"
)

// fragments closer than this on the vertical axis belong to one line
const lineTolerance = 2.0

func getDocType(docPath string) docType {
	switch strings.ToLower(filepath.Ext(docPath)) {
	case ".pdf":
		return docPDF
	case ".docx", ".txt", ".rtf", ".odt":
		return docText
	default:
		return docErr
	}
}

func extractText(path string, contentType docType) ([]rawPage, error) {
	switch contentType {
	case docPDF:
		return extractPDF(path)
	case docText:
		return extractPlainDoc(path)
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

func extractPDF(path string) ([]rawPage, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []rawPage
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// report and continue with the remaining pages
			logger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(content) == "" {
			continue
		}

		pages = append(pages, rawPage{
			Number:  i,
			Content: content,
		})
	}
	return pages, nil
}

// extractPlainDoc reads a .odt, .docx, .rtf or plaintext file; everything
// lands on a single logical page because these formats carry no page layout.
func extractPlainDoc(path string) ([]rawPage, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract document text: %w", err)
	}
	return []rawPage{
		{
			Number:  1,
			Content: text,
		},
	}, nil
}

// protectExtract guards against extraction hanging on malformed pages.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{"", fmt.Errorf("page extraction panicked: %v", r)}
			}
		}()
		resChan <- result{orderedPageText(page.Content().Text), nil}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		return "", errors.New("timeout")
	}
}

// orderedPageText reassembles layout fragments in natural reading order:
// top-to-bottom (PDF Y grows upward, so descending Y), then left-to-right.
// Fragments on the same baseline join into one line.
func orderedPageText(fragments []pdf.Text) string {
	if len(fragments) == 0 {
		return ""
	}

	sorted := make([]pdf.Text, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Y-sorted[j].Y) > lineTolerance {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var builder strings.Builder
	lineY := sorted[0].Y
	for i, fragment := range sorted {
		if i > 0 {
			if math.Abs(fragment.Y-lineY) > lineTolerance {
				builder.WriteString("\n")
				lineY = fragment.Y
			}
		}
		builder.WriteString(fragment.S)
	}
	return builder.String()
}
