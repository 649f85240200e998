package pdfextract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

var ErrEmptyInput = errors.New("pdf input is empty")

// Recognizer turns a single rendered PDF page into text. Pages are 1-based.
type Recognizer interface {
	RecognizePage(ctx context.Context, pdfData []byte, page int) (string, error)
}

// Extractor pulls embedded text out of a PDF and falls back to OCR for pages
// that carry no text layer.
type Extractor struct {
	ocr Recognizer
	log *zap.Logger
}

// New returns an Extractor. ocr may be nil, in which case image-only pages
// contribute an empty line.
func New(ocr Recognizer, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{ocr: ocr, log: log.Named("pdfextract")}
}

// Extract returns the text of every page, each followed by a newline.
func (e *Extractor) Extract(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyInput
	}
	reader, err := openReader(data)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := pageText(reader.Page(i))
		if err != nil {
			e.log.Warn("read page text failed", zap.Int("page", i), zap.Error(err))
		}
		if strings.TrimSpace(text) == "" && e.ocr != nil {
			recognized, err := e.ocr.RecognizePage(ctx, data, i)
			if err != nil {
				e.log.Warn("ocr page failed", zap.Int("page", i), zap.Error(err))
			} else {
				e.log.Debug("page recognized by ocr", zap.Int("page", i))
				text = recognized
			}
		}

		out.WriteString(text)
		out.WriteString("\n")
	}
	return out.String(), nil
}

func openReader(data []byte) (reader *pdf.Reader, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			reader = nil
			err = fmt.Errorf("open pdf failed: %v", r)
		}
	}()
	reader, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf failed: %w", err)
	}
	return reader, nil
}

func pageText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("extract page text failed: %v", r)
		}
	}()
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
