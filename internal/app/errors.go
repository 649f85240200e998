package app

import (
	"errors"

	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/session"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupportedFormat = errors.New("file format not supported")
	ErrFileTooLarge      = errors.New("file too large")
	ErrExtractFailed     = errors.New("extract text from pdf failed")
	ErrEmptyDocument     = errors.New("pdf contains no extractable text")
	ErrStorage           = errors.New("store document failed")
	ErrNoDocuments       = errors.New("no files found")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrNoValidDocuments  = errors.New("no valid documents found for the given filenames")
	ErrSessionNotFound   = session.ErrSessionNotFound
)
