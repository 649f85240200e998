package app

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/metrics"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/model"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/pkg/fingerprint"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/storage"
)

const (
	pdfContentType    = "application/pdf"
	objectKeyLayout   = "20060102150405"
	maxRenameAttempts = 10000

	// Object keys are "<timestamp>_<filename>" and must fit a single
	// filesystem name as well as the 255 character filename column.
	maxFilenameBytes = 255 - len(objectKeyLayout) - 1

	MessageUploaded  = "PDF uploaded and processed successfully"
	MessageDuplicate = "Duplicate file detected. The file already exists."
)

type DocumentStore interface {
	DocumentReader
	Exists(filename string) (bool, error)
	ListFilenames() ([]string, error)
	CreateWithHook(doc *model.Document, hook func(*model.Document) error) error
}

type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

type DocumentService struct {
	docs      DocumentStore
	blobs     storage.BlobStore
	extractor TextExtractor
	maxBytes  int64
	log       *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewDocumentService(
	docs DocumentStore,
	blobs storage.BlobStore,
	extractor TextExtractor,
	maxBytes int64,
	log *zap.Logger,
	m *metrics.Metrics,
) *DocumentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentService{
		docs:      docs,
		blobs:     blobs,
		extractor: extractor,
		maxBytes:  maxBytes,
		log:       log.Named("documents"),
		metrics:   m,
		now:       time.Now,
	}
}

type UploadInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

type UploadResult struct {
	Filename  string `json:"filename"`
	Message   string `json:"message"`
	Duplicate bool   `json:"duplicate"`
	Renamed   bool   `json:"renamed"`
	FileURL   string `json:"file_url,omitempty"`
}

// Upload extracts and stores a PDF. Re-uploading identical content under the
// same name is a no-op; different content under a taken name is stored as
// name_1.pdf, name_2.pdf and so on.
func (s *DocumentService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	result, err := s.upload(ctx, input)
	switch {
	case err != nil:
		s.metrics.ObserveUpload(uploadFailureLabel(err))
	case result.Duplicate:
		s.metrics.ObserveUpload("duplicate")
	case result.Renamed:
		s.metrics.ObserveUpload("renamed")
	default:
		s.metrics.ObserveUpload("stored")
	}
	return result, err
}

func (s *DocumentService) upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	filename := cleanFilename(input.Filename)
	if filename == "" {
		return nil, ErrInvalidInput
	}
	if len(filename) > maxFilenameBytes {
		return nil, fmt.Errorf("%w: filename longer than %d bytes", ErrInvalidInput, maxFilenameBytes)
	}
	if !isPDF(filename, input.ContentType) {
		return nil, ErrUnsupportedFormat
	}
	if int64(len(input.Data)) > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	text, err := s.extractor.Extract(ctx, input.Data)
	if err != nil {
		s.log.Warn("extract pdf text failed", zap.String("filename", filename), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrExtractFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	existing, err := s.docs.GetByFilename(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	name := filename
	if existing != nil {
		if fingerprint.Equal(existing.Content, text) {
			s.log.Info("duplicate upload skipped", zap.String("filename", filename))
			return &UploadResult{
				Filename:  filename,
				Message:   MessageDuplicate,
				Duplicate: true,
				FileURL:   existing.FileURL,
			}, nil
		}
		name, err = s.nextFilename(filename)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	doc := &model.Document{
		Filename:   name,
		Content:    text,
		UploadDate: now.UTC(),
	}
	key := now.Format(objectKeyLayout) + "_" + name

	uploaded := false
	err = s.docs.CreateWithHook(doc, func(d *model.Document) error {
		url, err := s.blobs.Put(ctx, key, input.Data, pdfContentType)
		if err != nil {
			return err
		}
		uploaded = true
		d.FileURL = url
		return nil
	})
	if err != nil {
		if uploaded {
			if delErr := s.blobs.Delete(context.WithoutCancel(ctx), key); delErr != nil {
				s.log.Error("remove orphaned object failed", zap.String("key", key), zap.Error(delErr))
			}
		}
		s.log.Error("error uploading pdf or saving in the database", zap.String("filename", name), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.log.Info("document stored",
		zap.String("filename", name),
		zap.String("key", key),
		zap.Int("bytes", len(input.Data)),
	)
	return &UploadResult{
		Filename: name,
		Message:  MessageUploaded,
		Renamed:  name != filename,
		FileURL:  doc.FileURL,
	}, nil
}

// MaxBytes is the largest accepted upload.
func (s *DocumentService) MaxBytes() int64 {
	return s.maxBytes
}

// List returns stored filenames, oldest first.
func (s *DocumentService) List(ctx context.Context) ([]string, error) {
	names, err := s.docs.ListFilenames()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, ErrNoDocuments
	}
	return names, nil
}

func (s *DocumentService) Get(ctx context.Context, filename string) (*model.Document, error) {
	doc, err := s.docs.GetByFilename(filename)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

func (s *DocumentService) nextFilename(filename string) (string, error) {
	for n := 1; n <= maxRenameAttempts; n++ {
		candidate := suffixedFilename(filename, n)
		if len(candidate) > maxFilenameBytes {
			return "", fmt.Errorf("%w: filename longer than %d bytes", ErrInvalidInput, maxFilenameBytes)
		}
		exists, err := s.docs.Exists(candidate)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrStorage, err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no free name for %q", ErrStorage, filename)
}

// suffixedFilename inserts _n before the last extension: report.pdf becomes
// report_1.pdf, notes becomes notes_1.
func suffixedFilename(filename string, n int) string {
	ext := path.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	if base == "" {
		base, ext = filename, ""
	}
	return fmt.Sprintf("%s_%d%s", base, n, ext)
}

func cleanFilename(raw string) string {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), "\\", "/")
	name := path.Base(raw)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}

func isPDF(filename, contentType string) bool {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch mediaType {
	case pdfContentType:
		return true
	case "", "application/octet-stream":
		return strings.EqualFold(path.Ext(filename), ".pdf")
	default:
		return false
	}
}

func uploadFailureLabel(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported"
	case errors.Is(err, ErrFileTooLarge):
		return "too_large"
	case errors.Is(err, ErrExtractFailed), errors.Is(err, ErrEmptyDocument):
		return "unreadable"
	case errors.Is(err, ErrStorage):
		return "storage_error"
	default:
		return "invalid"
	}
}
