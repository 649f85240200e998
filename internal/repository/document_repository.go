package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// GetByFilename returns nil, nil when no record carries the filename.
func (r *DocumentRepository) GetByFilename(filename string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("filename = ?", filename).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) Exists(filename string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Document{}).Where("filename = ?", filename).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check document exists failed: %w", err)
	}
	return count > 0, nil
}

func (r *DocumentRepository) ListFilenames() ([]string, error) {
	var names []string
	if err := r.db.Model(&model.Document{}).Order("upload_date ASC").Pluck("filename", &names).Error; err != nil {
		return nil, fmt.Errorf("list document filenames failed: %w", err)
	}
	return names, nil
}

// CreateWithHook inserts doc and runs hook inside the same transaction. A
// hook error rolls the insert back, so no row outlives a failed upload of
// its binary.
func (r *DocumentRepository) CreateWithHook(doc *model.Document, hook func(*model.Document) error) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return fmt.Errorf("create document failed: %w", err)
		}
		if hook == nil {
			return nil
		}
		if err := hook(doc); err != nil {
			return err
		}
		return tx.Save(doc).Error
	})
	return err
}
