package model

import "time"

// Document is one uploaded PDF. Filename is the identity and never changes
// after the record is created. The column compares bytes, so names differing
// only in case or accents are distinct documents.
type Document struct {
	Filename   string    `gorm:"primaryKey;type:varchar(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin" json:"filename"`
	Content    string    `gorm:"type:longtext;not null" json:"content,omitempty"`
	FileURL    string    `gorm:"size:1024" json:"file_url"`
	UploadDate time.Time `gorm:"not null;index" json:"upload_date"`
}

func (Document) TableName() string {
	return "pdf_documents"
}
