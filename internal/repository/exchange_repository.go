package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/model"
)

type ExchangeRepository struct {
	db *gorm.DB
}

func NewExchangeRepository(db *gorm.DB) *ExchangeRepository {
	return &ExchangeRepository{db: db}
}

func (r *ExchangeRepository) Create(exchange *model.Exchange) error {
	if err := r.db.Create(exchange).Error; err != nil {
		return fmt.Errorf("create exchange failed: %w", err)
	}
	return nil
}
