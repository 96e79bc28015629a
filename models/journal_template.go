package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nusabooks/ledger/config"
	"github.com/nusabooks/ledger/types"
)

// JournalTemplate is a reusable posting shape: the caller supplies one amount
// and each line contributes amount * multiplier on its side.
type JournalTemplate struct {
	ID        uuid.UUID             `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string                `json:"name"`
	Lines     []JournalTemplateLine `json:"lines" gorm:"foreignKey:TemplateID"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

type JournalTemplateLine struct {
	ID          uint64              `json:"id" gorm:"primaryKey"`
	TemplateID  uuid.UUID           `json:"template_id" gorm:"type:uuid;index"`
	Position    int                 `json:"position"`
	AccountCode string              `json:"account_code" gorm:"size:32"`
	Side        types.NormalBalance `json:"side" gorm:"size:8"`
	Multiplier  decimal.Decimal     `json:"multiplier" gorm:"type:decimal(12,6)"`
}

func FindTemplate(id uuid.UUID) (*JournalTemplate, error) {
	var template JournalTemplate

	result := config.DataBase.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).First(&template, "id = ?", id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, &types.TemplateNotFoundError{ID: id.String()}
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &template, nil
}

func CreateTemplate(name string, lines []JournalTemplateLine) (*JournalTemplate, error) {
	for _, line := range lines {
		if !types.ValidNormalBalance(line.Side) {
			return nil, &types.InvalidTypeError{Field: "side", Value: line.Side}
		}
	}

	template := &JournalTemplate{
		ID:    uuid.New(),
		Name:  name,
		Lines: lines,
	}

	if err := config.DataBase.Create(template).Error; err != nil {
		return nil, err
	}

	return template, nil
}
