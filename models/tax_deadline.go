package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null"
	"gorm.io/gorm"

	"github.com/nusabooks/ledger/config"
	"github.com/nusabooks/ledger/types"
)

type DeadlineKind = string

var (
	DeadlinePayment   DeadlineKind = "payment"
	DeadlineReporting DeadlineKind = "reporting"
)

// TaxDeadline defines one recurring monthly obligation. DueDay is the day of
// the month following the tax period.
type TaxDeadline struct {
	ID        uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	Code      string       `json:"code" gorm:"uniqueIndex;size:32"`
	Name      string       `json:"name"`
	Kind      DeadlineKind `json:"kind" gorm:"size:16"`
	DueDay    int          `json:"due_day"`
	Active    bool         `json:"active"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type TaxDeadlineCompletion struct {
	ID          uint64      `json:"id" gorm:"primaryKey"`
	DeadlineID  uuid.UUID   `json:"deadline_id" gorm:"type:uuid;uniqueIndex:idx_tax_completions_period"`
	Year        int         `json:"year" gorm:"uniqueIndex:idx_tax_completions_period"`
	Month       int         `json:"month" gorm:"uniqueIndex:idx_tax_completions_period"`
	CompletedBy string      `json:"completed_by"`
	Notes       null.String `json:"notes"`
	CreatedAt   time.Time   `json:"created_at"`
}

// DueDate computes when the obligation for tax period (year, month) falls due:
// DueDay of the following month.
func (d *TaxDeadline) DueDate(year, month int) time.Time {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	day := d.DueDay
	lastDay := next.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(next.Year(), next.Month(), day, 0, 0, 0, 0, time.UTC)
}

func FindDeadline(id uuid.UUID) (*TaxDeadline, error) {
	var deadline TaxDeadline

	result := config.DataBase.First(&deadline, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, &types.DeadlineNotFoundError{ID: id.String()}
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &deadline, nil
}

func ListActiveDeadlines() ([]TaxDeadline, error) {
	var deadlines []TaxDeadline

	if err := config.DataBase.Where("active = ?", true).Order("due_day").Find(&deadlines).Error; err != nil {
		return nil, err
	}

	return deadlines, nil
}
