package models

import (
	"errors"
	"time"

	"github.com/volatiletech/null"
	"gorm.io/gorm"

	"github.com/nusabooks/ledger/config"
	"github.com/nusabooks/ledger/types"
)

// FiscalYearClosing is the single-writer latch for a year's closing. It is
// created lazily and moves NOT_CLOSED -> CLOSED exactly once; this core never
// reopens a closed year.
type FiscalYearClosing struct {
	ID             uint64              `json:"id" gorm:"primaryKey"`
	Year           int                 `json:"year" gorm:"uniqueIndex"`
	Status         types.ClosingStatus `json:"status" gorm:"size:16"`
	ClosedAt       null.Time           `json:"closed_at"`
	ClosingEntryID null.Uint64         `json:"closing_entry_id"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func FindYearClosing(year int) (*FiscalYearClosing, error) {
	var closing FiscalYearClosing

	result := config.DataBase.Where("year = ?", year).First(&closing)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &closing, nil
}

// MarkYearClosed flips the latch. The WHERE guard makes a lost race surface
// as AlreadyClosedError instead of a silent double close.
func MarkYearClosed(year int, entryID null.Uint64) (*FiscalYearClosing, error) {
	closing, err := FindYearClosing(year)
	if err != nil {
		return nil, err
	}

	if closing == nil {
		closing = &FiscalYearClosing{Year: year, Status: types.ClosingNotClosed}
		if err := config.DataBase.Create(closing).Error; err != nil {
			return nil, err
		}
	}

	if closing.Status == types.ClosingClosed {
		return nil, &types.AlreadyClosedError{Year: year}
	}

	result := config.DataBase.Model(&FiscalYearClosing{}).
		Where("year = ? AND status = ?", year, types.ClosingNotClosed).
		Updates(map[string]interface{}{
			"status":           types.ClosingClosed,
			"closed_at":        time.Now(),
			"closing_entry_id": entryID,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, &types.AlreadyClosedError{Year: year}
	}

	return FindYearClosing(year)
}
