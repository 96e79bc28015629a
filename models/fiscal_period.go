package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/volatiletech/null"
	"gorm.io/gorm"

	"github.com/nusabooks/ledger/audit"
	"github.com/nusabooks/ledger/config"
	"github.com/nusabooks/ledger/types"
)

// FiscalPeriod gates which transaction dates accept postings. One row per
// (year, month), created by an explicit administrative call, never deleted.
type FiscalPeriod struct {
	ID            uint64             `json:"id" gorm:"primaryKey"`
	Year          int                `json:"year" gorm:"uniqueIndex:idx_fiscal_periods_year_month"`
	Month         int                `json:"month" gorm:"uniqueIndex:idx_fiscal_periods_year_month"`
	Status        types.PeriodStatus `json:"status" gorm:"size:16"`
	MonthClosedAt null.Time          `json:"month_closed_at"`
	TaxFiledAt    null.Time          `json:"tax_filed_at"`
	Notes         null.String        `json:"notes"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// Code renders the zero-padded YYYY-MM period identifier.
func (p *FiscalPeriod) Code() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

type PeriodOperation = string

var (
	OpCloseMonth PeriodOperation = "close_month"
	OpFileTax    PeriodOperation = "file_tax"
	OpReopen     PeriodOperation = "reopen"
)

// periodTransitions is the whole state machine. Anything absent here is an
// invalid transition; nothing leaves TAX_FILED.
var periodTransitions = map[PeriodOperation]struct {
	From types.PeriodStatus
	To   types.PeriodStatus
}{
	OpCloseMonth: {From: types.PeriodOpen, To: types.PeriodMonthClosed},
	OpFileTax:    {From: types.PeriodMonthClosed, To: types.PeriodTaxFiled},
	OpReopen:     {From: types.PeriodMonthClosed, To: types.PeriodOpen},
}

func OpenPeriod(year, month int, actor string) (*FiscalPeriod, error) {
	if month < 1 || month > 12 {
		return nil, &types.InvalidTypeError{Field: "month", Value: fmt.Sprintf("%d", month)}
	}

	var period *FiscalPeriod

	err := WithPeriodLock(year, month, func() error {
		var count int64
		config.DataBase.Model(&FiscalPeriod{}).Where("year = ? AND month = ?", year, month).Count(&count)
		if count > 0 {
			return &types.DuplicatePeriodError{Year: year, Month: month}
		}

		period = &FiscalPeriod{
			Year:   year,
			Month:  month,
			Status: types.PeriodOpen,
		}

		return config.DataBase.Create(period).Error
	})
	if err != nil {
		return nil, err
	}

	audit.Publish(audit.KindPeriodOpened, actor, map[string]string{
		"period": period.Code(),
		"status": period.Status,
	})

	return period, nil
}

func FindPeriod(year, month int) (*FiscalPeriod, error) {
	var period FiscalPeriod

	result := config.DataBase.Where("year = ? AND month = ?", year, month).First(&period)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, &types.PeriodNotFoundError{Year: year, Month: month}
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &period, nil
}

// PeriodForDate resolves the period owning a transaction date. The period is
// never created implicitly; posting into a month with no period fails.
func PeriodForDate(date time.Time) (*FiscalPeriod, error) {
	return FindPeriod(date.Year(), int(date.Month()))
}

func ListPeriods(year int) ([]FiscalPeriod, error) {
	var periods []FiscalPeriod

	tx := config.DataBase.Order("year, month")
	if year > 0 {
		tx = tx.Where("year = ?", year)
	}

	if err := tx.Find(&periods).Error; err != nil {
		return nil, err
	}

	return periods, nil
}

// TransitionPeriod applies one operation of the state machine under the
// period's exclusive section, so a concurrent post that read OPEN cannot land
// in a period this call is closing.
func TransitionPeriod(year, month int, op PeriodOperation, actor string, notes null.String) (*FiscalPeriod, error) {
	edge, known := periodTransitions[op]
	if !known {
		return nil, &types.InvalidTypeError{Field: "operation", Value: op}
	}

	var period *FiscalPeriod

	err := WithPeriodLock(year, month, func() error {
		var err error
		period, err = FindPeriod(year, month)
		if err != nil {
			return err
		}

		if period.Status != edge.From {
			return &types.InvalidTransitionError{Code: period.Code(), Status: period.Status, Operation: op}
		}

		oldStatus := period.Status
		period.Status = edge.To
		now := time.Now()

		switch op {
		case OpCloseMonth:
			period.MonthClosedAt = null.TimeFrom(now)
		case OpFileTax:
			period.TaxFiledAt = null.TimeFrom(now)
		case OpReopen:
			period.MonthClosedAt = null.Time{}
		}
		if notes.Valid {
			period.Notes = notes
		}

		if err := config.DataBase.Save(period).Error; err != nil {
			period.Status = oldStatus
			return err
		}

		audit.Publish(audit.KindPeriodTransition, actor, map[string]string{
			"period":     period.Code(),
			"operation":  op,
			"old_status": oldStatus,
			"new_status": period.Status,
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return period, nil
}
