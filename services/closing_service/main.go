package closing_service

import (
	"fmt"
	"os"
	"time"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/volatiletech/null"

	"github.com/nusabooks/ledger/audit"
	"github.com/nusabooks/ledger/config"
	"github.com/nusabooks/ledger/models"
	"github.com/nusabooks/ledger/services/posting_service"
	"github.com/nusabooks/ledger/types"
)

const defaultRetainedEarningsCode = "3200"

type ClosingLine struct {
	AccountCode string `json:"account_code"`
	AccountName string `json:"account_name"`
	Debit       int64  `json:"debit"`
	Credit      int64  `json:"credit"`
}

// ClosingPreview is the entry that Execute would post, plus the year's
// nominal totals. Nothing is persisted to produce it.
type ClosingPreview struct {
	Year         int           `json:"year"`
	Date         time.Time     `json:"date"`
	TotalRevenue int64         `json:"total_revenue"`
	TotalExpense int64         `json:"total_expense"`
	NetIncome    int64         `json:"net_income"`
	Lines        []ClosingLine `json:"lines"`
}

func RetainedEarningsCode() string {
	if code := os.Getenv("RETAINED_EARNINGS_CODE"); code != "" {
		return code
	}
	return defaultRetainedEarningsCode
}

// Preview computes the closing without posting it.
func Preview(year int) (*ClosingPreview, error) {
	return compute(year)
}

// Execute closes the year: it posts the single closing entry through the
// privileged engine path and flips the year latch. All twelve period locks
// are held so no period can transition mid-closing; a concurrent Execute for
// the same year loses on the latch.
func Execute(year int, actor string) (*models.FiscalYearClosing, *models.JournalEntry, error) {
	var closing *models.FiscalYearClosing
	var entry *models.JournalEntry

	err := models.WithYearLock(year, func() error {
		preview, err := compute(year)
		if err != nil {
			return err
		}

		var entryID null.Uint64
		if len(preview.Lines) > 0 {
			lines := make([]posting_service.Line, 0, len(preview.Lines))
			for _, line := range preview.Lines {
				lines = append(lines, posting_service.Line{
					AccountCode: line.AccountCode,
					Debit:       line.Debit,
					Credit:      line.Credit,
				})
			}

			entry, err = posting_service.PostClosingEntry(
				preview.Date,
				fmt.Sprintf("Fiscal year %d closing", year),
				null.StringFrom(fmt.Sprintf("CLOSING-%d", year)),
				lines,
				actor,
			)
			if err != nil {
				return err
			}

			entryID = null.Uint64From(entry.ID)
		}

		closing, err = models.MarkYearClosed(year, entryID)
		if err != nil {
			return err
		}

		subject := map[string]string{
			"year":       fmt.Sprintf("%d", year),
			"net_income": fmt.Sprintf("%d", preview.NetIncome),
		}
		if entry != nil {
			subject["closing_entry_id"] = fmt.Sprintf("%d", entry.ID)
		}
		audit.Publish(audit.KindYearClosed, actor, subject)

		config.Logger.Infof("closed fiscal year %d, net income %d", year, preview.NetIncome)

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return closing, entry, nil
}

type nominalBalance struct {
	account *models.Account
	debit   int64
	credit  int64
}

func compute(year int) (*ClosingPreview, error) {
	closing, err := models.FindYearClosing(year)
	if err != nil {
		return nil, err
	}
	if closing != nil && closing.Status == types.ClosingClosed {
		return nil, &types.AlreadyClosedError{Year: year}
	}

	var pending []string
	for month := 1; month <= 12; month++ {
		period, err := models.FindPeriod(year, month)
		if err != nil {
			if _, missing := err.(*types.PeriodNotFoundError); missing {
				pending = append(pending, fmt.Sprintf("%04d-%02d (missing)", year, month))
				continue
			}
			return nil, err
		}
		if period.Status == types.PeriodOpen {
			pending = append(pending, period.Code()+" (open)")
		}
	}
	if len(pending) > 0 {
		return nil, &types.PeriodsNotReadyError{Year: year, Pending: pending}
	}

	balances, err := nominalBalances(year)
	if err != nil {
		return nil, err
	}

	preview := &ClosingPreview{
		Year: year,
		Date: time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}

	// One offsetting line per nonzero nominal account, in code order, then
	// the retained earnings line.
	it := balances.Iterator()
	for it.Next() {
		balance := it.Value().(*nominalBalance)

		var line ClosingLine
		switch balance.account.Type {
		case types.TypeRevenue:
			net := balance.credit - balance.debit
			preview.TotalRevenue += net
			if net == 0 {
				continue
			}
			line = ClosingLine{AccountCode: balance.account.Code, AccountName: balance.account.Name}
			if net > 0 {
				line.Debit = net
			} else {
				line.Credit = -net
			}
		case types.TypeExpense:
			net := balance.debit - balance.credit
			preview.TotalExpense += net
			if net == 0 {
				continue
			}
			line = ClosingLine{AccountCode: balance.account.Code, AccountName: balance.account.Name}
			if net > 0 {
				line.Credit = net
			} else {
				line.Debit = -net
			}
		default:
			continue
		}

		preview.Lines = append(preview.Lines, line)
	}

	preview.NetIncome = preview.TotalRevenue - preview.TotalExpense

	if len(preview.Lines) == 0 {
		return preview, nil
	}

	retained, err := models.LookupAccount(RetainedEarningsCode())
	if err != nil {
		return nil, err
	}
	if retained.IsHeader {
		return nil, &types.HeaderAccountPostingError{Code: retained.Code}
	}

	if preview.NetIncome > 0 {
		preview.Lines = append(preview.Lines, ClosingLine{
			AccountCode: retained.Code,
			AccountName: retained.Name,
			Credit:      preview.NetIncome,
		})
	} else if preview.NetIncome < 0 {
		preview.Lines = append(preview.Lines, ClosingLine{
			AccountCode: retained.Code,
			AccountName: retained.Name,
			Debit:       -preview.NetIncome,
		})
	}

	return preview, nil
}

func nominalBalances(year int) (*treemap.Map, error) {
	var rows []struct {
		AccountCode string
		Debit       int64
		Credit      int64
	}

	err := config.DataBase.
		Table("journal_lines").
		Select("journal_lines.account_code AS account_code, COALESCE(SUM(journal_lines.debit), 0) AS debit, COALESCE(SUM(journal_lines.credit), 0) AS credit").
		Joins("JOIN journal_entries ON journal_entries.id = journal_lines.entry_id").
		Joins("JOIN fiscal_periods ON fiscal_periods.id = journal_entries.fiscal_period_id").
		Where("fiscal_periods.year = ? AND journal_entries.status = ?", year, types.StatusPosted).
		Group("journal_lines.account_code").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	balances := treemap.NewWith(utils.StringComparator)
	for _, row := range rows {
		account, err := models.LookupAccountAny(row.AccountCode)
		if err != nil {
			return nil, err
		}
		if !types.Nominal(account.Type) {
			continue
		}

		balances.Put(account.Code, &nominalBalance{
			account: account,
			debit:   row.Debit,
			credit:  row.Credit,
		})
	}

	return balances, nil
}
