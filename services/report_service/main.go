package report_service

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nusabooks/ledger/config"
	"github.com/nusabooks/ledger/models"
	"github.com/nusabooks/ledger/types"
)

// CashFlowReport is a value object recomputed on every call; nothing about it
// is persisted. The invariant beginning + operating + investing + financing =
// ending holds for every range.
type CashFlowReport struct {
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	BeginningBalance int64     `json:"beginning_balance"`
	Operating        int64     `json:"operating"`
	Investing        int64     `json:"investing"`
	Financing        int64     `json:"financing"`
	NetChange        int64     `json:"net_change"`
	EndingBalance    int64     `json:"ending_balance"`
}

// Generate builds the indirect-method cash flow for [start, end]. Cash
// movements are classified by the counterparty line's account type:
// revenue/expense drive operating, non-cash assets investing, liability and
// equity movements financing.
func Generate(start, end time.Time) (*CashFlowReport, error) {
	if start.After(end) {
		return nil, &types.InvalidRangeError{
			Start: start.Format("2006-01-02"),
			End:   end.Format("2006-01-02"),
		}
	}

	report := &CashFlowReport{StartDate: start, EndDate: end}

	accounts := newAccountIndex()

	beginning, err := beginningBalance(start, accounts)
	if err != nil {
		return nil, err
	}
	report.BeginningBalance = beginning

	var entries []models.JournalEntry
	err = config.DataBase.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("status = ? AND transaction_date >= ? AND transaction_date <= ?", types.StatusPosted, start, end).
		Order("transaction_date, id").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		touchesCash := false
		for _, line := range entry.Lines {
			account, err := accounts.lookup(line.AccountCode)
			if err != nil {
				return nil, err
			}
			if account.Cash {
				touchesCash = true
				break
			}
		}
		if !touchesCash {
			continue
		}

		// The entry balances, so the cash delta equals the credits minus
		// debits of the non-cash lines; classifying those keeps the
		// category totals summing exactly to the cash movement.
		for _, line := range entry.Lines {
			account, err := accounts.lookup(line.AccountCode)
			if err != nil {
				return nil, err
			}
			if account.Cash {
				continue
			}

			delta := line.Credit - line.Debit

			switch classify(account) {
			case types.ActivityOperating:
				report.Operating += delta
			case types.ActivityInvesting:
				report.Investing += delta
			case types.ActivityFinancing:
				report.Financing += delta
			}
		}
	}

	report.NetChange = report.Operating + report.Investing + report.Financing
	report.EndingBalance = report.BeginningBalance + report.NetChange

	return report, nil
}

// classify is the static account-type to activity-class mapping.
func classify(account *models.Account) types.ActivityClass {
	switch account.Type {
	case types.TypeRevenue, types.TypeExpense:
		return types.ActivityOperating
	case types.TypeAsset:
		return types.ActivityInvesting
	default:
		return types.ActivityFinancing
	}
}

func beginningBalance(start time.Time, accounts *accountIndex) (int64, error) {
	var rows []struct {
		AccountCode string
		Debit       int64
		Credit      int64
	}

	err := config.DataBase.
		Table("journal_lines").
		Select("journal_lines.account_code AS account_code, COALESCE(SUM(journal_lines.debit), 0) AS debit, COALESCE(SUM(journal_lines.credit), 0) AS credit").
		Joins("JOIN journal_entries ON journal_entries.id = journal_lines.entry_id").
		Where("journal_entries.status = ? AND journal_entries.transaction_date < ?", types.StatusPosted, start).
		Group("journal_lines.account_code").
		Scan(&rows).Error
	if err != nil {
		return 0, err
	}

	var balance int64
	for _, row := range rows {
		account, err := accounts.lookup(row.AccountCode)
		if err != nil {
			return 0, err
		}
		if account.Cash {
			balance += row.Debit - row.Credit
		}
	}

	return balance, nil
}

type accountIndex struct {
	byCode map[string]*models.Account
}

func newAccountIndex() *accountIndex {
	return &accountIndex{byCode: map[string]*models.Account{}}
}

func (idx *accountIndex) lookup(code string) (*models.Account, error) {
	if account, found := idx.byCode[code]; found {
		return account, nil
	}

	account, err := models.LookupAccountAny(code)
	if err != nil {
		return nil, err
	}

	idx.byCode[code] = account

	return account, nil
}

type CashFlowReportJSON struct {
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	BeginningBalance decimal.Decimal `json:"beginning_balance"`
	Operating        decimal.Decimal `json:"operating"`
	Investing        decimal.Decimal `json:"investing"`
	Financing        decimal.Decimal `json:"financing"`
	NetChange        decimal.Decimal `json:"net_change"`
	EndingBalance    decimal.Decimal `json:"ending_balance"`
}

func (r *CashFlowReport) ToJSON() CashFlowReportJSON {
	return CashFlowReportJSON{
		StartDate:        r.StartDate.Format("2006-01-02"),
		EndDate:          r.EndDate.Format("2006-01-02"),
		BeginningBalance: models.MinorToDecimal(r.BeginningBalance),
		Operating:        models.MinorToDecimal(r.Operating),
		Investing:        models.MinorToDecimal(r.Investing),
		Financing:        models.MinorToDecimal(r.Financing),
		NetChange:        models.MinorToDecimal(r.NetChange),
		EndingBalance:    models.MinorToDecimal(r.EndingBalance),
	}
}
