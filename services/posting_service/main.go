package posting_service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"
	"gorm.io/gorm"

	"github.com/nusabooks/ledger/audit"
	"github.com/nusabooks/ledger/config"
	"github.com/nusabooks/ledger/models"
	"github.com/nusabooks/ledger/types"
)

// Line is one requested side of an entry, in integer minor currency units.
type Line struct {
	AccountCode string
	Debit       int64
	Credit      int64
}

// Post validates and persists one balanced journal entry. The checks and the
// insert happen as one unit: a failure at any step leaves no partial entry.
func Post(date time.Time, description string, ref null.String, lines []Line, actor string) (*models.JournalEntry, error) {
	return post(date, description, ref, lines, actor, false)
}

// PostClosingEntry is the privileged path reserved for the fiscal year
// closing process. It skips the period-open gate (and lock acquisition, since
// the closing process already holds the year's locks) so the single
// system-originated closing entry can land in a MONTH_CLOSED December.
// Ordinary callers must use Post.
func PostClosingEntry(date time.Time, description string, ref null.String, lines []Line, actor string) (*models.JournalEntry, error) {
	return post(date, description, ref, lines, actor, true)
}

func post(date time.Time, description string, ref null.String, lines []Line, actor string, privileged bool) (*models.JournalEntry, error) {
	if len(lines) < 2 {
		return nil, &types.InsufficientLinesError{Count: len(lines)}
	}

	var totalDebit, totalCredit int64

	for i, line := range lines {
		account, err := models.LookupAccount(line.AccountCode)
		if err != nil {
			return nil, err
		}
		if account.IsHeader {
			return nil, &types.HeaderAccountPostingError{Code: account.Code}
		}

		if line.Debit < 0 || line.Credit < 0 {
			return nil, &types.MalformedLineError{Index: i, Reason: "amounts must not be negative"}
		}
		if (line.Debit != 0) == (line.Credit != 0) {
			return nil, &types.MalformedLineError{Index: i, Reason: "exactly one of debit or credit must be nonzero"}
		}

		totalDebit += line.Debit
		totalCredit += line.Credit
	}

	if totalDebit != totalCredit {
		return nil, &types.ImbalancedEntryError{TotalDebit: totalDebit, TotalCredit: totalCredit}
	}

	var entry *models.JournalEntry

	persist := func() error {
		period, err := models.PeriodForDate(date)
		if err != nil {
			return err
		}

		if !privileged && period.Status != types.PeriodOpen {
			return &types.ClosedPeriodError{Code: period.Code(), Status: period.Status}
		}

		return config.DataBase.Transaction(func(tx *gorm.DB) error {
			seq, err := models.NextEntrySeq(tx, period.ID)
			if err != nil {
				return err
			}

			entryLines := make([]models.JournalLine, 0, len(lines))
			for i, line := range lines {
				entryLines = append(entryLines, models.JournalLine{
					Position:    i,
					AccountCode: line.AccountCode,
					Debit:       line.Debit,
					Credit:      line.Credit,
				})
			}

			entry = &models.JournalEntry{
				FiscalPeriodID:  period.ID,
				Seq:             seq,
				TransactionDate: date,
				Description:     description,
				ReferenceNumber: ref,
				Status:          types.StatusPosted,
				Lines:           entryLines,
			}

			return tx.Create(entry).Error
		})
	}

	var err error
	if privileged {
		err = persist()
	} else {
		err = models.WithPeriodLock(date.Year(), int(date.Month()), persist)
	}
	if err != nil {
		return nil, err
	}

	audit.Publish(audit.KindEntryPosted, actor, map[string]string{
		"entry_id": fmt.Sprintf("%d", entry.ID),
		"date":     date.Format("2006-01-02"),
		"debit":    fmt.Sprintf("%d", totalDebit),
		"credit":   fmt.Sprintf("%d", totalCredit),
	})

	return entry, nil
}

// Reverse invalidates a posted entry by marking it VOID. The lines stay in
// the journal untouched; every derived balance aggregates POSTED entries
// only, so the void removes the entry's effect everywhere at once. Voiding
// is not gated on period status, which lets a closing entry be backed out of
// an otherwise closed December.
func Reverse(entryID uint64, reason string, actor string) (*models.JournalEntry, error) {
	result := config.DataBase.Model(&models.JournalEntry{}).
		Where("id = ? AND status = ?", entryID, types.StatusPosted).
		Updates(map[string]interface{}{
			"status":      types.StatusVoid,
			"voided_at":   null.TimeFrom(time.Now().UTC()),
			"void_reason": null.NewString(reason, reason != ""),
		})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		// Either the entry does not exist or it is already void.
		entry, err := models.FindEntry(entryID)
		if err != nil {
			return nil, err
		}
		return nil, &types.EntryAlreadyVoidError{ID: entry.ID}
	}

	entry, err := models.FindEntry(entryID)
	if err != nil {
		return nil, err
	}

	audit.Publish(audit.KindEntryReversed, actor, map[string]string{
		"entry_id": fmt.Sprintf("%d", entryID),
		"reason":   reason,
	})

	return entry, nil
}

// PostFromTemplate expands a journal template against one amount and posts
// the result through the ordinary path. Template line amounts round half up
// to two decimal places before conversion to minor units.
func PostFromTemplate(templateID uuid.UUID, amount decimal.Decimal, date time.Time, description string, ref null.String, actor string) (*models.JournalEntry, error) {
	template, err := models.FindTemplate(templateID)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(template.Lines))
	for _, tline := range template.Lines {
		minor := amount.Mul(tline.Multiplier).Round(2).Shift(2).IntPart()

		line := Line{AccountCode: tline.AccountCode}
		if tline.Side == types.BalanceDebit {
			line.Debit = minor
		} else {
			line.Credit = minor
		}
		lines = append(lines, line)
	}

	if description == "" {
		description = template.Name
	}

	return Post(date, description, ref, lines, actor)
}
