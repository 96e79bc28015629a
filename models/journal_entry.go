package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"
	"gorm.io/gorm"

	"github.com/nusabooks/ledger/config"
	"github.com/nusabooks/ledger/types"
)

// JournalEntry is one balanced double-entry posting. Entries are written once
// by the posting engine; amounts and lines are never edited afterwards. A
// reversal marks the entry VOID, which removes it from every derived balance
// while keeping the record itself in the journal.
type JournalEntry struct {
	ID              uint64            `json:"id" gorm:"primaryKey"`
	FiscalPeriodID  uint64            `json:"fiscal_period_id" gorm:"uniqueIndex:idx_journal_entries_period_seq"`
	Seq             uint64            `json:"seq" gorm:"uniqueIndex:idx_journal_entries_period_seq"`
	TransactionDate time.Time         `json:"transaction_date" gorm:"index"`
	Description     string            `json:"description"`
	ReferenceNumber null.String       `json:"reference_number"`
	Status          types.EntryStatus `json:"status" gorm:"size:8;index"`
	VoidedAt        null.Time         `json:"voided_at"`
	VoidReason      null.String       `json:"void_reason"`
	Lines           []JournalLine     `json:"lines" gorm:"foreignKey:EntryID"`
	CreatedAt       time.Time         `json:"created_at"`
}

// JournalLine is one side of an entry. Exactly one of Debit/Credit is nonzero.
// Amounts are integer minor currency units; balances are always derived by
// aggregating lines, never kept as running counters.
type JournalLine struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	EntryID     uint64 `json:"entry_id" gorm:"index"`
	Position    int    `json:"position"`
	AccountCode string `json:"account_code" gorm:"index;size:32"`
	Debit       int64  `json:"debit"`
	Credit      int64  `json:"credit"`
}

func (e *JournalEntry) TotalDebit() int64 {
	var total int64
	for _, line := range e.Lines {
		total += line.Debit
	}
	return total
}

func (e *JournalEntry) TotalCredit() int64 {
	var total int64
	for _, line := range e.Lines {
		total += line.Credit
	}
	return total
}

func FindEntry(id uint64) (*JournalEntry, error) {
	var entry JournalEntry

	result := config.DataBase.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).First(&entry, "id = ?", id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, &types.EntryNotFoundError{ID: id}
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &entry, nil
}

// NextEntrySeq returns the next monotone sequence number within a period.
// Callers must hold the period's exclusive section.
func NextEntrySeq(tx *gorm.DB, periodID uint64) (uint64, error) {
	var max uint64

	err := tx.Model(&JournalEntry{}).
		Where("fiscal_period_id = ?", periodID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}

	return max + 1, nil
}

type JournalLineJSON struct {
	AccountCode string          `json:"account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

type JournalEntryJSON struct {
	ID              uint64            `json:"id"`
	Seq             uint64            `json:"seq"`
	TransactionDate string            `json:"transaction_date"`
	Description     string            `json:"description"`
	ReferenceNumber null.String       `json:"reference_number"`
	Status          types.EntryStatus `json:"status"`
	VoidedAt        null.Time         `json:"voided_at"`
	VoidReason      null.String       `json:"void_reason"`
	Lines           []JournalLineJSON `json:"lines"`
}

// MinorToDecimal renders integer minor units as a two-decimal amount.
func MinorToDecimal(v int64) decimal.Decimal {
	return decimal.New(v, -2)
}

func (e *JournalEntry) ToJSON() JournalEntryJSON {
	lines := make([]JournalLineJSON, 0, len(e.Lines))
	for _, line := range e.Lines {
		lines = append(lines, JournalLineJSON{
			AccountCode: line.AccountCode,
			Debit:       MinorToDecimal(line.Debit),
			Credit:      MinorToDecimal(line.Credit),
		})
	}

	return JournalEntryJSON{
		ID:              e.ID,
		Seq:             e.Seq,
		TransactionDate: e.TransactionDate.Format("2006-01-02"),
		Description:     e.Description,
		ReferenceNumber: e.ReferenceNumber,
		Status:          e.Status,
		VoidedAt:        e.VoidedAt,
		VoidReason:      e.VoidReason,
		Lines:           lines,
	}
}
