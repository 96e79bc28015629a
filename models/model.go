package models

import (
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Account{},
		&FiscalPeriod{},
		&JournalEntry{},
		&JournalLine{},
		&FiscalYearClosing{},
		&JournalTemplate{},
		&JournalTemplateLine{},
		&TaxDeadline{},
		&TaxDeadlineCompletion{},
	)
}
