package cron

import (
	"time"

	"github.com/jasonlvhit/gocron"

	"github.com/nusabooks/ledger/config"
	"github.com/nusabooks/ledger/services/taxcal_service"
)

type TaxReminderJob struct {
}

func (j *TaxReminderJob) Process() {
	s := gocron.NewScheduler()
	s.Every(1).Day().At("06:00:00").Do(remindTaxDeadlines)
	<-s.Start()
}

func remindTaxDeadlines() {
	pending, err := taxcal_service.Upcoming(time.Now().UTC())
	if err != nil {
		config.Logger.Errorf("failed to load tax deadline checklist: %v", err)
		return
	}

	for _, status := range pending {
		if status.Overdue {
			config.Logger.Warnf("tax deadline overdue: %s for %04d-%02d was due %s",
				status.Deadline.Name, status.Year, status.Month, status.DueDate)
			continue
		}
		if status.DueSoon {
			config.Logger.Infof("tax deadline due soon: %s for %04d-%02d due %s (%d days)",
				status.Deadline.Name, status.Year, status.Month, status.DueDate, status.DaysUntilDue)
		}
	}
}
