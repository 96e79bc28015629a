package taxcal_service

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null"
	yaml "gopkg.in/yaml.v2"

	"github.com/nusabooks/ledger/audit"
	"github.com/nusabooks/ledger/config"
	"github.com/nusabooks/ledger/models"
)

// dueSoonDays is the warning window before a deadline falls due.
const dueSoonDays = 7

type definitionsFile struct {
	Deadlines []struct {
		Code   string `yaml:"code"`
		Name   string `yaml:"name"`
		Kind   string `yaml:"kind"`
		DueDay int    `yaml:"due_day"`
	} `yaml:"deadlines"`
}

// LoadDefinitions seeds or refreshes the deadline catalog from the YAML file.
// Definitions absent from the file are left untouched.
func LoadDefinitions(path string) error {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}

	defs := &definitionsFile{}
	if err := yaml.Unmarshal(buf, defs); err != nil {
		return err
	}

	for _, def := range defs.Deadlines {
		var existing models.TaxDeadline

		result := config.DataBase.Where("code = ?", def.Code).First(&existing)
		if result.Error == nil {
			existing.Name = def.Name
			existing.Kind = def.Kind
			existing.DueDay = def.DueDay
			existing.Active = true
			if err := config.DataBase.Save(&existing).Error; err != nil {
				return err
			}
			continue
		}

		deadline := &models.TaxDeadline{
			ID:     uuid.New(),
			Code:   def.Code,
			Name:   def.Name,
			Kind:   def.Kind,
			DueDay: def.DueDay,
			Active: true,
		}
		if err := config.DataBase.Create(deadline).Error; err != nil {
			return err
		}
	}

	return nil
}

// DeadlineStatus is one checklist row for a tax period.
type DeadlineStatus struct {
	Deadline     models.TaxDeadline `json:"deadline"`
	Year         int                `json:"year"`
	Month        int                `json:"month"`
	DueDate      string             `json:"due_date"`
	Completed    bool               `json:"completed"`
	CompletedBy  string             `json:"completed_by,omitempty"`
	Overdue      bool               `json:"overdue"`
	DueSoon      bool               `json:"due_soon"`
	DaysUntilDue int                `json:"days_until_due"`
}

// ChecklistFor reports every active deadline for tax period (year, month)
// against the reference date.
func ChecklistFor(year, month int, today time.Time) ([]DeadlineStatus, error) {
	deadlines, err := models.ListActiveDeadlines()
	if err != nil {
		return nil, err
	}

	var completions []models.TaxDeadlineCompletion
	if err := config.DataBase.Where("year = ? AND month = ?", year, month).Find(&completions).Error; err != nil {
		return nil, err
	}

	completed := map[uuid.UUID]models.TaxDeadlineCompletion{}
	for _, completion := range completions {
		completed[completion.DeadlineID] = completion
	}

	today = today.Truncate(24 * time.Hour)

	statuses := make([]DeadlineStatus, 0, len(deadlines))
	for _, deadline := range deadlines {
		due := deadline.DueDate(year, month)
		days := int(due.Sub(today).Hours() / 24)

		status := DeadlineStatus{
			Deadline:     deadline,
			Year:         year,
			Month:        month,
			DueDate:      due.Format("2006-01-02"),
			DaysUntilDue: days,
		}

		if completion, done := completed[deadline.ID]; done {
			status.Completed = true
			status.CompletedBy = completion.CompletedBy
		} else {
			status.Overdue = today.After(due)
			status.DueSoon = !status.Overdue && days <= dueSoonDays
		}

		statuses = append(statuses, status)
	}

	return statuses, nil
}

// Complete records that an obligation was settled for a tax period.
func Complete(deadlineID uuid.UUID, year, month int, actor string, notes null.String) (*models.TaxDeadlineCompletion, error) {
	deadline, err := models.FindDeadline(deadlineID)
	if err != nil {
		return nil, err
	}

	completion := &models.TaxDeadlineCompletion{
		DeadlineID:  deadline.ID,
		Year:        year,
		Month:       month,
		CompletedBy: actor,
		Notes:       notes,
	}

	if err := config.DataBase.Create(completion).Error; err != nil {
		return nil, err
	}

	audit.Publish(audit.KindDeadlineCompleted, actor, map[string]string{
		"deadline": deadline.Code,
		"period":   fmt.Sprintf("%04d-%02d", year, month),
	})

	return completion, nil
}

// Upcoming lists the unfinished checklist for the current reporting period;
// the tax period being reported is always the previous month.
func Upcoming(today time.Time) ([]DeadlineStatus, error) {
	year, month := today.Year(), int(today.Month())
	if month == 1 {
		year, month = year-1, 12
	} else {
		month--
	}

	statuses, err := ChecklistFor(year, month, today)
	if err != nil {
		return nil, err
	}

	pending := make([]DeadlineStatus, 0, len(statuses))
	for _, status := range statuses {
		if !status.Completed {
			pending = append(pending, status)
		}
	}

	return pending, nil
}
