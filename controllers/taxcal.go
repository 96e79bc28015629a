package controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/volatiletech/null"

	"github.com/nusabooks/ledger/controllers/helpers"
	"github.com/nusabooks/ledger/services/taxcal_service"
)

func GetTaxDeadlines(c *fiber.Ctx) error {
	now := time.Now().UTC()

	year, _ := strconv.Atoi(c.Query("year"))
	month, _ := strconv.Atoi(c.Query("month"))
	if year == 0 || month == 0 {
		// Default to the current reporting period: the previous month.
		year, month = now.Year(), int(now.Month())
		if month == 1 {
			year, month = year-1, 12
		} else {
			month--
		}
	}

	statuses, err := taxcal_service.ChecklistFor(year, month, now)
	if err != nil {
		return helpers.HandleError(c, err)
	}

	return c.Status(200).JSON(statuses)
}

type CompleteDeadlinePayload struct {
	Year  int    `json:"year" validate:"required"`
	Month int    `json:"month" validate:"required"`
	Notes string `json:"notes"`
}

func CompleteTaxDeadline(c *fiber.Ctx) error {
	deadlineID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(helpers.Errors{
			Errors: []string{"tax_deadline.invalid_id"},
		})
	}

	errors := new(helpers.Errors)
	payload := new(CompleteDeadlinePayload)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(400).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errors)
	if errors.Size() > 0 {
		return c.Status(400).JSON(errors)
	}

	var notes null.String
	if payload.Notes != "" {
		notes = null.StringFrom(payload.Notes)
	}

	completion, err := taxcal_service.Complete(deadlineID, payload.Year, payload.Month, helpers.Actor(c), notes)
	if err != nil {
		return helpers.HandleError(c, err)
	}

	return c.Status(201).JSON(completion)
}
