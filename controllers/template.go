package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nusabooks/ledger/controllers/helpers"
	"github.com/nusabooks/ledger/models"
)

type TemplateLinePayload struct {
	AccountCode string `json:"account_code" validate:"required"`
	Side        string `json:"side" validate:"required"`
	Multiplier  string `json:"multiplier" validate:"required"`
}

type CreateTemplatePayload struct {
	Name  string                `json:"name" validate:"required"`
	Lines []TemplateLinePayload `json:"lines" validate:"required"`
}

func CreateTemplate(c *fiber.Ctx) error {
	errors := new(helpers.Errors)
	payload := new(CreateTemplatePayload)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(400).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errors)
	if errors.Size() > 0 {
		return c.Status(400).JSON(errors)
	}

	lines := make([]models.JournalTemplateLine, 0, len(payload.Lines))
	for i, lp := range payload.Lines {
		multiplier, err := decimal.NewFromString(lp.Multiplier)
		if err != nil || multiplier.Sign() <= 0 {
			return c.Status(400).JSON(helpers.Errors{
				Errors: []string{"template.invalid_multiplier"},
			})
		}

		lines = append(lines, models.JournalTemplateLine{
			Position:    i,
			AccountCode: lp.AccountCode,
			Side:        lp.Side,
			Multiplier:  multiplier,
		})
	}

	template, err := models.CreateTemplate(payload.Name, lines)
	if err != nil {
		return helpers.HandleError(c, err)
	}

	return c.Status(201).JSON(template)
}

func GetTemplate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(helpers.Errors{
			Errors: []string{"template.invalid_id"},
		})
	}

	template, err := models.FindTemplate(id)
	if err != nil {
		return helpers.HandleError(c, err)
	}

	return c.Status(200).JSON(template)
}
