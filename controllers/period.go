package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/volatiletech/null"

	"github.com/nusabooks/ledger/controllers/helpers"
	"github.com/nusabooks/ledger/models"
)

type PeriodPayload struct {
	Year  int    `json:"year" validate:"required"`
	Month int    `json:"month" validate:"required"`
	Notes string `json:"notes"`
}

func parsePeriodPayload(c *fiber.Ctx) (*PeriodPayload, error) {
	errors := new(helpers.Errors)
	payload := new(PeriodPayload)

	if err := c.BodyParser(payload); err != nil {
		return nil, c.Status(400).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errors)
	if errors.Size() > 0 {
		return nil, c.Status(400).JSON(errors)
	}

	return payload, nil
}

func OpenPeriod(c *fiber.Ctx) error {
	payload, err := parsePeriodPayload(c)
	if payload == nil {
		return err
	}

	period, err := models.OpenPeriod(payload.Year, payload.Month, helpers.Actor(c))
	if err != nil {
		return helpers.HandleError(c, err)
	}

	return c.Status(201).JSON(period)
}

func transitionPeriod(c *fiber.Ctx, op models.PeriodOperation) error {
	payload, err := parsePeriodPayload(c)
	if payload == nil {
		return err
	}

	var notes null.String
	if payload.Notes != "" {
		notes = null.StringFrom(payload.Notes)
	}

	period, err := models.TransitionPeriod(payload.Year, payload.Month, op, helpers.Actor(c), notes)
	if err != nil {
		return helpers.HandleError(c, err)
	}

	return c.Status(200).JSON(period)
}

func CloseMonth(c *fiber.Ctx) error {
	return transitionPeriod(c, models.OpCloseMonth)
}

func FileTax(c *fiber.Ctx) error {
	return transitionPeriod(c, models.OpFileTax)
}

func ReopenPeriod(c *fiber.Ctx) error {
	return transitionPeriod(c, models.OpReopen)
}

func GetPeriods(c *fiber.Ctx) error {
	year, _ := strconv.Atoi(c.Query("year"))

	periods, err := models.ListPeriods(year)
	if err != nil {
		return helpers.HandleError(c, err)
	}

	return c.Status(200).JSON(periods)
}
