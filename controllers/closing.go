package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/nusabooks/ledger/controllers/helpers"
	"github.com/nusabooks/ledger/services/closing_service"
)

func parseYear(c *fiber.Ctx) (int, bool) {
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}

func PreviewClosing(c *fiber.Ctx) error {
	year, ok := parseYear(c)
	if !ok {
		return c.Status(400).JSON(helpers.Errors{
			Errors: []string{"closing.invalid_year"},
		})
	}

	preview, err := closing_service.Preview(year)
	if err != nil {
		return helpers.HandleError(c, err)
	}

	return c.Status(200).JSON(preview)
}

func ExecuteClosing(c *fiber.Ctx) error {
	year, ok := parseYear(c)
	if !ok {
		return c.Status(400).JSON(helpers.Errors{
			Errors: []string{"closing.invalid_year"},
		})
	}

	closing, entry, err := closing_service.Execute(year, helpers.Actor(c))
	if err != nil {
		return helpers.HandleError(c, err)
	}

	response := fiber.Map{"closing": closing}
	if entry != nil {
		response["entry"] = entry.ToJSON()
	}

	return c.Status(201).JSON(response)
}
