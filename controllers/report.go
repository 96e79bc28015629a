package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nusabooks/ledger/controllers/helpers"
	"github.com/nusabooks/ledger/services/report_service"
)

func GetCashFlowReport(c *fiber.Ctx) error {
	start, err := time.ParseInLocation("2006-01-02", c.Query("start"), time.UTC)
	if err != nil {
		return c.Status(400).JSON(helpers.Errors{
			Errors: []string{"report.invalid_start_date"},
		})
	}

	end, err := time.ParseInLocation("2006-01-02", c.Query("end"), time.UTC)
	if err != nil {
		return c.Status(400).JSON(helpers.Errors{
			Errors: []string{"report.invalid_end_date"},
		})
	}

	report, err := report_service.Generate(start, end)
	if err != nil {
		return helpers.HandleError(c, err)
	}

	return c.Status(200).JSON(report.ToJSON())
}
