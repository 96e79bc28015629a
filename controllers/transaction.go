package controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"

	"github.com/nusabooks/ledger/controllers/helpers"
	"github.com/nusabooks/ledger/models"
	"github.com/nusabooks/ledger/services/posting_service"
)

type TransactionLinePayload struct {
	AccountCode string `json:"account_code" validate:"required"`
	Debit       string `json:"debit"`
	Credit      string `json:"credit"`
}

type CreateTransactionPayload struct {
	TransactionDate string                   `json:"transaction_date" validate:"required"`
	Description     string                   `json:"description" validate:"required"`
	ReferenceNumber string                   `json:"reference_number"`
	TemplateID      string                   `json:"template_id"`
	Amount          string                   `json:"amount"`
	Lines           []TransactionLinePayload `json:"lines"`
}

// parseAmount converts a decimal amount string to integer minor units,
// rejecting more than two decimal places.
func parseAmount(value string) (int64, bool) {
	if value == "" {
		return 0, true
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, false
	}

	minor := d.Shift(2)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, false
	}

	return minor.IntPart(), true
}

func CreateTransaction(c *fiber.Ctx) error {
	errors := new(helpers.Errors)
	payload := new(CreateTransactionPayload)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(400).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errors)
	if errors.Size() > 0 {
		return c.Status(400).JSON(errors)
	}

	date, err := time.ParseInLocation("2006-01-02", payload.TransactionDate, time.UTC)
	if err != nil {
		return c.Status(400).JSON(helpers.Errors{
			Errors: []string{"transaction.invalid_date"},
		})
	}

	var ref null.String
	if payload.ReferenceNumber != "" {
		ref = null.StringFrom(payload.ReferenceNumber)
	}

	actor := helpers.Actor(c)

	if payload.TemplateID != "" {
		templateID, err := uuid.Parse(payload.TemplateID)
		if err != nil {
			return c.Status(400).JSON(helpers.Errors{
				Errors: []string{"transaction.invalid_template_id"},
			})
		}

		amount, err := decimal.NewFromString(payload.Amount)
		if err != nil || amount.Sign() <= 0 {
			return c.Status(400).JSON(helpers.Errors{
				Errors: []string{"transaction.invalid_amount"},
			})
		}

		entry, err := posting_service.PostFromTemplate(templateID, amount, date, payload.Description, ref, actor)
		if err != nil {
			return helpers.HandleError(c, err)
		}

		return c.Status(201).JSON(entry.ToJSON())
	}

	lines := make([]posting_service.Line, 0, len(payload.Lines))
	for _, lp := range payload.Lines {
		debit, ok := parseAmount(lp.Debit)
		if !ok {
			return c.Status(400).JSON(helpers.Errors{
				Errors: []string{"transaction.invalid_debit_amount"},
			})
		}
		credit, ok := parseAmount(lp.Credit)
		if !ok {
			return c.Status(400).JSON(helpers.Errors{
				Errors: []string{"transaction.invalid_credit_amount"},
			})
		}

		lines = append(lines, posting_service.Line{
			AccountCode: lp.AccountCode,
			Debit:       debit,
			Credit:      credit,
		})
	}

	entry, err := posting_service.Post(date, payload.Description, ref, lines, actor)
	if err != nil {
		return helpers.HandleError(c, err)
	}

	return c.Status(201).JSON(entry.ToJSON())
}

func GetTransaction(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(helpers.Errors{
			Errors: []string{"transaction.invalid_id"},
		})
	}

	entry, err := models.FindEntry(id)
	if err != nil {
		return helpers.HandleError(c, err)
	}

	return c.Status(200).JSON(entry.ToJSON())
}

type ReverseTransactionPayload struct {
	Reason string `json:"reason"`
}

func ReverseTransaction(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(helpers.Errors{
			Errors: []string{"transaction.invalid_id"},
		})
	}

	payload := new(ReverseTransactionPayload)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(payload); err != nil {
			return c.Status(400).JSON(helpers.Errors{
				Errors: []string{"server.method.invalid_message_body"},
			})
		}
	}

	entry, err := posting_service.Reverse(id, payload.Reason, helpers.Actor(c))
	if err != nil {
		return helpers.HandleError(c, err)
	}

	return c.Status(200).JSON(entry.ToJSON())
}
