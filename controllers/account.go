package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/volatiletech/null"

	"github.com/nusabooks/ledger/controllers/helpers"
	"github.com/nusabooks/ledger/models"
)

type CreateAccountPayload struct {
	Code          string `json:"code" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Type          string `json:"type" validate:"required"`
	NormalBalance string `json:"normal_balance" validate:"required"`
	IsHeader      bool   `json:"is_header"`
	Cash          bool   `json:"cash"`
	ParentCode    string `json:"parent_code"`
}

func CreateAccount(c *fiber.Ctx) error {
	errors := new(helpers.Errors)
	payload := new(CreateAccountPayload)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(400).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errors)
	if errors.Size() > 0 {
		return c.Status(400).JSON(errors)
	}

	var parent null.String
	if payload.ParentCode != "" {
		parent = null.StringFrom(payload.ParentCode)
	}

	account, err := models.CreateAccount(payload.Code, payload.Name, payload.Type, payload.NormalBalance, payload.IsHeader, payload.Cash, parent)
	if err != nil {
		return helpers.HandleError(c, err)
	}

	return c.Status(201).JSON(account)
}

func GetAccounts(c *fiber.Ctx) error {
	accounts, err := models.ListAccounts()
	if err != nil {
		return helpers.HandleError(c, err)
	}

	return c.Status(200).JSON(accounts)
}

func DeactivateAccount(c *fiber.Ctx) error {
	account, err := models.DeactivateAccount(c.Params("code"))
	if err != nil {
		return helpers.HandleError(c, err)
	}

	return c.Status(200).JSON(account)
}
