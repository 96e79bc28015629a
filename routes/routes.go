package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nusabooks/ledger/controllers"
)

func SetupRouter() *fiber.App {
	app := fiber.New()

	app.Post("/accounts/api", controllers.CreateAccount)
	app.Get("/accounts/api", controllers.GetAccounts)
	app.Delete("/accounts/api/:code", controllers.DeactivateAccount)

	app.Post("/transactions/api", controllers.CreateTransaction)
	app.Get("/transactions/api/:id", controllers.GetTransaction)
	app.Post("/transactions/api/:id/reverse", controllers.ReverseTransaction)

	app.Post("/templates/api", controllers.CreateTemplate)
	app.Get("/templates/api/:id", controllers.GetTemplate)

	app.Get("/fiscal-periods/api", controllers.GetPeriods)
	app.Post("/fiscal-periods/api/open", controllers.OpenPeriod)
	app.Post("/fiscal-periods/api/close-month", controllers.CloseMonth)
	app.Post("/fiscal-periods/api/file-tax", controllers.FileTax)
	app.Post("/fiscal-periods/api/reopen", controllers.ReopenPeriod)

	app.Get("/fiscal-closing/api/:year/preview", controllers.PreviewClosing)
	app.Post("/fiscal-closing/api/:year", controllers.ExecuteClosing)

	app.Get("/reports/api/cash-flow", controllers.GetCashFlowReport)

	app.Get("/tax-deadlines/api", controllers.GetTaxDeadlines)
	app.Post("/tax-deadlines/api/:id/complete", controllers.CompleteTaxDeadline)

	return app
}
