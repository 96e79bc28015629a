package helpers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gookit/validate"

	"github.com/nusabooks/ledger/types"
)

type Errors struct {
	Errors []string `json:"errors"`
}

func (e Errors) Size() int {
	return len(e.Errors)
}

func Validate(payload interface{}, err_src *Errors) {
	v := validate.Struct(payload)
	if !v.Validate() {
		for _, errs := range v.Errors.All() {
			for _, err := range errs {
				err_src.Errors = append(err_src.Errors, err)
			}
		}
	}
}

// HandleError maps the domain error taxonomy to HTTP statuses: validation
// 400, not-found 404, state conflicts 409, rejected transitions and
// not-ready years 422. Anything unrecognized is a 500.
func HandleError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch err.(type) {
	case *types.InvalidTypeError,
		*types.InsufficientLinesError,
		*types.MalformedLineError,
		*types.ImbalancedEntryError,
		*types.HeaderAccountPostingError,
		*types.InvalidRangeError:
		status = fiber.StatusBadRequest
	case *types.AccountNotFoundError,
		*types.PeriodNotFoundError,
		*types.TemplateNotFoundError,
		*types.EntryNotFoundError,
		*types.DeadlineNotFoundError:
		status = fiber.StatusNotFound
	case *types.DuplicateCodeError,
		*types.DuplicatePeriodError,
		*types.ClosedPeriodError,
		*types.AlreadyClosedError,
		*types.EntryAlreadyVoidError:
		status = fiber.StatusConflict
	case *types.InvalidTransitionError,
		*types.PeriodsNotReadyError:
		status = fiber.StatusUnprocessableEntity
	}

	return c.Status(status).JSON(Errors{Errors: []string{err.Error()}})
}

// Actor identifies the operator for audit events. Authentication is handled
// upstream; the gateway forwards the identity in a header.
func Actor(c *fiber.Ctx) string {
	actor := c.Get("X-Actor")
	if actor == "" {
		return "anonymous"
	}
	return actor
}
