package types

import "fmt"

// Domain errors, grouped by how controllers report them: validation (400),
// not-found (404), state conflicts (409/422). None are retried; each is
// terminal for the call that raised it.

type DuplicateCodeError struct {
	Code string
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("account code %s already exists", e.Code)
}

type InvalidTypeError struct {
	Field string
	Value string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Value)
}

type AccountNotFoundError struct {
	Code string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s not found", e.Code)
}

type HeaderAccountPostingError struct {
	Code string
}

func (e *HeaderAccountPostingError) Error() string {
	return fmt.Sprintf("account %s is a header account and cannot receive postings", e.Code)
}

type InsufficientLinesError struct {
	Count int
}

func (e *InsufficientLinesError) Error() string {
	return fmt.Sprintf("journal entry needs at least two lines, got %d", e.Count)
}

type MalformedLineError struct {
	Index  int
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Index, e.Reason)
}

type ImbalancedEntryError struct {
	TotalDebit  int64
	TotalCredit int64
}

func (e *ImbalancedEntryError) Error() string {
	return fmt.Sprintf("entry does not balance: debit %d != credit %d", e.TotalDebit, e.TotalCredit)
}

type PeriodNotFoundError struct {
	Year  int
	Month int
}

func (e *PeriodNotFoundError) Error() string {
	return fmt.Sprintf("fiscal period %04d-%02d does not exist", e.Year, e.Month)
}

type ClosedPeriodError struct {
	Code   string
	Status PeriodStatus
}

func (e *ClosedPeriodError) Error() string {
	return fmt.Sprintf("fiscal period %s is %s and does not accept postings", e.Code, e.Status)
}

type DuplicatePeriodError struct {
	Year  int
	Month int
}

func (e *DuplicatePeriodError) Error() string {
	return fmt.Sprintf("fiscal period %04d-%02d already exists", e.Year, e.Month)
}

type InvalidTransitionError struct {
	Code      string
	Status    PeriodStatus
	Operation string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s fiscal period %s from status %s", e.Operation, e.Code, e.Status)
}

type AlreadyClosedError struct {
	Year int
}

func (e *AlreadyClosedError) Error() string {
	return fmt.Sprintf("fiscal year %d is already closed", e.Year)
}

type PeriodsNotReadyError struct {
	Year    int
	Pending []string
}

func (e *PeriodsNotReadyError) Error() string {
	return fmt.Sprintf("fiscal year %d has periods not ready for closing: %v", e.Year, e.Pending)
}

type InvalidRangeError struct {
	Start string
	End   string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: %s > %s", e.Start, e.End)
}

type TemplateNotFoundError struct {
	ID string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("journal template %s not found", e.ID)
}

type EntryNotFoundError struct {
	ID uint64
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("journal entry %d not found", e.ID)
}

type EntryAlreadyVoidError struct {
	ID uint64
}

func (e *EntryAlreadyVoidError) Error() string {
	return fmt.Sprintf("journal entry %d is already void", e.ID)
}

type DeadlineNotFoundError struct {
	ID string
}

func (e *DeadlineNotFoundError) Error() string {
	return fmt.Sprintf("tax deadline %s not found", e.ID)
}
