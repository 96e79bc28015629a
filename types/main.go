package types

type AccountType = string

var (
	TypeAsset     AccountType = "ASSET"
	TypeLiability AccountType = "LIABILITY"
	TypeEquity    AccountType = "EQUITY"
	TypeRevenue   AccountType = "REVENUE"
	TypeExpense   AccountType = "EXPENSE"
)

type NormalBalance = string

var (
	BalanceDebit  NormalBalance = "DEBIT"
	BalanceCredit NormalBalance = "CREDIT"
)

type EntryStatus = string

var (
	StatusPosted EntryStatus = "POSTED"
	StatusVoid   EntryStatus = "VOID"
)

type PeriodStatus = string

var (
	PeriodOpen        PeriodStatus = "OPEN"
	PeriodMonthClosed PeriodStatus = "MONTH_CLOSED"
	PeriodTaxFiled    PeriodStatus = "TAX_FILED"
)

type ClosingStatus = string

var (
	ClosingNotClosed ClosingStatus = "NOT_CLOSED"
	ClosingClosed    ClosingStatus = "CLOSED"
)

// ActivityClass buckets a cash movement for the indirect-method cash flow
// report.
type ActivityClass = string

var (
	ActivityOperating ActivityClass = "operating"
	ActivityInvesting ActivityClass = "investing"
	ActivityFinancing ActivityClass = "financing"
)

func ValidAccountType(t AccountType) bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity, TypeRevenue, TypeExpense:
		return true
	}
	return false
}

func ValidNormalBalance(b NormalBalance) bool {
	return b == BalanceDebit || b == BalanceCredit
}

// Nominal reports whether accounts of this type are zeroed into retained
// earnings at year end.
func Nominal(t AccountType) bool {
	return t == TypeRevenue || t == TypeExpense
}
