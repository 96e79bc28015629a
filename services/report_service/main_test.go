package report_service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nusabooks/ledger/audit"
	"github.com/nusabooks/ledger/config"
	"github.com/nusabooks/ledger/models"
	"github.com/nusabooks/ledger/services/posting_service"
	"github.com/nusabooks/ledger/types"
)

func setupTest(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	config.NewLoggerService()
	config.DataBase = db
	config.Redis = nil

	require.NoError(t, models.Migrate(db))

	audit.Gateway = &audit.Recorder{}
}

func seedChart(t *testing.T) {
	t.Helper()

	accounts := []struct {
		code string
		name string
		typ  types.AccountType
		bal  types.NormalBalance
		cash bool
	}{
		{"1000", "Cash", types.TypeAsset, types.BalanceDebit, true},
		{"1500", "Equipment", types.TypeAsset, types.BalanceDebit, false},
		{"2000", "Bank loan", types.TypeLiability, types.BalanceCredit, false},
		{"3000", "Owner capital", types.TypeEquity, types.BalanceCredit, false},
		{"4000", "Sales", types.TypeRevenue, types.BalanceCredit, false},
		{"5000", "Rent expense", types.TypeExpense, types.BalanceDebit, false},
	}
	for _, a := range accounts {
		_, err := models.CreateAccount(a.code, a.name, a.typ, a.bal, false, a.cash, null.String{})
		require.NoError(t, err)
	}
}

func post(t *testing.T, day time.Time, desc string, lines ...posting_service.Line) *models.JournalEntry {
	t.Helper()

	entry, err := posting_service.Post(day, desc, null.String{}, lines, "tester")
	require.NoError(t, err)
	return entry
}

func day(year, month, d int) time.Time {
	return time.Date(year, time.Month(month), d, 0, 0, 0, 0, time.UTC)
}

func TestGenerateClassifiesByCounterparty(t *testing.T) {
	setupTest(t)
	seedChart(t)
	for month := 1; month <= 3; month++ {
		_, err := models.OpenPeriod(2098, month, "admin")
		require.NoError(t, err)
	}

	// January seeds the beginning balance for a February report.
	post(t, day(2098, 1, 5), "capital injection",
		posting_service.Line{AccountCode: "1000", Debit: 500000},
		posting_service.Line{AccountCode: "3000", Credit: 500000})

	// February activity, one entry per class.
	post(t, day(2098, 2, 3), "cash sale",
		posting_service.Line{AccountCode: "1000", Debit: 120000},
		posting_service.Line{AccountCode: "4000", Credit: 120000})
	post(t, day(2098, 2, 10), "office rent",
		posting_service.Line{AccountCode: "5000", Debit: 30000},
		posting_service.Line{AccountCode: "1000", Credit: 30000})
	post(t, day(2098, 2, 14), "buy equipment",
		posting_service.Line{AccountCode: "1500", Debit: 80000},
		posting_service.Line{AccountCode: "1000", Credit: 80000})
	post(t, day(2098, 2, 20), "draw down loan",
		posting_service.Line{AccountCode: "1000", Debit: 200000},
		posting_service.Line{AccountCode: "2000", Credit: 200000})

	// March activity must not leak into the February range.
	post(t, day(2098, 3, 1), "late sale",
		posting_service.Line{AccountCode: "1000", Debit: 999},
		posting_service.Line{AccountCode: "4000", Credit: 999})

	report, err := Generate(day(2098, 2, 1), day(2098, 2, 28))
	require.NoError(t, err)

	assert.Equal(t, int64(500000), report.BeginningBalance)
	assert.Equal(t, int64(90000), report.Operating)  // 120000 sale - 30000 rent
	assert.Equal(t, int64(-80000), report.Investing) // equipment purchase
	assert.Equal(t, int64(200000), report.Financing) // loan drawdown
	assert.Equal(t, int64(210000), report.NetChange)
	assert.Equal(t, int64(710000), report.EndingBalance)
	assert.Equal(t, report.BeginningBalance+report.Operating+report.Investing+report.Financing, report.EndingBalance)
}

func TestGenerateSkipsNonCashAndVoidEntries(t *testing.T) {
	setupTest(t)
	seedChart(t)
	_, err := models.OpenPeriod(2098, 2, "admin")
	require.NoError(t, err)

	// Pure accrual, no cash line: invisible to the cash flow.
	post(t, day(2098, 2, 5), "depreciation style accrual",
		posting_service.Line{AccountCode: "5000", Debit: 40000},
		posting_service.Line{AccountCode: "2000", Credit: 40000})

	// A voided cash entry drops out too.
	mistaken := post(t, day(2098, 2, 6), "duplicate sale",
		posting_service.Line{AccountCode: "1000", Debit: 70000},
		posting_service.Line{AccountCode: "4000", Credit: 70000})
	_, err = posting_service.Reverse(mistaken.ID, "duplicate", "tester")
	require.NoError(t, err)

	report, err := Generate(day(2098, 2, 1), day(2098, 2, 28))
	require.NoError(t, err)

	assert.Equal(t, int64(0), report.Operating)
	assert.Equal(t, int64(0), report.NetChange)
	assert.Equal(t, int64(0), report.EndingBalance)
}

func TestGenerateEmptyRange(t *testing.T) {
	setupTest(t)
	seedChart(t)

	report, err := Generate(day(2098, 6, 1), day(2098, 6, 30))
	require.NoError(t, err)

	assert.Equal(t, int64(0), report.BeginningBalance)
	assert.Equal(t, int64(0), report.NetChange)
	assert.Equal(t, int64(0), report.EndingBalance)
}

func TestGenerateInvalidRange(t *testing.T) {
	setupTest(t)

	_, err := Generate(day(2098, 3, 1), day(2098, 2, 1))

	var invalid *types.InvalidRangeError
	require.ErrorAs(t, err, &invalid)
}
