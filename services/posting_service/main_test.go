package posting_service

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nusabooks/ledger/audit"
	"github.com/nusabooks/ledger/config"
	"github.com/nusabooks/ledger/models"
	"github.com/nusabooks/ledger/types"
)

func setupTest(t *testing.T) *audit.Recorder {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	config.NewLoggerService()
	config.DataBase = db
	config.Redis = nil

	require.NoError(t, models.Migrate(db))

	recorder := &audit.Recorder{}
	audit.Gateway = recorder

	return recorder
}

func createAccount(t *testing.T, code, name string, accountType types.AccountType, normalBalance types.NormalBalance, isHeader bool) {
	t.Helper()

	_, err := models.CreateAccount(code, name, accountType, normalBalance, isHeader, false, null.String{})
	require.NoError(t, err)
}

func openPeriod(t *testing.T, year, month int) {
	t.Helper()

	_, err := models.OpenPeriod(year, month, "admin")
	require.NoError(t, err)
}

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func TestPostBalancedEntry(t *testing.T) {
	recorder := setupTest(t)
	createAccount(t, "1000", "Cash", types.TypeAsset, types.BalanceDebit, false)
	createAccount(t, "4000", "Sales", types.TypeRevenue, types.BalanceCredit, false)
	openPeriod(t, 2099, 1)
	recorder.Events = nil

	entry, err := Post(date(2099, 1, 15), "Consulting revenue", null.String{}, []Line{
		{AccountCode: "1000", Debit: 100000},
		{AccountCode: "4000", Credit: 100000},
	}, "tester")
	require.NoError(t, err)

	assert.Equal(t, types.StatusPosted, entry.Status)
	assert.Equal(t, uint64(1), entry.Seq)
	assert.Equal(t, entry.TotalDebit(), entry.TotalCredit())

	stored, err := models.FindEntry(entry.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 2)
	assert.Equal(t, int64(100000), stored.Lines[0].Debit)

	require.Len(t, recorder.Events, 1)
	assert.Equal(t, audit.KindEntryPosted, recorder.Events[0].Kind)
	assert.Equal(t, "tester", recorder.Events[0].Actor)
}

func TestPostImbalancedEntry(t *testing.T) {
	setupTest(t)
	createAccount(t, "1000", "Cash", types.TypeAsset, types.BalanceDebit, false)
	createAccount(t, "4000", "Sales", types.TypeRevenue, types.BalanceCredit, false)
	openPeriod(t, 2099, 1)

	_, err := Post(date(2099, 1, 15), "Broken", null.String{}, []Line{
		{AccountCode: "1000", Debit: 100000},
		{AccountCode: "4000", Credit: 90000},
	}, "tester")

	var imbalanced *types.ImbalancedEntryError
	require.ErrorAs(t, err, &imbalanced)
	assert.Equal(t, int64(100000), imbalanced.TotalDebit)
	assert.Equal(t, int64(90000), imbalanced.TotalCredit)

	// Nothing persisted.
	var count int64
	config.DataBase.Model(&models.JournalEntry{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestPostRejectsSingleLine(t *testing.T) {
	setupTest(t)
	createAccount(t, "1000", "Cash", types.TypeAsset, types.BalanceDebit, false)

	_, err := Post(date(2099, 1, 15), "Half an entry", null.String{}, []Line{
		{AccountCode: "1000", Debit: 100},
	}, "tester")

	var insufficient *types.InsufficientLinesError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 1, insufficient.Count)
}

func TestPostRejectsMalformedLines(t *testing.T) {
	setupTest(t)
	createAccount(t, "1000", "Cash", types.TypeAsset, types.BalanceDebit, false)
	createAccount(t, "4000", "Sales", types.TypeRevenue, types.BalanceCredit, false)
	openPeriod(t, 2099, 1)

	var malformed *types.MalformedLineError

	_, err := Post(date(2099, 1, 15), "Both sides", null.String{}, []Line{
		{AccountCode: "1000", Debit: 100, Credit: 100},
		{AccountCode: "4000", Credit: 100},
	}, "tester")
	require.ErrorAs(t, err, &malformed)

	_, err = Post(date(2099, 1, 15), "Neither side", null.String{}, []Line{
		{AccountCode: "1000"},
		{AccountCode: "4000", Credit: 100},
	}, "tester")
	require.ErrorAs(t, err, &malformed)

	_, err = Post(date(2099, 1, 15), "Negative", null.String{}, []Line{
		{AccountCode: "1000", Debit: -100},
		{AccountCode: "4000", Credit: -100},
	}, "tester")
	require.ErrorAs(t, err, &malformed)
}

func TestPostRejectsHeaderAndUnknownAccounts(t *testing.T) {
	setupTest(t)
	createAccount(t, "1", "Assets", types.TypeAsset, types.BalanceDebit, true)
	createAccount(t, "4000", "Sales", types.TypeRevenue, types.BalanceCredit, false)
	openPeriod(t, 2099, 1)

	_, err := Post(date(2099, 1, 15), "Header posting", null.String{}, []Line{
		{AccountCode: "1", Debit: 100},
		{AccountCode: "4000", Credit: 100},
	}, "tester")
	var header *types.HeaderAccountPostingError
	require.ErrorAs(t, err, &header)

	_, err = Post(date(2099, 1, 15), "Unknown account", null.String{}, []Line{
		{AccountCode: "9999", Debit: 100},
		{AccountCode: "4000", Credit: 100},
	}, "tester")
	var notFound *types.AccountNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestPostRejectsInactiveAccount(t *testing.T) {
	setupTest(t)
	createAccount(t, "1000", "Cash", types.TypeAsset, types.BalanceDebit, false)
	createAccount(t, "4000", "Sales", types.TypeRevenue, types.BalanceCredit, false)
	openPeriod(t, 2099, 1)

	_, err := models.DeactivateAccount("4000")
	require.NoError(t, err)

	_, err = Post(date(2099, 1, 15), "Into inactive", null.String{}, []Line{
		{AccountCode: "1000", Debit: 100},
		{AccountCode: "4000", Credit: 100},
	}, "tester")
	var notFound *types.AccountNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestPostPeriodGate(t *testing.T) {
	setupTest(t)
	createAccount(t, "1000", "Cash", types.TypeAsset, types.BalanceDebit, false)
	createAccount(t, "4000", "Sales", types.TypeRevenue, types.BalanceCredit, false)

	lines := []Line{
		{AccountCode: "1000", Debit: 100},
		{AccountCode: "4000", Credit: 100},
	}

	// No period yet.
	_, err := Post(date(2099, 1, 15), "No period", null.String{}, lines, "tester")
	var missing *types.PeriodNotFoundError
	require.ErrorAs(t, err, &missing)

	openPeriod(t, 2099, 1)

	// MONTH_CLOSED rejects.
	_, err = models.TransitionPeriod(2099, 1, models.OpCloseMonth, "admin", null.String{})
	require.NoError(t, err)
	_, err = Post(date(2099, 1, 15), "Closed month", null.String{}, lines, "tester")
	var closed *types.ClosedPeriodError
	require.ErrorAs(t, err, &closed)
	assert.Equal(t, types.PeriodMonthClosed, closed.Status)

	// TAX_FILED rejects.
	_, err = models.TransitionPeriod(2099, 1, models.OpFileTax, "admin", null.String{})
	require.NoError(t, err)
	_, err = Post(date(2099, 1, 15), "Filed month", null.String{}, lines, "tester")
	require.ErrorAs(t, err, &closed)
	assert.Equal(t, types.PeriodTaxFiled, closed.Status)
}

func TestPostSequencePerPeriod(t *testing.T) {
	setupTest(t)
	createAccount(t, "1000", "Cash", types.TypeAsset, types.BalanceDebit, false)
	createAccount(t, "4000", "Sales", types.TypeRevenue, types.BalanceCredit, false)
	openPeriod(t, 2099, 1)
	openPeriod(t, 2099, 2)

	lines := []Line{
		{AccountCode: "1000", Debit: 100},
		{AccountCode: "4000", Credit: 100},
	}

	first, err := Post(date(2099, 1, 10), "one", null.String{}, lines, "tester")
	require.NoError(t, err)
	second, err := Post(date(2099, 1, 20), "two", null.String{}, lines, "tester")
	require.NoError(t, err)
	other, err := Post(date(2099, 2, 1), "other period", null.String{}, lines, "tester")
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, uint64(2), second.Seq)
	assert.Equal(t, uint64(1), other.Seq)
}

func TestPostClosingEntryBypassesPeriodGate(t *testing.T) {
	setupTest(t)
	createAccount(t, "3200", "Retained earnings", types.TypeEquity, types.BalanceCredit, false)
	createAccount(t, "4000", "Sales", types.TypeRevenue, types.BalanceCredit, false)
	openPeriod(t, 2099, 12)

	_, err := models.TransitionPeriod(2099, 12, models.OpCloseMonth, "admin", null.String{})
	require.NoError(t, err)

	entry, err := PostClosingEntry(date(2099, 12, 31), "Year close", null.StringFrom("CLOSING-2099"), []Line{
		{AccountCode: "4000", Debit: 5000},
		{AccountCode: "3200", Credit: 5000},
	}, "system")
	require.NoError(t, err)
	assert.Equal(t, types.StatusPosted, entry.Status)

	// Balance and line invariants still apply on the privileged path.
	_, err = PostClosingEntry(date(2099, 12, 31), "Broken close", null.String{}, []Line{
		{AccountCode: "4000", Debit: 5000},
		{AccountCode: "3200", Credit: 4000},
	}, "system")
	var imbalanced *types.ImbalancedEntryError
	require.ErrorAs(t, err, &imbalanced)
}

func TestReverse(t *testing.T) {
	recorder := setupTest(t)
	createAccount(t, "1000", "Cash", types.TypeAsset, types.BalanceDebit, false)
	createAccount(t, "4000", "Sales", types.TypeRevenue, types.BalanceCredit, false)
	openPeriod(t, 2099, 1)
	recorder.Events = nil

	original, err := Post(date(2099, 1, 15), "Mistaken", null.String{}, []Line{
		{AccountCode: "1000", Debit: 2500},
		{AccountCode: "4000", Credit: 2500},
	}, "tester")
	require.NoError(t, err)

	voided, err := Reverse(original.ID, "keyed twice", "tester")
	require.NoError(t, err)
	assert.Equal(t, types.StatusVoid, voided.Status)
	assert.True(t, voided.VoidedAt.Valid)
	assert.Equal(t, "keyed twice", voided.VoidReason.String)

	// Lines stay in the journal untouched; only the status flips.
	stored, err := models.FindEntry(original.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusVoid, stored.Status)
	require.Len(t, stored.Lines, 2)
	assert.Equal(t, int64(2500), stored.Lines[0].Debit)

	_, err = Reverse(original.ID, "", "tester")
	var alreadyVoid *types.EntryAlreadyVoidError
	require.ErrorAs(t, err, &alreadyVoid)

	_, err = Reverse(999999, "", "tester")
	var notFound *types.EntryNotFoundError
	require.ErrorAs(t, err, &notFound)

	require.Len(t, recorder.Events, 2)
	assert.Equal(t, audit.KindEntryReversed, recorder.Events[1].Kind)
	assert.Equal(t, "keyed twice", recorder.Events[1].Subject["reason"])
}

func TestPostFromTemplate(t *testing.T) {
	setupTest(t)
	createAccount(t, "1000", "Cash", types.TypeAsset, types.BalanceDebit, false)
	createAccount(t, "4000", "Sales", types.TypeRevenue, types.BalanceCredit, false)
	createAccount(t, "2100", "VAT payable", types.TypeLiability, types.BalanceCredit, false)
	openPeriod(t, 2099, 1)

	template, err := models.CreateTemplate("Sale with VAT", []models.JournalTemplateLine{
		{Position: 0, AccountCode: "1000", Side: types.BalanceDebit, Multiplier: decimal.NewFromFloat(1.11)},
		{Position: 1, AccountCode: "4000", Side: types.BalanceCredit, Multiplier: decimal.NewFromInt(1)},
		{Position: 2, AccountCode: "2100", Side: types.BalanceCredit, Multiplier: decimal.NewFromFloat(0.11)},
	})
	require.NoError(t, err)

	entry, err := PostFromTemplate(template.ID, decimal.NewFromInt(1000), date(2099, 1, 20), "", null.String{}, "tester")
	require.NoError(t, err)

	require.Len(t, entry.Lines, 3)
	assert.Equal(t, int64(111000), entry.Lines[0].Debit)
	assert.Equal(t, int64(100000), entry.Lines[1].Credit)
	assert.Equal(t, int64(11000), entry.Lines[2].Credit)
	assert.Equal(t, "Sale with VAT", entry.Description)
}
