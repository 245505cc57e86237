package invoice

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstudio/backend/internal/domain/shared"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newDraft(t *testing.T) *Invoice {
	t.Helper()
	inv, err := NewInvoice(Client{Name: "Pekárna Novák s.r.o.", Email: "Info@Pekarna.cz", ICO: "12345678", DIC: "cz12345678"}, CurrencyCZK, shared.LocaleCS)
	require.NoError(t, err)
	return inv
}

func mustItem(t *testing.T, desc, qty, price, rate string) Item {
	t.Helper()
	it, err := NewItem(desc, dec(qty), "", dec(price), dec(rate))
	require.NoError(t, err)
	return it
}

func TestNewInvoice(t *testing.T) {
	inv := newDraft(t)
	assert.Equal(t, StatusDraft, inv.Status)
	assert.Equal(t, "info@pekarna.cz", inv.Client.Email)
	assert.Equal(t, "CZ12345678", inv.Client.DIC)
	assert.Equal(t, DefaultPaymentTermsDays, inv.PaymentTermsDays)
	assert.Empty(t, inv.Number)

	_, err := NewInvoice(Client{Name: ""}, CurrencyCZK, shared.LocaleCS)
	assert.Error(t, err)
	_, err = NewInvoice(Client{Name: "X"}, Currency("USD"), shared.LocaleCS)
	assert.Error(t, err)
}

func TestItem_Validate(t *testing.T) {
	_, err := NewItem("", dec("1"), "", dec("100"), dec("21"))
	assert.Error(t, err)
	_, err = NewItem("Web", dec("0"), "", dec("100"), dec("21"))
	assert.Error(t, err)
	_, err = NewItem("Web", dec("1"), "", dec("-1"), dec("21"))
	assert.Error(t, err)
	_, err = NewItem("Web", dec("1"), "", dec("100"), dec("15"))
	assert.Error(t, err)

	it, err := NewItem("Web", dec("1"), "", dec("100"), dec("12"))
	require.NoError(t, err)
	assert.Equal(t, "ks", it.Unit)
}

func TestInvoice_Totals(t *testing.T) {
	inv := newDraft(t)
	require.NoError(t, inv.ReplaceItems([]Item{
		mustItem(t, "Tvorba webu", "1", "25000", "21"),
		mustItem(t, "Hosting", "12", "199.90", "21"),
		mustItem(t, "Školení", "2.5", "1000.333", "12"),
	}))

	// 25000 + 2398.80 + 2500.83
	assert.True(t, dec("29899.63").Equal(inv.Subtotal()), inv.Subtotal().String())
	// 5250 + 503.75 + 300.10
	assert.True(t, dec("6053.85").Equal(inv.VATTotal()), inv.VATTotal().String())
	assert.True(t, dec("35953.48").Equal(inv.Total()), inv.Total().String())

	assert.Equal(t, 1, inv.Items[0].Position)
	assert.Equal(t, 3, inv.Items[2].Position)

	breakdown := inv.VATBreakdown()
	require.Len(t, breakdown, 2)
	assert.True(t, dec("12").Equal(breakdown[0].Rate))
	assert.True(t, dec("300.10").Equal(breakdown[0].VAT))
	assert.True(t, dec("21").Equal(breakdown[1].Rate))
	assert.True(t, dec("27398.80").Equal(breakdown[1].Net))
}

func TestInvoice_Lifecycle(t *testing.T) {
	issueAt := time.Date(2026, 1, 30, 15, 45, 0, 0, time.UTC)

	t.Run("cannot issue without items", func(t *testing.T) {
		inv := newDraft(t)
		assert.Error(t, inv.Issue("2026-0001", issueAt))
	})

	t.Run("issue sets number and due date", func(t *testing.T) {
		inv := newDraft(t)
		require.NoError(t, inv.ReplaceItems([]Item{mustItem(t, "Web", "1", "1000", "21")}))
		inv.ClearEvents()

		require.NoError(t, inv.Issue(FormatNumber(2026, 7), issueAt))
		assert.Equal(t, "2026-0007", inv.Number)
		assert.Equal(t, "20260007", inv.VariableSymbol())
		assert.Equal(t, time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC), *inv.IssueDate)
		assert.Equal(t, time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC), *inv.DueDate)

		events := inv.PendingEvents()
		require.Len(t, events, 1)
		ev := events[0].(*InvoiceIssuedEvent)
		assert.True(t, dec("1210").Equal(ev.Total))

		assert.Error(t, inv.ReplaceItems(nil), "issued invoice is read-only")
		assert.Error(t, inv.SetNotes("x"))
		assert.Error(t, inv.CanDelete())
		assert.Error(t, inv.Issue("2026-0008", issueAt))
	})

	t.Run("overdue only when issued and past due", func(t *testing.T) {
		inv := newDraft(t)
		require.NoError(t, inv.ReplaceItems([]Item{mustItem(t, "Web", "1", "1000", "21")}))
		require.NoError(t, inv.Issue("2026-0001", issueAt))

		assert.False(t, inv.IsOverdue(time.Date(2026, 2, 13, 23, 0, 0, 0, time.UTC)))
		assert.True(t, inv.IsOverdue(time.Date(2026, 2, 14, 0, 1, 0, 0, time.UTC)))

		require.NoError(t, inv.MarkPaid(time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, StatusPaid, inv.Status)
		assert.False(t, inv.IsOverdue(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
		assert.Error(t, inv.Cancel())
	})

	t.Run("mark paid requires issued", func(t *testing.T) {
		inv := newDraft(t)
		assert.Error(t, inv.MarkPaid(issueAt))
	})

	t.Run("cancel draft", func(t *testing.T) {
		inv := newDraft(t)
		require.NoError(t, inv.Cancel())
		assert.Equal(t, StatusCancelled, inv.Status)
		assert.Error(t, inv.Cancel())
	})

	t.Run("payment terms bounds", func(t *testing.T) {
		inv := newDraft(t)
		assert.Error(t, inv.SetPaymentTerms(-1))
		assert.Error(t, inv.SetPaymentTerms(400))
		require.NoError(t, inv.SetPaymentTerms(30))
		assert.Equal(t, 30, inv.PaymentTermsDays)
	})
}
