package pdf

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	billingdomain "github.com/smallbiznis/sairex/internal/billing/domain"
	challandomain "github.com/smallbiznis/sairex/internal/challan/domain"
	tenantdomain "github.com/smallbiznis/sairex/internal/tenant/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zainView() billingdomain.ChallanView {
	return billingdomain.ChallanView{
		Challan: challandomain.FeeChallan{
			ChallanNo:   "CH-ISB-2026-001-FEB26",
			CycleKey:    "FEB26",
			TotalAmount: decimal.NewFromInt(5000),
			Currency:    "PKR",
			IssueDate:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			DueDate:     time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC),
			Status:      challandomain.StatusUnpaid,
		},
		Organization: tenantdomain.Organization{Name: "Sair Global Education"},
		Campus:       tenantdomain.Campus{Name: "Islamabad City Campus", City: "Islamabad"},
		Student:      tenantdomain.Student{FullName: "Zain Sheikh", AdmissionNo: "ISB-2026-001", Grade: "Grade 10"},
	}
}

func TestNewChallanData(t *testing.T) {
	data := NewChallanData(zainView())
	assert.Equal(t, "5000.00", data.Amount)
	assert.Equal(t, "11 Feb 2026", data.DueDate)
	assert.Equal(t, "UNPAID", data.Status)
	assert.Empty(t, data.PaidAt)

	view := zainView()
	paidAt := time.Date(2026, 2, 6, 10, 0, 0, 0, time.UTC)
	view.Challan.Status = challandomain.StatusPaid
	view.Challan.PaidAt = &paidAt
	view.Challan.PaymentMethod = challandomain.PaymentMethodCash
	data = NewChallanData(view)
	assert.Equal(t, "06 Feb 2026", data.PaidAt)
	assert.Equal(t, "CASH", data.PaidVia)
}

func TestGenerateChallanProducesPDF(t *testing.T) {
	r, err := New().GenerateChallan(context.Background(), NewChallanData(zainView()))
	require.NoError(t, err)

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestGenerateChallanRequiresNumber(t *testing.T) {
	_, err := New().GenerateChallan(context.Background(), ChallanData{})
	require.ErrorIs(t, err, ErrMissingChallanNo)
}
