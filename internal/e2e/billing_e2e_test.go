package e2e

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

type challanBody struct {
	ChallanNo   string          `json:"challan_no"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type envelope[T any] struct {
	Data  T `json:"data"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func issueZain(t *testing.T, cycleKey string) challanBody {
	t.Helper()
	var resp envelope[struct {
		Challan challanBody `json:"challan"`
		Created bool        `json:"created"`
	}]
	status := doJSON(t, http.MethodPost, "/v1/orgs/SAIR-GLOBAL/challans", map[string]any{
		"campus_code":  "ISB-01",
		"admission_no": "ISB-2026-001",
		"frequency":    "MONTHLY",
		"cycle_key":    cycleKey,
	}, &resp)
	if status != http.StatusCreated && status != http.StatusOK {
		t.Fatalf("issue challan: status %d (%s)", status, resp.Error.Message)
	}
	return resp.Data.Challan
}

func TestE2E_HealthCheck(t *testing.T) {
	resp, err := http.Get(env.baseURL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
}

func TestE2E_IssuePayAndReceipt(t *testing.T) {
	env.gateway.setStatus(http.StatusOK)
	before := len(env.gateway.messages())

	issued := issueZain(t, "FEB26")
	if issued.ChallanNo != "CH-ISB-2026-001-FEB26" {
		t.Fatalf("unexpected challan no %q", issued.ChallanNo)
	}
	if !issued.TotalAmount.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("unexpected total %s", issued.TotalAmount)
	}

	again := issueZain(t, "feb26")
	if again.ChallanNo != issued.ChallanNo {
		t.Fatalf("reissue produced %q", again.ChallanNo)
	}

	var paid envelope[struct {
		Challan      challanBody `json:"challan"`
		Notification *struct {
			Sent   bool   `json:"sent"`
			Detail string `json:"detail"`
		} `json:"notification"`
	}]
	status := doJSON(t, http.MethodPost, "/v1/challans/CH-ISB-2026-001-FEB26/payments", map[string]any{
		"confirm":     true,
		"method":      "cash",
		"payer_phone": "0300-1234567",
	}, &paid)
	if status != http.StatusOK {
		t.Fatalf("pay: status %d (%s)", status, paid.Error.Message)
	}
	if paid.Data.Challan.Status != "PAID" {
		t.Fatalf("expected PAID, got %s", paid.Data.Challan.Status)
	}
	if paid.Data.Notification == nil || !paid.Data.Notification.Sent {
		t.Fatalf("expected receipt to be sent")
	}

	msgs := env.gateway.messages()
	if len(msgs) != before+1 {
		t.Fatalf("expected one new gateway message, got %d", len(msgs)-before)
	}
	want := "923001234567|Dear Parent, received 5000 PKR for Zain Sheikh. Thank you. - SAIREX SCHOOL"
	if msgs[len(msgs)-1] != want {
		t.Fatalf("unexpected message %q", msgs[len(msgs)-1])
	}

	var dup envelope[any]
	if status := doJSON(t, http.MethodPost, "/v1/challans/CH-ISB-2026-001-FEB26/payments", map[string]any{
		"confirm": true,
		"method":  "cash",
	}, &dup); status != http.StatusConflict {
		t.Fatalf("expected 409 on second payment, got %d", status)
	}
	if dup.Error.Type != "already_paid" {
		t.Fatalf("unexpected error type %q", dup.Error.Type)
	}
}

func TestE2E_GatewayOutageKeepsPayment(t *testing.T) {
	issueZain(t, "MAR26")
	env.gateway.setStatus(http.StatusServiceUnavailable)
	defer env.gateway.setStatus(http.StatusOK)

	var paid envelope[struct {
		Challan      challanBody `json:"challan"`
		Notification *struct {
			Sent bool `json:"sent"`
		} `json:"notification"`
	}]
	status := doJSON(t, http.MethodPost, "/v1/challans/CH-ISB-2026-001-MAR26/payments", map[string]any{
		"confirm":     true,
		"method":      "bank_transfer",
		"payer_phone": "03001234567",
	}, &paid)
	if status != http.StatusOK {
		t.Fatalf("pay: status %d (%s)", status, paid.Error.Message)
	}
	if paid.Data.Challan.Status != "PAID" {
		t.Fatalf("expected PAID, got %s", paid.Data.Challan.Status)
	}
	if paid.Data.Notification == nil || paid.Data.Notification.Sent {
		t.Fatalf("expected unsent receipt")
	}

	var row struct {
		Status   string
		Attempts int
	}
	if err := env.db.Raw(
		`SELECT status, attempts FROM notification_outbox WHERE dedupe_key = ?`,
		"payment.completed:CH-ISB-2026-001-MAR26",
	).Scan(&row).Error; err != nil {
		t.Fatalf("query outbox: %v", err)
	}
	if row.Status != "PENDING" || row.Attempts != 1 {
		t.Fatalf("expected pending outbox row after one attempt, got %s/%d", row.Status, row.Attempts)
	}
}

func TestE2E_PaymentValidation(t *testing.T) {
	issueZain(t, "APR26")

	var resp envelope[any]
	if status := doJSON(t, http.MethodPost, "/v1/challans/CH-ISB-2026-001-APR26/payments", map[string]any{
		"method": "cash",
	}, &resp); status != http.StatusBadRequest {
		t.Fatalf("expected 400 without confirm, got %d", status)
	}
	if status := doJSON(t, http.MethodPost, "/v1/challans/CH-ISB-2026-001-APR26/payments", map[string]any{
		"confirm": true,
		"method":  "cash",
		"amount":  "4999",
	}, &resp); status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for short amount, got %d", status)
	}
	if status := doJSON(t, http.MethodPost, "/v1/challans/CH-NOPE-APR26/payments", map[string]any{
		"confirm": true,
		"method":  "cash",
	}, &resp); status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown challan, got %d", status)
	}
}

func TestE2E_ResolveRule(t *testing.T) {
	var resp envelope[struct {
		Resolution string `json:"resolution"`
	}]
	if status := doJSON(t, http.MethodGet, "/v1/orgs/SAIR-GLOBAL/fee-rules/resolve?campus_code=ISB-01&grade=Grade%2010&frequency=MONTHLY", nil, &resp); status != http.StatusOK {
		t.Fatalf("resolve: status %d", status)
	}
	if resp.Data.Resolution != "unique" {
		t.Fatalf("expected unique resolution, got %q", resp.Data.Resolution)
	}

	if status := doJSON(t, http.MethodGet, "/v1/orgs/SAIR-GLOBAL/fee-rules/resolve?campus_code=ISB-01&grade=Grade%2010&frequency=ANNUAL", nil, &resp); status != http.StatusOK {
		t.Fatalf("resolve annual: status %d", status)
	}
	if resp.Data.Resolution != "none" {
		t.Fatalf("expected no annual rule, got %q", resp.Data.Resolution)
	}
}

func TestE2E_ChallanPDFAndMetrics(t *testing.T) {
	issueZain(t, "MAY26")

	resp, err := http.Get(env.baseURL + "/v1/challans/CH-ISB-2026-001-MAY26/pdf")
	if err != nil {
		t.Fatalf("pdf request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(string(body), "%PDF") {
		t.Fatalf("expected pdf, got %d", resp.StatusCode)
	}

	resp, err = http.Get(env.baseURL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "sairex_challans_issued_total") {
		t.Fatalf("challan counter not exported")
	}
}
