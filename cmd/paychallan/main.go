// Command paychallan records a counter payment for one challan and sends the
// guardian receipt.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sairex/internal/billing"
	billingdomain "github.com/smallbiznis/sairex/internal/billing/domain"
	"github.com/smallbiznis/sairex/internal/challan"
	challandomain "github.com/smallbiznis/sairex/internal/challan/domain"
	"github.com/smallbiznis/sairex/internal/clock"
	"github.com/smallbiznis/sairex/internal/config"
	"github.com/smallbiznis/sairex/internal/feerule"
	"github.com/smallbiznis/sairex/internal/ledger"
	"github.com/smallbiznis/sairex/internal/migration"
	"github.com/smallbiznis/sairex/internal/notification"
	"github.com/smallbiznis/sairex/internal/observability"
	"github.com/smallbiznis/sairex/internal/payment"
	paymentdomain "github.com/smallbiznis/sairex/internal/payment/domain"
	"github.com/smallbiznis/sairex/internal/providers"
	"github.com/smallbiznis/sairex/internal/tenant"
	"github.com/smallbiznis/sairex/pkg/db"
	"go.uber.org/fx"
)

func main() {
	var svc billingdomain.Service
	app := fx.New(
		fx.NopLogger,
		config.Module,
		observability.Module,
		fx.Provide(func(cfg config.Config) (*snowflake.Node, error) { return snowflake.NewNode(cfg.NodeID) }),
		db.Module,
		clock.Module,
		migration.Module,
		providers.Module,
		tenant.Module,
		feerule.Module,
		ledger.Module,
		challan.Module,
		payment.Module,
		notification.Module,
		billing.Module,
		fx.Populate(&svc),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}

	runErr := run(context.Background(), os.Stdin, os.Stdout, svc)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	_ = app.Stop(stopCtx)

	if runErr != nil {
		os.Exit(1)
	}
}

// run drives one payment conversation. Business refusals are printed and end
// the session without an error; only unexpected failures are returned.
func run(ctx context.Context, in io.Reader, out io.Writer, svc billingdomain.Service) error {
	scanner := bufio.NewScanner(in)
	ask := func(prompt string) string {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			return ""
		}
		return strings.TrimSpace(scanner.Text())
	}

	challanNo := ask("Enter Challan No (e.g., CH-ISB-2026-001-FEB26): ")
	view, err := svc.GetChallan(ctx, challanNo)
	switch {
	case errors.Is(err, challandomain.ErrNotFound):
		fmt.Fprintln(out, "ERROR: Challan not found.")
		return nil
	case err != nil:
		fmt.Fprintf(out, "ERROR: %v\n", err)
		return err
	}

	if view.Challan.IsPaid() {
		fmt.Fprintln(out, "WARN: This challan is already paid.")
		return nil
	}

	fmt.Fprintf(out, "Found challan for: %s (Amount: %s %s)\n",
		view.Student.FullName, view.Challan.TotalAmount.String(), view.Challan.Currency)
	if !strings.EqualFold(ask("Confirm payment? (y/n): "), "y") {
		fmt.Fprintln(out, "Payment cancelled.")
		return nil
	}
	phone := ask("Enter Parent Mobile for Receipt (e.g. 0300..., blank uses number on file): ")

	res, err := svc.PayChallan(ctx, billingdomain.PayChallanCommand{
		ChallanNo:  view.Challan.ChallanNo,
		Confirm:    true,
		Method:     string(challandomain.PaymentMethodCash),
		PayerPhone: phone,
	})
	switch {
	case errors.Is(err, paymentdomain.ErrAlreadyPaid):
		fmt.Fprintln(out, "WARN: This challan is already paid.")
		return nil
	case err != nil:
		fmt.Fprintf(out, "ERROR: payment not recorded: %v\n", err)
		return err
	}

	fmt.Fprintln(out, "PAYMENT RECORDED.")
	switch n := res.Notification; {
	case n == nil:
		fmt.Fprintln(out, "No guardian phone available; receipt not sent.")
	case n.Sent:
		fmt.Fprintf(out, "Receipt sent: %s\n", n.Detail)
	default:
		fmt.Fprintf(out, "Receipt not sent (%s).\n", n.Detail)
	}
	return nil
}
