package pdf

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/linestyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	billingdomain "github.com/smallbiznis/sairex/internal/billing/domain"
	challandomain "github.com/smallbiznis/sairex/internal/challan/domain"
)

const dateLayout = "02 Jan 2006"

var ErrMissingChallanNo = errors.New("challan_no_required")

// copies printed on every challan, cut apart at the bank counter.
var copies = []string{"Bank Copy", "School Copy", "Student Copy"}

// ChallanData is the printable form of a challan.
type ChallanData struct {
	OrgName     string
	CampusName  string
	CampusCity  string
	ChallanNo   string
	CycleKey    string
	IssueDate   string
	DueDate     string
	StudentName string
	AdmissionNo string
	Grade       string
	FeeLabel    string
	Amount      string
	Currency    string
	Status      string
	PaidAt      string
	PaidVia     string
}

func NewChallanData(view billingdomain.ChallanView) ChallanData {
	c := view.Challan
	data := ChallanData{
		OrgName:     view.Organization.Name,
		CampusName:  view.Campus.Name,
		CampusCity:  view.Campus.City,
		ChallanNo:   c.ChallanNo,
		CycleKey:    c.CycleKey,
		IssueDate:   c.IssueDate.Format(dateLayout),
		DueDate:     c.DueDate.Format(dateLayout),
		StudentName: view.Student.FullName,
		AdmissionNo: view.Student.AdmissionNo,
		Grade:       view.Student.Grade,
		FeeLabel:    "Tuition fee " + c.CycleKey,
		Amount:      c.TotalAmount.StringFixed(2),
		Currency:    c.Currency,
		Status:      string(c.Status),
	}
	if c.Status == challandomain.StatusPaid && c.PaidAt != nil {
		data.PaidAt = c.PaidAt.Format(dateLayout)
		data.PaidVia = string(c.PaymentMethod)
	}
	return data
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateChallan(ctx context.Context, data ChallanData) (io.Reader, error) {
	if strings.TrimSpace(data.ChallanNo) == "" {
		return nil, ErrMissingChallanNo
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)
	for i, label := range copies {
		if i > 0 {
			m.AddRow(6, line.NewCol(12, props.Line{Style: linestyle.Dashed}))
		}
		addCopy(m, data, label)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}

func addCopy(m core.Maroto, data ChallanData, label string) {
	m.AddRow(10,
		text.NewCol(8, data.OrgName, props.Text{Size: 13, Style: fontstyle.Bold, Align: align.Left}),
		text.NewCol(4, label, props.Text{Size: 9, Style: fontstyle.Italic, Align: align.Right}),
	)
	m.AddRow(6,
		text.NewCol(12, data.CampusName+", "+data.CampusCity, props.Text{Size: 9}),
	)

	m.AddRow(18,
		col.New(6).Add(
			text.New("Challan no: "+data.ChallanNo, props.Text{Size: 9, Style: fontstyle.Bold}),
			text.New("Issued: "+data.IssueDate, props.Text{Size: 9, Top: 5}),
			text.New("Due: "+data.DueDate, props.Text{Size: 9, Top: 10}),
		),
		col.New(6).Add(
			text.New(data.StudentName, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
			text.New("Admission no: "+data.AdmissionNo, props.Text{Size: 9, Top: 5, Align: align.Right}),
			text.New(data.Grade, props.Text{Size: 9, Top: 10, Align: align.Right}),
		),
	)

	m.AddRow(7,
		text.NewCol(8, "Description", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(4, "Amount ("+data.Currency+")", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(7,
		text.NewCol(8, data.FeeLabel, props.Text{Size: 9}),
		text.NewCol(4, data.Amount, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		text.NewCol(8, "Total payable", props.Text{Size: 10, Style: fontstyle.Bold}),
		text.NewCol(4, data.Amount, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
	)

	status := data.Status
	if data.PaidAt != "" {
		status = "PAID on " + data.PaidAt + " (" + data.PaidVia + ")"
	}
	m.AddRow(8,
		text.NewCol(12, "Status: "+status, props.Text{Size: 9, Style: fontstyle.Bold}),
	)
}
