package domain

import (
	"strings"
	"text/template"
)

// ReceiptData is the set of fields a receipt template may reference.
type ReceiptData struct {
	Amount      string
	Currency    string
	StudentName string
	ChallanNo   string
	Sender      string
}

func RenderReceipt(text string, data ReceiptData) (string, error) {
	tmpl, err := template.New("receipt").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
