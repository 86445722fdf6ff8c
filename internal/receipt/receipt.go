// Package receipt renders plain-text booking receipts.  Rendering is
// strictly read-only and sits outside the reservation protocol, so a
// failure here never affects booking state.
package receipt

import (
	"bytes"
	"fmt"
	"text/template"
)

// Data holds everything one receipt prints.
type Data struct {
	Reference      string
	Email          string
	VenueName      string
	Location       string
	SlotDate       string
	StartHour      uint8
	EndHour        uint8
	ReceivedCents  uint32
	RemainingCents uint32
}

const receiptTmpl = `================ BOOKING RECEIPT ================
Reference : {{.Reference}}
Issued to : {{.Email}}

Venue     : {{.VenueName}}
Location  : {{.Location}}
Slot      : {{.SlotDate}} {{pad .StartHour}}:00-{{pad .EndHour}}:00

Paid      : {{money .ReceivedCents}}
Due at venue: {{money .RemainingCents}}
=================================================
`

var tmpl = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": func(cents uint32) string { return fmt.Sprintf("%d.%02d", cents/100, cents%100) },
	"pad":   func(h uint8) string { return fmt.Sprintf("%02d", h) },
}).Parse(receiptTmpl))

// Render produces the receipt body for d.
func Render(d Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
