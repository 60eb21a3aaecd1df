// Package parse extracts structured service data from raw grease-trap
// invoice and manifest text. Extraction is deterministic pattern matching:
// every field has one recognizer, all recognizers run independently, and a
// field that does not match is simply absent.
package parse

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ExpectedFields is the fixed universe of fields the extractor attempts,
// in attempt order. Notes is tracked on the record but excluded from
// scoring.
var ExpectedFields = []string{
	"invoice_number",
	"service_date",
	"customer_name",
	"customer_address",
	"phone",
	"trap_size",
	"gallons_pumped",
	"technician",
	"disposal_facility",
	"invoice_total",
}

// Record is the flat extraction output. Every field is either nil or a
// non-empty trimmed string holding the exact matched substring (or its
// minimally formatted form, e.g. a re-appended unit).
type Record struct {
	InvoiceNumber    *string `json:"invoice_number"`
	ServiceDate      *string `json:"service_date"`
	CustomerName     *string `json:"customer_name"`
	CustomerAddress  *string `json:"customer_address"`
	Phone            *string `json:"phone"`
	TrapSize         *string `json:"trap_size"`
	GallonsPumped    *string `json:"gallons_pumped"`
	Technician       *string `json:"technician"`
	DisposalFacility *string `json:"disposal_facility"`
	InvoiceTotal     *string `json:"invoice_total"`
	Notes            *string `json:"notes"`
}

// Result is the scored outcome of one extraction pass.
type Result struct {
	Record          Record   `json:"record"`
	ExtractedFields []string `json:"extracted_fields"`
	MissingFields   []string `json:"missing_fields"`
	ConfidenceScore int      `json:"confidence_score"`
}

// MarshalJSON keeps the field lists as [] rather than null so the result
// is stable for API consumers.
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	a := alias(r)
	if a.ExtractedFields == nil {
		a.ExtractedFields = []string{}
	}
	if a.MissingFields == nil {
		a.MissingFields = []string{}
	}
	return json.Marshal(a)
}

var (
	invoiceRe  = regexp.MustCompile(`(?i)(?:INVOICE|INV)(?:\s*(?:NO|#|\.)|:|\s)+[:\s]*([A-Z0-9-]+)`)
	dateRe     = regexp.MustCompile(`(?i)(?:Service Date|DATE)[\s:]+([A-Za-z]+\s+\d{1,2},?\s+\d{4}|\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)
	billToRe   = regexp.MustCompile(`(?i)BILL TO[:\s]*\n\s*(.+)`)
	addressRe  = regexp.MustCompile(`(?i)(\d+\s+[\w\s]+(?:Avenue|Ave|Street|St|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Way|Parkway|Pkwy)[\s,]+[\w\s]+,?\s*[A-Z]{2}\s*\d{5})`)
	phoneRe    = regexp.MustCompile(`\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)
	trapRe     = regexp.MustCompile(`(?i)(?:Trap Size|Trap Capacity)[\s:]+([0-9,]+\s*(?:gallons?|gal))`)
	gallonsRe  = regexp.MustCompile(`(?i)(?:Gallons? Pumped|Pumped)[\s:]+([0-9,]+)\s*(?:gallons?|gal)?`)
	techRe     = regexp.MustCompile(`(?i)(?:Technician|Tech)[\s:]+([A-Za-z\s.]+?)(?:\n|$|Truck)`)
	disposalRe = regexp.MustCompile(`(?i)(?:Disposal (?:Facility|Site)|Disposed at)[\s:]+(.+)`)
	totalRe    = regexp.MustCompile(`(?i)(?:TOTAL(?: DUE)?|Amount Due|Grand Total)[\s:]+\$?([\d,]+\.?\d*)`)
)

// Extract runs every field recognizer against text and returns the
// partial record plus the names of the fields that matched, in attempt
// order. Empty or whitespace-only input yields a zero record and no
// extracted fields. Extract is pure.
func Extract(text string) (Record, []string) {
	var rec Record
	if strings.TrimSpace(text) == "" {
		return rec, nil
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var extracted []string
	found := func(name string, dst **string, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		*dst = &value
		extracted = append(extracted, name)
	}

	if m := invoiceRe.FindStringSubmatch(text); m != nil {
		found("invoice_number", &rec.InvoiceNumber, m[1])
	}
	if m := dateRe.FindStringSubmatch(text); m != nil {
		found("service_date", &rec.ServiceDate, m[1])
	}
	if m := billToRe.FindStringSubmatch(text); m != nil {
		// The line after BILL TO is the business name unless it is an
		// attention/contact line.
		name := strings.TrimSpace(m[1])
		if !strings.HasPrefix(strings.ToLower(name), "attn") {
			found("customer_name", &rec.CustomerName, name)
		}
	}
	if m := addressRe.FindStringSubmatch(text); m != nil {
		found("customer_address", &rec.CustomerAddress, m[1])
	}
	if m := phoneRe.FindString(text); m != "" {
		found("phone", &rec.Phone, m)
	}
	if m := trapRe.FindStringSubmatch(text); m != nil {
		found("trap_size", &rec.TrapSize, m[1])
	}
	if m := gallonsRe.FindStringSubmatch(text); m != nil {
		// Normalize the unit spelling regardless of the source token.
		found("gallons_pumped", &rec.GallonsPumped, strings.TrimSpace(m[1])+" gallons")
	}
	if m := techRe.FindStringSubmatch(text); m != nil {
		found("technician", &rec.Technician, m[1])
	}
	if m := disposalRe.FindStringSubmatch(text); m != nil {
		found("disposal_facility", &rec.DisposalFacility, m[1])
	}
	if m := totalRe.FindStringSubmatch(text); m != nil {
		found("invoice_total", &rec.InvoiceTotal, "$"+strings.TrimSpace(m[1]))
	}

	return rec, extracted
}

// ExtractAndScore is the sole entry point for turning raw text into a
// scored record. The confidence score is the percentage of expected
// fields found, floored to an int.
func ExtractAndScore(text string) Result {
	rec, extracted := Extract(text)

	have := make(map[string]bool, len(extracted))
	for _, f := range extracted {
		have[f] = true
	}
	missing := make([]string, 0, len(ExpectedFields))
	for _, f := range ExpectedFields {
		if !have[f] {
			missing = append(missing, f)
		}
	}

	return Result{
		Record:          rec,
		ExtractedFields: extracted,
		MissingFields:   missing,
		ConfidenceScore: len(extracted) * 100 / len(ExpectedFields),
	}
}
