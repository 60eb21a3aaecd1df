package models

import "fmt"

// Enum values are persisted and exported as their display-label strings.
// The exact spellings round-trip through storage and JSON, so they must
// not change.

type JobStatus string

const (
	StatusScheduled  JobStatus = "Scheduled"
	StatusInProgress JobStatus = "In Progress"
	StatusCompleted  JobStatus = "Completed"
	StatusVerified   JobStatus = "Verified"
	StatusInvoiced   JobStatus = "Invoiced"
	StatusNeedsDocs  JobStatus = "Needs Docs"
	StatusRejected   JobStatus = "Rejected"
	// Legacy statuses still present in stored data.
	StatusDraft    JobStatus = "Draft"
	StatusExported JobStatus = "Exported"
)

var jobStatuses = map[JobStatus]bool{
	StatusScheduled:  true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusVerified:   true,
	StatusInvoiced:   true,
	StatusNeedsDocs:  true,
	StatusRejected:   true,
	StatusDraft:      true,
	StatusExported:   true,
}

// ParseJobStatus rejects unknown values. A status read back from storage
// that fails here indicates corrupted or migrated-badly data and must
// surface as an error, not be coerced to a default.
func ParseJobStatus(s string) (JobStatus, error) {
	if jobStatuses[JobStatus(s)] {
		return JobStatus(s), nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

type DocumentType string

const (
	DocInvoice    DocumentType = "invoice"
	DocManifest   DocumentType = "manifest"
	DocInspection DocumentType = "inspection"
	DocPhoto      DocumentType = "photo"
	DocSignature  DocumentType = "signature"
	DocOther      DocumentType = "other"
)

var documentTypes = map[DocumentType]bool{
	DocInvoice:    true,
	DocManifest:   true,
	DocInspection: true,
	DocPhoto:      true,
	DocSignature:  true,
	DocOther:      true,
}

func ParseDocumentType(s string) (DocumentType, error) {
	if documentTypes[DocumentType(s)] {
		return DocumentType(s), nil
	}
	return "", fmt.Errorf("unknown document type %q", s)
}

type ServiceFrequency string

const (
	FreqWeekly     ServiceFrequency = "Weekly"
	FreqBiWeekly   ServiceFrequency = "Bi-Weekly"
	FreqMonthly    ServiceFrequency = "Monthly"
	FreqQuarterly  ServiceFrequency = "Quarterly"
	FreqSemiAnnual ServiceFrequency = "Semi-Annual"
	FreqAnnual     ServiceFrequency = "Annual"
	FreqOnCall     ServiceFrequency = "On Call"
)

var serviceFrequencies = map[ServiceFrequency]bool{
	FreqWeekly:     true,
	FreqBiWeekly:   true,
	FreqMonthly:    true,
	FreqQuarterly:  true,
	FreqSemiAnnual: true,
	FreqAnnual:     true,
	FreqOnCall:     true,
}

func ParseServiceFrequency(s string) (ServiceFrequency, error) {
	if serviceFrequencies[ServiceFrequency(s)] {
		return ServiceFrequency(s), nil
	}
	return "", fmt.Errorf("unknown service frequency %q", s)
}

type TrapType string

const (
	TrapInterior    TrapType = "Interior"
	TrapExterior    TrapType = "Exterior"
	TrapInterceptor TrapType = "Interceptor"
	TrapUnderground TrapType = "Underground"
)
