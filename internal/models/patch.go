package models

import (
	"github.com/google/uuid"

	"github.com/trapcrm/backend/internal/normalize"
)

// Patch structs carry partial updates: a field absent from the JSON body
// stays nil and leaves the stored value untouched. A present field
// overwrites; patches cannot null out a stored value.

type JobPatch struct {
	CustomerID *uuid.UUID `json:"customer_id"`
	SiteID     *uuid.UUID `json:"site_id"`
	AssetID    *uuid.UUID `json:"asset_id"`

	Status *JobStatus `json:"status"`

	ScheduledDate *string `json:"scheduled_date"` // ISO date
	ServiceDate   *string `json:"service_date"`   // ISO date or any parseable form

	InvoiceNumber    *string `json:"invoice_number"`
	ManifestNumber   *string `json:"manifest_number"`
	CustomerName     *string `json:"customer_name"`
	CustomerAddress  *string `json:"customer_address"`
	Phone            *string `json:"phone"`
	TrapSize         *string `json:"trap_size"`
	GallonsPumped    *string `json:"gallons_pumped"` // string form, re-normalized
	InvoiceTotal     *string `json:"invoice_total"`  // string form, re-normalized
	Technician       *string `json:"technician"`
	TruckID          *string `json:"truck_id"`
	DisposalFacility *string `json:"disposal_facility"`
	Notes            *string `json:"notes"`
}

// Apply copies the present patch fields onto the job. Money, gallons and
// service date arrive as strings and are re-normalized: the typed value is
// set when parsing succeeds and cleared when it fails, while the raw
// string is always retained.
func (p *JobPatch) Apply(j *Job) {
	if p.CustomerID != nil {
		j.CustomerID = p.CustomerID
	}
	if p.SiteID != nil {
		j.SiteID = p.SiteID
	}
	if p.AssetID != nil {
		j.AssetID = p.AssetID
	}
	if p.Status != nil {
		j.Status = *p.Status
	}
	if p.ScheduledDate != nil {
		if d, ok := normalize.DateFromString(*p.ScheduledDate); ok {
			j.ScheduledDate = &d
		} else {
			j.ScheduledDate = nil
		}
	}
	if p.ServiceDate != nil {
		j.ServiceDateRaw = p.ServiceDate
		if d, ok := normalize.DateFromString(*p.ServiceDate); ok {
			j.ServiceDate = &d
		} else {
			j.ServiceDate = nil
		}
	}
	if p.InvoiceNumber != nil {
		j.InvoiceNumber = p.InvoiceNumber
	}
	if p.ManifestNumber != nil {
		j.ManifestNumber = p.ManifestNumber
	}
	if p.CustomerName != nil {
		j.CustomerName = p.CustomerName
	}
	if p.CustomerAddress != nil {
		j.CustomerAddress = p.CustomerAddress
	}
	if p.Phone != nil {
		j.Phone = p.Phone
	}
	if p.TrapSize != nil {
		j.TrapSize = p.TrapSize
	}
	if p.GallonsPumped != nil {
		j.GallonsPumpedRaw = p.GallonsPumped
		if v, ok := normalize.GallonsFromString(*p.GallonsPumped); ok {
			j.GallonsPumped = &v
		} else {
			j.GallonsPumped = nil
		}
	}
	if p.InvoiceTotal != nil {
		j.InvoiceTotalRaw = p.InvoiceTotal
		if c, ok := normalize.CentsFromString(*p.InvoiceTotal); ok {
			j.InvoiceTotalCents = &c
		} else {
			j.InvoiceTotalCents = nil
		}
	}
	if p.Technician != nil {
		j.Technician = p.Technician
	}
	if p.TruckID != nil {
		j.TruckID = p.TruckID
	}
	if p.DisposalFacility != nil {
		j.DisposalFacility = p.DisposalFacility
	}
	if p.Notes != nil {
		j.Notes = p.Notes
	}
}

type CustomerPatch struct {
	Name           *string `json:"name"`
	LegalName      *string `json:"legal_name"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email"`
	BillingAddress *string `json:"billing_address"`
	ServiceAddress *string `json:"service_address"`
	City           *string `json:"city"`
	State          *string `json:"state"`
	ZipCode        *string `json:"zip_code"`
	Notes          *string `json:"notes"`
	IsActive       *bool   `json:"is_active"`
}

func (p *CustomerPatch) Apply(c *Customer) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.LegalName != nil {
		c.LegalName = p.LegalName
	}
	if p.Phone != nil {
		c.Phone = p.Phone
	}
	if p.Email != nil {
		c.Email = p.Email
	}
	if p.BillingAddress != nil {
		c.BillingAddress = p.BillingAddress
	}
	if p.ServiceAddress != nil {
		c.ServiceAddress = p.ServiceAddress
	}
	if p.City != nil {
		c.City = p.City
	}
	if p.State != nil {
		c.State = p.State
	}
	if p.ZipCode != nil {
		c.ZipCode = p.ZipCode
	}
	if p.Notes != nil {
		c.Notes = p.Notes
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
}

type SitePatch struct {
	CustomerID           *uuid.UUID        `json:"customer_id"`
	Name                 *string           `json:"name"`
	Address              *string           `json:"address"`
	City                 *string           `json:"city"`
	State                *string           `json:"state"`
	ZipCode              *string           `json:"zip_code"`
	Municipality         *string           `json:"municipality"`
	SewerAuthority       *string           `json:"sewer_authority"`
	PermitNumber         *string           `json:"permit_number"`
	TrapType             *TrapType         `json:"trap_type"`
	TrapSize             *string           `json:"trap_size"`
	TrapLocation         *string           `json:"trap_location"`
	ServiceFrequency     *ServiceFrequency `json:"service_frequency"`
	ServiceFrequencyDays *int              `json:"service_frequency_days"`
	LastServiceDate      *string           `json:"last_service_date"` // ISO date
	NextServiceDate      *string           `json:"next_service_date"` // ISO date
	AccessNotes          *string           `json:"access_notes"`
	Notes                *string           `json:"notes"`
	IsActive             *bool             `json:"is_active"`
}

func (p *SitePatch) Apply(s *Site) {
	if p.CustomerID != nil {
		s.CustomerID = p.CustomerID
	}
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Address != nil {
		s.Address = p.Address
	}
	if p.City != nil {
		s.City = p.City
	}
	if p.State != nil {
		s.State = p.State
	}
	if p.ZipCode != nil {
		s.ZipCode = p.ZipCode
	}
	if p.Municipality != nil {
		s.Municipality = p.Municipality
	}
	if p.SewerAuthority != nil {
		s.SewerAuthority = p.SewerAuthority
	}
	if p.PermitNumber != nil {
		s.PermitNumber = p.PermitNumber
	}
	if p.TrapType != nil {
		s.TrapType = p.TrapType
	}
	if p.TrapSize != nil {
		s.TrapSize = p.TrapSize
	}
	if p.TrapLocation != nil {
		s.TrapLocation = p.TrapLocation
	}
	if p.ServiceFrequency != nil {
		s.ServiceFrequency = p.ServiceFrequency
	}
	if p.ServiceFrequencyDays != nil {
		s.ServiceFrequencyDays = p.ServiceFrequencyDays
	}
	if p.LastServiceDate != nil {
		if d, ok := normalize.DateFromString(*p.LastServiceDate); ok {
			s.LastServiceDate = &d
		} else {
			s.LastServiceDate = nil
		}
	}
	if p.NextServiceDate != nil {
		if d, ok := normalize.DateFromString(*p.NextServiceDate); ok {
			s.NextServiceDate = &d
		} else {
			s.NextServiceDate = nil
		}
	}
	if p.AccessNotes != nil {
		s.AccessNotes = p.AccessNotes
	}
	if p.Notes != nil {
		s.Notes = p.Notes
	}
	if p.IsActive != nil {
		s.IsActive = *p.IsActive
	}
}
