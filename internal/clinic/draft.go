package clinic

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Drafts mirror the intake forms. Each draft validates its fields and
// builds an immutable record with a fresh id; records are never edited
// in place after that.

// OwnerDraft is the intake form for a new client.
type OwnerDraft struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	FarmName string `json:"farmName"`
	Address  string `json:"address"`
}

// Build validates the draft and constructs an Owner.
func (d OwnerDraft) Build(now time.Time) (Owner, error) {
	if strings.TrimSpace(d.Name) == "" {
		return Owner{}, required("name")
	}
	if strings.TrimSpace(d.Phone) == "" {
		return Owner{}, required("phone")
	}
	return Owner{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(d.Name),
		Phone:     strings.TrimSpace(d.Phone),
		Email:     strings.TrimSpace(d.Email),
		FarmName:  strings.TrimSpace(d.FarmName),
		Address:   strings.TrimSpace(d.Address),
		CreatedAt: now.UnixMilli(),
	}, nil
}

// AnimalDraft is the intake form for a new animal.
type AnimalDraft struct {
	InternalID string   `json:"internalId"`
	Name       string   `json:"name"`
	Species    Species  `json:"species"`
	Category   Category `json:"category"`
	Breed      string   `json:"breed"`
	Sex        string   `json:"sex"`
	BirthDate  string   `json:"birthDate"`
	OwnerID    string   `json:"ownerId"`
	FarmName   string   `json:"farmName"`
	Notes      string   `json:"notes"`
}

func validSpecies(s Species) bool {
	switch s {
	case SpeciesBovine, SpeciesEquine, SpeciesPorcine, SpeciesOvine,
		SpeciesCanine, SpeciesFeline, SpeciesOther:
		return true
	}
	return false
}

func validCategory(c Category) bool {
	return c == CategoryLarge || c == CategoryDomestic
}

// Build validates the draft and constructs an Animal.
func (d AnimalDraft) Build(now time.Time) (Animal, error) {
	if strings.TrimSpace(d.InternalID) == "" {
		return Animal{}, required("internalId")
	}
	if !validSpecies(d.Species) {
		return Animal{}, invalid("species", "unknown value")
	}
	if !validCategory(d.Category) {
		return Animal{}, invalid("category", "unknown value")
	}
	if strings.TrimSpace(d.Breed) == "" {
		return Animal{}, required("breed")
	}
	if d.Sex != "M" && d.Sex != "F" {
		return Animal{}, invalid("sex", `must be "M" or "F"`)
	}
	if strings.TrimSpace(d.OwnerID) == "" {
		return Animal{}, required("ownerId")
	}
	if _, ok := ParseDate(d.BirthDate); d.BirthDate != "" && !ok {
		return Animal{}, invalid("birthDate", "must be an ISO date")
	}
	return Animal{
		ID:         uuid.New().String(),
		InternalID: strings.TrimSpace(d.InternalID),
		Name:       strings.TrimSpace(d.Name),
		Species:    d.Species,
		Category:   d.Category,
		Breed:      strings.TrimSpace(d.Breed),
		Sex:        d.Sex,
		BirthDate:  d.BirthDate,
		OwnerID:    d.OwnerID,
		FarmName:   strings.TrimSpace(d.FarmName),
		Notes:      d.Notes,
		CreatedAt:  now.UnixMilli(),
	}, nil
}

// RecordDraft is the form for a new medical history entry.
type RecordDraft struct {
	AnimalID     string     `json:"animalId"`
	Date         string     `json:"date"`
	Type         RecordType `json:"type"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	MedicationID string     `json:"medicationId"`
	Dosage       string     `json:"dosage"`
	Lot          string     `json:"lot"`
	NextDoseDate string     `json:"nextDoseDate"`
}

func validRecordType(t RecordType) bool {
	switch t {
	case RecordVaccine, RecordMedication, RecordProcedure, RecordDiagnosis, RecordNote:
		return true
	}
	return false
}

// Build validates the draft and constructs a MedicalRecord. Lot and
// next-dose fields are dropped unless the type is Vaccine.
func (d RecordDraft) Build() (MedicalRecord, error) {
	if strings.TrimSpace(d.AnimalID) == "" {
		return MedicalRecord{}, required("animalId")
	}
	if _, ok := ParseDate(d.Date); !ok {
		return MedicalRecord{}, invalid("date", "must be an ISO date")
	}
	if !validRecordType(d.Type) {
		return MedicalRecord{}, invalid("type", "unknown value")
	}
	if strings.TrimSpace(d.Title) == "" {
		return MedicalRecord{}, required("title")
	}
	rec := MedicalRecord{
		ID:          uuid.New().String(),
		AnimalID:    d.AnimalID,
		Date:        d.Date,
		Type:        d.Type,
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
	}
	if d.Type == RecordVaccine {
		if _, ok := ParseDate(d.NextDoseDate); d.NextDoseDate != "" && !ok {
			return MedicalRecord{}, invalid("nextDoseDate", "must be an ISO date")
		}
		rec.Lot = strings.TrimSpace(d.Lot)
		rec.NextDoseDate = d.NextDoseDate
	}
	if d.Type == RecordMedication {
		rec.MedicationID = d.MedicationID
		rec.Dosage = strings.TrimSpace(d.Dosage)
	}
	return rec, nil
}

// TransactionDraft is the form for a new billed service.
type TransactionDraft struct {
	OwnerID       string            `json:"ownerId"`
	AnimalID      string            `json:"animalId"`
	ServiceName   string            `json:"serviceName"`
	AmountCents   Cents             `json:"amountCents"`
	Date          string            `json:"date"`
	PaymentMethod string            `json:"paymentMethod"`
	Status        TransactionStatus `json:"status"`
}

// Build validates the draft and constructs a Transaction.
func (d TransactionDraft) Build() (Transaction, error) {
	if strings.TrimSpace(d.OwnerID) == "" {
		return Transaction{}, required("ownerId")
	}
	if strings.TrimSpace(d.ServiceName) == "" {
		return Transaction{}, required("serviceName")
	}
	if d.AmountCents < 0 {
		return Transaction{}, invalid("amountCents", "must not be negative")
	}
	if _, ok := ParseDate(d.Date); !ok {
		return Transaction{}, invalid("date", "must be an ISO date")
	}
	if d.Status != StatusPaid && d.Status != StatusPending {
		return Transaction{}, invalid("status", `must be "PAID" or "PENDING"`)
	}
	return Transaction{
		ID:            uuid.New().String(),
		OwnerID:       d.OwnerID,
		AnimalID:      d.AnimalID,
		ServiceName:   strings.TrimSpace(d.ServiceName),
		AmountCents:   d.AmountCents,
		Date:          d.Date,
		PaymentMethod: strings.TrimSpace(d.PaymentMethod),
		Status:        d.Status,
	}, nil
}

// ItemDraft is the form for a new inventory item.
type ItemDraft struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Quantity   int    `json:"quantity"`
	Unit       Unit   `json:"unit"`
	ExpiryDate string `json:"expiryDate"`
	MinStock   int    `json:"minStock"`
}

func validUnit(u Unit) bool {
	switch u {
	case UnitML, UnitMG, UnitDose, UnitEach:
		return true
	}
	return false
}

// Build validates the draft and constructs an InventoryItem.
func (d ItemDraft) Build() (InventoryItem, error) {
	if strings.TrimSpace(d.Name) == "" {
		return InventoryItem{}, required("name")
	}
	if d.Quantity < 0 {
		return InventoryItem{}, invalid("quantity", "must not be negative")
	}
	if !validUnit(d.Unit) {
		return InventoryItem{}, invalid("unit", "unknown value")
	}
	if _, ok := ParseDate(d.ExpiryDate); !ok {
		return InventoryItem{}, invalid("expiryDate", "must be an ISO date")
	}
	if d.MinStock < 0 {
		return InventoryItem{}, invalid("minStock", "must not be negative")
	}
	return InventoryItem{
		ID:         uuid.New().String(),
		Name:       strings.TrimSpace(d.Name),
		Type:       strings.TrimSpace(d.Type),
		Quantity:   d.Quantity,
		Unit:       d.Unit,
		ExpiryDate: d.ExpiryDate,
		MinStock:   d.MinStock,
	}, nil
}

// LoginDraft is the login form.
type LoginDraft struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	ClinicName string `json:"clinicName"`
}

// Build validates the draft and constructs a User.
func (d LoginDraft) Build() (User, error) {
	email := strings.TrimSpace(d.Email)
	if email == "" {
		return User{}, required("email")
	}
	if !strings.Contains(email, "@") {
		return User{}, invalid("email", "must contain @")
	}
	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}
	return User{
		ID:         uuid.New().String(),
		Name:       name,
		Email:      email,
		ClinicName: strings.TrimSpace(d.ClinicName),
	}, nil
}
