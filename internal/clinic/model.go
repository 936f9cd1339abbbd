// Package clinic defines the practice's domain records: owners, animals,
// medical history, finance, inventory, and the logged-in user.
package clinic

import (
	"fmt"
	"time"
)

// Species is the animal species. Values match the labels the practice
// uses on paper records, so they round-trip through exports unchanged.
type Species string

const (
	SpeciesBovine  Species = "Bovino"
	SpeciesEquine  Species = "Equino"
	SpeciesPorcine Species = "Suíno"
	SpeciesOvine   Species = "Ovino"
	SpeciesCanine  Species = "Cão"
	SpeciesFeline  Species = "Gato"
	SpeciesOther   Species = "Outro"
)

// Category splits the herd between farm livestock and household pets.
type Category string

const (
	CategoryLarge    Category = "Grande Porte"
	CategoryDomestic Category = "Doméstico"
)

// RecordType classifies a medical history entry.
type RecordType string

const (
	RecordVaccine    RecordType = "Vaccine"
	RecordMedication RecordType = "Medication"
	RecordProcedure  RecordType = "Procedure"
	RecordDiagnosis  RecordType = "Diagnosis"
	RecordNote       RecordType = "Note"
)

// TransactionStatus is the payment state of a transaction.
type TransactionStatus string

const (
	StatusPaid    TransactionStatus = "PAID"
	StatusPending TransactionStatus = "PENDING"
)

// Unit is the stock-keeping unit of an inventory item.
type Unit string

const (
	UnitML   Unit = "ml"
	UnitMG   Unit = "mg"
	UnitDose Unit = "dose"
	UnitEach Unit = "unidade"
)

// Cents is a monetary amount in integer centavos. All aggregation is done
// on integers so repeated sums never drift.
type Cents int64

// BRL renders the amount as a display string, e.g. "R$ 1.234,56".
func (c Cents) BRL() string {
	neg := ""
	v := int64(c)
	if v < 0 {
		neg = "-"
		v = -v
	}
	whole := v / 100
	frac := v % 100

	// Group the integer part with dots, Brazilian style.
	s := fmt.Sprintf("%d", whole)
	var grouped []byte
	for i, ch := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			grouped = append(grouped, '.')
		}
		grouped = append(grouped, ch)
	}
	return fmt.Sprintf("%sR$ %s,%02d", neg, grouped, frac)
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO calendar date. Returns the zero time and false
// when the string is empty or malformed.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Owner is a client of the practice.
type Owner struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	FarmName  string `json:"farmName,omitempty"`
	Address   string `json:"address,omitempty"`
	CreatedAt int64  `json:"createdAt"` // epoch milliseconds
}

// Animal is a registered animal. InternalID is the number the clinic
// assigns on intake; it is a display label and is not guaranteed unique
// across owners, so it must never be used as a lookup key.
type Animal struct {
	ID         string   `json:"id"`
	InternalID string   `json:"internalId"`
	Name       string   `json:"name,omitempty"`
	Species    Species  `json:"species"`
	Category   Category `json:"category"`
	Breed      string   `json:"breed"`
	Sex        string   `json:"sex"` // "M" or "F"
	BirthDate  string   `json:"birthDate,omitempty"` // ISO date
	OwnerID    string   `json:"ownerId"`
	FarmName   string   `json:"farmName,omitempty"`
	Notes      string   `json:"notes,omitempty"`
	CreatedAt  int64    `json:"createdAt"`
}

// MedicalRecord is one entry in an animal's history. Lot and
// NextDoseDate are only meaningful when Type is RecordVaccine; other
// types carry them as empty strings.
type MedicalRecord struct {
	ID           string     `json:"id"`
	AnimalID     string     `json:"animalId"`
	Date         string     `json:"date"` // ISO date
	Type         RecordType `json:"type"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	MedicationID string     `json:"medicationId,omitempty"`
	Dosage       string     `json:"dosage,omitempty"`
	Lot          string     `json:"lot,omitempty"`
	NextDoseDate string     `json:"nextDoseDate,omitempty"` // ISO date
}

// Transaction is a billed service. AnimalID is optional; herd-level
// services bill the owner directly.
type Transaction struct {
	ID            string            `json:"id"`
	OwnerID       string            `json:"ownerId"`
	AnimalID      string            `json:"animalId,omitempty"`
	ServiceName   string            `json:"serviceName"`
	AmountCents   Cents             `json:"amountCents"`
	Date          string            `json:"date"` // ISO date
	PaymentMethod string            `json:"paymentMethod"`
	Status        TransactionStatus `json:"status"`
}

// InventoryItem is a stocked product. MinStock is the reorder threshold;
// stock at or below it is flagged as low.
type InventoryItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Quantity   int    `json:"quantity"`
	Unit       Unit   `json:"unit"`
	ExpiryDate string `json:"expiryDate"` // ISO date
	MinStock   int    `json:"minStock"`
}

// User is the logged-in veterinarian.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ClinicName string `json:"clinicName"`
}

// DisplayName returns the animal's name, or a placeholder for unnamed
// animals (common for livestock identified only by number).
func (a Animal) DisplayName() string {
	if a.Name == "" {
		return "Sem nome"
	}
	return a.Name
}
