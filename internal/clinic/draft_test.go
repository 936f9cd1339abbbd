package clinic

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func wantFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != field {
		t.Errorf("ValidationError.Field = %q, want %q", ve.Field, field)
	}
}

// TestOwnerDraftBuild verifies required fields and that a valid draft
// produces a record with a fresh id and creation timestamp.
func TestOwnerDraftBuild(t *testing.T) {
	_, err := OwnerDraft{Phone: "(11) 99999-9999"}.Build(testNow)
	wantFieldError(t, err, "name")

	_, err = OwnerDraft{Name: "João Silva"}.Build(testNow)
	wantFieldError(t, err, "phone")

	o, err := OwnerDraft{Name: "  João Silva  ", Phone: "(11) 99999-9999", FarmName: "Fazenda Esperança"}.Build(testNow)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if o.ID == "" {
		t.Error("Build did not assign an id")
	}
	if o.Name != "João Silva" {
		t.Errorf("Name = %q, want trimmed João Silva", o.Name)
	}
	if o.CreatedAt != testNow.UnixMilli() {
		t.Errorf("CreatedAt = %d, want %d", o.CreatedAt, testNow.UnixMilli())
	}
}

// TestAnimalDraftBuild covers the validation rules for animal intake.
func TestAnimalDraftBuild(t *testing.T) {
	valid := AnimalDraft{
		InternalID: "1001",
		Species:    SpeciesBovine,
		Category:   CategoryLarge,
		Breed:      "Nelore",
		Sex:        "F",
		OwnerID:    "owner-1",
	}

	cases := []struct {
		name   string
		mutate func(d *AnimalDraft)
		field  string
	}{
		{"missing internal id", func(d *AnimalDraft) { d.InternalID = " " }, "internalId"},
		{"unknown species", func(d *AnimalDraft) { d.Species = "Dragão" }, "species"},
		{"unknown category", func(d *AnimalDraft) { d.Category = "Médio" }, "category"},
		{"missing breed", func(d *AnimalDraft) { d.Breed = "" }, "breed"},
		{"bad sex", func(d *AnimalDraft) { d.Sex = "X" }, "sex"},
		{"missing owner", func(d *AnimalDraft) { d.OwnerID = "" }, "ownerId"},
		{"bad birth date", func(d *AnimalDraft) { d.BirthDate = "15/06/2020" }, "birthDate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := valid
			tc.mutate(&d)
			_, err := d.Build(testNow)
			wantFieldError(t, err, tc.field)
		})
	}

	a, err := valid.Build(testNow)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if a.ID == "" || a.ID == a.InternalID {
		t.Errorf("storage id %q must be fresh and distinct from intake number %q", a.ID, a.InternalID)
	}
}

// TestRecordDraftVaccineFields verifies lot and next-dose survive only
// on vaccine records; other types silently drop them.
func TestRecordDraftVaccineFields(t *testing.T) {
	base := RecordDraft{
		AnimalID:     "a1",
		Date:         "2025-06-01",
		Title:        "Febre Aftosa",
		Lot:          "L-42",
		NextDoseDate: "2025-12-01",
		Dosage:       "10ml",
	}

	base.Type = RecordVaccine
	rec, err := base.Build()
	if err != nil {
		t.Fatalf("Build vaccine: %v", err)
	}
	if rec.Lot != "L-42" || rec.NextDoseDate != "2025-12-01" {
		t.Errorf("vaccine record lost lot/next dose: %+v", rec)
	}
	if rec.Dosage != "" {
		t.Errorf("vaccine record kept dosage %q, want empty", rec.Dosage)
	}

	base.Type = RecordProcedure
	rec, err = base.Build()
	if err != nil {
		t.Fatalf("Build procedure: %v", err)
	}
	if rec.Lot != "" || rec.NextDoseDate != "" {
		t.Errorf("procedure record kept vaccine fields: %+v", rec)
	}

	base.Type = RecordMedication
	rec, err = base.Build()
	if err != nil {
		t.Fatalf("Build medication: %v", err)
	}
	if rec.Dosage != "10ml" {
		t.Errorf("medication record lost dosage: %+v", rec)
	}
}

// TestRecordDraftValidation covers the record intake rules.
func TestRecordDraftValidation(t *testing.T) {
	_, err := RecordDraft{AnimalID: "a1", Date: "bad", Type: RecordNote, Title: "x"}.Build()
	wantFieldError(t, err, "date")

	_, err = RecordDraft{AnimalID: "a1", Date: "2025-06-01", Type: "Surgery", Title: "x"}.Build()
	wantFieldError(t, err, "type")

	_, err = RecordDraft{AnimalID: "a1", Date: "2025-06-01", Type: RecordNote}.Build()
	wantFieldError(t, err, "title")

	_, err = RecordDraft{AnimalID: "a1", Date: "2025-06-01", Type: RecordVaccine, Title: "x", NextDoseDate: "soon"}.Build()
	wantFieldError(t, err, "nextDoseDate")
}

// TestTransactionDraftBuild verifies amount, date, and status rules.
func TestTransactionDraftBuild(t *testing.T) {
	valid := TransactionDraft{
		OwnerID:     "owner-1",
		ServiceName: "Consulta",
		AmountCents: 15000,
		Date:        "2025-06-01",
		Status:      StatusPending,
	}

	d := valid
	d.AmountCents = -1
	_, err := d.Build()
	wantFieldError(t, err, "amountCents")

	d = valid
	d.Status = "OVERDUE"
	_, err = d.Build()
	wantFieldError(t, err, "status")

	tx, err := valid.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tx.AmountCents != 15000 || tx.Status != StatusPending {
		t.Errorf("unexpected transaction: %+v", tx)
	}
}

// TestItemDraftBuild verifies inventory intake rules.
func TestItemDraftBuild(t *testing.T) {
	valid := ItemDraft{Name: "Vacina", Quantity: 5, Unit: UnitDose, ExpiryDate: "2025-12-31", MinStock: 10}

	d := valid
	d.Quantity = -1
	_, err := d.Build()
	wantFieldError(t, err, "quantity")

	d = valid
	d.Unit = "caixa"
	_, err = d.Build()
	wantFieldError(t, err, "unit")

	d = valid
	d.ExpiryDate = ""
	_, err = d.Build()
	wantFieldError(t, err, "expiryDate")

	if _, err := valid.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
}

// TestLoginDraftBuild verifies the email rules and the name default.
func TestLoginDraftBuild(t *testing.T) {
	_, err := LoginDraft{}.Build()
	wantFieldError(t, err, "email")

	_, err = LoginDraft{Email: "not-an-email"}.Build()
	wantFieldError(t, err, "email")

	u, err := LoginDraft{Email: "maria@clinica.com.br"}.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if u.Name != "maria" {
		t.Errorf("Name = %q, want the email local part", u.Name)
	}

	u, err = LoginDraft{Name: "Dra. Maria", Email: "maria@clinica.com.br", ClinicName: "VetMaster"}.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if u.Name != "Dra. Maria" || u.ClinicName != "VetMaster" {
		t.Errorf("unexpected user: %+v", u)
	}
}
