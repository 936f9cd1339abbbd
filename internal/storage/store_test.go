package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/ervinoantonio-ui/vetmaster/internal/clinic"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestSeedOnFirstOpen verifies a fresh database gets the demonstration
// owner, animal, and inventory item.
func TestSeedOnFirstOpen(t *testing.T) {
	s := openTestStore(t)

	owners, err := s.Owners()
	if err != nil {
		t.Fatalf("Owners: %v", err)
	}
	if len(owners) != 1 || owners[0].Name != "João Silva" {
		t.Fatalf("seeded owners = %v, want one João Silva", owners)
	}

	animals, err := s.Animals()
	if err != nil {
		t.Fatalf("Animals: %v", err)
	}
	if len(animals) != 1 || animals[0].Name != "Mimosa" {
		t.Fatalf("seeded animals = %v, want one Mimosa", animals)
	}
	if animals[0].OwnerID != owners[0].ID {
		t.Errorf("seeded animal owner = %q, want %q", animals[0].OwnerID, owners[0].ID)
	}

	items, err := s.Inventory()
	if err != nil {
		t.Fatalf("Inventory: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Vacina Febre Aftosa" {
		t.Fatalf("seeded inventory = %v, want one Vacina Febre Aftosa", items)
	}
}

// TestSeedSkippedWhenAnimalsExist verifies that existing animals
// suppress seeding even with no owners.
func TestSeedSkippedWhenAnimalsExist(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveOwners([]clinic.Owner{}); err != nil {
		t.Fatalf("SaveOwners: %v", err)
	}
	if err := s.SaveAnimals([]clinic.Animal{{ID: "x1", Name: "Rex"}}); err != nil {
		t.Fatalf("SaveAnimals: %v", err)
	}

	if err := s.seed(time.Now()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	animals, err := s.Animals()
	if err != nil {
		t.Fatalf("Animals: %v", err)
	}
	if len(animals) != 1 || animals[0].ID != "x1" {
		t.Fatalf("animals after seed = %v, want only x1", animals)
	}
}

// TestSeedSkippedWhenOwnersExist is the mirror case: existing owners
// suppress seeding even with no animals.
func TestSeedSkippedWhenOwnersExist(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveAnimals([]clinic.Animal{}); err != nil {
		t.Fatalf("SaveAnimals: %v", err)
	}
	if err := s.SaveOwners([]clinic.Owner{{ID: "o1", Name: "Maria"}}); err != nil {
		t.Fatalf("SaveOwners: %v", err)
	}

	if err := s.seed(time.Now()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	owners, err := s.Owners()
	if err != nil {
		t.Fatalf("Owners: %v", err)
	}
	if len(owners) != 1 || owners[0].ID != "o1" {
		t.Fatalf("owners after seed = %v, want only o1", owners)
	}
}

// TestSeedSkippedOnCorruptPayload verifies seeding never overwrites a
// payload that failed to parse; there may be real data behind it.
func TestSeedSkippedOnCorruptPayload(t *testing.T) {
	s := openTestStore(t)

	if err := s.saveRaw(keyAnimals, []byte("{not json")); err != nil {
		t.Fatalf("saveRaw: %v", err)
	}
	if err := s.seed(time.Now()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	payload, err := s.loadRaw(keyAnimals)
	if err != nil {
		t.Fatalf("loadRaw: %v", err)
	}
	if string(payload) != "{not json" {
		t.Fatalf("seed overwrote a corrupt payload: %q", payload)
	}
}

// TestSeedPropagatesStoreErrors verifies a genuine database failure
// surfaces instead of being mistaken for a corrupt payload.
func TestSeedPropagatesStoreErrors(t *testing.T) {
	s := openTestStore(t)

	s.db.Close()
	if err := s.seed(time.Now()); err == nil {
		t.Fatal("expected error seeding over a closed database, got nil")
	}
}

// TestCollectionRoundTrip saves and reloads each collection.
func TestCollectionRoundTrip(t *testing.T) {
	s := openTestStore(t)

	animals := []clinic.Animal{{ID: "a1", InternalID: "1001", Name: "Mimosa", Species: clinic.SpeciesBovine}}
	if err := s.SaveAnimals(animals); err != nil {
		t.Fatalf("SaveAnimals: %v", err)
	}
	got, err := s.Animals()
	if err != nil {
		t.Fatalf("Animals: %v", err)
	}
	if len(got) != 1 || got[0] != animals[0] {
		t.Errorf("animals round-trip mismatch: %v", got)
	}

	records := []clinic.MedicalRecord{{ID: "r1", AnimalID: "a1", Date: "2025-06-01", Type: clinic.RecordVaccine, Title: "Aftosa"}}
	if err := s.SaveHistory(records); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	history, err := s.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0] != records[0] {
		t.Errorf("history round-trip mismatch: %v", history)
	}

	txs := []clinic.Transaction{{ID: "t1", OwnerID: "1", ServiceName: "Consulta", AmountCents: 15000, Date: "2025-06-01", Status: clinic.StatusPaid}}
	if err := s.SaveFinance(txs); err != nil {
		t.Fatalf("SaveFinance: %v", err)
	}
	finance, err := s.Finance()
	if err != nil {
		t.Fatalf("Finance: %v", err)
	}
	if len(finance) != 1 || finance[0] != txs[0] {
		t.Errorf("finance round-trip mismatch: %v", finance)
	}
}

// TestSaveReplacesWholesale verifies a save replaces the previous
// collection instead of merging with it.
func TestSaveReplacesWholesale(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveFinance([]clinic.Transaction{{ID: "t1"}, {ID: "t2"}}); err != nil {
		t.Fatalf("SaveFinance: %v", err)
	}
	if err := s.SaveFinance([]clinic.Transaction{{ID: "t3"}}); err != nil {
		t.Fatalf("SaveFinance: %v", err)
	}

	got, err := s.Finance()
	if err != nil {
		t.Fatalf("Finance: %v", err)
	}
	if len(got) != 1 || got[0].ID != "t3" {
		t.Fatalf("finance after second save = %v, want only t3", got)
	}
}

// TestNeverWrittenCollectionIsEmpty verifies an absent key loads as an
// empty slice, not an error.
func TestNeverWrittenCollectionIsEmpty(t *testing.T) {
	s := openTestStore(t)

	history, err := s.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if history == nil || len(history) != 0 {
		t.Fatalf("History of fresh store = %v, want empty slice", history)
	}
}

// TestCorruptPayload verifies an unparseable payload surfaces as a
// CorruptError the caller can detect.
func TestCorruptPayload(t *testing.T) {
	s := openTestStore(t)

	if err := s.saveRaw(keyFinance, []byte("][")); err != nil {
		t.Fatalf("saveRaw: %v", err)
	}

	_, err := s.Finance()
	if err == nil {
		t.Fatal("expected error for corrupt payload, got nil")
	}
	if !IsCorrupt(err) {
		t.Errorf("IsCorrupt(%v) = false, want true", err)
	}
	var ce *CorruptError
	if !errors.As(err, &ce) || ce.Key != keyFinance {
		t.Errorf("CorruptError.Key = %v, want %s", err, keyFinance)
	}
}

// TestUnsupportedSchemaVersion verifies a payload from a future release
// is treated as unreadable rather than half-parsed.
func TestUnsupportedSchemaVersion(t *testing.T) {
	s := openTestStore(t)

	if err := s.saveRaw(keyHistory, []byte(`{"schemaVersion":99,"data":[]}`)); err != nil {
		t.Fatalf("saveRaw: %v", err)
	}

	_, err := s.History()
	if !IsCorrupt(err) {
		t.Fatalf("History with future schema = %v, want CorruptError", err)
	}
}

// TestUserRoundTrip verifies login persistence and that saving nil
// records a logout.
func TestUserRoundTrip(t *testing.T) {
	s := openTestStore(t)

	u, err := s.User()
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if u != nil {
		t.Fatalf("fresh store User = %v, want nil", u)
	}

	want := clinic.User{ID: "u1", Name: "Maria", Email: "maria@clinica.com.br"}
	if err := s.SaveUser(&want); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	u, err = s.User()
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if u == nil || *u != want {
		t.Fatalf("User = %v, want %v", u, want)
	}

	if err := s.SaveUser(nil); err != nil {
		t.Fatalf("SaveUser(nil): %v", err)
	}
	u, err = s.User()
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if u != nil {
		t.Fatalf("User after logout = %v, want nil", u)
	}
}

// TestDeleteInventoryItem verifies deletion by id and the not-found
// sentinel.
func TestDeleteInventoryItem(t *testing.T) {
	s := openTestStore(t)

	items := []clinic.InventoryItem{{ID: "i1", Name: "Vacina"}, {ID: "i2", Name: "Vermífugo"}}
	if err := s.SaveInventory(items); err != nil {
		t.Fatalf("SaveInventory: %v", err)
	}

	if err := s.DeleteInventoryItem("i1"); err != nil {
		t.Fatalf("DeleteInventoryItem: %v", err)
	}
	got, err := s.Inventory()
	if err != nil {
		t.Fatalf("Inventory: %v", err)
	}
	if len(got) != 1 || got[0].ID != "i2" {
		t.Fatalf("inventory after delete = %v, want only i2", got)
	}

	if err := s.DeleteInventoryItem("i1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleting a missing item = %v, want ErrNotFound", err)
	}
}

// TestPersistenceAcrossReopen verifies data written to an on-disk
// database survives a close and reopen, and seeding does not rerun.
func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if err := s1.SaveAnimals([]clinic.Animal{{ID: "z1", Name: "Trovão"}}); err != nil {
		t.Fatalf("SaveAnimals: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer s2.Close()

	animals, err := s2.Animals()
	if err != nil {
		t.Fatalf("Animals: %v", err)
	}
	if len(animals) != 1 || animals[0].ID != "z1" {
		t.Fatalf("animals after reopen = %v, want only z1", animals)
	}
}

// TestMigrationRecorded verifies the collections migration is tracked in
// schema_version.
func TestMigrationRecorded(t *testing.T) {
	s := openTestStore(t)

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = 1").Scan(&count); err != nil {
		t.Fatalf("querying schema_version: %v", err)
	}
	if count != 1 {
		t.Errorf("migration 1 recorded %d times, want 1", count)
	}
}
