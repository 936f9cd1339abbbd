// Package storage persists the clinic's collections as JSON documents in
// a local SQLite database. Each collection lives under a stable key and
// is replaced wholesale on save; there is exactly one writer (the local
// user), so last write wins.
package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ervinoantonio-ui/vetmaster/internal/clinic"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Collection keys. Stable across releases; renaming one orphans data.
const (
	keyAnimals   = "vetmaster_animals"
	keyOwners    = "vetmaster_owners"
	keyHistory   = "vetmaster_history"
	keyFinance   = "vetmaster_finance"
	keyInventory = "vetmaster_inventory"
	keyUser      = "vetmaster_user"
)

// collectionSchemaVersion is written into every payload envelope so the
// document format can evolve safely.
const collectionSchemaVersion = 1

// Store wraps a SQLite database holding the six clinic collections.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database in dataDir, runs pending
// migrations, and seeds demonstration data on very first use. Pass
// ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "vetmaster.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	if err := s.seed(time.Now()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding demonstration data: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that
// haven't been run yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// envelope wraps every stored payload with a schema version.
type envelope struct {
	SchemaVersion int             `json:"schemaVersion"`
	Data          json.RawMessage `json:"data"`
}

// loadRaw returns the stored payload for key, or nil when the key has
// never been written.
func (s *Store) loadRaw(key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRow("SELECT payload FROM collections WHERE key = ?", key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return payload, nil
}

// saveRaw replaces the payload under key. The single UPSERT keeps the
// full-collection rewrite atomic from the caller's perspective.
func (s *Store) saveRaw(key string, payload []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO collections (key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, payload, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func loadCollection[T any](s *Store, key string) ([]T, error) {
	payload, err := s.loadRaw(key)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return []T{}, nil
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, &CorruptError{Key: key, Err: err}
	}
	if env.SchemaVersion > collectionSchemaVersion {
		return nil, &CorruptError{Key: key, Err: fmt.Errorf("unsupported schema version %d", env.SchemaVersion)}
	}

	var items []T
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, &CorruptError{Key: key, Err: err}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func saveCollection[T any](s *Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	payload, err := json.Marshal(envelope{SchemaVersion: collectionSchemaVersion, Data: data})
	if err != nil {
		return fmt.Errorf("encoding %s envelope: %w", key, err)
	}
	return s.saveRaw(key, payload)
}

// Animals loads the animals collection. A never-written collection is
// empty, not an error.
func (s *Store) Animals() ([]clinic.Animal, error) {
	return loadCollection[clinic.Animal](s, keyAnimals)
}

// SaveAnimals replaces the animals collection.
func (s *Store) SaveAnimals(animals []clinic.Animal) error {
	return saveCollection(s, keyAnimals, animals)
}

// Owners loads the owners collection.
func (s *Store) Owners() ([]clinic.Owner, error) {
	return loadCollection[clinic.Owner](s, keyOwners)
}

// SaveOwners replaces the owners collection.
func (s *Store) SaveOwners(owners []clinic.Owner) error {
	return saveCollection(s, keyOwners, owners)
}

// History loads the medical history collection.
func (s *Store) History() ([]clinic.MedicalRecord, error) {
	return loadCollection[clinic.MedicalRecord](s, keyHistory)
}

// SaveHistory replaces the medical history collection.
func (s *Store) SaveHistory(records []clinic.MedicalRecord) error {
	return saveCollection(s, keyHistory, records)
}

// Finance loads the transactions collection.
func (s *Store) Finance() ([]clinic.Transaction, error) {
	return loadCollection[clinic.Transaction](s, keyFinance)
}

// SaveFinance replaces the transactions collection.
func (s *Store) SaveFinance(txs []clinic.Transaction) error {
	return saveCollection(s, keyFinance, txs)
}

// Inventory loads the inventory collection.
func (s *Store) Inventory() ([]clinic.InventoryItem, error) {
	return loadCollection[clinic.InventoryItem](s, keyInventory)
}

// SaveInventory replaces the inventory collection.
func (s *Store) SaveInventory(items []clinic.InventoryItem) error {
	return saveCollection(s, keyInventory, items)
}

// User loads the logged-in user. A nil user means logged out.
func (s *Store) User() (*clinic.User, error) {
	payload, err := s.loadRaw(keyUser)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, &CorruptError{Key: keyUser, Err: err}
	}
	if string(env.Data) == "null" {
		return nil, nil
	}
	var u clinic.User
	if err := json.Unmarshal(env.Data, &u); err != nil {
		return nil, &CorruptError{Key: keyUser, Err: err}
	}
	return &u, nil
}

// SaveUser persists the logged-in user. Passing nil records a logout.
func (s *Store) SaveUser(u *clinic.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", keyUser, err)
	}
	payload, err := json.Marshal(envelope{SchemaVersion: collectionSchemaVersion, Data: data})
	if err != nil {
		return fmt.Errorf("encoding %s envelope: %w", keyUser, err)
	}
	return s.saveRaw(keyUser, payload)
}

// DeleteInventoryItem removes one item by id and rewrites the
// collection. Inventory is the only collection supporting deletion.
func (s *Store) DeleteInventoryItem(id string) error {
	items, err := s.Inventory()
	if err != nil {
		return err
	}
	kept := make([]clinic.InventoryItem, 0, len(items))
	found := false
	for _, item := range items {
		if item.ID == id {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return ErrNotFound
	}
	return s.SaveInventory(kept)
}

// seed writes one demonstration owner, animal, and inventory item the
// first time the clinic opens. Seeding only happens when animals and
// owners are both empty; a corrupt payload also suppresses it, since
// there may be real data behind the parse failure.
func (s *Store) seed(now time.Time) error {
	animals, err := s.Animals()
	if err != nil {
		if IsCorrupt(err) {
			return nil
		}
		return err
	}
	owners, err := s.Owners()
	if err != nil {
		if IsCorrupt(err) {
			return nil
		}
		return err
	}
	if len(animals) > 0 || len(owners) > 0 {
		return nil
	}

	demoOwner := clinic.Owner{
		ID:        "1",
		Name:      "João Silva",
		Phone:     "(11) 99999-9999",
		FarmName:  "Fazenda Esperança",
		CreatedAt: now.UnixMilli(),
	}
	demoAnimal := clinic.Animal{
		ID:         "a1",
		InternalID: "1001",
		Name:       "Mimosa",
		Species:    clinic.SpeciesBovine,
		Category:   clinic.CategoryLarge,
		Breed:      "Nelore",
		Sex:        "F",
		OwnerID:    demoOwner.ID,
		FarmName:   demoOwner.FarmName,
		CreatedAt:  now.UnixMilli(),
	}
	demoItem := clinic.InventoryItem{
		ID:         "i1",
		Name:       "Vacina Febre Aftosa",
		Type:       "Vacina",
		Quantity:   5,
		Unit:       clinic.UnitDose,
		ExpiryDate: "2025-12-31",
		MinStock:   10,
	}

	if err := s.SaveOwners([]clinic.Owner{demoOwner}); err != nil {
		return err
	}
	if err := s.SaveAnimals([]clinic.Animal{demoAnimal}); err != nil {
		return err
	}
	return s.SaveInventory([]clinic.InventoryItem{demoItem})
}
