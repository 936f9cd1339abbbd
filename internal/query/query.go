// Package query derives view-ready data from in-memory snapshots of the
// stored collections. Every function is pure: callers supply the already
// loaded data, nothing talks to storage, and inputs are never mutated.
package query

import (
	"sort"
	"strings"

	"github.com/ervinoantonio-ui/vetmaster/internal/clinic"
)

// OwnerByID resolves an owner reference. The second return is false when
// the reference dangles; callers render a placeholder instead of failing.
func OwnerByID(owners []clinic.Owner, id string) (clinic.Owner, bool) {
	for _, o := range owners {
		if o.ID == id {
			return o, true
		}
	}
	return clinic.Owner{}, false
}

// AnimalByID resolves an animal by its storage id (not the internal
// intake number, which is only a display label).
func AnimalByID(animals []clinic.Animal, id string) (clinic.Animal, bool) {
	for _, a := range animals {
		if a.ID == id {
			return a, true
		}
	}
	return clinic.Animal{}, false
}

// AnimalsOfOwner returns the animals registered to one owner, input
// order preserved.
func AnimalsOfOwner(animals []clinic.Animal, ownerID string) []clinic.Animal {
	out := make([]clinic.Animal, 0)
	for _, a := range animals {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out
}

func matches(haystack, term string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(term))
}

// FilterAnimals matches the search term case-insensitively against the
// intake number, animal name, owner name, and farm name. An empty term
// returns all animals in input order. A dangling owner reference simply
// contributes nothing to the haystack.
func FilterAnimals(animals []clinic.Animal, owners []clinic.Owner, term string) []clinic.Animal {
	out := make([]clinic.Animal, 0, len(animals))
	for _, a := range animals {
		ownerName := ""
		if o, ok := OwnerByID(owners, a.OwnerID); ok {
			ownerName = o.Name
		}
		haystack := a.InternalID + " " + a.Name + " " + ownerName + " " + a.FarmName
		if matches(haystack, term) {
			out = append(out, a)
		}
	}
	return out
}

// FilterOwners matches the term against owner name and farm name.
func FilterOwners(owners []clinic.Owner, term string) []clinic.Owner {
	out := make([]clinic.Owner, 0, len(owners))
	for _, o := range owners {
		if matches(o.Name+" "+o.FarmName, term) {
			out = append(out, o)
		}
	}
	return out
}

// FilterTransactions matches the term against service name and owner name.
func FilterTransactions(txs []clinic.Transaction, owners []clinic.Owner, term string) []clinic.Transaction {
	out := make([]clinic.Transaction, 0, len(txs))
	for _, tx := range txs {
		ownerName := ""
		if o, ok := OwnerByID(owners, tx.OwnerID); ok {
			ownerName = o.Name
		}
		if matches(tx.ServiceName+" "+ownerName, term) {
			out = append(out, tx)
		}
	}
	return out
}

// HistoryForAnimal returns the animal's medical records newest first.
// Records for other animals are filtered out, never shown. The sort is
// stable: records sharing a date keep their insertion order.
func HistoryForAnimal(records []clinic.MedicalRecord, animalID string) []clinic.MedicalRecord {
	out := make([]clinic.MedicalRecord, 0)
	for _, r := range records {
		if r.AnimalID == animalID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		// ISO dates compare chronologically as strings.
		return out[i].Date > out[j].Date
	})
	return out
}
