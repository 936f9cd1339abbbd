// Package api exposes the clinic over a localhost HTTP surface and an
// MCP server. UIs and the CLI are clients of this layer; they never
// touch storage directly.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ervinoantonio-ui/vetmaster/internal/clinic"
	"github.com/ervinoantonio-ui/vetmaster/internal/insight"
	"github.com/ervinoantonio-ui/vetmaster/internal/query"
	"github.com/ervinoantonio-ui/vetmaster/internal/session"
	"github.com/ervinoantonio-ui/vetmaster/internal/storage"
)

const maxBodySize = 1 << 20 // 1MB

// unknownOwnerLabel is rendered wherever an owner reference dangles.
const unknownOwnerLabel = "Proprietário desconhecido"

// AppDeps holds dependencies for the HTTP handlers.
type AppDeps struct {
	Store   *storage.Store
	Session *session.Session
	Insight *insight.Service
	Token   string
	Now     func() time.Time // reference time for stats; defaults to time.Now
}

// NewAppHandler builds the clinic's HTTP router.
func NewAppHandler(deps AppDeps) http.Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Get("/animals", handleListAnimals(deps))
		r.Post("/animals", handleCreateAnimal(deps))
		r.Get("/animals/{id}", handleGetAnimal(deps))
		r.Get("/animals/{id}/history", handleAnimalHistory(deps))
		r.Post("/animals/{id}/history", handleCreateRecord(deps))
		r.Get("/animals/{id}/insight", handleAnimalInsight(deps))

		r.Get("/owners", handleListOwners(deps))
		r.Post("/owners", handleCreateOwner(deps))

		r.Get("/transactions", handleListTransactions(deps))
		r.Post("/transactions", handleCreateTransaction(deps))
		r.Get("/transactions/summary", handleFinanceSummary(deps))

		r.Get("/inventory", handleListInventory(deps))
		r.Post("/inventory", handleCreateItem(deps))
		r.Delete("/inventory/{id}", handleDeleteItem(deps))

		r.Get("/dashboard", handleDashboard(deps))

		r.Get("/session", handleGetSession(deps))
		r.Post("/session", handleLogin(deps))
		r.Delete("/session", handleLogout(deps))
	})

	return r
}

// loadOrEmpty degrades a corrupt collection to empty on read paths; a
// bad document must never take a list view down.
func loadOrEmpty[T any](load func() ([]T, error), name string) []T {
	items, err := load()
	if err != nil {
		if storage.IsCorrupt(err) {
			slog.Warn("collection unreadable, treating as empty", "collection", name, "error", err)
		} else {
			slog.Error("loading collection", "collection", name, "error", err)
		}
		return []T{}
	}
	return items
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return false
	}
	return true
}

// writeDraftError maps validation failures to 400 and everything else
// to 500.
func writeDraftError(w http.ResponseWriter, err error) {
	var ve *clinic.ValidationError
	if errors.As(err, &ve) {
		httpError(w, http.StatusBadRequest, "validation_error", "%v", ve)
		return
	}
	httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
}

// --- animals ---

type animalView struct {
	clinic.Animal
	OwnerName string `json:"ownerName"`
}

func toAnimalView(a clinic.Animal, owners []clinic.Owner) animalView {
	v := animalView{Animal: a, OwnerName: unknownOwnerLabel}
	if o, ok := query.OwnerByID(owners, a.OwnerID); ok {
		v.OwnerName = o.Name
	}
	return v
}

func handleListAnimals(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		animals := loadOrEmpty(deps.Store.Animals, "animals")
		owners := loadOrEmpty(deps.Store.Owners, "owners")

		filtered := query.FilterAnimals(animals, owners, r.URL.Query().Get("q"))
		views := make([]animalView, 0, len(filtered))
		for _, a := range filtered {
			views = append(views, toAnimalView(a, owners))
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func handleCreateAnimal(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft clinic.AnimalDraft
		if !decodeBody(w, r, &draft) {
			return
		}
		animal, err := draft.Build(deps.Now())
		if err != nil {
			writeDraftError(w, err)
			return
		}

		animals := loadOrEmpty(deps.Store.Animals, "animals")
		if err := deps.Store.SaveAnimals(append(animals, animal)); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "saving animal: %v", err)
			return
		}
		writeJSON(w, http.StatusCreated, animal)
	}
}

func handleGetAnimal(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		animals := loadOrEmpty(deps.Store.Animals, "animals")
		animal, ok := query.AnimalByID(animals, chi.URLParam(r, "id"))
		if !ok {
			httpError(w, http.StatusNotFound, "not_found_error", "animal not found")
			return
		}
		owners := loadOrEmpty(deps.Store.Owners, "owners")
		writeJSON(w, http.StatusOK, toAnimalView(animal, owners))
	}
}

func handleAnimalHistory(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		animals := loadOrEmpty(deps.Store.Animals, "animals")
		animal, ok := query.AnimalByID(animals, chi.URLParam(r, "id"))
		if !ok {
			httpError(w, http.StatusNotFound, "not_found_error", "animal not found")
			return
		}
		records := loadOrEmpty(deps.Store.History, "history")
		writeJSON(w, http.StatusOK, query.HistoryForAnimal(records, animal.ID))
	}
}

func handleCreateRecord(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		animals := loadOrEmpty(deps.Store.Animals, "animals")
		animal, ok := query.AnimalByID(animals, chi.URLParam(r, "id"))
		if !ok {
			httpError(w, http.StatusNotFound, "not_found_error", "animal not found")
			return
		}

		var draft clinic.RecordDraft
		if !decodeBody(w, r, &draft) {
			return
		}
		draft.AnimalID = animal.ID
		record, err := draft.Build()
		if err != nil {
			writeDraftError(w, err)
			return
		}

		records := loadOrEmpty(deps.Store.History, "history")
		if err := deps.Store.SaveHistory(append(records, record)); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "saving record: %v", err)
			return
		}
		writeJSON(w, http.StatusCreated, record)
	}
}

func handleAnimalInsight(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		animals := loadOrEmpty(deps.Store.Animals, "animals")
		animal, ok := query.AnimalByID(animals, chi.URLParam(r, "id"))
		if !ok {
			httpError(w, http.StatusNotFound, "not_found_error", "animal not found")
			return
		}

		records := loadOrEmpty(deps.Store.History, "history")
		history := query.HistoryForAnimal(records, animal.ID)

		// Always resolves to a displayable string; failures inside the
		// service surface as its fallback text.
		text := deps.Insight.Request(r.Context(), animal, history)
		writeJSON(w, http.StatusOK, map[string]string{"insight": text})
	}
}

// --- owners ---

type ownerView struct {
	clinic.Owner
	AnimalCount int `json:"animalCount"`
}

func handleListOwners(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owners := loadOrEmpty(deps.Store.Owners, "owners")
		animals := loadOrEmpty(deps.Store.Animals, "animals")

		filtered := query.FilterOwners(owners, r.URL.Query().Get("q"))
		views := make([]ownerView, 0, len(filtered))
		for _, o := range filtered {
			views = append(views, ownerView{
				Owner:       o,
				AnimalCount: len(query.AnimalsOfOwner(animals, o.ID)),
			})
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func handleCreateOwner(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft clinic.OwnerDraft
		if !decodeBody(w, r, &draft) {
			return
		}
		owner, err := draft.Build(deps.Now())
		if err != nil {
			writeDraftError(w, err)
			return
		}

		owners := loadOrEmpty(deps.Store.Owners, "owners")
		if err := deps.Store.SaveOwners(append(owners, owner)); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "saving owner: %v", err)
			return
		}
		writeJSON(w, http.StatusCreated, owner)
	}
}

// --- transactions ---

type transactionView struct {
	clinic.Transaction
	OwnerName string `json:"ownerName"`
	Amount    string `json:"amount"`
}

func handleListTransactions(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txs := loadOrEmpty(deps.Store.Finance, "finance")
		owners := loadOrEmpty(deps.Store.Owners, "owners")

		filtered := query.FilterTransactions(txs, owners, r.URL.Query().Get("q"))
		views := make([]transactionView, 0, len(filtered))
		for _, tx := range filtered {
			v := transactionView{Transaction: tx, OwnerName: unknownOwnerLabel, Amount: tx.AmountCents.BRL()}
			if o, ok := query.OwnerByID(owners, tx.OwnerID); ok {
				v.OwnerName = o.Name
			}
			views = append(views, v)
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func handleCreateTransaction(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft clinic.TransactionDraft
		if !decodeBody(w, r, &draft) {
			return
		}
		tx, err := draft.Build()
		if err != nil {
			writeDraftError(w, err)
			return
		}

		txs := loadOrEmpty(deps.Store.Finance, "finance")
		if err := deps.Store.SaveFinance(append(txs, tx)); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "saving transaction: %v", err)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
	}
}

func handleFinanceSummary(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		txs := loadOrEmpty(deps.Store.Finance, "finance")
		writeJSON(w, http.StatusOK, query.Finance(txs))
	}
}

// --- inventory ---

type itemView struct {
	clinic.InventoryItem
	LowStock bool `json:"lowStock"`
	Expired  bool `json:"expired"`
}

func handleListInventory(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		items := loadOrEmpty(deps.Store.Inventory, "inventory")
		now := deps.Now()
		views := make([]itemView, 0, len(items))
		for _, item := range items {
			views = append(views, itemView{
				InventoryItem: item,
				LowStock:      query.IsLowStock(item),
				Expired:       query.IsExpired(item, now),
			})
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func handleCreateItem(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft clinic.ItemDraft
		if !decodeBody(w, r, &draft) {
			return
		}
		item, err := draft.Build()
		if err != nil {
			writeDraftError(w, err)
			return
		}

		items := loadOrEmpty(deps.Store.Inventory, "inventory")
		if err := deps.Store.SaveInventory(append(items, item)); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "saving item: %v", err)
			return
		}
		writeJSON(w, http.StatusCreated, item)
	}
}

func handleDeleteItem(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := deps.Store.DeleteInventoryItem(chi.URLParam(r, "id"))
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "item not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "deleting item: %v", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// --- dashboard ---

func handleDashboard(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		stats := query.Dashboard(
			loadOrEmpty(deps.Store.Animals, "animals"),
			loadOrEmpty(deps.Store.Finance, "finance"),
			loadOrEmpty(deps.Store.Inventory, "inventory"),
			loadOrEmpty(deps.Store.History, "history"),
			deps.Now(),
		)
		writeJSON(w, http.StatusOK, stats)
	}
}

// --- session ---

func handleGetSession(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		u := deps.Session.Current()
		if u == nil {
			httpError(w, http.StatusNotFound, "not_found_error", "not logged in")
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

func handleLogin(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft clinic.LoginDraft
		if !decodeBody(w, r, &draft) {
			return
		}
		u, err := deps.Session.Login(draft)
		if err != nil {
			writeDraftError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, u)
	}
}

func handleLogout(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if err := deps.Session.Logout(); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "logging out: %v", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
