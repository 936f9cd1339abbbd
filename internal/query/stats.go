package query

import (
	"time"

	"github.com/ervinoantonio-ui/vetmaster/internal/clinic"
)

// DashboardStats summarizes the clinic's current state.
type DashboardStats struct {
	TotalAnimals     int          `json:"totalAnimals"`
	PendingPayments  clinic.Cents `json:"pendingPaymentsCents"`
	LowStockItems    int          `json:"lowStockItems"`
	UpcomingVaccines int          `json:"upcomingVaccines"`
}

// FinanceStats breaks transaction totals down by payment status.
// Total == Paid + Pending holds for any well-formed input.
type FinanceStats struct {
	Total   clinic.Cents `json:"totalCents"`
	Paid    clinic.Cents `json:"paidCents"`
	Pending clinic.Cents `json:"pendingCents"`
}

// IsLowStock reports whether the item sits at or below its reorder
// threshold. The boundary quantity == minStock counts as low.
func IsLowStock(item clinic.InventoryItem) bool {
	return item.Quantity <= item.MinStock
}

// IsExpired reports whether the item's expiry date is before now. An
// item expires at midnight of its expiry date. A malformed or missing
// expiry date is treated as not expired.
func IsExpired(item clinic.InventoryItem, now time.Time) bool {
	exp, ok := clinic.ParseDate(item.ExpiryDate)
	if !ok {
		return false
	}
	return exp.Before(now)
}

// upcoming reports whether the record is a vaccine with a next dose
// scheduled strictly after now.
func upcoming(r clinic.MedicalRecord, now time.Time) bool {
	if r.Type != clinic.RecordVaccine || r.NextDoseDate == "" {
		return false
	}
	next, ok := clinic.ParseDate(r.NextDoseDate)
	if !ok {
		return false
	}
	return next.After(now)
}

// Dashboard computes the dashboard counters as of the supplied reference
// time.
func Dashboard(
	animals []clinic.Animal,
	finance []clinic.Transaction,
	inventory []clinic.InventoryItem,
	history []clinic.MedicalRecord,
	now time.Time,
) DashboardStats {
	stats := DashboardStats{TotalAnimals: len(animals)}
	for _, tx := range finance {
		if tx.Status == clinic.StatusPending {
			stats.PendingPayments += tx.AmountCents
		}
	}
	for _, item := range inventory {
		if IsLowStock(item) {
			stats.LowStockItems++
		}
	}
	for _, r := range history {
		if upcoming(r, now) {
			stats.UpcomingVaccines++
		}
	}
	return stats
}

// Finance totals all transactions and splits them by status.
func Finance(txs []clinic.Transaction) FinanceStats {
	var stats FinanceStats
	for _, tx := range txs {
		stats.Total += tx.AmountCents
		switch tx.Status {
		case clinic.StatusPaid:
			stats.Paid += tx.AmountCents
		case clinic.StatusPending:
			stats.Pending += tx.AmountCents
		}
	}
	return stats
}
