package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ervinoantonio-ui/vetmaster/internal/clinic"
	"github.com/ervinoantonio-ui/vetmaster/internal/config"
)

// parseCents converts a decimal amount like "150.00" or "150,00" into
// integer centavos.
func parseCents(s string) (clinic.Cents, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, fmt.Errorf("amount is required")
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseUint(whole, 10, 63)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	f, err := strconv.ParseUint(frac, 10, 63)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	cents := clinic.Cents(w*100 + f)
	if neg {
		cents = -cents
	}
	return cents, nil
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

// --- session ---

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the clinic",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		clinicName, _ := cmd.Flags().GetString("clinic")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/session", clinic.LoginDraft{
			Name:       name,
			Email:      email,
			ClinicName: clinicName,
		})
		if err != nil {
			return err
		}

		var user clinic.User
		if err := decodeJSON(resp, &user); err != nil {
			return err
		}
		printSuccess("Logged in as %s (%s)", user.Name, user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of the clinic",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.delete(cmd.Context(), "/session")
		if err != nil {
			return err
		}
		if err := expectStatus(resp, 204); err != nil {
			return err
		}
		printSuccess("Logged out")
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "veterinarian email (required)")
	loginCmd.Flags().String("name", "", "display name")
	loginCmd.Flags().String("clinic", "", "clinic name")
	loginCmd.MarkFlagRequired("email")
}

// --- dashboard ---

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the clinic dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/dashboard")
		if err != nil {
			return err
		}

		var stats struct {
			TotalAnimals     int          `json:"totalAnimals"`
			PendingPayments  clinic.Cents `json:"pendingPaymentsCents"`
			LowStockItems    int          `json:"lowStockItems"`
			UpcomingVaccines int          `json:"upcomingVaccines"`
		}
		if err := decodeJSON(resp, &stats); err != nil {
			return err
		}

		printStatus("Animals", "%d", stats.TotalAnimals)
		printStatus("Pending payments", "%s", stats.PendingPayments.BRL())
		printStatus("Low stock", "%d items", stats.LowStockItems)
		printStatus("Upcoming vaccines", "%d", stats.UpcomingVaccines)
		return nil
	},
}

// --- animals ---

var animalCmd = &cobra.Command{
	Use:   "animal",
	Short: "Manage registered animals",
}

var animalListCmd = &cobra.Command{
	Use:   "list [search]",
	Short: "List animals, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := "/animals"
		if len(args) > 0 {
			path += "?q=" + url.QueryEscape(strings.Join(args, " "))
		}
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var animals []struct {
			clinic.Animal
			OwnerName string `json:"ownerName"`
		}
		if err := decodeJSON(resp, &animals); err != nil {
			return err
		}

		if len(animals) == 0 {
			fmt.Println("No animals found.")
			return nil
		}

		tw := newTable()
		fmt.Fprintln(tw, "ID\tNº\tNAME\tSPECIES\tBREED\tOWNER")
		for _, a := range animals {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				a.ID, a.InternalID, a.DisplayName(), a.Species, a.Breed, a.OwnerName)
		}
		return tw.Flush()
	},
}

var animalAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new animal",
	RunE: func(cmd *cobra.Command, args []string) error {
		draft := clinic.AnimalDraft{}
		draft.InternalID, _ = cmd.Flags().GetString("number")
		draft.Name, _ = cmd.Flags().GetString("name")
		species, _ := cmd.Flags().GetString("species")
		draft.Species = clinic.Species(species)
		category, _ := cmd.Flags().GetString("category")
		draft.Category = clinic.Category(category)
		draft.Breed, _ = cmd.Flags().GetString("breed")
		draft.Sex, _ = cmd.Flags().GetString("sex")
		draft.BirthDate, _ = cmd.Flags().GetString("birth-date")
		draft.OwnerID, _ = cmd.Flags().GetString("owner")
		draft.FarmName, _ = cmd.Flags().GetString("farm")
		draft.Notes, _ = cmd.Flags().GetString("notes")

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post(cmd.Context(), "/animals", draft)
		if err != nil {
			return err
		}

		var animal clinic.Animal
		if err := decodeJSON(resp, &animal); err != nil {
			return err
		}
		printSuccess("Registered animal %s (nº %s)", animal.ID, animal.InternalID)
		return nil
	},
}

var animalHistoryCmd = &cobra.Command{
	Use:   "history <animal-id>",
	Short: "Show an animal's medical history, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/animals/"+url.PathEscape(args[0])+"/history")
		if err != nil {
			return err
		}

		var records []clinic.MedicalRecord
		if err := decodeJSON(resp, &records); err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No history recorded.")
			return nil
		}

		for _, r := range records {
			fmt.Printf("%s  %s  %s\n", r.Date, colorize(colorBold, string(r.Type)), r.Title)
			if r.Description != "" {
				fmt.Printf("    %s\n", r.Description)
			}
			if r.Type == clinic.RecordVaccine && r.NextDoseDate != "" {
				fmt.Printf("    next dose: %s\n", r.NextDoseDate)
			}
		}
		return nil
	},
}

var animalRecordCmd = &cobra.Command{
	Use:   "record <animal-id>",
	Short: "Add a medical record to an animal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		draft := clinic.RecordDraft{}
		draft.Date, _ = cmd.Flags().GetString("date")
		recType, _ := cmd.Flags().GetString("type")
		draft.Type = clinic.RecordType(recType)
		draft.Title, _ = cmd.Flags().GetString("title")
		draft.Description, _ = cmd.Flags().GetString("description")
		draft.Lot, _ = cmd.Flags().GetString("lot")
		draft.NextDoseDate, _ = cmd.Flags().GetString("next-dose")
		draft.Dosage, _ = cmd.Flags().GetString("dosage")

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post(cmd.Context(), "/animals/"+url.PathEscape(args[0])+"/history", draft)
		if err != nil {
			return err
		}

		var record clinic.MedicalRecord
		if err := decodeJSON(resp, &record); err != nil {
			return err
		}
		printSuccess("Recorded %s: %s", record.Type, record.Title)
		return nil
	},
}

func init() {
	animalAddCmd.Flags().String("number", "", "internal intake number (required)")
	animalAddCmd.Flags().String("name", "", "animal name")
	animalAddCmd.Flags().String("species", "", "species: Bovino|Equino|Suíno|Ovino|Cão|Gato|Outro (required)")
	animalAddCmd.Flags().String("category", "", "category: 'Grande Porte'|'Doméstico' (required)")
	animalAddCmd.Flags().String("breed", "", "breed (required)")
	animalAddCmd.Flags().String("sex", "", "sex: M|F (required)")
	animalAddCmd.Flags().String("birth-date", "", "birth date (YYYY-MM-DD)")
	animalAddCmd.Flags().String("owner", "", "owner id (required)")
	animalAddCmd.Flags().String("farm", "", "farm name override")
	animalAddCmd.Flags().String("notes", "", "free-form notes")
	animalAddCmd.MarkFlagRequired("number")
	animalAddCmd.MarkFlagRequired("species")
	animalAddCmd.MarkFlagRequired("category")
	animalAddCmd.MarkFlagRequired("breed")
	animalAddCmd.MarkFlagRequired("sex")
	animalAddCmd.MarkFlagRequired("owner")

	animalRecordCmd.Flags().String("date", "", "record date (YYYY-MM-DD, required)")
	animalRecordCmd.Flags().String("type", "", "type: Vaccine|Medication|Procedure|Diagnosis|Note (required)")
	animalRecordCmd.Flags().String("title", "", "record title (required)")
	animalRecordCmd.Flags().String("description", "", "free-text description")
	animalRecordCmd.Flags().String("lot", "", "vaccine lot number")
	animalRecordCmd.Flags().String("next-dose", "", "next dose date (YYYY-MM-DD, vaccines only)")
	animalRecordCmd.Flags().String("dosage", "", "medication dosage")
	animalRecordCmd.MarkFlagRequired("date")
	animalRecordCmd.MarkFlagRequired("type")
	animalRecordCmd.MarkFlagRequired("title")

	animalCmd.AddCommand(animalListCmd)
	animalCmd.AddCommand(animalAddCmd)
	animalCmd.AddCommand(animalHistoryCmd)
	animalCmd.AddCommand(animalRecordCmd)
}

// --- owners ---

var ownerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Manage clients",
}

var ownerListCmd = &cobra.Command{
	Use:   "list [search]",
	Short: "List clients, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := "/owners"
		if len(args) > 0 {
			path += "?q=" + url.QueryEscape(strings.Join(args, " "))
		}
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var owners []struct {
			clinic.Owner
			AnimalCount int `json:"animalCount"`
		}
		if err := decodeJSON(resp, &owners); err != nil {
			return err
		}

		if len(owners) == 0 {
			fmt.Println("No clients found.")
			return nil
		}

		tw := newTable()
		fmt.Fprintln(tw, "ID\tNAME\tPHONE\tFARM\tANIMALS")
		for _, o := range owners {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", o.ID, o.Name, o.Phone, o.FarmName, o.AnimalCount)
		}
		return tw.Flush()
	},
}

var ownerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new client",
	RunE: func(cmd *cobra.Command, args []string) error {
		draft := clinic.OwnerDraft{}
		draft.Name, _ = cmd.Flags().GetString("name")
		draft.Phone, _ = cmd.Flags().GetString("phone")
		draft.Email, _ = cmd.Flags().GetString("email")
		draft.FarmName, _ = cmd.Flags().GetString("farm")
		draft.Address, _ = cmd.Flags().GetString("address")

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post(cmd.Context(), "/owners", draft)
		if err != nil {
			return err
		}

		var owner clinic.Owner
		if err := decodeJSON(resp, &owner); err != nil {
			return err
		}
		printSuccess("Registered client %s (%s)", owner.Name, owner.ID)
		return nil
	},
}

func init() {
	ownerAddCmd.Flags().String("name", "", "client name (required)")
	ownerAddCmd.Flags().String("phone", "", "phone number (required)")
	ownerAddCmd.Flags().String("email", "", "email")
	ownerAddCmd.Flags().String("farm", "", "farm name")
	ownerAddCmd.Flags().String("address", "", "address")
	ownerAddCmd.MarkFlagRequired("name")
	ownerAddCmd.MarkFlagRequired("phone")

	ownerCmd.AddCommand(ownerListCmd)
	ownerCmd.AddCommand(ownerAddCmd)
}

// --- finance ---

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Manage billed services",
}

var txListCmd = &cobra.Command{
	Use:   "list [search]",
	Short: "List transactions, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := "/transactions"
		if len(args) > 0 {
			path += "?q=" + url.QueryEscape(strings.Join(args, " "))
		}
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var txs []struct {
			clinic.Transaction
			OwnerName string `json:"ownerName"`
			Amount    string `json:"amount"`
		}
		if err := decodeJSON(resp, &txs); err != nil {
			return err
		}

		if len(txs) == 0 {
			fmt.Println("No transactions found.")
			return nil
		}

		tw := newTable()
		fmt.Fprintln(tw, "DATE\tSERVICE\tOWNER\tAMOUNT\tSTATUS")
		for _, tx := range txs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				tx.Date, tx.ServiceName, tx.OwnerName, tx.Amount, tx.Status)
		}
		return tw.Flush()
	},
}

var txAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a billed service",
	RunE: func(cmd *cobra.Command, args []string) error {
		amountStr, _ := cmd.Flags().GetString("amount")
		amount, err := parseCents(amountStr)
		if err != nil {
			return err
		}

		draft := clinic.TransactionDraft{AmountCents: amount}
		draft.OwnerID, _ = cmd.Flags().GetString("owner")
		draft.AnimalID, _ = cmd.Flags().GetString("animal")
		draft.ServiceName, _ = cmd.Flags().GetString("service")
		draft.Date, _ = cmd.Flags().GetString("date")
		draft.PaymentMethod, _ = cmd.Flags().GetString("method")
		paid, _ := cmd.Flags().GetBool("paid")
		draft.Status = clinic.StatusPending
		if paid {
			draft.Status = clinic.StatusPaid
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post(cmd.Context(), "/transactions", draft)
		if err != nil {
			return err
		}

		var tx clinic.Transaction
		if err := decodeJSON(resp, &tx); err != nil {
			return err
		}
		printSuccess("Recorded %s: %s (%s)", tx.ServiceName, tx.AmountCents.BRL(), tx.Status)
		return nil
	},
}

var txSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show totals by payment status",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/transactions/summary")
		if err != nil {
			return err
		}

		var stats struct {
			Total   clinic.Cents `json:"totalCents"`
			Paid    clinic.Cents `json:"paidCents"`
			Pending clinic.Cents `json:"pendingCents"`
		}
		if err := decodeJSON(resp, &stats); err != nil {
			return err
		}

		printStatus("Total", "%s", stats.Total.BRL())
		printStatus("Paid", "%s", stats.Paid.BRL())
		printStatus("Pending", "%s", stats.Pending.BRL())
		return nil
	},
}

func init() {
	txAddCmd.Flags().String("owner", "", "owner id (required)")
	txAddCmd.Flags().String("animal", "", "animal id")
	txAddCmd.Flags().String("service", "", "service name (required)")
	txAddCmd.Flags().String("amount", "", "amount, e.g. 150.00 (required)")
	txAddCmd.Flags().String("date", "", "service date (YYYY-MM-DD, required)")
	txAddCmd.Flags().String("method", "Pix", "payment method")
	txAddCmd.Flags().Bool("paid", false, "mark as paid (default pending)")
	txAddCmd.MarkFlagRequired("owner")
	txAddCmd.MarkFlagRequired("service")
	txAddCmd.MarkFlagRequired("amount")
	txAddCmd.MarkFlagRequired("date")

	txCmd.AddCommand(txListCmd)
	txCmd.AddCommand(txAddCmd)
	txCmd.AddCommand(txSummaryCmd)
}

// --- inventory ---

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Manage stock",
}

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stock items with low-stock and expiry flags",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/inventory")
		if err != nil {
			return err
		}

		var items []struct {
			clinic.InventoryItem
			LowStock bool `json:"lowStock"`
			Expired  bool `json:"expired"`
		}
		if err := decodeJSON(resp, &items); err != nil {
			return err
		}

		if len(items) == 0 {
			fmt.Println("Inventory is empty.")
			return nil
		}

		tw := newTable()
		fmt.Fprintln(tw, "ID\tNAME\tQTY\tUNIT\tEXPIRY\tFLAGS")
		for _, item := range items {
			var flags []string
			if item.LowStock {
				flags = append(flags, "LOW")
			}
			if item.Expired {
				flags = append(flags, "EXPIRED")
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
				item.ID, item.Name, item.Quantity, item.Unit, item.ExpiryDate, strings.Join(flags, ","))
		}
		return tw.Flush()
	},
}

var inventoryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a stock item",
	RunE: func(cmd *cobra.Command, args []string) error {
		draft := clinic.ItemDraft{}
		draft.Name, _ = cmd.Flags().GetString("name")
		draft.Type, _ = cmd.Flags().GetString("type")
		draft.Quantity, _ = cmd.Flags().GetInt("quantity")
		unit, _ := cmd.Flags().GetString("unit")
		draft.Unit = clinic.Unit(unit)
		draft.ExpiryDate, _ = cmd.Flags().GetString("expiry")
		draft.MinStock, _ = cmd.Flags().GetInt("min-stock")

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post(cmd.Context(), "/inventory", draft)
		if err != nil {
			return err
		}

		var item clinic.InventoryItem
		if err := decodeJSON(resp, &item); err != nil {
			return err
		}
		printSuccess("Added %s (%d %s)", item.Name, item.Quantity, item.Unit)
		return nil
	},
}

var inventoryDeleteCmd = &cobra.Command{
	Use:   "delete <item-id>",
	Short: "Remove a stock item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.delete(cmd.Context(), "/inventory/"+url.PathEscape(args[0]))
		if err != nil {
			return err
		}
		if err := expectStatus(resp, 204); err != nil {
			return err
		}
		printSuccess("Removed item %s", args[0])
		return nil
	},
}

func init() {
	inventoryAddCmd.Flags().String("name", "", "item name (required)")
	inventoryAddCmd.Flags().String("type", "", "item type, e.g. Vacina")
	inventoryAddCmd.Flags().Int("quantity", 0, "quantity in stock")
	inventoryAddCmd.Flags().String("unit", "unidade", "unit: ml|mg|dose|unidade")
	inventoryAddCmd.Flags().String("expiry", "", "expiry date (YYYY-MM-DD, required)")
	inventoryAddCmd.Flags().Int("min-stock", 5, "reorder threshold")
	inventoryAddCmd.MarkFlagRequired("name")
	inventoryAddCmd.MarkFlagRequired("expiry")

	inventoryCmd.AddCommand(inventoryListCmd)
	inventoryCmd.AddCommand(inventoryAddCmd)
	inventoryCmd.AddCommand(inventoryDeleteCmd)
}

// --- insight ---

var insightCmd = &cobra.Command{
	Use:   "insight <animal-id>",
	Short: "AI summary of an animal's medical history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/animals/"+url.PathEscape(args[0])+"/insight")
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}
		fmt.Println(result["insight"])
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		tw := newTable()
		fmt.Fprintln(tw, "KEY\tVALUE\tENV")
		for _, info := range config.ShowAll(cfg) {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Key, info.Value, info.EnvVar)
		}
		return tw.Flush()
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetKey(config.NewBackend(), args[0], args[1]); err != nil {
			return err
		}
		printSuccess("Set %s", args[0])
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Reset a config key to its default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(config.NewBackend(), args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}
