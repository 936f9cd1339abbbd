package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ervinoantonio-ui/vetmaster/internal/query"
	"github.com/ervinoantonio-ui/vetmaster/internal/storage"
)

// MCPDeps holds dependencies for the MCP server. All exposed tools are
// read-only: assistants may query the practice, never write to it.
type MCPDeps struct {
	Store *storage.Store
	Now   func() time.Time
}

// NewMCPServer creates an MCP server exposing the clinic's records to
// local AI assistants.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	s := server.NewMCPServer(
		"vetmaster",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("vetmaster: local veterinary practice records: animals, owners, medical history, and clinic dashboard."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("search_animals",
			mcp.WithDescription("Search registered animals by intake number, name, owner name, or farm name. An empty query lists all animals."),
			mcp.WithString("query", mcp.Description("Search term (case-insensitive substring)")),
		),
		mcpSearchAnimals(deps),
	)

	s.AddTool(
		mcp.NewTool("animal_history",
			mcp.WithDescription("Return an animal's medical history, newest first."),
			mcp.WithString("animal_id", mcp.Description("The animal's record id"), mcp.Required()),
		),
		mcpAnimalHistory(deps),
	)

	s.AddTool(
		mcp.NewTool("dashboard_summary",
			mcp.WithDescription("Return the clinic dashboard: animal count, pending payments, low-stock items, and upcoming vaccines."),
		),
		mcpDashboardSummary(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"clinic://dashboard",
			"Clinic Dashboard",
			mcp.WithResourceDescription("Current clinic summary statistics as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceDashboard(deps),
	)

	return s
}

func mcpSearchAnimals(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		term := req.GetString("query", "")

		animals, err := deps.Store.Animals()
		if err != nil {
			if !storage.IsCorrupt(err) {
				return mcpError(fmt.Sprintf("loading animals: %v", err)), nil
			}
			animals = nil
		}
		owners, err := deps.Store.Owners()
		if err != nil && !storage.IsCorrupt(err) {
			return mcpError(fmt.Sprintf("loading owners: %v", err)), nil
		}

		type animalResult struct {
			ID         string `json:"id"`
			InternalID string `json:"internal_id"`
			Name       string `json:"name,omitempty"`
			Species    string `json:"species"`
			Breed      string `json:"breed"`
			OwnerName  string `json:"owner_name"`
		}

		matched := query.FilterAnimals(animals, owners, term)
		results := make([]animalResult, len(matched))
		for i, a := range matched {
			ownerName := unknownOwnerLabel
			if o, ok := query.OwnerByID(owners, a.OwnerID); ok {
				ownerName = o.Name
			}
			results[i] = animalResult{
				ID:         a.ID,
				InternalID: a.InternalID,
				Name:       a.Name,
				Species:    string(a.Species),
				Breed:      a.Breed,
				OwnerName:  ownerName,
			}
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpAnimalHistory(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		animalID, err := req.RequireString("animal_id")
		if err != nil {
			return mcpError("animal_id is required"), nil
		}

		animals, err := deps.Store.Animals()
		if err != nil && !storage.IsCorrupt(err) {
			return mcpError(fmt.Sprintf("loading animals: %v", err)), nil
		}
		if _, ok := query.AnimalByID(animals, animalID); !ok {
			return mcpError(fmt.Sprintf("animal %s not found", animalID)), nil
		}

		records, err := deps.Store.History()
		if err != nil {
			if !storage.IsCorrupt(err) {
				return mcpError(fmt.Sprintf("loading history: %v", err)), nil
			}
			records = nil
		}

		b, err := json.Marshal(query.HistoryForAnimal(records, animalID))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal history: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func dashboardJSON(deps MCPDeps) ([]byte, error) {
	animals, err := deps.Store.Animals()
	if err != nil && !storage.IsCorrupt(err) {
		return nil, err
	}
	finance, err := deps.Store.Finance()
	if err != nil && !storage.IsCorrupt(err) {
		return nil, err
	}
	inventory, err := deps.Store.Inventory()
	if err != nil && !storage.IsCorrupt(err) {
		return nil, err
	}
	history, err := deps.Store.History()
	if err != nil && !storage.IsCorrupt(err) {
		return nil, err
	}

	stats := query.Dashboard(animals, finance, inventory, history, deps.Now())
	return json.Marshal(stats)
}

func mcpDashboardSummary(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := dashboardJSON(deps)
		if err != nil {
			return mcpError(fmt.Sprintf("computing dashboard: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceDashboard(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := dashboardJSON(deps)
		if err != nil {
			return nil, fmt.Errorf("computing dashboard: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
