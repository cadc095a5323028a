package mcp

import (
	"context"
	"encoding/json"
	"fmt"
)

// CatalogURI names the tool catalog resource.
const CatalogURI = "hr://tools/catalog"

// CatalogEntry describes one tool in the catalog resource.
type CatalogEntry struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	RequiredScopes []string `json:"required_scopes"`
	UsesStore      bool     `json:"uses_store"`
}

type catalogResource struct {
	tools ToolRegistry
}

// NewCatalogResource exposes the registered tools and the scopes each
// requires.
func NewCatalogResource(tools ToolRegistry) ResourceProvider {
	return &catalogResource{tools: tools}
}

func (c *catalogResource) Read(ctx context.Context) (*Resource, error) {
	defs := c.tools.ListTools()
	entries := make([]CatalogEntry, 0, len(defs))
	for _, d := range defs {
		scopes := d.RequiredScopes
		if scopes == nil {
			scopes = []string{}
		}
		entries = append(entries, CatalogEntry{
			Name:           d.Name,
			Description:    d.Description,
			RequiredScopes: scopes,
			UsesStore:      d.UsesStore,
		})
	}
	return JSONResource(CatalogURI, entries)
}

func (c *catalogResource) Definition() ResourceDefinition {
	return ResourceDefinition{
		URI:         CatalogURI,
		Name:        "Tool catalog",
		Description: "Registered tools and the scopes each requires",
		MimeType:    "application/json",
	}
}

// JSONResource encodes v as an application/json resource.
func JSONResource(uri string, v any) (*Resource, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", uri, err)
	}
	return &Resource{URI: uri, MimeType: "application/json", Text: string(b)}, nil
}
