package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// medicineScheme is the URI scheme for reference medicine resources.
	medicineScheme = "medicine://"

	// catalogURI is the static resource describing the loaded catalog.
	catalogURI = "pillmate://catalog"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         catalogURI,
		Name:        "catalog",
		Description: "State and size of the reference medicine catalog",
		MIMEType:    "application/json",
	}, s.handleCatalogResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: medicineScheme + "{id}",
		Name:        "medicine",
		Description: "A reference medicine record by item id",
		MIMEType:    "application/json",
	}, s.handleMedicineResource)
}

// handleCatalogResource returns the catalog state and record count.
func (s *Server) handleCatalogResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	info := struct {
		State   string `json:"state"`
		Records int    `json:"records"`
	}{
		State:   s.ports.Catalog.State().String(),
		Records: s.ports.Catalog.Count(),
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling catalog info: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleMedicineResource returns one reference record.
func (s *Server) handleMedicineResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractMedicineID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	record, ok := s.ports.Catalog.GetByID(id)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := json.MarshalIndent(toMedicineOutput(&record), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling medicine: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractMedicineID extracts the id from a URI like medicine://{id}.
func extractMedicineID(uri string) string {
	if !strings.HasPrefix(uri, medicineScheme) {
		return ""
	}
	id := strings.TrimPrefix(uri, medicineScheme)
	if strings.Contains(id, "/") {
		return ""
	}
	return strings.TrimSpace(id)
}
