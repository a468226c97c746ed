// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes casedesk records to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/casedesk/internal/apperr"
	"github.com/starford/casedesk/internal/caseservice"
	"github.com/starford/casedesk/internal/models"
)

const statusVocabularyURI = "casedesk://status-vocabulary"

// Server wraps the MCP server with casedesk tools.
type Server struct {
	mcp *server.MCPServer
	svc *caseservice.Service
}

// New creates a new MCP server with all casedesk tools registered.
func New(svc *caseservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"casedesk",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_records",
		mcp.WithDescription("Advanced search across cases, customers, investigations and targets. "+
			"Every filter is a case-insensitive substring match except status and the id filters, "+
			"which match exactly. Read the status vocabulary resource for valid statuses."),
		mcp.WithArray("entities", mcp.WithStringItems(), mcp.Description("Entity types to search: cases, customers, investigations, targets (default all)")),
		mcp.WithString("name", mcp.Description("Case, customer or target name")),
		mcp.WithString("status", mcp.Description("Exact status of cases, investigations and targets")),
		mcp.WithString("description", mcp.Description("Case or investigation description")),
		mcp.WithString("email", mcp.Description("Customer email")),
		mcp.WithString("phone", mcp.Description("Customer phone")),
		mcp.WithString("address", mcp.Description("Customer address")),
		mcp.WithNumber("case_id", mcp.Description("Parent case of customers and investigations")),
		mcp.WithString("title", mcp.Description("Investigation title")),
		mcp.WithString("type", mcp.Description("Target type")),
		mcp.WithString("details", mcp.Description("Target details")),
		mcp.WithNumber("investigation_id", mcp.Description("Parent investigation of targets")),
		mcp.WithBoolean("cross_entity", mcp.Description("Resolve cases by customer_name and investigations by target_name")),
		mcp.WithString("customer_name", mcp.Description("Used with cross_entity")),
		mcp.WithString("target_name", mcp.Description("Used with cross_entity")),
		mcp.WithNumber("page", mcp.Description("Page number (default 1)")),
		mcp.WithNumber("per_page", mcp.Description("Results per entity (default 10, max 100)")),
	), s.searchRecords)

	s.mcp.AddTool(mcp.NewTool("get_case",
		mcp.WithDescription("Read a case with its customer and investigation counts."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Case ID")),
	), s.getCase)

	s.mcp.AddTool(mcp.NewTool("list_cases",
		mcp.WithDescription("List cases, newest last."),
		mcp.WithNumber("page", mcp.Description("Page number (default 1)")),
		mcp.WithNumber("per_page", mcp.Description("Page size (default 10, max 100)")),
	), s.listCases)

	s.mcp.AddTool(mcp.NewTool("get_investigation",
		mcp.WithDescription("Read an investigation with its target count."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Investigation ID")),
	), s.getInvestigation)

	s.mcp.AddTool(mcp.NewTool("list_targets",
		mcp.WithDescription("List targets, optionally only those of one investigation."),
		mcp.WithNumber("investigation_id", mcp.Description("Restrict to this investigation")),
		mcp.WithNumber("page", mcp.Description("Page number (default 1)")),
		mcp.WithNumber("per_page", mcp.Description("Page size (default 10, max 100)")),
	), s.listTargets)

	s.mcp.AddTool(mcp.NewTool("dashboard_summary",
		mcp.WithDescription("Record totals per entity type and the case status distribution."),
	), s.dashboardSummary)

	s.mcp.AddTool(mcp.NewTool("attach_evidence",
		mcp.WithDescription("Download a file from an http(s) URL or decode a base64 data URI and store it as a case attachment. "+
			"Allowed types: "+allowedExtensionList+"."),
		mcp.WithNumber("case_id", mcp.Required(), mcp.Description("Case to attach the file to")),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:<mime>;base64,<data> URI")),
		mcp.WithString("filename", mcp.Description("Optional file name; derived from the URL when empty")),
	), s.attachEvidence)

	s.mcp.AddResource(
		mcp.NewResource(statusVocabularyURI, "Status Vocabulary",
			mcp.WithResourceDescription("Valid record statuses and their meaning."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readStatusVocabulary,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// errorResult converts a service error into a tool error. The client message
// is preferred so internals stay out of the transcript.
func errorResult(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(apperr.Message(err, err.Error())), nil
}

func pageArgs(req mcp.CallToolRequest) models.PageRequest {
	return models.NewPageRequest(req.GetInt("page", models.DefaultPage), req.GetInt("per_page", models.DefaultPerPage))
}

func (s *Server) searchRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	raw, err := json.Marshal(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var params models.SearchParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return mcp.NewToolResultError("invalid search arguments: " + err.Error()), nil
	}
	res, err := s.svc.Search(ctx, params, pageArgs(req))
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(res)
}

func (s *Server) getCase(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.GetCase(ctx, int64(id))
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(c)
}

func (s *Server) listCases(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.svc.ListCases(ctx, pageArgs(req))
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{"cases": page.Items, "pagination": page.Pagination})
}

func (s *Server) getInvestigation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	inv, err := s.svc.GetInvestigation(ctx, int64(id))
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(inv)
}

func (s *Server) listTargets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		page models.Page[models.Target]
		err  error
	)
	if id := req.GetInt("investigation_id", 0); id > 0 {
		page, err = s.svc.ListTargetsByInvestigation(ctx, int64(id), pageArgs(req))
	} else {
		page, err = s.svc.ListTargets(ctx, pageArgs(req))
	}
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{"targets": page.Items, "pagination": page.Pagination})
}

func (s *Server) dashboardSummary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sum, err := s.svc.Dashboard(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(sum)
}

func (s *Server) readStatusVocabulary(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      statusVocabularyURI,
			MIMEType: "text/markdown",
			Text:     StatusVocabulary,
		},
	}, nil
}
