// Package mcp exposes docsmith's scanner and organizer over the Model
// Context Protocol, so agents can inspect a package's documentation layout
// without building the site.
package mcp

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/docsmith/docsmith/internal/directive"
	"github.com/docsmith/docsmith/internal/introspect"
	"github.com/docsmith/docsmith/internal/markdown"
	"github.com/docsmith/docsmith/internal/organize"
)

//go:embed instructions.md
var instructions string

type Server struct {
	mcpServer *server.MCPServer
	loader    introspect.Loader
	organizer *organize.Organizer
}

func NewServer(loader introspect.Loader, organizer *organize.Organizer) *Server {
	s := &Server{loader: loader, organizer: organizer}

	mcpServer := server.NewMCPServer(
		"docsmith",
		"0.1.0",
		server.WithInstructions(instructions),
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerTools(mcpServer)
	s.registerResources(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("scan_package",
			mcp.WithDescription("Scan a package's public API and report every docsmith directive (%family, %order, %seealso, %nodoc) found in its doc comments."),
			mcp.WithString("package",
				mcp.Description("Package pattern to scan (e.g., \"./graph\")"),
				mcp.Required(),
			),
		),
		s.handleScanPackage,
	)

	mcpServer.AddTool(
		mcp.NewTool("organize_preview",
			mcp.WithDescription("Preview the reference section layout docsmith would generate for a package, as the YAML that would land in _quarto.yml."),
			mcp.WithString("package",
				mcp.Description("Package pattern to organize"),
				mcp.Required(),
			),
		),
		s.handleOrganizePreview,
	)
}

func (s *Server) registerResources(mcpServer *server.MCPServer) {
	mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"godoc://{package}/{symbol}",
			"Package symbol documentation",
			mcp.WithTemplateDescription("Read a symbol's doc comment with docsmith directives stripped out."),
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		s.handleReadResource,
	)
}

func (s *Server) handleScanPackage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pattern, _ := args["package"].(string)
	if pattern == "" {
		return mcp.NewToolResultError("missing required parameter: package"), nil
	}

	pkg, err := s.loader.Load(pattern)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load %s: %v", pattern, err)), nil
	}

	type record struct {
		Symbol  string   `json:"symbol"`
		Family  string   `json:"family,omitempty"`
		Order   *int     `json:"order,omitempty"`
		SeeAlso []string `json:"seealso,omitempty"`
		NoDoc   bool     `json:"nodoc,omitempty"`
	}
	var records []record
	for name, rec := range organize.ExtractDirectives(pkg) {
		r := record{Symbol: name, Family: rec.Family, SeeAlso: rec.SeeAlso, NoDoc: rec.NoDoc}
		if rec.Order != directive.OrderUnset {
			order := rec.Order
			r.Order = &order
		}
		records = append(records, r)
	}

	resultJSON, _ := json.MarshalIndent(map[string]interface{}{
		"package":    pkg.Name,
		"symbols":    len(pkg.Symbols),
		"directives": records,
		"skipped":    pkg.Skipped,
	}, "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (s *Server) handleOrganizePreview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pattern, _ := args["package"].(string)
	if pattern == "" {
		return mcp.NewToolResultError("missing required parameter: package"), nil
	}

	pkg, err := s.loader.Load(pattern)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load %s: %v", pattern, err)), nil
	}

	sections := s.organizer.Organize(pkg)
	if sections == nil {
		return mcp.NewToolResultText("no documentable symbols"), nil
	}
	out, err := yaml.Marshal(sections)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding sections: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleReadResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	trimmed := strings.TrimPrefix(uri, "godoc://")
	idx := strings.LastIndex(trimmed, "/")
	if idx <= 0 || idx == len(trimmed)-1 {
		return nil, fmt.Errorf("invalid resource URI: %s", uri)
	}
	pattern, symbol := trimmed[:idx], trimmed[idx+1:]

	pkg, err := s.loader.Load(pattern)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", pattern, err)
	}

	doc, ok := findDoc(pkg, symbol)
	if !ok {
		return nil, fmt.Errorf("symbol %s not found in %s", symbol, pkg.Name)
	}

	text := directive.Strip(doc)
	if related := directive.Extract(doc).SeeAlso; len(related) > 0 {
		block := markdown.SeeAlsoBlock(related, func(name string) string {
			if _, ok := findDoc(pkg, name); ok {
				return fmt.Sprintf("godoc://%s/%s", pattern, name)
			}
			return ""
		})
		text = text + "\n\n" + block
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     text,
		},
	}, nil
}

// findDoc resolves a symbol name, or an Owner.Member qualified name, to its
// doc comment.
func findDoc(pkg *introspect.Package, symbol string) (string, bool) {
	owner, member, qualified := strings.Cut(symbol, ".")
	for _, sym := range pkg.Symbols {
		if !qualified && sym.Name == symbol {
			return sym.Doc, true
		}
		if qualified && sym.Name == owner {
			for _, m := range sym.Members {
				if m.Name == member {
					return m.Doc, true
				}
			}
		}
	}
	return "", false
}

func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) Shutdown(_ context.Context) error {
	return nil
}
