package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/tabby/pkg/timeutil"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerRecentResource(srv, svc)
	registerDayTemplate(srv, svc)
}

func registerRecentResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"tabby://entries",
		"Recent Entries",
		mcp.WithResourceDescription("Journal entries of the last "+timeutil.DefaultSpan+"."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		entries, err := svc.ListEntries(ctx, timeutil.DefaultSpan)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"entries": entries,
			"count":   len(entries),
		})
	})
}

func registerDayTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"tabby://entries/{day}",
		"Day Entry",
		mcp.WithTemplateDescription("The journal entry for one day, YYYY-MM-DD."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		day := argument(request.Params.Arguments["day"])
		if day == "" {
			return nil, fmt.Errorf("day is required")
		}
		dto, err := svc.EntryByDay(ctx, day)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{"entry": dto})
	})
}

// argument reads a template variable, which arrives as a string or a
// single-element list depending on the matcher.
func argument(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		if len(t) > 0 {
			return t[0]
		}
	}
	return ""
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
