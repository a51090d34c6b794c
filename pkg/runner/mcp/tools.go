package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/tabby/pkg/timeutil"
)

const dayHelp = "Day as YYYY-MM-DD, M/D, today, yesterday or tomorrow. Defaults to today."

func registerTools(srv *server.MCPServer, svc *Service) {
	registerGetEntryTool(srv, svc)
	registerListEntriesTool(srv, svc)
	registerSetFieldsTool(srv, svc)
	registerDeleteEntryTool(srv, svc)
	registerSearchEntriesTool(srv, svc)
	registerReportTool(srv, svc)
}

func registerGetEntryTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_entry",
		mcp.WithDescription("Fetch the journal entry for one day."),
		mcp.WithString("day", mcp.Description(dayHelp)),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dto, err := svc.EntryByDay(ctx, request.GetString("day", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerListEntriesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_entries",
		mcp.WithDescription("List entries of recent days, oldest first."),
		mcp.WithString("last",
			mcp.Description("Span ending today, for example 3d, 2w, 1mo. Defaults to "+timeutil.DefaultSpan+"."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		last := request.GetString("last", timeutil.DefaultSpan)
		entries, err := svc.ListEntries(ctx, last)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"last":    last,
			"entries": entries,
			"count":   len(entries),
		})
	})
}

func registerSetFieldsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"set_fields",
		mcp.WithDescription("Write intention, goal, reflection or mood for a day. Omitted fields are left unchanged."),
		mcp.WithString("day", mcp.Description(dayHelp)),
		mcp.WithString("intention", mcp.Description("Intention for the day.")),
		mcp.WithString("goal", mcp.Description("Goal for the day.")),
		mcp.WithString("reflection", mcp.Description("Reflection on the day.")),
		mcp.WithString("mood", mcp.Description("Mood for the day.")),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Day        string  `json:"day"`
			Intention  *string `json:"intention"`
			Goal       *string `json:"goal"`
			Reflection *string `json:"reflection"`
			Mood       *string `json:"mood"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.SetFields(ctx, SetFieldsOptions{
			Day:        args.Day,
			Intention:  args.Intention,
			Goal:       args.Goal,
			Reflection: args.Reflection,
			Mood:       args.Mood,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerDeleteEntryTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_entry",
		mcp.WithDescription("Delete the journal entry for one day."),
		mcp.WithString("day",
			mcp.Required(),
			mcp.Description("Day as YYYY-MM-DD, M/D, today, yesterday or tomorrow."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		day, err := request.RequireString("day")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.DeleteEntry(ctx, day); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"deleted": day})
	})
}

func registerSearchEntriesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"search_entries",
		mcp.WithDescription("Search entries by substring match across every field, newest first."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Case-insensitive search text."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries to return (default 20)."),
			mcp.Min(1),
			mcp.Max(100),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		limit := request.GetInt("limit", 20)

		results, err := svc.SearchEntries(ctx, query, limit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"query":   query,
			"limit":   limit,
			"results": results,
			"count":   len(results),
		})
	})
}

func registerReportTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"report",
		mcp.WithDescription("Count filled-in fields and writing streaks over a span ending today."),
		mcp.WithString("last",
			mcp.Description("Span ending today, for example 3d, 2w, 1mo. Defaults to "+timeutil.DefaultSpan+"."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		r, err := svc.Report(ctx, request.GetString("last", timeutil.DefaultSpan))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"since":         r.Since.Format("2006-01-02"),
			"until":         r.Until.Format("2006-01-02"),
			"written":       r.Written,
			"intentions":    r.Intentions,
			"goals":         r.Goals,
			"reflections":   r.Reflections,
			"longestStreak": r.LongestStreak,
			"currentStreak": r.CurrentStreak,
		})
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
