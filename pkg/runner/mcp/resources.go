package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/printers"
)

func registerResources(srv *server.MCPServer, d *app.Dispatcher) {
	registerAgendaResource(srv, d)
	registerAgendaTemplate(srv, d)
	registerStreaksResource(srv, d)
}

func registerAgendaResource(srv *server.MCPServer, d *app.Dispatcher) {
	resource := mcp.NewResource(
		"daybook://agenda",
		"Today",
		mcp.WithResourceDescription("Today's tasks, habits, events, and reminders."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		res, err := d.Dispatch(ctx, app.ActionAgenda, nil)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, printers.Present(res))
	})
}

func registerAgendaTemplate(srv *server.MCPServer, d *app.Dispatcher) {
	template := mcp.NewResourceTemplate(
		"daybook://agenda/{date}",
		"Agenda",
		mcp.WithTemplateDescription("Tasks, habits, events, and reminders of one day (YYYY-MM-DD)."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		date := templateArg(request.Params.Arguments["date"])
		res, err := d.Dispatch(ctx, app.ActionAgenda, app.Params{"date": date})
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, printers.Present(res))
	})
}

func registerStreaksResource(srv *server.MCPServer, d *app.Dispatcher) {
	resource := mcp.NewResource(
		"daybook://streaks",
		"Streaks",
		mcp.WithResourceDescription("Current and longest streak of every habit."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		res, err := d.Dispatch(ctx, app.ActionStreaks, nil)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, printers.Present(res))
	})
}

// templateArg reads a URI template variable, which the server may hand over
// as a string or a one-element list.
func templateArg(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
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
