package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/printers"
)

// argument is one string parameter of a tool.
type argument struct {
	name        string
	description string
	required    bool
}

var (
	argDate = argument{name: "date", description: "Day in YYYY-MM-DD form. Defaults to today."}
	argID   = func(what string) argument {
		return argument{name: "id", description: what + " identifier.", required: true}
	}
)

// tools maps each dispatcher action to its MCP description.
var tools = []struct {
	action      string
	description string
	args        []argument
}{
	{
		action:      app.ActionAgenda,
		description: "List tasks, overdue tasks, habits, events, and reminders for a day.",
		args:        []argument{argDate},
	},
	{
		action:      app.ActionToggleTask,
		description: "Toggle a task's completion. Recurring tasks are completed for the given day only.",
		args:        []argument{argID("Task"), argDate},
	},
	{
		action:      app.ActionCheckIn,
		description: "Toggle a habit check-in for a day.",
		args:        []argument{argID("Habit"), argDate},
	},
	{
		action:      app.ActionCheckInAll,
		description: "Check in every habit that is due and not yet done on a day.",
		args:        []argument{argDate},
	},
	{
		action:      app.ActionStreaks,
		description: "Current and longest streak of every habit, or of one habit when id is set.",
		args:        []argument{{name: "id", description: "Optional habit identifier."}, argDate},
	},
	{
		action:      app.ActionRefresh,
		description: "Reload everything from the remote store, falling back to the offline cache.",
	},
	{
		action:      app.ActionReport,
		description: "Completions per habit and recurring task between two days.",
		args: []argument{
			{name: "since", description: "First day, YYYY-MM-DD. Defaults to six days before until."},
			{name: "until", description: "Last day, YYYY-MM-DD. Defaults to today."},
		},
	},
	{
		action:      app.ActionDismissReminder,
		description: "Dismiss a reminder so it no longer fires.",
		args:        []argument{argID("Reminder")},
	},
}

func registerTools(srv *server.MCPServer, d *app.Dispatcher) {
	for _, t := range tools {
		opts := []mcp.ToolOption{mcp.WithDescription(t.description)}
		for _, a := range t.args {
			popts := []mcp.PropertyOption{mcp.Description(a.description)}
			if a.required {
				popts = append(popts, mcp.Required())
			}
			opts = append(opts, mcp.WithString(a.name, popts...))
		}
		srv.AddTool(mcp.NewTool(t.action, opts...), dispatchHandler(d, t.action, t.args))
	}
}

func dispatchHandler(d *app.Dispatcher, action string, args []argument) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := app.Params{}
		for _, a := range args {
			if a.required {
				v, err := request.RequireString(a.name)
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				params[a.name] = v
				continue
			}
			if v := strings.TrimSpace(request.GetString(a.name, "")); v != "" {
				params[a.name] = v
			}
		}

		res, err := d.Dispatch(ctx, action, params)
		if err != nil {
			return toErrorResult(err), nil
		}
		return toJSONResult(printers.Present(res))
	}
}

func toErrorResult(err error) *mcp.CallToolResult {
	dto := printers.PresentError(err)
	result, merr := mcp.NewToolResultJSON(dto)
	if merr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	result.IsError = true
	return result
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
