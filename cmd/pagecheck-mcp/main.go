package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lendwise/landing/checks"
	"github.com/lendwise/landing/config"
	"github.com/lendwise/landing/harness"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	cfg := config.Load()

	// stdout carries the MCP protocol; logs and text reports go to stderr.
	config.InitLogger(cfg.Log, os.Stderr)

	h := harness.New(cfg.Browser, cfg.Harness)
	h.SetOutput(os.Stderr)

	s := server.NewMCPServer(
		"pagecheck",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	listChecksTool := mcp.NewTool("list_checks",
		mcp.WithDescription("List the visual checks available for the LendWise landing page."),
	)
	s.AddTool(listChecksTool, handleListChecks())

	runCheckTool := mcp.NewTool("run_check",
		mcp.WithDescription("Run one visual check in a fresh headless browser and return its measurements, console output and verdict as JSON."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Check name, as returned by list_checks"),
			mcp.Enum(checks.Names()...),
		),
	)
	s.AddTool(runCheckTool, handleRunCheck(h))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleListChecks() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var b strings.Builder
		for _, name := range checks.Names() {
			c, _ := checks.Lookup(name)
			fmt.Fprintf(&b, "%s: %s\n", name, c.Description)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

// checkRunner is the part of the harness the tool handler needs.
type checkRunner interface {
	Run(ctx context.Context, chk harness.Check) (*harness.Result, error)
}

func handleRunCheck(h checkRunner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError("name is required"), nil
		}
		chk, ok := checks.Lookup(name)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown check %q (available: %s)",
				name, strings.Join(checks.Names(), ", "))), nil
		}

		res, runErr := h.Run(ctx, chk)
		report := res.ToReport(runErr)

		body, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode report: %v", err)), nil
		}
		if !report.Passed {
			return mcp.NewToolResultError(string(body)), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}
