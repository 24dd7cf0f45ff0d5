// Package mcpserver exposes marksheet analyses as Model Context Protocol
// tools over stdio. Each call loads the named file afresh.
package mcpserver

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/spektr-org/marksheet/engine"
	"github.com/spektr-org/marksheet/export"
	"github.com/spektr-org/marksheet/loader"
)

// Tool names.
const (
	ToolDescribe = "describe_dataset"
	ToolAnalyze  = "analyze_dataset"
)

// Options are the defaults applied to every call.
type Options struct {
	Name       string
	Version    string
	KeyColumn  string
	TopN       int
	NameColumn string
	// Threshold applies when a call gives none; nil means the engine default.
	Threshold *float64
	Logger    *slog.Logger
}

// Server wraps an MCP server with the marksheet tools registered.
type Server struct {
	opts Options
	mcp  *server.MCPServer
	log  *slog.Logger
}

// New creates the server and registers its tools.
func New(opts Options) *Server {
	if opts.Name == "" {
		opts.Name = "marksheet"
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		opts: opts,
		log:  opts.Logger,
		mcp: server.NewMCPServer(opts.Name, opts.Version,
			server.WithLogging(),
			server.WithRecovery(),
		),
	}

	describeTool := mcp.NewTool(ToolDescribe,
		mcp.WithDescription("Profile a CSV or XLSX marksheet: row count, each column's kind (numeric or text), role, distinct and missing counts, and columns that cannot be analysed."),
		mcp.WithString("file_path",
			mcp.Description("Path to the .csv or .xlsx file."),
			mcp.Required(),
		),
		mcp.WithString("output_format",
			mcp.Description("Format of the result."),
			mcp.DefaultString("markdown"),
			mcp.Enum("markdown", "text", "json", "yaml"),
		),
	)

	analyzeTool := mcp.NewTool(ToolAnalyze,
		mcp.WithDescription("Run one analysis over a CSV or XLSX marksheet: statistics, pass/fail, grades, top performers, weak students, pass rates, trends, comparisons, correlation, value counts, insights or cleaning."),
		mcp.WithString("file_path",
			mcp.Description("Path to the .csv or .xlsx file."),
			mcp.Required(),
		),
		mcp.WithString("operation",
			mcp.Description("Analysis to run."),
			mcp.Required(),
			mcp.Enum(engine.Operations...),
		),
		mcp.WithString("columns",
			mcp.Description("Comma-separated columns to analyse. Omit to use every numeric column."),
		),
		mcp.WithNumber("threshold",
			mcp.Description("Pass threshold for passfail and weak."),
			mcp.DefaultNumber(engine.DefaultThreshold),
		),
		mcp.WithNumber("top_n",
			mcp.Description("Number of rows returned by top."),
			mcp.DefaultNumber(float64(engine.DefaultTopN)),
		),
		mcp.WithString("name_column",
			mcp.Description("Column used to label rows in top and weak (e.g. Name)."),
		),
		mcp.WithString("group_column",
			mcp.Description("Group column for trend."),
		),
		mcp.WithString("column",
			mcp.Description("Single column for value-counts and subject-grades."),
		),
		mcp.WithString("rows",
			mcp.Description("Comma-separated zero-based row positions for compare."),
		),
		mcp.WithString("key",
			mcp.Description("Comma-separated key values for lookup and compare-keys."),
		),
		mcp.WithString("key_column",
			mcp.Description("Column searched by lookup and compare-keys."),
		),
		mcp.WithString("output_format",
			mcp.Description("Format of the result."),
			mcp.DefaultString("markdown"),
			mcp.Enum("markdown", "text", "json", "csv", "yaml"),
		),
	)

	s.mcp.AddTool(describeTool, s.handleDescribe)
	s.mcp.AddTool(analyzeTool, s.handleAnalyze)
	return s
}

// ServeStdio serves the tools on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.log.Info("starting marksheet MCP server via stdio")
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleDescribe(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments
	path, ok := args["file_path"].(string)
	if !ok || path == "" {
		return nil, fmt.Errorf("missing or invalid required argument: file_path (string)")
	}
	format, err := outputFormat(args)
	if err != nil {
		return nil, err
	}
	s.log.Debug("handling describe_dataset", "path", path, "format", format)

	a, err := s.open(path)
	if err != nil {
		return nil, err
	}
	profile := a.Describe()

	var buf bytes.Buffer
	switch format {
	case export.FormatJSON, export.FormatYAML:
		res := &engine.Result{Operation: "describe", Title: profile.Name, Table: engine.ProfileTable(profile)}
		for _, sc := range profile.SkippedColumns {
			res.Lines = append(res.Lines, fmt.Sprintf("skipped %s: %s", sc.Column, sc.Reason))
		}
		err = export.WriteResult(&buf, res, format)
	default:
		fmt.Fprintf(&buf, "%s: %s rows, %s columns\n\n", profile.Name,
			engine.FormatInt(profile.Rows), engine.FormatInt(len(profile.Columns)))
		err = export.Write(&buf, engine.ProfileTable(profile), format)
		if skipped := engine.SkippedTable(profile); err == nil && skipped != nil {
			buf.WriteString("\n")
			err = export.Write(&buf, skipped, format)
		}
	}
	if err != nil {
		return nil, err
	}
	return textResult(buf.String()), nil
}

func (s *Server) handleAnalyze(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments
	path, ok := args["file_path"].(string)
	if !ok || path == "" {
		return nil, fmt.Errorf("missing or invalid required argument: file_path (string)")
	}
	req, err := s.request(args)
	if err != nil {
		return nil, err
	}
	format, err := outputFormat(args)
	if err != nil {
		return nil, err
	}
	s.log.Debug("handling analyze_dataset", "path", path, "operation", req.Operation, "format", format)

	a, err := s.open(path)
	if err != nil {
		return nil, err
	}
	res, err := engine.Execute(a, req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.WriteResult(&buf, res, format); err != nil {
		return nil, err
	}
	return textResult(buf.String()), nil
}

// ============================================================================
// ARGUMENTS
// ============================================================================

func (s *Server) open(path string) (*engine.Analyzer, error) {
	ds, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return engine.New(ds,
		engine.WithLogger(s.log),
		engine.WithKeyColumn(s.opts.KeyColumn),
		engine.WithTopN(s.opts.TopN),
	), nil
}

// request maps tool arguments to an engine request. Numbers arrive as
// float64 and lists as comma-separated strings.
func (s *Server) request(args map[string]interface{}) (engine.Request, error) {
	op, ok := args["operation"].(string)
	if !ok || op == "" {
		return engine.Request{}, fmt.Errorf("missing or invalid required argument: operation (string)")
	}
	req := engine.Request{
		Operation:   op,
		NameColumn:  stringArg(args, "name_column", s.opts.NameColumn),
		GroupColumn: stringArg(args, "group_column", ""),
		Column:      stringArg(args, "column", ""),
		KeyColumn:   stringArg(args, "key_column", ""),
	}
	if cols, ok := args["columns"].(string); ok {
		req.Columns = splitList(cols)
	}
	if t, ok := args["threshold"].(float64); ok {
		req.Threshold = &t
	} else if s.opts.Threshold != nil {
		threshold := *s.opts.Threshold
		req.Threshold = &threshold
	}
	if n, ok := args["top_n"].(float64); ok && n > 0 {
		req.TopN = int(n)
	}
	if keys, ok := args["key"].(string); ok {
		req.Keys = splitList(keys)
	}
	if rows, ok := args["rows"].(string); ok {
		for _, item := range splitList(rows) {
			r, err := strconv.Atoi(item)
			if err != nil {
				return engine.Request{}, fmt.Errorf("%w: row %q is not a number", engine.ErrInvalidArgument, item)
			}
			req.Rows = append(req.Rows, r)
		}
	}
	return req, nil
}

func outputFormat(args map[string]interface{}) (export.Format, error) {
	name, _ := args["output_format"].(string)
	if name == "" {
		return export.FormatMarkdown, nil
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return "", err
	}
	if format == export.FormatXLSX {
		return "", fmt.Errorf("%w: xlsx is not available as text", export.ErrUnknownFormat)
	}
	return format, nil
}

func stringArg(args map[string]interface{}, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// splitList splits "a, b,c" into trimmed items. The result is non-nil so
// that an explicitly empty list is reported rather than defaulted.
func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}
