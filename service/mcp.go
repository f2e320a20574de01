package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/surveypipe/kit"
	"github.com/hazyhaar/surveypipe/skiplogic"
)

// RegisterMCP registers the survey tools on an MCP server. Every tool mirrors
// one HTTP operation, routed through the same Service methods.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerExtractTool(srv)
	s.registerSessionsTool(srv)
	s.registerGraphTool(srv)
	s.registerAnalyzeTool(srv)
	s.registerSimulateTool(srv)
	s.registerScenariosTool(srv)
	s.registerTraceTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func mcpTransport(ctx context.Context) context.Context {
	return kit.WithTransport(ctx, "mcp")
}

// chain is the middleware stack applied to every tool endpoint: panics
// become errors, calls are logged with their transport and session id, and
// no call outlives the model timeout.
func (s *Service) chain(name string) kit.Middleware {
	return kit.Chain(
		kit.Recovery(s.logger),
		kit.Logging(s.logger, name),
		kit.Timeout(s.cfg.LLMTimeout()),
	)
}

// --- extract ---

type extractReq struct {
	Path string `json:"path"`
}

func (s *Service) registerExtractTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "survey_extract",
		Description: "Extract survey questions from a questionnaire document (.docx or .pdf) and store them as a session.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "Path to the questionnaire file"},
		}, []string{"path"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*extractReq)
		f, err := os.Open(r.Path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", r.Path, err)
		}
		defer f.Close()
		return s.ExtractFile(ctx, r.Path, f)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r extractReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r, EnrichCtx: mcpTransport}, nil
	}

	kit.RegisterMCPTool(srv, tool, s.chain(tool.Name)(endpoint), decode)
}

// --- sessions ---

func (s *Service) registerSessionsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "survey_sessions",
		Description: "List stored extraction sessions, most recently updated first.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return s.Sessions(ctx)
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{EnrichCtx: mcpTransport}, nil
	}

	kit.RegisterMCPTool(srv, tool, s.chain(tool.Name)(endpoint), decode)
}

// --- session-scoped tools ---

type sessionReq struct {
	SessionID string `json:"session_id"`
}

func decodeSessionReq(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	var r sessionReq
	if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
		return nil, err
	}
	if r.SessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	return &kit.MCPDecodeResult{
		Request: &r,
		EnrichCtx: func(ctx context.Context) context.Context {
			return kit.WithSessionID(mcpTransport(ctx), r.SessionID)
		},
	}, nil
}

var sessionIDSchema = map[string]any{
	"type":        "string",
	"description": "Session id returned by survey_extract",
}

type graphReq struct {
	SessionID   string `json:"session_id"`
	Mode        string `json:"mode"`
	Orientation string `json:"orientation"`
}

func (s *Service) registerGraphTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "survey_graph",
		Description: "Build the skip-logic graph of a session, with a Graphviz DOT rendering and per-rule detail rows.",
		InputSchema: inputSchema(map[string]any{
			"session_id":  sessionIDSchema,
			"mode":        map[string]any{"type": "string", "description": "View mode: skip_only or full_flow (default full_flow)"},
			"orientation": map[string]any{"type": "string", "description": "Graph orientation: TB or LR (default TB)"},
		}, []string{"session_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*graphReq)
		return s.Graph(ctx, r.SessionID, skiplogic.ViewMode(r.Mode), r.Orientation)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r graphReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		if r.SessionID == "" {
			return nil, fmt.Errorf("session_id is required")
		}
		return &kit.MCPDecodeResult{Request: &r, EnrichCtx: mcpTransport}, nil
	}

	kit.RegisterMCPTool(srv, tool, s.chain(tool.Name)(endpoint), decode)
}

func (s *Service) registerAnalyzeTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "survey_analyze",
		Description: "Analyze a session's skip-logic graph: unreachable questions, cycles, terminal points.",
		InputSchema: inputSchema(map[string]any{
			"session_id": sessionIDSchema,
		}, []string{"session_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.Analyze(ctx, req.(*sessionReq).SessionID)
	}

	kit.RegisterMCPTool(srv, tool, s.chain(tool.Name)(endpoint), decodeSessionReq)
}

func (s *Service) registerSimulateTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "survey_simulate",
		Description: "Enumerate all respondent paths through a session's questionnaire and synthesize covering test scenarios.",
		InputSchema: inputSchema(map[string]any{
			"session_id": sessionIDSchema,
		}, []string{"session_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.Simulate(ctx, req.(*sessionReq).SessionID)
	}

	kit.RegisterMCPTool(srv, tool, s.chain(tool.Name)(endpoint), decodeSessionReq)
}

func (s *Service) registerScenariosTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "survey_scenarios",
		Description: "Generate the minimal set of answer scenarios that covers every skip branch of a session.",
		InputSchema: inputSchema(map[string]any{
			"session_id": sessionIDSchema,
		}, []string{"session_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.Scenarios(ctx, req.(*sessionReq).SessionID)
	}

	kit.RegisterMCPTool(srv, tool, s.chain(tool.Name)(endpoint), decodeSessionReq)
}

type traceReq struct {
	SessionID  string            `json:"session_id"`
	Selections map[string]string `json:"selections"`
}

func (s *Service) registerTraceTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "survey_trace",
		Description: "Trace the single respondent path for a given set of answer selections (question id to answer code).",
		InputSchema: inputSchema(map[string]any{
			"session_id": sessionIDSchema,
			"selections": map[string]any{
				"type":        "object",
				"description": "Answer selections, e.g. {\"Q1\": \"2\"}",
			},
		}, []string{"session_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*traceReq)
		return s.Trace(ctx, r.SessionID, r.Selections)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r traceReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		if r.SessionID == "" {
			return nil, fmt.Errorf("session_id is required")
		}
		return &kit.MCPDecodeResult{Request: &r, EnrichCtx: mcpTransport}, nil
	}

	kit.RegisterMCPTool(srv, tool, s.chain(tool.Name)(endpoint), decode)
}
