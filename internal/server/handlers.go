package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/sheet-omr/internal/config"
	apperrors "github.com/ironsheep/sheet-omr/internal/errors"
	"github.com/ironsheep/sheet-omr/internal/imaging"
	"github.com/ironsheep/sheet-omr/internal/logger"
)

// ToolCallParams represents the parameters for a tools/call request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "sheet_scan").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Malformed arguments return code -32602 and an unknown tool -32601. Any
// other tool failure returns -32000 with data {type, detail}, where type is
// the error category (invalid_image, insufficient_stave_data, ...).
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", errorData(apperrors.NewValidationError("malformed params", err)))
	}

	result, err := s.executeTool(context.Background(), params.Name, params.Arguments)
	if err != nil {
		logger.WithError(err).WithField("tool", params.Name).Warn("Tool call failed")
		switch {
		case errors.Is(err, errUnknownTool):
			return s.errorResponse(req.ID, -32601, fmt.Sprintf("Unknown tool: %s", params.Name), nil)
		case apperrors.IsType(err, apperrors.ErrorTypeValidation):
			return s.errorResponse(req.ID, -32602, "Invalid params", errorData(err))
		default:
			return s.errorResponse(req.ID, -32000, "Tool execution failed", errorData(err))
		}
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

var errUnknownTool = errors.New("unknown tool")

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "sheet_scan":
		return s.handleSheetScan(ctx, args)
	case "sheet_preprocess":
		return s.handleSheetPreprocess(args)
	case "sheet_detect_stave":
		return s.handleSheetDetectStave(args)
	case "sheet_image_info":
		return s.handleSheetImageInfo(args)
	default:
		return nil, errUnknownTool
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

func errorData(err error) ErrorData {
	return ErrorData{Type: string(apperrors.TypeOf(err)), Detail: err.Error()}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type pathArgs struct {
	Path string `json:"path"`
}

// decodeArgs unmarshals args into dst and requires a non-empty path.
func decodeArgs(args json.RawMessage, dst interface{}, path func() string) error {
	if len(args) == 0 {
		return apperrors.NewValidationError("missing arguments", nil)
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return apperrors.NewValidationError("malformed arguments", err)
	}
	if path() == "" {
		return apperrors.NewValidationError("path is required", nil)
	}
	return nil
}

type sheetScanArgs struct {
	Path     string `json:"path"`
	Annotate *bool  `json:"annotate"`
	Order    string `json:"order"`
}

func (s *Server) handleSheetScan(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sheetScanArgs
	if err := decodeArgs(args, &a, func() string { return a.Path }); err != nil {
		return nil, err
	}

	sc := s.scanner
	opts := sc.Options()
	changed := false
	if a.Annotate != nil {
		opts.Annotate = *a.Annotate
		changed = true
	}
	switch a.Order {
	case "":
	case config.NoteOrderRow, config.NoteOrderColumn:
		opts.NoteOrder = a.Order
		changed = true
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("order must be %q or %q", config.NoteOrderRow, config.NoteOrderColumn), nil)
	}
	if changed {
		sc = sc.With(opts)
	}

	return sc.Scan(ctx, a.Path)
}

// PreprocessResult is the result of sheet_preprocess
type PreprocessResult struct {
	OutputPath string `json:"output_path"`
}

func (s *Server) handleSheetPreprocess(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a, func() string { return a.Path }); err != nil {
		return nil, err
	}
	out, err := s.scanner.Preprocess(a.Path)
	if err != nil {
		return nil, err
	}
	return &PreprocessResult{OutputPath: out}, nil
}

func (s *Server) handleSheetDetectStave(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a, func() string { return a.Path }); err != nil {
		return nil, err
	}
	return s.scanner.DetectStave(a.Path)
}

func (s *Server) handleSheetImageInfo(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a, func() string { return a.Path }); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(a.Path)
}
