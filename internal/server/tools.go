package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the sheet music image",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name: "sheet_scan",
			Description: "Recognise the notes on a single-stave sheet music image. Returns the (pitch, length) pairs in reading order " +
				"with where each was found. Unless annotate is false, the file is overwritten with a copy marking the stave in red " +
				"and circling each recognised note.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathSchema(),
					"annotate": map[string]interface{}{
						"type":        "boolean",
						"description": "Write the annotated page back to path (default from server configuration)",
					},
					"order": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"row", "column"},
						"description": "Note order: top of page first (row) or left to right (column)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "sheet_preprocess",
			Description: "Binarize a sheet music image in place (black ink on white, specks removed) and return its path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathSchema(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "sheet_detect_stave",
			Description: "Locate the five stave lines of a sheet music image. Returns their rows top to bottom and the mean line spacing. The file is not modified.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathSchema(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "sheet_image_info",
			Description: "Get the width, height, format and file size of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathSchema(),
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
