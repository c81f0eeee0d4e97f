package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"sheet_scan",
		"sheet_preprocess",
		"sheet_detect_stave",
		"sheet_image_info",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}
			if _, ok := props["path"]; !ok {
				t.Error("Tool should accept 'path'")
			}

			required, ok := tool.InputSchema["required"].([]string)
			if !ok || len(required) != 1 || required[0] != "path" {
				t.Errorf("required: got %v, want [path]", tool.InputSchema["required"])
			}
		})
	}
}

func TestToolDefinitions_ScanOrderEnum(t *testing.T) {
	var scan Tool
	for _, tool := range GetToolDefinitions() {
		if tool.Name == "sheet_scan" {
			scan = tool
		}
	}

	props := scan.InputSchema["properties"].(map[string]interface{})
	order, ok := props["order"].(map[string]interface{})
	if !ok {
		t.Fatal("sheet_scan should accept 'order'")
	}
	enum, ok := order["enum"].([]string)
	if !ok || len(enum) != 2 || enum[0] != "row" || enum[1] != "column" {
		t.Errorf("order enum: got %v", order["enum"])
	}
}
