// Copyright 2026 The swift-mcp-sub003 Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// This file verifies that UnmarshalJSON methods for Content types don't
// panic when unmarshaling onto nil pointers.

package mcp_test

import (
	"encoding/json"
	"testing"

	"github.com/promptping-ai/swift-mcp-sub003/mcp"
)

func TestContentUnmarshalNil(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		content any
	}{
		{
			name:    "CreateMessageResult nil Content",
			json:    `{"content":{"type":"text","text":"hello"},"model":"test","role":"user"}`,
			content: &mcp.CreateMessageResult{},
		},
		{
			name:    "SamplingMessage nil Content",
			json:    `{"content":{"type":"text","text":"hello"},"role":"user"}`,
			content: &mcp.SamplingMessage{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("UnmarshalJSON panicked: %v", r)
				}
			}()

			if err := json.Unmarshal([]byte(tt.json), tt.content); err != nil {
				t.Errorf("UnmarshalJSON failed: %v", err)
			}

			switch v := tt.content.(type) {
			case *mcp.CreateMessageResult:
				if v.Content == nil {
					t.Error("CreateMessageResult.Content was not populated")
				}
				if _, ok := v.Content.(*mcp.TextContent); !ok {
					t.Error("CreateMessageResult.Content is not TextContent")
				}
			case *mcp.SamplingMessage:
				if v.Content == nil {
					t.Error("SamplingMessage.Content was not populated")
				}
				if _, ok := v.Content.(*mcp.TextContent); !ok {
					t.Error("SamplingMessage.Content is not TextContent")
				}
			}
		})
	}
}

func TestContentUnmarshalNilWithDifferentTypes(t *testing.T) {
	tests := []struct {
		name        string
		json        string
		expectError bool
	}{
		{
			name:        "ImageContent",
			json:        `{"content":{"type":"image","mimeType":"image/png","data":"YTFiMmMz"},"model":"test","role":"user"}`,
			expectError: false,
		},
		{
			name:        "AudioContent",
			json:        `{"content":{"type":"audio","mimeType":"audio/wav","data":"YTFiMmMz"},"model":"test","role":"user"}`,
			expectError: false,
		},
		{
			name:        "unrecognized type",
			json:        `{"content":{"type":"resource_link","uri":"file:///test"},"model":"test","role":"user"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("UnmarshalJSON panicked: %v", r)
				}
			}()

			var result mcp.CreateMessageResult
			err := json.Unmarshal([]byte(tt.json), &result)
			if tt.expectError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.expectError {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				if result.Content == nil {
					t.Error("CreateMessageResult.Content was not populated")
				}
			}
		})
	}
}

func TestContentUnmarshalNilWithEmptyContent(t *testing.T) {
	tests := []struct {
		name        string
		json        string
		expectError bool
	}{
		{
			name:        "missing content field",
			json:        `{"model":"test","role":"user"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("UnmarshalJSON panicked: %v", r)
				}
			}()

			var result mcp.CreateMessageResult
			err := json.Unmarshal([]byte(tt.json), &result)
			if tt.expectError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestContentUnmarshalNilWithInvalidContent(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{
			name: "invalid content type",
			json: `{"content":{"type":"invalid","text":"hello"},"model":"test","role":"user"}`,
		},
		{
			name: "missing type field",
			json: `{"content":{"text":"hello"},"model":"test","role":"user"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("UnmarshalJSON panicked: %v", r)
				}
			}()

			var result mcp.CreateMessageResult
			if err := json.Unmarshal([]byte(tt.json), &result); err == nil {
				t.Error("expected error but got none")
			}
		})
	}
}
