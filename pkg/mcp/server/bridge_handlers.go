// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/teradata-labs/rime/pkg/mcp/protocol"
	"go.uber.org/zap"
)

// handleRunCortexAgents executes one agent query end to end and returns
// the combined response as JSON, both rendered in the text content and
// mirrored in structuredContent.
func (b *CortexBridge) handleRunCortexAgents(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return nil, protocol.NewError(protocol.InvalidParams, "query must be a non-empty string", nil)
	}

	resp, err := b.runner.Query(ctx, query)
	if err != nil {
		b.logger.Warn("agent query failed", zap.Error(err))
		return nil, fmt.Errorf("running cortex agent: %w", err)
	}

	body, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling agent response: %w", err)
	}

	var structured map[string]interface{}
	if err := json.Unmarshal(body, &structured); err != nil {
		return nil, fmt.Errorf("shaping structured content: %w", err)
	}

	return &protocol.CallToolResult{
		Content:           []protocol.Content{protocol.TextContent(string(body))},
		StructuredContent: structured,
	}, nil
}
