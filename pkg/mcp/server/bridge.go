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
	"fmt"

	"github.com/teradata-labs/rime/pkg/cortex"
	"github.com/teradata-labs/rime/pkg/mcp/protocol"
	"go.uber.org/zap"
)

// agentRunner is the slice of the cortex client the bridge depends on.
type agentRunner interface {
	Query(ctx context.Context, query string) (*cortex.QueryResponse, error)
}

var _ agentRunner = (*cortex.Client)(nil)

// toolHandler executes one tool call with already-validated arguments.
type toolHandler func(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error)

// CortexBridge exposes Snowflake Cortex Agents as MCP tools. It
// implements ToolProvider.
type CortexBridge struct {
	runner   agentRunner
	logger   *zap.Logger
	tools    []protocol.Tool
	handlers map[string]toolHandler
}

var _ ToolProvider = (*CortexBridge)(nil)

// BridgeOption configures a CortexBridge.
type BridgeOption func(*CortexBridge)

// WithBridgeLogger sets the bridge's logger. It is also passed down to
// the cortex client.
func WithBridgeLogger(logger *zap.Logger) BridgeOption {
	return func(b *CortexBridge) {
		b.logger = logger
	}
}

// NewCortexBridge validates the Snowflake configuration and returns a
// bridge backed by a live cortex client.
func NewCortexBridge(cfg cortex.Config, opts ...BridgeOption) (*CortexBridge, error) {
	b := &CortexBridge{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}

	client, err := cortex.NewClient(cfg, b.logger)
	if err != nil {
		return nil, fmt.Errorf("creating cortex client: %w", err)
	}
	b.runner = client
	b.registerTools()

	b.logger.Info("cortex bridge ready", zap.Int("tools", len(b.tools)))
	return b, nil
}

// newBridgeWithRunner wires the bridge to an existing runner, bypassing
// client construction. Tests use it to substitute the Snowflake client.
func newBridgeWithRunner(runner agentRunner, logger *zap.Logger) *CortexBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &CortexBridge{runner: runner, logger: logger}
	b.registerTools()
	return b
}

// ListTools returns the bridge's tool definitions.
func (b *CortexBridge) ListTools(_ context.Context) ([]protocol.Tool, error) {
	return b.tools, nil
}

// CallTool validates the arguments against the tool's schema and
// dispatches the call.
func (b *CortexBridge) CallTool(ctx context.Context, name string, args map[string]interface{}) (*protocol.CallToolResult, error) {
	handler, ok := b.handlers[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}

	for _, tool := range b.tools {
		if tool.Name != name {
			continue
		}
		if err := protocol.ValidateToolArguments(tool, args); err != nil {
			return nil, protocol.NewError(protocol.InvalidParams, err.Error(), nil)
		}
		break
	}

	b.logger.Debug("calling tool", zap.String("tool", name))
	return handler(ctx, args)
}
