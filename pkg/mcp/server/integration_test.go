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
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teradata-labs/rime/pkg/cortex"
	"github.com/teradata-labs/rime/pkg/mcp/protocol"
	"github.com/teradata-labs/rime/pkg/mcp/transport"
)

func integrationBridge(t *testing.T) (*CortexBridge, *fakeRunner) {
	t.Helper()
	runner := &fakeRunner{
		resp: &cortex.QueryResponse{
			Text:      "Quarterly revenue rose 12%.",
			SQL:       "NO_SQL_GENERATED",
			Citations: []cortex.Citation{},
		},
	}
	return newBridgeWithRunner(runner, zaptest.NewLogger(t)), runner
}

// postMCP sends one JSON-RPC message to the HTTP transport.
func postMCP(t *testing.T, url, sessionID, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("Mcp-Session-Id", sessionID)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeRPC(t *testing.T, r io.Reader) *protocol.Response {
	t.Helper()
	var resp protocol.Response
	require.NoError(t, json.NewDecoder(r).Decode(&resp))
	return &resp
}

func TestIntegration_StreamableHTTP(t *testing.T) {
	bridge, runner := integrationBridge(t)
	logger := zaptest.NewLogger(t)
	mcpServer := NewMCPServer("rime-mcp", "0.3.0", logger, WithToolProvider(bridge))

	httpTransport, err := transport.NewStreamableHTTPServer(transport.StreamableHTTPServerConfig{
		Handler: func(msg []byte) ([]byte, error) {
			return mcpServer.HandleMessage(context.Background(), msg)
		},
		Logger:     logger,
		SessionTTL: transport.DefaultSessionTTL,
	})
	require.NoError(t, err)
	defer httpTransport.Close()

	ts := httptest.NewServer(httpTransport)
	defer ts.Close()

	// Initialize mints a session.
	resp := postMCP(t, ts.URL, "", `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","clientInfo":{"name":"it","version":"1"}}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sessionID := resp.Header.Get("Mcp-Session-Id")
	require.NotEmpty(t, sessionID)
	initResp := decodeRPC(t, resp.Body)
	require.NoError(t, resp.Body.Close())
	require.Nil(t, initResp.Error)

	// The initialized notification gets 202 with no body.
	resp = postMCP(t, ts.URL, sessionID, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	// tools/list advertises the agent tool.
	resp = postMCP(t, ts.URL, sessionID, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listResp := decodeRPC(t, resp.Body)
	require.NoError(t, resp.Body.Close())
	require.Nil(t, listResp.Error)

	var tools protocol.ToolListResult
	require.NoError(t, json.Unmarshal(listResp.Result, &tools))
	require.Len(t, tools.Tools, 1)
	assert.Equal(t, "run_cortex_agents", tools.Tools[0].Name)

	// tools/call reaches the runner and returns the shaped response.
	resp = postMCP(t, ts.URL, sessionID, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"run_cortex_agents","arguments":{"query":"revenue this quarter?"}}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	callResp := decodeRPC(t, resp.Body)
	require.NoError(t, resp.Body.Close())
	require.Nil(t, callResp.Error)

	assert.Equal(t, "revenue this quarter?", runner.gotQuery)

	var result protocol.CallToolResult
	require.NoError(t, json.Unmarshal(callResp.Result, &result))
	assert.False(t, result.IsError)
	assert.Equal(t, "Quarterly revenue rose 12%.", result.StructuredContent["text"])

	// DELETE terminates the session; subsequent requests are rejected.
	delReq, err := http.NewRequest(http.MethodDelete, ts.URL, nil)
	require.NoError(t, err)
	delReq.Header.Set("Mcp-Session-Id", sessionID)
	delResp, err := http.DefaultClient.Do(delReq)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, delResp.StatusCode)
	require.NoError(t, delResp.Body.Close())

	resp = postMCP(t, ts.URL, sessionID, `{"jsonrpc":"2.0","id":4,"method":"ping"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestIntegration_Stdio(t *testing.T) {
	bridge, runner := integrationBridge(t)
	logger := zaptest.NewLogger(t)
	mcpServer := NewMCPServer("rime-mcp", "0.3.0", logger, WithToolProvider(bridge))

	stdinR, stdinW := io.Pipe()
	stdoutR, stdoutW := io.Pipe()
	tr := transport.NewStdioServerTransport(stdinR, stdoutW)

	done := make(chan error, 1)
	go func() {
		done <- mcpServer.Serve(context.Background(), tr)
	}()

	out := bufio.NewReader(stdoutR)
	send := func(msg string) {
		_, err := stdinW.Write([]byte(msg + "\n"))
		require.NoError(t, err)
	}
	recv := func() *protocol.Response {
		line, err := out.ReadString('\n')
		require.NoError(t, err)
		var resp protocol.Response
		require.NoError(t, json.Unmarshal([]byte(line), &resp))
		return &resp
	}

	send(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","clientInfo":{"name":"it","version":"1"}}}`)
	initResp := recv()
	require.Nil(t, initResp.Error)

	// Notifications produce no output; the next line read must belong to
	// the following request.
	send(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)

	send(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"run_cortex_agents","arguments":{"query":"top products"}}}`)
	callResp := recv()
	require.Nil(t, callResp.Error)

	var result protocol.CallToolResult
	require.NoError(t, json.Unmarshal(callResp.Result, &result))
	assert.False(t, result.IsError)
	assert.Equal(t, "top products", runner.gotQuery)
	require.Len(t, result.Content, 1)
	assert.Contains(t, result.Content[0].Text, "Quarterly revenue rose 12%.")

	require.NoError(t, stdinW.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not exit on EOF")
	}
}
