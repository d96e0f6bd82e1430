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

// Package cortex talks to the Snowflake Cortex Agents REST API. It runs
// agent queries over the streaming agent:run endpoint, aggregates the
// event stream into text, SQL and citations, executes generated SQL
// through the SQL statements API, and shapes the combined result for
// callers.
package cortex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	agentRunPath   = "/api/v2/cortex/agent:run"
	statementsPath = "/api/v2/statements"

	agentModel          = "claude-3-5-sonnet"
	responseInstruction = "You are a helpful AI assistant."

	analystToolName = "Analyst1"
	searchToolName  = "Search1"
	sqlExecToolName = "sql_execution_tool"

	// statementTimeout is the server-side execution bound in seconds.
	statementTimeout = 60
)

// Config holds the connection settings for one Snowflake account.
// AccountURL and PAT are mandatory; the semantic model file and search
// service bind the analyst and search tools and may be empty when those
// tools are unused.
type Config struct {
	// AccountURL is the account's base URL, e.g.
	// https://myorg-myaccount.snowflakecomputing.com.
	AccountURL string

	// PAT is the programmatic access token used as the bearer credential.
	PAT string

	// SemanticModelFile is the stage path of the semantic model for
	// text-to-SQL, e.g. @db.schema.stage/model.yaml.
	SemanticModelFile string

	// CortexSearchService is the fully qualified name of the search
	// service, e.g. db.schema.service_name.
	CortexSearchService string
}

// Client is a Snowflake Cortex Agents API client. It is safe for
// concurrent use.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient validates the configuration and returns a ready client.
// The HTTP client carries no global timeout so that long agent streams
// are not cut off; pass a context to bound individual calls.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AccountURL == "" {
		return nil, fmt.Errorf("account URL is required")
	}
	if cfg.PAT == "" {
		return nil, fmt.Errorf("programmatic access token is required")
	}
	cfg.AccountURL = strings.TrimSuffix(cfg.AccountURL, "/")

	return &Client{
		config:     cfg,
		httpClient: &http.Client{},
		logger:     logger,
	}, nil
}

// setHeaders applies the authentication and content headers common to
// every Cortex API call.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.config.PAT)
	req.Header.Set("X-Snowflake-Authorization-Token-Type", "PROGRAMMATIC_ACCESS_TOKEN")
	req.Header.Set("Content-Type", "application/json")
}

// RunAgent sends one user query to the agent:run endpoint and aggregates
// the streamed response. The agent is given the text-to-SQL, search and
// SQL-execution tools with tool choice left to the model.
func (c *Client) RunAgent(ctx context.Context, query string) (AgentOutput, error) {
	payload := agentRunRequest{
		Model:               agentModel,
		ResponseInstruction: responseInstruction,
		Experimental:        map[string]interface{}{},
		Tools: []toolSpec{
			{ToolSpec: toolSpecInner{Type: "cortex_analyst_text_to_sql", Name: analystToolName}},
			{ToolSpec: toolSpecInner{Type: "cortex_search", Name: searchToolName}},
			{ToolSpec: toolSpecInner{Type: "sql_exec", Name: sqlExecToolName}},
		},
		ToolResources: map[string]interface{}{
			analystToolName: map[string]string{"semantic_model_file": c.config.SemanticModelFile},
			searchToolName:  map[string]string{"name": c.config.CortexSearchService},
		},
		ToolChoice: toolChoice{Type: "auto"},
		Messages: []agentMessage{
			{Role: "user", Content: []agentMessagePart{{Type: "text", Text: query}}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return AgentOutput{}, fmt.Errorf("error marshaling agent request: %w", err)
	}

	requestID := uuid.NewString()
	url := fmt.Sprintf("%s%s?requestId=%s", c.config.AccountURL, agentRunPath, requestID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return AgentOutput{}, fmt.Errorf("error creating agent request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("running cortex agent",
		zap.String("request_id", requestID),
		zap.Int("query_length", len(query)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return AgentOutput{}, fmt.Errorf("error sending agent request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return AgentOutput{}, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	out, err := collectStream(ctx, resp.Body)
	if err != nil {
		return AgentOutput{}, err
	}

	c.logger.Debug("agent stream aggregated",
		zap.String("request_id", requestID),
		zap.Int("text_length", len(out.Text)),
		zap.Bool("sql_generated", out.SQL != ""),
		zap.Int("citations", len(out.Citations)))

	return out, nil
}
