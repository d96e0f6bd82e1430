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

// ExecuteStatement runs one SQL statement through the SQL API and zips
// the returned rows against the column metadata, preserving row and
// column order. Semicolons are stripped from the statement because the
// API rejects multi-statement syntax. Failures the API reports (any
// non-200 status) come back in StatementResult.Error; transport and
// decoding faults return a Go error instead.
func (c *Client) ExecuteStatement(ctx context.Context, sql string) (*StatementResult, error) {
	payload := statementRequest{
		Statement: strings.ReplaceAll(sql, ";", ""),
		Timeout:   statementTimeout,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshaling statement request: %w", err)
	}

	requestID := uuid.NewString()
	url := fmt.Sprintf("%s%s?requestId=%s", c.config.AccountURL, statementsPath, requestID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating statement request: %w", err)
	}
	c.setHeaders(req)

	c.logger.Debug("executing statement",
		zap.String("request_id", requestID),
		zap.Int("statement_length", len(payload.Statement)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending statement request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading statement response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		preview := string(respBody)
		if len(preview) > 500 {
			preview = preview[:500]
		}
		c.logger.Warn("statement execution failed",
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode),
			zap.String("response", preview))
		return &StatementResult{Error: "SQL API error: " + string(respBody)}, nil
	}

	var envelope statementResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("error decoding statement response: %w", err)
	}

	columns := make([]string, 0, len(envelope.ResultSetMetaData.RowType))
	for _, col := range envelope.ResultSetMetaData.RowType {
		columns = append(columns, col.Name)
	}

	rows := make([]map[string]interface{}, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if i < len(raw) {
				row[col] = raw[i]
			}
		}
		rows = append(rows, row)
	}

	c.logger.Debug("statement executed",
		zap.String("request_id", requestID),
		zap.Int("rows", len(rows)),
		zap.Int("columns", len(columns)))

	return &StatementResult{Columns: columns, Rows: rows}, nil
}
