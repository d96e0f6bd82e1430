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
	"context"
	"fmt"

	"go.uber.org/zap"
)

// NoSQLGenerated is the sentinel placed in QueryResponse.SQL when the
// agent run produced no SQL.
const NoSQLGenerated = "NO_SQL_GENERATED"

// noTextFallback replaces an empty aggregated text so callers always
// receive a non-empty answer field.
const noTextFallback = "No text response generated."

// Query runs one user query end to end: the agent run, stream
// aggregation, execution of any generated SQL, and table rendering.
// Statement execution failures degrade into the response instead of
// failing the query; only agent-run and stream errors propagate as Go
// errors.
func (c *Client) Query(ctx context.Context, query string) (*QueryResponse, error) {
	out, err := c.RunAgent(ctx, query)
	if err != nil {
		return nil, err
	}

	resp := &QueryResponse{
		Text:      out.Text,
		SQL:       out.SQL,
		Citations: out.Citations,
	}

	if out.SQL != "" {
		result, execErr := c.ExecuteStatement(ctx, out.SQL)
		switch {
		case execErr != nil:
			msg := fmt.Sprintf("SQL execution failed: %v", execErr)
			resp.Results = []map[string]interface{}{{"error": msg}}
			resp.ResultsTable = &msg
			c.logger.Warn("statement execution error", zap.Error(execErr))
		case result.Error != "":
			// Failures the SQL API reported in-band stay out of the row
			// list; results and results_table remain null.
			c.logger.Warn("statement rejected", zap.String("error", result.Error))
		default:
			resp.Results = result.Rows
			if len(result.Rows) > 0 {
				table := FormatTable(result.Columns, result.Rows)
				resp.ResultsTable = &table
			}
		}
	}

	if resp.Text == "" {
		resp.Text = noTextFallback
	}
	if resp.SQL == "" {
		resp.SQL = NoSQLGenerated
	}
	if resp.Citations == nil {
		resp.Citations = []Citation{}
	}

	return resp, nil
}
