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
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueryServer(t *testing.T, agent, statements http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/cortex/agent:run", agent)
	mux.HandleFunc("/api/v2/statements", statements)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func agentStream(lines ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			_, _ = io.WriteString(w, line+"\n")
		}
	}
}

func TestQuery_NoSQLSkipsExecution(t *testing.T) {
	statementsCalled := false
	server := newQueryServer(t,
		agentStream(`data: {"delta":{"content":[{"type":"text","text":"Just words."}]}}`),
		func(w http.ResponseWriter, r *http.Request) { statementsCalled = true },
	)

	c := newTestClient(t, server.URL)
	resp, err := c.Query(context.Background(), "tell me something")
	require.NoError(t, err)

	assert.False(t, statementsCalled, "no SQL was generated, so nothing should execute")

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"text": "Just words.",
		"sql": "NO_SQL_GENERATED",
		"results": null,
		"results_table": null,
		"citations": []
	}`, string(body))
}

func TestQuery_ExecutesGeneratedSQL(t *testing.T) {
	var gotStatement []byte
	server := newQueryServer(t,
		agentStream(
			`data: {"delta":{"content":[{"type":"text","text":"Sales by region:"}]}}`,
			`data: {"delta":{"content":[{"type":"tool_results","tool_results":{"content":[{"type":"json","json":{"sql":"SELECT region, total FROM sales;"}}]}}]}}`,
		),
		func(w http.ResponseWriter, r *http.Request) {
			var err error
			gotStatement, err = io.ReadAll(r.Body)
			require.NoError(t, err)
			_, _ = io.WriteString(w, `{
				"resultSetMetaData": {"rowType": [{"name": "REGION"}, {"name": "TOTAL"}]},
				"data": [["EMEA", 1250.5], ["APAC", 900]]
			}`)
		},
	)

	c := newTestClient(t, server.URL)
	resp, err := c.Query(context.Background(), "sales by region")
	require.NoError(t, err)

	// The generated SQL runs with its semicolon stripped, while the
	// response keeps the SQL exactly as the agent produced it.
	assert.JSONEq(t, `{"statement": "SELECT region, total FROM sales", "timeout": 60}`, string(gotStatement))
	assert.Equal(t, "SELECT region, total FROM sales;", resp.SQL)

	assert.Equal(t, "Sales by region:", resp.Text)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, map[string]interface{}{"REGION": "EMEA", "TOTAL": 1250.5}, resp.Results[0])
	assert.Equal(t, map[string]interface{}{"REGION": "APAC", "TOTAL": float64(900)}, resp.Results[1])

	require.NotNil(t, resp.ResultsTable)
	assert.Equal(t, strings.Join([]string{
		"+--------+--------+",
		"| REGION | TOTAL  |",
		"+--------+--------+",
		"|  EMEA  | 1250.5 |",
		"|  APAC  |  900   |",
		"+--------+--------+",
	}, "\n"), *resp.ResultsTable)
}

func TestQuery_ZeroRowsYieldEmptyResultsAndNoTable(t *testing.T) {
	server := newQueryServer(t,
		agentStream(`data: {"delta":{"content":[{"type":"tool_results","tool_results":{"content":[{"type":"json","json":{"sql":"SELECT 1"}}]}}]}}`),
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"resultSetMetaData": {"rowType": [{"name": "ID"}]}, "data": []}`)
		},
	)

	c := newTestClient(t, server.URL)
	resp, err := c.Query(context.Background(), "q")
	require.NoError(t, err)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"text": "No text response generated.",
		"sql": "SELECT 1",
		"results": [],
		"results_table": null,
		"citations": []
	}`, string(body))
}

func TestQuery_ReportedExecutionErrorLeavesResultsNull(t *testing.T) {
	server := newQueryServer(t,
		agentStream(`data: {"delta":{"content":[{"type":"tool_results","tool_results":{"content":[{"type":"json","json":{"sql":"SELECT * FROM missing"}}]}}]}}`),
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"message": "object does not exist"}`)
		},
	)

	c := newTestClient(t, server.URL)
	resp, err := c.Query(context.Background(), "q")
	require.NoError(t, err)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"text": "No text response generated.",
		"sql": "SELECT * FROM missing",
		"results": null,
		"results_table": null,
		"citations": []
	}`, string(body))
}

func TestQuery_ExecutionFaultDegradesToErrorRow(t *testing.T) {
	server := newQueryServer(t,
		agentStream(`data: {"delta":{"content":[{"type":"tool_results","tool_results":{"content":[{"type":"json","json":{"sql":"SELECT 1"}}]}}]}}`),
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"data": 12}`)
		},
	)

	c := newTestClient(t, server.URL)
	resp, err := c.Query(context.Background(), "q")
	require.NoError(t, err, "execution faults degrade into the response")

	require.Len(t, resp.Results, 1)
	msg, ok := resp.Results[0]["error"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(msg, "SQL execution failed: "), "got %q", msg)

	require.NotNil(t, resp.ResultsTable)
	assert.Equal(t, msg, *resp.ResultsTable)
}

func TestQuery_EmptyStreamFallbacks(t *testing.T) {
	statementsCalled := false
	server := newQueryServer(t,
		func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) },
		func(w http.ResponseWriter, r *http.Request) { statementsCalled = true },
	)

	c := newTestClient(t, server.URL)
	resp, err := c.Query(context.Background(), "q")
	require.NoError(t, err)

	assert.False(t, statementsCalled)
	assert.Equal(t, "No text response generated.", resp.Text)
	assert.Equal(t, "NO_SQL_GENERATED", resp.SQL)
	assert.NotNil(t, resp.Citations)
	assert.Empty(t, resp.Citations)
	assert.Nil(t, resp.Results)
	assert.Nil(t, resp.ResultsTable)
}

func TestQuery_AgentErrorPropagates(t *testing.T) {
	server := newQueryServer(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, "boom")
		},
		func(w http.ResponseWriter, r *http.Request) {},
	)

	c := newTestClient(t, server.URL)
	resp, err := c.Query(context.Background(), "q")
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "API error (status 500)")
}

func TestQuery_CitationsMarshalWithNullForMissingFields(t *testing.T) {
	server := newQueryServer(t,
		agentStream(`data: {"delta":{"content":[{"type":"tool_results","tool_results":{"content":[{"type":"json","json":{"text":"From the docs.","searchResults":[{"source_id":"src-1","doc_id":"doc-1"},{"source_id":"src-2"}]}}]}}]}}`),
		func(w http.ResponseWriter, r *http.Request) {},
	)

	c := newTestClient(t, server.URL)
	resp, err := c.Query(context.Background(), "q")
	require.NoError(t, err)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"text": "From the docs.",
		"sql": "NO_SQL_GENERATED",
		"results": null,
		"results_table": null,
		"citations": [
			{"source_id": "src-1", "doc_id": "doc-1"},
			{"source_id": "src-2", "doc_id": null}
		]
	}`, string(body))
}
