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

// Citation is one source reference attached to the agent's answer.
// SourceID and DocID mirror whatever the search tool emitted; either may
// be absent, in which case it marshals as null.
type Citation struct {
	SourceID interface{} `json:"source_id"`
	DocID    interface{} `json:"doc_id"`
}

// AgentOutput is the aggregate of one agent-run stream: the free text,
// the last generated SQL statement (if any), and the citations in
// arrival order.
type AgentOutput struct {
	Text      string
	SQL       string
	Citations []Citation
}

// StatementResult is the outcome of one statement execution. Exactly one
// of (Columns, Rows) or Error is populated: Error carries failures the
// SQL API reported in-band, while transport-level faults surface as Go
// errors from ExecuteStatement.
type StatementResult struct {
	Columns []string
	Rows    []map[string]interface{}
	Error   string
}

// QueryResponse is the combined result of one agent query, shaped for the
// run_cortex_agents tool. Results and ResultsTable are null unless
// statement execution produced rows (or failed hard, in which case both
// carry a one-row error record and its message).
type QueryResponse struct {
	Text         string                   `json:"text"`
	SQL          string                   `json:"sql"`
	Results      []map[string]interface{} `json:"results"`
	ResultsTable *string                  `json:"results_table"`
	Citations    []Citation               `json:"citations"`
}

// agentRunRequest is the agent:run request payload. The field set and
// values are fixed apart from the user query and the two tool-resource
// bindings.
type agentRunRequest struct {
	Model               string                 `json:"model"`
	ResponseInstruction string                 `json:"response_instruction"`
	Experimental        map[string]interface{} `json:"experimental"`
	Tools               []toolSpec             `json:"tools"`
	ToolResources       map[string]interface{} `json:"tool_resources"`
	ToolChoice          toolChoice             `json:"tool_choice"`
	Messages            []agentMessage         `json:"messages"`
}

type toolSpec struct {
	ToolSpec toolSpecInner `json:"tool_spec"`
}

type toolSpecInner struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type toolChoice struct {
	Type string `json:"type"`
}

type agentMessage struct {
	Role    string             `json:"role"`
	Content []agentMessagePart `json:"content"`
}

type agentMessagePart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// statementRequest is the SQL API request body. Timeout is the
// server-side bound in seconds, fixed at 60.
type statementRequest struct {
	Statement string `json:"statement"`
	Timeout   int    `json:"timeout"`
}

// statementResponse is the subset of the SQL API success envelope this
// client consumes: ordered rows plus ordered column descriptors.
type statementResponse struct {
	Data              [][]interface{} `json:"data"`
	ResultSetMetaData struct {
		RowType []struct {
			Name string `json:"name"`
		} `json:"rowType"`
	} `json:"resultSetMetaData"`
}
