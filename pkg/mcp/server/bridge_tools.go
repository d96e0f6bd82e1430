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
	"github.com/teradata-labs/rime/pkg/mcp/protocol"
)

const runCortexAgentsToolName = "run_cortex_agents"

// registerTools builds the tool definitions and the name-to-handler
// mapping. Called once during construction; the result is cached on the
// struct.
func (b *CortexBridge) registerTools() {
	b.tools = []protocol.Tool{
		{
			Name: runCortexAgentsToolName,
			Description: "Run a natural-language query through Snowflake Cortex Agents. " +
				"The agent answers from a semantic model (generating SQL, which is then executed) " +
				"and from a Cortex Search service, returning the answer text, any generated SQL, " +
				"the executed query results, and search citations.",
			InputSchema: objectSchema(map[string]interface{}{
				"query": prop("string", "Natural-language question to send to the agent"),
			}, []string{"query"}),
			Annotations: &protocol.ToolAnnotations{
				Title:         "Run Cortex Agents",
				OpenWorldHint: boolP(true),
			},
		},
	}

	b.handlers = map[string]toolHandler{
		runCortexAgentsToolName: b.handleRunCortexAgents,
	}
}

// prop builds a JSON Schema property definition.
func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        typ,
		"description": description,
	}
}

// objectSchema builds a JSON Schema object definition.
func objectSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func boolP(v bool) *bool { return &v }
