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

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teradata-labs/rime/pkg/cortex"
)

func TestFormatQueryResponse_FullResponse(t *testing.T) {
	table := "+--------+-------+\n| REGION | TOTAL |\n+--------+-------+\n|  EMEA  | 1250  |\n+--------+-------+"
	resp := &cortex.QueryResponse{
		Text:         "EMEA led revenue.",
		SQL:          "SELECT region, total FROM sales",
		ResultsTable: &table,
		Citations: []cortex.Citation{
			{SourceID: 1, DocID: "doc-1"},
			{SourceID: 2, DocID: nil},
		},
	}

	got := formatQueryResponse(resp)

	want := "EMEA led revenue.\n" +
		"\nSQL:\nSELECT region, total FROM sales\n" +
		"\nResults:\n" + table + "\n" +
		"\nCitations:\n  [1] doc-1\n  [2] -\n"
	assert.Equal(t, want, got)
}

func TestFormatQueryResponse_AnswerOnly(t *testing.T) {
	resp := &cortex.QueryResponse{
		Text:      "Just an answer.",
		SQL:       cortex.NoSQLGenerated,
		Citations: []cortex.Citation{},
	}

	got := formatQueryResponse(resp)

	// The sentinel SQL value and empty sections stay out of the output.
	assert.Equal(t, "Just an answer.\n", got)
}

func TestFormatQueryResponse_EmptyTableOmitted(t *testing.T) {
	empty := ""
	resp := &cortex.QueryResponse{
		Text:         "No rows matched.",
		SQL:          "SELECT 1 WHERE 1 = 0",
		ResultsTable: &empty,
	}

	got := formatQueryResponse(resp)

	assert.Equal(t, "No rows matched.\n\nSQL:\nSELECT 1 WHERE 1 = 0\n", got)
}

func TestCitationField(t *testing.T) {
	assert.Equal(t, "-", citationField(nil))
	assert.Equal(t, "7", citationField(7))
	assert.Equal(t, "doc-9", citationField("doc-9"))
	// JSON numbers decode as float64; whole values print without decimals.
	assert.Equal(t, "3", citationField(float64(3)))
}
