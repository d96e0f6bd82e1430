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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/teradata-labs/rime/pkg/cortex"
)

var (
	queryJSON    bool
	queryTimeout time.Duration
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask Cortex Agents a question",
	Long: heredoc.Doc(`
		Send one natural-language question to Snowflake Cortex Agents.

		The agent answers from the configured semantic model and Cortex
		Search service. When the agent generates SQL, Rime executes it
		against the warehouse and prints the rows as a table.
	`),
	Example: heredoc.Doc(`
		rime query "Which region had the highest revenue last quarter?"
		rime query --json "How many orders shipped late this month?"
	`),
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "print the raw JSON response")
	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", 5*time.Minute, "overall request timeout")
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	client, err := cortex.NewClient(cfg.CortexConfig(), logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	resp, err := client.Query(ctx, args[0])
	if err != nil {
		return err
	}

	if queryJSON {
		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), formatQueryResponse(resp))
	return nil
}

// formatQueryResponse renders the agent response for terminal output.
func formatQueryResponse(resp *cortex.QueryResponse) string {
	var b strings.Builder

	b.WriteString(strings.TrimSpace(resp.Text))
	b.WriteString("\n")

	if resp.SQL != cortex.NoSQLGenerated {
		b.WriteString("\nSQL:\n")
		b.WriteString(strings.TrimSpace(resp.SQL))
		b.WriteString("\n")
	}

	if resp.ResultsTable != nil && *resp.ResultsTable != "" {
		b.WriteString("\nResults:\n")
		b.WriteString(*resp.ResultsTable)
		b.WriteString("\n")
	}

	if len(resp.Citations) > 0 {
		b.WriteString("\nCitations:\n")
		for _, c := range resp.Citations {
			b.WriteString(fmt.Sprintf("  [%s] %s\n", citationField(c.SourceID), citationField(c.DocID)))
		}
	}

	return b.String()
}

// citationField renders a citation field, using "-" for absent values.
func citationField(v interface{}) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%v", v)
}
