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
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	dataPrefix   = "data:"
	doneSentinel = "[DONE]"
)

// decodeFrame extracts the JSON event carried by one stream line. It
// returns false for every line that carries no event: blank lines, lines
// without the data prefix, empty payloads, the [DONE] sentinel, payloads
// that fail to parse, and payloads that are not JSON objects.
func decodeFrame(line string) (map[string]interface{}, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, dataPrefix) {
		return nil, false
	}
	payload := strings.TrimSpace(line[len(dataPrefix):])
	if payload == "" || payload == doneSentinel {
		return nil, false
	}
	var evt map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		return nil, false
	}
	return evt, true
}

// eventDelta locates the delta object of one event. Events carry it
// either at the top level or nested one level down inside a data
// envelope; the top-level form wins when both are present.
func eventDelta(evt map[string]interface{}) (map[string]interface{}, bool) {
	if d, ok := evt["delta"].(map[string]interface{}); ok {
		return d, true
	}
	if data, ok := evt["data"].(map[string]interface{}); ok {
		if d, ok := data["delta"].(map[string]interface{}); ok {
			return d, true
		}
	}
	return nil, false
}

// fold merges one delta into the aggregate and returns the new aggregate.
// Text fragments append in arrival order, the most recent SQL string wins
// (the empty string included), and every well-formed search result
// appends one citation. Entries of an unexpected shape are skipped, never
// failed on.
func (o AgentOutput) fold(delta map[string]interface{}) AgentOutput {
	content, ok := delta["content"].([]interface{})
	if !ok {
		return o
	}
	for _, rawItem := range content {
		item, ok := rawItem.(map[string]interface{})
		if !ok {
			continue
		}
		switch item["type"] {
		case "text":
			if s, ok := item["text"].(string); ok {
				o.Text += s
			}
		case "tool_results":
			toolResults, ok := item["tool_results"].(map[string]interface{})
			if !ok {
				continue
			}
			results, _ := toolResults["content"].([]interface{})
			for _, rawResult := range results {
				result, ok := rawResult.(map[string]interface{})
				if !ok {
					continue
				}
				if result["type"] != "json" {
					continue
				}
				j, ok := result["json"].(map[string]interface{})
				if !ok {
					continue
				}
				if s, ok := j["text"].(string); ok {
					o.Text += s
				}
				if s, ok := j["sql"].(string); ok {
					o.SQL = s
				}
				searchResults, ok := j["searchResults"].([]interface{})
				if !ok {
					continue
				}
				for _, rawHit := range searchResults {
					hit, ok := rawHit.(map[string]interface{})
					if !ok {
						continue
					}
					o.Citations = append(o.Citations, Citation{
						SourceID: hit["source_id"],
						DocID:    hit["doc_id"],
					})
				}
			}
		}
	}
	return o
}

// collectStream consumes a newline-delimited event stream until EOF,
// folding every decoded delta into a single AgentOutput. Individual lines
// that do not decode are skipped rather than failing the stream; only
// read errors and context cancellation abort it. Lines up to 1MB are
// supported.
func collectStream(ctx context.Context, r io.Reader) (AgentOutput, error) {
	var out AgentOutput
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}
		evt, ok := decodeFrame(scanner.Text())
		if !ok {
			continue
		}
		delta, ok := eventDelta(evt)
		if !ok {
			continue
		}
		out = out.fold(delta)
	}
	if err := scanner.Err(); err != nil {
		return out, fmt.Errorf("error reading agent stream: %w", err)
	}
	if out.Citations == nil {
		out.Citations = []Citation{}
	}
	return out, nil
}
