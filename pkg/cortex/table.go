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
	"fmt"
	"strings"
	"unicode/utf8"
)

// FormatTable renders rows as a bordered table with centered cells:
//
//	+------+-------+
//	| NAME | VALUE |
//	+------+-------+
//	|  a   |  42   |
//	+------+-------+
//
// Columns gives the header order; cells missing from a row render empty.
// The returned string carries no trailing newline.
func FormatTable(columns []string, rows []map[string]interface{}) string {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = utf8.RuneCountInString(col)
	}

	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(columns))
		for i, col := range columns {
			s := cellString(row[col])
			cells[r][i] = s
			if n := utf8.RuneCountInString(s); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	writeBorder := func() {
		b.WriteByte('+')
		for _, w := range widths {
			b.WriteString(strings.Repeat("-", w+2))
			b.WriteByte('+')
		}
		b.WriteByte('\n')
	}
	writeRow := func(vals []string) {
		b.WriteByte('|')
		for i, w := range widths {
			b.WriteByte(' ')
			b.WriteString(center(vals[i], w))
			b.WriteString(" |")
		}
		b.WriteByte('\n')
	}

	writeBorder()
	writeRow(columns)
	writeBorder()
	for _, row := range cells {
		writeRow(row)
	}
	writeBorder()

	return strings.TrimSuffix(b.String(), "\n")
}

// center pads s with spaces to the given rune width, leaving the extra
// space on the right when the gap is odd.
func center(s string, width int) string {
	gap := width - utf8.RuneCountInString(s)
	if gap <= 0 {
		return s
	}
	left := gap / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
}

// cellString renders one cell value. Nulls render empty rather than as
// a literal nil marker.
func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
