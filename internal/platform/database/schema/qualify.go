// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

import "strings"

// Qualify prefixes each column with a table alias and joins them for a
// select list, e.g. Qualify("l", "id", "title") == "l.id, l.title".
func Qualify(alias string, columns ...string) string {
	qualified := make([]string, len(columns))
	for i, column := range columns {
		qualified[i] = alias + "." + column
	}
	return strings.Join(qualified, ", ")
}
