package util

import "strings"

// SplitCSV flattens values that may each hold comma-separated items, trimming
// whitespace and dropping empties. Order is preserved.
func SplitCSV(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
