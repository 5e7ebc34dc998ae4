package tools

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Compact JSON of v for debug logs, the marshalling error otherwise
func FmtJSONString(v interface{}) string {
	var sb strings.Builder
	encoder := json.NewEncoder(&sb)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
