// Tool call parsing.
//
// The model is taught to format tool calls with simple XML-like tags:
//
//	<tool_use>
//	<tool_name>weather</tool_name>
//	<city>Paris</city>
//	</tool_use>
//
// Every tag inside the block except tool_name is a parameter. Values stay
// strings; each tool interprets its own.

package agent

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	toolUsePattern   = regexp.MustCompile(`(?s)<tool_use>(.*?)</tool_use>`)
	toolNamePattern  = regexp.MustCompile(`<tool_name>(.*?)</tool_name>`)
	parameterPattern = regexp.MustCompile(`<(\w+)>(.*?)</(\w+)>`)
)

// ToolCall is one parsed tool invocation request.
type ToolCall struct {
	Name   string
	Params map[string]string
}

func (c *ToolCall) String() string {
	return fmt.Sprintf("ToolCall{tool=%q, params=%v}", c.Name, c.Params)
}

// ParseToolCall extracts the first tool call from a model response.
// Returns nil when the response contains no well-formed tool_use block;
// a response without one is a final answer.
func ParseToolCall(response string) *ToolCall {
	if strings.TrimSpace(response) == "" {
		return nil
	}

	block := toolUsePattern.FindStringSubmatch(response)
	if block == nil {
		return nil
	}
	content := block[1]

	nameMatch := toolNamePattern.FindStringSubmatch(content)
	if nameMatch == nil {
		return nil
	}
	name := strings.TrimSpace(nameMatch[1])

	params := make(map[string]string)
	for _, m := range parameterPattern.FindAllStringSubmatch(content, -1) {
		// Opening and closing tags must match.
		if m[1] != m[3] || m[1] == "tool_name" {
			continue
		}
		params[m[1]] = strings.TrimSpace(m[2])
	}

	return &ToolCall{Name: name, Params: params}
}
