// Package prompt builds the system message that introduces the available
// tools to the model.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"mcpchat/internal/tools"
)

// Placeholder marks where the tool list is substituted.
const Placeholder = "{tools}"

// ErrTemplate is returned when a template has no tools placeholder.
var ErrTemplate = errors.New("system prompt template has no " + Placeholder + " placeholder")

// DefaultTemplate is the assistant persona used when no template is configured.
const DefaultTemplate = `You are a helpful assistant capable of accessing external functions and engaging in casual chat. Use the responses from these function calls to provide accurate and informative answers. The answers should be natural and hide the fact that you are using tools to access real-time information. Guide the user about available tools and their capabilities. Always utilize tools to access real-time information when required. Engage in a friendly manner to enhance the chat experience.

# Tools

{tools}

# Notes

- Ensure responses are based on the latest information available from function calls.
- Maintain an engaging, supportive, and friendly tone throughout the dialogue.
- Always highlight the potential of available tools to assist users comprehensively.`

// Compose substitutes one "name: description" line per catalog tool, in
// catalog order, for the placeholder in template.
func Compose(template string, catalog *tools.Catalog) (string, error) {
	if !strings.Contains(template, Placeholder) {
		return "", ErrTemplate
	}
	return strings.Replace(template, Placeholder, Describe(catalog), 1), nil
}

// Describe lists the catalog as newline separated "name: description" lines.
func Describe(catalog *tools.Catalog) string {
	all := catalog.Tools()
	lines := make([]string, 0, len(all))
	for _, t := range all {
		lines = append(lines, fmt.Sprintf("%s: %s", t.Name, t.Description))
	}
	return strings.Join(lines, "\n")
}
