// Package prompts provides templates for system and user messages.
package prompts

import (
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"
)

// PromptTemplate is a text template with a declared set of input variables.
type PromptTemplate struct {
	// Template is the template text, using Go template syntax: {{.name}}.
	Template string
	// InputVariables are the names the template requires.
	InputVariables []string
}

// NewPromptTemplate returns a template requiring the given variables.
func NewPromptTemplate(text string, inputVariables []string) *PromptTemplate {
	return &PromptTemplate{
		Template:       text,
		InputVariables: inputVariables,
	}
}

// Format renders the template. All declared input variables must be present.
func (p *PromptTemplate) Format(values map[string]any) (string, error) {
	for _, name := range p.InputVariables {
		if _, ok := values[name]; !ok {
			return "", errors.Newf("missing template variable %q", name)
		}
	}

	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(p.Template)
	if err != nil {
		return "", errors.WithMessage(err, "failed to parse template")
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, values); err != nil {
		return "", errors.WithMessage(err, "failed to render template")
	}
	return buf.String(), nil
}
