package sql

import (
	"strings"

	"github.com/dynasql/dynasql/pkg/apperrors"
	"github.com/dynasql/dynasql/pkg/params"
)

// Render expands the conditional blocks of a template against the supplied
// parameters and normalizes whitespace into one logical statement. Only
// {% if name %} / {% else %} / {% endif %} is supported; a block is kept when
// the named parameter is present and truthy. :name bind markers are left
// intact for execution-time binding.
//
// Malformed conditional syntax (unbalanced blocks, unknown tags) fails with
// an apperrors.TemplateError.
func Render(text string, supplied map[string]params.Value) (string, error) {
	nodes, _, err := parseNodes(text, false)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	evalNodes(nodes, supplied, &b)
	return normalizeWhitespace(b.String()), nil
}

const (
	tagOpen  = "{%"
	tagClose = "%}"
)

type node interface{}

type literalNode string

type condNode struct {
	name     string
	body     []node
	elseBody []node
}

// parseNodes consumes text up to (and not including) the next else/endif tag
// when inBlock is set, or to the end of input otherwise. It returns the
// parsed nodes and the unconsumed remainder starting at that tag.
func parseNodes(text string, inBlock bool) ([]node, string, error) {
	var nodes []node

	for {
		open := strings.Index(text, tagOpen)
		if open < 0 {
			if text != "" {
				nodes = append(nodes, literalNode(text))
			}
			return nodes, "", nil
		}

		if open > 0 {
			nodes = append(nodes, literalNode(text[:open]))
		}

		end := strings.Index(text[open:], tagClose)
		if end < 0 {
			return nil, "", &apperrors.TemplateError{Reason: "unterminated '{%' tag"}
		}
		tag := strings.TrimSpace(text[open+len(tagOpen) : open+end])
		after := text[open+end+len(tagClose):]

		switch {
		case strings.HasPrefix(tag, "if "), tag == "if":
			name := strings.TrimSpace(strings.TrimPrefix(tag, "if"))
			if name == "" {
				return nil, "", &apperrors.TemplateError{Reason: "'if' tag missing parameter name"}
			}
			cond := condNode{name: name}
			body, rest, err := parseNodes(after, true)
			if err != nil {
				return nil, "", err
			}
			cond.body = body

			restTag, restAfter, err := consumeTag(rest)
			if err != nil {
				return nil, "", err
			}
			if restTag == "else" {
				elseBody, elseRest, err := parseNodes(restAfter, true)
				if err != nil {
					return nil, "", err
				}
				cond.elseBody = elseBody
				restTag, restAfter, err = consumeTag(elseRest)
				if err != nil {
					return nil, "", err
				}
			}
			if restTag != "endif" {
				return nil, "", &apperrors.TemplateError{Reason: "'if " + name + "' block is not closed with 'endif'"}
			}
			nodes = append(nodes, cond)
			text = restAfter

		case tag == "else", tag == "endif":
			if !inBlock {
				return nil, "", &apperrors.TemplateError{Reason: "unexpected '" + tag + "' without matching 'if'"}
			}
			// Hand the tag back to the enclosing if block.
			return nodes, text[open:], nil

		default:
			return nil, "", &apperrors.TemplateError{Reason: "unknown template tag '" + tag + "'"}
		}
	}
}

// consumeTag reads the else/endif tag parseNodes stopped at.
func consumeTag(text string) (string, string, error) {
	if !strings.HasPrefix(text, tagOpen) {
		return "", "", &apperrors.TemplateError{Reason: "'if' block is not closed with 'endif'"}
	}
	end := strings.Index(text, tagClose)
	if end < 0 {
		return "", "", &apperrors.TemplateError{Reason: "unterminated '{%' tag"}
	}
	tag := strings.TrimSpace(text[len(tagOpen):end])
	return tag, text[end+len(tagClose):], nil
}

func evalNodes(nodes []node, supplied map[string]params.Value, b *strings.Builder) {
	for _, n := range nodes {
		switch t := n.(type) {
		case literalNode:
			b.WriteString(string(t))
		case condNode:
			if v, ok := supplied[t.name]; ok && v.Truthy() {
				evalNodes(t.body, supplied, b)
			} else {
				evalNodes(t.elseBody, supplied, b)
			}
		}
	}
}

// normalizeWhitespace drops blank lines and joins the remaining trimmed lines
// with a single space, collapsing the template into one logical statement.
func normalizeWhitespace(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}
