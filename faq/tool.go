package faq

import (
	"fmt"
	"strings"

	"github.com/seybold/bankdesk/core"
	"github.com/seybold/bankdesk/tool"
)

// defaultTopK is how many FAQ entries a lookup returns.
const defaultTopK = 3

// NewLookupTool exposes the corpus as the digital banking assistant's
// lookup_digital_banking_faq tool.
func NewLookupTool(corpus *Corpus) tool.Tool {
	return tool.NewFunctionTool(
		"lookup_digital_banking_faq",
		"Look up the digital banking FAQ to answer questions about e-banking, the mobile app, "+
			"transfers, security and account services. Use this before advising on any digital banking procedure.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The user's question or topic to look up",
				},
			},
			"required": []string{"query"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			query, _ := args["query"].(string)
			hits := corpus.Search(query, defaultTopK)
			if len(hits) == 0 {
				return "No matching FAQ entry was found. Advise the user to contact their relationship manager.", nil
			}

			var b strings.Builder
			for i, hit := range hits {
				if i > 0 {
					b.WriteString("\n\n")
				}
				fmt.Fprintf(&b, "Q: %s\nA: %s", hit.Question, strings.TrimSpace(hit.Answer))
			}
			return b.String(), nil
		},
	)
}
