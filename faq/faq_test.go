package faq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seybold/bankdesk/core"
)

func TestDefaultCorpusLoads(t *testing.T) {
	corpus, err := Default()
	require.NoError(t, err)
	assert.Greater(t, corpus.Len(), 5)
}

func TestParse_RejectsEmpty(t *testing.T) {
	_, err := Parse([]byte("entries: []"))
	require.Error(t, err)

	_, err = Parse([]byte("not: [valid"))
	require.Error(t, err)
}

func TestSearch_RanksByOverlap(t *testing.T) {
	corpus, err := Parse([]byte(`
entries:
  - question: How do I reset my password?
    answer: Use the forgot password link on the login page.
  - question: What is the transfer limit?
    answer: Transfers are capped at $3,000 per transaction.
`))
	require.NoError(t, err)

	hits := corpus.Search("reset password", 3)
	require.NotEmpty(t, hits)
	assert.Contains(t, hits[0].Question, "password")

	hits = corpus.Search("transfer limit", 3)
	require.NotEmpty(t, hits)
	assert.Contains(t, hits[0].Question, "transfer limit")

	assert.Empty(t, corpus.Search("zebra migration", 3))
	assert.Empty(t, corpus.Search("", 3))
}

func TestLookupTool(t *testing.T) {
	corpus, err := Default()
	require.NoError(t, err)
	lookup := NewLookupTool(corpus)

	sess := core.NewSessionContext("s", "u")
	toolCtx := core.NewToolContext(context.Background(), "c1", "digital_banking_assistant", sess, core.UserContext{}, nil)

	result, err := lookup.Call(toolCtx, map[string]any{"query": "daily transfer limit"})
	require.NoError(t, err)
	text, ok := result.(string)
	require.True(t, ok)
	assert.Contains(t, text, "$3,000")

	result, err = lookup.Call(toolCtx, map[string]any{"query": "quantum entanglement"})
	require.NoError(t, err)
	assert.Contains(t, result.(string), "No matching FAQ entry")
}
