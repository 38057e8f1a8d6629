// Package faq answers digital banking questions from a YAML corpus using
// token-overlap retrieval. No network or embedding calls; good enough for a
// bounded FAQ and fully deterministic.
package faq

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed faq.yaml
var defaultCorpus []byte

// Entry is one FAQ item.
type Entry struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
	Channel  string `yaml:"channel,omitempty"`
}

// ScoredEntry is a retrieval hit with its overlap score.
type ScoredEntry struct {
	Entry
	Score float64
}

// Corpus holds the searchable FAQ entries with pre-tokenized questions.
type Corpus struct {
	entries []Entry
	tokens  []map[string]struct{}
}

// Default loads the corpus embedded in the binary.
func Default() (*Corpus, error) {
	return Parse(defaultCorpus)
}

// LoadFile loads a corpus from a YAML file on disk.
func LoadFile(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("faq: read corpus: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document of the form:
//
//	entries:
//	  - question: ...
//	    answer: ...
//	    channel: ...
func Parse(data []byte) (*Corpus, error) {
	var doc struct {
		Entries []Entry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("faq: parse corpus: %w", err)
	}
	if len(doc.Entries) == 0 {
		return nil, fmt.Errorf("faq: corpus has no entries")
	}

	c := &Corpus{entries: doc.Entries}
	for _, e := range doc.Entries {
		c.tokens = append(c.tokens, tokenize(e.Question+" "+e.Answer))
	}
	return c, nil
}

// Len reports the number of entries.
func (c *Corpus) Len() int { return len(c.entries) }

// Search returns up to k entries ranked by token overlap with the query.
// Entries with no overlap are omitted.
func (c *Corpus) Search(query string, k int) []ScoredEntry {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 || k <= 0 {
		return nil
	}

	var hits []ScoredEntry
	for i, entry := range c.entries {
		overlap := 0
		for tok := range queryTokens {
			if _, ok := c.tokens[i][tok]; ok {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}
		hits = append(hits, ScoredEntry{
			Entry: entry,
			Score: float64(overlap) / float64(len(queryTokens)),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "can": {}, "do": {}, "does": {},
	"for": {}, "how": {}, "i": {}, "in": {}, "is": {}, "it": {}, "my": {},
	"of": {}, "on": {}, "or": {}, "the": {}, "to": {}, "what": {}, "when": {},
	"where": {}, "with": {},
}

func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if _, stop := stopwords[field]; stop {
			continue
		}
		tokens[field] = struct{}{}
	}
	return tokens
}
