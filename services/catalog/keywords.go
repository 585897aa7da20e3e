package catalog

import "strings"

// BuildSearchKeywords derives the searchable keyword list of a service: the
// whitespace-separated words of name, description and category plus every tag,
// lower-cased, without empties or repeats, in first-seen order.
func BuildSearchKeywords(name, description, category string, tags []string) []string {
	seen := make(map[string]struct{})
	keywords := []string{}
	add := func(word string) {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			return
		}
		if _, dup := seen[word]; dup {
			return
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}

	for _, field := range []string{name, description, category} {
		for _, word := range strings.Fields(field) {
			add(word)
		}
	}
	for _, tag := range tags {
		add(tag)
	}
	return keywords
}
