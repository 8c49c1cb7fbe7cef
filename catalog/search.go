package catalog

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/sahilm/fuzzy"
)

// DefaultSearchLimit is how many templates the search shows at most.
const DefaultSearchLimit = 20

// Search filters templates by name. An empty query returns the first limit
// templates. A query with glob metacharacters (*, ? or [) is matched as a
// case-insensitive glob against the whole name. Otherwise, names containing
// the query come first (in catalog order), followed by fuzzy matches (all the
// query chars appear in the name in the same order), best ranked first.
//
// If limit is not positive, DefaultSearchLimit is used.
func Search(templates []Template, query string, limit int) []Template {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	query = strings.ToLower(strings.TrimSpace(query))

	if query == "" {
		return firstN(templates, limit)
	}

	if strings.ContainsAny(query, "*?[") {
		if matcher, err := glob.Compile(query); err == nil {
			var ret []Template
			for _, t := range templates {
				if matcher.Match(strings.ToLower(t.Name)) {
					ret = append(ret, t)
					if len(ret) == limit {
						break
					}
				}
			}

			return ret
		}

		// Not a valid glob: fall through and treat it as plain text.
	}

	var substr, rest []Template
	var restNames []string

	for _, t := range templates {
		name := strings.ToLower(t.Name)
		if strings.Contains(name, query) {
			substr = append(substr, t)
			continue
		}

		rest = append(rest, t)
		restNames = append(restNames, name)
	}

	ret := firstN(substr, limit)
	for _, m := range fuzzy.Find(query, restNames) {
		if len(ret) == limit {
			break
		}
		ret = append(ret, rest[m.Index])
	}

	return ret
}

func firstN(templates []Template, n int) []Template {
	if len(templates) <= n {
		return append([]Template(nil), templates...)
	}

	return append([]Template(nil), templates[:n]...)
}
