package patentsearch

import "strings"

// BuildQueryString turns extracted keywords and IPC codes into a boolean
// search expression: "(kw1 OR kw2 ...) AND (IPC:c1 OR IPC:c2 ...)".
// At most five keywords are used. With nothing to search on, a generic
// "technology" query is returned rather than an empty one.
func BuildQueryString(q Query) string {
	keywords := q.Keywords
	if len(keywords) > 5 {
		keywords = keywords[:5]
	}

	var parts []string
	if len(keywords) > 0 {
		parts = append(parts, "("+strings.Join(keywords, " OR ")+")")
	}
	if len(q.IPCClassifications) > 0 {
		codes := make([]string, 0, len(q.IPCClassifications))
		for _, c := range q.IPCClassifications {
			codes = append(codes, "IPC:"+c)
		}
		parts = append(parts, "("+strings.Join(codes, " OR ")+")")
	}

	if len(parts) == 0 {
		return "technology"
	}
	return strings.Join(parts, " AND ")
}
