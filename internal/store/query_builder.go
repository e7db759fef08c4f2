package store

import (
	"fmt"
	"sort"
	"strings"
)

// buildListQuery constructs a safe PostgreSQL query for List. Only
// whitelisted columns ever reach the SQL text; values always travel as
// parameters. Filters that cannot be expressed in SQL are left to the client
// side, in which case the limit is not pushed down either.
func buildListQuery(m tableMapping, opts ListOptions) (string, []any) {
	var (
		b         strings.Builder
		args      []any
		pushedAll = true
	)

	fmt.Fprintf(&b, "SELECT row_to_json(t) FROM %s t WHERE 1=1", m.table)

	keys := make([]string, 0, len(opts.Filters))
	for k := range opts.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		s, isString := opts.Filters[key].(string)
		if !isString || !m.text[key] {
			pushedAll = false
			continue
		}
		args = append(args, s)
		fmt.Fprintf(&b, " AND t.%s = $%d", quoteIdent(m.column(key)), len(args))
	}

	field, desc := parseSort(opts.Sort)
	sortPushed := false
	if field != "" && m.ordered[field] {
		dir := "ASC"
		if desc {
			dir = "DESC"
		}
		// ties keep insertion order, as in memory
		fmt.Fprintf(&b, " ORDER BY t.%s %s NULLS LAST, t.created_at ASC", quoteIdent(m.column(field)), dir)
		sortPushed = true
	} else {
		b.WriteString(" ORDER BY t.created_at ASC")
	}

	if opts.Limit > 0 && pushedAll && sortPushed {
		fmt.Fprintf(&b, " LIMIT %d", opts.Limit)
	}
	return b.String(), args
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
