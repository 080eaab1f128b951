package related

import (
	"fmt"
	"strings"

	"tourism-backend/internal/store"
)

type QueryResult struct {
	SQL    string
	Params []any
}

// BuildSQL renders the parameterized lookup for one target table. Callers
// validate table before it gets here.
func BuildSQL(d store.Dialect, table string, f RelationFilter, c CollectionCapability, limit int) QueryResult {
	pb := d.NewParamBuilder()
	var where []string

	switch f.Field {
	case FieldTags:
		where = append(where, d.ArrayOverlapExpr(FieldTags, pb, f.Values))
	default:
		where = append(where, fmt.Sprintf("%s = %s", f.Field, pb.Add(f.Value)))
	}

	for _, k := range f.ExcludeKeys {
		where = append(where, fmt.Sprintf("%s <> %s", d.TextExpr(FieldID), pb.Add(k)))
	}
	if c.HasSlug {
		for _, k := range f.ExcludeKeys {
			where = append(where, fmt.Sprintf("(%s IS NULL OR %s <> %s)", FieldSlug, FieldSlug, pb.Add(k)))
		}
	}
	if c.HasDeletedAt {
		where = append(where, FieldDeletedAt+" IS NULL")
	}

	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s", table, strings.Join(where, " AND "))
	if c.HasCreatedAt {
		sql += " ORDER BY " + FieldCreatedAt + " DESC"
	}
	sql += " LIMIT " + pb.Add(limit)

	return QueryResult{SQL: sql, Params: pb.Params()}
}
