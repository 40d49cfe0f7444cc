package sqlbuild

import (
	"fmt"
	"strings"
)

// Update accumulates the assignments of a sparse update. Callers add a
// column only when the corresponding request field is present, so the
// emitted SET list is minimal.
type Update struct {
	columns []string
	args    []interface{}
}

func NewUpdate() *Update {
	return &Update{}
}

func (u *Update) Set(column string, value interface{}) *Update {
	u.columns = append(u.columns, column)
	u.args = append(u.args, value)
	return u
}

func (u *Update) Empty() bool {
	return len(u.columns) == 0
}

// Build emits the UPDATE statement for the accumulated assignments plus an
// optional touch column refreshed to NOW() and the identifying WHERE clause
// bound last. When no field was set it returns ok=false and the caller must
// short-circuit to a plain read: a timestamp-only bump is never issued, so
// the touch column stays stable across no-op updates.
func (u *Update) Build(table, idColumn string, id interface{}, touchColumn string) (string, []interface{}, bool) {
	if u.Empty() {
		return "", nil, false
	}

	var sb strings.Builder
	sb.WriteString("UPDATE " + table + " SET ")
	for i, col := range u.columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s = $%d", col, i+1)
	}
	if touchColumn != "" {
		sb.WriteString(", " + touchColumn + " = NOW()")
	}

	args := append(append([]interface{}{}, u.args...), id)
	fmt.Fprintf(&sb, " WHERE %s = $%d", idColumn, len(args))

	return sb.String(), args, true
}
