package validator

import (
	"strings"
	"unicode"
)

// DeriveLabel turns a column name into its problem-category label when the
// caller supplied none: segments split on "_", "-", and spaces are
// capitalized and prefixed with "Improper". Existing camel humps survive,
// so both "update_time" and "updateTime" derive "ImproperUpdateTime".
func DeriveLabel(column string) string {
	var b strings.Builder
	b.WriteString("Improper")
	for _, seg := range strings.FieldsFunc(column, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	}) {
		runes := []rune(seg)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

// labelFor resolves a column's category label: caller mapping first,
// derived convention otherwise.
func labelFor(column string, labels map[string]string) string {
	if l, ok := labels[column]; ok {
		return l
	}
	return DeriveLabel(column)
}
