package naming

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// CamelToSnake converts a CamelCase string to snake_case.
// Consecutive uppercase letters (acronyms) are kept together:
// "ID" → "id", "CustomerID" → "customer_id", "ItemName" → "item_name".
func CamelToSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				next := rune(0)
				if i+1 < len(runes) {
					next = runes[i+1]
				}
				if unicode.IsLower(prev) || (unicode.IsUpper(prev) && unicode.IsLower(next)) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TableName converts an entity type name to its snake_case plural table name.
// e.g. "Customer" → "customers", "ItemCategory" → "item_categories"
func TableName(typeName string) string {
	return inflection.Plural(CamelToSnake(typeName))
}

// ForeignKey returns the column a child table uses to reference typeName.
// e.g. "Customer" → "customer_id"
func ForeignKey(typeName string) string {
	return CamelToSnake(typeName) + "_id"
}
