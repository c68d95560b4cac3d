package collection

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"golang.org/x/text/collate"
)

// compareValues orders two sort keys. Nil becomes "", and if either side is
// a string both are compared as case-folded strings with the collator;
// otherwise both are compared as numbers.
func compareValues(col *collate.Collator, a, b any) int {
	a, b = normalize(a), normalize(b)
	_, aStr := a.(string)
	_, bStr := b.(string)
	if aStr || bStr {
		return col.CompareString(strings.ToLower(fmt.Sprint(a)), strings.ToLower(fmt.Sprint(b)))
	}
	af, bf := a.(float64), b.(float64)
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	}
	return 0
}

// normalize reduces a key to either a string or a float64. Named types
// are reduced by their underlying kind, so every numeric kind sorts as a
// number.
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case float64:
		return x
	case int:
		return float64(x)
	case time.Time:
		return float64(x.UnixNano())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			return 1.0
		}
		return 0.0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}
