package utils

import (
	"fmt"
	"strconv"
)

// ToString converts various types to string.
// Directory responses carry identifiers inconsistently typed (JSON numbers
// for personId/uid, strings elsewhere), so mapping always goes through here.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		// JSON numbers decode as float64; identifiers are integral.
		return strconv.FormatInt(int64(v), 10)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
