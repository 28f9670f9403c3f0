package toolkit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// HashParams produces an order-independent, type-stable digest of a parameter
// map: two maps with equal key/value pairs hash identically regardless of
// insertion order. Used as the redundancy-cache key component.
func HashParams(params map[string]interface{}) string {
	var builder strings.Builder
	writeCanonical(&builder, params)

	sum := sha256.Sum256([]byte(builder.String()))
	return hex.EncodeToString(sum[:])
}

func writeCanonical(builder *strings.Builder, value interface{}) {
	switch v := value.(type) {
	case nil:
		builder.WriteString("null")
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		builder.WriteByte('{')
		for i, key := range keys {
			if i > 0 {
				builder.WriteByte(',')
			}
			builder.WriteString(strconv.Quote(key))
			builder.WriteByte(':')
			writeCanonical(builder, v[key])
		}
		builder.WriteByte('}')
	case []interface{}:
		builder.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				builder.WriteByte(',')
			}
			writeCanonical(builder, item)
		}
		builder.WriteByte(']')
	case string:
		builder.WriteString(strconv.Quote(v))
	case bool:
		builder.WriteString(strconv.FormatBool(v))
	case int:
		writeNumber(builder, float64(v))
	case int32:
		writeNumber(builder, float64(v))
	case int64:
		writeNumber(builder, float64(v))
	case float32:
		writeNumber(builder, float64(v))
	case float64:
		writeNumber(builder, v)
	default:
		builder.WriteString(strconv.Quote(fmt.Sprintf("%v", v)))
	}
}

// writeNumber normalizes all numeric types through float64 so that 3 and 3.0
// hash the same whether they arrived as int or as decoded JSON float.
func writeNumber(builder *strings.Builder, v float64) {
	builder.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
}
