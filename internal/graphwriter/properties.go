package graphwriter

import "encoding/json"

// prepareProperties flattens an ir.Node/ir.Edge's loose property bag into
// storage-safe scalar/array values per spec §4.8: primitives pass through,
// maps and arrays-of-objects are JSON-serialized (Neo4j properties can't
// hold nested maps), primitive-only arrays pass through unchanged, and nil
// becomes an explicit nil (Cypher null).
func prepareProperties(props map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		out[k] = prepareValue(v)
	}
	return out
}

func prepareValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case string, bool, int, int64, float64, float32:
		return val
	case []string:
		return val
	case []int:
		return val
	case []float64:
		return val
	case map[string]string:
		return serializeJSON(val)
	case map[string]interface{}:
		return serializeJSON(val)
	case []interface{}:
		if isPrimitiveOnly(val) {
			return val
		}
		return serializeJSON(val)
	default:
		return serializeJSON(val)
	}
}

func isPrimitiveOnly(items []interface{}) bool {
	for _, item := range items {
		switch item.(type) {
		case string, bool, int, int64, float64, float32, nil:
			continue
		default:
			return false
		}
	}
	return true
}

// serializeJSON marshals a composite value to a JSON string; marshal
// failure (only possible for unsupported types like channels/funcs, which
// never appear in ir.Node.Properties) degrades to an empty object rather
// than propagating an error into the batch-write hot path.
func serializeJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
