package vectorstore

import "github.com/qdrant/go-client/qdrant"

// payloadToMap converts a Qdrant point payload to plain Go values.
func payloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for key, value := range payload {
		if value == nil {
			continue
		}
		result[key] = valueToAny(value)
	}
	return result
}

func valueToAny(v *qdrant.Value) any {
	switch value := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return value.BoolValue
	case *qdrant.Value_IntegerValue:
		return value.IntegerValue
	case *qdrant.Value_DoubleValue:
		return value.DoubleValue
	case *qdrant.Value_StringValue:
		return value.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(value.ListValue.Values))
		for i, item := range value.ListValue.Values {
			list[i] = valueToAny(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return payloadToMap(value.StructValue.Fields)
	default:
		return nil
	}
}
