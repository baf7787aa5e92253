package persistence

import "encoding/json"

// jsonColumn marshals v for a JSONB column, mapping nil slices/maps to their
// empty JSON form so NOT NULL defaults hold.
func jsonColumn(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil || raw == nil || string(raw) == "null" {
		return []byte("[]")
	}
	return raw
}

func jsonObjectColumn(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil || raw == nil || string(raw) == "null" {
		return []byte("{}")
	}
	return raw
}

func scanJSON(raw []byte, out any) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, out)
}
