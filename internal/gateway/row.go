package gateway

import "strconv"

// Row is a single remote ledger record. Field values keep their decoded JSON
// types; numeric columns may arrive as JSON numbers or as numeric strings
// depending on the ledger's column type, so access goes through the tolerant
// getters below.
type Row map[string]interface{}

// Str returns the field as a string
func (r Row) Str(key string) (string, bool) {
	v, ok := r[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Num returns the field as a float64, accepting JSON numbers and numeric
// strings. ok is false for missing, null or unparsable fields.
func (r Row) Num(key string) (float64, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Int returns the field as an int via Num
func (r Row) Int(key string) (int, bool) {
	f, ok := r.Num(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Bool returns the field as a bool
func (r Row) Bool(key string) (bool, bool) {
	v, ok := r[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
