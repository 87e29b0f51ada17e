package models

import "time"

// -----------------------------------------------------------------------------
// Loosely-typed fetch results. The provider decides which columns exist and
// what is null; normalizers declare their canonical schema against this.
// -----------------------------------------------------------------------------

// MRawRow maps a column name to an optional value. Values are one of
// nil, float64, int64, string or time.Time.
type MRawRow map[string]interface{}

// MRawTable is one instrument's raw tabular fetch result. Columns lists the
// column names actually present, in provider order; a canonical column the
// provider did not send is simply absent.
type MRawTable struct {
	Columns []string  `json:"columns"`
	Rows    []MRawRow `json:"rows"`
}

// MRawChain is one underlying's raw options fetch: both legs for the single
// nearest expiry, selected by the fetcher.
type MRawChain struct {
	UnderlyingTicker string    `json:"underlying_ticker"`
	Expiry           time.Time `json:"expiry"`
	Calls            MRawTable `json:"calls"`
	Puts             MRawTable `json:"puts"`
}

// -----------------------------------------------------------------------------
// Typed accessors. All of them return the null case when the column is
// absent, nil, or of an unconvertible type.
// -----------------------------------------------------------------------------

// Float reads a numeric column as *float64.
func (r MRawRow) Float(col string) *float64 {
	val, ok := r[col]
	if !ok || val == nil {
		return nil
	}
	switch v := val.(type) {
	case float64:
		f := v
		return &f
	case int64:
		f := float64(v)
		return &f
	case int:
		f := float64(v)
		return &f
	}
	return nil
}

// -----------------------------------------------------------------------------

// Int reads an integer column as *int64. Float values are truncated, the
// way a provider-sent 123.0 volume is still a count.
func (r MRawRow) Int(col string) *int64 {
	val, ok := r[col]
	if !ok || val == nil {
		return nil
	}
	switch v := val.(type) {
	case int64:
		n := v
		return &n
	case int:
		n := int64(v)
		return &n
	case float64:
		n := int64(v)
		return &n
	}
	return nil
}

// -----------------------------------------------------------------------------

// Time reads a timestamp column. The returned time may carry any timezone
// offset the provider used; stripping it is the normalizer's job.
func (r MRawRow) Time(col string) (time.Time, bool) {
	val, ok := r[col]
	if !ok || val == nil {
		return time.Time{}, false
	}
	if t, ok := val.(time.Time); ok {
		return t, true
	}
	return time.Time{}, false
}

// -----------------------------------------------------------------------------

// Text reads a string column.
func (r MRawRow) Text(col string) (string, bool) {
	val, ok := r[col]
	if !ok || val == nil {
		return "", false
	}
	if s, ok := val.(string); ok {
		return s, true
	}
	return "", false
}

// -----------------------------------------------------------------------------

// HasColumn reports whether the table carries the named column at all.
func (t MRawTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}
