package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Optional* types distinguish an absent PATCH field (Set=false) from an explicit
// null or empty value (Set=true, Value=nil).

type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		o.Value = nil
		return nil
	}
	o.Value = &s
	return nil
}

// Or returns the value, or def when unset or null.
func (o OptionalString) Or(def string) string {
	if o.Value == nil {
		return def
	}
	return *o.Value
}

type OptionalFloat64 struct {
	Set   bool
	Value *float64
}

func (o *OptionalFloat64) UnmarshalJSON(data []byte) error {
	o.Set = true
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		o.Value = &v
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		o.Value = nil
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	o.Value = &f
	return nil
}

type OptionalInt struct {
	Set   bool
	Value *int
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	var f OptionalFloat64
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	o.Set = true
	if f.Value == nil {
		o.Value = nil
		return nil
	}
	v := int(*f.Value)
	o.Value = &v
	return nil
}

type OptionalBool struct {
	Set   bool
	Value *bool
}

func (o *OptionalBool) UnmarshalJSON(data []byte) error {
	o.Set = true
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	o.Value = &b
	return nil
}

// Number is a decimal the session server may encode either as a JSON number or as
// a string (Django decimal fields). Invalid means null, empty or absent.
type Number struct {
	Value float64
	Valid bool
}

func NewNumber(v float64) Number { return Number{Value: v, Valid: true} }

func (n *Number) UnmarshalJSON(data []byte) error {
	var f OptionalFloat64
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	if f.Value == nil {
		*n = Number{}
		return nil
	}
	*n = Number{Value: *f.Value, Valid: true}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Ptr returns nil for an invalid number.
func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// Positive reports whether the number is set and strictly greater than zero.
func (n Number) Positive() bool { return n.Valid && n.Value > 0 }
