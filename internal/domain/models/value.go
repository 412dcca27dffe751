package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValueType tags which member of IndicatorValue is set.
type ValueType uint8

const (
	ValueMissing ValueType = iota
	ValueScalar
	ValueMACD
	ValueLabel
)

func (t ValueType) String() string {
	switch t {
	case ValueScalar:
		return "scalar"
	case ValueMACD:
		return "macd"
	case ValueLabel:
		return "label"
	default:
		return "missing"
	}
}

// MACDValue is the composite MACD reading.
type MACDValue struct {
	MACD   float64 `json:"macd"`
	Signal float64 `json:"signal_line"`
}

// IndicatorValue is a tagged union over the shapes an indicator value can take.
// The shape is resolved once when the value enters the system.
type IndicatorValue struct {
	Type   ValueType
	Scalar float64
	MACD   MACDValue
	Label  string
}

// Scalar builds a plain numeric value.
func Scalar(v float64) IndicatorValue { return IndicatorValue{Type: ValueScalar, Scalar: v} }

// MACDPair builds a composite MACD value.
func MACDPair(macd, signal float64) IndicatorValue {
	return IndicatorValue{Type: ValueMACD, MACD: MACDValue{MACD: macd, Signal: signal}}
}

// Label builds a pre-classified label value (used by VOLATILITY).
func Label(s string) IndicatorValue { return IndicatorValue{Type: ValueLabel, Label: s} }

// IsMissing reports whether no value was supplied.
func (v IndicatorValue) IsMissing() bool { return v.Type == ValueMissing }

// ValueFromAny resolves a loosely typed decoded value (JSON or YAML) into an IndicatorValue.
// Strings are always labels, so "45" for a numeric kind fails classification instead of being coerced.
func ValueFromAny(raw any) (IndicatorValue, error) {
	switch v := raw.(type) {
	case nil:
		return IndicatorValue{}, nil
	case float64:
		return Scalar(v), nil
	case float32:
		return Scalar(float64(v)), nil
	case int:
		return Scalar(float64(v)), nil
	case int64:
		return Scalar(float64(v)), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return IndicatorValue{}, fmt.Errorf("parse number %q: %w", v, err)
		}
		return Scalar(f), nil
	case string:
		return Label(strings.TrimSpace(v)), nil
	case map[string]any:
		return macdFromMap(v)
	default:
		return IndicatorValue{}, fmt.Errorf("unsupported indicator value type %T", raw)
	}
}

func macdFromMap(m map[string]any) (IndicatorValue, error) {
	macdRaw, ok := m["macd"]
	if !ok {
		return IndicatorValue{}, fmt.Errorf("composite value without macd field")
	}
	var signalRaw any
	for _, k := range []string{"signal_line", "signalLine", "signal"} {
		if s, ok := m[k]; ok {
			signalRaw = s
			break
		}
	}
	if signalRaw == nil {
		return IndicatorValue{}, fmt.Errorf("composite value without signal line")
	}
	macd, err := ValueFromAny(macdRaw)
	if err != nil || macd.Type != ValueScalar {
		return IndicatorValue{}, fmt.Errorf("macd field is not numeric")
	}
	signal, err := ValueFromAny(signalRaw)
	if err != nil || signal.Type != ValueScalar {
		return IndicatorValue{}, fmt.Errorf("signal line is not numeric")
	}
	return MACDPair(macd.Scalar, signal.Scalar), nil
}

// UnmarshalJSON resolves numbers, labels and MACD objects.
func (v *IndicatorValue) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	out, err := ValueFromAny(raw)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// MarshalJSON writes the value back in its natural shape.
func (v IndicatorValue) MarshalJSON() ([]byte, error) {
	switch v.Type {
	case ValueScalar:
		return json.Marshal(v.Scalar)
	case ValueMACD:
		return json.Marshal(v.MACD)
	case ValueLabel:
		return json.Marshal(v.Label)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalYAML applies the same resolution rules as UnmarshalJSON.
func (v *IndicatorValue) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	out, err := ValueFromAny(raw)
	if err != nil {
		return err
	}
	*v = out
	return nil
}
