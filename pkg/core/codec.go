package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Codec encodes the persisted document.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONCodec is the default codec, compatible with the original data format.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// YAMLCodec stores the document as YAML.
// Values pass through their JSON form so that field names and the custom
// Instant encoding stay identical between formats.
type YAMLCodec struct{}

func (YAMLCodec) Name() string { return "yaml" }

func (YAMLCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	return yaml.Marshal(plainNumbers(generic))
}

// plainNumbers turns json.Number leaves into int64 or float64 so YAML writes
// them as numbers rather than quoted strings.
func plainNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = plainNumbers(val)
		}
	case []any:
		for i, val := range t {
			t[i] = plainNumbers(val)
		}
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	}
	return v
}

func (YAMLCodec) Unmarshal(data []byte, v any) error {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return err
	}
	b, err := json.Marshal(normalizeYAML(generic))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// normalizeYAML converts map[any]any nodes into map[string]any so the tree
// can be re-encoded as JSON.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	default:
		return v
	}
}

// CodecByName resolves a codec from its configuration name.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q", name)
	}
}

// document is the persisted layout: one object under StorageKey.
type document struct {
	Notes       []Note     `json:"notes"`
	Reminders   []Reminder `json:"reminders"`
	CustomOrder []string   `json:"customOrder"`
}

// UnmarshalJSON also accepts the legacy "when" key for the reminder instant.
func (r *Reminder) UnmarshalJSON(data []byte) error {
	type plain Reminder
	aux := struct {
		*plain
		LegacyWhen Instant `json:"when"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.When.IsZero() && !aux.LegacyWhen.IsZero() {
		r.When = aux.LegacyWhen
	}
	return nil
}

// decodeDocument parses stored data into a snapshot.
// A bare array of notes (legacy layout) is upgraded: reminders become empty
// and the order defaults to note order.
func decodeDocument(codec Codec, data []byte) (Snapshot, error) {
	var legacy []Note
	if err := codec.Unmarshal(data, &legacy); err == nil {
		return Snapshot{Notes: legacy, Order: Snapshot{Notes: legacy}.NoteIDs()}, nil
	}

	var doc document
	if err := codec.Unmarshal(data, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode %s document: %w", codec.Name(), err)
	}

	snap := Snapshot{Notes: doc.Notes, Reminders: doc.Reminders, Order: doc.CustomOrder}
	if doc.CustomOrder == nil {
		snap.Order = snap.NoteIDs()
	}
	return snap, nil
}

func encodeDocument(codec Codec, snap Snapshot) ([]byte, error) {
	doc := document{
		Notes:       slices.Clone(snap.Notes),
		Reminders:   snap.Reminders,
		CustomOrder: snap.Order,
	}
	if doc.Notes == nil {
		doc.Notes = []Note{}
	}
	if doc.Reminders == nil {
		doc.Reminders = []Reminder{}
	}
	if doc.CustomOrder == nil {
		doc.CustomOrder = []string{}
	}
	for i := range doc.Notes {
		if doc.Notes[i].Reminders == nil {
			doc.Notes[i].Reminders = []Reminder{}
		}
		if doc.Notes[i].Todos == nil {
			doc.Notes[i].Todos = []Todo{}
		}
	}
	data, err := codec.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s document: %w", codec.Name(), err)
	}
	return data, nil
}
