package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

const (
	keySchemaVersion = "schema_version"
	keyRollData      = "roll_data"
	keyQuality       = "quality_control"
)

// legacyKeys maps keys written by older views to their current name. A current
// key present in the same object wins.
var legacyKeys = map[string]string{
	"longueur_cible": "target_length",
	"targetLength":   "target_length",
	"currentFO":      "of_en_cours",
	"cuttingOrder":   "of_decoupe",
	"profile_id":     "selected_profile_id",
}

// Numeric keys older sessions may carry as strings. Empty strings become null.
var (
	intKeys   = []string{"target_length", "roll_number", "selected_profile_id", "rolls_total", "rolls_conform"}
	floatKeys = []string{
		"length_start", "length_end", "tube_mass", "roll_length", "total_mass", "next_tube_mass",
		"wound_length_ok", "wound_length_nok", "wound_length_total",
	}
	stringKeys = []string{"operator_id", "shift_id", "of_en_cours", "of_decoupe"}
)

// Encode renders the whole session as its wire object.
func Encode(s Snapshot) (json.RawMessage, error) {
	return EncodeAreas(s, Areas...)
}

// EncodeAreas renders only the keys of the given areas, plus the schema version:
// the body of a partial PATCH.
func EncodeAreas(s Snapshot, areas ...Area) (json.RawMessage, error) {
	obj := map[string]json.RawMessage{
		keySchemaVersion: json.RawMessage(strconv.Itoa(domain.SessionSchemaVersion)),
	}
	for _, a := range areas {
		if err := encodeArea(obj, s, a); err != nil {
			return nil, fmt.Errorf("encode %s: %w", a, err)
		}
	}
	return json.Marshal(obj)
}

func encodeArea(obj map[string]json.RawMessage, s Snapshot, a Area) error {
	switch a {
	case AreaRoll:
		return putKey(obj, keyRollData, s.Roll)
	case AreaQuality:
		return putKey(obj, keyQuality, s.Quality)
	case AreaShift:
		return mergeFlat(obj, s.Shift)
	case AreaOrder:
		return mergeFlat(obj, s.Order)
	case AreaLostTime:
		return mergeFlat(obj, s.LostTime)
	case AreaChecklist:
		return mergeFlat(obj, s.Checklist)
	case AreaProfile:
		return mergeFlat(obj, s.Profile)
	case AreaSummary:
		return mergeFlat(obj, s.Summary)
	case AreaProduction:
		return mergeFlat(obj, s.Production)
	default:
		return fmt.Errorf("unknown area %q", a)
	}
}

func putKey(obj map[string]json.RawMessage, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	obj[key] = raw
	return nil
}

func mergeFlat(obj map[string]json.RawMessage, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}
	for k, f := range fields {
		obj[k] = f
	}
	return nil
}

// Decode reads a session object of any schema version. Missing or null keys keep
// their default; legacy names and string-typed numbers are normalized first.
func Decode(raw []byte) (Snapshot, error) {
	s := Defaults()
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return s, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return Snapshot{}, fmt.Errorf("decode session: %w", err)
	}
	Normalize(obj)

	flat, err := json.Marshal(obj)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decode session: %w", err)
	}
	targets := []any{&s.Shift, &s.Order, &s.LostTime, &s.Checklist, &s.Profile, &s.Summary, &s.Production}
	for _, t := range targets {
		if err := json.Unmarshal(flat, t); err != nil {
			return Snapshot{}, fmt.Errorf("decode session: %w", err)
		}
	}
	if v, ok := obj[keyRollData]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &s.Roll); err != nil {
			return Snapshot{}, fmt.Errorf("decode roll_data: %w", err)
		}
	}
	if v, ok := obj[keyQuality]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &s.Quality); err != nil {
			return Snapshot{}, fmt.Errorf("decode quality_control: %w", err)
		}
	}
	if v, ok := obj[keySchemaVersion]; ok {
		_ = json.Unmarshal(v, &s.SchemaVersion)
	}
	fillDefaults(&s)
	return s, nil
}

// Normalize rewrites a wire object in place: legacy keys are renamed, numeric
// strings become numbers, unparsable or empty numbers become null and a missing
// schema version is recorded as 1.
func Normalize(obj map[string]json.RawMessage) {
	for old, cur := range legacyKeys {
		v, ok := obj[old]
		if !ok {
			continue
		}
		if existing, has := obj[cur]; !has || isNull(existing) {
			obj[cur] = v
		}
		delete(obj, old)
	}
	for _, k := range intKeys {
		if v, ok := obj[k]; ok {
			obj[k] = normalizeNumber(v, true)
		}
	}
	for _, k := range floatKeys {
		if v, ok := obj[k]; ok {
			obj[k] = normalizeNumber(v, false)
		}
	}
	for _, k := range stringKeys {
		if v, ok := obj[k]; ok {
			obj[k] = normalizeString(v)
		}
	}
	if v, ok := obj["lost_time_entries"]; ok {
		obj["lost_time_entries"] = normalizeEntries(v)
	}
	if _, ok := obj[keySchemaVersion]; !ok {
		obj[keySchemaVersion] = json.RawMessage("1")
	}
}

// normalizeString turns a number into its decimal string; ids were once stored
// as integers.
func normalizeString(v json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(v)
	if len(trimmed) == 0 || isNull(trimmed) {
		return jsonNull
	}
	if trimmed[0] == '"' {
		return trimmed
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return jsonNull
	}
	out, _ := json.Marshal(n.String())
	return out
}

// normalizeEntries fixes the id and duration of stored stoppage entries.
func normalizeEntries(v json.RawMessage) json.RawMessage {
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(v, &entries); err != nil {
		return jsonNull
	}
	for _, e := range entries {
		if id, ok := e["id"]; ok {
			e["id"] = normalizeString(id)
		}
		if d, ok := e["duration"]; ok {
			e["duration"] = normalizeNumber(d, true)
		}
		if c, ok := e["created_at"]; ok && string(bytes.TrimSpace(c)) == `""` {
			delete(e, "created_at")
		}
	}
	out, err := json.Marshal(entries)
	if err != nil {
		return jsonNull
	}
	return out
}

var jsonNull = json.RawMessage("null")

func normalizeNumber(v json.RawMessage, integer bool) json.RawMessage {
	trimmed := bytes.TrimSpace(v)
	if len(trimmed) == 0 || isNull(trimmed) {
		return jsonNull
	}
	var f float64
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return jsonNull
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
		if s == "" {
			return jsonNull
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return jsonNull
		}
		f = parsed
	default:
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return jsonNull
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return jsonNull
	}
	if integer {
		return json.RawMessage(strconv.FormatInt(int64(math.Round(f)), 10))
	}
	return json.RawMessage(strconv.FormatFloat(f, 'f', -1, 64))
}

func isNull(v json.RawMessage) bool {
	return string(bytes.TrimSpace(v)) == "null"
}

// fillDefaults restores the non-nil collections a null key may have cleared.
func fillDefaults(s *Snapshot) {
	if s.Roll.Thicknesses == nil {
		s.Roll.Thicknesses = []domain.Thickness{}
	}
	if s.Roll.NokThicknesses == nil {
		s.Roll.NokThicknesses = []domain.Thickness{}
	}
	if s.Roll.Defects == nil {
		s.Roll.Defects = []domain.Defect{}
	}
	if s.LostTime.Entries == nil {
		s.LostTime.Entries = []domain.LostTimeEntry{}
	}
	if s.Checklist.Responses == nil {
		s.Checklist.Responses = map[string]string{}
	}
	if s.Profile.Modes == nil {
		s.Profile.Modes = []string{}
	}
	if s.Quality.Status == "" {
		s.Quality.Status = domain.QCPending
	}
}
