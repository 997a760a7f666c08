package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"canvass/internal/profile"
	"canvass/internal/services/ollama"
)

// Decision is the envelope the model returns each round: the fields it found
// on the current page, what it still considers missing, and where to go next.
type Decision struct {
	NewInfo      Findings
	StillMissing []string
	NextURL      string
}

// Findings groups extracted field/value pairs by profile scope.
type Findings struct {
	Agency   profile.FieldMap
	Sites    []profile.FieldMap
	Services []profile.FieldMap
	Custom   profile.FieldMap
}

// Empty reports whether the findings carry no values at all.
func (f Findings) Empty() bool {
	return len(f.Agency) == 0 && len(f.Sites) == 0 && len(f.Services) == 0 && len(f.Custom) == 0
}

// ParseDecision decodes a model reply, tolerating code fences and prose
// around the JSON body.
func ParseDecision(content string) (Decision, error) {
	var decision Decision
	if err := ollama.DecodeModelJSON(content, &decision); err != nil {
		return Decision{}, err
	}
	return decision, nil
}

func (d *Decision) UnmarshalJSON(data []byte) error {
	var raw struct {
		NewInfo      Findings   `json:"new_info"`
		StillMissing rawList    `json:"still_missing"`
		NextURL      flexString `json:"next_url"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.NewInfo = raw.NewInfo
	d.StillMissing = raw.StillMissing.strings()
	d.NextURL = strings.TrimSpace(string(raw.NextURL))
	return nil
}

func (f *Findings) UnmarshalJSON(data []byte) error {
	var raw struct {
		Agency   flexEntry       `json:"agency"`
		Sites    json.RawMessage `json:"sites"`
		Services json.RawMessage `json:"services"`
		Custom   flexEntry       `json:"custom"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	sites, err := decodeEntryList(raw.Sites)
	if err != nil {
		return fmt.Errorf("sites: %w", err)
	}
	services, err := decodeEntryList(raw.Services)
	if err != nil {
		return fmt.Errorf("services: %w", err)
	}
	f.Agency = raw.Agency.fieldMap()
	f.Sites = sites
	f.Services = services
	f.Custom = raw.Custom.fieldMap()
	return nil
}

// decodeEntryList accepts either a JSON array of objects or a bare object;
// smaller models frequently emit the latter for single-site agencies.
func decodeEntryList(data json.RawMessage) ([]profile.FieldMap, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "{") {
		var single flexEntry
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, err
		}
		if entry := single.fieldMap(); entry != nil {
			return []profile.FieldMap{entry}, nil
		}
		return nil, nil
	}
	var list []flexEntry
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	entries := make([]profile.FieldMap, 0, len(list))
	for _, item := range list {
		if entry := item.fieldMap(); entry != nil {
			entries = append(entries, entry)
		}
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return entries, nil
}

// flexString absorbs the scalar shapes models produce for field values.
// Arrays of strings join with "; ", numbers and booleans format verbatim,
// objects and null collapse to empty.
type flexString string

func (v *flexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*v = ""
		return nil
	}
	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*v = flexString(text)
	case '[':
		var parts []flexString
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		joined := make([]string, 0, len(parts))
		for _, part := range parts {
			if text := strings.TrimSpace(string(part)); text != "" {
				joined = append(joined, text)
			}
		}
		*v = flexString(strings.Join(joined, "; "))
	case '{':
		*v = ""
	default:
		var value any
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*v = flexString(fmt.Sprint(value))
	}
	return nil
}

type flexEntry map[string]flexString

func (e flexEntry) fieldMap() profile.FieldMap {
	if len(e) == 0 {
		return nil
	}
	out := make(profile.FieldMap, len(e))
	for key, value := range e {
		text := strings.TrimSpace(string(value))
		if text == "" {
			continue
		}
		if label := strings.TrimSpace(key); label != "" {
			out[label] = text
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// rawList accepts a JSON array of strings or a bare string.
type rawList []flexString

func (l *rawList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*l = nil
		return nil
	}
	if !strings.HasPrefix(trimmed, "[") {
		var single flexString
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*l = rawList{single}
		return nil
	}
	var items []flexString
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = rawList(items)
	return nil
}

func (l rawList) strings() []string {
	out := make([]string, 0, len(l))
	for _, item := range l {
		if text := strings.TrimSpace(string(item)); text != "" {
			out = append(out, text)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
