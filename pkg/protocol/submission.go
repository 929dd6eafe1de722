package protocol

import (
	"encoding/json"
	"strings"
)

// FlexString tolerates JSON strings and numbers for free-text fields the
// inspection app sends inconsistently (mileage, damage size).
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// RequiredPhoto is one entry of the mandatory photo checklist.
type RequiredPhoto struct {
	Title   string `json:"title"`
	DataURL string `json:"dataUrl"`
}

// ChecklistItem is one inspected area of the exterior or interior walkaround.
type ChecklistItem struct {
	Area    string   `json:"area"`
	Status  string   `json:"status"`
	Comment string   `json:"comment"`
	Photos  []string `json:"photos"`
}

// DamageEntry documents one damage with optional photos. Size is in cm.
type DamageEntry struct {
	Area   string     `json:"area"`
	Desc   string     `json:"desc"`
	Size   FlexString `json:"size"`
	Photos []string   `json:"photos"`
}

// Submission is the inbound inspection record. It is treated as immutable
// after decoding; the redacted metadata and the rendered report are derived
// values, the submission itself is never modified.
//
// Unknown top-level fields are kept in Extra so new form fields survive the
// protokoll.json snapshot without a code change.
type Submission struct {
	Plate         string     `json:"plate"`
	Date          string     `json:"date"`
	Time          string     `json:"time"`
	Process       string     `json:"process"`
	Employee      string     `json:"employee"`
	Customer      string     `json:"customer"`
	CustomerEmail string     `json:"customerEmail"`
	Model         string     `json:"model"`
	Mileage       FlexString `json:"mileage"`
	Location      string     `json:"location"`

	Photos     []RequiredPhoto   `json:"photos"`
	Exterior   []ChecklistItem   `json:"exterior"`
	Interior   []ChecklistItem   `json:"interior"`
	Damage     []DamageEntry     `json:"damage"`
	Signatures map[string]string `json:"signatures"`

	// Extra holds unrecognized top-level fields verbatim.
	Extra map[string]json.RawMessage `json:"-"`

	// raw is the full set of top-level fields as submitted, used by the
	// metadata redactor to pass fields through byte-for-byte.
	raw map[string]json.RawMessage
}

// knownFields are the top-level keys decoded into typed Submission fields.
var knownFields = map[string]bool{
	"plate": true, "date": true, "time": true,
	"process": true, "employee": true, "customer": true, "customerEmail": true,
	"model": true, "mileage": true, "location": true,
	"photos": true, "exterior": true, "interior": true, "damage": true,
	"signatures": true,
}

func (s *Submission) UnmarshalJSON(data []byte) error {
	type plain Submission
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Submission(p)
	s.raw = raw
	for k, v := range raw {
		if !knownFields[k] {
			if s.Extra == nil {
				s.Extra = make(map[string]json.RawMessage)
			}
			s.Extra[k] = v
		}
	}
	return nil
}
