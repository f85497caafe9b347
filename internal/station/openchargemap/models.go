package openchargemap

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// The directory's POI documents are loosely typed: numbers arrive as strings,
// lookup objects arrive as null, dates come with or without a zone. Every leaf
// below decodes without ever returning an error, so one odd field turns into
// "unknown" instead of dropping the station or the whole batch.

var nullLiteral = []byte("null")

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), nullLiteral)
}

func isObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}

// optString is a string that may be absent. Blank strings count as absent and
// bare numbers are kept as their literal text.
type optString struct{ v *string }

func (o *optString) UnmarshalJSON(data []byte) error {
	o.v = nil
	if isNull(data) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s = strings.TrimSpace(s); s != "" {
			o.v = &s
		}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		text := n.String()
		o.v = &text
	}
	return nil
}

// optFloat accepts a JSON number or a numeric string.
type optFloat struct{ v *float64 }

func (o *optFloat) UnmarshalJSON(data []byte) error {
	o.v = nil
	if isNull(data) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		f = parsed
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	o.v = &f
	return nil
}

// optInt accepts an integral JSON number or a numeric string.
type optInt struct{ v *int }

func (o *optInt) UnmarshalJSON(data []byte) error {
	o.v = nil

	var f optFloat
	_ = f.UnmarshalJSON(data)
	if f.v == nil {
		return nil
	}
	if *f.v != math.Trunc(*f.v) || math.Abs(*f.v) > math.MaxInt32 {
		return nil
	}
	n := int(*f.v)
	o.v = &n
	return nil
}

// optBool accepts a JSON boolean or a string strconv.ParseBool understands.
type optBool struct{ v *bool }

func (o *optBool) UnmarshalJSON(data []byte) error {
	o.v = nil
	if isNull(data) {
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		o.v = &b
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			o.v = &parsed
		}
	}
	return nil
}

// timeLayouts are tried in order. Timestamps without a zone are taken as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// optTime accepts the timestamp shapes the directory has been seen to emit.
type optTime struct{ v *time.Time }

func (o *optTime) UnmarshalJSON(data []byte) error {
	o.v = nil

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			o.v = &t
			return nil
		}
	}
	return nil
}

// titled is one of the directory's reference-data lookups, e.g. StatusType.
// Anything other than an object leaves it empty.
type titled struct {
	Title optString `json:"Title"`
}

func (t *titled) UnmarshalJSON(data []byte) error {
	*t = titled{}
	if !isObject(data) {
		return nil
	}
	type plain titled
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return nil
	}
	*t = titled(p)
	return nil
}

type usageType struct {
	Title                optString `json:"Title"`
	IsMembershipRequired optBool   `json:"IsMembershipRequired"`
}

func (u *usageType) UnmarshalJSON(data []byte) error {
	*u = usageType{}
	if !isObject(data) {
		return nil
	}
	type plain usageType
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return nil
	}
	*u = usageType(p)
	return nil
}

type addressInfo struct {
	Title             optString `json:"Title"`
	AddressLine1      optString `json:"AddressLine1"`
	Town              optString `json:"Town"`
	StateOrProvince   optString `json:"StateOrProvince"`
	Postcode          optString `json:"Postcode"`
	Country           titled    `json:"Country"`
	Latitude          optFloat  `json:"Latitude"`
	Longitude         optFloat  `json:"Longitude"`
	Distance          optFloat  `json:"Distance"`
	ContactTelephone1 optString `json:"ContactTelephone1"`
	ContactEmail      optString `json:"ContactEmail"`
	RelatedURL        optString `json:"RelatedURL"`
}

func (a *addressInfo) UnmarshalJSON(data []byte) error {
	*a = addressInfo{}
	if !isObject(data) {
		return nil
	}
	type plain addressInfo
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return nil
	}
	*a = addressInfo(p)
	return nil
}

type connectionInfo struct {
	ConnectionType titled   `json:"ConnectionType"`
	Level          titled   `json:"Level"`
	CurrentType    titled   `json:"CurrentType"`
	StatusType     titled   `json:"StatusType"`
	PowerKW        optFloat `json:"PowerKW"`
	Quantity       optInt   `json:"Quantity"`
	Amps           optInt   `json:"Amps"`
	Voltage        optInt   `json:"Voltage"`
}

// lenientList decodes an array element by element, dropping elements that do
// not decode. A non-array value yields an empty list.
type lenientList[T any] []T

func (l *lenientList[T]) UnmarshalJSON(data []byte) error {
	*l = nil

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	out := make(lenientList[T], 0, len(raw))
	for _, elem := range raw {
		if !isObject(elem) {
			continue
		}
		var v T
		if err := json.Unmarshal(elem, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	*l = out
	return nil
}

// poi is one element of the /poi response array.
type poi struct {
	ID               optInt                      `json:"ID"`
	UUID             optString                   `json:"UUID"`
	UsageType        usageType                   `json:"UsageType"`
	OperatorInfo     titled                      `json:"OperatorInfo"`
	StatusType       titled                      `json:"StatusType"`
	SubmissionStatus titled                      `json:"SubmissionStatus"`
	NumberOfPoints   optInt                      `json:"NumberOfPoints"`
	UsageCost        optString                   `json:"UsageCost"`
	GeneralComments  optString                   `json:"GeneralComments"`
	DateCreated      optTime                     `json:"DateCreated"`
	DateLastVerified optTime                     `json:"DateLastVerified"`
	AddressInfo      addressInfo                 `json:"AddressInfo"`
	Connections      lenientList[connectionInfo] `json:"Connections"`
}
