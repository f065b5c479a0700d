package ship

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/example/shiptracker/internal/apperr"
)

const (
	// MaxDamage is the upper bound of the damage scale.
	MaxDamage = 5
	// MaxNameLength bounds ship names after trimming.
	MaxNameLength = 64
	// MaxTextLength bounds free-text fields.
	MaxTextLength = 1000
)

// Status is the flat ship status enumeration. Any status may move to any other.
type Status string

const (
	StatusParked    Status = "Parked"
	StatusDeployed  Status = "Deployed"
	StatusRepairing Status = "Repairing"
	StatusDead      Status = "Dead"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusParked, StatusDeployed, StatusRepairing, StatusDead}

// ParseStatus matches s case-insensitively against the enumeration.
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// Field names a settable ship column.
type Field string

const (
	FieldType           Field = "type"
	FieldName           Field = "name"
	FieldStatus         Field = "status"
	FieldDamage         Field = "damage"
	FieldLocation       Field = "location"
	FieldHomePort       Field = "home_port"
	FieldNotes          Field = "notes"
	FieldKeys           Field = "keys"
	FieldImageURL       Field = "image_url"
	FieldRegiment       Field = "regiment"
	FieldShareCode      Field = "share_code"
	FieldSquadLockUntil Field = "squad_lock_until"
	FieldLinkRootID     Field = "link_root_id"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindName
	kindStatus
	kindDamage
	kindURL
	kindShareCode
	kindUnixTime
)

type fieldSpec struct {
	kind    fieldKind
	maxLen  int
	perCopy bool
}

var fieldSpecs = map[Field]fieldSpec{
	FieldType:           {kind: kindText, maxLen: MaxNameLength},
	FieldName:           {kind: kindName},
	FieldStatus:         {kind: kindStatus},
	FieldDamage:         {kind: kindDamage},
	FieldLocation:       {kind: kindText, maxLen: MaxTextLength},
	FieldHomePort:       {kind: kindText, maxLen: MaxTextLength},
	FieldNotes:          {kind: kindText, maxLen: MaxTextLength},
	FieldKeys:           {kind: kindText, maxLen: MaxTextLength},
	FieldImageURL:       {kind: kindURL},
	FieldRegiment:       {kind: kindText, maxLen: MaxNameLength},
	FieldShareCode:      {kind: kindShareCode, perCopy: true},
	FieldSquadLockUntil: {kind: kindUnixTime},
}

// scopeFields are fixed at creation.
var scopeFields = map[string]bool{"guild_id": true, "war_id": true}

// ShareCodePattern matches one-time share codes.
var ShareCodePattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

// Value is a normalized field value ready for storage.
// Stored is a string, an int64, or nil for a cleared optional field.
type Value struct {
	Field  Field
	Stored any
}

// Display renders the value the way audit rows record it.
func (v Value) Display() string {
	switch s := v.Stored.(type) {
	case nil:
		return ""
	case string:
		return s
	case int64:
		return strconv.FormatInt(s, 10)
	}
	return ""
}

// PerCopy reports whether the field stays on one ship instead of
// propagating through its link group.
func (f Field) PerCopy() bool {
	return f == FieldLinkRootID || fieldSpecs[f].perCopy
}

// LookupField resolves a field name supplied by a caller.
// Rules:
// - guild_id and war_id are immutable scope
// - only registered fields may be set
func LookupField(name string) (Field, GuardResult) {
	name = strings.ToLower(strings.TrimSpace(name))
	if scopeFields[name] {
		return "", deny(apperr.ImmutableScope, "field %q is fixed at creation and cannot be changed", name)
	}
	f := Field(name)
	if _, ok := fieldSpecs[f]; !ok {
		return "", deny(apperr.Validation, "unknown or read-only field %q", name)
	}
	return f, allow()
}

// Normalize validates raw input for field f and converts it to its stored form.
func Normalize(f Field, raw string) (Value, GuardResult) {
	spec, ok := fieldSpecs[f]
	if !ok {
		return Value{}, deny(apperr.Validation, "unknown or read-only field %q", f)
	}
	raw = strings.TrimSpace(raw)
	if !utf8.ValidString(raw) {
		return Value{}, deny(apperr.Validation, "%s is not valid UTF-8", f)
	}

	switch spec.kind {
	case kindName:
		name, res := NormalizeName(raw)
		return Value{Field: f, Stored: name}, res

	case kindStatus:
		st, ok := ParseStatus(raw)
		if !ok {
			return Value{}, deny(apperr.Validation, "invalid status %q (expected one of %s)", raw, statusList())
		}
		return Value{Field: f, Stored: string(st)}, allow()

	case kindDamage:
		if raw == "" {
			return Value{Field: f, Stored: int64(0)}, allow()
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, deny(apperr.Validation, "damage must be a whole number, got %q", raw)
		}
		return Value{Field: f, Stored: ClampDamage(n)}, allow()

	case kindURL:
		if raw == "" {
			return Value{Field: f}, allow()
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return Value{}, deny(apperr.Validation, "invalid URL %q", raw)
		}
		return Value{Field: f, Stored: raw}, allow()

	case kindShareCode:
		if raw == "" {
			return Value{Field: f}, allow()
		}
		if !ShareCodePattern.MatchString(raw) {
			return Value{}, deny(apperr.Validation, "invalid share code %q", raw)
		}
		return Value{Field: f, Stored: raw}, allow()

	case kindUnixTime:
		if raw == "" {
			return Value{Field: f, Stored: int64(0)}, allow()
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return Value{}, deny(apperr.Validation, "%s must be a non-negative unix time, got %q", f, raw)
		}
		return Value{Field: f, Stored: n}, allow()
	}

	if res := CheckLength(string(f), raw, spec.maxLen); !res.Allowed {
		return Value{}, res
	}
	if raw == "" {
		return Value{Field: f}, allow()
	}
	return Value{Field: f, Stored: raw}, allow()
}

// NormalizeName trims a ship name and checks its length.
func NormalizeName(raw string) (string, GuardResult) {
	name := strings.TrimSpace(raw)
	if !utf8.ValidString(name) {
		return "", deny(apperr.Validation, "ship name is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(name); n < 1 || n > MaxNameLength {
		return "", deny(apperr.Validation, "ship name must be 1-%d characters", MaxNameLength)
	}
	return name, allow()
}

// CheckLength rejects invalid UTF-8 and text longer than limit characters.
func CheckLength(what, text string, limit int) GuardResult {
	if !utf8.ValidString(text) {
		return deny(apperr.Validation, "%s is not valid UTF-8", what)
	}
	if utf8.RuneCountInString(text) > limit {
		return deny(apperr.Validation, "%s is too long (max %d characters)", what, limit)
	}
	return allow()
}

// ClampDamage bounds n to [0, MaxDamage].
func ClampDamage(n int64) int64 {
	if n < 0 {
		return 0
	}
	if n > MaxDamage {
		return MaxDamage
	}
	return n
}

func statusList() string {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
