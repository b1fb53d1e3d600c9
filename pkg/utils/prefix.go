package utils

import (
	"encoding/json"
	"errors"
	"os"
	"strings"

	"flightspotter-service/pkg/logger"
)

// UnknownCountry is returned when no registration prefix matches.
const UnknownCountry = "Unknown"

// PrefixResolver maps aircraft registration prefixes to countries and ISO2
// country codes using longest-prefix-match. Registration prefixes are
// hierarchical, so a longer match always denotes the more specific authority.
type PrefixResolver struct {
	countries map[string]string // normalized prefix -> country name
	codes     map[string]string // normalized prefix -> ISO2 code
}

// prefixEntry is the structured value shape of the reference file. The plain
// string shape (prefix -> country name) is also accepted.
type prefixEntry struct {
	Country string `json:"country"`
	Code    string `json:"code"`
}

// NewPrefixResolver creates an empty resolver. Every lookup degrades to
// UnknownCountry / absent code.
func NewPrefixResolver() *PrefixResolver {
	return &PrefixResolver{
		countries: make(map[string]string),
		codes:     make(map[string]string),
	}
}

// LoadPrefixData loads the registration prefix reference file. A missing or
// unparseable file is not fatal: geography resolution degrades to empty maps
// and a warning is logged.
func LoadPrefixData(path string, log logger.Logger) *PrefixResolver {
	resolver := NewPrefixResolver()

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Prefix reference data unavailable, geography resolution degraded", "path", path, "error", err)
		return resolver
	}

	if err := resolver.parse(data); err != nil {
		log.Warn("Prefix reference data unparseable, geography resolution degraded", "path", path, "error", err)
		return NewPrefixResolver()
	}

	log.Info("Loaded prefix reference data", "path", path, "prefixes", len(resolver.countries))
	return resolver
}

// parse decodes the reference object token by token so document order is
// preserved: the first occurrence of a normalized prefix wins, later
// duplicates are dropped.
func (r *PrefixResolver) parse(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))

	// Opening brace of the top-level object
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("prefix reference data is not a JSON object")
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		rawKey, ok := keyTok.(string)
		if !ok {
			return errors.New("unexpected token in prefix reference data")
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}

		key := NormalizePrefix(rawKey)
		if key == "" {
			continue
		}
		if _, exists := r.countries[key]; exists {
			continue
		}

		// Value is either a bare country name or a {country, code} pair
		var country string
		if err := json.Unmarshal(value, &country); err == nil {
			if country != "" {
				r.countries[key] = country
			}
			continue
		}

		var entry prefixEntry
		if err := json.Unmarshal(value, &entry); err != nil {
			return err
		}
		if entry.Country == "" {
			continue
		}
		r.countries[key] = entry.Country
		if entry.Code != "" {
			r.codes[key] = entry.Code
		}
	}

	return nil
}

// NormalizePrefix uppercases a prefix or registration and strips hyphens and
// spaces, the separators national registries format with.
func NormalizePrefix(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "")
	return strings.ReplaceAll(s, " ", "")
}

// ResolveCountry returns the country for a registration, trying prefixes of
// length 3, 2 then 1 so that the longest match wins. Returns UnknownCountry
// when nothing matches or the registration is empty.
func (r *PrefixResolver) ResolveCountry(registration string) string {
	key := r.matchPrefix(registration, r.countries)
	if key == "" {
		return UnknownCountry
	}
	return r.countries[key]
}

// ResolveCode returns the ISO2 code for a registration via the same
// longest-prefix-match, with ok=false when nothing matches.
func (r *PrefixResolver) ResolveCode(registration string) (string, bool) {
	key := r.matchPrefix(registration, r.codes)
	if key == "" {
		return "", false
	}
	return r.codes[key], true
}

// ResolveCodeFromCountryName reverse-looks-up the code for an exact
// case-insensitive country name. Linear in the map size, which is small and
// static.
func (r *PrefixResolver) ResolveCodeFromCountryName(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	for prefix, country := range r.countries {
		if strings.EqualFold(country, name) {
			if code, ok := r.codes[prefix]; ok {
				return code, true
			}
		}
	}
	return "", false
}

func (r *PrefixResolver) matchPrefix(registration string, m map[string]string) string {
	normalized := NormalizePrefix(registration)
	if normalized == "" {
		return ""
	}
	for _, length := range []int{3, 2, 1} {
		if len(normalized) < length {
			continue
		}
		candidate := normalized[:length]
		if _, ok := m[candidate]; ok {
			return candidate
		}
	}
	return ""
}
