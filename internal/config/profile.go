package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Profile is a loaded slicer configuration ini. Values are extracted with
// line-oriented key=value matching: first match wins, keys are matched
// case-insensitively, and everything after a '#' on the value side is
// treated as a comment.
type Profile struct {
	path    string
	content string
}

// LoadProfile reads the slicer profile at path. A missing profile is a fatal
// condition for the slicing stage, so this returns an error rather than an
// empty profile.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read slicer profile %s: %w", path, err)
	}

	return &Profile{path: path, content: string(data)}, nil
}

// ProfileFromString builds a profile from raw ini content. Used by tests and
// by the support-variant writer.
func ProfileFromString(content string) *Profile {
	return &Profile{content: content}
}

// Path returns the file the profile was loaded from, if any.
func (p *Profile) Path() string {
	return p.path
}

// lookup finds the first `key = value` line for key and returns the raw value
// with comments and surrounding quotes stripped.
func (p *Profile) lookup(key string) (string, bool) {
	pattern := regexp.MustCompile(`(?im)^[ \t]*` + regexp.QuoteMeta(key) + `[ \t]*=[ \t]*([^#\n]+)`)
	m := pattern.FindStringSubmatch(p.content)
	if m == nil {
		return "", false
	}

	value := strings.TrimSpace(m[1])
	if len(value) >= 2 {
		if (strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`)) ||
			(strings.HasPrefix(value, `'`) && strings.HasSuffix(value, `'`)) {
			value = value[1 : len(value)-1]
		}
	}

	return value, true
}

// String returns the value for key, or def when the key is absent.
func (p *Profile) String(key, def string) string {
	value, ok := p.lookup(key)
	if !ok {
		return def
	}
	return value
}

// Float returns the value for key parsed as a float, or def when the key is
// absent or not numeric.
func (p *Profile) Float(key string, def float64) float64 {
	value, ok := p.lookup(key)
	if !ok {
		return def
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return f
}

// Bool returns the value for key coerced to a boolean. Recognized true values
// are true/yes/1/on, false values are false/no/0/off; anything else returns def.
func (p *Profile) Bool(key string, def bool) bool {
	value, ok := p.lookup(key)
	if !ok {
		return def
	}

	switch strings.ToLower(value) {
	case "true", "yes", "1", "on":
		return true
	case "false", "no", "0", "off":
		return false
	default:
		return def
	}
}

var (
	supportMaterialLine = regexp.MustCompile(`(?m)^support_material[ \t]*=[ \t]*\d`)
	supportMaterialKey  = regexp.MustCompile(`(?m)^support_material[ \t]*=`)
)

// SupportVariant returns the profile content with support_material forced to
// the given state, appending the setting when the profile doesn't carry it.
func (p *Profile) SupportVariant(enabled bool) string {
	flag := "0"
	if enabled {
		flag = "1"
	}

	replaced := supportMaterialLine.ReplaceAllString(p.content, "support_material = "+flag)
	if !supportMaterialKey.MatchString(replaced) {
		replaced += "\nsupport_material = " + flag
	}

	return replaced
}

// WriteSupportVariant writes the support-forced variant of the profile to dst.
func (p *Profile) WriteSupportVariant(dst string, enabled bool) error {
	if err := os.WriteFile(dst, []byte(p.SupportVariant(enabled)), 0644); err != nil {
		return fmt.Errorf("failed to write profile variant %s: %w", dst, err)
	}
	return nil
}
