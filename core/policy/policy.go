// Package policy loads a course run's policy overlay and resolves effective
// settings for content nodes. The overlay maps "<category>/<identifier>" keys
// to setting dictionaries; a fixed subset of settings is inheritable and is
// resolved by climbing the node's ancestor chain.
package policy

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

var (
	// ErrNoSemester indicates the overlay lacks a "course/<term>" key.
	ErrNoSemester = errors.New("policy has no course/<term> key")
)

// Policy holds one course run's policy overlay plus the optional grading
// policy found beside it.
type Policy struct {
	Path          string
	Overrides     map[string]map[string]string
	GradingPolicy map[string]any
}

// Load reads a policy.json file and, when present, the grading_policy.json
// in the same directory. Overlay values are normalized to strings: JSON
// scalars directly, compound values as their JSON encoding.
func Load(path string, logger *slog.Logger) (*Policy, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy %s: %w", path, err)
	}
	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse policy %s: %w", path, err)
	}

	p := &Policy{
		Path:      path,
		Overrides: make(map[string]map[string]string, len(raw)),
	}
	for key, settings := range raw {
		normalized := make(map[string]string, len(settings))
		for name, value := range settings {
			normalized[name] = normalizeValue(value)
		}
		p.Overrides[key] = normalized
	}

	gfn := filepath.Join(filepath.Dir(path), "grading_policy.json")
	if gdata, err := os.ReadFile(gfn); err == nil {
		if err := json.Unmarshal(gdata, &p.GradingPolicy); err != nil {
			logger.Error("malformed grading policy", "path", gfn, "error", err)
		}
	}
	logger.Info("loaded policy file", "path", path, "keys", len(p.Overrides))
	return p, nil
}

// Semester returns the run identifier from the distinguished "course/<term>"
// overlay key.
func (p *Policy) Semester() (string, error) {
	for key := range p.Overrides {
		if len(key) > len("course/") && key[:len("course/")] == "course/" {
			return key[len("course/"):], nil
		}
	}
	return "", ErrNoSemester
}

// normalizeValue renders a JSON value as the string form the walker compares
// against: scalars verbatim (booleans as "true"/"false", numbers trimmed),
// null as "null", compounds as compact JSON.
func normalizeValue(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return string(raw)
	}
}
