// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Sidecar file names, in lookup order.
const (
	descriptorJSON = "metadata.json"
	descriptorYAML = "metadata.yaml"
)

// descriptor is the bibliographic metadata the crawler may leave next to a
// fetched PDF. Fields with an unexpected type are ignored; a document that
// does not parse at all is an error.
type descriptor struct {
	DOI     *string
	Title   *string
	Authors *string
	Journal *string
	Year    *int

	Abstract string

	// CommercialUseAllowed is nil unless the sidecar states it.
	CommercialUseAllowed *bool
}

// readDescriptor loads the sidecar from dir. It returns nil, nil when
// neither metadata.json nor metadata.yaml exists.
func readDescriptor(dir string) (*descriptor, error) {
	raw, err := loadSidecar(dir)
	if err != nil || raw == nil {
		return nil, err
	}
	return descriptorFromMap(raw), nil
}

func loadSidecar(dir string) (map[string]any, error) {
	data, err := os.ReadFile(filepath.Join(dir, descriptorJSON))
	if err == nil {
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", descriptorJSON, err)
		}
		return nonNil(raw), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", descriptorJSON, err)
	}

	data, err = os.ReadFile(filepath.Join(dir, descriptorYAML))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", descriptorYAML, err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", descriptorYAML, err)
	}
	return nonNil(raw), nil
}

// nonNil maps an empty document ("null" or blank) to an empty descriptor.
func nonNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func descriptorFromMap(m map[string]any) *descriptor {
	d := &descriptor{
		DOI:     stringField(m["doi"]),
		Title:   stringField(m["title"]),
		Authors: authorsField(m["authors"]),
		Journal: stringField(m["journal"]),
		Year:    yearField(m["year"]),
	}
	if s := stringField(m["abstract"]); s != nil {
		d.Abstract = *s
	}
	if b, ok := m["commercial_use_allowed"].(bool); ok {
		d.CommercialUseAllowed = &b
	}
	return d
}

func stringField(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// authorsField accepts a single string or a list of names joined with ", ".
func authorsField(v any) *string {
	list, ok := v.([]any)
	if !ok {
		return stringField(v)
	}
	names := make([]string, 0, len(list))
	for _, item := range list {
		if s := stringField(item); s != nil {
			names = append(names, *s)
		}
	}
	if len(names) == 0 {
		return nil
	}
	joined := strings.Join(names, ", ")
	return &joined
}

// yearField accepts an integer or a numeric string.
func yearField(v any) *int {
	var n int
	switch y := v.(type) {
	case int:
		n = y
	case int64:
		n = int(y)
	case uint64:
		n = int(y)
	case float64:
		if y != float64(int(y)) {
			return nil
		}
		n = int(y)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(y))
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if n <= 0 {
		return nil
	}
	return &n
}
