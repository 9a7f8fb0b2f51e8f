package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"sepnet/internal/dataset"
	"sepnet/pkg/sepnet"
)

// loadRunRequestFromConfig reads the dataset and trainer settings from a JSON
// config file. Flags parsed afterwards override whatever the file sets.
func loadRunRequestFromConfig(path string) (sepnet.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sepnet.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return sepnet.RunRequest{}, err
	}

	var req sepnet.RunRequest
	if v, ok := asStringSlice(raw["features"]); ok {
		req.Data.FeatureNames = v
	}
	if v, ok := asString(raw["diagnostic"]); ok {
		req.Data.DiagnosticName = v
	}
	if v, ok := asFloat64(raw["diagnostic_center"]); ok {
		req.Data.DiagnosticCenter = v
	}
	if v, ok := asFloat64(raw["diagnostic_half_width"]); ok {
		req.Data.DiagnosticHalfWidth = v
	}
	if v, ok := asFloat64(raw["split_fraction"]); ok {
		req.Data.SplitFraction = v
	}
	if v, ok := asInt(raw["readers"]); ok {
		req.Data.Readers = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
		req.Data.Seed = v
	}
	if v, ok := asInt(raw["depth"]); ok {
		req.Depth = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}

	sources, ok := raw["sources"].([]any)
	if !ok {
		return sepnet.RunRequest{}, errors.New("config requires a sources list")
	}
	for i, entry := range sources {
		m, ok := entry.(map[string]any)
		if !ok {
			return sepnet.RunRequest{}, fmt.Errorf("source %d is not an object", i)
		}
		src := dataset.Source{}
		if v, ok := asString(m["path"]); ok {
			src.Path = v
		}
		if v, ok := asBool(m["signal"]); ok {
			src.Signal = v
		}
		if src.Path == "" {
			return sepnet.RunRequest{}, fmt.Errorf("source %d is missing a path", i)
		}
		req.Data.Sources = append(req.Data.Sources, src)
	}

	return req, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asStringSlice(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
