package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// YAML is a kong.ConfigurationLoader. Top level keys are flag names, and
// underscores may be used in place of dashes:
//
//	listen-addr: localhost:9020
//	max_concurrent: 2
//	timeout: 5m
func YAML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML configuration: %w", err)
	}
	var f kong.ResolverFunc = func(context *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		for _, key := range []string{flag.Name, strings.ReplaceAll(flag.Name, "-", "_")} {
			if v, ok := values[key]; ok && v != nil {
				return configValue(v), nil
			}
		}
		return nil, nil
	}
	return f, nil
}

// configValue converts YAML values to strings, which every kong mapper accepts.
func configValue(v any) any {
	switch v := v.(type) {
	case []any:
		s := make([]string, len(v))
		for i := range v {
			s[i] = fmt.Sprint(v[i])
		}
		return strings.Join(s, ",")
	default:
		return fmt.Sprint(v)
	}
}
