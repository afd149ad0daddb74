package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"
)

// printJSON renders v as indented JSON on stdout, optionally filtered
// through the global --jq expression first.
func printJSON(c *cli.Context, v interface{}) error {
	filter := c.String("jq")
	if filter == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	filtered, err := applyJQ(filter, v)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, item := range filtered {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

// applyJQ runs a jq expression over v and returns all produced values. v is
// round-tripped through JSON so gojq sees plain maps and slices.
func applyJQ(filter string, v interface{}) ([]interface{}, error) {
	query, err := gojq.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jq filter %q: %w", filter, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq filter %q: %w", filter, err)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	var plain interface{}
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, fmt.Errorf("failed to unmarshal value: %w", err)
	}

	var out []interface{}
	iter := code.Run(plain)
	for {
		item, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := item.(error); isErr {
			return nil, fmt.Errorf("jq filter failed: %w", err)
		}
		out = append(out, item)
	}
	return out, nil
}
