package client

import (
	"fmt"
	"strings"

	"github.com/chirpd-io/chirp/pkg/chirp"
)

// commaJoinedKeys are the POST fields whose slice values collapse to a
// comma-separated string. GET arguments flatten unconditionally.
var commaJoinedKeys = map[string]bool{
	"id":          true,
	"media_ids":   true,
	"screen_name": true,
	"user_id":     true,
}

// NormalizeArgs resolves a positional call into the canonical named
// argument bag.
//
// required lists the endpoint's required parameter names in order; the
// leading name may be the identifier sentinel (chirp.IDSentinel), which
// accepts either a numeric user ID or a screen name. values are consumed
// left to right, stopping at a trailing bag (chirp.Args or map), which is
// then merged. A required name satisfied neither positionally nor by the
// bag fails with ErrMissingArgument; a key supplied both ways fails with
// ErrConflictingArgument.
func NormalizeArgs(required []string, values []any) (chirp.Args, error) {
	positional, bag, err := splitArgs(values)
	if err != nil {
		return nil, err
	}

	out := chirp.Args{}
	claimed := map[string]bool{}

	names := required
	cursor := 0

	var identifier any

	identifierWanted := len(names) > 0 && names[0] == chirp.IDSentinel
	identifierCaptured := false

	if identifierWanted {
		names = names[1:]

		if cursor < len(positional) {
			identifier = positional[cursor]
			identifierCaptured = true
			cursor++
		}
	}

	for _, name := range names {
		if cursor < len(positional) {
			out[name] = positional[cursor]
			claimed[name] = true
			cursor++

			continue
		}

		if _, ok := bag[name]; !ok {
			return nil, fmt.Errorf("%w: %s", chirp.ErrMissingArgument, name)
		}
	}

	if cursor < len(positional) {
		return nil, fmt.Errorf("%w: %d positional values for %d required parameters",
			chirp.ErrConflictingArgument, len(positional), len(required))
	}

	if identifierWanted {
		if identifierCaptured {
			key, value := classifyIdentifier(identifier)
			out[key] = value
			claimed[key] = true
		} else if _, ok := bag["screen_name"]; !ok {
			if _, ok := bag["user_id"]; !ok {
				return nil, fmt.Errorf("%w: screen_name or user_id", chirp.ErrMissingArgument)
			}
		}
	}

	for key, value := range bag {
		if claimed[key] {
			return nil, fmt.Errorf("%w: %s supplied both positionally and by name", chirp.ErrConflictingArgument, key)
		}

		out[key] = value
	}

	return out, nil
}

// splitArgs separates leading positional values from the trailing named
// bag. Values after the bag have no parameter to land in.
func splitArgs(values []any) ([]any, chirp.Args, error) {
	for i, v := range values {
		bag := asArgs(v)
		if bag == nil {
			continue
		}

		if i != len(values)-1 {
			return nil, nil, fmt.Errorf("%w: positional values after the named argument bag", chirp.ErrConflictingArgument)
		}

		return values[:i], bag, nil
	}

	return values, nil, nil
}

func asArgs(v any) chirp.Args {
	switch m := v.(type) {
	case chirp.Args:
		return m
	case map[string]any:
		return chirp.Args(m)
	default:
		return nil
	}
}

// classifyIdentifier names an identifier sentinel value: numbers and
// all-digit strings are user IDs, anything else is a screen name.
func classifyIdentifier(v any) (string, any) {
	switch id := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return "user_id", id
	case string:
		if isDigits(id) {
			return "user_id", id
		}

		return "screen_name", id
	default:
		return "screen_name", v
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// ExtractOptions moves sigil-prefixed keys out of the argument bag into the
// per-call options map, sigil stripped. Runs before URL templating so
// reserved keys never reach the URL, query, or body.
func ExtractOptions(args chirp.Args) (chirp.Args, chirp.Options) {
	options := chirp.Options{}

	for key, value := range args {
		if !strings.HasPrefix(key, chirp.OptionSigil) {
			continue
		}

		options[strings.TrimPrefix(key, chirp.OptionSigil)] = value
		delete(args, key)
	}

	return args, options
}
