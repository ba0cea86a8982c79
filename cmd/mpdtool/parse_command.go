package main

import (
	"errors"
	"fmt"
	"mpdkit/internal/dash"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// errNoValue is returned when a value does not parse as the requested kind.
var errNoValue = errors.New("no value")

// attributeParsers maps a kind name to a parser that formats its result.
var attributeParsers = map[string]func(string) (string, bool){
	"int":              formatInt(dash.ParseInt),
	"positive-int":     formatInt(dash.ParsePositiveInt),
	"non-negative-int": formatInt(dash.ParseNonNegativeInt),
	"float":            formatFloat(dash.ParseFloat),
	"date":             formatFloat(dash.ParseDate),
	"duration":         formatFloat(dash.ParseDuration),
	"frame-rate":       formatFloat(dash.ParseFrameRate),
	"range": func(s string) (string, bool) {
		r, ok := dash.ParseRange(s)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("%d-%d", r.Start, r.End), true
	},
}

func formatInt(parse func(string) (int64, bool)) func(string) (string, bool) {
	return func(s string) (string, bool) {
		n, ok := parse(s)
		if !ok {
			return "", false
		}
		return strconv.FormatInt(n, 10), true
	}
}

func formatFloat(parse func(string) (float64, bool)) func(string) (string, bool) {
	return func(s string) (string, bool) {
		f, ok := parse(s)
		if !ok {
			return "", false
		}
		return strconv.FormatFloat(f, 'g', -1, 64), true
	}
}

func parserKinds() []string {
	kinds := make([]string, 0, len(attributeParsers))
	for k := range attributeParsers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func newParseCommand(_ *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "parse KIND VALUE",
		Short: "Parse a manifest attribute value (" + strings.Join(parserKinds(), ", ") + ")",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parse, ok := attributeParsers[args[0]]
			if !ok {
				return fmt.Errorf("unknown kind %q, expected one of: %s", args[0], strings.Join(parserKinds(), ", "))
			}
			value, ok := parse(args[1])
			if !ok {
				return fmt.Errorf("%w: %q is not a valid %s", errNoValue, args[1], args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}
