package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

var rule = strings.Repeat("=", 60)

// Write renders r as "text" or "json".
func Write(w io.Writer, r Report, format string) error {
	switch format {
	case "", "text":
		return WriteText(w, r)
	case "json":
		return WriteJSON(w, r)
	default:
		return fmt.Errorf("unknown output format %q (expected text or json)", format)
	}
}

// WriteText prints the console report.
func WriteText(w io.Writer, r Report) error {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "AUTHENTICATION DEBUG")
	fmt.Fprintln(w, rule)

	fmt.Fprintf(w, "\n1. .env file exists: %v\n", r.EnvFile.Exists)
	fmt.Fprintf(w, "   Path: %s\n", r.EnvFile.Path)
	if r.EnvFile.Exists {
		keys := "(none)"
		if len(r.EnvFile.Keys) > 0 {
			keys = strings.Join(r.EnvFile.Keys, ", ")
		}
		fmt.Fprintf(w, "   Keys: %s\n", keys)
	}

	fmt.Fprintln(w, "\n2. Settings:")
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"NAME", "SET", "LENGTH", "VALUE", "SOURCE", "DETAIL"})
	for _, s := range r.Settings {
		length := ""
		if s.Set {
			length = strconv.Itoa(s.Length)
		}
		t.AppendRow(table.Row{s.Name, s.Set, length, s.Preview, s.Source, s.Detail})
	}
	t.Render()

	for _, s := range r.Settings {
		if s.Name == "SECRET_KEY" && !s.Set {
			fmt.Fprintln(w, "   SECRET_KEY is NOT SET in environment!")
		}
	}

	fmt.Fprintln(w, "\n3. Token round trip:")
	switch {
	case !r.Token.Attempted:
		fmt.Fprintln(w, "   skipped (no SECRET_KEY)")
	case r.Token.OK:
		fmt.Fprintf(w, "   ok (HS256, expires in %s)\n", r.Token.ExpiresIn)
	default:
		fmt.Fprintf(w, "   failed: %s\n", r.Token.Error)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "RECOMMENDATION:")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, r.Recommendation.Headline)
	for _, hint := range r.Recommendation.Hints {
		fmt.Fprintf(w, "   %s\n", hint)
	}
	for _, warning := range r.Recommendation.Warnings {
		fmt.Fprintf(w, "WARNING: %s\n", warning)
	}
	fmt.Fprintln(w, rule)
	return nil
}

// WriteJSON prints the report as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
