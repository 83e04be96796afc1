package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/joetechbob/cypher-guard/src/validator"
)

type jsonResult struct {
	Valid        bool     `json:"valid"`
	Errors       []string `json:"errors"`
	TypeWarnings []string `json:"type_warnings"`
	TypeErrors   []string `json:"type_errors"`
}

func toJSONResult(res validator.Result) jsonResult {
	out := jsonResult{
		Valid:        res.Valid,
		Errors:       make([]string, 0, len(res.Errors)),
		TypeWarnings: res.TypeWarnings,
		TypeErrors:   res.TypeErrors,
	}
	for _, e := range res.Errors {
		out.Errors = append(out.Errors, fmt.Sprintf("[%s] %s", e.Kind, e.Error()))
	}
	return out
}

func writeJSON(w io.Writer, res validator.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSONResult(res))
}

func writeText(w io.Writer, filename string, res validator.Result) {
	if res.Valid && len(res.TypeWarnings) == 0 && len(res.TypeErrors) == 0 {
		fmt.Fprintf(w, "%s: OK\n", filename)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer func() { _ = tw.Flush() }()

	for _, e := range res.Errors {
		fmt.Fprintf(tw, "%s\terror\t%s\t%s\n", filename, e.Kind, e.Error())
	}
	for _, msg := range res.TypeErrors {
		fmt.Fprintf(tw, "%s\ttype-error\t%s\n", filename, msg)
	}
	for _, msg := range res.TypeWarnings {
		fmt.Fprintf(tw, "%s\ttype-warning\t%s\n", filename, msg)
	}

	status := "PASS"
	if !res.Valid {
		status = "FAIL"
	}
	fmt.Fprintf(w, "%s: %s (%d error(s), %d type warning(s), %d type error(s))\n",
		filename, status, len(res.Errors), len(res.TypeWarnings), len(res.TypeErrors))
}
