package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joetechbob/cypher-guard/src/extractor"
	"github.com/joetechbob/cypher-guard/src/parser"
	"github.com/joetechbob/cypher-guard/src/schema"
	"github.com/joetechbob/cypher-guard/src/telemetry"
	"github.com/joetechbob/cypher-guard/src/types"
	"github.com/joetechbob/cypher-guard/src/validator"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "lint":
		err = lintCommand(args)
	case "inspect":
		err = inspectCommand(args)
	case "version", "--version", "-v":
		err = versionCommand()
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			if exitErr.Error() != "" {
				fmt.Fprintln(os.Stderr, exitErr.Error())
			}
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("cypherguard-lint - static Cypher query analyzer")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  cypherguard-lint lint [flags] [file|-]    - Validate a query against a schema")
	fmt.Println("  cypherguard-lint inspect [file|-]         - Print a query's extracted elements")
	fmt.Println("  cypherguard-lint version                  - Show version information")
	fmt.Println()
	fmt.Println("Lint flags:")
	fmt.Println("  --schema <path>                - Schema file (JSON or YAML); required")
	fmt.Println("  --type-check off|warnings|strict - Type-checker mode (default: off)")
	fmt.Println("  --format text|json             - Output format (default: text)")
	fmt.Println("  --telemetry stdout             - Print traces/metrics for this call")
}

func versionCommand() error {
	fmt.Printf("cypherguard-lint version %s\n", version)
	return nil
}

func lintCommand(args []string) error {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	schemaFlag := fs.String("schema", "", "Schema file (JSON or YAML)")
	typeCheckFlag := fs.String("type-check", "off", "Type-checker mode: off|warnings|strict")
	formatFlag := fs.String("format", "text", "Output format: text|json")
	telemetryFlag := fs.String("telemetry", "", "Emit traces/metrics for this call: \"\" (off) or \"stdout\"")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return &exitError{code: 0}
		}
		return usageErrorf(2, "%v", err)
	}

	if *schemaFlag == "" {
		return usageErrorf(2, "Missing --schema <path>")
	}

	s, err := loadSchema(*schemaFlag)
	if err != nil {
		return err
	}

	filename, query, err := resolveQuery(fs.Args())
	if err != nil {
		return err
	}

	opts := validator.Options{
		TypeChecking: types.ParseTypeCheckLevel(*typeCheckFlag),
	}
	if *telemetryFlag == "stdout" {
		shutdown, err := telemetry.InstallStdoutExporters(os.Stderr)
		if err != nil {
			return err
		}
		defer func() { _ = shutdown(context.Background()) }()
		opts.Telemetry = telemetry.NewInstruments()
		opts.TelemetryConfig = telemetry.DefaultConfig()
	} else if *telemetryFlag != "" {
		return usageErrorf(2, "Unknown --telemetry %q (expected stdout)", *telemetryFlag)
	}

	res, err := validator.Validate(query, s, opts)
	if err != nil {
		return usageErrorf(1, "Syntax error in %s: %v", filename, err)
	}

	switch *formatFlag {
	case "text":
		writeText(os.Stdout, filename, res)
	case "json":
		if err := writeJSON(os.Stdout, res); err != nil {
			return err
		}
	default:
		return usageErrorf(2, "Unknown --format %q (expected text|json)", *formatFlag)
	}

	if !res.Valid {
		return &exitError{code: 1}
	}
	return nil
}

func inspectCommand(args []string) error {
	filename, query, err := resolveQuery(args)
	if err != nil {
		return err
	}

	p, err := parser.New()
	if err != nil {
		return err
	}
	tree, err := p.Parse(query)
	if err != nil {
		return usageErrorf(1, "Syntax error in %s: %v", filename, err)
	}

	el := extractor.Extract(tree)
	fmt.Printf("Query elements for %s:\n", filename)
	fmt.Printf("  node bindings:         %v\n", el.VariableNodeBindings)
	fmt.Printf("  relationship bindings: %v\n", el.VariableRelationshipBindings)
	fmt.Printf("  property accesses:     %v\n", el.PropertyAccesses)
	fmt.Printf("  property comparisons:  %d\n", len(el.PropertyComparisons))
	fmt.Printf("  relationship uses:     %v\n", el.RelationshipUses)
	fmt.Printf("  path variables:        %v\n", el.PathVariables)
	fmt.Printf("  defined names:         %v\n", el.DefinedNames)
	return nil
}

func loadSchema(path string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isYAMLPath(path) {
		return schema.NewFromYAML(data)
	}
	return schema.NewFromJSON(data)
}

func isYAMLPath(path string) bool {
	for _, suffix := range []string{".yaml", ".yml"} {
		if len(path) >= len(suffix) && path[len(path)-len(suffix):] == suffix {
			return true
		}
	}
	return false
}

func resolveQuery(remainingArgs []string) (string, string, error) {
	if len(remainingArgs) > 1 {
		return "", "", usageErrorf(2, "Usage: cypherguard-lint lint [flags] [file|-]")
	}

	filename := "-"
	if len(remainingArgs) == 1 {
		filename = remainingArgs[0]
	}

	var content []byte
	var err error
	if filename == "-" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(filename)
	}
	if err != nil {
		return "", "", err
	}
	return filename, string(content), nil
}
