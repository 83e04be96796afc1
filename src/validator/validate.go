// Package validator wires the parser, extractor, structural checks, and
// opt-in type checker into the single entry point spec §6 describes.
package validator

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joetechbob/cypher-guard/src/extractor"
	"github.com/joetechbob/cypher-guard/src/parser"
	"github.com/joetechbob/cypher-guard/src/schema"
	"github.com/joetechbob/cypher-guard/src/telemetry"
	"github.com/joetechbob/cypher-guard/src/types"
)

// Validate runs the full pipeline: text -> parser -> AST -> extractor ->
// QueryElements + schema -> structural checks -> (opt-in) type checks.
// The returned error is non-nil only for a parse failure (spec §7:
// "parse errors short-circuit... no later stages run"); every other
// diagnostic comes back inside Result.
func Validate(query string, s *schema.Schema, opts Options) (Result, error) {
	return ValidateContext(context.Background(), query, s, opts, nil)
}

// ValidateContext is Validate with an explicit context (used for the
// telemetry span and the log calls; it is not checked for cancellation)
// and an optional *slog.Logger, defaulting to slog.Default() when nil.
func ValidateContext(ctx context.Context, query string, s *schema.Schema, opts Options, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	callID := uuid.NewString()

	var span *telemetry.Span
	if opts.Telemetry != nil {
		ctx, span = opts.Telemetry.StartValidation(ctx, opts.TelemetryConfig, len(query))
	}
	finish := func(summary telemetry.Summary) {
		if opts.Telemetry != nil {
			opts.Telemetry.FinishValidation(ctx, span, opts.TelemetryConfig, summary)
		}
	}

	p, err := parser.New()
	if err != nil {
		finish(telemetry.Summary{ParseFailed: true})
		return Result{}, err
	}
	tree, err := p.Parse(query)
	if err != nil {
		logger.DebugContext(ctx, "cypher-guard: parse failed",
			"call_id", callID, "query_len", len(query), "error", err)
		finish(telemetry.Summary{ParseFailed: true})
		return Result{}, err
	}

	if orderErrs := checkClauseOrder(tree.Clauses); len(orderErrs) > 0 {
		result := Result{Valid: false, Errors: orderErrs}
		logger.DebugContext(ctx, "cypher-guard: clause order rejected",
			"call_id", callID, "query_len", len(query), "error_count", len(orderErrs))
		finish(telemetry.Summary{Valid: false, StructuralErrors: len(orderErrs)})
		return result, nil
	}

	elements := extractor.Extract(tree)
	structuralErrs := checkStructural(elements, s)

	result := Result{
		Valid:  len(structuralErrs) == 0,
		Errors: structuralErrs,
	}

	if opts.TypeChecking != types.Off {
		issues := checkTypes(elements, s)
		for _, issue := range issues {
			msg := issue.Message
			if issue.Suggestion != "" {
				msg += " (" + issue.Suggestion + ")"
			}
			if issue.Severity == types.SeverityError {
				result.TypeErrors = append(result.TypeErrors, msg)
			} else {
				result.TypeWarnings = append(result.TypeWarnings, msg)
			}
		}
		if opts.TypeChecking == types.Strict && len(result.TypeErrors) > 0 {
			result.Valid = false
		}
	}

	logger.DebugContext(ctx, "cypher-guard: validated query",
		"call_id", callID,
		"query_len", len(query),
		"node_labels", len(s.NodeProperties),
		"relationship_types", len(s.RelationshipProperties),
		"valid", result.Valid,
		"error_count", len(result.Errors),
		"type_warning_count", len(result.TypeWarnings),
		"type_error_count", len(result.TypeErrors),
	)

	finish(telemetry.Summary{
		Valid:            result.Valid,
		StructuralErrors: len(result.Errors),
		TypeWarningCount: len(result.TypeWarnings),
		TypeErrorCount:   len(result.TypeErrors),
	})

	return result, nil
}
