// Package pipeline composes classification, enrichment, validation, the
// caller's hook, and filtering into the final typed record sequence. Data
// flows one way: raw event, classified records, enriched records, validated
// records, operation-filtered records, transformed output. Records are
// processed sequentially in input order; the only suspension points are I/O
// (schema reload, object fetch, the caller's hook).
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/syngenta/acai-ts-sub001/internal/enrich"
	"github.com/syngenta/acai-ts-sub001/internal/records"
	"github.com/syngenta/acai-ts-sub001/internal/schema"
	"github.com/syngenta/acai-ts-sub001/internal/validation"
)

// Hook is the caller-supplied step that runs after validation with the full
// record set, every record's validity state final as of that point.
type Hook func(ctx context.Context, results []*validation.Result) error

// Transform is the optional per-record output transformation applied last.
type Transform func(res *validation.Result) interface{}

// Options is the configuration surface consumed from the caller.
type Options struct {
	// Operations is the allow-list for classified operations.
	Operations []records.Operation
	// ValidationError makes a failing record abort the batch with a
	// ValidationFailureError instead of being marked invalid.
	ValidationError bool
	// OperationError makes a disallowed operation fail the whole batch
	// instead of being silently dropped.
	OperationError bool
	// StrictValidation rejects properties not declared in the schema.
	StrictValidation bool

	// GetObject enables payload enrichment for object-storage records.
	// IsJSON and IsCSV pick the decode mode; at most one may be set.
	GetObject bool
	IsJSON    bool
	IsCSV     bool
	// S3 configures the real object store client when no Fetcher is injected.
	S3 enrich.Config
	// Fetcher overrides the object store client, mainly for tests.
	Fetcher enrich.ObjectFetcher

	// SchemaPath and SchemaInline are the mutually exclusive schema sources
	// for record validation.
	SchemaPath   string
	SchemaInline map[string]interface{}
	// RequiredBody names a components.schemas entry or carries an inline
	// schema each record's body must satisfy.
	RequiredBody interface{}

	Hook      Hook
	Transform Transform
}

// DefaultOptions returns the documented defaults: create/update/delete
// allowed, hard validation failures on, silent operation drops.
func DefaultOptions() Options {
	return Options{
		Operations: []records.Operation{
			records.OperationCreate,
			records.OperationUpdate,
			records.OperationDelete,
		},
		ValidationError: true,
	}
}

// Pipeline processes one raw cloud event batch. The final record sequence is
// computed once and memoized; re-reading returns the same slice without
// recomputation.
type Pipeline struct {
	event     map[string]interface{}
	opts      Options
	validator *validation.Validator
	enricher  *enrich.Enricher
	logger    *zap.Logger

	processed bool
	final     []*validation.Result
	output    []interface{}
}

// New wires a pipeline from the caller's options. The logger is passed in
// explicitly; no component reaches for global state.
func New(ctx context.Context, event map[string]interface{}, opts Options, logger *zap.Logger) (*Pipeline, error) {
	if opts.IsJSON && opts.IsCSV {
		return nil, &ConfigurationError{Message: "isJSON and isCSV are mutually exclusive"}
	}
	if opts.SchemaPath != "" && opts.SchemaInline != nil {
		return nil, &ConfigurationError{Message: "schema file path and inline schema are mutually exclusive"}
	}
	if len(opts.Operations) == 0 {
		opts.Operations = DefaultOptions().Operations
	}

	p := &Pipeline{event: event, opts: opts, logger: logger}

	var store *schema.Store
	switch {
	case opts.SchemaPath != "":
		var err error
		store, err = schema.NewStoreFromFile(opts.SchemaPath, opts.StrictValidation, logger)
		if err != nil {
			return nil, err
		}
	case opts.SchemaInline != nil:
		store = schema.NewStoreFromInline(opts.SchemaInline, opts.StrictValidation, logger)
	}
	if store != nil {
		p.validator = validation.NewValidator(store, logger)
	}

	if opts.GetObject {
		mode := enrich.ContentModeRaw
		if opts.IsJSON {
			mode = enrich.ContentModeJSON
		}
		if opts.IsCSV {
			mode = enrich.ContentModeCSV
		}
		if opts.Fetcher != nil {
			p.enricher = enrich.NewEnricherWithClient(opts.Fetcher, mode, logger)
		} else {
			enricher, err := enrich.NewEnricher(ctx, opts.S3, mode, logger)
			if err != nil {
				return nil, err
			}
			p.enricher = enricher
		}
	}
	return p, nil
}

// ProcessSync is the synchronous basic mode: classify, filter by operation,
// transform. Configuring enrichment, validation, or a hook alongside it is a
// configuration error.
func (p *Pipeline) ProcessSync() ([]*validation.Result, error) {
	if p.processed {
		return p.final, nil
	}
	if p.opts.GetObject || p.opts.IsJSON || p.opts.IsCSV ||
		p.opts.RequiredBody != nil || p.opts.Hook != nil ||
		p.opts.SchemaPath != "" || p.opts.SchemaInline != nil {
		return nil, &ConfigurationError{
			Message: "synchronous mode cannot be combined with enrichment, validation, or hook options",
		}
	}

	results := p.classify()
	results, err := p.filterByOperation(results)
	if err != nil {
		return nil, err
	}
	p.finish(results)
	return p.final, nil
}

// Process is the asynchronous full mode: classify, enrich, validate, run the
// hook, drop invalid records, filter by operation, transform. Enrichment runs
// to completion for every eligible record before validation begins.
func (p *Pipeline) Process(ctx context.Context) ([]*validation.Result, error) {
	if p.processed {
		return p.final, nil
	}

	results := p.classify()

	if p.enricher != nil {
		for _, res := range results {
			if err := p.enricher.Enrich(ctx, res.Record); err != nil {
				return nil, err
			}
		}
	}

	if p.validator != nil && (p.opts.RequiredBody != nil || p.opts.SchemaInline != nil) {
		for _, res := range results {
			valid, err := p.validator.ValidateRecord(res, p.opts.RequiredBody, p.opts.ValidationError)
			if err != nil {
				return nil, err
			}
			if !valid {
				p.logger.Debug("record failed validation",
					zap.String("record_id", res.Record.ID()),
					zap.String("source", string(res.Record.Source())),
				)
			}
		}
	}

	if p.opts.Hook != nil {
		if err := p.opts.Hook(ctx, results); err != nil {
			return nil, err
		}
	}

	kept := results[:0]
	for _, res := range results {
		if res.Valid {
			kept = append(kept, res)
		}
	}

	kept, err := p.filterByOperation(kept)
	if err != nil {
		return nil, err
	}
	p.finish(kept)
	return p.final, nil
}

// Output returns the transformed final sequence, or the final results
// themselves when no transform is configured. Valid only after processing.
func (p *Pipeline) Output() []interface{} {
	return p.output
}

// AllValid is the aggregate AND over the final record set's validity flags,
// vacuously true for an empty set.
func (p *Pipeline) AllValid() bool {
	for _, res := range p.final {
		if !res.Valid {
			return false
		}
	}
	return true
}

func (p *Pipeline) classify() []*validation.Result {
	classified := records.ClassifyBatch(p.event)
	results := make([]*validation.Result, len(classified))
	for i, rec := range classified {
		results[i] = validation.NewResult(rec)
	}
	return results
}

func (p *Pipeline) filterByOperation(results []*validation.Result) ([]*validation.Result, error) {
	allowed := make(map[records.Operation]bool, len(p.opts.Operations))
	for _, op := range p.opts.Operations {
		allowed[op] = true
	}

	kept := results[:0]
	for _, res := range results {
		op := res.Record.Operation()
		if allowed[op] {
			kept = append(kept, res)
			continue
		}
		if p.opts.OperationError {
			return nil, &OperationNotAllowedError{Operation: op, Allowed: p.opts.Operations}
		}
		p.logger.Debug("dropping record with disallowed operation",
			zap.String("record_id", res.Record.ID()),
			zap.String("operation", string(op)),
		)
	}
	return kept, nil
}

func (p *Pipeline) finish(results []*validation.Result) {
	p.final = results
	p.output = make([]interface{}, len(results))
	for i, res := range results {
		if p.opts.Transform != nil {
			p.output[i] = p.opts.Transform(res)
		} else {
			p.output[i] = res
		}
	}
	p.processed = true
}
