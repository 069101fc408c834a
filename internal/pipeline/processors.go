package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/funvibe/implicits/internal/checker"
	"github.com/funvibe/implicits/internal/codegen"
	"github.com/funvibe/implicits/internal/diagnostics"
	"github.com/funvibe/implicits/internal/program"
	"github.com/funvibe/implicits/internal/report"
	"github.com/funvibe/implicits/internal/resolution"
)

// LoadProcessor reads the manifest at FilePath and declares it.
type LoadProcessor struct{}

func (lp *LoadProcessor) Process(ctx *PipelineContext) *PipelineContext {
	unit, err := program.LoadUnit(ctx.FilePath)
	if err != nil {
		ctx.addError(diagnostics.NewError(diagnostics.ErrM001, diagnostics.Pos{}, err.Error()))
		return ctx
	}
	ctx.Unit = unit

	prog, errs := program.Build(unit, *ctx.Options)
	ctx.Program = prog
	for _, e := range errs {
		ctx.addError(e)
	}
	return ctx
}

// CheckProcessor resolves the implicit arguments of every call site.
type CheckProcessor struct{}

func (cp *CheckProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Program == nil {
		return ctx
	}
	st := ctx.Program.Symbols
	resolver := resolution.New(st, st,
		resolution.WithLogger(ctx.Logger),
		resolution.WithMaxDepth(ctx.Options.MaxDepth),
		resolution.WithInstancesPackage(ctx.Options.InstancesPackage),
	)
	chk := checker.New(resolver, ctx.FilePath)

	start := time.Now()
	for _, site := range ctx.Program.Calls {
		if err := chk.Check(site); err != nil {
			ctx.Fatal = err
			break
		}
	}
	ctx.Bindings = chk.Bindings()
	for _, e := range chk.Errors() {
		ctx.addError(e)
	}
	ctx.Logger.Debug("unit checked",
		slog.String("file", ctx.FilePath),
		slog.Int("calls", len(ctx.Program.Calls)),
		slog.Int("bindings", ctx.Bindings.Len()),
		slog.Duration("duration", time.Since(start)),
	)
	return ctx
}

// LowerProcessor emits code for every resolved binding.
type LowerProcessor struct {
	Mapper codegen.TypeMapper
}

func (lp *LowerProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Bindings == nil || ctx.Fatal != nil {
		return ctx
	}
	var mapper codegen.TypeMapper = codegen.DefaultMapper{}
	if lp.Mapper != nil {
		mapper = lp.Mapper
	}

	ctx.Lowered = make(map[string]*codegen.Chunk, ctx.Bindings.Len())
	for _, key := range ctx.Bindings.Keys() {
		b, _ := ctx.Bindings.Lookup(key)
		if !b.Outcome.Resolved() {
			continue
		}
		e := codegen.NewChunkEmitter(b.Pos.Line)
		e.Chunk.File = ctx.FilePath
		if err := codegen.Lower(b.Outcome.Candidate, b.Param, mapper, e); err != nil {
			ctx.addError(diagnostics.NewError(diagnostics.ErrC001, b.Pos, err.Error()))
			continue
		}
		ctx.Lowered[key] = e.Chunk
	}
	return ctx
}

// ReportProcessor records the run in a report store. A nil Store disables
// the stage.
type ReportProcessor struct {
	Store *report.Store
}

func (rp *ReportProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if rp.Store == nil {
		return ctx
	}
	name := ctx.FilePath
	if ctx.Unit != nil {
		name = ctx.Unit.Name
	}
	run := NewRun(ctx, name)
	if err := rp.Store.Save(context.Background(), run); err != nil {
		ctx.Logger.Warn("failed to save report", slog.String("file", ctx.FilePath), slog.Any("error", err))
		return ctx
	}
	ctx.RunID = run.ID
	return ctx
}

// NewRun converts the state of ctx into a report run.
func NewRun(ctx *PipelineContext, name string) *report.Run {
	run := report.NewRun(name, ctx.FilePath)
	if ctx.Bindings != nil {
		for _, key := range ctx.Bindings.Keys() {
			b, _ := ctx.Bindings.Lookup(key)
			row := report.Binding{Key: key, Site: b.Site, Line: b.Pos.Line}
			if b.Outcome.Resolved() {
				row.Candidate = b.Outcome.Candidate.Name()
				row.Tree = resolution.Describe(b.Outcome.Candidate)
			} else {
				row.Error = fmt.Sprint(b.Outcome.Err)
			}
			run.Bindings = append(run.Bindings, row)
		}
	}
	for _, e := range ctx.Errors {
		run.Diagnostics = append(run.Diagnostics, report.Diagnostic{
			Code:    string(e.Code),
			File:    e.File,
			Line:    e.Pos.Line,
			Column:  e.Pos.Column,
			Message: e.Message,
		})
	}
	return run
}
