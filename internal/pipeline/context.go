package pipeline

import (
	"log/slog"

	"github.com/funvibe/implicits/internal/checker"
	"github.com/funvibe/implicits/internal/codegen"
	"github.com/funvibe/implicits/internal/config"
	"github.com/funvibe/implicits/internal/diagnostics"
	"github.com/funvibe/implicits/internal/program"
)

// PipelineContext carries one compilation unit through the stages.
type PipelineContext struct {
	FilePath string
	Options  *config.Options
	Logger   *slog.Logger

	Unit     *program.Unit
	Program  *program.Program
	Bindings *checker.BindingTable
	// Lowered maps binding keys to the instructions producing the value.
	Lowered map[string]*codegen.Chunk

	// Fatal is set when the unit was abandoned; no later stage runs on it.
	Fatal  error
	RunID  string
	Errors []*diagnostics.DiagnosticError
}

func NewPipelineContext(filePath string, opts *config.Options) *PipelineContext {
	if opts == nil {
		opts = config.Default()
	}
	return &PipelineContext{
		FilePath: filePath,
		Options:  opts,
		Logger:   slog.Default(),
	}
}

// HasErrors reports whether any diagnostic was produced.
func (ctx *PipelineContext) HasErrors() bool {
	return len(ctx.Errors) > 0 || ctx.Fatal != nil
}

func (ctx *PipelineContext) addError(err *diagnostics.DiagnosticError) {
	if err.File == "" {
		err.File = ctx.FilePath
	}
	ctx.Errors = append(ctx.Errors, err)
}
