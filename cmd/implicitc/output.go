package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/funvibe/implicits/internal/codegen"
	"github.com/funvibe/implicits/internal/pipeline"
	"github.com/funvibe/implicits/internal/resolution"
)

const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[31m"
	ansiGreen = "\033[32m"
	ansiBold  = "\033[1m"
)

type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer, mode string) *printer {
	return &printer{w: w, color: useColor(mode, w)}
}

// useColor decides whether to emit ANSI colours on w.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

func (p *printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + ansiReset
}

func (p *printer) render(results []*pipeline.PipelineContext, m mode, format string) error {
	if format == "json" {
		return p.renderJSON(results, m)
	}
	for _, ctx := range results {
		p.renderText(ctx, m)
	}
	return nil
}

func (p *printer) renderText(ctx *pipeline.PipelineContext, m mode) {
	for _, err := range ctx.Errors {
		label := "error:"
		if err.IsFatal() {
			label = "fatal:"
		}
		fmt.Fprintf(p.w, "%s %s\n", p.paint(ansiRed, label), err.Error())
	}
	if ctx.Fatal != nil {
		fmt.Fprintf(p.w, "%s %v\n", p.paint(ansiRed, "aborted:"), ctx.Fatal)
	}

	if ctx.Bindings != nil {
		for _, key := range ctx.Bindings.Keys() {
			b, _ := ctx.Bindings.Lookup(key)
			if !b.Outcome.Resolved() {
				fmt.Fprintf(p.w, "%s => %s\n", key, p.paint(ansiRed, "unresolved"))
				continue
			}
			fmt.Fprintf(p.w, "%s => %s\n", key, p.paint(ansiGreen, b.Outcome.Candidate.Name()))

			switch m {
			case modeExplain:
				p.indent(resolution.Describe(b.Outcome.Candidate))
			case modeLower:
				if chunk, ok := ctx.Lowered[key]; ok {
					p.indent(codegen.Disassemble(chunk, b.Site))
				}
			}
		}
	}

	resolved, failed := counts(ctx)
	summary := fmt.Sprintf("%s: %d resolved, %d unresolved, %d errors", ctx.FilePath, resolved, failed, len(ctx.Errors))
	if ctx.RunID != "" {
		summary += " (run " + ctx.RunID + ")"
	}
	fmt.Fprintln(p.w, p.paint(ansiBold, summary))
}

func (p *printer) indent(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintf(p.w, "    %s\n", line)
	}
}

func counts(ctx *pipeline.PipelineContext) (resolved, failed int) {
	if ctx.Bindings == nil {
		return 0, 0
	}
	for _, key := range ctx.Bindings.Keys() {
		b, _ := ctx.Bindings.Lookup(key)
		if b.Outcome.Resolved() {
			resolved++
		} else {
			failed++
		}
	}
	return resolved, failed
}

func (p *printer) renderJSON(results []*pipeline.PipelineContext, m mode) error {
	units := make([]interface{}, len(results))
	for i, ctx := range results {
		units[i] = unitJSON(ctx, m)
	}
	doc, err := structpb.NewStruct(map[string]interface{}{
		"mode":  m.String(),
		"units": units,
	})
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(p.w, string(data))
	return err
}

func unitJSON(ctx *pipeline.PipelineContext, m mode) map[string]interface{} {
	diags := make([]interface{}, 0, len(ctx.Errors))
	for _, e := range ctx.Errors {
		diags = append(diags, map[string]interface{}{
			"code":    string(e.Code),
			"file":    e.File,
			"line":    e.Pos.Line,
			"column":  e.Pos.Column,
			"message": e.Message,
		})
	}

	bindings := []interface{}{}
	if ctx.Bindings != nil {
		for _, key := range ctx.Bindings.Keys() {
			b, _ := ctx.Bindings.Lookup(key)
			entry := map[string]interface{}{
				"key":      key,
				"site":     b.Site,
				"line":     b.Pos.Line,
				"resolved": b.Outcome.Resolved(),
			}
			if b.Outcome.Resolved() {
				entry["candidate"] = b.Outcome.Candidate.Name()
				if m == modeExplain {
					entry["tree"] = resolution.Describe(b.Outcome.Candidate)
				}
			} else if b.Outcome.Err != nil {
				entry["error"] = b.Outcome.Err.Error()
			}
			if chunk, ok := ctx.Lowered[key]; ok {
				entry["code"] = codegen.Disassemble(chunk, b.Site)
			}
			bindings = append(bindings, entry)
		}
	}

	unit := map[string]interface{}{
		"file":        ctx.FilePath,
		"bindings":    bindings,
		"diagnostics": diags,
	}
	if ctx.RunID != "" {
		unit["run_id"] = ctx.RunID
	}
	if ctx.Fatal != nil {
		unit["fatal"] = ctx.Fatal.Error()
	}
	return unit
}
