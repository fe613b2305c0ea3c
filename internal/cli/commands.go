package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/portflow/internal/presentation/graph"
	"github.com/aretw0/portflow/internal/presentation/tui"
	"github.com/aretw0/portflow/internal/validator"
	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/registry"
	"github.com/aretw0/portflow/pkg/schema"
)

// RunValidate checks the definition and lists every problem found.
// Files are checked against the document schema first.
func RunValidate(ctx context.Context, w io.Writer, opts Options) error {
	if opts.File != "" {
		if err := checkDocument(opts.File); err != nil {
			return report(w, err, opts)
		}
	}
	def, err := LoadDefinition(ctx, opts)
	if err != nil {
		return err
	}
	if err := validator.Validate(def, registry.Default()); err != nil {
		return report(w, err, opts)
	}
	fmt.Fprintf(w, "Network %q is valid! ✅ (%d processors, %d connections)\n",
		def.Name, len(def.Processors), len(def.Connections))
	return nil
}

func checkDocument(path string) error {
	format, err := schema.FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read definition: %w", err)
	}
	return schema.ValidateDocument(data, format)
}

func report(w io.Writer, err error, opts Options) error {
	problems := schema.Errors(err)
	if problems == nil {
		return err
	}
	for _, p := range problems {
		fmt.Fprintf(w, "  - %v\n", p)
	}
	return fmt.Errorf("%d problem(s) in %s", len(problems), opts.Source())
}

// RunGraph writes the Mermaid flowchart, styled by the runtime state after
// an optional evaluation pass.
func RunGraph(ctx context.Context, w io.Writer, opts Options, evaluate bool) error {
	eng, err := CreateEngine(ctx, opts, NewLogger(opts.Debug))
	if err != nil {
		return err
	}
	if evaluate {
		if _, err := eng.Evaluate(ctx); err != nil {
			return err
		}
	}
	def, err := eng.Definition(ctx)
	if err != nil {
		return err
	}
	status, err := eng.Status(ctx)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, graph.GenerateMermaid(&def, &graph.GraphOverlay{Status: status}))
	return err
}

// RunInspect renders the status and port reports as markdown. render may
// be nil to write plain markdown.
func RunInspect(ctx context.Context, w io.Writer, opts Options, render func(string) (string, error)) error {
	eng, err := CreateEngine(ctx, opts, NewLogger(opts.Debug))
	if err != nil {
		return err
	}
	status, err := eng.Status(ctx)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString(tui.StatusReport(eng.Name, status))
	for _, st := range status {
		info, err := eng.Ports(ctx, st.ID)
		if err != nil {
			return err
		}
		sb.WriteString("\n")
		sb.WriteString(tui.PortReport(st.ID, info))
	}

	out := sb.String()
	if render != nil {
		if out, err = render(out); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, out)
	return err
}

// RunCheck reports whether connecting from to to would create a cycle.
// It fails when the edge would be circular.
func RunCheck(ctx context.Context, w io.Writer, opts Options, from, to string) error {
	c, err := domain.ConnectionDefinition{From: from, To: to}.Connection()
	if err != nil {
		return err
	}
	eng, err := CreateEngine(ctx, opts, NewLogger(opts.Debug))
	if err != nil {
		return err
	}
	circular, err := eng.CheckCircular(ctx, c.Outport, c.Inport)
	if err != nil {
		return err
	}
	if circular {
		fmt.Fprintf(w, "%s would create a cycle ❌\n", c)
		return fmt.Errorf("connect %s: %w", c, domain.ErrCircularConnection)
	}
	fmt.Fprintf(w, "%s is acyclic ✅\n", c)
	return nil
}

// RunEvaluate runs one evaluation pass and lists the processors it ran.
func RunEvaluate(ctx context.Context, w io.Writer, opts Options) error {
	eng, err := CreateEngine(ctx, opts, NewLogger(opts.Debug))
	if err != nil {
		return err
	}
	evaluated, err := eng.Evaluate(ctx)
	for i, id := range evaluated {
		fmt.Fprintf(w, "%d. %s\n", i+1, id)
	}
	if err != nil {
		return err
	}
	if len(evaluated) == 0 {
		fmt.Fprintln(w, "Nothing to evaluate.")
	}
	return nil
}
