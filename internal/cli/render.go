package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inkfold/diagramprep/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	family       string // diagram family token
	output       string // output file path
	engine       string // rendering engine: "dot" or "mmdc"
	fallback     string // file with custom fallback artwork
	skipOptimize bool   // disable the connection-overlap rewrite
	refresh      bool   // bypass the cache
	noCache      bool   // disable caching
}

// renderCommand creates the render command for the full pipeline.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Prepare notation and render it to SVG",
		Long: `Render runs the complete pipeline: normalize, optimize, validate, and
render through the selected engine. When validation or rendering fails, the
output is text-free fallback artwork and the failure message is printed to
stderr instead of being drawn into the image.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.family, "family", "f", "", "diagram family (architecture, flowchart, ...)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with .svg, or stdout for stdin input)")
	cmd.Flags().StringVarP(&opts.engine, "engine", "e", "", "rendering engine: dot (default), mmdc")
	cmd.Flags().StringVar(&opts.fallback, "fallback", "", "file with custom fallback artwork")
	cmd.Flags().BoolVar(&opts.skipOptimize, "skip-optimize", false, "keep connections as written")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cache for this run")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	text, err := readInput(input)
	if err != nil {
		return err
	}

	fallbackSVG := ""
	if opts.fallback != "" {
		fallbackSVG, err = readInput(opts.fallback)
		if err != nil {
			return err
		}
	}

	engine, err := c.newEngine(opts.engine)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache, engine)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(cmd.Context(), "Rendering diagram")
	spinner.Start()

	result, err := runner.Execute(cmd.Context(), pipeline.Options{
		Text:         text,
		Family:       opts.family,
		FallbackSVG:  fallbackSVG,
		SkipOptimize: opts.skipOptimize,
		Refresh:      opts.refresh,
		Logger:       c.Logger,
	})
	if err != nil {
		spinner.Stop()
		return err
	}

	output := outputPath(input, opts.output)

	if !result.Outcome.OK {
		spinner.StopWithError(result.Outcome.Message)
		if err := writeOutput(output, result.Outcome.FallbackSVG); err != nil {
			return err
		}
		return fmt.Errorf("render failed: %s", result.Outcome.Message)
	}

	spinner.StopWithSuccess(fmt.Sprintf("Rendered with %s", engine.Name()))
	printStats(0, 0, result.CacheInfo.ArtifactHit)
	return writeOutput(output, result.Outcome.SVG)
}

// outputPath resolves where the artwork goes: an explicit --output wins,
// stdin input defaults to stdout, and a file input defaults to its own
// name with an .svg extension.
func outputPath(input, output string) string {
	if output != "" {
		return output
	}
	if input == "-" {
		return "" // writeOutput sends "" to stdout
	}
	return svgPath(input)
}

// svgPath replaces the input file's extension with .svg.
func svgPath(input string) string {
	if i := strings.LastIndex(input, "."); i > 0 {
		return input[:i] + ".svg"
	}
	return input + ".svg"
}
