package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/inkfold/diagramprep/pkg/archgraph"
	"github.com/inkfold/diagramprep/pkg/notation"
	"github.com/inkfold/diagramprep/pkg/pipeline"
)

// prepareOpts holds the command-line flags for the prepare command.
type prepareOpts struct {
	family       string // diagram family token ("" means undeclared)
	output       string // output file path ("" means stdout)
	skipOptimize bool   // disable the connection-overlap rewrite
	refresh      bool   // bypass the cache
	noCache      bool   // disable caching entirely
}

// prepareCommand creates the prepare command for normalizing notation.
func (c *CLI) prepareCommand() *cobra.Command {
	var opts prepareOpts

	cmd := &cobra.Command{
		Use:   "prepare [file]",
		Short: "Normalize and optimize raw diagram notation",
		Long: `Prepare reads raw diagram notation from a file (or stdin when the
argument is "-"), strips markdown fences, applies family-specific rewrites,
untangles overlapping connections in architecture diagrams, and prints the
prepared text.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPrepare(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.family, "family", "f", "", "diagram family (architecture, flowchart, ...)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.skipOptimize, "skip-optimize", false, "keep connections as written")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cache for this run")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runPrepare(cmd *cobra.Command, input string, opts *prepareOpts) error {
	text, err := readInput(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache, nil)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	prepared, hit, err := runner.Prepare(cmd.Context(), pipeline.Options{
		Text:         text,
		Family:       opts.family,
		SkipOptimize: opts.skipOptimize,
		Refresh:      opts.refresh,
		Logger:       c.Logger,
	})
	if err != nil {
		return err
	}
	prog.done("Prepared notation")

	if !prepared.Validation.Valid {
		printWarning("Validation: %s", prepared.Validation.Message)
	}
	if family, _ := notation.ParseFamily(opts.family); family.IsArchitecture() {
		d := archgraph.Parse(prepared.Text)
		printStats(len(d.Services), len(d.Connections), hit)
	}

	return writeOutput(opts.output, prepared.Text)
}

// readInput reads notation text from path, or stdin when path is "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// writeOutput writes text to path, or stdout when path is empty.
func writeOutput(path, text string) error {
	if path == "" {
		fmt.Print(text)
		return nil
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return err
	}
	printFile(path)
	return nil
}
