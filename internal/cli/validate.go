package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/inkfold/diagramprep/pkg/pipeline"
)

// validateOpts holds the command-line flags for the validate command.
type validateOpts struct {
	family      string // diagram family token
	interactive bool   // browse verdicts in a TUI list
	noCache     bool   // disable caching
}

// validateCommand creates the validate command for checking notation.
func (c *CLI) validateCommand() *cobra.Command {
	var opts validateOpts

	cmd := &cobra.Command{
		Use:   "validate [file...]",
		Short: "Validate diagram notation and report precise verdicts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd, args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.family, "family", "f", "", "diagram family (architecture, flowchart, ...)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse verdicts interactively")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runValidate(cmd *cobra.Command, files []string, opts *validateOpts) error {
	runner, err := c.newRunner(opts.noCache, nil)
	if err != nil {
		return err
	}
	defer runner.Close()

	verdicts := make([]Verdict, 0, len(files))
	invalid := 0
	for _, file := range files {
		text, err := readInput(file)
		if err != nil {
			return err
		}
		prepared, _, err := runner.Prepare(cmd.Context(), pipeline.Options{
			Text:   text,
			Family: opts.family,
			Logger: c.Logger,
		})
		if err != nil {
			return err
		}
		if !prepared.Validation.Valid {
			invalid++
		}
		verdicts = append(verdicts, Verdict{
			File:    file,
			Valid:   prepared.Validation.Valid,
			Message: prepared.Validation.Message,
		})
	}

	if opts.interactive && len(verdicts) > 1 {
		model := NewVerdictListModel(verdicts)
		if _, err := tea.NewProgram(model).Run(); err != nil {
			return err
		}
	} else {
		for _, v := range verdicts {
			if v.Valid {
				printSuccess("%s", v.File)
			} else {
				printError("%s", v.File)
				printDetail("%s", v.Message)
			}
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d diagrams invalid", invalid, len(verdicts))
	}
	return nil
}
