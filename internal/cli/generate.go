package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lzdw/lzdraw/pkg/extract"
	"github.com/lzdw/lzdraw/pkg/render/drawio"
)

type generateOpts struct {
	renderOpts
	client    string
	notes     string
	notesFile string
	noArch    bool
}

func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate <questionnaire.txt|->",
		Short: "Extract an architecture from a questionnaire and render it",
		Long: `Send workshop questionnaire text to the configured language model, turn
the answer into an architecture description and render it.

The extracted architecture is saved next to the outputs as
<base>.architecture.json so it can be edited and re-rendered with
'lzdraw render'. Use - to read the questionnaire from stdin.`,
		Example: `  lzdraw generate questionnaire.txt --client Acme
  lzdraw generate notes.md --notes "prefers eu-west-1" -f drawio,tf
  pbpaste | lzdraw generate - --client Acme -o acme`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), args[0], opts)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.client, "client", "", "client name to use when the questionnaire has none")
	cmd.Flags().StringVar(&opts.notes, "notes", "", "additional context for the model")
	cmd.Flags().StringVar(&opts.notesFile, "notes-file", "", "read additional context from a file")
	cmd.Flags().BoolVar(&opts.noArch, "no-arch", false, "do not save the extracted architecture JSON")
	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, input string, opts generateOpts) error {
	logger := loggerFromContext(ctx)

	questionnaire, err := readInput(input)
	if err != nil {
		return err
	}
	notes := opts.notes
	if opts.notesFile != "" {
		data, err := os.ReadFile(opts.notesFile)
		if err != nil {
			return fmt.Errorf("read notes: %w", err)
		}
		notes = strings.TrimSpace(notes + "\n" + string(data))
	}
	req := extract.Request{ClientName: opts.client, Questionnaire: questionnaire, ExtraNotes: notes}
	if err := req.Validate(); err != nil {
		return err
	}

	ex, err := c.newExtractor(ctx)
	if err != nil {
		return err
	}
	runner := c.newRunner(ctx, opts.noCache, ex)
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Extracting architecture with %s (%s)...", ex.Provider(), ex.Model()))
	spinner.Start()
	a, hit, err := runner.Extract(ctx, req, opts.refresh)
	if err != nil {
		spinner.StopWithError("Extraction failed")
		return err
	}
	spinner.Stop()
	prog.done("extracted", "client", a.Client(), "cached", hit)

	popts := c.pipelineOptions(opts.theme, opts.formats)
	popts.Detailed = opts.detailed
	popts.Refresh = opts.refresh
	res, err := runner.Render(ctx, a, popts)
	if err != nil {
		return err
	}

	source := input
	if input == "-" {
		source = strings.TrimSuffix(drawio.Filename(a.ClientName), ".drawio")
	}
	paths, err := writeArtifacts(res.Artifacts, outputPaths(popts.Formats, opts.output, source))
	if err != nil {
		return err
	}
	if !opts.noArch {
		archPath := basePath(opts.output, source) + ".architecture.json"
		if len(popts.Formats) == 1 && opts.output != "" {
			archPath = strings.TrimSuffix(opts.output, filepath.Ext(opts.output)) + ".architecture.json"
		}
		data, err := json.MarshalIndent(a, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(archPath, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", archPath, err)
		}
		paths = append(paths, archPath)
	}

	printSuccess("Generated %s", StyleTitle.Render(a.Client()))
	printStats(res.Stats.Accounts, res.Stats.Nodes, res.Stats.Edges, hit)
	for _, p := range paths {
		printFile(p)
	}
	if !opts.noArch {
		printNextStep("Edit and re-render", "lzdraw render "+paths[len(paths)-1])
	}
	return nil
}

// readInput reads a file, or stdin for "-".
func readInput(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read questionnaire: %w", err)
	}
	return string(data), nil
}
