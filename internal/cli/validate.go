package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lzdw/lzdraw/pkg/arch"
)

func (c *CLI) validateCommand() *cobra.Command {
	var printJSON bool

	cmd := &cobra.Command{
		Use:   "validate <architecture.{json,yaml}>",
		Short: "Check an architecture description and summarize it",
		Long: `Validate an architecture description against the schema and print a
summary of its organizational units. With --json the normalized description
(legacy shapes folded into account_structure) is written to stdout instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), args[0], printJSON)
		},
	}
	cmd.Flags().BoolVar(&printJSON, "json", false, "print the normalized architecture as JSON")
	return cmd
}

func runValidate(ctx context.Context, input string, printJSON bool) error {
	a, err := arch.Load(input)
	if err != nil {
		return err
	}
	digest, err := a.Digest()
	if err != nil {
		return err
	}
	loggerFromContext(ctx).Debug("validated", "path", input, "digest", digest)

	if printJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	}

	printSuccess("%s is valid", input)
	printKeyValue("Client", a.Client())
	if a.WorkshopDate != "" {
		printKeyValue("Workshop", a.WorkshopDate)
	}
	if p := a.AccountStructure.Pattern; p != "" {
		printKeyValue("Pattern", p)
	}
	m := a.Management()
	printKeyValue("Management", fmt.Sprintf("%s <%s>", m.Name, m.Email))
	for _, cat := range arch.Categories() {
		accounts := a.AccountStructure.OU(cat)
		names := make([]string, len(accounts))
		for i, acc := range accounts {
			names[i] = arch.AccountName(cat, i, acc)
		}
		value := StyleDim.Render("none")
		if len(names) > 0 {
			value = strings.Join(names, ", ")
		}
		printKeyValue(cat.Name(), value)
	}
	printKeyValue("Digest", digest[:12])
	return nil
}
