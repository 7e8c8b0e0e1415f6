package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats [model.yaml...]",
		Short: "Print model statistics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(cmd.Context(), args, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}

func (c *CLI) runStats(_ context.Context, paths []string, asJSON bool) error {
	m, err := c.loadModel(paths)
	if err != nil {
		return err
	}
	st := m.Stats()

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	fmt.Println(StyleTitle.Render("Model"))
	printKeyValue("classes", strconv.Itoa(st.Classes))
	printKeyValue("instances", strconv.Itoa(st.Instances))
	printKeyValue("concepts", strconv.Itoa(st.Concepts))
	printKeyValue("relations", strconv.Itoa(st.RelationClasses))
	printKeyValue("facts", strconv.Itoa(st.Facts))
	return nil
}
