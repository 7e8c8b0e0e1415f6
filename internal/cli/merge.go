package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// mergeCommand creates the merge command.
func (c *CLI) mergeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "merge [model.yaml...] -o merged.yaml",
		Short: "Merge several models into one file",
		Long: `Merge model files into one. Elements are taken from the files in order;
an id already present keeps its first definition, and facts whose endpoints
or relation are missing after the merge are dropped.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMerge(cmd.Context(), args, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (required)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func (c *CLI) runMerge(_ context.Context, paths []string, output string) error {
	m, err := c.loadModel(paths)
	if err != nil {
		return err
	}
	if err := m.SaveFile(output); err != nil {
		return err
	}
	st := m.Stats()
	printSuccess("Merged %d files", len(paths))
	printDetail("%d concepts, %d facts", st.Classes+st.Instances+st.Concepts, st.Facts)
	printFile(output)
	return nil
}
