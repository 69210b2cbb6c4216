package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leakshield/leakshield/internal/samples"
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Built-in simulated paste samples",
}

var samplesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in samples",
	Run: func(cmd *cobra.Command, args []string) {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tDESCRIPTION")
		for _, s := range samples.List() {
			fmt.Fprintf(tw, "%s\t%s\n", s.Name, s.Description)
		}
		tw.Flush()
	},
}

var samplesScanCmd = &cobra.Command{
	Use:   "scan [NAME]",
	Short: "Scan one sample, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			sample, err := samples.Get(args[0])
			if err != nil {
				return err
			}
			return runSample(cmd, sample)
		}
		for _, sample := range samples.List() {
			if err := runSample(cmd, sample); err != nil {
				return err
			}
			if exitCode != ExitSuccess && exitCode != ExitFindings {
				return nil
			}
		}
		return nil
	},
}

func init() {
	samplesCmd.AddCommand(samplesListCmd)
	samplesCmd.AddCommand(samplesScanCmd)
	addScanFlags(samplesScanCmd)
}
