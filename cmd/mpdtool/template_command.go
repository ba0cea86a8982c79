package main

import (
	"fmt"
	"mpdkit/internal/dash"

	"github.com/spf13/cobra"
)

func newTemplateCommand(_ *commandContext) *cobra.Command {
	var (
		repID     string
		number    uint64
		bandwidth uint64
		timeValue uint64
	)

	cmd := &cobra.Command{
		Use:   "template TEMPLATE",
		Short: "Expand a SegmentTemplate URL pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var tv dash.TemplateValues
			flags := cmd.Flags()
			if flags.Changed("rep") {
				tv.RepresentationID = &repID
			}
			if flags.Changed("number") {
				tv.Number = &number
			}
			if flags.Changed("bandwidth") {
				tv.Bandwidth = &bandwidth
			}
			if flags.Changed("time") {
				tv.Time = &timeValue
			}

			fmt.Fprintln(cmd.OutOrStdout(), dash.FillURITemplate(args[0], tv))
			return nil
		},
	}

	cmd.Flags().StringVar(&repID, "rep", "", "Value for $RepresentationID$")
	cmd.Flags().Uint64Var(&number, "number", 0, "Value for $Number$")
	cmd.Flags().Uint64Var(&bandwidth, "bandwidth", 0, "Value for $Bandwidth$")
	cmd.Flags().Uint64Var(&timeValue, "time", 0, "Value for $Time$")
	return cmd
}
