package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bqdemo",
		Short:         "Bounded blocking queue demos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newRunCmd(),
		newBasicCmd(),
		newTimeoutCmd(),
	)
	return root
}
