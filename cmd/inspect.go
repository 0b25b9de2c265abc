package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsphweid/basstile/chord"
	"github.com/jsphweid/basstile/library"
	"github.com/jsphweid/basstile/util"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [library]",
	Short: "Inspects a fragment library",
	Long:  `Prints fragment counts per style, size and root profile.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.LibraryPath
		if len(args) == 1 {
			path = args[0]
		}
		return inspect(cmd, path)
	},
}

func inspect(cmd *cobra.Command, path string) error {
	store, err := library.Load(path)
	if err != nil {
		return err
	}
	counts := make(map[string]int)
	for _, f := range store.All() {
		key := fmt.Sprintf("%-8s %d  %s", f.Style, f.Size, chord.RootProfile(f.Home))
		counts[key]++
	}
	out := cmd.OutOrStdout()
	for _, key := range util.GetKeys(counts) {
		fmt.Fprintf(out, "%5d  %s\n", counts[key], key)
	}
	fmt.Fprintf(out, "%5d  total\n", store.Len())
	return nil
}
