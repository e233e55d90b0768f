package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd returns the callers installed gr8 version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Retrieve the currently installed gr8 version",
	Long:  "Run `gr8 version` to get your current gr8 version",
	Args:  cobra.NoArgs,
	Run:   runVersion,
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Println(currentReleaseVersion)
}
