package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gridworks/anmgr/pkg/metrics"
	"github.com/gridworks/anmgr/pkg/plugins"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Inspect step tool plugins",
}

var pluginsResolveCmd = &cobra.Command{
	Use:   "resolve TOOL",
	Short: "Resolve the resource stager and tool runner of a step tool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tool := args[0]
		summaryFile, _ := cmd.Flags().GetString("summary-file")
		defer writeSummary(summaryFile)

		store, err := mustResolve(cmd.Context())
		if err != nil {
			return err
		}

		resolver := plugins.NewResolver(store, plugins.Options{Summary: cli.summary})
		fmt.Printf("Resolving plugins for %s using %s\n", bold(tool), resolver.DescriptorPath())

		var failed int
		if _, failure := resolver.ResolveResourceStager(tool); failure != nil {
			printFail("Resource stager: %v", failure)
			failed++
		} else {
			printOK("Resource stager loaded")
		}
		if _, failure := resolver.ResolveToolRunner(tool); failure != nil {
			printFail("Tool runner: %v", failure)
			failed++
		} else {
			printOK("Tool runner loaded")
		}

		if failed > 0 {
			metrics.UpdateComponent(metrics.ComponentPlugins, false, fmt.Sprintf("%s: %d plugins failed", tool, failed))
			return fmt.Errorf("%d of 2 plugins for %s could not be resolved", failed, tool)
		}
		metrics.UpdateComponent(metrics.ComponentPlugins, true, "")
		return nil
	},
}

func init() {
	pluginsCmd.AddCommand(pluginsResolveCmd)
}
