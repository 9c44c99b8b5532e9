// Command allframe scaffolds new projects built on the allframe framework.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/all-source-os/allframe/pkg/scaffold"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "allframe",
		Short:         "Project scaffolding for the allframe framework",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newNewCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newNewCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a new project skeleton",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := scaffold.Generate(dir, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s in %s\n", project.Name, project.Dir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "parent directory for the new project")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the allframe version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
