package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/zoobzio/dirz"
	"github.com/zoobzio/dirz/examples/ecosystem"
)

var bindingsCmd = &cobra.Command{
	Use:   "bindings",
	Short: "List the registered ecosystem bindings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return listBindings(cmd.OutOrStdout())
	},
}

func listBindings(out io.Writer) error {
	registry := dirz.NewRegistry[*ecosystem.Ecosystem]("ecosystem")
	defer registry.Close() //nolint:errcheck

	if err := ecosystem.Bind(registry, nil); err != nil {
		return err
	}
	registry.Seal()

	fmt.Fprintln(out, "Registered bindings:") //nolint:errcheck
	for _, b := range registry.Bindings() {
		fmt.Fprintf(out, "  %-4s %s\n", b.Direction, b.Name) //nolint:errcheck
	}
	return nil
}
