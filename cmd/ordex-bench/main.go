package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ordex-bench",
		Short: "Benchmark and stress ordex indexes",
	}
	root.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error.")
	return root
}

func main() {
	root := rootCommand()
	root.AddCommand(runCommand(), verifyCommand())

	if err := root.Execute(); err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		os.Exit(1)
	}
}
