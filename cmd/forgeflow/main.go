// ForgeFlow CLI — инструмент командной строки для управления
// workflows и executions через HTTP API.
//
// Использование:
//
//	forgeflow [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	workflow  Управление workflows
//	exec      Просмотр executions
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/0x-Shashi/Forge-Flow/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "forgeflow",
		Short:         "ForgeFlow CLI — workflow execution tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultAPIURL(), "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewWorkflowCmd(clientFn, outputFn),
		cli.NewExecCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func defaultAPIURL() string {
	if v := os.Getenv("FORGEFLOW_API_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}
