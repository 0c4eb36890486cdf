package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewExecCmd создаёт группу команд для просмотра executions.
func NewExecCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Inspect executions",
	}

	cmd.AddCommand(
		newExecListCmd(clientFn, outputFn),
		newExecShowCmd(clientFn, outputFn),
		newExecActiveCmd(clientFn, outputFn),
	)

	return cmd
}

func newExecListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var workflowID string
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List executions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			executions, err := client.ListExecutions(ListExecutionsOpts{
				WorkflowID: workflowID,
				Status:     status,
				Limit:      limit,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "WORKFLOW", "STATUS", "NODES", "STARTED"}
			rows := make([][]string, len(executions))
			for i, e := range executions {
				rows[i] = []string{
					e.ID, e.WorkflowID, e.Status,
					strconv.Itoa(len(e.Results)), e.StartedAt,
				}
			}

			out.Print(headers, rows, executions)
			return nil
		},
	}

	cmd.Flags().StringVar(&workflowID, "workflow-id", "", "Filter by workflow ID")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (running, completed, failed)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newExecShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show execution details with per-node results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			exec, err := client.GetExecution(args[0])
			if err != nil {
				return err
			}

			printExecution(out, exec)
			return nil
		},
	}
}

func newExecActiveCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "List executions currently in flight",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			states, err := client.ListActiveExecutions()
			if err != nil {
				return err
			}

			headers := []string{"ID", "WORKFLOW", "NODE", "STATUS", "ATTEMPTS"}
			rows := make([][]string, 0, len(states))
			for _, s := range states {
				for _, n := range s.Nodes {
					rows = append(rows, []string{
						s.ExecutionID, s.WorkflowID, n.NodeID,
						n.Status, strconv.Itoa(n.Attempts),
					})
				}
			}

			out.Print(headers, rows, states)
			return nil
		},
	}
}

// printExecution выводит execution и результаты его узлов.
func printExecution(out *Output, exec *ExecutionResponse) {
	if out.jsonMode {
		out.JSON(exec)
		return
	}

	out.KV([][2]string{
		{"Execution", exec.ID},
		{"Workflow", exec.WorkflowID},
		{"Status", exec.Status},
		{"Started", exec.StartedAt},
		{"Completed", exec.CompletedAt},
	}, nil)

	if exec.Error != "" {
		out.Error(exec.Error)
	}

	headers := []string{"NODE", "OK", "DURATION", "ERROR"}
	rows := make([][]string, len(exec.Results))
	for i, r := range exec.Results {
		rows[i] = []string{
			r.NodeID,
			strconv.FormatBool(r.Success),
			fmt.Sprintf("%dms", r.DurationMs),
			truncate(r.Error, 60),
		}
	}
	out.Table(headers, rows)
}
