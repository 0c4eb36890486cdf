package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var workflowHeaders = []string{"ID", "NAME", "NODES", "EDGES", "ACTIVE", "UPDATED"}

func workflowRow(wf *WorkflowResponse) []string {
	return []string{
		wf.ID,
		truncate(wf.Name, 40),
		strconv.Itoa(len(wf.Nodes)),
		strconv.Itoa(len(wf.Edges)),
		strconv.FormatBool(wf.IsActive),
		wf.UpdatedAt,
	}
}

// NewWorkflowCmd создаёт группу команд для управления workflows.
func NewWorkflowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Manage workflows",
	}

	cmd.AddCommand(
		newWorkflowListCmd(clientFn, outputFn),
		newWorkflowCreateCmd(clientFn, outputFn),
		newWorkflowShowCmd(clientFn, outputFn),
		newWorkflowDeleteCmd(clientFn, outputFn),
		newWorkflowActivateCmd(clientFn, outputFn, true),
		newWorkflowActivateCmd(clientFn, outputFn, false),
		newWorkflowValidateCmd(clientFn, outputFn),
		newWorkflowExecuteCmd(clientFn, outputFn),
	)

	return cmd
}

func newWorkflowListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			var workflows []WorkflowResponse
			var err error
			if activeOnly {
				workflows, err = client.ListActiveWorkflows()
			} else {
				workflows, err = client.ListWorkflows()
			}
			if err != nil {
				return err
			}

			rows := make([][]string, len(workflows))
			for i := range workflows {
				rows[i] = workflowRow(&workflows[i])
			}

			out.Print(workflowHeaders, rows, workflows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only active workflows")

	return cmd
}

func newWorkflowCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a workflow from a JSON definition file",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			definition, err := readDefinition(file)
			if err != nil {
				return err
			}

			wf, err := client.CreateWorkflow(definition)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Workflow created: %s", wf.ID))
			out.Print(workflowHeaders, [][]string{workflowRow(wf)}, wf)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to workflow JSON file (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newWorkflowShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show workflow details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			wf, err := client.GetWorkflow(args[0])
			if err != nil {
				return err
			}

			out.KV([][2]string{
				{"ID", wf.ID},
				{"Name", wf.Name},
				{"Description", wf.Description},
				{"Nodes", strconv.Itoa(len(wf.Nodes))},
				{"Edges", strconv.Itoa(len(wf.Edges))},
				{"Active", strconv.FormatBool(wf.IsActive)},
				{"Created", wf.CreatedAt},
				{"Updated", wf.UpdatedAt},
			}, wf)
			return nil
		},
	}
}

func newWorkflowDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteWorkflow(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Workflow deleted: %s", args[0]))
			return nil
		},
	}
}

func newWorkflowActivateCmd(clientFn func() *Client, outputFn func() *Output, active bool) *cobra.Command {
	use, short := "activate ID", "Activate a workflow"
	if !active {
		use, short = "deactivate ID", "Deactivate a workflow"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			wf, err := client.SetWorkflowActive(args[0], active)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Workflow %s: active=%v", wf.ID, wf.IsActive))
			out.Print(workflowHeaders, [][]string{workflowRow(wf)}, wf)
			return nil
		},
	}
}

func newWorkflowValidateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a workflow definition without executing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			definition, err := readDefinition(file)
			if err != nil {
				return err
			}

			result, err := client.ValidateDefinition(definition)
			if err != nil {
				return err
			}

			if result.Valid {
				out.Success("Workflow is valid")
				if out.jsonMode {
					out.JSON(result)
				}
				return nil
			}

			for _, msg := range result.Errors {
				out.Error(msg)
			}
			if out.jsonMode {
				out.JSON(result)
			}
			return fmt.Errorf("workflow is invalid (%d errors)", len(result.Errors))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to workflow JSON file (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newWorkflowExecuteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "execute [ID]",
		Short: "Execute a stored workflow by ID, or a definition file with --file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			var exec *ExecutionResponse
			var err error

			switch {
			case file != "":
				var definition json.RawMessage
				definition, err = readDefinition(file)
				if err != nil {
					return err
				}
				exec, err = client.ExecuteDefinition(definition)
			case len(args) == 1:
				exec, err = client.ExecuteWorkflow(args[0])
			default:
				return fmt.Errorf("either a workflow ID or --file is required")
			}
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Execution %s: %s", exec.ID, exec.Status))
			printExecution(out, exec)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to workflow JSON file")

	return cmd
}

// readDefinition читает файл определения и проверяет, что это JSON.
func readDefinition(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("workflow file is not valid JSON")
	}
	return json.RawMessage(data), nil
}
