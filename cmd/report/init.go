package report

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/klytics/santekit/internal/config"
)

func newInitCmd() *cobra.Command {
	var (
		insurer string
		client  string
		policy  string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init <job.yaml>",
		Short: "Write a job file template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateJobTemplate(insurer, client, policy)), 0644); err != nil {
				return fmt.Errorf("could not write %s: %w", path, err)
			}
			fmt.Printf("Job file written → %s\n", path)
			fmt.Println("Edit the input paths, then run: santekit report generate --job " + path)
			return nil
		},
	}

	cmd.Flags().StringVar(&insurer, "insurer", "", "Insurer name")
	cmd.Flags().StringVar(&client, "client", "", "Client name")
	cmd.Flags().StringVar(&policy, "policy", "", "Policy id")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
