package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage stored credentials",
}

var secretCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Store a credential and print its reference",
	Long:  "Reads the secret value from stdin so it never appears in shell history or process listings.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)
		value, err := reader.ReadString('\n')
		if err != nil && value == "" {
			return fmt.Errorf("failed to read secret value from stdin: %w", err)
		}
		value = strings.TrimRight(value, "\r\n")
		if value == "" {
			return fmt.Errorf("secret value is empty")
		}

		ref, err := newClient().CreateSecret(cmd.Context(), args[0], value)
		if err != nil {
			return err
		}

		if PrintJSON(map[string]string{"ref": ref}) {
			return nil
		}
		PrintSuccess("secret stored")
		PrintKeyValue("ref", ref)
		return nil
	},
}

var secretDeleteCmd = &cobra.Command{
	Use:   "delete <ref>",
	Short: "Delete a stored credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().DeleteSecret(cmd.Context(), args[0]); err != nil {
			return err
		}
		if !outputJSON {
			PrintSuccess("secret deleted")
		}
		return nil
	},
}

func init() {
	secretCmd.AddCommand(secretCreateCmd)
	secretCmd.AddCommand(secretDeleteCmd)
}
