package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/krama-desa/iuran/internal/auth"
	"github.com/krama-desa/iuran/internal/storage/sqlite"
)

func newStaffCmd() *cobra.Command {
	staffCmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage dashboard staff accounts",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a staff account",
		Long: `Create a staff account. The password is read from --password or, when
omitted, from the first line of standard input.`,
		RunE: runStaffAdd,
	}
	addCmd.Flags().String("email", "", "Login email (required)")
	addCmd.Flags().String("name", "", "Display name (required)")
	addCmd.Flags().Int64("backend-id", 0, "Staff ID on the village backend, sent as recorded_by (required)")
	addCmd.Flags().String("password", "", "Password, at least 8 characters")
	_ = addCmd.MarkFlagRequired("email")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("backend-id")

	staffCmd.AddCommand(addCmd)
	return staffCmd
}

func runStaffAdd(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	name, _ := cmd.Flags().GetString("name")
	backendID, _ := cmd.Flags().GetInt64("backend-id")
	password, _ := cmd.Flags().GetString("password")

	if password == "" {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return errors.New("password required: pass --password or pipe it on stdin")
		}
		password = strings.TrimRight(line, "\r\n")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := sqlite.New(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	staff, err := auth.NewPasswordAuthenticator(store).Register(context.Background(), email, name, password, backendID)
	if err != nil {
		return fmt.Errorf("failed to create staff: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created staff %s <%s> (backend id %d)\n", staff.ID, staff.Email, staff.BackendID)
	return nil
}
