package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/krama-desa/iuran/internal/money"
	"github.com/krama-desa/iuran/internal/storage"
	"github.com/krama-desa/iuran/internal/storage/sqlite"
)

func newJournalCmd() *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent payment submissions",
		RunE:  runJournal,
	}
	journalCmd.Flags().Int("limit", 20, "Max entries")
	return journalCmd
}

func runJournal(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	formatter, err := money.NewFormatterFromLocale(cfg.Dashboard.CurrencySymbol, cfg.Dashboard.Locale)
	if err != nil {
		return err
	}
	store, err := sqlite.New(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	entries, err := store.ListJournal(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No payments recorded yet.")
		return nil
	}

	emails := make(map[string]string)
	staffEmail := func(id string) string {
		if id == "" {
			return "-"
		}
		if email, ok := emails[id]; ok {
			return email
		}
		email := id
		staff, err := store.GetStaffByID(ctx, id)
		switch {
		case err == nil:
			email = staff.Email
		case !errors.Is(err, storage.ErrNotFound):
			email = "?"
		}
		emails[id] = email
		return email
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tOUTCOME\tTAGIHAN\tKRAMA\tAMOUNT\tSTAFF\tMESSAGE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			time.Unix(e.CreatedAt, 0).Format("2006-01-02 15:04:05"),
			e.Outcome,
			e.BillingID,
			orDash(e.MemberID),
			formatter.Format(e.Amount),
			staffEmail(e.StaffID),
			e.Message,
		)
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
