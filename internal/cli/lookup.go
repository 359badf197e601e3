package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/krama-desa/iuran/internal/money"
)

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <identifier>",
		Short: "Look up a krama and their outstanding tagihan",
		Args:  cobra.ExactArgs(1),
		RunE:  runLookup,
	}
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client, err := newAPIClient(cfg, nil)
	if err != nil {
		return err
	}
	formatter, err := money.NewFormatterFromLocale(cfg.Dashboard.CurrencySymbol, cfg.Dashboard.Locale)
	if err != nil {
		return err
	}

	detail, err := client.FetchDetail(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Krama\t%s (%s)\n", detail.Member.Name, detail.Member.ID)
	fmt.Fprintf(w, "Status\t%s\n", detail.Member.Status)

	b := detail.Billing
	if b == nil {
		fmt.Fprintln(w, "Tagihan\tSELURUH TAGIHAN LUNAS")
		return w.Flush()
	}

	fmt.Fprintf(w, "Tagihan ID\t%d\n", b.ID)
	if !b.IssueDate.IsZero() {
		fmt.Fprintf(w, "Terbit\t%s\n", b.IssueDate.Format("02-01-2006"))
	}
	fmt.Fprintf(w, "Iuran Pokok Krama\t%s\n", formatter.Format(b.Dues.Base))
	fmt.Fprintf(w, "Dana Pembangunan (Dedosar)\t%s\n", formatter.Format(b.Dues.Development))
	fmt.Fprintf(w, "Kas Sosial (Peturunan)\t%s\n", formatter.Format(b.Dues.Social))
	fmt.Fprintf(w, "Total\t%s\n", formatter.Format(b.Total()))
	return w.Flush()
}
