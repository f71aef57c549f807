package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/sitepress"
	"github.com/eringen/sitepress/intake"
)

// openStore opens the configured database without starting the server.
func openStore() (*sitepress.Store, error) {
	cfg, err := sitepress.LoadConfig()
	if err != nil {
		return nil, err
	}
	return sitepress.NewStore(cfg.DatabasePath)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print article counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		stats, err := store.ArticleStats()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "total: %d\npublished: %d\ndrafts: %d\n", stats.Total, stats.Published, stats.Drafts)
		return nil
	},
}

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect stored contact-form leads",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored leads, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		leads, err := store.ListLeads()
		if err != nil {
			return err
		}
		if all, _ := cmd.Flags().GetBool("all"); !all {
			leads = intake.Dedupe(leads)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIMESTAMP\tNAME\tEMAIL\tCOMPANY\tPAGE")
		for _, l := range leads {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", l.Timestamp.Format(time.RFC3339), l.Name, l.Email, l.Company, l.Page)
		}
		return w.Flush()
	},
}

var leadsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored lead",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("refusing to clear leads without --yes")
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		n, err := store.ClearLeads()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %d leads\n", n)
		return nil
	},
}

func init() {
	leadsListCmd.Flags().Bool("all", false, "Include duplicate submissions")
	leadsClearCmd.Flags().Bool("yes", false, "Confirm deletion")
	leadsCmd.AddCommand(leadsListCmd, leadsClearCmd)
}
