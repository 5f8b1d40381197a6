package main

import (
	"fmt"
	"io"

	"github.com/jwulff/finvoice/internal/conversation"
	"github.com/jwulff/finvoice/internal/db"
	"github.com/jwulff/finvoice/internal/ui"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print archived exchanges, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		exchanges, err := store.RecentExchanges(historyLimit)
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), exchanges)
		return nil
	},
}

func printHistory(w io.Writer, exchanges []conversation.Exchange) {
	if len(exchanges) == 0 {
		fmt.Fprintln(w, "No exchanges archived yet.")
		return
	}
	for _, e := range exchanges {
		who := "Assistant"
		if e.Origin == conversation.OriginUser {
			who = "You"
		}
		fmt.Fprintf(w, "[%s] %s (%s): %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"), who, e.Channel, e.Content)
		for _, in := range e.Insights {
			line := fmt.Sprintf("    %s %s", ui.InsightIcon(in.Category), in.Title)
			if in.MetricValue != "" {
				line += " [" + in.MetricValue + "]"
			}
			if in.Description != "" {
				line += " - " + in.Description
			}
			fmt.Fprintln(w, line)
		}
	}
}
