package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"kisan-gateway/assistant/domain"
	"kisan-gateway/assistant/infra"
	"kisan-gateway/config"
)

var (
	historyClient string
	historyLimit  int
	historyDB     string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent chat exchanges from the chat log",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), false)
		defer flushLog()

		path := historyDB
		if path == "" {
			cfg, err := config.LoadChatLog()
			if err != nil {
				return err
			}
			path = cfg.Path
		}

		db, store, err := openChatLog(ctx, path)
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := store.Recent(ctx, historyClient, historyLimit)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderHistory(entries))
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyClient, "client", "", "only show exchanges of this client key")
	historyCmd.Flags().IntVar(&historyLimit, "limit", infra.DefaultRecentLimit, "maximum number of rows")
	historyCmd.Flags().StringVar(&historyDB, "db", "", "chat log database (defaults to CHATLOG_PATH)")
	rootCmd.AddCommand(historyCmd)
}

func renderHistory(entries []domain.ChatLogEntry) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"When", "Client", "Lang", "Category", "Question", "Reply"})
	for _, e := range entries {
		t.AppendRow(table.Row{
			e.CreatedAt.Local().Format(time.DateTime),
			e.ClientKey,
			e.LanguageMode,
			e.Category,
			ellipsize(e.UserMessage, 40),
			ellipsize(e.BotResponse, 60),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "Total", len(entries)})
	return t.Render()
}

func ellipsize(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
