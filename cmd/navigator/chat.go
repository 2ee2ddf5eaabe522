package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/shivamgupta214/outfox-health-assessment/internal/chat"
	"github.com/shivamgupta214/outfox-health-assessment/internal/transport"
	"github.com/shivamgupta214/outfox-health-assessment/internal/tui"
	pkglog "github.com/shivamgupta214/outfox-health-assessment/pkg/log"
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the hospital data chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			url, err := a.cfg.ChatURL()
			if err != nil {
				return err
			}

			s, err := chat.NewSession(ctx, chat.Options{
				URL:            url,
				Dialer:         transport.NewWSDialer(a.cfg.WebSocket),
				ReconnectDelay: a.cfg.Chat.ReconnectDelay,
			})
			if err != nil {
				return err
			}
			defer s.Close()

			l := pkglog.L()
			l.Info().Str(pkglog.FieldSessionID, s.ID).Str(pkglog.FieldEndpoint, url).Msg("chat screen opened")

			return tui.Run(ctx, s,
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
		},
	}
}
