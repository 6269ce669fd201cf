package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/counsel0/counsel/internal/chat"
	"github.com/counsel0/counsel/internal/i18n"
	"github.com/counsel0/counsel/internal/session"
)

func newSessionsCmd() *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage your conversations",
	}

	sessionsCmd.AddCommand(newSessionsListCmd())
	sessionsCmd.AddCommand(newSessionsNewCmd())
	sessionsCmd.AddCommand(newSessionsSwitchCmd())
	sessionsCmd.AddCommand(newSessionsRenameCmd())
	sessionsCmd.AddCommand(newSessionsDeleteCmd())

	return sessionsCmd
}

// withClient runs fn against a fully wired chat client, handling the
// shared bootstrap and teardown.
func withClient(ctx context.Context, fn func(context.Context, *chat.Client) error) error {
	logger := initLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, cleanup, err := buildClient(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(ctx, client)
}

func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your conversations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd.Context(), runSessionsList)
		},
	}
}

func newSessionsNewCmd() *cobra.Command {
	var topic, location string

	c := &cobra.Command{
		Use:   "new",
		Short: "Start a new conversation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, client *chat.Client) error {
				id, err := client.NewSession(ctx, session.Context{
					LegalTopic:   topic,
					UserLocation: location,
				})
				if err != nil {
					return fmt.Errorf(i18n.T("error.create"), err)
				}
				fmt.Println(i18n.Sprintf("session.created", id))
				return nil
			})
		},
	}

	c.Flags().StringVar(&topic, "topic", "", "legal topic for the conversation")
	c.Flags().StringVar(&location, "location", "", "your location, for region-specific guidance")
	return c
}

func newSessionsSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <session-id>",
		Short: "Switch to another conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(_ context.Context, client *chat.Client) error {
				client.SwitchSession(args[0])
				fmt.Println(i18n.Sprintf("session.switched", args[0]))
				return nil
			})
		},
	}
}

func newSessionsRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name>",
		Short: "Rename the current conversation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, client *chat.Client) error {
				if err := client.Init(ctx); err != nil {
					return err
				}
				name := strings.Join(args, " ")
				if err := client.RenameSession(ctx, name); err != nil {
					return err
				}
				fmt.Println(i18n.Sprintf("session.renamed", name))
				return nil
			})
		},
	}
}

func newSessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [session-id]",
		Short: "Delete a conversation",
		Long: `Delete removes a conversation and all its messages. Without an
argument the current conversation is deleted. Deleting another
conversation switches to it first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, client *chat.Client) error {
				if err := client.Init(ctx); err != nil {
					return err
				}
				if len(args) == 1 {
					client.SwitchSession(args[0])
				}
				if err := client.DeleteSession(ctx); err != nil {
					return fmt.Errorf(i18n.T("session.delete.fail"), err)
				}
				fmt.Println(i18n.T("session.deleted"))
				return nil
			})
		},
	}
}

func runSessionsList(ctx context.Context, client *chat.Client) error {
	if err := client.Init(ctx); err != nil {
		return err
	}

	sessions, err := client.Sessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println(i18n.T("session.list.empty"))
		return nil
	}

	current := client.CurrentSessionID()
	fmt.Println(i18n.T("session.list.title"))
	for _, s := range sessions {
		name := s.Name
		if name == "" {
			name = i18n.T("tui.label.unnamed")
		}
		line := i18n.Sprintf("session.list.item", s.ID, name, s.MessageCount, formatTime(s.LastAccessed))
		if s.ID == current {
			line += "  " + i18n.T("session.list.current")
		}
		fmt.Println(line)
	}
	return nil
}

// formatTime formats time in a human-readable format.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	default:
		return t.Format("2006-01-02 15:04")
	}
}
