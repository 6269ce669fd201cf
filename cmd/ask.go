package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/counsel0/counsel/internal/i18n"
	"github.com/counsel0/counsel/internal/session"
)

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question and print the reply",
		Long: `Ask sends one message against your current conversation and prints
the assistant's reply. The conversation continues where the interactive
chat left off.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd.Context(), strings.Join(args, " "))
		},
	}
}

func runAsk(ctx context.Context, question string) error {
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

	if err := client.Init(ctx); err != nil {
		return err
	}

	if err := client.SendMessage(ctx, question, session.Context{}); err != nil {
		if errors.Is(err, session.ErrRateLimited) {
			return errors.New(i18n.T("error.rate_limited"))
		}
		return fmt.Errorf(i18n.T("error.send"), err)
	}

	messages, _ := client.Messages(ctx)
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == session.RoleAssistant {
			fmt.Println(messages[i].Content)
			return nil
		}
	}

	fmt.Println(i18n.T("chat.no_reply"))
	return nil
}
