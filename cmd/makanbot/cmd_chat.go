package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "Run one request through the pipeline and print the response",
		Long: `Resolve a single free-text request without starting the server.

Example:
  makanbot chat "cheap japanese near tanjong pagar"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger := newLogger(cfg)
			engine, store, err := buildEngine(cfg, logger, nil)
			if err != nil {
				return err
			}
			defer store.Close()

			message := strings.Join(args, " ")
			result, err := engine.ResolveAndRecommend(context.Background(), message)
			if err != nil {
				return fmt.Errorf("failed to resolve request: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(result)
			}

			fmt.Println(result.ResponseText)
			return nil
		},
	}
}
