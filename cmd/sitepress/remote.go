package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/sitepress/backend"
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Talk to a running site's action backend",
}

var remoteArticlesCmd = &cobra.Command{
	Use:   "articles [id]",
	Short: "List articles, or fetch one by id (counts as a view)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _ := cmd.Flags().GetString("url")
		token, _ := cmd.Flags().GetString("token")
		status, _ := cmd.Flags().GetString("status")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		client := backend.NewClient(url, token, timeout)
		var res backend.Result
		if len(args) == 1 {
			res = client.Article(cmd.Context(), args[0])
		} else {
			res = client.Articles(cmd.Context(), status)
		}
		if !res.Success {
			logger.Debug("backend call failed", zap.String("url", url), zap.String("message", res.Message))
			return fmt.Errorf("backend: %s", res.Message)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	remoteArticlesCmd.Flags().String("url", "http://localhost:3000/api/backend", "Backend endpoint")
	remoteArticlesCmd.Flags().String("token", "", "Backend token (X-Backend-Token)")
	remoteArticlesCmd.Flags().String("status", "all", "Filter: all, published or draft")
	remoteArticlesCmd.Flags().Duration("timeout", 10*time.Second, "Request timeout")
	remoteCmd.AddCommand(remoteArticlesCmd)
}
