package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/plotscout/plotscout-cli/internal/export"
	"github.com/plotscout/plotscout-cli/internal/pipeline"
)

var (
	askJSON   bool
	askUserID string
	askExport string
)

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Run one property search query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		resp := env.Pipeline.Run(ctx, pipeline.Request{
			Query:  args[0],
			UserID: askUserID,
		})

		if askExport != "" {
			if err := export.WriteProperties(resp.Properties, askExport); err != nil {
				return eris.Wrap(err, "ask export")
			}
			zap.L().Info("recommendations exported", zap.String("path", askExport))
		}

		if askJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		fmt.Println(resp.Response)
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full response as JSON")
	askCmd.Flags().StringVar(&askUserID, "user", "", "user id recorded with the run")
	askCmd.Flags().StringVar(&askExport, "export", "", "write recommendations to an xlsx file")
	rootCmd.AddCommand(askCmd)
}
