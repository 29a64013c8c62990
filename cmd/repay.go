package cmd

import (
	"boostlend/handler/auth"
	"boostlend/pkg/id"
	"boostlend/pkg/resthttp"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var repayCmd = &cobra.Command{
	Use:   "repay",
	Short: "repay debt through a running api server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		api, _ := cmd.Flags().GetString("api")
		asset, _ := cmd.Flags().GetString("asset")
		amount, _ := cmd.Flags().GetString("amount")
		mode, _ := cmd.Flags().GetString("mode")
		onBehalfOf, _ := cmd.Flags().GetString("on-behalf-of")

		token, err := callerToken(cmd)
		if err != nil {
			return err
		}

		body := map[string]string{
			"asset":        asset,
			"amount":       amount,
			"mode":         mode,
			"on_behalf_of": onBehalfOf,
		}

		var resp struct {
			TraceID string `json:"trace_id"`
			Amount  string `json:"amount"`
		}

		req := resthttp.WithRequestID(ctx, id.GenTraceID()).SetAuthToken(token)
		url := strings.TrimSuffix(api, "/") + "/api/repay"
		if err := resthttp.Execute(req, "POST", url, body, &resp); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "repaid %s, trace %s\n", resp.Amount, resp.TraceID)
		return nil
	},
}

// callerToken the --token flag, or a short lived token for --user signed with the configured secret
func callerToken(cmd *cobra.Command) (string, error) {
	if token, _ := cmd.Flags().GetString("token"); token != "" {
		return token, nil
	}

	user, _ := cmd.Flags().GetString("user")
	if !common.IsHexAddress(user) {
		return "", errors.New("either --token or a valid --user is required")
	}

	return auth.New(cfg.App.AuthSecret, cfg.App.AuthIssuer).Sign(common.HexToAddress(user), 5*time.Minute)
}

func init() {
	rootCmd.AddCommand(repayCmd)
	repayCmd.Flags().String("api", "http://localhost:9000", "api server")
	repayCmd.Flags().String("asset", "", "reserve asset")
	repayCmd.Flags().String("amount", "max", "amount in base units, max repays everything")
	repayCmd.Flags().String("mode", "variable", "stable or variable")
	repayCmd.Flags().String("on-behalf-of", "", "debtor, the caller by default")
	repayCmd.Flags().String("token", "", "bearer token of the payer")
	repayCmd.Flags().String("user", "", "payer address, signs a token with app.auth_secret when --token is empty")
}
