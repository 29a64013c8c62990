package cmd

import (
	"boostlend/core"
	"boostlend/internal/scenario"
	"boostlend/pkg/id"
	"boostlend/pkg/lending"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario.yaml>",
	Short: "run a scripted scenario against an in memory state and print the events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		s, err := scenario.Load(f)
		if err != nil {
			return err
		}

		ledger, registry, err := provideGenesis()
		if err != nil {
			return err
		}

		engine, err := provideEngine(ledger, registry)
		if err != nil {
			return err
		}

		st := lending.NewState()
		for _, r := range cfg.Reserves {
			if err := engine.InitReserve(ctx, st, lending.ReserveParams{
				Asset:           r.Asset,
				Symbol:          r.Symbol,
				Vault:           r.Vault,
				Strategy:        r.Strategy,
				ReserveFactor:   r.ReserveFactor,
				StableBorrowing: r.StableBorrowing,
				YieldBoost:      r.YieldBoost,
			}); err != nil {
				log.WithError(err).Errorln("engine.InitReserve", r.Symbol)
				return err
			}
		}
		st.Flush()

		runner := &scenario.Runner{
			Engine:   engine,
			State:    st,
			Ledger:   ledger,
			Registry: registry,
			Protocol: cfg.App.Address,
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		return runner.Run(ctx, s, func(res scenario.Result) {
			out := struct {
				Index  int                 `json:"index"`
				Op     string              `json:"op"`
				Error  string              `json:"error,omitempty"`
				Amount string              `json:"amount,omitempty"`
				Events []*core.EventRecord `json:"events,omitempty"`
			}{
				Index: res.Index,
				Op:    res.Step.Op,
			}

			if res.Err != nil {
				out.Error = res.Err.Error()
			}

			if res.Amount != nil {
				out.Amount = res.Amount.Dec()
			}

			traceID := id.UUIDFromString(fmt.Sprintf("simulate-%s-%d", args[0], res.Index))
			for seq, e := range res.Events {
				out.Events = append(out.Events, core.NewEventRecord(traceID, seq, e))
			}

			if err := enc.Encode(out); err != nil {
				log.WithError(err).Errorln("encode result")
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}
