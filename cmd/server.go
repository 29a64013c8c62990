package cmd

import (
	"boostlend/handler"
	"boostlend/handler/auth"
	"boostlend/handler/hc"
	"boostlend/worker/accrual"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "run the api server and the accrual keeper",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)

		if cfg.App.AuthSecret == "" {
			return errors.New("app.auth_secret is required to serve the api")
		}

		database := provideDatabase()
		defer database.Close()

		stores := provideStores(database)
		reg := provideRegistry()

		p, err := providePool(ctx, database, stores, reg)
		if err != nil {
			return err
		}

		mux := chi.NewMux()
		mux.Use(middleware.Recoverer)
		mux.Use(middleware.StripSlashes)
		mux.Use(cors.AllowAll().Handler)
		mux.Use(logger.WithRequestID)
		mux.Use(middleware.Logger)
		mux.Use(middleware.NewCompressor(5).Handler)

		{
			//hc
			mux.Mount("/hc", hc.Handle(rootCmd.Version, p))
		}

		{
			//metrics
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		}

		{
			//restful api
			svr := handler.New(p, stores.Events, auth.New(cfg.App.AuthSecret, cfg.App.AuthIssuer))
			mux.Mount("/api", http.StripPrefix("/api", svr.HandleRestAPI()))
		}

		port, _ := cmd.Flags().GetInt("port")
		addr := fmt.Sprintf(":%d", port)

		server := &http.Server{
			Addr:    addr,
			Handler: mux,
		}

		ctx, quit := context.WithCancel(ctx)
		done := make(chan struct{}, 1)
		signal.WithContextFunc(ctx, func() {
			quit()

			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				logrus.WithError(err).Error("graceful shutdown server failed")
			}

			close(done)
		})

		g, ctx := errgroup.WithContext(ctx)

		if keeper, _ := cmd.Flags().GetBool("accrual"); keeper {
			w, err := accrual.New(p, cfg.App.AccrueSchedule)
			if err != nil {
				return err
			}

			g.Go(func() error {
				return w.Serve(ctx)
			})
		}

		g.Go(func() error {
			log.Infoln("serve at", addr)
			if err := server.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}

			<-done
			return nil
		})

		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntP("port", "p", 9000, "server port")
	serverCmd.Flags().Bool("accrual", true, "run the reserve accrual keeper in process")
}
