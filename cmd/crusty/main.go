package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crusty-text/internal/config"
	"crusty-text/internal/ingest"
	"crusty-text/internal/model"
	"crusty-text/internal/server"
	"crusty-text/internal/store"
	"crusty-text/internal/worker"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type app struct {
	v          *viper.Viper
	cfg        *config.Config
	logger     *zap.Logger
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New(), logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:           "crusty",
		Short:         "crusty-text - word counts, tokens and digests for stored text",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return a.initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to a crusty.yaml config file")
	flags.BoolVar(&a.debug, "debug", false, "Development logging")
	flags.String("redis", "localhost:6379", "Address of Redis server")
	flags.String("badger", "./badger-data", "Path to BadgerDB data directory")
	_ = a.v.BindPFlag("redis.addr", flags.Lookup("redis"))
	_ = a.v.BindPFlag("badger.path", flags.Lookup("badger"))

	rootCmd.AddCommand(
		a.serverCmd(),
		a.addCmd(),
		a.putCmd(),
		a.wordsCmd(),
		a.lastCmd(),
		a.longerCmd(),
		a.notifyCmd(),
	)
	return rootCmd
}

func (a *app) initLogger() error {
	if a.debug {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		a.logger = logger
		return nil
	}

	level, err := zapcore.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *app) serverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the worker and web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			// Setup Signal Handling (Ctrl+C)
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			// Setup Manual 'q' input handling
			go func() {
				scanner := bufio.NewScanner(os.Stdin)
				for scanner.Scan() {
					if scanner.Text() == "q" {
						fmt.Println(" 'q' pressed. Stopping...")
						cancel()
						return
					}
				}
			}()

			go func() {
				select {
				case <-sigChan:
					a.logger.Info("Shutting down...")
					cancel()
				case <-ctx.Done():
				}
			}()

			// FULL MODE - Redis + Badger
			st, err := store.NewHybridStore(a.cfg.RedisAddr, a.cfg.BadgerPath)
			if err != nil {
				return fmt.Errorf("failed to init store: %w", err)
			}
			defer st.Close()

			w := worker.NewWorker(st, a.logger)
			go w.Start(ctx)

			srv := server.NewServer(st, a.logger, a.cfg.TopWords)
			go func() {
				if err := srv.Start(a.cfg.HTTPPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.logger.Error("Web server stopped", zap.Error(err))
					cancel()
				}
			}()

			a.logger.Info("Server running.")
			fmt.Println("Press 'q' + Enter or Ctrl+C to stop.")

			<-ctx.Done()

			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			if err := srv.Stop(shutdownCtx); err != nil {
				a.logger.Error("Web server shutdown failed", zap.Error(err))
			}
			a.logger.Info("Goodbye!")
			return nil
		},
	}
	cmd.Flags().String("port", "3000", "HTTP port")
	_ = a.v.BindPFlag("http.port", cmd.Flags().Lookup("port"))
	return cmd
}

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [url]",
		Short: "Queue a URL to fetch and analyze",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// CLIENT MODE - Redis only, so the server can keep the Badger lock.
			st, err := store.NewHybridStore(a.cfg.RedisAddr, "")
			if err != nil {
				return fmt.Errorf("failed to init store: %w", err)
			}
			defer st.Close()

			doc := model.NewURLDocument(args[0])
			if err := st.Save(cmd.Context(), &doc); err != nil {
				return fmt.Errorf("failed to queue document: %w", err)
			}

			a.logger.Info("Document queued",
				zap.String("id", doc.ID.String()),
				zap.String("url", doc.URL))
			fmt.Fprintln(cmd.OutOrStdout(), doc.ID)
			return nil
		},
	}
}

func (a *app) putCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put [name] [file]",
		Short: "Store a local file as a named document and queue it",
		Long:  "Store a local file as a named document and queue it. Needs the Badger directory, so run it while the server is stopped.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, path := args[0], args[1]

			buf, err := ingest.ReadAll(ingest.DirSource{}, path)
			if err != nil {
				return err
			}

			st, err := store.NewHybridStore(a.cfg.RedisAddr, a.cfg.BadgerPath)
			if err != nil {
				return fmt.Errorf("failed to init store: %w", err)
			}
			defer st.Close()

			if err := st.PutBody(name, []byte(buf.String())); err != nil {
				return err
			}
			doc := model.NewDocument(name)
			if err := st.Save(cmd.Context(), &doc); err != nil {
				return fmt.Errorf("failed to queue document: %w", err)
			}

			a.logger.Info("Document stored",
				zap.String("id", doc.ID.String()),
				zap.String("name", name),
				zap.Int("bytes", buf.Len()))
			fmt.Fprintln(cmd.OutOrStdout(), doc.ID)
			return nil
		},
	}
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
