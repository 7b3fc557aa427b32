package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/spf13/cobra"

	"mapview/internal/config"
	"mapview/internal/engine/termengine"
	"mapview/internal/tui"
	"mapview/internal/urlstate"
	"mapview/internal/webservices"
)

type options struct {
	configPath string
	logFile    string
	verbose    bool
	linkFile   string
	serveAddr  string
	cellWidth  int
}

func main() {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "mapview [link]",
		Short:         "Terminal map viewer with shareable view links",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			link := ""
			if len(args) == 1 {
				link = args[0]
			}
			return fatal(run(opts, link))
		},
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML file with the style list and view defaults")
	rootCmd.Flags().StringVar(&opts.logFile, "log-file", filepath.Join(os.TempDir(), "mapview.log"), "where logs are written while the terminal is in use")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")
	rootCmd.Flags().StringVar(&opts.linkFile, "link-file", "", "file kept up to date with the current link")
	rootCmd.Flags().StringVar(&opts.serveAddr, "serve", "", "serve a read-only JSON view of the map on this address, e.g. localhost:9050")
	rootCmd.PersistentFlags().IntVar(&opts.cellWidth, "cell-width", 0, "terminal cell width in pixels, used for the layout breakpoints")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "styles",
		Short: "List the configured map styles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return fatal(err)
			}
			for i, s := range cfg.Styles {
				src := s.URL
				switch {
				case src == "":
					src = "(bundled)"
				case s.LocalFileMissing():
					src += " (file not found)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", i, s.ID, s.Label, src)
			}
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "link <link>",
		Short: "Normalise a link: unknown styles and bad numbers fall back to the defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return fatal(err)
			}
			codec := cfg.Codec()
			loc := urlstate.NewMemoryLocation(cfg.LinkBase, nil)
			loc.Replace(codec.Encode(codec.Decode(urlstate.ParseLink(args[0]))))
			fmt.Fprintln(cmd.OutOrStdout(), loc.Link())
			return nil
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func fatal(err errorsx.Error) error {
	if err == nil {
		return nil
	}
	fmt.Fprintf(os.Stderr, "%s\nStack:\n%s\n", err.Error(), err.Stack())
	return err
}

func loadConfig(opts *options) (*config.Config, errorsx.Error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err errorsx.Error
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			return nil, errorsx.Wrap(err, "path", opts.configPath)
		}
	}
	if opts.cellWidth > 0 {
		cfg.CellWidth = opts.cellWidth
	}
	return cfg, nil
}

func run(opts *options, link string) errorsx.Error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logFile, openErr := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if openErr != nil {
		return errorsx.Wrap(openErr, "logFile", opts.logFile)
	}
	defer logFile.Close()

	logLevel := logpkg.LogLevelInfo
	if opts.verbose {
		logLevel = logpkg.LogLevelDebug
	}
	logger := logpkg.NewLogger(logFile, logLevel)

	location := urlstate.NewMemoryLocation(cfg.LinkBase, urlstate.ParseLink(link))
	if opts.linkFile != "" {
		location.OnChange(func(link string) {
			if err := os.WriteFile(opts.linkFile, []byte(link+"\n"), 0644); err != nil {
				logger.Warn("could not write link file %q: %s", opts.linkFile, err)
			}
		})
	}

	var mirror *webservices.Mirror
	var server *http.Server
	if opts.serveAddr != "" {
		mirror = webservices.NewMirror()
		server = &http.Server{
			Addr:              opts.serveAddr,
			Handler:           webservices.NewRouter(logger, mirror),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("serving view on http://%s/api/view", opts.serveAddr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("view server stopped: %s", err)
			}
		}()
	}

	tuiOpts := tui.Options{
		Logger:   logger,
		Config:   cfg,
		Location: location,
		Factory: termengine.NewFactory(termengine.Options{
			Logger:     logger,
			HTTPClient: &http.Client{Timeout: 30 * time.Second},
			CellWidth:  cfg.CellWidth,
			CellHeight: cfg.CellHeight,
		}),
	}
	if mirror != nil {
		tuiOpts.Publisher = mirror
	}

	_, runErr := tea.NewProgram(tui.New(tuiOpts), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Warn("view server shutdown: %s", err)
		}
	}
	if runErr != nil {
		return errorsx.Wrap(runErr)
	}
	return nil
}
