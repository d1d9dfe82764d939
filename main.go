package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"themeplane/api"
	"themeplane/config"
	"themeplane/theme"
)

var appVersion = "0.1.0"

// options holds the flags shared by every command.
type options struct {
	configPath string
	themesDir  string
	role       string
	listen     string
	listenPort int
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "themeplane",
		Short:         "themeplane – theme catalog and settings loader",
		Long:          "Themeplane loads theme folders, validates their config and field definitions, and serves them to a web UI.",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.FileName, "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&opts.themesDir, "themes-dir", "", "Directory holding one folder per theme (default: themes/theme_files)")
	rootCmd.PersistentFlags().StringVar(&opts.role, "role", "", "Field file to load: settings or templates (default: settings)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the theme API",
		Long:  "Serve the theme catalog, theme records and live value previews over HTTP and WebSocket.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	serveCmd.Flags().StringVar(&opts.listen, "listen", "all", "IP address to listen on (default: all)")
	serveCmd.Flags().IntVar(&opts.listenPort, "listen-port", 8080, "Port to listen on (default: 8080)")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Manage themeplane configuration files.",
	}
	configGenerateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a default configuration file",
		Long:  "Generate a default themeplane.toml at the --config path.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGenerate(cmd, opts)
		},
	}
	configCmd.AddCommand(configGenerateCmd)

	rootCmd.AddCommand(serveCmd, configCmd)
	rootCmd.AddCommand(newListCommand(opts))
	rootCmd.AddCommand(newShowCommand(opts))
	rootCmd.AddCommand(newDefaultsCommand(opts))
	rootCmd.AddCommand(newResolveCommand(opts))
	rootCmd.AddCommand(newValidateCommand(opts))

	return rootCmd
}

// loadConfig reads the config file and applies flags that were set explicitly.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	if cmd.Flags().Changed("themes-dir") {
		cfg.ThemesDir = opts.themesDir
	}
	if cmd.Flags().Changed("role") {
		cfg.Role = opts.role
	}
	listenChanged := cmd.Flags().Changed("listen")
	portChanged := cmd.Flags().Changed("listen-port")
	if listenChanged || portChanged {
		cfg.ListenAddr = overrideListenAddr(cfg.ListenAddr, opts, listenChanged, portChanged)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// overrideListenAddr replaces the host or port of current with the flag
// values that were set, keeping the other half from the config.
func overrideListenAddr(current string, opts *options, listenChanged, portChanged bool) string {
	host, port, err := net.SplitHostPort(current)
	if err != nil {
		host, port, _ = net.SplitHostPort(config.Default().ListenAddr)
	}
	if listenChanged {
		host = opts.listen
		if host == "all" {
			host = ""
		}
	}
	if portChanged {
		port = strconv.Itoa(opts.listenPort)
	}
	return net.JoinHostPort(host, port)
}

func newRepository(cfg config.Config) (*theme.Repository, error) {
	role, err := cfg.ThemeRole()
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(cfg.ThemesDir)
	if err != nil {
		return nil, fmt.Errorf("resolve themes dir: %w", err)
	}
	return theme.NewRepository(root, role), nil
}

func openRepository(cmd *cobra.Command, opts *options) (*theme.Repository, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}
	return newRepository(cfg)
}

func runServe(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	repo, err := newRepository(cfg)
	if err != nil {
		return err
	}

	if _, err := repo.Folders(cmd.Context()); err != nil {
		log.Printf("warning: themes dir not readable yet: %v", err)
	}
	log.Printf("serving %s themes from %s", repo.Role(), repo.Root())

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mux := http.NewServeMux()
	apiServer := api.NewServer(repo, cfg.AllowedOrigins)
	apiServer.Register(mux)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           apiServer.Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printListeningAddresses(cfg.ListenAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	return nil
}

func runConfigGenerate(cmd *cobra.Command, opts *options) error {
	cfgPath, err := filepath.Abs(opts.configPath)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("config file already exists: %s", cfgPath)
	}

	cfg := config.Default()
	if cmd.Flags().Changed("themes-dir") {
		cfg.ThemesDir = opts.themesDir
	}
	if cmd.Flags().Changed("role") {
		cfg.Role = opts.role
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Generated default config file: %s\n", cfgPath)
	return nil
}

func printListeningAddresses(addr string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		log.Printf("listening on http://%s", addr)
		return
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		addrs, err := net.InterfaceAddrs()
		if err == nil {
			log.Println("listening on:")
			for _, a := range addrs {
				if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
					if ipnet.IP.To4() != nil {
						log.Printf("  http://%s:%s", ipnet.IP.String(), port)
					}
				}
			}
			log.Printf("  http://localhost:%s", port)
		} else {
			log.Printf("listening on http://0.0.0.0:%s", port)
		}
	} else {
		log.Printf("listening on http://%s:%s", host, port)
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
