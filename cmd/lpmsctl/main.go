// Command lpmsctl is the property manager's console: it lists properties,
// edits them through the validated edit form and logs unit maintenance.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lpms-app/lpms/internal/client"
	"github.com/lpms-app/lpms/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	configPath string
	apiBaseURL string
	devSub     string
	logLevel   string
	debug      bool

	cfg *config.Config
	api *apiClients
)

// apiClients are the resource clients sharing one transport
type apiClients struct {
	http         *client.HTTPClient
	properties   *client.PropertyClient
	maintenances *client.MaintenanceClient
}

func newAPIClients(c *config.Config) *apiClients {
	var opts []client.Option
	if c.Token != "" {
		opts = append(opts, client.WithToken(c.Token))
	} else if c.DevSub != "" {
		opts = append(opts, client.WithDebugSub(c.DevSub))
	}
	hc := client.NewHTTPClient(c.APIBaseURL, opts...)
	return &apiClients{
		http:         hc,
		properties:   client.NewPropertyClient(hc),
		maintenances: client.NewMaintenanceClient(hc),
	}
}

var rootCmd = &cobra.Command{
	Use:           "lpmsctl",
	Short:         "Manage properties, units and maintenance records",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
		setupLogging(cfg)
		api = newAPIClients(cfg)

		log.Debug().
			Str("apiBaseUrl", cfg.APIBaseURL).
			Bool("authenticated", cfg.Authenticated()).
			Msg("configuration loaded")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api", "", "API base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&devSub, "dev-sub", "", "Send X-Debug-Sub instead of a bearer token (dev servers only)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(propertiesCmd, propertyCmd, maintenancesCmd, maintenanceCmd, themeCmd, linksCmd)
}

// loadConfig loads file and environment settings, then applies flag
// overrides before validating
func loadConfig() (*config.Config, error) {
	c, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if apiBaseURL != "" {
		c.APIBaseURL = apiBaseURL
	}
	if devSub != "" {
		c.DevSub = devSub
	}
	if debug {
		c.Debug = true
		if logLevel == "" {
			c.LogLevel = "debug"
		}
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return c, nil
}

// setupLogging configures the global logger; output goes to stderr so
// command output stays pipeable
func setupLogging(c *config.Config) {
	zerolog.SetGlobalLevel(parseLogLevel(c.LogLevel))

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    c.Theme == config.ThemeLight,
	})
	if c.Debug {
		log.Logger = log.Logger.With().Caller().Logger()
	}
}

func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
