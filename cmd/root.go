package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tanq16/resumer/internal/config"
	"github.com/tanq16/resumer/internal/output"
	"github.com/tanq16/resumer/internal/utils"
)

var (
	configPath    string
	debug         bool
	timeout       time.Duration
	kaTimeout     time.Duration
	userAgent     string
	proxyURL      string
	proxyUsername string
	proxyPassword string
	interval      time.Duration
	retries       int

	globalConfig config.Config
)

var ResumerVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "resumer",
	Short:   "Resumer is a pausable, resumable single-file HTTP downloader",
	Version: ResumerVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		utils.InitLogger(debug)
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd, &cfg)
		globalConfig = cfg
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// applyFlags lets explicitly set flags override config file values.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("keep-alive-timeout") {
		cfg.KATimeout = kaTimeout
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent = userAgent
	}
	if flags.Changed("proxy") {
		cfg.ProxyURL = proxyURL
	}
	if flags.Changed("proxy-username") {
		cfg.ProxyUsername = proxyUsername
	}
	if flags.Changed("proxy-password") {
		cfg.ProxyPassword = proxyPassword
	}
	if flags.Changed("interval") {
		cfg.ProgressInterval = interval
	}
	if flags.Changed("retries") {
		cfg.Retries = retries
	}
	cfg.ProxyURL, cfg.ProxyUsername, cfg.ProxyPassword = splitProxyAuth(cfg.ProxyURL, cfg.ProxyUsername, cfg.ProxyPassword)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.PrintError(fmt.Sprintf("Error: %v", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 3*time.Minute, "Connection timeout (eg. 5s, 10m)")
	rootCmd.PersistentFlags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", 90*time.Second, "Keep-alive timeout for client (eg. 10s, 1m, 80s)")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", utils.DefaultUserAgent, "User agent")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.PersistentFlags().StringVar(&proxyUsername, "proxy-username", "", "Proxy username (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringVar(&proxyPassword, "proxy-password", "", "Proxy password (if not provided in proxy URL)")
	rootCmd.PersistentFlags().DurationVar(&interval, "interval", utils.DefaultProgressInterval, "Time between progress updates and pause/abort checks")
	rootCmd.PersistentFlags().IntVarP(&retries, "retries", "r", 0, "Retries when the server rate limits the download")

	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newCleanCmd())
}
