package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	coreconfig "github.com/enfoca-app/assist-api/core/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "assist-api",
	Short: "Conversational assistant API for the Enfoca ADHD productivity app",
	Long: `assist-api serves the in-app assistant: it answers productivity and
app-usage questions in Spanish, backed by a remote language model with a
response cache and deterministic offline fallbacks.`,
}

func init() {
	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initApp)
}

func initFlags() {
	rootCmd.PersistentFlags().StringP(
		"port", "p", "",
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolP(
		"debug", "d", false,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().String(
		"base-path", "",
		`base path for subpath deployment --base-path <string> | example: --base-path="/assist"`,
	)
	rootCmd.PersistentFlags().String(
		"trusted-proxies", "",
		`trusted proxy IP ranges for reverse proxy deployments --trusted-proxies <string> | example: --trusted-proxies="10.0.0.0/8,172.16.0.0/12"`,
	)

	_ = viper.BindPFlag("app_port", rootCmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag("app_debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("app_base_path", rootCmd.PersistentFlags().Lookup("base-path"))
	_ = viper.BindPFlag("app_trusted_proxies", rootCmd.PersistentFlags().Lookup("trusted-proxies"))
}

// initApp loads the .env/environment configuration and applies flag overrides.
func initApp() {
	cfg, err := coreconfig.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	if v := viper.GetString("app_port"); v != "" {
		cfg.App.Port = v
	}
	if viper.GetBool("app_debug") {
		cfg.App.Debug = true
	}
	if v := viper.GetString("app_base_path"); v != "" {
		cfg.App.BasePath = v
	}
	if v := viper.GetString("app_trusted_proxies"); v != "" {
		cfg.App.TrustedProxies = strings.Split(v, ",")
	}

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if cfg.Model.APIKey == "" {
		logrus.Warn("[APP] MODEL_API_KEY is empty, every query will degrade to offline answers")
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
