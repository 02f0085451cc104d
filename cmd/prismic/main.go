package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/prismic-go/cmd/prismic/commands"
	"github.com/fivetwenty-io/prismic-go/internal/constants"
	"github.com/fivetwenty-io/prismic-go/pkg/prismicclient"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "prismic",
	Short: "Content repository API CLI",
	Long: `A command-line interface for inspecting content repository APIs.

This CLI fetches a repository root document and shows its refs, forms,
bookmarks and experiments, runs searches and resolves preview tokens.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.prismic/config.yml)")
	rootCmd.PersistentFlags().StringP("endpoint", "e", "", "repository API endpoint URL")
	rootCmd.PersistentFlags().StringP("token", "t", "", "repository access token")
	rootCmd.PersistentFlags().String("proxy", "", "proxy URL for every request")
	rootCmd.PersistentFlags().String("output", constants.FormatTable, "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("cache", "memory", "cache backend (memory, nats, tiered, none)")
	rootCmd.PersistentFlags().String("nats-url", "", "NATS server URL for the nats and tiered caches")
	rootCmd.PersistentFlags().Int("retries", constants.DefaultRetryMax, "retries for transient failures")

	// Bind flags to viper
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	_ = viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("proxy", rootCmd.PersistentFlags().Lookup("proxy"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("cache", rootCmd.PersistentFlags().Lookup("cache"))
	_ = viper.BindPFlag("nats_url", rootCmd.PersistentFlags().Lookup("nats-url"))
	_ = viper.BindPFlag("retries", rootCmd.PersistentFlags().Lookup("retries"))

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewAPICommand())
	rootCmd.AddCommand(commands.NewRefsCommand())
	rootCmd.AddCommand(commands.NewFormsCommand())
	rootCmd.AddCommand(commands.NewBookmarksCommand())
	rootCmd.AddCommand(commands.NewExperimentsCommand())
	rootCmd.AddCommand(commands.NewSearchCommand())
	rootCmd.AddCommand(commands.NewPreviewCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".prismic")

		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("PRISMIC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	err := rootCmd.Execute()

	prismicclient.Close()

	if err != nil {
		fmt.Fprintln(os.Stderr, commands.DescribeError(err))
		os.Exit(1)
	}
}
