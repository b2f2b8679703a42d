// Package commands implements the CLI commands for fundscrape.
package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/fundscrape/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "fundscrape",
	Short: "Export funded project listings from fund.cingta.com",
	Long: `Fundscrape opens the fund.cingta.com project search in a real browser,
pages through the results for a keyword and range of award years, and
writes every project to a CSV, JSON, JSONL or YAML file.

The site only shows full results to signed-in users. On first use the
browser window stays open for --wait seconds so you can log in; the
session cookies are then saved and reused on later runs.

Examples:
  # Default search (电动汽车, 2022-2026)
  fundscrape scrape

  # Another keyword and year range
  fundscrape scrape -k 储能 -s 2020 -e 2024

  # Allow a full minute for the manual login
  fundscrape scrape -k 氢能 -w 60`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults(viper.GetViper())

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.fundscrape.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".fundscrape")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("FUNDSCRAPE")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
