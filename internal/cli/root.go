// Package cli implements the bankdesk command line: an interactive chat REPL
// with an approval prompt for sensitive operations, and a seed command for
// the demo database.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seybold/bankdesk/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "bankdesk",
	Short: "bankdesk is a conversational banking assistant",
	Long: `bankdesk orchestrates a team of banking assistants: a primary assistant
routes each request to trading, account or digital banking specialists, and
sensitive operations (trades, transfers) wait for your explicit approval.`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default searches ./config.yaml and $HOME/.bankdesk/config.yaml)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}
