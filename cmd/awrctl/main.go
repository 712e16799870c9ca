// Command awrctl drives the AWR/ASH analysis pipeline from the command
// line, as the external transport spec.md §6 deliberately keeps outside
// the core pipeline's own contract.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dbaworks/awr-advisor/internal/config"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:   "awrctl",
		Short: "Analyze Oracle AWR/ASH HTML reports and recommend SQL tuning actions",
		Long: `awrctl analyzes Oracle AWR and ASH HTML reports and recommends SQL
tuning actions for the handful of SQL statements actually worth a DBA's
time, instead of every statement in the workload.`,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a config file overlaying environment variables")

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newSnapshotCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig binds an optional config file through viper, promoting each
// key into the environment before deferring to config.Load for the
// teacher's own env-var-driven loading and validation.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %q: %w", cfgFile, err)
		}
		for _, key := range viper.AllKeys() {
			envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
			if os.Getenv(envKey) == "" {
				os.Setenv(envKey, viper.GetString(key))
			}
		}
	}
	viper.AutomaticEnv()
	return config.Load()
}
