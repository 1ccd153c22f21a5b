package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "chatterdash",
		Short: "Chatterdash - trade chat mention dashboard",
		Long: `Chatterdash polls a remote chat-log service for per-user mention
notifications, reconciles them into a durable local cache, and serves
a browser dashboard with read/unread tracking and new-mention alerts.`,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// With no subcommand, run the dashboard
	if len(os.Args) == 1 || (len(os.Args) > 1 && strings.HasPrefix(os.Args[1], "-")) {
		os.Args = append([]string{os.Args[0], "dashboard"}, os.Args[1:]...)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/chatterdash/config.json)")
}

// initConfig reads in config file and ENV variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home + "/.config/chatterdash")
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("CHATTERDASH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
