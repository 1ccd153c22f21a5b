package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"chatterdash/config"
	"chatterdash/internal/chatlog"
	"chatterdash/internal/mentions"
	"chatterdash/internal/store"
	"chatterdash/internal/webui"
)

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Start the Chatterdash dashboard server",
	Long: `Start the Chatterdash dashboard server which provides:
- Background mention synchronization against the chat-log service
- A durable local mention cache surviving restarts
- Web API for the browser dashboard (mentions, alerts, preferences)`,
	Run: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)

	dashboardCmd.Flags().String("listen", "", "dashboard server listen address")
	dashboardCmd.Flags().String("chatlog", "", "chat-log service base URL")
	dashboardCmd.Flags().String("db-type", "", "cache store type: sqlite or postgres")
	dashboardCmd.Flags().String("sqlite-path", "", "sqlite database path")

	viper.BindPFlag("dashboard.listen", dashboardCmd.Flags().Lookup("listen"))
	viper.BindPFlag("chatlog.url", dashboardCmd.Flags().Lookup("chatlog"))
	viper.BindPFlag("database.type", dashboardCmd.Flags().Lookup("db-type"))
	viper.BindPFlag("database.sqlite_path", dashboardCmd.Flags().Lookup("sqlite-path"))
}

func runDashboard(cmd *cobra.Command, args []string) {
	cfg := loadProcessConfig()
	cfg.MergeHeaders()

	fmt.Println("🚀 Starting Chatterdash...")
	fmt.Printf("   Chat-log service: %s\n", cfg.Chatlog.URL)
	fmt.Printf("   Listen: %s\n", cfg.Dashboard.Listen)
	fmt.Printf("   Cache store: %s\n", cfg.Database.Type)

	client := chatlog.NewClientFromConfig(cfg.Chatlog)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := client.TestConnection(ctx); err != nil {
		log.Printf("Warning: chat-log service not reachable yet: %v", err)
	}
	cancel()

	st, err := store.NewStore(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open cache store: %v", err)
	}
	defer st.Close()

	engine := mentions.NewEngine(client, st)

	scheduler := mentions.NewScheduler()
	syncTask := func(ctx context.Context) error {
		_, err := engine.Sync(ctx)
		return err
	}
	restart := func(intervalSeconds int) {
		scheduler.Restart(time.Duration(intervalSeconds)*time.Second, syncTask)
	}

	userCfg := engine.Config()
	scheduler.Start(time.Duration(userCfg.PollIntervalSeconds)*time.Second, syncTask)
	defer scheduler.Stop()

	if userCfg.Identity == "" {
		fmt.Println("   No identity configured yet; mention sync idles until one is saved")
	} else {
		fmt.Printf("   Watching mentions of: %s (every %ds)\n", userCfg.Identity, userCfg.PollIntervalSeconds)
	}

	router := webui.SetupRouter(engine, restart, cfg.Dashboard.AllowedOrigins)

	fmt.Printf("Visit http://localhost%s to view the dashboard\n", cfg.Dashboard.Listen)

	if err := router.Run(cfg.Dashboard.Listen); err != nil {
		log.Fatalf("Failed to start dashboard server: %v", err)
	}
}

// loadProcessConfig loads the JSON config file and applies flag/env
// overrides resolved through viper.
func loadProcessConfig() *config.Config {
	path := cfgFile
	if path == "" {
		path = config.GetConfigPath()
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Printf("Warning: failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}

	if v := viper.GetString("dashboard.listen"); v != "" {
		cfg.Dashboard.Listen = v
	}
	if v := viper.GetString("chatlog.url"); v != "" {
		cfg.Chatlog.URL = v
	}
	if v := viper.GetString("database.type"); v != "" {
		cfg.Database.Type = v
	}
	if v := viper.GetString("database.sqlite_path"); v != "" {
		cfg.Database.SQLitePath = v
	}

	return cfg
}
