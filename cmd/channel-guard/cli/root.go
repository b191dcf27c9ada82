package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/channelguard/channel-guard/internal/config"
	"github.com/channelguard/channel-guard/pkg"
)

const (
	defaultConfigDir      = ".channel-guard"
	defaultConfigFileName = "config.yml"
	configPathEnv         = "CHANNEL_GUARD_CONFIG"
)

var cfgPath string

func NewRootCmd() (*cobra.Command, error) {
	homePath, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	defaultConfigPath := pkg.Getenv(configPathEnv, getDefaultConfigFile(homePath, defaultConfigFileName))

	rootCmd := &cobra.Command{
		Use:           "channel-guard",
		Short:         "Protects a Lightning channel's outbound liquidity with fee and max_htlc policies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(StartCmd())
	rootCmd.AddCommand(ShowStateCmd())
	rootCmd.AddCommand(ResetStateCmd())
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath, fmt.Sprintf("config file (default %s)", defaultConfigPath))

	return rootCmd, nil
}

// Execute runs the command line. Cancelling ctx stops a running guard cleanly.
func Execute(ctx context.Context) error {
	rootCmd, err := NewRootCmd()
	if err != nil {
		return err
	}

	return rootCmd.ExecuteContext(ctx)
}

func getDefaultConfigFile(homePath, filename string) string {
	return filepath.Join(homePath, defaultConfigDir, filename)
}

func GetConfigPath() string {
	return cfgPath
}

// flagKeys maps command line flags to their configuration keys.
var flagKeys = map[string]string{
	"lower_threshold":       "guard.lower-threshold",
	"upper_threshold":       "guard.upper-threshold",
	"liquidity_floor":       "guard.liquidity-floor",
	"blocker_ppm":           "guard.blocker-ppm",
	"htlc_change_threshold": "guard.htlc-change-threshold",
	"poll_interval":         "poller.interval",
}

// loadConfig reads the config file and environment, with flags set on cmd
// taking precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	return config.Load(v, GetConfigPath())
}
