// Package cli provides the command-line interface for the blog agent.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/lisanmuaddib/blog-agent/pkg/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

var (
	cfgFile string
	logger  = logrus.StandardLogger()
)

var rootCmd = &cobra.Command{
	Use:   "agent",
	Short: "Write new blog posts in the voice of an existing blog",
	Long: `agent samples posts from a source blog, asks a language model for a new post
in the same voice and publishes it with links back to the posts it was based on.

Example:
  agent post --source staff --blog my-experiments --mood wistful`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogger,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "agent %s (%s)\n", Version, Commit)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .blog-agent.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json (overrides LOG_FORMAT)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		cwd, err := os.Getwd()
		if err == nil {
			viper.AddConfigPath(cwd)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".blog-agent")
	}

	viper.SetEnvPrefix("AGENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}
}

func setupLogger(_ *cobra.Command, _ []string) error {
	config := logging.NewConfig()
	if level := viper.GetString("log.level"); level != "" {
		config.Level = level
	}
	if format := viper.GetString("log.format"); format != "" {
		config.Format = format
	}
	config.Fields = logrus.Fields{"run_id": uuid.NewString()}

	logger = logging.New(config)
	if used := viper.ConfigFileUsed(); used != "" {
		logger.WithField("config_file", used).Debug("Using config file")
	}
	return nil
}

// Execute runs the root command. Terminal errors are logged before being
// returned so the caller only has to pick the exit status.
func Execute(ctx context.Context) error {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.WithError(err).Error("Agent stopped with error")
		return err
	}
	return nil
}
