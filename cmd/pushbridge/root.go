package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "PUSHBRIDGE"

// cli holds what every subcommand shares.
type cli struct {
	v      *viper.Viper
	logger zerolog.Logger
	out    io.Writer
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New(), out: os.Stderr}

	var configFile string
	root := &cobra.Command{
		Use:           "pushbridge",
		Short:         "Push notification bridge playground",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.loadConfig(configFile); err != nil {
				return err
			}
			c.logger = c.newLogger()
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file with plugin preferences (yaml, json or toml)")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "console", "log format: console or json")
	flags.BoolP("verbose", "v", false, "shortcut for --log-level=debug")
	cobra.CheckErr(c.v.BindPFlag("log_level", flags.Lookup("log-level")))
	cobra.CheckErr(c.v.BindPFlag("log_format", flags.Lookup("log-format")))
	cobra.CheckErr(c.v.BindPFlag("verbose", flags.Lookup("verbose")))

	root.AddCommand(newServeCmd(c), newListenCmd(c))
	return root
}

// loadConfig reads .env files, the environment and the optional config file,
// in that order of increasing precedence below flags.
func (c *cli) loadConfig(configFile string) error {
	for _, f := range []string{".env", ".env.local"} {
		_ = godotenv.Load(f)
	}

	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	c.v.AutomaticEnv()

	if configFile == "" {
		return nil
	}
	c.v.SetConfigFile(configFile)
	if err := c.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", configFile, err)
	}
	return nil
}

func (c *cli) newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.v.GetString("log_level"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if c.v.GetBool("verbose") {
		level = zerolog.DebugLevel
	}

	out := c.out
	if c.v.GetString("log_format") != "json" {
		out = zerolog.ConsoleWriter{Out: c.out, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
