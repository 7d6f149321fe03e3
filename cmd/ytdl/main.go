package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ytdl-ui/ytdl/internal/log"
	"github.com/ytdl-ui/ytdl/internal/model"
)

const (
	configEnv  = "YTDLCONFIG"
	configName = "ytdl.yaml"
)

// cli holds the state shared by the commands of one execution.
type cli struct {
	configPath string // actual config file used
	config     model.Config

	flagConfigFilePath string // value of --config flag
	flagVerbose        bool   // value of --verbose flag

	stderr *lockedWriter // shared by the logger and the progress bar
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		slog.Error("ytdl failed", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:          "ytdl",
		Short:        "Downloads videos with yt-dlp and reports their progress",
		SilenceUsage: true,
		// never print messages
		SilenceErrors: true,
		// parse or create a config, setup logging
		PersistentPreRunE: c.init,
	}

	rootCmd.PersistentFlags().StringVar(&c.flagConfigFilePath, "config", "", "Config file to load - default is "+configName+" in current directory or in the user config directory")
	rootCmd.PersistentFlags().BoolVar(&c.flagVerbose, "verbose", false, "verbose logging")

	rootCmd.AddCommand(c.downloadCmd())
	rootCmd.AddCommand(c.formatsCmd())
	rootCmd.AddCommand(c.versionCmd())
	return rootCmd
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "version provides version of a ytdl",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			info, ok := debug.ReadBuildInfo()
			if !ok {
				_, _ = fmt.Fprintln(out, "ytdl: version info not available")
				return
			}

			if c.configPath != "" {
				_, _ = fmt.Fprintf(out, "config: %s\n", c.configPath)
			}
			_, _ = fmt.Fprintf(out, "ytdl:   %s\n", info.Main.Version)
			_, _ = fmt.Fprintf(out, "go:     %s\n", info.GoVersion)
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					_, _ = fmt.Fprintf(out, "commit: %s\n", s.Value)
				case "vcs.time":
					_, _ = fmt.Fprintf(out, "date:   %s\n", s.Value)
				case "vcs.modified":
					_, _ = fmt.Fprintf(out, "dirty:  %s\n", s.Value)
				}
			}
		},
	}
}

func (c *cli) init(cmd *cobra.Command, _ []string) error {
	userConfigPath := ""
	if d, err := os.UserConfigDir(); err == nil {
		userConfigPath = filepath.Join(d, "ytdl")
	}

	explicit := true
	if envConfig := os.Getenv(configEnv); envConfig != "" {
		c.configPath = envConfig
	} else if c.flagConfigFilePath != "" {
		c.configPath = c.flagConfigFilePath
	} else {
		explicit = false
		for _, d := range []string{userConfigPath, "."} {
			if d == "" {
				continue
			}
			path := filepath.Join(d, configName)
			if exists(path) {
				c.configPath = path
				break
			}
		}
	}

	switch {
	case c.configPath != "":
		config, err := loadConfig(c.configPath)
		if explicit && errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", model.ErrConfigNotFound, c.configPath)
		}
		if err != nil {
			return err
		}
		c.config = config
	case userConfigPath != "":
		// store default configuration
		c.config = model.DefaultConfig()
		c.configPath = filepath.Join(userConfigPath, configName)
		if err := storeConfig(c.configPath, c.config); err != nil {
			return err
		}
	default:
		c.config = model.DefaultConfig()
	}

	// --verbose has a precedence over config file
	if c.flagVerbose {
		c.config.Service.Verbose = true
	}

	c.stderr = &lockedWriter{w: cmd.ErrOrStderr()}
	slog.SetDefault(log.New(c.stderr, c.config.Service.Verbose))
	slog.Debug("ytdl run", "configPath", c.configPath)
	slog.Debug("ytdl run", "config", c.config)
	return nil
}

func loadConfig(path string) (model.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Config{}, fmt.Errorf("opening config file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	config, err := model.LoadConfig(f)
	if err != nil {
		for _, d := range model.CueErrDetails(err) {
			slog.Error("invalid config", d.Attr("detail"))
		}
		return model.Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return config, nil
}

func storeConfig(path string, config model.Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	enc := yaml.NewEncoder(f)
	if err := enc.Encode(config); err != nil {
		return fmt.Errorf("storing configuration: %w", err)
	}
	return enc.Close()
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
