package model

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/encoding/yaml"

	"github.com/ytdl-ui/ytdl/internal/service"

	_ "embed"
)

const (
	DefaultKillTimeout = "5s"
	DefaultParallel    = 2
)

//go:embed config.cue
var cueSource []byte

var (
	cueCtx *cue.Context
	schema cue.Value
)

func init() {
	if len(cueSource) == 0 {
		panic("variable cueSource is empty")
	}
	cueCtx = cuecontext.New()
	compiled := cueCtx.CompileBytes(cueSource)
	if compiled.Err() != nil {
		panic(compiled.Err())
	}

	if err := compiled.Validate(); err != nil {
		panic(err)
	}

	schema = compiled.LookupPath(cue.ParsePath("#Config"))
	if schema.Err() != nil {
		panic(schema.Err())
	}
	if err := schema.Validate(); err != nil {
		panic(err)
	}
}

type Config struct {
	Version     int      `json:"version" yaml:"version"` // fixed 0 for now
	DownloadDir string   `json:"download_dir,omitempty" yaml:"download_dir,omitempty"`
	Files       []string `json:"files,omitempty" yaml:"files,omitempty"`
	Ytdlp       Ytdlp    `json:"ytdlp" yaml:"ytdlp"`
	Service     Service  `json:"service" yaml:"service"`
}

// Ytdlp configures the yt-dlp invocation. Empty fields mean the defaults.
type Ytdlp struct {
	Binary      string `json:"binary,omitempty" yaml:"binary,omitempty"`
	Format      string `json:"format,omitempty" yaml:"format,omitempty"`
	Retries     int    `json:"retries,omitempty" yaml:"retries,omitempty"`
	KillTimeout string `json:"kill_timeout,omitempty" yaml:"kill_timeout,omitempty"` // 1m30s
}

type Service struct {
	Verbose  bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	Parallel int  `json:"parallel,omitempty" yaml:"parallel,omitempty"` // concurrent downloads
}

// DefaultConfig is stored on the first run when no config file exists.
func DefaultConfig() Config {
	var dir string
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, "Downloads", "ytdl")
	}
	return Config{
		Version:     0,
		DownloadDir: dir,
		Ytdlp: Ytdlp{
			Binary:      service.DefaultBinary,
			Format:      service.DefaultFormat,
			Retries:     service.DefaultRetries,
			KillTimeout: DefaultKillTimeout,
		},
		Service: Service{
			Parallel: DefaultParallel,
		},
	}
}

// KillTimeout returns the parsed ytdlp.kill_timeout, zero when unset.
func (c Config) KillTimeout() (time.Duration, error) {
	if c.Ytdlp.KillTimeout == "" {
		return 0, nil
	}
	d, err := ParseCueDuration(c.Ytdlp.KillTimeout)
	if err != nil {
		return 0, fmt.Errorf("ytdlp.kill_timeout %q: %w", c.Ytdlp.KillTimeout, err)
	}
	return d, nil
}

// LoadConfig validates YAML from r against CUE schema and decodes to Config.
func LoadConfig(r io.Reader) (Config, error) {
	yamlFile, err := yaml.Extract("config.yaml", r)
	if err != nil {
		return Config{}, err
	}
	yamlValue := cueCtx.BuildFile(yamlFile)

	unified := schema.Unify(yamlValue)
	if err := unified.Validate(
		cue.All(),          // all constraints
		cue.Concrete(true), // no incomplete values
	); err != nil {
		return Config{}, err
	}

	var out Config
	if err := unified.Decode(&out); err != nil {
		return Config{}, err
	}

	return out, nil
}
