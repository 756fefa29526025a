package cmd

import (
	"fmt"

	"github.com/mattsolo1/grove-core/config"
	"github.com/mitchellh/go-homedir"
)

//go:generate sh -c "cd .. && go run ./tools/schema-generator/"

// TryConfig defines the structure for the 'try' section in grove.yml.
type TryConfig struct {
	JobsFile  string   `yaml:"jobs_file" jsonschema:"description=Job description file (JSON or YAML); the built-in table is used when empty"`
	Manifest  string   `yaml:"manifest" jsonschema:"description=Test manifest used by autotry to map paths to flavors"`
	VCS       string   `yaml:"vcs" jsonschema:"enum=auto,enum=hg,enum=git,default=auto"`
	TryRemote string   `yaml:"try_remote" jsonschema:"description=git-cinnabar remote for the try server"`
	Echo      bool     `yaml:"echo" jsonschema:"description=Print the try message instead of pushing it"`
	Filters   []string `yaml:"filters" jsonschema:"description=Glob patterns limiting which jobs are offered"`
}

// loadTryConfig loads the grove config hierarchy from dir and unmarshals the
// 'try' extension. A missing grove.yml yields an empty config.
func loadTryConfig(dir string) (*TryConfig, error) {
	coreCfg, err := config.LoadFrom(dir)
	if err != nil {
		// It's okay if the core config doesn't exist, we'll just use an empty one.
		coreCfg = &config.Config{}
	}

	var tryCfg TryConfig
	if err := coreCfg.UnmarshalExtension("try", &tryCfg); err != nil {
		return nil, fmt.Errorf("failed to parse 'try' configuration from grove.yml: %w", err)
	}

	if err := tryCfg.expandPaths(); err != nil {
		return nil, err
	}
	return &tryCfg, nil
}

func (c *TryConfig) expandPaths() error {
	for _, p := range []*string{&c.JobsFile, &c.Manifest} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expanding %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// pick returns flag when it was set, the configured value otherwise.
func pick(flag, configured string) string {
	if flag != "" {
		return flag
	}
	return configured
}
