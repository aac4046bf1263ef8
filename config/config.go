package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Joiy908/Nand2Tetris/assembler"
)

// DefaultPath is read when no --config flag is given. It is optional.
const DefaultPath = "hackasm.json"

type Config struct {
	AllowLabelRedefinition bool   `json:"allowLabelRedefinition"`
	OutputExtension        string `json:"outputExtension"`
	Binary                 bool   `json:"binary"`
	LanguageServerAddr     string `json:"languageServerAddr"`
	WebAddr                string `json:"webAddr"`
	CycleLimit             uint64 `json:"cycleLimit"`
}

func Default() Config {
	return Config{
		OutputExtension:    ".hack",
		LanguageServerAddr: ":2035",
		WebAddr:            ":2036",
		CycleLimit:         10_000_000,
	}
}

// Load reads a JSON config on top of the defaults. A missing file is only an error when required is set.
func Load(path string, required bool) (Config, error) {
	conf := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return conf, nil
		}
		return conf, err
	}

	if err := json.Unmarshal(b, &conf); err != nil {
		return conf, fmt.Errorf("error unmarshalling %s: %w", path, err)
	}
	if conf.OutputExtension == "" {
		conf.OutputExtension = Default().OutputExtension
	}
	return conf, nil
}

func (c Config) Assembler() assembler.AssemblerConfig {
	return assembler.AssemblerConfig{AllowLabelRedefinition: c.AllowLabelRedefinition}
}
