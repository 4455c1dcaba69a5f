// Package config loads spritepack options from a TOML file.
//
// Keys the file leaves out keep their default values, so a file may carry
// just the settings it changes:
//
//	prefix = "sprites-[hash]"
//	extrude = true
//
//	[pack]
//	max_width = 2048
//	max_height = 2048
//	padding = 2
//	pow2 = true
//
//	[quantize]
//	enabled = true
//	quality = 85
//
//	[group]
//	threshold = 0.5
//	algorithm = "intersection"
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ironsheep/spritepack/internal/atlas"
	"github.com/ironsheep/spritepack/internal/errors"
)

// Load reads the TOML file at path over base and validates the result.
func Load(path string, base atlas.Options) (atlas.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data, base)
}

// Parse decodes TOML data over base. Unknown keys are rejected so a typo
// does not silently fall back to a default.
func Parse(data []byte, base atlas.Options) (atlas.Options, error) {
	opts := base
	md, err := toml.Decode(string(data), &opts)
	if err != nil {
		return base, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "invalid config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return base, errors.New(errors.ErrCodeInvalidConfiguration, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := opts.Validate(); err != nil {
		return base, err
	}
	return opts, nil
}
