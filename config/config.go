// Package config reads and writes the on-disk topology file: the
// `ifaces`/`prob` document the non-core loader hands off to
// [wmediumd.NewTopology].
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wmediumd-go/wmediumd"
)

// Ifaces is the `ifaces` group: the dense list of radio addresses.
type Ifaces struct {
	Count int      `yaml:"count"`
	IDs   []string `yaml:"ids"`
}

// Prob is the `prob` group: the R loss matrices, each row-major over
// Count*Count entries.
type Prob struct {
	Rates      int         `yaml:"rates"`
	MatrixList [][]float64 `yaml:"matrix_list"`
}

// Config is the on-disk document shape.
type Config struct {
	Ifaces Ifaces `yaml:"ifaces"`
	Prob   Prob   `yaml:"prob"`
}

// ErrConfigInvalid indicates a malformed topology file: bad MAC string,
// count/rates mismatch, or a matrix of the wrong shape. Fatal at startup.
var ErrConfigInvalid = errors.New("config: invalid topology configuration")

// Load reads path, validates it, and builds a [wmediumd.Topology].
func Load(path string) (*wmediumd.Topology, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigInvalid, err.Error())
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigInvalid, err.Error())
	}

	if cfg.Ifaces.Count != len(cfg.Ifaces.IDs) {
		return nil, fmt.Errorf(
			"%w: ifaces.count=%d but %d ids given", ErrConfigInvalid, cfg.Ifaces.Count, len(cfg.Ifaces.IDs),
		)
	}
	if cfg.Prob.Rates != len(cfg.Prob.MatrixList) {
		return nil, fmt.Errorf(
			"%w: prob.rates=%d but %d matrices given", ErrConfigInvalid, cfg.Prob.Rates, len(cfg.Prob.MatrixList),
		)
	}

	addresses := make([]wmediumd.Address, len(cfg.Ifaces.IDs))
	for i, id := range cfg.Ifaces.IDs {
		addr, err := wmediumd.ParseAddress(id)
		if err != nil {
			return nil, fmt.Errorf("%w: ifaces.ids[%d]: %s", ErrConfigInvalid, i, err.Error())
		}
		addresses[i] = addr
	}

	topology, err := wmediumd.NewTopology(wmediumd.TopologyConfig{
		Addresses: addresses,
		Rates:     cfg.Prob.Rates,
		Loss:      cfg.Prob.MatrixList,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigInvalid, err.Error())
	}
	return topology, nil
}

// WriteSample writes to path a config with ifaceCount radios at sequential
// addresses "42:00:00:00:0N:00" and rates all-zero loss matrices (every
// attempt succeeds), matching wmediumd.c's write_config default. rates
// defaults to [wmediumd.NumRates] when 0.
func WriteSample(path string, ifaceCount int, rates int) error {
	if rates == 0 {
		rates = wmediumd.NumRates
	}

	ids := make([]string, ifaceCount)
	for i := range ids {
		ids[i] = fmt.Sprintf("42:00:00:00:%02x:00", i)
	}

	matrixList := make([][]float64, rates)
	for r := range matrixList {
		matrixList[r] = make([]float64, ifaceCount*ifaceCount)
	}

	cfg := Config{
		Ifaces: Ifaces{Count: ifaceCount, IDs: ids},
		Prob:   Prob{Rates: rates, MatrixList: matrixList},
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal sample: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("config: write sample: %w", err)
	}
	return nil
}
