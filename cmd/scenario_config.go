package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ScenarioConfig mirrors the YAML scenario file. Zero values mean "keep the
// flag value"; explicit CLI flags always win over the file. Seed is a pointer
// because 0 is a meaningful seed, not an unset marker.
type ScenarioConfig struct {
	Seed        *int64  `yaml:"seed"`
	Horizon     float64 `yaml:"horizon"`
	TSPLIB      string  `yaml:"tsplib"`
	NumNodes    int     `yaml:"num_nodes"`
	KNeighbors  int     `yaml:"k_neighbors"`
	NumTrucks   int     `yaml:"num_trucks"`
	NumOrders   int     `yaml:"num_orders"`
	OrderWindow float64 `yaml:"order_window"`
	Dispatch    string  `yaml:"dispatch"`
}

// LoadScenarioConfig parses a YAML scenario file.
func LoadScenarioConfig(path string) (*ScenarioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg ScenarioConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	logrus.Infof("Loaded scenario config from %s", path)
	return &cfg, nil
}

// Apply copies the file's settings onto the flag variables, skipping any flag
// the user set explicitly on the command line.
func (c *ScenarioConfig) Apply(cmd *cobra.Command) {
	if c.Seed != nil && !cmd.Flags().Changed("seed") {
		seed = *c.Seed
	}
	if c.Horizon > 0 && !cmd.Flags().Changed("horizon") {
		horizon = c.Horizon
	}
	if c.TSPLIB != "" && !cmd.Flags().Changed("tsplib") {
		tsplibPath = c.TSPLIB
	}
	if c.NumNodes > 0 && !cmd.Flags().Changed("num-nodes") {
		numNodes = c.NumNodes
	}
	if c.KNeighbors > 0 && !cmd.Flags().Changed("k-neighbors") {
		kNeighbors = c.KNeighbors
	}
	if c.NumTrucks > 0 && !cmd.Flags().Changed("num-trucks") {
		numTrucks = c.NumTrucks
	}
	if c.NumOrders > 0 && !cmd.Flags().Changed("num-orders") {
		numOrders = c.NumOrders
	}
	if c.OrderWindow > 0 && !cmd.Flags().Changed("order-window") {
		orderWindow = c.OrderWindow
	}
	if c.Dispatch != "" && !cmd.Flags().Changed("dispatch") {
		dispatch = c.Dispatch
	}
}
