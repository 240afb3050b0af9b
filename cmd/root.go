package cmd

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/mzalog/supply-chain-sim/sim"
	"github.com/mzalog/supply-chain-sim/sim/delay"
	"github.com/mzalog/supply-chain-sim/sim/graph"
	"github.com/mzalog/supply-chain-sim/sim/trace"

	"github.com/mzalog/supply-chain-sim/sim/observability"
)

var (
	// CLI flags for simulation configs
	seed        int64   // Master seed for all random subsystems
	horizon     float64 // Total simulation horizon (in minutes)
	logLevel    string  // Log verbosity level
	tsplibPath  string  // Path to a TSPLIB instance used to build the network
	numNodes    int     // Number of nodes for the random network builder
	kNeighbors  int     // Nearest neighbors connected per node
	numTrucks   int     // Number of trucks spawned at t=0
	numOrders   int     // Number of transport orders generated
	orderWindow float64 // Orders arrive uniformly in [0, orderWindow) minutes
	dispatch    string  // Dispatch strategy (first-idle, nearest-idle)

	// CLI flags for inputs and outputs
	scenarioPath string // YAML scenario file overriding flag defaults
	eventsCSV    string // Path for the executed-events CSV export
	metricsAddr  string // Listen address for the Prometheus /metrics endpoint
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "supply-chain-sim",
	Short: "Discrete-event simulator for logistics networks",
}

// simulateCmd executes the simulation using parameters from CLI flags
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the logistics simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		// .env values fill in flags the user did not set explicitly
		applyEnvDefaults(cmd)

		if scenarioPath != "" {
			cfg, err := LoadScenarioConfig(scenarioPath)
			if err != nil {
				logrus.Fatalf("unable to read scenario config: %v", err)
			}
			cfg.Apply(cmd)
		}

		key := sim.NewSimulationKey(seed)
		prng := sim.NewPartitionedRNG(key)

		network, err := buildNetwork(prng)
		if err != nil {
			logrus.Fatalf("unable to build network: %v", err)
		}
		logrus.Infof("Network ready: %d nodes, %d edges", network.NumNodes(), network.NumEdges())

		delays := delay.NewModel(prng.SeedFor(sim.SubsystemDelay), nil)

		opts := []sim.Option{sim.WithDispatchStrategy(dispatchStrategy())}

		var collector *observability.Collector
		if metricsAddr != "" {
			collector, err = observability.NewCollector(nil)
			if err != nil {
				logrus.Fatalf("unable to register metrics: %v", err)
			}
			opts = append(opts, sim.WithCollector(collector))
			go serveMetrics(metricsAddr, collector)
		}

		engine := sim.NewEngine(network, delays, opts...)

		scenario := sim.Scenario{
			NumTrucks:   numTrucks,
			NumOrders:   numOrders,
			OrderWindow: orderWindow,
		}
		if err := scenario.SeedEvents(engine, prng.ForSubsystem(sim.SubsystemScenario)); err != nil {
			logrus.Fatalf("unable to seed scenario: %v", err)
		}

		logrus.Infof("Starting simulation: seed=%d, horizon=%.0fmin, trucks=%d, orders=%d, dispatch=%s",
			seed, horizon, numTrucks, numOrders, dispatch)

		startTime := time.Now()
		if err := engine.Run(horizon); err != nil {
			logrus.Fatalf("simulation failed: %v", err)
		}

		engine.Metrics.Print(startTime)

		if eventsCSV != "" {
			records := trace.FromEvents(engine.ProcessedEvents())
			if err := trace.ExportCSV(eventsCSV, records); err != nil {
				logrus.Fatalf("unable to export events CSV: %v", err)
			}
			summary := trace.Summarize(records)
			logrus.Infof("Exported %d events (%d trucks active) to %s",
				summary.TotalEvents, summary.UniqueTrucks, eventsCSV)
		}

		logrus.Info("Simulation complete.")
	},
}

// buildNetwork constructs the road network from either a TSPLIB instance or
// the random builder, using the graph subsystem's RNG stream.
func buildNetwork(prng *sim.PartitionedRNG) (*graph.Network, error) {
	rng := prng.ForSubsystem(sim.SubsystemGraph)
	if tsplibPath != "" {
		cfg := graph.TSPLIBConfig{KNeighbors: kNeighbors}
		return graph.NewTSPLIBNetwork(tsplibPath, cfg, rng)
	}
	cfg := graph.RandomConfig{NumNodes: numNodes, KNeighbors: kNeighbors}
	return graph.NewRandomNetwork(cfg, rng)
}

func dispatchStrategy() sim.DispatchStrategy {
	switch dispatch {
	case "nearest-idle":
		return sim.NearestIdle{}
	case "first-idle":
		return sim.FirstIdle{}
	default:
		logrus.Warnf("Unknown dispatch strategy %q, falling back to first-idle", dispatch)
		return sim.FirstIdle{}
	}
}

func serveMetrics(addr string, collector *observability.Collector) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	logrus.Infof("Serving Prometheus metrics on %s/metrics", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logrus.Errorf("metrics server stopped: %v", err)
	}
}

// applyEnvDefaults loads a .env file (if present) and fills in flags the user
// left at their defaults. Explicit flags always win over the environment.
func applyEnvDefaults(cmd *cobra.Command) {
	_ = godotenv.Load()

	if v := os.Getenv("SIM_SEED"); v != "" && !cmd.Flags().Changed("seed") {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			seed = parsed
		}
	}
	if v := os.Getenv("SIM_TSPLIB"); v != "" && !cmd.Flags().Changed("tsplib") {
		tsplibPath = v
	}
	if v := os.Getenv("SIM_EVENTS_CSV"); v != "" && !cmd.Flags().Changed("events-csv") {
		eventsCSV = v
	}
	if v := os.Getenv("SIM_METRICS_ADDR"); v != "" && !cmd.Flags().Changed("metrics-addr") {
		metricsAddr = v
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {

	simulateCmd.Flags().Int64Var(&seed, "seed", 42, "Master seed for random network, delays and scenario generation")
	simulateCmd.Flags().Float64Var(&horizon, "horizon", 10080, "Total simulation horizon (in minutes)")
	simulateCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Network configs
	simulateCmd.Flags().StringVar(&tsplibPath, "tsplib", "", "Path to a TSPLIB instance (builds a geographic network)")
	simulateCmd.Flags().IntVar(&numNodes, "num-nodes", 15, "Number of nodes for the random network builder")
	simulateCmd.Flags().IntVar(&kNeighbors, "k-neighbors", 3, "Nearest neighbors connected per node")

	// Scenario configs
	simulateCmd.Flags().IntVar(&numTrucks, "num-trucks", 10, "Number of trucks spawned at t=0")
	simulateCmd.Flags().IntVar(&numOrders, "num-orders", 30, "Number of transport orders generated")
	simulateCmd.Flags().Float64Var(&orderWindow, "order-window", 1200, "Orders arrive uniformly in [0, window) minutes")
	simulateCmd.Flags().StringVar(&dispatch, "dispatch", "first-idle", "Dispatch strategy (first-idle, nearest-idle)")

	// Inputs and outputs
	simulateCmd.Flags().StringVar(&scenarioPath, "scenario", "", "YAML scenario file overriding flag defaults")
	simulateCmd.Flags().StringVar(&eventsCSV, "events-csv", "", "Path for the executed-events CSV export")
	simulateCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Listen address for the Prometheus /metrics endpoint")

	// Attach `simulate` as a subcommand to `root`
	rootCmd.AddCommand(simulateCmd)
}
