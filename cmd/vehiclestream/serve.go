package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"vehiclestream/internal/admin"
	"vehiclestream/internal/broadcast"
	"vehiclestream/internal/config"
	"vehiclestream/internal/logging"
	"vehiclestream/internal/sim"
	"vehiclestream/internal/stats"
)

const envPrefix = "VEHICLESTREAM"

var (
	serveConfigPath string
	serveSchemaPath string
	servePrintStats bool
	serveStatsFile  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulator and the WebSocket stream",
	Long:  "serve advances the fleet on a fixed tick and pushes the whole fleet to every connected WebSocket client on a fixed send interval.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd.Flags(), serveConfigPath, serveSchemaPath)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg, servePrintStats, serveStatsFile)
	},
}

// runServe runs the simulator, the stats reporter, the optional admin UI and
// the stream listener until ctx is done or the listener fails. It returns
// only after every goroutine it started has exited, so the stats sinks are
// closed after the reporter's final row.
func runServe(ctx context.Context, cfg *config.Config, printStats bool, statsFile string) error {
	if cfg.ServerID == "" {
		cfg.ServerID = uuid.NewString()
	}
	log := logging.NewWithOptions(os.Stderr, cfg.LogLevel, cfg.LogFormat).With("server_id", cfg.ServerID)
	ctx, cancel := context.WithCancel(logging.NewContext(ctx, log))
	defer cancel()

	vehicles, centres := cfg.Fleet()
	state, err := sim.NewState(vehicles, centres)
	if err != nil {
		return err
	}
	motion := sim.Motion{PhaseStep: cfg.PhaseStep, OrbitRadius: cfg.OrbitRadius}
	simulator := sim.NewSimulator(state, motion, cfg.TickInterval, nil)
	srv := broadcast.NewServer(state, cfg.SendInterval)

	writer, cleanup, err := newStatsWriter(printStats, statsFile)
	if err != nil {
		return err
	}
	defer cleanup()
	reporter := stats.NewReporter(cfg.ServerID, state, srv, writer, cfg.StatsInterval, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		simulator.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		reporter.Run(ctx)
	}()

	if cfg.AdminAddr != "" {
		adminSrv := admin.NewServer(state, reporter)
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info("admin UI listening", "addr", cfg.AdminAddr)
			if err := adminSrv.Start(ctx, cfg.AdminAddr); err != nil {
				log.Error("admin server failed", "err", err)
			}
		}()
	}

	log.Info("stream listening", "addr", cfg.Addr(), "vehicles", state.Len(),
		"tick", cfg.TickInterval, "send", cfg.SendInterval)
	err = broadcast.ListenAndServe(ctx, cfg.Addr(), srv)
	cancel()
	srv.Wait()
	wg.Wait()
	if err != nil {
		return err
	}
	log.Info("stream stopped", "stats", srv.Stats())
	return nil
}

// overrideKeys are the settings that flags and VEHICLESTREAM_* variables
// may override on top of the YAML file.
var overrideKeys = []string{
	"host",
	"port",
	"tick-interval",
	"send-interval",
	"stats-interval",
	"admin-addr",
	"server-id",
	"log-level",
	"log-format",
}

// resolveConfig loads the YAML file and applies environment and flag
// overrides. Flags win over the environment, which wins over the file.
func resolveConfig(flags *pflag.FlagSet, configPath, schemaPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath, schemaPath)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, key := range overrideKeys {
		if f := flags.Lookup(key); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	if v.IsSet("host") {
		cfg.Host = v.GetString("host")
	}
	if v.IsSet("port") {
		cfg.Port = v.GetInt("port")
	}
	if v.IsSet("tick-interval") {
		cfg.TickInterval = v.GetDuration("tick-interval")
	}
	if v.IsSet("send-interval") {
		cfg.SendInterval = v.GetDuration("send-interval")
	}
	if v.IsSet("stats-interval") {
		cfg.StatsInterval = v.GetDuration("stats-interval")
	}
	if v.IsSet("admin-addr") {
		cfg.AdminAddr = v.GetString("admin-addr")
	}
	if v.IsSet("server-id") {
		cfg.ServerID = v.GetString("server-id")
	}
	if v.IsSet("log-level") {
		cfg.LogLevel = v.GetString("log-level")
	}
	if v.IsSet("log-format") {
		cfg.LogFormat = v.GetString("log-format")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveConfigPath, "config", "", "Path to YAML configuration (defaults to the built-in fleet)")
	f.StringVar(&serveSchemaPath, "schema", "", "Path to CUE schema file (defaults to the embedded schema)")
	f.BoolVar(&servePrintStats, "print-stats", false, "Print stats rows to STDOUT")
	f.StringVar(&serveStatsFile, "stats-file", "", "Path to append stats rows (JSONL)")
	addOverrideFlags(f)
}

func addOverrideFlags(f *pflag.FlagSet) {
	def := config.Default()
	f.String("host", def.Host, "Stream listen host")
	f.Int("port", def.Port, "Stream listen port")
	f.Duration("tick-interval", def.TickInterval, "Simulation tick interval (e.g. 100ms)")
	f.Duration("send-interval", def.SendInterval, "Per-connection snapshot interval (e.g. 500ms)")
	f.Duration("stats-interval", def.StatsInterval, "Stats reporting interval, 0 disables")
	f.String("admin-addr", def.AdminAddr, "Admin UI listen address, empty disables")
	f.String("server-id", def.ServerID, "Server identifier in logs and stats (random when empty)")
	f.String("log-level", def.LogLevel, "Log level: debug, info, warn, error")
	f.String("log-format", def.LogFormat, "Log format: text or json")
}
