package main

import (
	"github.com/pkg/errors"
	"github.com/rhartert/watchsat/internal/sat"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// config holds every CLI-level setting plus the sat.Options it builds.
// Grounded on the teacher's flat config struct in main.go, widened to cover
// the full option surface spec.md §6 exposes.
type config struct {
	instanceFile string
	configFile   string
	gzipped      bool
	solveAll     bool
	verbose      bool
	cpuProfile   string
	memProfile   string

	options sat.Options
}

// bindFlags registers every flag on fs, defaulting each to sat.DefaultOptions
// so that an unset flag (and an absent --config file) reproduces the
// library's own defaults exactly.
func bindFlags(fs *pflag.FlagSet) {
	d := sat.DefaultOptions()

	fs.String("config", "", "optional YAML config file layering over the defaults")
	fs.Bool("gzip", false, "treat the instance file as gzip-compressed")
	fs.Bool("solve-all", false, "enumerate every model via a blocking-clause loop instead of stopping at the first")
	fs.BoolP("verbose", "v", false, "enable debug-level search progress logging")
	fs.String("cpuprofile", "", "write a pprof CPU profile to this path")
	fs.String("memprofile", "", "write a pprof heap profile to this path")

	fs.Bool("minimize", d.Minimize, "minimize learned clauses against the implication graph")
	fs.Bool("shrink", d.Shrink, "apply the bounded binary-resolution shrink pass after minimization")
	fs.Int("decay", d.Decay, "VSIDS score decay, percent in [30,70]")
	fs.Int64("seed", d.Seed, "random seed for random decisions")

	fs.Bool("reduce", d.Reduce, "enable learned-clause database reduction")
	fs.Int("reduce-interval", d.ReduceInterval, "base conflict budget between reduce passes")
	fs.Int("reduce-high", d.ReduceHigh, "initial deletion percent, in tenths of a percent")
	fs.Int("reduce-low", d.ReduceLow, "floor deletion percent, in tenths of a percent")
	fs.Bool("reduce-adaptive", d.ReduceAdaptive, "adapt the reduce interval to its measured overhead")
	fs.Int("reduce-factor", d.ReduceFactor, "reduce adaptive-scale sensitivity, percent in [50,200]")
	fs.Int("tier1", d.Tier1, "glue threshold at or below which a learned clause is never rank-deleted")
	fs.Int("tier2", d.Tier2, "glue threshold at or below which a learned clause is protected from rank deletion while its used counter is positive")

	fs.Bool("restart", d.Restart, "enable restarts")
	fs.Int("restart-interval", d.RestartInterval, "base conflict interval between restarts")
	fs.Int("restart-margin", d.RestartMargin, "focused-mode glue-EMA trigger margin, percent")
	fs.Bool("restart-reuse-trail", d.RestartReuseTrail, "reuse the decision trail prefix across a restart when possible")
	fs.Bool("restart-adaptive", d.RestartAdaptive, "adapt the restart interval to observed search efficacy")

	fs.Bool("stable", d.Stable, "start the decision heuristic in stable (VSIDS heap) mode")
	fs.Int("mode-interval", d.ModeInterval, "conflicts between focused/stable mode switches")
	fs.Int("target", d.Target, "stable-mode target-phase policy (0, 1, or 2)")

	fs.Bool("phase-saving", d.PhaseSaving, "reuse a variable's last assigned polarity as its default phase")
	fs.Bool("force-phase", d.ForcePhase, "always decide with the fixed --phase polarity, ignoring saved/target phases")
	fs.Bool("phase", d.Phase, "fixed/initial decision polarity (true = positive)")

	fs.Int("randec-every", d.RandecEvery, "conflicts between random-decision sequences (0 disables)")
	fs.Int("randec-len", d.RandecLen, "length of each random-decision sequence")

	fs.Bool("binary-index", d.UseBinaryIndex, "use the flat binary-implication index instead of the binary watch lists")

	fs.Int64("max-conflicts", d.MaxConflicts, "stop after this many conflicts (-1 for unbounded)")
	fs.Int64("max-decisions", d.MaxDecisions, "stop after this many decisions (-1 for unbounded)")
	fs.Duration("timeout", -1, "stop after this much wall-clock time (-1 for unbounded)")

	fs.Bool("debug", d.Debug, "enable internal invariant assertions")
}

// loadConfig resolves the final config from parsed flags, optionally
// layering a YAML file over the defaults via viper (spec.md §6's
// configuration surface), and validates the resulting sat.Options.
func loadConfig(fs *pflag.FlagSet, args []string) (*config, error) {
	if len(args) == 0 || args[0] == "" {
		return nil, errors.New("missing instance file")
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, errors.Wrap(err, "could not bind flags")
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "could not read config file %q", path)
		}
	}

	cfg := &config{
		instanceFile: args[0],
		gzipped:      v.GetBool("gzip"),
		solveAll:     v.GetBool("solve-all"),
		verbose:      v.GetBool("verbose"),
		cpuProfile:   v.GetString("cpuprofile"),
		memProfile:   v.GetString("memprofile"),

		options: sat.Options{
			Minimize: v.GetBool("minimize"),
			Shrink:   v.GetBool("shrink"),
			Decay:    v.GetInt("decay"),
			Seed:     v.GetInt64("seed"),

			Reduce:         v.GetBool("reduce"),
			ReduceInterval: v.GetInt("reduce-interval"),
			ReduceHigh:     v.GetInt("reduce-high"),
			ReduceLow:      v.GetInt("reduce-low"),
			ReduceAdaptive: v.GetBool("reduce-adaptive"),
			ReduceFactor:   v.GetInt("reduce-factor"),
			Tier1:          v.GetInt("tier1"),
			Tier2:          v.GetInt("tier2"),

			Restart:           v.GetBool("restart"),
			RestartInterval:   v.GetInt("restart-interval"),
			RestartMargin:     v.GetInt("restart-margin"),
			RestartReuseTrail: v.GetBool("restart-reuse-trail"),
			RestartAdaptive:   v.GetBool("restart-adaptive"),

			Stable:       v.GetBool("stable"),
			ModeInterval: v.GetInt("mode-interval"),
			Target:       v.GetInt("target"),

			PhaseSaving: v.GetBool("phase-saving"),
			ForcePhase:  v.GetBool("force-phase"),
			Phase:       v.GetBool("phase"),

			RandecEvery: v.GetInt("randec-every"),
			RandecLen:   v.GetInt("randec-len"),

			UseBinaryIndex: v.GetBool("binary-index"),

			MaxConflicts: v.GetInt64("max-conflicts"),
			MaxDecisions: v.GetInt64("max-decisions"),
			Timeout:      v.GetDuration("timeout"),

			Debug: v.GetBool("debug"),
		},
	}

	if err := cfg.options.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
