// Command heapsnap is the command dispatcher of spec.md §6's collaborator
// contract: it supplies the input path, the command, the per-command
// parameters, a progress sink, and a cancel flag, then renders the
// resulting JSON schema to stdout. Grounded on the rest of the example
// pack's cobra-based CLI shape (straga-Mimir_lite/nornicdb's cmd/nornicdb
// and saferwall-pe's cobra dispatcher) — the teacher itself ships no cmd/.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nilsy/heapsnap/heapsnap"
	"github.com/nilsy/heapsnap/internal/filter"
	"github.com/nilsy/heapsnap/internal/obs"
	"github.com/nilsy/heapsnap/internal/progress"
)

var logger = log.New(os.Stderr, "heapsnap: ", log.Lmicroseconds|log.Lshortfile)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cliConfig is the optional YAML defaults file's flat shape, mapped onto
// flags afterward (flags win on conflict), per SPEC_FULL.md §10.
type cliConfig struct {
	TopK             int    `yaml:"top_k"`
	MaxDepth         int    `yaml:"max_depth"`
	MaxPaths         int    `yaml:"max_paths"`
	TopRetainers     int    `yaml:"top_retainers"`
	TopOutgoingEdges int    `yaml:"top_outgoing_edges"`
	OutputDir        string `yaml:"output_dir"`
}

func newRootCmd() *cobra.Command {
	var (
		configPath  string
		useMmap     bool
		withMetrics bool
	)

	root := &cobra.Command{
		Use:   "heapsnap",
		Short: "Analyze V8 heap snapshots: summaries, retainer paths, dominators, and diffs",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML defaults file")
	root.PersistentFlags().BoolVar(&useMmap, "mmap", false, "memory-map the input file instead of buffered reads")
	root.PersistentFlags().BoolVar(&withMetrics, "metrics", false, "print Prometheus metric families to stderr after the command completes")

	open := func(path string) (*heapsnap.Session, *prometheus.Registry, cliConfig, func(), error) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return nil, nil, cliConfig{}, nil, err
		}

		flag := progress.NewFlag()
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			if _, ok := <-sigCh; ok {
				logger.Println("cancellation requested, finishing current operation")
				flag.Set()
			}
		}()
		stop := func() { signal.Stop(sigCh); close(sigCh) }

		opts := []heapsnap.Option{
			heapsnap.WithCancelFlag(flag),
			heapsnap.WithDefaultTopK(cfg.TopK),
			heapsnap.WithDefaultSearchLimits(cfg.MaxDepth, cfg.MaxPaths),
			heapsnap.WithDefaultTopSelections(cfg.TopRetainers, cfg.TopOutgoingEdges),
		}
		if useMmap {
			opts = append(opts, heapsnap.WithMmap())
		}

		var registry *prometheus.Registry
		if withMetrics {
			registry = obs.NewRegistry()
			opts = append(opts, heapsnap.WithMetrics(obs.NewMetrics(registry)))
		}

		logger.Printf("opening %s", path)
		s, err := heapsnap.Open(path, opts...)
		if err != nil {
			stop()
			return nil, nil, cliConfig{}, nil, err
		}
		logger.Printf("parsed %d nodes, %d edges", s.Raw().NodeCount(), s.Raw().EdgeCount())
		return s, registry, cfg, func() { stop(); s.Close() }, nil
	}

	root.AddCommand(
		newBuildCmd(open),
		newSummaryCmd(open),
		newRetainersCmd(open),
		newDominatorCmd(open),
		newDiffCmd(open),
		newInspectCmd(open),
	)
	return root
}

// openFunc opens a session against path with every persistent flag applied,
// returning the session, its metrics registry (nil unless --metrics was
// given), the resolved config defaults, and a cleanup function the caller
// must defer.
type openFunc func(path string) (s *heapsnap.Session, registry *prometheus.Registry, cfg cliConfig, cleanup func(), err error)

func newBuildCmd(open openFunc) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "build <snapshot> <out-dir>",
		Short: "Write summary.json and meta.json for a snapshot",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, metrics, cfg, cleanup, err := open(args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			dir := outDir
			if len(args) == 2 {
				dir = args[1]
			}
			if dir == "" {
				dir = cfg.OutputDir
			}
			if dir == "" {
				dir = "."
			}
			if err := s.Build(dir); err != nil {
				return err
			}

			report := obs.RunChecks(s.Raw())
			for _, c := range report.Checks {
				logger.Printf("check %s: %s", c.Name, c.Message)
			}
			fmt.Printf("wrote %s/summary.json and %s/meta.json (healthy=%v)\n", dir, dir, report.Healthy)
			printMetrics(metrics)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (overridden by the second positional argument)")
	return cmd
}

func newSummaryCmd(open openFunc) *cobra.Command {
	var substr, filterExpr string
	var topK int
	cmd := &cobra.Command{
		Use:   "summary <snapshot>",
		Short: "Aggregate node counts and self-size by constructor name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, metrics, _, cleanup, err := open(args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			opts := []heapsnap.SummaryOption{}
			if substr != "" {
				opts = append(opts, heapsnap.WithSubstring(substr))
			}
			if topK > 0 {
				opts = append(opts, heapsnap.WithTopK(topK))
			}
			if filterExpr != "" {
				f, err := filter.NewParser().Parse(filterExpr)
				if err != nil {
					return err
				}
				opts = append(opts, heapsnap.WithNodeFilter(f))
			}

			res, err := s.Summary(opts...)
			if err != nil {
				return err
			}
			printMetrics(metrics)
			return printJSON(res)
		},
	}
	cmd.Flags().StringVar(&substr, "substring", "", "restrict to constructor names containing this substring")
	cmd.Flags().StringVar(&filterExpr, "filter", "", `node predicate, e.g. "self_size >= 1024"`)
	cmd.Flags().IntVar(&topK, "top-k", 0, "cap the number of rows returned (0 = session default)")
	return cmd
}

func newRetainersCmd(open openFunc) *cobra.Command {
	var id int64
	var haveID bool
	var name, pick string
	var maxDepth, maxPaths int
	cmd := &cobra.Command{
		Use:   "retainers <snapshot>",
		Short: "Find shortest retainer paths from the GC root to a target node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, metrics, _, cleanup, err := open(args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			q := s.Query()
			if haveID {
				q = q.ID(id)
			} else if name != "" {
				q = q.Name(name)
			} else {
				return fmt.Errorf("heapsnap: retainers requires --id or --name")
			}
			if pick != "" {
				q = q.Pick(heapsnap.PickPolicy(pick))
			}
			if maxDepth > 0 {
				q = q.MaxDepth(maxDepth)
			}
			if maxPaths > 0 {
				q = q.MaxPaths(maxPaths)
			}

			res, err := q.Retainers()
			if err != nil {
				return err
			}
			printMetrics(metrics)
			return printJSON(res)
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "target node id")
	cmd.Flags().StringVar(&name, "name", "", "target constructor name")
	cmd.Flags().StringVar(&pick, "pick", "", "disambiguation policy when --name matches multiple nodes: largest or count")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum hop depth (0 = session default)")
	cmd.Flags().IntVar(&maxPaths, "max-paths", 0, "maximum number of paths returned (0 = session default)")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		haveID = cmd.Flags().Changed("id")
		return nil
	}
	return cmd
}

func newDominatorCmd(open openFunc) *cobra.Command {
	var id int64
	var name, pick string
	cmd := &cobra.Command{
		Use:   "dominator <snapshot>",
		Short: "Compute the root-to-target immediate-dominator chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, metrics, _, cleanup, err := open(args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			q := s.Query()
			if cmd.Flags().Changed("id") {
				q = q.ID(id)
			} else if name != "" {
				q = q.Name(name)
			} else {
				return fmt.Errorf("heapsnap: dominator requires --id or --name")
			}
			if pick != "" {
				q = q.Pick(heapsnap.PickPolicy(pick))
			}

			res, err := q.Dominator()
			if err != nil {
				return err
			}
			printMetrics(metrics)
			return printJSON(res)
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "target node id")
	cmd.Flags().StringVar(&name, "name", "", "target constructor name")
	cmd.Flags().StringVar(&pick, "pick", "", "disambiguation policy when --name matches multiple nodes: largest or count")
	return cmd
}

func newDiffCmd(open openFunc) *cobra.Command {
	var topK int
	cmd := &cobra.Command{
		Use:   "diff <snapshot-a> <snapshot-b>",
		Short: "Diff constructor aggregates between two snapshots",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, metricsA, _, cleanupA, err := open(args[0])
			if err != nil {
				return err
			}
			defer cleanupA()
			b, _, _, cleanupB, err := open(args[1])
			if err != nil {
				return err
			}
			defer cleanupB()

			opts := []heapsnap.DiffOption{}
			if topK > 0 {
				opts = append(opts, heapsnap.WithDiffTopK(topK))
			}
			res, err := a.Diff(b, opts...)
			if err != nil {
				return err
			}
			printMetrics(metricsA)
			return printJSON(res)
		},
	}
	cmd.Flags().IntVar(&topK, "top-k", 0, "cap the number of rows returned by absolute size delta (0 = session default)")
	return cmd
}

func newInspectCmd(open openFunc) *cobra.Command {
	var id int64
	var name, pick string
	var topRetainers, topOutgoingEdges int
	cmd := &cobra.Command{
		Use:   "inspect <snapshot>",
		Short: "Show a node's top retainers and top outgoing edges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, metrics, _, cleanup, err := open(args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			var idx int
			if cmd.Flags().Changed("id") {
				idx, err = resolveByID(s, id)
			} else if name != "" {
				idx, err = resolveByName(s, name, pick)
			} else {
				return fmt.Errorf("heapsnap: inspect requires --id or --name")
			}
			if err != nil {
				return err
			}

			opts := []heapsnap.InspectOption{}
			if topRetainers > 0 {
				opts = append(opts, heapsnap.WithTopRetainers(topRetainers))
			}
			if topOutgoingEdges > 0 {
				opts = append(opts, heapsnap.WithTopOutgoingEdges(topOutgoingEdges))
			}
			res, err := s.Inspect(idx, opts...)
			if err != nil {
				return err
			}
			printMetrics(metrics)
			return printJSON(res)
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "node id")
	cmd.Flags().StringVar(&name, "name", "", "constructor name")
	cmd.Flags().StringVar(&pick, "pick", "", "disambiguation policy when --name matches multiple nodes: largest or count")
	cmd.Flags().IntVar(&topRetainers, "top-retainers", 0, "cap the number of retainers returned (0 = session default)")
	cmd.Flags().IntVar(&topOutgoingEdges, "top-outgoing-edges", 0, "cap the number of outgoing edges returned (0 = session default)")
	return cmd
}

// resolveByID/resolveByName reuse the Retainers query's own target
// resolution so `inspect` shares the same id/name/pick semantics, rather
// than reimplementing a second linear scan.
func resolveByID(s *heapsnap.Session, id int64) (int, error) {
	res, err := s.Query().ID(id).MaxPaths(1).Retainers()
	if err != nil {
		return 0, err
	}
	return res.Target.Index, nil
}

func resolveByName(s *heapsnap.Session, name, pick string) (int, error) {
	q := s.Query().Name(name).MaxPaths(1)
	if pick != "" {
		q = q.Pick(heapsnap.PickPolicy(pick))
	}
	res, err := q.Retainers()
	if err != nil {
		return 0, err
	}
	return res.Target.Index, nil
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("heapsnap: encoding result: %w", err)
	}
	fmt.Println(string(b))
	return nil
}

// printMetrics renders every collected metric family to stderr in the
// Prometheus text exposition format, via prometheus/common/expfmt.
func printMetrics(reg *prometheus.Registry) {
	if reg == nil {
		return
	}
	families, err := reg.Gather()
	if err != nil {
		logger.Printf("gathering metrics: %v", err)
		return
	}
	enc := expfmt.NewEncoder(os.Stderr, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			logger.Printf("encoding metric family %s: %v", mf.GetName(), err)
		}
	}
}

func loadConfig(path string) (cliConfig, error) {
	cfg := cliConfig{TopK: 50, MaxDepth: 64, MaxPaths: 1, TopRetainers: 10, TopOutgoingEdges: 10}
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cliConfig{}, fmt.Errorf("heapsnap: reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cliConfig{}, fmt.Errorf("heapsnap: parsing config %s: %w", path, err)
	}
	return cfg, nil
}
