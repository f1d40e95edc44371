package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"

	"github.com/edp1096/dcsolve/internal/consts"
	"github.com/edp1096/dcsolve/internal/logging"
	"github.com/edp1096/dcsolve/pkg/analysis"
	"github.com/edp1096/dcsolve/pkg/circuit"
	"github.com/edp1096/dcsolve/pkg/netlist"
	"github.com/edp1096/dcsolve/pkg/plot"
	"github.com/edp1096/dcsolve/pkg/scalar"
	"github.com/edp1096/dcsolve/pkg/util"
)

type config struct {
	scalar   string
	mem      int
	plotFile string
	plotW    float64
	plotH    float64
	verify   bool
	verbose  bool
	workers  int
	logLevel string
	jsonLog  bool
}

func printResults[S scalar.Scalar[S]](results map[string][]S) {
	fmt.Println("\nAnalysis Results:")
	fmt.Println("================")

	var voltageNames, currentNames []string
	for _, name := range analysis.SortedKeys(results) {
		switch {
		case strings.HasPrefix(name, "V("):
			voltageNames = append(voltageNames, name)
		case strings.HasPrefix(name, "I("):
			currentNames = append(currentNames, name)
		}
	}

	// DC Sweep
	if sweep1, isDC := results["SWEEP1"]; isDC {
		fmt.Printf("\nDC Sweep Analysis Results (%d points):\n", len(sweep1))
		fmt.Println("Sweep Values    Node Voltages        Branch Currents")
		fmt.Println("------------------------------------------------")

		sweep2, hasNested := results["SWEEP2"]
		for i := range sweep1 {
			if hasNested {
				fmt.Printf("S1=%-11s S2=%-11s  ", util.Format(sweep1[i], ""), util.Format(sweep2[i], ""))
			} else {
				fmt.Printf("S=%-11s  ", util.Format(sweep1[i], ""))
			}
			for _, name := range voltageNames {
				fmt.Printf("%s=%s  ", name, util.Format(results[name][i], "V"))
			}
			for _, name := range currentNames {
				fmt.Printf("%s=%s  ", name, util.Format(results[name][i], "A"))
			}
			fmt.Println()
		}
		return
	}

	// Operating point
	fmt.Println("\nNode Voltages:")
	for _, name := range voltageNames {
		fmt.Printf("%s = %s (%s)\n", name, util.Format(results[name][0], "V"), results[name][0])
	}
	fmt.Println("\nBranch Currents:")
	for _, name := range currentNames {
		fmt.Printf("%s = %s (%s)\n", name, util.Format(results[name][0], "A"), results[name][0])
	}
}

func run[S scalar.Scalar[S]](ctx context.Context, cfg config, data *netlist.NetlistData, logger *logging.Logger) {
	// 1. Setup circuit
	ckt, err := circuit.New[S](make([]byte, cfg.mem),
		circuit.WithName(data.Title),
		circuit.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("Error creating circuit: %v", err)
	}
	devices, err := netlist.Build(data, ckt)
	if err != nil {
		log.Fatalf("Error setting up devices: %v", err)
	}

	if cfg.verbose {
		fmt.Printf("Analysis type: %v\n", data.Analysis)
		fmt.Printf("Circuit elements: %d\n", len(data.Elements))
		for i, elem := range data.Elements {
			fmt.Printf("Element %d: %s (type: %s, nodes: %v, value: %s)\n", i, elem.Name, elem.Type, elem.Nodes, elem.Value)
		}
		sys, idx, err := ckt.System()
		if err != nil {
			log.Fatalf("Error assembling system: %v", err)
		}
		fmt.Printf("Rows: %v\n", idx.IndexToNode[:idx.N])
		if err := sys.Fprint(os.Stdout); err != nil {
			log.Fatalf("Error printing system: %v", err)
		}
	}

	// 2. Setup analyzer
	opts := []analysis.Option{analysis.WithWorkers(cfg.workers), analysis.WithLogger(logger)}
	var analyzer analysis.Analysis[S]
	var dc *analysis.DCSweep[S]
	switch data.Analysis {
	case netlist.AnalysisOP:
		analyzer = analysis.NewOP[S](opts...)
	case netlist.AnalysisDC:
		sweeps, err := netlist.DCSweeps[S](data)
		if err != nil {
			log.Fatalf("Error parsing sweep: %v", err)
		}
		dc, err = analysis.NewDCSweep(sweeps, opts...)
		if err != nil {
			log.Fatalf("Error creating sweep: %v", err)
		}
		analyzer = dc
	default:
		log.Fatal("Unsupported analysis type")
	}

	if err := analyzer.Setup(ckt, devices); err != nil {
		log.Fatalf("Analysis setup failed: %v", err)
	}

	// 3. Run analysis
	if dc != nil {
		err = dc.ExecuteContext(ctx)
	} else {
		err = analyzer.Execute()
	}
	if err != nil {
		log.Fatalf("Analysis execution failed: %v", err)
	}
	skipped := ckt.Report().Skipped
	if dc != nil {
		skipped = dc.Skipped()
	}
	if skipped > 0 {
		fmt.Printf("warning: %d near-singular pivot columns skipped\n", skipped)
	}

	// 4. Print result
	results := analyzer.GetResults()
	printResults(results)

	if cfg.verify {
		v, err := analysis.Verify(ckt, 1e-9)
		if err != nil {
			log.Fatalf("Verification failed: %v", err)
		}
		fmt.Printf("\nSparse LU agrees within %.3g (worst node %d)\n", v.MaxDiff, v.Node)
	}

	if cfg.plotFile != "" {
		if dc == nil {
			log.Fatal("-plot needs a .dc analysis")
		}
		f, err := os.Create(cfg.plotFile)
		if err != nil {
			log.Fatalf("Error creating plot file: %v", err)
		}
		format := strings.TrimPrefix(filepath.Ext(cfg.plotFile), ".")
		err = plot.Render(f, results, format,
			plot.WithTitle(data.Title),
			plot.WithXLabel(data.DCParam[0].Source),
			plot.WithSize(vg.Length(cfg.plotW)*vg.Inch, vg.Length(cfg.plotH)*vg.Inch),
		)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			log.Fatalf("Error writing plot: %v", err)
		}
		fmt.Printf("\nPlot written to %s\n", cfg.plotFile)
	}
}

func main() {
	var cfg config
	flag.StringVar(&cfg.scalar, "scalar", "float", "arithmetic: float or decimal")
	flag.IntVar(&cfg.mem, "mem", consts.DefaultMemSize, "circuit buffer size in bytes")
	flag.StringVar(&cfg.plotFile, "plot", "", "write the .dc curves to this file (png, svg, pdf)")
	flag.Float64Var(&cfg.plotW, "plot-width", 6, "plot width in inches")
	flag.Float64Var(&cfg.plotH, "plot-height", 4, "plot height in inches")
	flag.BoolVar(&cfg.verify, "verify", false, "cross-check the solution with the sparse LU solver")
	flag.BoolVar(&cfg.verbose, "v", false, "print the elements and the assembled system")
	flag.IntVar(&cfg.workers, "workers", 0, "concurrent sweep workers (0 = GOMAXPROCS)")
	flag.StringVar(&cfg.logLevel, "log", "warn", "log level: debug, info, warn, error")
	flag.BoolVar(&cfg.jsonLog, "json-log", false, "log as JSON")
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("Usage: spice [flags] <netlist_file>")
	}

	level := logging.ParseLevel(cfg.logLevel)
	logger := logging.NewTextLogger(os.Stderr, level)
	if cfg.jsonLog {
		logger = logging.NewJSONLogger(os.Stderr, level)
	}

	content, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("Error reading netlist file: %v", err)
	}
	data, err := netlist.Parse(string(content))
	if err != nil {
		log.Fatalf("Error parsing netlist: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cfg.scalar {
	case "float":
		run[scalar.Float](ctx, cfg, data, logger)
	case "decimal":
		run[scalar.Decimal](ctx, cfg, data, logger)
	default:
		log.Fatalf("Unknown scalar %q", cfg.scalar)
	}
}
