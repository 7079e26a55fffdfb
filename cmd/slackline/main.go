package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/Bubblyworld/slackline/internal/analysis"
	"github.com/Bubblyworld/slackline/internal/config"
	"github.com/Bubblyworld/slackline/internal/export"
	"github.com/Bubblyworld/slackline/internal/line"
	"github.com/Bubblyworld/slackline/internal/server"
	"github.com/Bubblyworld/slackline/internal/statics"
	"github.com/Bubblyworld/slackline/internal/storage"
	"github.com/Bubblyworld/slackline/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string

	// Rig flags
	lineName  string
	gapLength float64
	tension   float64
	natLength float64
	form      string
	loadSpecs []string

	// Dynamics flags
	nodes        int
	damping      float64
	tensionFloor float64
	duration     float64
	frames       int
	scenario     string
	position     float64
	displacement float64
	width        float64
	frequency    float64
	amplitude    float64
	magnitude    float64
	kick         float64

	// Sweep flags
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int

	// Output flags
	save    bool
	outPath string
	svgPath string
	addr    string
	maxFreq float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "slackline",
		Short: "slackline statics and dynamics solver",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".slackline", "data directory")

	rigCmd := &cobra.Command{
		Use:   "rig",
		Short: "solve the equilibrium shape of a rigged line",
		RunE:  runRig,
	}
	addRigFlags(rigCmd)
	rigCmd.Flags().BoolVar(&save, "save", false, "store the solved rig")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "simulate line motion from equilibrium",
		RunE:  runSimulate,
	}
	addRigFlags(simulateCmd)
	addDynamicFlags(simulateCmd)
	simulateCmd.Flags().BoolVar(&save, "save", false, "store the rig and simulation")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored rig profile",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlot,
	}

	animateCmd := &cobra.Command{
		Use:   "animate [run_id]",
		Short: "play back a stored simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnimate,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().Float64Var(&maxFreq, "max-freq", 10, "spectrum cutoff (Hz)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  runList,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored rig as JSON or CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	exportCmd.Flags().StringVar(&outPath, "csv", "", "write profile CSV to this path instead of JSON to stdout")
	exportCmd.Flags().StringVar(&svgPath, "svg", "", "write a profile SVG to this path")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "chart sag against standing tension for a rig",
		RunE:  runSweep,
	}
	addRigFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 1000, "lowest tension (N)")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 6000, "highest tension (N)")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 11, "number of tensions")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in rig presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-16s %s, %.0f m", name, cfg.Line, cfg.GapLength)
				if cfg.AnchorTension > 0 {
					fmt.Printf(" @ %.0f N", cfg.AnchorTension)
				}
				if len(cfg.Loads) > 0 {
					fmt.Printf(", %d load(s)", len(cfg.Loads))
				}
				fmt.Println()
			}
			return nil
		},
	}

	linesCmd := &cobra.Command{
		Use:   "lines",
		Short: "list the webbing catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMASS (kg/m)\tSTIFFNESS (N/100%)")
			for _, l := range line.List() {
				fmt.Fprintf(w, "%s\t%.3f\t%.0f\n", l.Name, l.M, l.K)
			}
			return w.Flush()
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the solver as a JSON HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("listening on %s\n", addr)
			return server.New().ListenAndServe(addr)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	rootCmd.AddCommand(rigCmd, simulateCmd, sweepCmd, plotCmd, animateCmd, analyzeCmd, listCmd, exportCmd, presetsCmd, linesCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "rig config file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "built-in preset name")
	cmd.Flags().StringVar(&lineName, "line", "", "webbing name from the catalog")
	cmd.Flags().Float64Var(&gapLength, "gap", 0, "gap length (m)")
	cmd.Flags().Float64Var(&tension, "tension", 0, "standing anchor tension (N)")
	cmd.Flags().Float64Var(&natLength, "length", 0, "natural webbing length (m), alternative to --tension")
	cmd.Flags().StringVar(&form, "form", "", "lagrangian form: ideal or small-sag")
	cmd.Flags().StringArrayVar(&loadSpecs, "load", nil, "point load as position:mass, repeatable")
}

func addDynamicFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&nodes, "nodes", 0, "chain nodes")
	cmd.Flags().Float64Var(&damping, "damping", 0, "damping ratio against critical")
	cmd.Flags().Float64Var(&tensionFloor, "floor", 0, "segment tension floor (N)")
	cmd.Flags().Float64Var(&duration, "time", 0, "simulated seconds")
	cmd.Flags().IntVar(&frames, "frames", 0, "output frames")
	cmd.Flags().StringVar(&scenario, "scenario", "", "pluck, bounce, impulse or none")
	cmd.Flags().Float64Var(&position, "position", 0, "scenario position (m), default midspan")
	cmd.Flags().Float64Var(&displacement, "displacement", -0.3, "pluck displacement (m)")
	cmd.Flags().Float64Var(&width, "width", 2, "pluck width (m)")
	cmd.Flags().Float64Var(&frequency, "frequency", 1.0, "bounce frequency (Hz)")
	cmd.Flags().Float64Var(&amplitude, "amplitude", 400, "bounce amplitude (N)")
	cmd.Flags().Float64Var(&magnitude, "magnitude", 800, "impulse magnitude (N)")
	cmd.Flags().Float64Var(&kick, "kick", 0.3, "impulse duration (s)")
}

// buildConfig resolves precedence: defaults, then preset, then config file,
// then explicit flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		*cfg = *p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("line") {
		cfg.Line = lineName
	}
	if cmd.Flags().Changed("gap") {
		cfg.GapLength = gapLength
	}
	if cmd.Flags().Changed("tension") {
		cfg.AnchorTension = tension
		cfg.NaturalLength = 0
	}
	if cmd.Flags().Changed("length") {
		cfg.NaturalLength = natLength
		cfg.AnchorTension = 0
	}
	if cmd.Flags().Changed("form") {
		cfg.Form = form
	}
	if cmd.Flags().Changed("load") {
		cfg.Loads = nil
		for _, spec := range loadSpecs {
			ld, err := parseLoad(spec)
			if err != nil {
				return nil, err
			}
			cfg.Loads = append(cfg.Loads, ld)
		}
	}

	if cmd.Flags().Changed("nodes") {
		cfg.Dynamic.Nodes = nodes
	}
	if cmd.Flags().Changed("damping") {
		cfg.Dynamic.Damping = damping
	}
	if cmd.Flags().Changed("floor") {
		cfg.Dynamic.TensionFloor = tensionFloor
	}
	if cmd.Flags().Changed("time") {
		cfg.Dynamic.Duration = duration
	}
	if cmd.Flags().Changed("frames") {
		cfg.Dynamic.Frames = frames
	}
	if cmd.Flags().Changed("scenario") {
		cfg.Dynamic.Scenario = scenario
	}
	if cmd.Flags().Changed("position") {
		cfg.Dynamic.Position = position
	}
	if cmd.Flags().Changed("displacement") {
		cfg.Dynamic.Displacement = displacement
	}
	if cmd.Flags().Changed("width") {
		cfg.Dynamic.Width = width
	}
	if cmd.Flags().Changed("frequency") {
		cfg.Dynamic.Frequency = frequency
	}
	if cmd.Flags().Changed("amplitude") {
		cfg.Dynamic.Amplitude = amplitude
	}
	if cmd.Flags().Changed("magnitude") {
		cfg.Dynamic.Magnitude = magnitude
	}
	if cmd.Flags().Changed("kick") {
		cfg.Dynamic.Kick = kick
	}
	return cfg, nil
}

// parseLoad parses a "position:mass" spec, e.g. "25:75".
func parseLoad(spec string) (config.LoadConfig, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return config.LoadConfig{}, fmt.Errorf("invalid load %q, want position:mass", spec)
	}
	pos, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return config.LoadConfig{}, fmt.Errorf("invalid load position %q", parts[0])
	}
	mass, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return config.LoadConfig{}, fmt.Errorf("invalid load mass %q", parts[1])
	}
	return config.LoadConfig{Position: pos, Mass: mass}, nil
}

func runRig(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cons, err := cfg.Statics()
	if err != nil {
		return err
	}

	rig, err := cons.Solve()
	if err != nil {
		return err
	}

	fmt.Print(viz.ProfileView(rig, 70, 14))
	fmt.Println()
	fmt.Println(viz.TensionPlot(rig, 64, 8))

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save("rig", cons, rig, nil)
		if err != nil {
			return err
		}
		fmt.Printf("\nsaved as %s\n", runID)
	}
	return nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	dc, err := cfg.Dynamics()
	if err != nil {
		return err
	}
	opt, err := cfg.SimOptions()
	if err != nil {
		return err
	}

	dyn, rig, err := dc.Simulate(opt)
	if err != nil {
		return err
	}

	fmt.Printf("simulated %.1fs in %d frames (%d integrator steps)\n",
		dyn.T[len(dyn.T)-1], len(dyn.T), dyn.Steps)
	for _, w := range dyn.Warnings {
		fmt.Printf("warning: %s\n", w)
	}

	if s, err := analysis.MidpointSpectrum(dyn); err == nil {
		fmt.Printf("dominant frequency: %.2f Hz\n", s.Fundamental())
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save("sim", dc.Static, rig, dyn)
		if err != nil {
			return err
		}
		fmt.Printf("saved as %s\n", runID)
		return nil
	}

	return viz.Play(dyn, rig)
}

func runPlot(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	rig, err := st.LoadRig(args[0])
	if err != nil {
		return err
	}
	fmt.Print(viz.ProfileView(rig, 70, 14))
	fmt.Println()
	fmt.Println(viz.TensionPlot(rig, 64, 8))
	fmt.Println()
	fmt.Println(viz.HeightPlot(rig, 64, 8))
	return nil
}

func runAnimate(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	dyn, err := st.LoadSim(args[0])
	if err != nil {
		return err
	}
	rig, err := st.LoadRig(args[0])
	if err != nil {
		return err
	}
	return viz.Play(dyn, rig)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	dyn, err := st.LoadSim(args[0])
	if err != nil {
		return err
	}

	s, err := analysis.MidpointSpectrum(dyn)
	if err != nil {
		return err
	}
	fmt.Println(viz.SpectrumPlot(s, maxFreq, 64, 10))
	fmt.Printf("\ndominant frequency: %.3f Hz\n", s.Fundamental())
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no stored runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLINE\tGAP (m)\tLOADS\tDYNAMIC\tMAX TENSION (N)\tSAG (m)")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%d\t%v\t%.0f\t%.2f\n",
			r.ID, r.Line, r.GapLength, r.Loads, r.Dynamic,
			r.Metrics["max_tension"], r.Metrics["max_drop"])
	}
	return w.Flush()
}

func runExport(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	rig, err := st.LoadRig(args[0])
	if err != nil {
		return err
	}

	if svgPath != "" {
		if err := os.WriteFile(svgPath, []byte(export.ProfileSVG(rig, 800, 400)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	if outPath != "" {
		if err := storage.ExportCSV(outPath, rig); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outPath)
	}
	if svgPath == "" && outPath == "" {
		return storage.ExportJSON(os.Stdout, rig)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cons, err := cfg.Statics()
	if err != nil {
		return err
	}
	if sweepSteps < 2 || sweepTo <= sweepFrom {
		return fmt.Errorf("invalid sweep range %g..%g in %d steps", sweepFrom, sweepTo, sweepSteps)
	}

	tensions := make([]float64, sweepSteps)
	for i := range tensions {
		tensions[i] = sweepFrom + (sweepTo-sweepFrom)*float64(i)/float64(sweepSteps-1)
	}
	points, err := statics.SweepTensions(cmd.Context(), cons, tensions)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TENSION (N)\tSAG (m)\tMAX TENSION (N)\tNATURAL LENGTH (m)")
	drops := make([]float64, len(points))
	for i, p := range points {
		drops[i] = p.MaxDrop
		fmt.Fprintf(w, "%.0f\t%.3f\t%.0f\t%.3f\n", p.Tension, p.MaxDrop, p.MaxTension, p.NaturalLength)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(asciigraph.Plot(drops,
		asciigraph.Height(8),
		asciigraph.Caption(fmt.Sprintf("sag (m) for %.0f-%.0f N", sweepFrom, sweepTo)),
	))
	return nil
}
