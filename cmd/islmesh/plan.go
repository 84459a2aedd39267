package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/isl-mesh/core"
	"github.com/signalsfoundry/isl-mesh/internal/forwarding"
	"github.com/signalsfoundry/isl-mesh/internal/logging"
	"github.com/signalsfoundry/isl-mesh/internal/observability"
	"github.com/signalsfoundry/isl-mesh/internal/plan"
	"github.com/signalsfoundry/isl-mesh/internal/report"
	"github.com/signalsfoundry/isl-mesh/kb"
	"github.com/signalsfoundry/isl-mesh/timectrl"
)

var planFlags struct {
	scenarioPath   string
	reportPath     string
	metricsAddr    string
	parallel       bool
	sampleDuration time.Duration
	sampleTick     time.Duration
	realTime       bool
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run the full topology/routing/instantiation pipeline",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planFlags.scenarioPath, "scenario", "s", "", "YAML scenario file (defaults to the validated 24-satellite shell)")
	planCmd.Flags().StringVar(&planFlags.reportPath, "report", "", "SQLite file to record the run into")
	planCmd.Flags().StringVar(&planFlags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address after planning")
	planCmd.Flags().BoolVar(&planFlags.parallel, "parallel-routing", false, "fan per-source route computation across CPUs")
	planCmd.Flags().DurationVar(&planFlags.sampleDuration, "sample-duration", 0, "replay satellite motion for this window and record link delay samples")
	planCmd.Flags().DurationVar(&planFlags.sampleTick, "sample-tick", time.Second, "tick interval for delay sampling")
	planCmd.Flags().BoolVar(&planFlags.realTime, "real-time", false, "sample in real time instead of accelerated")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logging.NewFromEnv()
	ctx, runID := logging.EnsureRunID(cmd.Context())

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	scenario, err := loadScenario(planFlags.scenarioPath)
	if err != nil {
		return err
	}

	var metrics *observability.PipelineCollector
	if planFlags.metricsAddr != "" {
		metrics, err = observability.NewPipelineCollector(nil)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
	}

	// Materialize the constellation at the planning epoch.
	epoch := time.Now().UTC()
	shape := scenario.Constellation.Shape()
	walker := core.NewWalkerDeltaMotionModel(
		shape,
		scenario.Constellation.AltitudeKm*1000.0,
		scenario.Constellation.InclinationDeg,
		epoch,
	)

	constellation := kb.NewConstellation()
	sats := scenario.Satellites()
	motions := make([]core.MotionModel, len(sats))
	for i, sat := range sats {
		tle, _ := scenario.TLE(sat.ID)
		motions[i] = core.NewMotionModel(sat, walker, tle.Line1, tle.Line2)
		motions[i].UpdatePosition(epoch, sat)
		if err := constellation.AddSatellite(sat); err != nil {
			return err
		}
	}

	fabric := forwarding.NewFabric(constellation.Len())
	planner := &plan.Planner{
		Log:             log,
		Metrics:         metrics,
		LinkParams:      scenario.Links.Params(),
		Installer:       fabric,
		ParallelRouting: planFlags.parallel,
	}

	result, err := planner.Build(ctx, constellation.List(), shape,
		scenario.Constellation.NeighborsPerSatellite, fabric)
	if err != nil {
		return err
	}
	if err := fabric.BindAddresses(result.Links, result.Bindings); err != nil {
		return err
	}

	printPlanSummary(scenario, result)

	if planFlags.reportPath != "" {
		if err := recordRun(ctx, runID, scenario, result, constellation, motions, log); err != nil {
			return err
		}
	}

	if planFlags.metricsAddr != "" {
		log.Info(ctx, "serving metrics", logging.String("addr", planFlags.metricsAddr))
		return http.ListenAndServe(planFlags.metricsAddr, metrics.Handler())
	}
	return nil
}

func loadScenario(path string) (*core.Scenario, error) {
	if path == "" {
		return core.DefaultScenario(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()
	return core.LoadScenario(f)
}

func printPlanSummary(s *core.Scenario, r *plan.Result) {
	fmt.Printf("scenario:       %s\n", s.Name)
	fmt.Printf("satellites:     %d\n", r.Topology.NumSatellites)
	fmt.Printf("isl links:      %d\n", r.Topology.NumLinks)
	fmt.Printf("connectivity:   %.3f\n", r.Connectivity)
	fmt.Printf("routes:         %d installed, %d skipped\n",
		r.Report.Installed, len(r.Report.Skipped))
	for _, sk := range r.Report.Skipped {
		fmt.Printf("  skipped %d -> %d: %s\n", sk.Src, sk.Dst, sk.Reason)
	}
}

// recordRun persists the plan and, when requested, replays satellite
// motion over the sampling window to record how link delays drift.
func recordRun(ctx context.Context, runID string, scenario *core.Scenario, result *plan.Result,
	constellation *kb.Constellation, motions []core.MotionModel,
	log logging.Logger) error {

	store, err := report.Open(planFlags.reportPath)
	if err != nil {
		return err
	}
	defer store.Close()

	err = store.RecordRun(report.RunSummary{
		RunID:           runID,
		Scenario:        scenario.Name,
		Satellites:      result.Topology.NumSatellites,
		Links:           result.Topology.NumLinks,
		RoutesInstalled: result.Report.Installed,
		RoutesSkipped:   len(result.Report.Skipped),
		Connectivity:    result.Connectivity,
		CreatedAt:       time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := store.RecordLinks(runID, result.Links.Links, result.Bindings.Subnets()); err != nil {
		return err
	}
	if err := store.RecordSkips(runID, result.Report.Skipped); err != nil {
		return err
	}

	if planFlags.sampleDuration <= 0 {
		return nil
	}

	mode := timectrl.Accelerated
	if planFlags.realTime {
		mode = timectrl.RealTime
	}
	tc := timectrl.NewTimeController(time.Now().UTC(), planFlags.sampleTick, mode)
	tc.AddListener(func(simTime time.Time) {
		for i, sat := range constellation.List() {
			motions[i].UpdatePosition(simTime, sat)
			if err := constellation.UpdatePosition(sat.ID, sat.Coordinates); err != nil {
				log.Warn(ctx, "position update failed", logging.Int("satellite", sat.ID))
			}
		}
		for _, l := range result.Links.Links {
			posA := core.Vec3FromMotion(constellation.Satellite(l.A).Coordinates)
			posB := core.Vec3FromMotion(constellation.Satellite(l.B).Coordinates)
			distance := posA.DistanceTo(posB)
			if err := store.RecordDelaySample(runID, simTime, l.Index, distance, core.PropagationDelay(distance)); err != nil {
				log.Warn(ctx, "delay sample failed",
					logging.Int("link", l.Index),
					logging.String("error", err.Error()),
				)
			}
		}
	})

	log.Info(ctx, "sampling link delays",
		logging.String("duration", planFlags.sampleDuration.String()),
		logging.String("tick", planFlags.sampleTick.String()),
	)
	tc.Run(planFlags.sampleDuration)
	return nil
}
