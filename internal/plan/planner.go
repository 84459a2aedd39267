// Package plan orchestrates the ISL pipeline: topology generation,
// shortest-path routing, link-fabric construction, address assignment,
// and route installation, in that order, as one deterministic one-shot
// computation before any simulated traffic flows.
package plan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/signalsfoundry/isl-mesh/core"
	"github.com/signalsfoundry/isl-mesh/internal/logging"
	"github.com/signalsfoundry/isl-mesh/internal/observability"
	"github.com/signalsfoundry/isl-mesh/model"
)

const tracerName = "github.com/signalsfoundry/isl-mesh/internal/plan"

// ErrUnsupportedConfiguration is returned when the requested
// (count, degree) combination has no generator rule. Setup must abort:
// there is nothing meaningful to build on an empty topology.
var ErrUnsupportedConfiguration = errors.New("no ISL generator rule for requested configuration")

// Planner runs the pipeline. The zero value works; fields tune it.
type Planner struct {
	Log     logging.Logger
	Metrics *observability.PipelineCollector

	LinkParams core.LinkParams
	// Installer optionally realizes each link on a physical layer.
	Installer core.LinkInstaller
	// ParallelRouting fans the per-source searches across CPUs. The
	// resulting table is identical either way.
	ParallelRouting bool
}

// Result bundles everything one pipeline run materialized.
type Result struct {
	Topology     core.Topology
	Connectivity float64
	Routes       *core.RoutingTable
	Links        *core.LinkSet
	Bindings     *core.InterfaceBindings
	Report       core.InstallReport
}

// Build runs all five stages for the given constellation members and
// installs the resulting host routes into sink. Configuration problems
// (unsupported shape, node count mismatch) abort before any side
// effect; per-pair routing gaps are recorded in the report instead.
func (p *Planner) Build(ctx context.Context, sats []*model.Satellite, shape core.WalkerShape, neighbors int, sink core.ForwardingSink) (*Result, error) {
	log := p.Log
	if log == nil {
		log = logging.Noop()
	}
	ctx, log = logging.WithRunLogger(ctx, log)

	res := &Result{}

	err := p.stage(ctx, "topology", func(ctx context.Context) error {
		if neighbors == core.DefaultNeighborsPerSatellite {
			res.Topology = core.GenerateWalkerTopology(shape)
		} else {
			res.Topology = core.GenerateTopology(len(sats), neighbors)
		}
		if res.Topology.IsEmpty() {
			return fmt.Errorf("%w: %d satellites, %d neighbors",
				ErrUnsupportedConfiguration, len(sats), neighbors)
		}
		res.Connectivity = res.Topology.MeshConnectivity()
		log.Info(ctx, "generated ISL topology",
			logging.Int("satellites", res.Topology.NumSatellites),
			logging.Int("links", res.Topology.NumLinks),
			logging.Float64("connectivity", res.Connectivity),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, "routing", func(ctx context.Context) error {
		if p.ParallelRouting {
			rt, err := core.ComputeRoutesParallel(ctx, res.Topology)
			if err != nil {
				return err
			}
			res.Routes = rt
		} else {
			res.Routes = core.ComputeRoutes(res.Topology)
		}
		log.Info(ctx, "computed static routes",
			logging.Int("satellites", res.Routes.Size()),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, "link-fabric", func(ctx context.Context) error {
		builder := &core.LinkFabricBuilder{Params: p.LinkParams, Installer: p.Installer}
		links, err := builder.Build(sats, res.Topology)
		if err != nil {
			return err
		}
		res.Links = links
		log.Info(ctx, "built ISL link fabric",
			logging.Int("links", len(links.Links)),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, "addressing", func(ctx context.Context) error {
		bindings, err := core.AssignAddresses(res.Links)
		if err != nil {
			return err
		}
		res.Bindings = bindings
		log.Info(ctx, "assigned ISL addresses",
			logging.Int("subnets", len(bindings.Subnets())),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, "route-install", func(ctx context.Context) error {
		report, err := core.InstallRoutes(sink, res.Routes, res.Bindings)
		res.Report = report
		if err != nil {
			return err
		}
		if len(report.Skipped) > 0 {
			log.Warn(ctx, "some satellite pairs were left without routes",
				logging.Int("skipped", len(report.Skipped)),
			)
		}
		log.Info(ctx, "installed static routes",
			logging.Int("installed", report.Installed),
			logging.Int("skipped", len(report.Skipped)),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.Metrics.SetPlanCounts(
		res.Topology.NumSatellites,
		res.Topology.NumLinks,
		res.Report.Installed,
		len(res.Report.Skipped),
		res.Connectivity,
	)
	return res, nil
}

// stage wraps one pipeline step with a span and a duration observation.
func (p *Planner) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "Plan/"+name)
	span.SetAttributes(attribute.String("pipeline.stage", name))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	p.Metrics.ObserveStage(name, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
