// Package autoload runs one discovery of a device: system info, the
// physical structure, the logical interface table and the topology
// assembly that joins them into AutoloadDetails.
package autoload

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HerbHall/snmpautoload/internal/entity"
	"github.com/HerbHall/snmpautoload/internal/iftable"
	"github.com/HerbHall/snmpautoload/internal/mapping"
	"github.com/HerbHall/snmpautoload/internal/snmp"
	"github.com/HerbHall/snmpautoload/internal/topology"
	"github.com/HerbHall/snmpautoload/pkg/models"
)

// ErrUnsupportedOS is returned when sysDescr matches none of the supported
// OS patterns. No table is walked in that case.
var ErrUnsupportedOS = errors.New("unsupported device os")

// Reader is the SNMP surface a discovery run needs. *snmp.Client
// satisfies it.
type Reader interface {
	Get(ctx context.Context, cols ...snmp.Column) (snmp.Row, error)
	Columns(ctx context.Context, cols ...snmp.Column) (*snmp.Table, error)
	OptionalColumns(ctx context.Context, cols ...snmp.Column) *snmp.Table
}

// Discovery builds AutoloadDetails for the device behind one Reader.
type Discovery struct {
	reader      Reader
	cfg         Config
	supportedOS []*regexp.Regexp
	builder     *entity.Builder
	metrics     *Metrics
	logger      *zap.Logger
}

// NewDiscovery compiles cfg's patterns. A nil metrics records nothing.
func NewDiscovery(reader Reader, cfg Config, metrics *Metrics, logger *zap.Logger) (*Discovery, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	d := &Discovery{
		reader:  reader,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
	for _, p := range cfg.SupportedOS {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile supported os pattern %q: %w", p, err)
		}
		d.supportedOS = append(d.supportedOS, re)
	}
	for name, p := range map[string]string{
		"port exclude":         cfg.PortExcludePattern,
		"port-channel exclude": cfg.PortChannelExcludePattern,
	} {
		if _, err := regexp.Compile(p); err != nil {
			return nil, fmt.Errorf("compile %s pattern: %w", name, err)
		}
	}
	builder, err := entity.NewBuilder(cfg.entityConfig(), logger)
	if err != nil {
		return nil, err
	}
	d.builder = builder
	return d, nil
}

// Run performs one discovery. On any failure the returned details are nil.
func (d *Discovery) Run(ctx context.Context) (*models.AutoloadDetails, error) {
	start := time.Now()
	logger := d.logger.With(zap.String("run_id", uuid.New().String()))

	details, err := d.run(ctx, logger)
	d.metrics.Duration.Observe(time.Since(start).Seconds())
	d.metrics.Runs.WithLabelValues(resultOf(err)).Inc()
	if err != nil {
		logger.Info("discovery failed", zap.Error(err))
		return nil, err
	}
	logger.Info("discovery complete",
		zap.Int("resources", len(details.Resources)),
		zap.Int("attributes", len(details.Attributes)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return details, nil
}

func (d *Discovery) run(ctx context.Context, logger *zap.Logger) (*models.AutoloadDetails, error) {
	sys, err := ReadSystemInfo(ctx, d.reader)
	if err != nil {
		return nil, err
	}
	if !d.supported(sys.Description) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOS, sys.Description)
	}
	logger.Info("discovery started",
		zap.String("sys_name", sys.Name),
		zap.String("sys_object_id", sys.ObjectID),
	)

	rows, err := entity.Load(ctx, d.reader)
	if err != nil {
		return nil, err
	}
	structure, err := d.builder.Build(rows)
	if err != nil {
		return nil, fmt.Errorf("build physical structure: %w", err)
	}

	ifaces, err := iftable.Load(ctx, d.reader, d.cfg.interfaceConfig(), logger)
	if err != nil {
		return nil, err
	}
	defer ifaces.Wait()
	mapper := mapping.New(mapping.FetchAliases(ctx, d.reader), ifaces, logger)

	name := d.cfg.ResourceName
	if name == "" {
		name = sys.Name
	}
	model := models.NewResourceModel(name)
	assembler := topology.New(structure, ifaces, mapper, model, d.cfg.topologyConfig(), logger)
	if err := assembler.Assemble(); err != nil {
		return nil, fmt.Errorf("assemble topology: %w", err)
	}
	d.observe(assembler.Stats(), mapper.Ambiguities())
	logger.Debug("physical mapping",
		zap.Bool("alias_table", mapper.HasAliases()),
		zap.Int("unclaimed_ports", len(mapper.Unmapped())),
	)

	model.Vendor = sys.Vendor()
	model.Model = chassisModel(model, sys.ObjectID)
	model.OSVersion = sys.OSVersion()
	model.SystemName = sys.Name
	model.Contact = sys.Contact
	model.Location = sys.Location

	details, err := model.Build()
	if err != nil {
		return nil, fmt.Errorf("build autoload details: %w", err)
	}
	return details, nil
}

func (d *Discovery) supported(descr string) bool {
	if len(d.supportedOS) == 0 {
		return true
	}
	for _, re := range d.supportedOS {
		if re.MatchString(descr) {
			return true
		}
	}
	return false
}

func (d *Discovery) observe(st topology.Stats, ambiguities int) {
	for path, n := range st.Placed {
		d.metrics.PortsPlaced.WithLabelValues(path).Add(float64(n))
	}
	for kind, n := range st.Synthesized {
		d.metrics.NodesSynthesized.WithLabelValues(string(kind)).Add(float64(n))
	}
	d.metrics.PortsDropped.Add(float64(st.Dropped))
	d.metrics.MappingAmbiguities.Add(float64(ambiguities))
}

// chassisModel is the first chassis model reported, else sysObjectID.
func chassisModel(m *models.ResourceModel, objectID string) string {
	for _, ch := range m.Chassis() {
		if ch.Model != "" {
			return ch.Model
		}
	}
	return objectID
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, ErrUnsupportedOS):
		return ResultUnsupportedOS
	case entity.IsStructureError(err):
		return ResultStructureError
	case topology.IsTopologyError(err):
		return ResultTopologyError
	default:
		return ResultError
	}
}
