// Package topology places chassis, modules, power supplies, ports and
// port-channels into the output resource tree, reconciling the ENTITY-MIB
// hierarchy with positional ids taken from interface names.
package topology

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/HerbHall/snmpautoload/internal/entity"
	"github.com/HerbHall/snmpautoload/internal/iftable"
	"github.com/HerbHall/snmpautoload/internal/portid"
	"github.com/HerbHall/snmpautoload/pkg/models"
)

// Placement paths, reported in Stats.Placed.
const (
	PathReuse     = "reuse"
	PathStructure = "structure"
	PathGuess     = "guess"
	PathChassis   = "chassis"
)

// Config controls assembly.
type Config struct {
	// Permissive logs and skips ports that raise a TopologyError instead of
	// failing the run.
	Permissive bool
}

// Interfaces is the logical interface table as assembly consumes it.
type Interfaces interface {
	Ports() []*iftable.LogicalPort
	PortChannels() []*iftable.PortChannel
	Excluded(name string) bool
	Adjacent(p *iftable.LogicalPort) string
}

// Mapper resolves physical ports to logical ports.
type Mapper interface {
	Mapping(p entity.Port) (*iftable.LogicalPort, bool)
}

// Stats summarizes one assembly.
type Stats struct {
	Placed      map[string]int
	Synthesized map[models.Kind]int
	Dropped     int
	Skipped     int
}

// Assembler builds the resource tree of one discovery run. It is single use.
type Assembler struct {
	structure *entity.Structure
	ifaces    Interfaces
	mapper    Mapper
	model     *models.ResourceModel
	cfg       Config
	logger    *zap.Logger

	chassis      []*models.Node
	chassisByIdx map[string]*models.Node
	modules      map[string]*models.Node // module entity index -> node
	moduleIDs    map[string]*models.Node // dash positional id -> node
	reuse        map[string]*models.Node // port parent id -> parent node
	identified   map[string]bool         // ifIndex
	placed       map[string]*models.Node // ifIndex -> port node

	stats Stats
}

// New prepares an assembler writing into model.
func New(structure *entity.Structure, ifaces Interfaces, mapper Mapper, model *models.ResourceModel, cfg Config, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{
		structure:    structure,
		ifaces:       ifaces,
		mapper:       mapper,
		model:        model,
		cfg:          cfg,
		logger:       logger,
		chassisByIdx: make(map[string]*models.Node),
		modules:      make(map[string]*models.Node),
		moduleIDs:    make(map[string]*models.Node),
		reuse:        make(map[string]*models.Node),
		identified:   make(map[string]bool),
		placed:       make(map[string]*models.Node),
		stats: Stats{
			Placed:      make(map[string]int),
			Synthesized: make(map[models.Kind]int),
		},
	}
}

// Assemble runs every placement pass: chassis, power ports, ports mapped
// to physical rows, remaining logical ports, then port-channels.
func (a *Assembler) Assemble() error {
	a.addChassis()
	a.addPowerPorts()
	if err := a.placeMappedPorts(); err != nil {
		return err
	}
	if err := a.placeUnmappedPorts(); err != nil {
		return err
	}
	a.addPortChannels()

	a.logger.Debug("topology assembled",
		zap.Int("chassis", len(a.chassis)),
		zap.Int("ports", len(a.placed)),
		zap.Int("dropped", a.stats.Dropped),
		zap.Int("skipped", a.stats.Skipped),
	)
	return nil
}

// Stats returns counters of the last Assemble call.
func (a *Assembler) Stats() Stats {
	return a.stats
}

// PortNode returns the node a logical port was placed as.
func (a *Assembler) PortNode(ifIndex string) (*models.Node, bool) {
	n, ok := a.placed[ifIndex]
	return n, ok
}

func (a *Assembler) addChassis() {
	for _, c := range a.structure.Chassis() {
		n := models.NewChassis(c.Index)
		n.Model = c.Model
		n.SerialNumber = c.SerialNumber
		a.model.ConnectChassis(n)
		a.chassis = append(a.chassis, n)
		a.chassisByIdx[c.Index] = n
	}
}

func (a *Assembler) addPowerPorts() {
	for _, ps := range a.structure.PowerSupplies() {
		parent := a.chassisByIdx[ps.Chassis.Index]
		if parent == nil {
			parent = a.chassis[0]
		}
		index := ps.Position
		if index == "" || index == "-1" || hasChild(parent, models.KindPowerPort, index, nil) {
			index = freeIndex(parent, models.KindPowerPort)
		}
		n := models.NewPowerPort(index)
		n.Model = ps.Model
		n.SerialNumber = ps.SerialNumber
		n.Version = ps.Version
		n.Description = ps.Description
		parent.ConnectPowerPort(n)
	}
}

func (a *Assembler) placeMappedPorts() error {
	for _, p := range a.structure.Ports() {
		lp, ok := a.mapper.Mapping(p)
		if !ok || a.identified[lp.IfIndex] {
			continue
		}
		if a.excluded(p.Name, p.Description, lp.Name, lp.DescrName) {
			a.drop(lp, "physical port excluded")
			continue
		}

		segs := portid.Segments(lp.PortID)
		if parent, ok := a.reuse[reuseKey(segs)]; ok {
			a.attach(parent, lp, segs, PathReuse)
			continue
		}

		parent, err := a.structureParent(p, lp, segs)
		if err != nil {
			if err := a.fail(err); err != nil {
				return err
			}
			continue
		}
		if parent == nil {
			// Left for the logical pass.
			continue
		}
		a.attach(parent, lp, segs, PathStructure)
		a.correctAncestors(parent, segs)
		if key := reuseKey(segs); key != "" {
			if _, ok := a.reuse[key]; !ok {
				a.reuse[key] = parent
			}
		}
	}
	return nil
}

func (a *Assembler) placeUnmappedPorts() error {
	for _, lp := range a.ifaces.Ports() {
		if a.identified[lp.IfIndex] {
			continue
		}
		if a.excluded(lp.Name, lp.DescrName) {
			a.drop(lp, "logical port excluded")
			continue
		}

		segs := portid.Segments(lp.PortID)
		key := reuseKey(segs)
		if parent, ok := a.reuse[key]; ok {
			a.attach(parent, lp, segs, PathReuse)
			continue
		}

		parent, err := a.guessParent(lp, segs)
		if err != nil {
			if err := a.fail(err); err != nil {
				return err
			}
			continue
		}
		if parent != nil {
			a.attach(parent, lp, segs, PathGuess)
			if key != "" {
				a.reuse[key] = parent
			}
			continue
		}
		a.attach(a.chassisFor(segs), lp, segs, PathChassis)
	}
	return nil
}

func (a *Assembler) addPortChannels() {
	used := make(map[string]bool)
	for _, pc := range a.ifaces.PortChannels() {
		index := pc.Index
		if used[index] {
			index = pc.IfIndex
		}
		for n := 0; used[index]; n++ {
			index = strconv.Itoa(n)
		}
		used[index] = true
		n := models.NewPortChannel(index, pc.Name)
		n.AssociatedPorts = pc.AssociatedPorts
		n.Description = pc.Description
		n.IPv4 = pc.IPv4
		n.IPv6 = pc.IPv6
		a.model.ConnectPortChannel(n)
	}
}

func (a *Assembler) excluded(names ...string) bool {
	for _, n := range names {
		if a.ifaces.Excluded(n) {
			return true
		}
	}
	return false
}

func (a *Assembler) drop(lp *iftable.LogicalPort, reason string) {
	a.identified[lp.IfIndex] = true
	a.stats.Dropped++
	a.logger.Debug("port dropped",
		zap.String("if_index", lp.IfIndex),
		zap.String("name", lp.Name),
		zap.String("reason", reason),
	)
}

// fail returns err unless permissive mode turns it into a logged skip.
func (a *Assembler) fail(err error) error {
	if !a.cfg.Permissive || !IsTopologyError(err) {
		return err
	}
	a.stats.Skipped++
	a.logger.Warn("port skipped", zap.Error(err))
	return nil
}

// attach creates the port node under parent. The port index is the last
// positional segment, or the ifIndex when that is missing or taken, or the
// lowest free index when both are taken.
func (a *Assembler) attach(parent *models.Node, lp *iftable.LogicalPort, segs []string, path string) {
	index := lp.IfIndex
	if len(segs) > 0 {
		index = segs[len(segs)-1]
	}
	if hasChild(parent, models.KindPort, index, nil) {
		index = lp.IfIndex
	}
	if hasChild(parent, models.KindPort, index, nil) {
		index = freeIndex(parent, models.KindPort)
	}

	n := models.NewPort(index, lp.NodeName())
	n.MAC = lp.MAC
	n.L2ProtocolType = lp.Type
	n.IPv4 = lp.IPv4
	n.IPv6 = lp.IPv6
	n.Description = lp.Description
	n.Bandwidth = lp.Bandwidth
	n.MTU = lp.MTU
	n.Duplex = lp.Duplex
	n.AutoNegotiation = lp.AutoNegotiation
	n.Adjacent = a.ifaces.Adjacent(lp)
	parent.ConnectPort(n)

	a.identified[lp.IfIndex] = true
	a.placed[lp.IfIndex] = n
	a.stats.Placed[path]++
	a.logger.Debug("port placed",
		zap.String("if_index", lp.IfIndex),
		zap.String("address", n.Address.String()),
		zap.String("path", path),
	)
}

// chassisFor picks the chassis a port without module structure hangs off:
// the one named by the id's leading segment when several exist, else the
// first.
func (a *Assembler) chassisFor(segs []string) *models.Node {
	if len(a.chassis) > 1 && len(segs) > 1 {
		if n, ok := a.chassisByIdx[segs[0]]; ok {
			return n
		}
	}
	if len(a.chassis) == 0 {
		n := models.NewChassis(entity.DummyChassisIndex)
		a.model.ConnectChassis(n)
		a.chassis = append(a.chassis, n)
		a.chassisByIdx[entity.DummyChassisIndex] = n
		a.logger.Warn("added dummy chassis", zap.String("index", entity.DummyChassisIndex))
	}
	return a.chassis[0]
}

// reuseKey is the parent part of a port id. Ids deeper than four segments
// drop one more trailing segment.
func reuseKey(segs []string) string {
	if len(segs) < 2 {
		return ""
	}
	parent := segs[:len(segs)-1]
	if len(parent) > 3 {
		parent = parent[:len(parent)-1]
	}
	return portid.Join(parent)
}

// hasChild reports whether parent already holds a child of kind with index,
// other than except.
func hasChild(parent *models.Node, kind models.Kind, index string, except *models.Node) bool {
	for _, c := range parent.SubResources() {
		if c != except && c.Kind == kind && c.Index() == index {
			return true
		}
	}
	return false
}

func freeIndex(parent *models.Node, kind models.Kind) string {
	for n := 0; ; n++ {
		if s := strconv.Itoa(n); !hasChild(parent, kind, s, nil) {
			return s
		}
	}
}

func topologyError(lp *iftable.LogicalPort, reason string, args ...any) *TopologyError {
	return &TopologyError{Port: lp.Name, PortID: lp.PortID, Reason: fmt.Sprintf(reason, args...)}
}
