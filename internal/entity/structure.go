package entity

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// DefaultModuleExcludePattern drops fan and CPU modules from the hierarchy.
const DefaultModuleExcludePattern = `(?i)fan|cpu`

// DummyChassisIndex is the index of the chassis synthesized for devices
// whose entity table reports none.
const DummyChassisIndex = "0"

// Config holds the structure builder patterns.
type Config struct {
	ToContainerPattern   string
	ModuleExcludePattern string
}

// Chassis is a chassis row, or the synthesized dummy chassis.
type Chassis struct {
	EntityIndex  string // "" for the dummy chassis
	Index        string
	Model        string
	SerialNumber string
	Dummy        bool
}

// Module is a non-excluded module row. It is not a resource node yet;
// topology assembly materializes it when a port needs it.
type Module struct {
	EntityIndex  string
	Position     string
	ParentIndex  string // entity index of the resolved module or chassis parent
	ID           string // dash-joined positional id, chassis index first
	Name         string
	Model        string
	SerialNumber string
	Version      string
}

// PowerSupply is a power supply row with its resolved chassis.
type PowerSupply struct {
	EntityIndex  string
	Position     string
	Chassis      *Chassis
	Model        string
	SerialNumber string
	Version      string
	Description  string
}

// Port is a physical port row. Electrical attributes come from IF-MIB.
type Port struct {
	EntityIndex string
	Name        string
	Description string
}

// Structure is the physical hierarchy of one device snapshot.
type Structure struct {
	entities        map[string]PhysicalEntity
	roles           map[string]Role
	chassis         []*Chassis
	chassisByEntity map[string]*Chassis
	modules         map[string]*Module
	powerSupplies   []*PowerSupply
	ports           []Port
	portsByIndex    map[string]Port
	parents         map[string]string
	moduleIDs       map[string]string
}

// Entity returns the raw row for an entity index.
func (s *Structure) Entity(index string) (PhysicalEntity, bool) {
	e, ok := s.entities[index]
	return e, ok
}

// Role returns the classified role of an entity index.
func (s *Structure) Role(index string) Role {
	return s.roles[index]
}

// Chassis returns the chassis in discovery order.
func (s *Structure) Chassis() []*Chassis {
	return s.chassis
}

// ChassisByEntity resolves an entity index, including de-duplicated
// aliases, to its chassis.
func (s *Structure) ChassisByEntity(index string) (*Chassis, bool) {
	c, ok := s.chassisByEntity[index]
	return c, ok
}

// ChassisByIndex finds a chassis by its native index.
func (s *Structure) ChassisByIndex(index string) (*Chassis, bool) {
	for _, c := range s.chassis {
		if c.Index == index {
			return c, true
		}
	}
	return nil, false
}

// Module returns the module registered for an entity index.
func (s *Structure) Module(index string) (*Module, bool) {
	m, ok := s.modules[index]
	return m, ok
}

// ModuleByID looks up a module by dash-joined positional id ("0-3-2").
func (s *Structure) ModuleByID(id string) (*Module, bool) {
	idx, ok := s.moduleIDs[id]
	if !ok {
		return nil, false
	}
	return s.modules[idx], true
}

// Modules returns all modules ordered by entity index.
func (s *Structure) Modules() []*Module {
	out := make([]*Module, 0, len(s.modules))
	for _, m := range s.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return lessIndex(out[i].EntityIndex, out[j].EntityIndex) })
	return out
}

// PowerSupplies returns power supplies in discovery order.
func (s *Structure) PowerSupplies() []*PowerSupply {
	return s.powerSupplies
}

// Ports returns physical ports in discovery order.
func (s *Structure) Ports() []Port {
	return s.ports
}

// Port returns the physical port registered for an entity index.
func (s *Structure) Port(index string) (Port, bool) {
	p, ok := s.portsByIndex[index]
	return p, ok
}

// Parent returns the resolved structural parent of a port or module.
func (s *Structure) Parent(index string) (string, bool) {
	p, ok := s.parents[index]
	return p, ok
}

// Builder turns entity rows into a Structure.
type Builder struct {
	classifier    *Classifier
	moduleExclude *regexp.Regexp
	logger        *zap.Logger
}

// NewBuilder compiles cfg's patterns. Empty patterns use the defaults.
func NewBuilder(cfg Config, logger *zap.Logger) (*Builder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	classifier, err := NewClassifier(cfg.ToContainerPattern)
	if err != nil {
		return nil, err
	}
	pattern := cfg.ModuleExcludePattern
	if pattern == "" {
		pattern = DefaultModuleExcludePattern
	}
	exclude, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile module exclude pattern: %w", err)
	}
	return &Builder{classifier: classifier, moduleExclude: exclude, logger: logger}, nil
}

// Build scans every row once and resolves the hierarchy. Rows are processed
// in index order so repeated builds of one snapshot are identical.
func (b *Builder) Build(entities []PhysicalEntity) (*Structure, error) {
	s := &Structure{
		entities:        make(map[string]PhysicalEntity, len(entities)),
		roles:           make(map[string]Role, len(entities)),
		chassisByEntity: make(map[string]*Chassis),
		modules:         make(map[string]*Module),
		portsByIndex:    make(map[string]Port),
		parents:         make(map[string]string),
		moduleIDs:       make(map[string]string),
	}
	sorted := sortByIndex(entities)
	for _, e := range sorted {
		s.entities[e.Index] = e
		s.roles[e.Index] = b.classifier.Classify(e)
	}

	for _, e := range sorted {
		if s.roles[e.Index] == RoleChassis {
			b.addChassis(s, e)
		}
	}
	if len(s.chassis) == 0 {
		s.chassis = append(s.chassis, &Chassis{Index: DummyChassisIndex, Dummy: true})
		b.logger.Warn("no chassis in entity table, added dummy chassis",
			zap.String("index", DummyChassisIndex),
		)
	}

	for _, e := range sorted {
		var err error
		switch s.roles[e.Index] {
		case RoleModule:
			err = b.addModule(s, e)
		case RolePort:
			err = b.addPort(s, e)
		case RolePowerSupply:
			err = b.addPowerSupply(s, e)
		}
		if err != nil {
			return nil, err
		}
	}

	b.assignModuleIDs(s)

	b.logger.Debug("physical structure built",
		zap.Int("entities", len(sorted)),
		zap.Int("chassis", len(s.chassis)),
		zap.Int("modules", len(s.modules)),
		zap.Int("ports", len(s.ports)),
		zap.Int("power_supplies", len(s.powerSupplies)),
	)
	return s, nil
}

func (b *Builder) addChassis(s *Structure, e PhysicalEntity) {
	for _, c := range s.chassis {
		if e.SerialNumber != "" && c.SerialNumber == e.SerialNumber && c.Model == e.Model {
			s.chassisByEntity[e.Index] = c
			b.logger.Debug("duplicate chassis",
				zap.String("entity", e.Index),
				zap.String("same_as", c.EntityIndex),
			)
			return
		}
	}

	index := normalizePosition(e.PositionID)
	if _, taken := s.ChassisByIndex(index); taken {
		next := nextFreeIndex(func(i string) bool {
			_, ok := s.ChassisByIndex(i)
			return ok
		})
		b.logger.Warn("chassis index already in use",
			zap.String("entity", e.Index),
			zap.String("index", index),
			zap.String("assigned", next),
		)
		index = next
	}

	c := &Chassis{
		EntityIndex:  e.Index,
		Index:        index,
		Model:        e.Model,
		SerialNumber: e.SerialNumber,
	}
	s.chassis = append(s.chassis, c)
	s.chassisByEntity[e.Index] = c
	b.logger.Debug("discovered chassis", zap.String("entity", e.Index), zap.String("model", e.Model))
}

func (b *Builder) addModule(s *Structure, e PhysicalEntity) error {
	if b.excluded(e) {
		b.logger.Debug("module excluded",
			zap.String("entity", e.Index),
			zap.String("vendor_type", e.VendorType),
		)
		return nil
	}

	position := e.PositionID
	from := e
	container, found, err := b.walkUp(s, e, func(p PhysicalEntity, role Role) walkStep {
		switch {
		case role == RoleContainer || role == RoleBackplane:
			return walkFound
		case role == RolePort || (role == RoleModule && b.excluded(p)):
			return walkContinue
		}
		return walkAbort
	})
	if err != nil {
		return err
	}
	if found {
		position = container.PositionID
		from = container
	}

	m := &Module{
		EntityIndex:  e.Index,
		Position:     normalizePosition(position),
		Name:         e.Name,
		Model:        e.Model,
		SerialNumber: e.SerialNumber,
		Version:      e.OSVersion,
	}
	parent, found, err := b.structuralParent(s, from)
	if err != nil {
		return err
	}
	if found {
		m.ParentIndex = parent.Index
		s.parents[e.Index] = parent.Index
	}
	s.modules[e.Index] = m
	b.logger.Debug("discovered module",
		zap.String("entity", e.Index),
		zap.String("position", m.Position),
		zap.String("parent", m.ParentIndex),
	)
	return nil
}

func (b *Builder) addPort(s *Structure, e PhysicalEntity) error {
	if e.Name == "" && e.Description == "" {
		b.logger.Debug("port without name skipped", zap.String("entity", e.Index))
		return nil
	}
	parent, found, err := b.structuralParent(s, e)
	if err != nil {
		return err
	}
	p := Port{EntityIndex: e.Index, Name: e.Name, Description: e.Description}
	s.ports = append(s.ports, p)
	s.portsByIndex[e.Index] = p
	if found {
		s.parents[e.Index] = parent.Index
	}
	return nil
}

func (b *Builder) addPowerSupply(s *Structure, e PhysicalEntity) error {
	parent, found, err := b.walkUp(s, e, func(_ PhysicalEntity, role Role) walkStep {
		if role == RoleChassis {
			return walkFound
		}
		return walkContinue
	})
	if err != nil {
		return err
	}

	var chassis *Chassis
	switch {
	case found:
		chassis = s.chassisByEntity[parent.Index]
	case len(s.chassis) == 1 && s.chassis[0].Dummy:
		chassis = s.chassis[0]
	default:
		return &StructureError{Index: e.Index, Reason: "power supply has no chassis ancestor"}
	}

	s.powerSupplies = append(s.powerSupplies, &PowerSupply{
		EntityIndex:  e.Index,
		Position:     e.PositionID,
		Chassis:      chassis,
		Model:        e.Model,
		SerialNumber: e.SerialNumber,
		Version:      e.HardwareVersion,
		Description:  e.Description,
	})
	return nil
}

// structuralParent walks up from e through containers, backplanes, ports
// and excluded modules to the nearest chassis or module.
func (b *Builder) structuralParent(s *Structure, e PhysicalEntity) (PhysicalEntity, bool, error) {
	return b.walkUp(s, e, func(p PhysicalEntity, role Role) walkStep {
		if role == RoleChassis || (role == RoleModule && !b.excluded(p)) {
			return walkFound
		}
		return walkContinue
	})
}

func (b *Builder) excluded(e PhysicalEntity) bool {
	if e.VendorType != "" {
		return b.moduleExclude.MatchString(e.VendorType)
	}
	return b.moduleExclude.MatchString(e.Name)
}

type walkStep int

const (
	walkContinue walkStep = iota
	walkFound
	walkAbort
)

// walkUp follows entPhysicalContainedIn from e until step reports found or
// abort, or the chain leaves the table. A repeated index is a StructureError.
func (b *Builder) walkUp(s *Structure, e PhysicalEntity, step func(PhysicalEntity, Role) walkStep) (PhysicalEntity, bool, error) {
	seen := map[string]bool{e.Index: true}
	cur := e
	for {
		parent, ok := s.entities[cur.ParentIndex]
		if !ok {
			return PhysicalEntity{}, false, nil
		}
		if seen[parent.Index] {
			return PhysicalEntity{}, false, &StructureError{
				Index:  e.Index,
				Reason: fmt.Sprintf("containment cycle through entity %s", parent.Index),
			}
		}
		seen[parent.Index] = true

		switch step(parent, s.roles[parent.Index]) {
		case walkFound:
			return parent, true, nil
		case walkAbort:
			return PhysicalEntity{}, false, nil
		}
		cur = parent
	}
}

// assignModuleIDs computes each module's dash id. Modules are visited by
// descending entity index so nested modules register before their parents.
func (b *Builder) assignModuleIDs(s *Structure) {
	mods := s.Modules()
	for i := len(mods) - 1; i >= 0; i-- {
		m := mods[i]
		segs := []string{m.Position}
		chassis := s.chassis[0].Index
		parent := m.ParentIndex
		for hops := 0; parent != "" && hops <= len(s.modules); hops++ {
			if c, ok := s.chassisByEntity[parent]; ok {
				chassis = c.Index
				break
			}
			pm, ok := s.modules[parent]
			if !ok {
				break
			}
			segs = append(segs, pm.Position)
			parent = pm.ParentIndex
		}
		segs = append(segs, chassis)
		for l, r := 0, len(segs)-1; l < r; l, r = l+1, r-1 {
			segs[l], segs[r] = segs[r], segs[l]
		}
		m.ID = strings.Join(segs, "-")
		if other, dup := s.moduleIDs[m.ID]; dup {
			b.logger.Debug("module id already registered",
				zap.String("id", m.ID),
				zap.String("entity", m.EntityIndex),
				zap.String("registered", other),
			)
			continue
		}
		s.moduleIDs[m.ID] = m.EntityIndex
	}
}

func normalizePosition(pos string) string {
	if pos == "" || pos == "-1" {
		return "0"
	}
	return pos
}

func nextFreeIndex(taken func(string) bool) string {
	for n := 0; ; n++ {
		if s := strconv.Itoa(n); !taken(s) {
			return s
		}
	}
}
