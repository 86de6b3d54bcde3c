// Package mapping correlates ENTITY-MIB physical ports with IF-MIB
// interfaces, through entAliasMappingTable when the device exposes it and
// through positional ids extracted from port names otherwise.
package mapping

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/HerbHall/snmpautoload/internal/entity"
	"github.com/HerbHall/snmpautoload/internal/iftable"
	"github.com/HerbHall/snmpautoload/internal/portid"
	"github.com/HerbHall/snmpautoload/internal/snmp"
)

// Interfaces is the part of the logical interface table the mapping reads.
type Interfaces interface {
	Ports() []*iftable.LogicalPort
	Port(ifIndex string) (*iftable.LogicalPort, bool)
}

// AliasReader walks optional MIB columns.
type AliasReader interface {
	OptionalColumns(ctx context.Context, cols ...snmp.Column) *snmp.Table
}

// FetchAliases walks entAliasMappingIdentifier. Devices without the table
// yield an empty table.
func FetchAliases(ctx context.Context, r AliasReader) *snmp.Table {
	return r.OptionalColumns(ctx, snmp.EntAliasMappingIdentifier)
}

// Service resolves physical ports to logical ports. Every logical port is
// handed out at most once per run.
type Service struct {
	ifaces Interfaces
	alias  map[string]string // entPhysicalIndex -> ifIndex

	pool  map[string]*iftable.LogicalPort // logical ports not yet mapped
	order []string                        // pool keys in ifIndex order
	names map[string]string               // lower-cased name -> ifIndex

	resolved    map[string]string // entPhysicalIndex -> ifIndex, "" for a miss
	ambiguities int
	logger      *zap.Logger
}

// New builds the alias map and the candidate pools. Ports reached through
// the alias table leave the pools immediately.
func New(aliases *snmp.Table, ifaces Interfaces, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		ifaces:   ifaces,
		alias:    make(map[string]string),
		pool:     make(map[string]*iftable.LogicalPort),
		names:    make(map[string]string),
		resolved: make(map[string]string),
		logger:   logger,
	}
	for _, p := range ifaces.Ports() {
		s.pool[p.IfIndex] = p
		s.order = append(s.order, p.IfIndex)
		for _, n := range []string{p.Name, p.DescrName} {
			key := strings.ToLower(n)
			if _, taken := s.names[key]; n != "" && !taken {
				s.names[key] = p.IfIndex
			}
		}
	}

	if aliases != nil {
		for _, idx := range aliases.Indexes() {
			phys, _, _ := strings.Cut(idx, ".")
			if _, seen := s.alias[phys]; seen {
				continue
			}
			row, _ := aliases.Row(idx)
			ifIndex := aliasIfIndex(row.Safe(snmp.EntAliasMappingIdentifier.Name))
			if ifIndex == "" {
				continue
			}
			s.alias[phys] = ifIndex
			delete(s.pool, ifIndex)
		}
	}
	logger.Debug("port mapping initialized",
		zap.Int("aliases", len(s.alias)),
		zap.Int("candidates", len(s.pool)),
	)
	return s
}

// aliasIfIndex takes the ifIndex from an identifier OID such as
// "1.3.6.1.2.1.2.2.1.1.12" or "IF-MIB::ifIndex.12".
func aliasIfIndex(oid string) string {
	i := strings.LastIndex(oid, ".")
	if i < 0 || i == len(oid)-1 {
		return ""
	}
	return oid[i+1:]
}

// HasAliases reports whether the device exposes an alias mapping table.
func (s *Service) HasAliases() bool {
	return len(s.alias) > 0
}

// Mapping returns the logical port of a physical port. Results are
// memoized: asking twice for one physical port returns the same answer.
func (s *Service) Mapping(p entity.Port) (*iftable.LogicalPort, bool) {
	if ifIndex, done := s.resolved[p.EntityIndex]; done {
		if ifIndex == "" {
			return nil, false
		}
		return s.ifaces.Port(ifIndex)
	}

	lp := s.resolve(p)
	if lp == nil {
		s.resolved[p.EntityIndex] = ""
		s.logger.Debug("no logical port for physical port",
			zap.String("entity", p.EntityIndex),
			zap.String("name", p.Name),
		)
		return nil, false
	}
	s.resolved[p.EntityIndex] = lp.IfIndex
	return lp, true
}

func (s *Service) resolve(p entity.Port) *iftable.LogicalPort {
	if ifIndex, ok := s.alias[p.EntityIndex]; ok {
		if lp, ok := s.ifaces.Port(ifIndex); ok {
			return lp
		}
		return nil
	}
	if lp := s.byExactName(p.Name); lp != nil {
		return lp
	}
	if lp := s.byExactName(p.Description); lp != nil {
		return lp
	}
	if lp := s.byPortID(p.EntityIndex, p.Name); lp != nil {
		return lp
	}
	return s.byPortID(p.EntityIndex, p.Description)
}

func (s *Service) byExactName(name string) *iftable.LogicalPort {
	if name == "" {
		return nil
	}
	if ifIndex, ok := s.names[strings.ToLower(name)]; ok {
		return s.take(ifIndex)
	}
	return nil
}

// byPortID scans the pool for logical ports carrying the positional id
// found in name.
func (s *Service) byPortID(entityIndex, name string) *iftable.LogicalPort {
	if name == "" {
		return nil
	}
	id := portid.Extract(name)
	if id == "" {
		return nil
	}
	re := portid.Matcher(id)
	var matches []string
	for _, ifIndex := range s.order {
		lp, ok := s.pool[ifIndex]
		if !ok {
			continue
		}
		if re.MatchString(lp.Name) || re.MatchString(lp.DescrName) {
			matches = append(matches, ifIndex)
		}
	}
	if len(matches) == 0 {
		return nil
	}
	if len(matches) > 1 {
		s.ambiguities++
		s.logger.Warn("mapping ambiguity",
			zap.String("entity", entityIndex),
			zap.String("name", name),
			zap.String("port_id", id),
			zap.Strings("candidates", matches),
		)
	}
	return s.take(matches[0])
}

func (s *Service) take(ifIndex string) *iftable.LogicalPort {
	lp, ok := s.pool[ifIndex]
	if !ok {
		return nil
	}
	delete(s.pool, ifIndex)
	return lp
}

// Unmapped returns the logical ports no physical port has claimed, in
// ifIndex order.
func (s *Service) Unmapped() []*iftable.LogicalPort {
	var out []*iftable.LogicalPort
	for _, ifIndex := range s.order {
		if lp, ok := s.pool[ifIndex]; ok {
			out = append(out, lp)
		}
	}
	return out
}

// Ambiguities counts physical ports that matched more than one candidate.
func (s *Service) Ambiguities() int {
	return s.ambiguities
}
