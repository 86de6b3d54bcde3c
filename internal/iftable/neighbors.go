package iftable

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/HerbHall/snmpautoload/internal/snmp"
)

// LLDP local port id subtypes used as lookup keys (lower-cased enum names).
const (
	subtypeInterfaceName  = "interfacename"
	subtypeNetworkAddress = "networkaddress"
	subtypeMACAddress     = "macaddress"
)

type adjacency struct {
	subtype string
	key     string // local port id or description as reported by LLDP
	value   string // "<remote host> through <remote port>"
}

// NeighborTables holds the raw LLDP and CDP walks.
type NeighborTables struct {
	LLDPLocal  *snmp.Table
	LLDPRemote *snmp.Table
	CDP        *snmp.Table
}

// Neighbors converts LLDP/CDP tables into per-port adjacency strings. The
// conversion runs in the background; the first lookup waits for it.
type Neighbors struct {
	wg     conc.WaitGroup
	joined sync.Once

	tables NeighborTables
	logger *zap.Logger

	// Written only by the conversion goroutine, read after the join.
	bySubtype map[string]map[string]string
	entries   []adjacency
	cdp       map[string]string

	used map[string]bool
}

// NewNeighbors starts converting tables in the background.
func NewNeighbors(tables NeighborTables, logger *zap.Logger) *Neighbors {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Neighbors{
		tables:    tables,
		logger:    logger,
		bySubtype: make(map[string]map[string]string),
		cdp:       make(map[string]string),
		used:      make(map[string]bool),
	}
	n.wg.Go(n.convert)
	return n
}

// Wait blocks until the background conversion has finished. It is safe
// to call more than once.
func (n *Neighbors) Wait() {
	n.joined.Do(n.wg.Wait)
}

func (n *Neighbors) convert() {
	n.convertLLDP()
	n.convertCDP()
	n.logger.Debug("neighbor tables converted",
		zap.Int("lldp_entries", len(n.entries)),
		zap.Int("cdp_entries", len(n.cdp)),
	)
}

func (n *Neighbors) convertLLDP() {
	loc, rem := n.tables.LLDPLocal, n.tables.LLDPRemote
	if loc == nil || rem == nil || loc.Len() == 0 || rem.Len() == 0 {
		return
	}

	// Remote index is lldpRemTimeMark.lldpRemLocalPortNum.lldpRemIndex.
	remote := make(map[string]string)
	for _, idx := range rem.Indexes() {
		parts := strings.Split(idx, ".")
		if len(parts) != 3 {
			continue
		}
		if _, seen := remote[parts[1]]; seen {
			continue
		}
		row, _ := rem.Row(idx)
		port := row.Safe(snmp.LLDPRemPortDesc.Name)
		if port == "" {
			port = row.Safe(snmp.LLDPRemPortID.Name)
		}
		remote[parts[1]] = adjacencyString(row.Safe(snmp.LLDPRemSysName.Name), port)
	}

	for _, idx := range loc.Indexes() {
		line, ok := remote[idx]
		if !ok {
			continue
		}
		row, _ := loc.Row(idx)
		key := row.Safe(snmp.LLDPLocPortID.Name)
		if key == "" {
			key = row.Safe(snmp.LLDPLocPortDesc.Name)
		}
		subtype := strings.ToLower(strings.Trim(row.Safe(snmp.LLDPLocPortIDSubtype.Name), "'"))
		if key == "" || subtype == "" {
			continue
		}
		keys, ok := n.bySubtype[subtype]
		if !ok {
			keys = make(map[string]string)
			n.bySubtype[subtype] = keys
		}
		keys[key] = line
		n.entries = append(n.entries, adjacency{subtype: subtype, key: key, value: line})
	}
}

func (n *Neighbors) convertCDP() {
	t := n.tables.CDP
	if t == nil {
		return
	}
	// Index is cdpCacheIfIndex.cdpCacheDeviceIndex.
	for _, idx := range t.Indexes() {
		ifIndex, _, _ := strings.Cut(idx, ".")
		if _, seen := n.cdp[ifIndex]; seen {
			continue
		}
		row, _ := t.Row(idx)
		device := row.Safe(snmp.CDPCacheDeviceID.Name)
		if device == "" {
			continue
		}
		n.cdp[ifIndex] = adjacencyString(device, row.Safe(snmp.CDPCacheDevicePort.Name))
	}
}

func adjacencyString(host, port string) string {
	return fmt.Sprintf("%s through %s", host, port)
}

// Adjacent returns the neighbor of p and consumes it, so no other port can
// be assigned the same adjacency. Lookups go by interface name, IPv4, IPv6,
// MAC, CDP ifIndex and finally a description or name match.
func (n *Neighbors) Adjacent(p *LogicalPort) string {
	n.Wait()

	try := func(subtype, key string) string {
		if key == "" {
			return ""
		}
		return n.take(n.bySubtype[subtype][key])
	}

	if v := try(subtypeInterfaceName, p.Name); v != "" {
		return v
	}
	if v := try(subtypeInterfaceName, p.NodeName()); v != "" {
		return v
	}
	for _, addr := range splitList(p.IPv4) {
		if v := try(subtypeNetworkAddress, addr); v != "" {
			return v
		}
	}
	for _, addr := range splitList(p.IPv6) {
		if v := try(subtypeNetworkAddress, addr); v != "" {
			return v
		}
	}
	if v := try(subtypeMACAddress, p.MAC); v != "" {
		return v
	}
	if v := n.take(n.cdp[p.IfIndex]); v != "" {
		return v
	}

	for _, e := range n.entries {
		if n.used[e.value] {
			continue
		}
		if portNameMatches(e.key, p.Description) || portNameMatches(e.key, p.NodeName()) {
			return n.take(e.value)
		}
	}
	return ""
}

func (n *Neighbors) take(v string) string {
	if v == "" || n.used[v] {
		return ""
	}
	n.used[v] = true
	return v
}

// portNameMatches compares an LLDP port key (with "/" read as "-") against a
// local port name or description.
func portNameMatches(lldpKey, local string) bool {
	if local == "" {
		return false
	}
	key := strings.ReplaceAll(lldpKey, "/", "-")
	if key == local {
		return true
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(local) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(key)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ", ")
}
