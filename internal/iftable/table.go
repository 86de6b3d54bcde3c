// Package iftable builds the logical interface table from IF-MIB and the
// auxiliary attribute tables (IP-MIB, EtherLike-MIB, MAU-MIB,
// IEEE8023-LAG-MIB, LLDP-MIB, CISCO-CDP-MIB).
package iftable

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/HerbHall/snmpautoload/internal/portid"
	"github.com/HerbHall/snmpautoload/internal/snmp"
)

// Default classification patterns.
const (
	DefaultPortExcludePattern = `(?i)stack|engine|management|mgmt|null|voice|foreign|cpu|control\s*ethernet\s*port|console\s*port`
	PortTypePattern           = `(?i)ethernet|other|propPointToPointSerial|fastEther|opticalChannel|^otn`
	PortChannelTypePattern    = `(?i)ieee8023adLag`
	PortChannelNamePattern    = `(?i)^ae\d+|^port-channel\d+|^bundle-ether\d+`
)

var (
	portTypeRe        = regexp.MustCompile(PortTypePattern)
	portChannelTypeRe = regexp.MustCompile(PortChannelTypePattern)
	portChannelNameRe = regexp.MustCompile(PortChannelNamePattern)
)

// Config holds the interface classification patterns.
type Config struct {
	PortExcludePattern        string
	PortChannelExcludePattern string
}

// LogicalPort is one IF-MIB interface accepted as a port.
type LogicalPort struct {
	IfIndex         string
	Name            string // ifName, or ifDescr when the device reports no ifName
	IfName          string
	DescrName       string // ifDescr
	Type            string
	Bandwidth       string // Mbps
	MTU             string
	MAC             string
	Description     string // ifAlias
	PortID          string // slash-joined positional id
	IPv4            string
	IPv6            string
	Duplex          string
	AutoNegotiation string
}

// NodeName is the resource name of the port: its name with "/" as "-".
func (p *LogicalPort) NodeName() string {
	return strings.ReplaceAll(p.Name, "/", "-")
}

// PortChannel is one IF-MIB interface classified as a link aggregation.
type PortChannel struct {
	IfIndex         string
	Name            string
	Index           string // trailing number of the name, else ifIndex
	Description     string
	IPv4            string
	IPv6            string
	AssociatedPorts string
}

// ColumnReader walks MIB columns. Defined here (consumer-side) to avoid
// depending on the concrete snmp.Client in tests.
type ColumnReader interface {
	Columns(ctx context.Context, cols ...snmp.Column) (*snmp.Table, error)
	OptionalColumns(ctx context.Context, cols ...snmp.Column) *snmp.Table
}

// Sources holds every SNMP table the interface table is built from.
type Sources struct {
	Interfaces *snmp.Table
	IPAddr     *snmp.Table
	IPAddress  *snmp.Table
	Duplex     *snmp.Table
	AutoNeg    *snmp.Table
	LAG        *snmp.Table
	Neighbors  NeighborTables
}

// Fetch walks the interface table and its auxiliary tables. Only the
// interface walk is required; auxiliary tables a device lacks stay empty.
func Fetch(ctx context.Context, r ColumnReader) (Sources, error) {
	ifaces, err := r.Columns(ctx, snmp.InterfaceColumns...)
	if err != nil {
		return Sources{}, fmt.Errorf("load interface table: %w", err)
	}
	return Sources{
		Interfaces: ifaces,
		IPAddr:     r.OptionalColumns(ctx, snmp.IPAdEntIfIndex),
		IPAddress:  r.OptionalColumns(ctx, snmp.IPAddressIfIndex),
		Duplex:     r.OptionalColumns(ctx, snmp.Dot3StatsDuplexStatus),
		AutoNeg:    r.OptionalColumns(ctx, snmp.IfMauAutoNegAdminStatus),
		LAG:        r.OptionalColumns(ctx, snmp.Dot3adAggPortAttachedAggID),
		Neighbors: NeighborTables{
			LLDPLocal:  r.OptionalColumns(ctx, snmp.LLDPLocPortIDSubtype, snmp.LLDPLocPortID, snmp.LLDPLocPortDesc),
			LLDPRemote: r.OptionalColumns(ctx, snmp.LLDPRemPortID, snmp.LLDPRemPortDesc, snmp.LLDPRemSysName),
			CDP:        r.OptionalColumns(ctx, snmp.CDPCacheDeviceID, snmp.CDPCacheDevicePort),
		},
	}, nil
}

// Table is the classified logical interface table of one device.
type Table struct {
	rows         *snmp.Table
	ports        map[string]*LogicalPort
	portOrder    []string
	channels     map[string]*PortChannel
	channelOrder []string

	portExclude    *regexp.Regexp
	channelExclude *regexp.Regexp
	neighbors      *Neighbors
	logger         *zap.Logger
}

// New classifies every interface row of src and starts the neighbor
// conversion in the background.
func New(src Sources, cfg Config, logger *zap.Logger) (*Table, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	portPattern := cfg.PortExcludePattern
	if portPattern == "" {
		portPattern = DefaultPortExcludePattern
	}
	portExclude, err := regexp.Compile(portPattern)
	if err != nil {
		return nil, fmt.Errorf("compile port exclude pattern: %w", err)
	}
	var channelExclude *regexp.Regexp
	if cfg.PortChannelExcludePattern != "" {
		channelExclude, err = regexp.Compile(cfg.PortChannelExcludePattern)
		if err != nil {
			return nil, fmt.Errorf("compile port-channel exclude pattern: %w", err)
		}
	}

	rows := src.Interfaces
	if rows == nil {
		rows = snmp.NewTable()
	}
	t := &Table{
		rows:           rows,
		ports:          make(map[string]*LogicalPort),
		channels:       make(map[string]*PortChannel),
		portExclude:    portExclude,
		channelExclude: channelExclude,
		neighbors:      NewNeighbors(src.Neighbors, logger),
		logger:         logger,
	}

	ips := newIPAddresses(src.IPAddr, src.IPAddress)
	duplex := newDuplexTable(src.Duplex)
	autoNeg := newAutoNegTable(src.AutoNeg)
	members := newAggregationMembers(src.LAG)

	var channelRows []string
	for _, idx := range rows.Indexes() {
		row, _ := rows.Row(idx)
		name, descr, ifType := interfaceNames(row)

		if t.isPortChannel(name, descr, ifType) {
			channelRows = append(channelRows, idx)
			continue
		}
		if !t.isPort(name, descr, ifType) {
			logger.Debug("interface skipped",
				zap.String("if_index", idx),
				zap.String("name", name),
				zap.String("type", ifType),
			)
			continue
		}

		p := &LogicalPort{
			IfIndex:         idx,
			Name:            name,
			IfName:          row.Safe(snmp.IfName.Name),
			DescrName:       descr,
			Type:            ifType,
			Bandwidth:       bandwidth(row),
			MTU:             row.Safe(snmp.IfMtu.Name),
			MAC:             row.Safe(snmp.IfPhysAddress.Name),
			Description:     row.Safe(snmp.IfAlias.Name),
			PortID:          portid.FromNames(name, descr),
			IPv4:            ips.IPv4(idx),
			IPv6:            ips.IPv6(idx),
			Duplex:          duplex[idx],
			AutoNegotiation: autoNeg.value(idx),
		}
		t.ports[idx] = p
		t.portOrder = append(t.portOrder, idx)
	}

	// Channels resolve member names after every port is known.
	for _, idx := range channelRows {
		row, _ := rows.Row(idx)
		name, _, _ := interfaceNames(row)
		pc := &PortChannel{
			IfIndex:     idx,
			Name:        name,
			Index:       channelIndex(name, idx),
			Description: row.Safe(snmp.IfAlias.Name),
			IPv4:        ips.IPv4(idx),
			IPv6:        ips.IPv6(idx),
		}
		var names []string
		for _, member := range sortIfIndexes(members[idx]) {
			names = append(names, t.interfaceName(member))
		}
		pc.AssociatedPorts = strings.Join(names, ", ")
		t.channels[idx] = pc
		t.channelOrder = append(t.channelOrder, idx)
	}

	logger.Debug("interface table built",
		zap.Int("interfaces", rows.Len()),
		zap.Int("ports", len(t.ports)),
		zap.Int("port_channels", len(t.channels)),
	)
	return t, nil
}

// Load fetches the interface tables through r and classifies them.
func Load(ctx context.Context, r ColumnReader, cfg Config, logger *zap.Logger) (*Table, error) {
	src, err := Fetch(ctx, r)
	if err != nil {
		return nil, err
	}
	return New(src, cfg, logger)
}

func interfaceNames(row snmp.Row) (name, descr, ifType string) {
	descr = row.Safe(snmp.IfDescr.Name)
	name = row.Safe(snmp.IfName.Name)
	if name == "" {
		name = descr
	}
	ifType = strings.Trim(row.Safe(snmp.IfType.Name), `'"`)
	return name, descr, ifType
}

func (t *Table) isPortChannel(name, descr, ifType string) bool {
	if subInterface(name, descr) || t.Excluded(name) || t.Excluded(descr) {
		return false
	}
	if t.channelExclude != nil &&
		((name != "" && t.channelExclude.MatchString(name)) || (descr != "" && t.channelExclude.MatchString(descr))) {
		return false
	}
	return portChannelTypeRe.MatchString(ifType) ||
		portChannelNameRe.MatchString(name) ||
		portChannelNameRe.MatchString(descr)
}

func (t *Table) isPort(name, descr, ifType string) bool {
	if !portTypeRe.MatchString(ifType) {
		return false
	}
	if subInterface(name, descr) {
		return false
	}
	return !t.Excluded(name) && !t.Excluded(descr)
}

// subInterface reports a dotted name or description such as Gi1/0/2.100.
func subInterface(name, descr string) bool {
	return strings.Contains(name, ".") || strings.Contains(descr, ".")
}

// Excluded reports whether a port name or description matches the port
// exclude pattern. Empty names are never excluded.
func (t *Table) Excluded(name string) bool {
	return name != "" && t.portExclude.MatchString(name)
}

// Ports returns accepted ports ordered by ifIndex.
func (t *Table) Ports() []*LogicalPort {
	out := make([]*LogicalPort, len(t.portOrder))
	for i, idx := range t.portOrder {
		out[i] = t.ports[idx]
	}
	return out
}

// Port returns the accepted port with the given ifIndex.
func (t *Table) Port(ifIndex string) (*LogicalPort, bool) {
	p, ok := t.ports[ifIndex]
	return p, ok
}

// PortChannels returns port-channels ordered by ifIndex.
func (t *Table) PortChannels() []*PortChannel {
	out := make([]*PortChannel, len(t.channelOrder))
	for i, idx := range t.channelOrder {
		out[i] = t.channels[idx]
	}
	return out
}

// Adjacent resolves and consumes the LLDP/CDP neighbor of p. It blocks
// until the background neighbor conversion has finished.
func (t *Table) Adjacent(p *LogicalPort) string {
	return t.neighbors.Adjacent(p)
}

// Wait joins the background neighbor conversion. Callers that may return
// before any adjacency lookup call it so the conversion never outlives the
// run.
func (t *Table) Wait() {
	t.neighbors.Wait()
}

// interfaceName is the resource name of any interface row, accepted or not.
func (t *Table) interfaceName(ifIndex string) string {
	if p, ok := t.ports[ifIndex]; ok {
		return p.NodeName()
	}
	row, ok := t.rows.Row(ifIndex)
	if !ok {
		return ifIndex
	}
	name, _, _ := interfaceNames(row)
	return name
}

func bandwidth(row snmp.Row) string {
	if high, err := row.Get(snmp.IfHighSpeed.Name).Int(); err == nil && high > 0 {
		return strconv.Itoa(high)
	}
	speed, err := strconv.ParseUint(row.Safe(snmp.IfSpeed.Name), 10, 64)
	if err != nil || speed == 0 {
		return "0"
	}
	return strconv.FormatUint(speed/1_000_000, 10)
}

var trailingNumber = regexp.MustCompile(`(\d+)$`)

func channelIndex(name, ifIndex string) string {
	if m := trailingNumber.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return ifIndex
}

func sortIfIndexes(idx []string) []string {
	out := append([]string(nil), idx...)
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.Atoi(out[i])
		b, _ := strconv.Atoi(out[j])
		return a < b
	})
	return out
}
