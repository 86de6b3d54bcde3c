package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/HerbHall/snmpautoload/internal/snmp"
)

// Entity describes one entPhysicalTable row of a fixture device.
type Entity struct {
	Index       int
	ContainedIn int
	Class       int // entPhysicalClass enum value
	Position    int
	VendorType  string // numeric OID, "" renders as 0.0
	Name        string
	Descr       string
	Model       string
	Serial      string
	SoftwareRev string
	HardwareRev string
}

// Interface describes one ifTable/ifXTable row of a fixture device.
type Interface struct {
	Index     int
	Name      string
	Descr     string
	Type      int // IANAifType value
	MTU       int
	Speed     uint
	HighSpeed uint
	MAC       string // hex digits, e.g. "001122334455"
	Alias     string
}

// Well-known entPhysicalClass values.
const (
	ClassOther       = 1
	ClassChassis     = 3
	ClassBackplane   = 4
	ClassContainer   = 5
	ClassPowerSupply = 6
	ClassFan         = 7
	ClassModule      = 9
	ClassPort        = 10
)

// Well-known IANAifType values.
const (
	IfTypeOther    = 1
	IfTypeEthernet = 6
	IfTypeLoopback = 24
	IfTypeL2VLAN   = 135
	IfTypeLag      = 161
)

// NewEntity returns an entity row with sensible defaults.
// Override individual fields with options.
func NewEntity(index, containedIn, class, position int, opts ...func(*Entity)) Entity {
	e := Entity{
		Index:       index,
		ContainedIn: containedIn,
		Class:       class,
		Position:    position,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// WithName sets entPhysicalName.
func WithName(name string) func(*Entity) {
	return func(e *Entity) { e.Name = name }
}

// WithDescr sets entPhysicalDescr.
func WithDescr(descr string) func(*Entity) {
	return func(e *Entity) { e.Descr = descr }
}

// WithVendorType sets entPhysicalVendorType.
func WithVendorType(oid string) func(*Entity) {
	return func(e *Entity) { e.VendorType = oid }
}

// WithModel sets entPhysicalModelName and entPhysicalSerialNum.
func WithModel(model, serial string) func(*Entity) {
	return func(e *Entity) {
		e.Model = model
		e.Serial = serial
	}
}

// WithRevisions sets the software and hardware revisions.
func WithRevisions(software, hardware string) func(*Entity) {
	return func(e *Entity) {
		e.SoftwareRev = software
		e.HardwareRev = hardware
	}
}

// Device accumulates snmprec lines for a fixture device.
type Device struct {
	lines []string
}

// NewDevice starts a fixture with the given sysDescr and sysObjectID.
func NewDevice(sysDescr, sysObjectID string) *Device {
	d := &Device{}
	d.Add(snmp.SysDescr.OID, "4", sysDescr)
	d.Add(snmp.SysObjectID.OID, "6", sysObjectID)
	return d
}

// Add appends one raw "OID|TYPE|VALUE" record.
func (d *Device) Add(oid, typ, value string) *Device {
	d.lines = append(d.lines, oid+"|"+typ+"|"+value)
	return d
}

// AddEntities appends entPhysicalTable rows.
func (d *Device) AddEntities(entities ...Entity) *Device {
	for _, e := range entities {
		idx := fmt.Sprintf(".%d", e.Index)
		vendorType := e.VendorType
		if vendorType == "" {
			vendorType = "0.0"
		}
		d.Add(snmp.EntPhysicalContainedIn.OID+idx, "2", fmt.Sprint(e.ContainedIn))
		d.Add(snmp.EntPhysicalClass.OID+idx, "2", fmt.Sprint(e.Class))
		d.Add(snmp.EntPhysicalParentRelPos.OID+idx, "2", fmt.Sprint(e.Position))
		d.Add(snmp.EntPhysicalVendorType.OID+idx, "6", vendorType)
		d.Add(snmp.EntPhysicalName.OID+idx, "4", e.Name)
		d.Add(snmp.EntPhysicalDescr.OID+idx, "4", e.Descr)
		d.Add(snmp.EntPhysicalModelName.OID+idx, "4", e.Model)
		d.Add(snmp.EntPhysicalSerialNum.OID+idx, "4", e.Serial)
		d.Add(snmp.EntPhysicalSoftwareRev.OID+idx, "4", e.SoftwareRev)
		d.Add(snmp.EntPhysicalHardwareRev.OID+idx, "4", e.HardwareRev)
	}
	return d
}

// AddInterfaces appends ifTable and ifXTable rows.
func (d *Device) AddInterfaces(ifaces ...Interface) *Device {
	for _, i := range ifaces {
		idx := fmt.Sprintf(".%d", i.Index)
		d.Add(snmp.IfDescr.OID+idx, "4", i.Descr)
		if i.Name != "" {
			d.Add(snmp.IfName.OID+idx, "4", i.Name)
		}
		d.Add(snmp.IfType.OID+idx, "2", fmt.Sprint(i.Type))
		d.Add(snmp.IfMtu.OID+idx, "2", fmt.Sprint(i.MTU))
		d.Add(snmp.IfSpeed.OID+idx, "66", fmt.Sprint(i.Speed))
		d.Add(snmp.IfHighSpeed.OID+idx, "66", fmt.Sprint(i.HighSpeed))
		if i.MAC != "" {
			d.Add(snmp.IfPhysAddress.OID+idx, "4x", i.MAC)
		}
		if i.Alias != "" {
			d.Add(snmp.IfAlias.OID+idx, "4", i.Alias)
		}
	}
	return d
}

// AddAlias maps a physical port to an ifIndex via entAliasMappingIdentifier.
func (d *Device) AddAlias(physIndex, ifIndex int) *Device {
	return d.Add(fmt.Sprintf("%s.%d.0", snmp.EntAliasMappingIdentifier.OID, physIndex), "6",
		fmt.Sprintf("1.3.6.1.2.1.2.2.1.1.%d", ifIndex))
}

// Snmprec renders the fixture in snmprec format.
func (d *Device) Snmprec() string {
	return strings.Join(d.lines, "\n") + "\n"
}

// Walker parses the fixture into a StaticWalker.
func (d *Device) Walker(t testing.TB) *snmp.StaticWalker {
	t.Helper()
	pdus, err := snmp.ParseSnmprec(strings.NewReader(d.Snmprec()))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return snmp.NewStaticWalker(pdus)
}

// Client returns an snmp.Client over the fixture.
func (d *Device) Client(t testing.TB) *snmp.Client {
	t.Helper()
	return snmp.NewClient(d.Walker(t), snmp.Config{}, nil)
}
