package snmp

// Kind tells the Client how to render a PDU value for a column.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindEnum
	KindOID
	KindMAC
	KindPortID
	KindVendorType
)

// Column is a single MIB table column (or scalar) the autoload reads.
type Column struct {
	MIB  string
	Name string // row key in a Table, e.g. "entPhysicalName"
	OID  string // numeric OID without leading dot
	Kind Kind
	Enum map[int]string
}

func (c Column) String() string {
	return c.MIB + "::" + c.Name
}

// SNMPv2-MIB system group (1.3.6.1.2.1.1).
var (
	SysDescr    = Column{MIB: "SNMPv2-MIB", Name: "sysDescr", OID: "1.3.6.1.2.1.1.1.0"}
	SysObjectID = Column{MIB: "SNMPv2-MIB", Name: "sysObjectID", OID: "1.3.6.1.2.1.1.2.0", Kind: KindOID}
	SysContact  = Column{MIB: "SNMPv2-MIB", Name: "sysContact", OID: "1.3.6.1.2.1.1.4.0"}
	SysName     = Column{MIB: "SNMPv2-MIB", Name: "sysName", OID: "1.3.6.1.2.1.1.5.0"}
	SysLocation = Column{MIB: "SNMPv2-MIB", Name: "sysLocation", OID: "1.3.6.1.2.1.1.6.0"}
)

// ENTITY-MIB entPhysicalTable (1.3.6.1.2.1.47.1.1.1.1).
var (
	EntPhysicalDescr        = Column{MIB: "ENTITY-MIB", Name: "entPhysicalDescr", OID: "1.3.6.1.2.1.47.1.1.1.1.2"}
	EntPhysicalVendorType   = Column{MIB: "ENTITY-MIB", Name: "entPhysicalVendorType", OID: "1.3.6.1.2.1.47.1.1.1.1.3", Kind: KindVendorType}
	EntPhysicalContainedIn  = Column{MIB: "ENTITY-MIB", Name: "entPhysicalContainedIn", OID: "1.3.6.1.2.1.47.1.1.1.1.4", Kind: KindInt}
	EntPhysicalClass        = Column{MIB: "ENTITY-MIB", Name: "entPhysicalClass", OID: "1.3.6.1.2.1.47.1.1.1.1.5", Kind: KindEnum, Enum: physicalClassEnum}
	EntPhysicalParentRelPos = Column{MIB: "ENTITY-MIB", Name: "entPhysicalParentRelPos", OID: "1.3.6.1.2.1.47.1.1.1.1.6", Kind: KindInt}
	EntPhysicalName         = Column{MIB: "ENTITY-MIB", Name: "entPhysicalName", OID: "1.3.6.1.2.1.47.1.1.1.1.7"}
	EntPhysicalHardwareRev  = Column{MIB: "ENTITY-MIB", Name: "entPhysicalHardwareRev", OID: "1.3.6.1.2.1.47.1.1.1.1.8"}
	EntPhysicalFirmwareRev  = Column{MIB: "ENTITY-MIB", Name: "entPhysicalFirmwareRev", OID: "1.3.6.1.2.1.47.1.1.1.1.9"}
	EntPhysicalSoftwareRev  = Column{MIB: "ENTITY-MIB", Name: "entPhysicalSoftwareRev", OID: "1.3.6.1.2.1.47.1.1.1.1.10"}
	EntPhysicalSerialNum    = Column{MIB: "ENTITY-MIB", Name: "entPhysicalSerialNum", OID: "1.3.6.1.2.1.47.1.1.1.1.11"}
	EntPhysicalModelName    = Column{MIB: "ENTITY-MIB", Name: "entPhysicalModelName", OID: "1.3.6.1.2.1.47.1.1.1.1.13"}

	// entAliasMappingIdentifier is indexed by entPhysicalIndex.entAliasLogicalIndexOrZero.
	EntAliasMappingIdentifier = Column{MIB: "ENTITY-MIB", Name: "entAliasMappingIdentifier", OID: "1.3.6.1.2.1.47.1.3.2.1.2", Kind: KindOID}
)

// EntityColumns is the column set walked to build the physical structure.
var EntityColumns = []Column{
	EntPhysicalContainedIn,
	EntPhysicalClass,
	EntPhysicalParentRelPos,
	EntPhysicalVendorType,
	EntPhysicalName,
	EntPhysicalDescr,
	EntPhysicalModelName,
	EntPhysicalSerialNum,
	EntPhysicalSoftwareRev,
	EntPhysicalFirmwareRev,
	EntPhysicalHardwareRev,
}

// IF-MIB ifTable (1.3.6.1.2.1.2.2.1) and ifXTable (1.3.6.1.2.1.31.1.1.1).
var (
	IfDescr       = Column{MIB: "IF-MIB", Name: "ifDescr", OID: "1.3.6.1.2.1.2.2.1.2"}
	IfType        = Column{MIB: "IF-MIB", Name: "ifType", OID: "1.3.6.1.2.1.2.2.1.3", Kind: KindEnum, Enum: ifTypeEnum}
	IfMtu         = Column{MIB: "IF-MIB", Name: "ifMtu", OID: "1.3.6.1.2.1.2.2.1.4", Kind: KindInt}
	IfSpeed       = Column{MIB: "IF-MIB", Name: "ifSpeed", OID: "1.3.6.1.2.1.2.2.1.5", Kind: KindInt}
	IfPhysAddress = Column{MIB: "IF-MIB", Name: "ifPhysAddress", OID: "1.3.6.1.2.1.2.2.1.6", Kind: KindMAC}
	IfName        = Column{MIB: "IF-MIB", Name: "ifName", OID: "1.3.6.1.2.1.31.1.1.1.1"}
	IfHighSpeed   = Column{MIB: "IF-MIB", Name: "ifHighSpeed", OID: "1.3.6.1.2.1.31.1.1.1.15", Kind: KindInt}
	IfAlias       = Column{MIB: "IF-MIB", Name: "ifAlias", OID: "1.3.6.1.2.1.31.1.1.1.18"}
)

// InterfaceColumns is the column set walked to build the logical interface table.
var InterfaceColumns = []Column{
	IfDescr,
	IfName,
	IfType,
	IfMtu,
	IfSpeed,
	IfHighSpeed,
	IfPhysAddress,
	IfAlias,
}

// Auxiliary port attribute tables.
var (
	// IP-MIB ipAddrTable, indexed by the IPv4 address.
	IPAdEntIfIndex = Column{MIB: "IP-MIB", Name: "ipAdEntIfIndex", OID: "1.3.6.1.2.1.4.20.1.2", Kind: KindInt}
	// IP-MIB ipAddressTable, indexed by addrType.addrLen.addr...
	IPAddressIfIndex = Column{MIB: "IP-MIB", Name: "ipAddressIfIndex", OID: "1.3.6.1.2.1.4.34.1.3", Kind: KindInt}

	Dot3StatsDuplexStatus = Column{MIB: "EtherLike-MIB", Name: "dot3StatsDuplexStatus", OID: "1.3.6.1.2.1.10.7.2.1.19", Kind: KindEnum, Enum: map[int]string{
		1: "unknown",
		2: "halfDuplex",
		3: "fullDuplex",
	}}

	// MAU-MIB ifMauAutoNegTable, indexed by ifIndex.ifMauIndex.
	IfMauAutoNegAdminStatus = Column{MIB: "MAU-MIB", Name: "ifMauAutoNegAdminStatus", OID: "1.3.6.1.2.1.26.5.1.1.1", Kind: KindEnum, Enum: map[int]string{
		1: "enabled",
		2: "disabled",
	}}

	// IEEE8023-LAG-MIB dot3adAggPortTable, indexed by member ifIndex.
	Dot3adAggPortAttachedAggID = Column{MIB: "IEEE8023-LAG-MIB", Name: "dot3adAggPortAttachedAggID", OID: "1.2.840.10006.300.43.1.2.1.1.13", Kind: KindInt}
)

// LLDP-MIB local port table (indexed by lldpLocPortNum) and remote table
// (indexed by lldpRemTimeMark.lldpRemLocalPortNum.lldpRemIndex).
var (
	LLDPLocPortIDSubtype = Column{MIB: "LLDP-MIB", Name: "lldpLocPortIdSubtype", OID: "1.0.8802.1.1.2.1.3.7.1.2", Kind: KindEnum, Enum: lldpPortIDSubtypeEnum}
	LLDPLocPortID        = Column{MIB: "LLDP-MIB", Name: "lldpLocPortId", OID: "1.0.8802.1.1.2.1.3.7.1.3", Kind: KindPortID}
	LLDPLocPortDesc      = Column{MIB: "LLDP-MIB", Name: "lldpLocPortDesc", OID: "1.0.8802.1.1.2.1.3.7.1.4"}

	LLDPRemPortID   = Column{MIB: "LLDP-MIB", Name: "lldpRemPortId", OID: "1.0.8802.1.1.2.1.4.1.1.7", Kind: KindPortID}
	LLDPRemPortDesc = Column{MIB: "LLDP-MIB", Name: "lldpRemPortDesc", OID: "1.0.8802.1.1.2.1.4.1.1.8"}
	LLDPRemSysName  = Column{MIB: "LLDP-MIB", Name: "lldpRemSysName", OID: "1.0.8802.1.1.2.1.4.1.1.9"}
)

// CISCO-CDP-MIB cdpCacheTable, indexed by cdpCacheIfIndex.cdpCacheDeviceIndex.
var (
	CDPCacheDeviceID   = Column{MIB: "CISCO-CDP-MIB", Name: "cdpCacheDeviceId", OID: "1.3.6.1.4.1.9.9.23.1.2.1.1.6"}
	CDPCacheDevicePort = Column{MIB: "CISCO-CDP-MIB", Name: "cdpCacheDevicePort", OID: "1.3.6.1.4.1.9.9.23.1.2.1.1.7"}
)

var physicalClassEnum = map[int]string{
	1:  "other",
	2:  "unknown",
	3:  "chassis",
	4:  "backplane",
	5:  "container",
	6:  "powerSupply",
	7:  "fan",
	8:  "sensor",
	9:  "module",
	10: "port",
	11: "stack",
	12: "cpu",
	13: "energyObject",
	14: "battery",
	15: "storageDrive",
}

var lldpPortIDSubtypeEnum = map[int]string{
	1: "interfaceAlias",
	2: "portComponent",
	3: "macAddress",
	4: "networkAddress",
	5: "interfaceName",
	6: "agentCircuitId",
	7: "local",
}

// ifTypeEnum covers the IANAifType values the autoload classifies on.
// Unlisted values render as their decimal number.
var ifTypeEnum = map[int]string{
	1:   "other",
	6:   "ethernetCsmacd",
	22:  "propPointToPointSerial",
	23:  "ppp",
	24:  "softwareLoopback",
	53:  "propVirtual",
	54:  "propMultiplexor",
	62:  "fastEther",
	69:  "fastEtherFX",
	117: "gigabitEthernet",
	131: "tunnel",
	135: "l2vlan",
	136: "l3ipvlan",
	161: "ieee8023adLag",
	166: "mpls",
	195: "opticalChannel",
	196: "opticalChannelGroup",
	207: "otnOdu",
	208: "otnOtu",
}
