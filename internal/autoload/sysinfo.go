package autoload

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/HerbHall/snmpautoload/internal/snmp"
)

// SystemInfo holds the SNMPv2-MIB system group of a device.
type SystemInfo struct {
	Description string // sysDescr
	ObjectID    string // sysObjectID, numeric without leading dot
	Contact     string // sysContact
	Name        string // sysName
	Location    string // sysLocation
}

// ScalarReader issues SNMP GETs.
type ScalarReader interface {
	Get(ctx context.Context, cols ...snmp.Column) (snmp.Row, error)
}

// ReadSystemInfo reads the system group in one request.
func ReadSystemInfo(ctx context.Context, r ScalarReader) (SystemInfo, error) {
	row, err := r.Get(ctx, snmp.SysDescr, snmp.SysObjectID, snmp.SysContact, snmp.SysName, snmp.SysLocation)
	if err != nil {
		return SystemInfo{}, fmt.Errorf("read system info: %w", err)
	}
	return SystemInfo{
		Description: row.Safe(snmp.SysDescr.Name),
		ObjectID:    row.Safe(snmp.SysObjectID.Name),
		Contact:     row.Safe(snmp.SysContact.Name),
		Name:        row.Safe(snmp.SysName.Name),
		Location:    row.Safe(snmp.SysLocation.Name),
	}, nil
}

const enterprisesPrefix = "1.3.6.1.4.1."

// enterpriseVendors maps IANA private enterprise numbers to vendor names.
var enterpriseVendors = map[string]string{
	"9":     "Cisco",
	"11":    "HP",
	"674":   "Dell",
	"1916":  "Extreme",
	"2011":  "Huawei",
	"2636":  "Juniper",
	"6527":  "Nokia",
	"12356": "Fortinet",
	"14988": "MikroTik",
	"25461": "Palo Alto Networks",
	"25506": "H3C",
	"30065": "Arista",
}

// Vendor names the vendor owning sysObjectID, or "" when unknown.
func (s SystemInfo) Vendor() string {
	rest, ok := strings.CutPrefix(s.ObjectID, enterprisesPrefix)
	if !ok {
		return ""
	}
	enterprise, _, _ := strings.Cut(rest, ".")
	return enterpriseVendors[enterprise]
}

var osVersionPattern = regexp.MustCompile(`(?i)version\s+([^\s,]+)`)

// OSVersion extracts the first "Version <x>" token of sysDescr.
func (s SystemInfo) OSVersion() string {
	if m := osVersionPattern.FindStringSubmatch(s.Description); m != nil {
		return m[1]
	}
	return ""
}
