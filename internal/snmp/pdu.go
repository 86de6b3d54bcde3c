package snmp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gosnmp/gosnmp"
)

// DefaultVendorTypes names the CISCO-ENTITY-VENDORTYPE-OID-MIB category
// branches so numeric entPhysicalVendorType values classify without a MIB.
var DefaultVendorTypes = map[string]string{
	"1.3.6.1.4.1.9.12.3.1.1":  "cevOther",
	"1.3.6.1.4.1.9.12.3.1.2":  "cevUnknown",
	"1.3.6.1.4.1.9.12.3.1.3":  "cevChassis",
	"1.3.6.1.4.1.9.12.3.1.4":  "cevBackplane",
	"1.3.6.1.4.1.9.12.3.1.5":  "cevContainer",
	"1.3.6.1.4.1.9.12.3.1.6":  "cevPowerSupply",
	"1.3.6.1.4.1.9.12.3.1.7":  "cevFan",
	"1.3.6.1.4.1.9.12.3.1.8":  "cevSensor",
	"1.3.6.1.4.1.9.12.3.1.9":  "cevModule",
	"1.3.6.1.4.1.9.12.3.1.10": "cevPort",
	"1.3.6.1.4.1.9.12.3.1.11": "cevStack",
}

func isMissing(pdu gosnmp.SnmpPDU) bool {
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView:
		return true
	}
	return false
}

// renderPDU converts a PDU to the textual form the autoload compares on.
func renderPDU(col Column, pdu gosnmp.SnmpPDU) Value {
	if isMissing(pdu) {
		return ErrorValue(fmt.Errorf("%s: %w", col.Name, ErrNoSuchObject))
	}

	switch col.Kind {
	case KindInt:
		switch pdu.Value.(type) {
		case uint64:
			return NewValue(strconv.FormatUint(parsePDUUint64(pdu), 10))
		}
		return NewValue(strconv.Itoa(parsePDUInt(pdu)))

	case KindEnum:
		n := parsePDUInt(pdu)
		if name, ok := col.Enum[n]; ok {
			return NewValue(name)
		}
		return NewValue(strconv.Itoa(n))

	case KindOID:
		return NewValue(strings.TrimPrefix(parsePDUString(pdu), "."))

	case KindVendorType:
		oid := strings.TrimPrefix(parsePDUString(pdu), ".")
		if oid == "0.0" {
			return NewValue("")
		}
		return NewValue(oid)

	case KindMAC:
		if b, ok := pdu.Value.([]byte); ok {
			return NewValue(formatMAC(b))
		}
		return NewValue(parsePDUString(pdu))

	case KindPortID:
		return NewValue(parsePortID(pdu))

	default:
		return NewValue(strings.TrimRight(parsePDUString(pdu), "\x00"))
	}
}

// translateOID renders oid through the longest matching prefix in names,
// keeping the unmatched suffix: "1.3.6.1.4.1.9.12.3.1.9.27" becomes
// "cevModule.27". Unmatched OIDs are returned unchanged.
func translateOID(names map[string]string, oid string) string {
	best := ""
	for prefix := range names {
		if len(prefix) <= len(best) {
			continue
		}
		if oid == prefix || strings.HasPrefix(oid, prefix+".") {
			best = prefix
		}
	}
	if best == "" {
		return oid
	}
	return names[best] + oid[len(best):]
}

// formatMAC formats a byte slice as a colon-separated MAC address (XX:XX:XX:XX:XX:XX).
func formatMAC(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, ":")
}

// parsePortID renders an LLDP port id: printable text as-is, six
// non-printable bytes as a MAC, anything else as hex.
func parsePortID(pdu gosnmp.SnmpPDU) string {
	switch v := pdu.Value.(type) {
	case []byte:
		if isPrintableASCII(v) {
			return string(v)
		}
		if len(v) == 6 {
			return formatMAC(v)
		}
		return fmt.Sprintf("%x", v)
	default:
		return parsePDUString(pdu)
	}
}

// isPrintableASCII returns true if all bytes are printable ASCII (0x20..0x7E).
func isPrintableASCII(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7E {
			return false
		}
	}
	return len(b) > 0
}

// parsePDUString extracts a string value from an SNMP PDU.
func parsePDUString(pdu gosnmp.SnmpPDU) string {
	switch v := pdu.Value.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	default:
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%v", v)
	}
}

// parsePDUInt extracts an integer value from an SNMP PDU.
func parsePDUInt(pdu gosnmp.SnmpPDU) int {
	switch v := pdu.Value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint:
		return int(v) //nolint:gosec // G115: SNMP integer values (ifIndex, ifType, etc.) fit in int
	case uint32:
		return int(v)
	case uint64:
		return int(v) //nolint:gosec // G115: SNMP integer values (ifIndex, ifType, etc.) fit in int
	case []byte:
		n, _ := strconv.Atoi(strings.TrimSpace(string(v)))
		return n
	default:
		return 0
	}
}

// parsePDUUint64 extracts a uint64 value from an SNMP PDU.
func parsePDUUint64(pdu gosnmp.SnmpPDU) uint64 {
	switch v := pdu.Value.(type) {
	case uint64:
		return v
	case uint32:
		return uint64(v)
	case uint:
		return uint64(v)
	case int:
		if v >= 0 {
			return uint64(v)
		}
		return 0
	default:
		return 0
	}
}

// indexSuffix returns the part of name after the column OID, e.g. "12" for
// ".1.3.6.1.2.1.2.2.1.2.12" under "1.3.6.1.2.1.2.2.1.2".
func indexSuffix(name, column string) (string, bool) {
	prefix := normalizeOID(column) + "."
	name = normalizeOID(name)
	if !strings.HasPrefix(name, prefix) || len(name) == len(prefix) {
		return "", false
	}
	return name[len(prefix):], true
}
