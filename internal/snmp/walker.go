package snmp

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/gosnmp/gosnmp"
)

// StaticWalker answers GET and walk requests from a fixed set of PDUs.
// It backs replay mode and tests.
type StaticWalker struct {
	pdus []gosnmp.SnmpPDU // sorted by OID
}

// NewStaticWalker returns a walker over pdus. Names are normalized to a
// leading dot, as gosnmp reports them.
func NewStaticWalker(pdus []gosnmp.SnmpPDU) *StaticWalker {
	sorted := make([]gosnmp.SnmpPDU, len(pdus))
	copy(sorted, pdus)
	for i := range sorted {
		sorted[i].Name = normalizeOID(sorted[i].Name)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareOIDs(sorted[i].Name, sorted[j].Name) < 0
	})
	return &StaticWalker{pdus: sorted}
}

// Get returns the exact PDU for each requested OID, or a NoSuchObject PDU.
func (w *StaticWalker) Get(oids []string) (*gosnmp.SnmpPacket, error) {
	pkt := &gosnmp.SnmpPacket{Variables: make([]gosnmp.SnmpPDU, 0, len(oids))}
	for _, oid := range oids {
		name := normalizeOID(oid)
		i := sort.Search(len(w.pdus), func(i int) bool {
			return compareOIDs(w.pdus[i].Name, name) >= 0
		})
		if i < len(w.pdus) && w.pdus[i].Name == name {
			pkt.Variables = append(pkt.Variables, w.pdus[i])
			continue
		}
		pkt.Variables = append(pkt.Variables, gosnmp.SnmpPDU{Name: name, Type: gosnmp.NoSuchObject})
	}
	return pkt, nil
}

// BulkWalkAll returns every PDU under rootOid in OID order.
func (w *StaticWalker) BulkWalkAll(rootOid string) ([]gosnmp.SnmpPDU, error) {
	root := normalizeOID(rootOid)
	prefix := root + "."
	var out []gosnmp.SnmpPDU
	for _, pdu := range w.pdus {
		if pdu.Name == root || strings.HasPrefix(pdu.Name, prefix) {
			out = append(out, pdu)
		}
	}
	return out, nil
}

// Len returns the number of PDUs held.
func (w *StaticWalker) Len() int {
	return len(w.pdus)
}

// LoadSnmprec opens an snmprec capture file and returns a walker over it.
func LoadSnmprec(path string) (*StaticWalker, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snmprec: %w", err)
	}
	defer func() { _ = f.Close() }()

	pdus, err := ParseSnmprec(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return NewStaticWalker(pdus), nil
}

// ParseSnmprec reads "OID|TYPE|VALUE" lines in the snmpsim recording format.
// Blank lines and lines starting with '#' are ignored.
func ParseSnmprec(r io.Reader) ([]gosnmp.SnmpPDU, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 2*1024*1024)

	var pdus []gosnmp.SnmpPDU
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("line %d: want OID|TYPE|VALUE, got %q", lineNo, line)
		}
		pdu, err := snmprecPDU(parts[0], parts[1], parts[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		pdus = append(pdus, pdu)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read snmprec: %w", err)
	}
	return pdus, nil
}

func snmprecPDU(oid, typ, val string) (gosnmp.SnmpPDU, error) {
	pdu := gosnmp.SnmpPDU{Name: normalizeOID(oid)}

	if strings.HasSuffix(typ, "x") {
		typ = strings.TrimSuffix(typ, "x")
		b, err := hex.DecodeString(val)
		if err != nil {
			return pdu, fmt.Errorf("decode hex value of %s: %w", oid, err)
		}
		val = string(b)
	}

	switch typ {
	case "2":
		n, err := strconv.Atoi(val)
		if err != nil {
			return pdu, fmt.Errorf("integer value of %s: %w", oid, err)
		}
		pdu.Type, pdu.Value = gosnmp.Integer, n
	case "4":
		pdu.Type, pdu.Value = gosnmp.OctetString, []byte(val)
	case "5":
		pdu.Type = gosnmp.Null
	case "6":
		pdu.Type, pdu.Value = gosnmp.ObjectIdentifier, normalizeOID(val)
	case "64":
		pdu.Type, pdu.Value = gosnmp.IPAddress, val
	case "65", "66":
		n, err := strconv.ParseUint(val, 10, 32)
		if err != nil {
			return pdu, fmt.Errorf("unsigned value of %s: %w", oid, err)
		}
		pdu.Type, pdu.Value = gosnmp.Counter32, uint(n)
		if typ == "66" {
			pdu.Type = gosnmp.Gauge32
		}
	case "67":
		n, err := strconv.ParseUint(val, 10, 32)
		if err != nil {
			return pdu, fmt.Errorf("timeticks value of %s: %w", oid, err)
		}
		pdu.Type, pdu.Value = gosnmp.TimeTicks, uint32(n)
	case "70":
		n, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return pdu, fmt.Errorf("counter64 value of %s: %w", oid, err)
		}
		pdu.Type, pdu.Value = gosnmp.Counter64, n
	default:
		return pdu, fmt.Errorf("unsupported snmprec type %q for %s", typ, oid)
	}
	return pdu, nil
}

func normalizeOID(oid string) string {
	oid = strings.TrimSpace(oid)
	if oid == "" || strings.HasPrefix(oid, ".") {
		return oid
	}
	return "." + oid
}

// compareOIDs orders OIDs by their numeric sub-identifiers.
func compareOIDs(a, b string) int {
	as := strings.Split(strings.TrimPrefix(a, "."), ".")
	bs := strings.Split(strings.TrimPrefix(b, "."), ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareIndexPart(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return len(as) - len(bs)
}

func compareIndexPart(a, b string) int {
	an, aErr := strconv.ParseUint(a, 10, 64)
	bn, bErr := strconv.ParseUint(b, 10, 64)
	if aErr == nil && bErr == nil {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}
