package snmp

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/gosnmp/gosnmp"
)

// Walker is the subset of *gosnmp.GoSNMP the autoload reads through.
// StaticWalker satisfies it for replayed captures.
type Walker interface {
	Get(oids []string) (*gosnmp.SnmpPacket, error)
	BulkWalkAll(rootOid string) ([]gosnmp.SnmpPDU, error)
}

var (
	_ Walker = (*gosnmp.GoSNMP)(nil)
	_ Walker = v1Walker{}
)

// v1Walker serves BulkWalkAll with GETNEXT walks, since SNMPv1 has no GETBULK.
type v1Walker struct {
	g *gosnmp.GoSNMP
}

func (w v1Walker) Get(oids []string) (*gosnmp.SnmpPacket, error) {
	return w.g.Get(oids)
}

func (w v1Walker) BulkWalkAll(rootOid string) ([]gosnmp.SnmpPDU, error) {
	return w.g.WalkAll(rootOid)
}

// Session is a connected SNMP session.
type Session struct {
	Walker
	g *gosnmp.GoSNMP
}

// Close releases the underlying UDP socket.
func (s *Session) Close() error {
	if s.g == nil || s.g.Conn == nil {
		return nil
	}
	return s.g.Conn.Close()
}

// Dial configures and connects a gosnmp session for cfg.
func Dial(cfg Config) (*Session, error) {
	g, err := newGoSNMP(cfg)
	if err != nil {
		return nil, fmt.Errorf("configure SNMP: %w", err)
	}
	if err := g.Connect(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Target, err)
	}

	s := &Session{Walker: g, g: g}
	if g.Version == gosnmp.Version1 {
		s.Walker = v1Walker{g: g}
	}
	return s, nil
}

// newGoSNMP creates a configured GoSNMP instance. It is not yet connected.
func newGoSNMP(cfg Config) (*gosnmp.GoSNMP, error) {
	if cfg.Target == "" {
		return nil, fmt.Errorf("no SNMP target configured")
	}

	host := cfg.Target
	port := cfg.Port
	if h, portStr, err := net.SplitHostPort(cfg.Target); err == nil {
		p, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q: %w", portStr, err)
		}
		host, port = h, uint16(p)
	}
	if port == 0 {
		port = 161
	}

	g := &gosnmp.GoSNMP{
		Target:         host,
		Port:           port,
		Timeout:        cfg.Timeout,
		Retries:        cfg.Retries,
		MaxRepetitions: cfg.MaxRepetitions,
	}

	switch strings.ToLower(cfg.Version) {
	case "v1", "1":
		g.Version = gosnmp.Version1
		g.Community = cfg.Community

	case "v2c", "2c", "":
		g.Version = gosnmp.Version2c
		g.Community = cfg.Community

	case "v3", "3":
		g.Version = gosnmp.Version3
		g.SecurityModel = gosnmp.UserSecurityModel

		switch cfg.V3.SecurityLevel {
		case "noAuthNoPriv":
			g.MsgFlags = gosnmp.NoAuthNoPriv
		case "authNoPriv":
			g.MsgFlags = gosnmp.AuthNoPriv
		default:
			g.MsgFlags = gosnmp.AuthPriv
		}

		g.SecurityParameters = &gosnmp.UsmSecurityParameters{
			UserName:                 cfg.V3.Username,
			AuthenticationProtocol:   mapAuthProtocol(cfg.V3.AuthProtocol),
			AuthenticationPassphrase: cfg.V3.AuthPassphrase,
			PrivacyProtocol:          mapPrivProtocol(cfg.V3.PrivProtocol),
			PrivacyPassphrase:        cfg.V3.PrivPassphrase,
		}
		g.ContextName = cfg.V3.ContextName

	default:
		return nil, fmt.Errorf("unsupported SNMP version: %s", cfg.Version)
	}

	return g, nil
}

// mapAuthProtocol converts an auth protocol string to the gosnmp constant.
func mapAuthProtocol(s string) gosnmp.SnmpV3AuthProtocol {
	switch strings.ToUpper(s) {
	case "MD5":
		return gosnmp.MD5
	case "SHA-224", "SHA224":
		return gosnmp.SHA224
	case "SHA-256", "SHA256":
		return gosnmp.SHA256
	case "SHA-384", "SHA384":
		return gosnmp.SHA384
	case "SHA-512", "SHA512":
		return gosnmp.SHA512
	default:
		return gosnmp.SHA
	}
}

// mapPrivProtocol converts a privacy protocol string to the gosnmp constant.
func mapPrivProtocol(s string) gosnmp.SnmpV3PrivProtocol {
	switch strings.ToUpper(s) {
	case "DES":
		return gosnmp.DES
	case "AES-192", "AES192":
		return gosnmp.AES192
	case "AES-256", "AES256":
		return gosnmp.AES256
	case "AES-192C", "AES192C":
		return gosnmp.AES192C
	case "AES-256C", "AES256C":
		return gosnmp.AES256C
	default:
		return gosnmp.AES
	}
}
