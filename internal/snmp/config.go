package snmp

import "time"

// Config holds the SNMP session settings for one managed device.
type Config struct {
	Target            string        `mapstructure:"target"`
	Port              uint16        `mapstructure:"port"`
	Version           string        `mapstructure:"version"` // "v1", "v2c" or "v3"
	Community         string        `mapstructure:"community"`
	V3                V3Config      `mapstructure:"v3"`
	Timeout           time.Duration `mapstructure:"timeout"`
	Retries           int           `mapstructure:"retries"`
	MaxRepetitions    uint32        `mapstructure:"max_repetitions"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	ReplayFile        string        `mapstructure:"replay_file"`
	VendorTypes       []VendorType  `mapstructure:"vendor_types"`
}

// V3Config holds the SNMPv3 user security model parameters.
type V3Config struct {
	Username       string `mapstructure:"username"`
	AuthProtocol   string `mapstructure:"auth_protocol"` // "MD5", "SHA", "SHA-256", etc.
	AuthPassphrase string `mapstructure:"auth_passphrase"`
	PrivProtocol   string `mapstructure:"priv_protocol"` // "DES", "AES", "AES-256", etc.
	PrivPassphrase string `mapstructure:"priv_passphrase"`
	SecurityLevel  string `mapstructure:"security_level"` // "noAuthNoPriv", "authNoPriv", "authPriv"
	ContextName    string `mapstructure:"context_name"`
}

// VendorType names an entPhysicalVendorType OID branch. Devices that report
// numeric vendor types classify through these names.
type VendorType struct {
	OID  string `mapstructure:"oid"`
	Name string `mapstructure:"name"`
}

// DefaultConfig returns the default SNMP session configuration.
func DefaultConfig() Config {
	return Config{
		Port:           161,
		Version:        "v2c",
		Community:      "public",
		Timeout:        5 * time.Second,
		Retries:        1,
		MaxRepetitions: 25,
	}
}
