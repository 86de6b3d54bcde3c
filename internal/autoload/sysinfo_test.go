package autoload

import (
	"context"
	"testing"

	"github.com/HerbHall/snmpautoload/internal/snmp"
	"github.com/HerbHall/snmpautoload/internal/testutil"
)

func TestReadSystemInfo(t *testing.T) {
	dev := testutil.NewDevice("Juniper Networks, Inc. ex4300-48t", "1.3.6.1.4.1.2636.1.1.1.2.63").
		Add(snmp.SysName.OID, "4", "edge-1")

	got, err := ReadSystemInfo(context.Background(), dev.Client(t))
	if err != nil {
		t.Fatalf("ReadSystemInfo() error = %v", err)
	}
	if got.Name != "edge-1" {
		t.Errorf("Name = %q, want edge-1", got.Name)
	}
	if got.ObjectID != "1.3.6.1.4.1.2636.1.1.1.2.63" {
		t.Errorf("ObjectID = %q", got.ObjectID)
	}
	if got.Contact != "" || got.Location != "" {
		t.Errorf("missing objects should read empty, got contact %q location %q", got.Contact, got.Location)
	}
}

func TestSystemInfo_Vendor(t *testing.T) {
	tests := []struct {
		objectID string
		want     string
	}{
		{"1.3.6.1.4.1.9.1.2066", "Cisco"},
		{"1.3.6.1.4.1.2636.1.1.1.2.63", "Juniper"},
		{"1.3.6.1.4.1.30065.1.3011", "Arista"},
		{"1.3.6.1.4.1.8072.3.2.10", ""},
		{"1.3.6.1.4.1.90", ""},
		{"1.3.6.1.2.1.1", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.objectID, func(t *testing.T) {
			if got := (SystemInfo{ObjectID: tt.objectID}).Vendor(); got != tt.want {
				t.Errorf("Vendor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSystemInfo_OSVersion(t *testing.T) {
	tests := []struct {
		name  string
		descr string
		want  string
	}{
		{"ios", "Cisco IOS Software, C2960 Software (C2960-LANBASEK9-M), Version 15.0(2)SE4, RELEASE SOFTWARE (fc1)", "15.0(2)SE4"},
		{"lower case", "Arista Networks EOS version 4.28.3M running on an Arista DCS-7050SX", "4.28.3M"},
		{"no version", "Linux edge 5.10.0", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (SystemInfo{Description: tt.descr}).OSVersion(); got != tt.want {
				t.Errorf("OSVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}
