package iftable

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/HerbHall/snmpautoload/internal/snmp"
	"github.com/HerbHall/snmpautoload/internal/testutil"
)

func neighborDevice() *testutil.Device {
	return testutil.NewDevice("Juniper Networks", "1.3.6.1.4.1.2636.1.1.1.2.1").
		// lldpLocPortTable: 1 by interface name, 2 by MAC, 3 by description only, 4 by interface alias
		Add("1.0.8802.1.1.2.1.3.7.1.2.1", "2", "5").
		Add("1.0.8802.1.1.2.1.3.7.1.3.1", "4", "ge-0/0/1").
		Add("1.0.8802.1.1.2.1.3.7.1.2.2", "2", "3").
		Add("1.0.8802.1.1.2.1.3.7.1.3.2", "4x", "001122334402").
		Add("1.0.8802.1.1.2.1.3.7.1.2.3", "2", "7").
		Add("1.0.8802.1.1.2.1.3.7.1.4.3", "4", "ge-0/0/3").
		Add("1.0.8802.1.1.2.1.3.7.1.2.4", "2", "1").
		Add("1.0.8802.1.1.2.1.3.7.1.3.4", "4", "server uplink").
		// lldpRemTable: timeMark.localPort.remIndex
		Add("1.0.8802.1.1.2.1.4.1.1.9.0.1.1", "4", "core-sw1").
		Add("1.0.8802.1.1.2.1.4.1.1.8.0.1.1", "4", "xe-1/0/0").
		Add("1.0.8802.1.1.2.1.4.1.1.9.0.2.1", "4", "core-sw2").
		Add("1.0.8802.1.1.2.1.4.1.1.7.0.2.1", "4", "Ethernet2").
		Add("1.0.8802.1.1.2.1.4.1.1.9.0.3.1", "4", "edge-fw").
		Add("1.0.8802.1.1.2.1.4.1.1.8.0.3.1", "4", "port3").
		Add("1.0.8802.1.1.2.1.4.1.1.9.0.4.1", "4", "esx01").
		Add("1.0.8802.1.1.2.1.4.1.1.8.0.4.1", "4", "vmnic0").
		// cdpCacheTable: ifIndex.deviceIndex
		Add("1.3.6.1.4.1.9.9.23.1.2.1.1.6.15.1", "4", "phone-7").
		Add("1.3.6.1.4.1.9.9.23.1.2.1.1.7.15.1", "4", "Port 1")
}

func loadNeighbors(t *testing.T) *Neighbors {
	t.Helper()
	src, err := Fetch(context.Background(), neighborDevice().Client(t))
	require.NoError(t, err)
	n := NewNeighbors(src.Neighbors, zaptest.NewLogger(t))
	t.Cleanup(n.Wait)
	return n
}

func TestNeighbors_LookupOrder(t *testing.T) {
	n := loadNeighbors(t)

	byName := &LogicalPort{IfIndex: "11", Name: "ge-0/0/1"}
	assert.Equal(t, "core-sw1 through xe-1/0/0", n.Adjacent(byName))

	byMAC := &LogicalPort{IfIndex: "12", Name: "ge-0/0/2", MAC: "00:11:22:33:44:02"}
	assert.Equal(t, "core-sw2 through Ethernet2", n.Adjacent(byMAC), "remote port id stands in for a missing description")

	byCDP := &LogicalPort{IfIndex: "15", Name: "fe-0/0/5"}
	assert.Equal(t, "phone-7 through Port 1", n.Adjacent(byCDP))

	byDescr := &LogicalPort{IfIndex: "13", Name: "ge-0/0/3"}
	assert.Equal(t, "edge-fw through port3", n.Adjacent(byDescr), "description key matched against the dashed name")

	byAlias := &LogicalPort{IfIndex: "14", Name: "ge-0/0/4", Description: "server uplink"}
	assert.Equal(t, "esx01 through vmnic0", n.Adjacent(byAlias))

	none := &LogicalPort{IfIndex: "16", Name: "ge-0/0/6"}
	assert.Equal(t, "", n.Adjacent(none))
}

func TestNeighbors_EachAdjacencyAssignedOnce(t *testing.T) {
	n := loadNeighbors(t)

	first := &LogicalPort{IfIndex: "11", Name: "ge-0/0/1"}
	again := &LogicalPort{IfIndex: "21", Name: "ge-0/0/1"}

	assert.Equal(t, "core-sw1 through xe-1/0/0", n.Adjacent(first))
	assert.Equal(t, "", n.Adjacent(again))
}

func TestNeighbors_EmptyTables(t *testing.T) {
	n := NewNeighbors(NeighborTables{LLDPLocal: snmp.NewTable(), LLDPRemote: snmp.NewTable()}, nil)
	assert.Equal(t, "", n.Adjacent(&LogicalPort{IfIndex: "1", Name: "Gi1/0/1", MAC: "00:11:22:33:44:55"}))
}

func TestPortNameMatches(t *testing.T) {
	tests := []struct {
		key, local string
		want       bool
	}{
		{"Gi1/0/1", "Gi1-0-1", true},
		{"Gi1/0/10", "Gi1-0-1", false},
		{"GigabitEthernet1/0/1 uplink", "GigabitEthernet1-0-1", true},
		{"server uplink", "server uplink", true},
		{"anything", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, portNameMatches(tt.key, tt.local), "%q vs %q", tt.key, tt.local)
	}
}
