package entity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/HerbHall/snmpautoload/internal/testutil"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder(Config{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return b
}

// switchEntities is a chassis with one line card in slot 3 (behind a
// container), a fan tray, a power supply and two ports, one under an SFP cage.
func switchEntities() []PhysicalEntity {
	return []PhysicalEntity{
		{Index: "1", ParentIndex: "0", PositionID: "-1", PhysicalClass: "chassis", Name: "Chassis", Model: "WS-C4506", SerialNumber: "FOX1"},
		{Index: "2", ParentIndex: "1", PositionID: "3", PhysicalClass: "container", Name: "Slot 3"},
		{Index: "3", ParentIndex: "2", PositionID: "1", PhysicalClass: "module", Name: "Linecard 3", Model: "WS-X4548", SerialNumber: "JAE1", OSVersion: "15.2"},
		{Index: "4", ParentIndex: "3", PositionID: "14", PhysicalClass: "port", Name: "GigabitEthernet3/14"},
		{Index: "5", ParentIndex: "3", PositionID: "15", PhysicalClass: "container", VendorType: "cevContainerSFP", Name: "SFP cage"},
		{Index: "6", ParentIndex: "5", PositionID: "1", PhysicalClass: "port", Name: "GigabitEthernet3/15"},
		{Index: "7", ParentIndex: "1", PositionID: "1", PhysicalClass: "module", VendorType: "cevFanTray", Name: "Fan Tray"},
		{Index: "8", ParentIndex: "1", PositionID: "1", PhysicalClass: "powerSupply", Name: "PS 1", Model: "PWR-C45", SerialNumber: "ART1", HardwareVersion: "V02"},
		{Index: "9", ParentIndex: "3", PositionID: "16", PhysicalClass: "port"},
	}
}

func TestBuild_SwitchHierarchy(t *testing.T) {
	s, err := newTestBuilder(t).Build(switchEntities())
	require.NoError(t, err)

	require.Len(t, s.Chassis(), 1)
	ch := s.Chassis()[0]
	assert.Equal(t, "0", ch.Index)
	assert.Equal(t, "WS-C4506", ch.Model)
	assert.False(t, ch.Dummy)

	mod, ok := s.Module("3")
	require.True(t, ok)
	assert.Equal(t, "3", mod.Position, "position comes from the slot container")
	assert.Equal(t, "1", mod.ParentIndex)
	assert.Equal(t, "0-3", mod.ID)
	assert.Equal(t, "15.2", mod.Version)

	_, ok = s.Module("7")
	assert.False(t, ok, "fan tray is excluded")

	ports := s.Ports()
	require.Len(t, ports, 2, "unnamed port 9 is skipped")
	assert.Equal(t, "4", ports[0].EntityIndex)
	assert.Equal(t, "6", ports[1].EntityIndex)

	for _, idx := range []string{"4", "6"} {
		parent, ok := s.Parent(idx)
		require.True(t, ok, idx)
		assert.Equal(t, "3", parent, "port %s resolves through containers to the module", idx)
	}

	require.Len(t, s.PowerSupplies(), 1)
	ps := s.PowerSupplies()[0]
	assert.Same(t, ch, ps.Chassis)
	assert.Equal(t, "V02", ps.Version)

	byID, ok := s.ModuleByID("0-3")
	require.True(t, ok)
	assert.Equal(t, "3", byID.EntityIndex)
}

func TestBuild_NestedModulesIDs(t *testing.T) {
	entities := []PhysicalEntity{
		{Index: "1", ParentIndex: "0", PositionID: "-1", PhysicalClass: "chassis", Name: "Chassis"},
		{Index: "10", ParentIndex: "1", PositionID: "8", PhysicalClass: "container"},
		{Index: "11", ParentIndex: "10", PositionID: "1", PhysicalClass: "module", Name: "MPC 8"},
		{Index: "12", ParentIndex: "11", PositionID: "1", PhysicalClass: "container"},
		{Index: "13", ParentIndex: "12", PositionID: "1", PhysicalClass: "module", Name: "PIC 1"},
		{Index: "14", ParentIndex: "13", PositionID: "12", PhysicalClass: "port", Name: "xe-0/8/1/12"},
	}
	s, err := newTestBuilder(t).Build(entities)
	require.NoError(t, err)

	pic, ok := s.ModuleByID("0-8-1")
	require.True(t, ok)
	assert.Equal(t, "13", pic.EntityIndex)
	assert.Equal(t, "11", pic.ParentIndex)

	parent, _ := s.Parent("14")
	assert.Equal(t, "13", parent)
	assert.Equal(t, map[string]string{"0-8": "11", "0-8-1": "13"}, s.moduleIDs)
}

func TestBuild_DummyChassis(t *testing.T) {
	entities := []PhysicalEntity{
		{Index: "5", ParentIndex: "0", PositionID: "1", PhysicalClass: "powerSupply", Name: "PSU"},
		{Index: "6", ParentIndex: "0", PositionID: "1", PhysicalClass: "port", Name: "eth1"},
	}
	s, err := newTestBuilder(t).Build(entities)
	require.NoError(t, err)

	require.Len(t, s.Chassis(), 1)
	assert.True(t, s.Chassis()[0].Dummy)
	assert.Equal(t, DummyChassisIndex, s.Chassis()[0].Index)
	require.Len(t, s.PowerSupplies(), 1)
	assert.Same(t, s.Chassis()[0], s.PowerSupplies()[0].Chassis)

	_, ok := s.Parent("6")
	assert.False(t, ok, "no ancestor means no parent entry")
}

func TestBuild_PowerSupplyWithoutChassis(t *testing.T) {
	entities := []PhysicalEntity{
		{Index: "1", ParentIndex: "0", PositionID: "1", PhysicalClass: "chassis", Name: "Chassis"},
		{Index: "2", ParentIndex: "0", PositionID: "1", PhysicalClass: "powerSupply", Name: "Orphan PSU"},
	}
	_, err := newTestBuilder(t).Build(entities)
	require.Error(t, err)

	var se *StructureError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "2", se.Index)
	assert.True(t, IsStructureError(err))
}

func TestBuild_CycleIsStructureError(t *testing.T) {
	entities := []PhysicalEntity{
		{Index: "1", ParentIndex: "0", PositionID: "1", PhysicalClass: "chassis"},
		{Index: "20", ParentIndex: "21", PositionID: "1", PhysicalClass: "container"},
		{Index: "21", ParentIndex: "20", PositionID: "1", PhysicalClass: "container"},
		{Index: "22", ParentIndex: "20", PositionID: "1", PhysicalClass: "port", Name: "Gi1/1"},
	}
	_, err := newTestBuilder(t).Build(entities)
	require.Error(t, err)
	assert.True(t, IsStructureError(err))
	assert.Contains(t, err.Error(), "cycle")
}

func TestBuild_ChassisDeduplication(t *testing.T) {
	entities := []PhysicalEntity{
		{Index: "1", ParentIndex: "0", PositionID: "1", PhysicalClass: "chassis", Model: "EX4300", SerialNumber: "PE1"},
		{Index: "2", ParentIndex: "0", PositionID: "2", PhysicalClass: "chassis", Model: "EX4300", SerialNumber: "PE2"},
		{Index: "3", ParentIndex: "0", PositionID: "5", PhysicalClass: "chassis", Model: "EX4300", SerialNumber: "PE1"},
		{Index: "4", ParentIndex: "3", PositionID: "7", PhysicalClass: "port", Name: "ge-1/0/7"},
	}

	b := newTestBuilder(t)
	first, err := b.Build(entities)
	require.NoError(t, err)
	require.Len(t, first.Chassis(), 2)

	alias, ok := first.ChassisByEntity("3")
	require.True(t, ok)
	assert.Equal(t, "1", alias.EntityIndex)

	reversed := make([]PhysicalEntity, len(entities))
	for i, e := range entities {
		reversed[len(entities)-1-i] = e
	}
	second, err := b.Build(reversed)
	require.NoError(t, err)

	assert.Equal(t, first.parents, second.parents)
	require.Len(t, second.Chassis(), 2)
	for i := range first.Chassis() {
		assert.Equal(t, *first.Chassis()[i], *second.Chassis()[i])
	}
}

func TestBuild_ChassisIndexCollision(t *testing.T) {
	entities := []PhysicalEntity{
		{Index: "1", ParentIndex: "0", PositionID: "-1", PhysicalClass: "chassis", SerialNumber: "A"},
		{Index: "2", ParentIndex: "0", PositionID: "-1", PhysicalClass: "chassis", SerialNumber: "B"},
	}
	s, err := newTestBuilder(t).Build(entities)
	require.NoError(t, err)
	require.Len(t, s.Chassis(), 2)
	assert.Equal(t, "0", s.Chassis()[0].Index)
	assert.Equal(t, "1", s.Chassis()[1].Index)
}

func TestBuild_ExcludedModuleIsTransparent(t *testing.T) {
	entities := []PhysicalEntity{
		{Index: "1", ParentIndex: "0", PositionID: "-1", PhysicalClass: "chassis"},
		{Index: "2", ParentIndex: "1", PositionID: "1", PhysicalClass: "module", Name: "CPU board"},
		{Index: "3", ParentIndex: "2", PositionID: "1", PhysicalClass: "port", Name: "mgmt0"},
	}
	s, err := newTestBuilder(t).Build(entities)
	require.NoError(t, err)

	_, ok := s.Module("2")
	assert.False(t, ok)
	parent, ok := s.Parent("3")
	require.True(t, ok)
	assert.Equal(t, "1", parent)
}

func TestLoad(t *testing.T) {
	dev := testutil.NewDevice("Cisco IOS Software", "1.3.6.1.4.1.9.1.1").
		AddEntities(
			testutil.NewEntity(1, 0, testutil.ClassChassis, -1,
				testutil.WithName("Chassis"), testutil.WithModel("C9300", "FCW1")),
			testutil.NewEntity(1001, 1, testutil.ClassPort, 1,
				testutil.WithName("Gi1/0/1"), testutil.WithVendorType("1.3.6.1.4.1.9.12.3.1.10.1")),
		)

	entities, err := Load(context.Background(), dev.Client(t))
	require.NoError(t, err)
	require.Len(t, entities, 2)

	assert.Equal(t, PhysicalEntity{
		Index:         "1",
		ParentIndex:   "0",
		PositionID:    "-1",
		PhysicalClass: "chassis",
		Name:          "Chassis",
		Model:         "C9300",
		SerialNumber:  "FCW1",
	}, entities[0])
	assert.Equal(t, "cevPort.1", entities[1].VendorType)
	assert.Equal(t, "1", entities[1].ParentIndex)
}
