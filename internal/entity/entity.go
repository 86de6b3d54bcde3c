// Package entity reads the ENTITY-MIB physical table, classifies each row
// into a structural role and reconstructs the chassis/module/port hierarchy.
package entity

import (
	"context"
	"fmt"
	"sort"

	"github.com/HerbHall/snmpautoload/internal/snmp"
)

// PhysicalEntity is one entPhysicalTable row.
type PhysicalEntity struct {
	Index           string // entPhysicalIndex
	ParentIndex     string // entPhysicalContainedIn, "0" for top-level rows
	PositionID      string // entPhysicalParentRelPos, may be "-1"
	PhysicalClass   string
	VendorType      string
	Name            string
	Description     string
	Model           string
	SerialNumber    string
	OSVersion       string // entPhysicalSoftwareRev
	FirmwareVersion string
	HardwareVersion string
}

// FromRow decodes a row of the entity column table.
func FromRow(index string, row snmp.Row) PhysicalEntity {
	return PhysicalEntity{
		Index:           index,
		ParentIndex:     row.Safe(snmp.EntPhysicalContainedIn.Name),
		PositionID:      row.Safe(snmp.EntPhysicalParentRelPos.Name),
		PhysicalClass:   row.Safe(snmp.EntPhysicalClass.Name),
		VendorType:      row.Safe(snmp.EntPhysicalVendorType.Name),
		Name:            row.Safe(snmp.EntPhysicalName.Name),
		Description:     row.Safe(snmp.EntPhysicalDescr.Name),
		Model:           row.Safe(snmp.EntPhysicalModelName.Name),
		SerialNumber:    row.Safe(snmp.EntPhysicalSerialNum.Name),
		OSVersion:       row.Safe(snmp.EntPhysicalSoftwareRev.Name),
		FirmwareVersion: row.Safe(snmp.EntPhysicalFirmwareRev.Name),
		HardwareVersion: row.Safe(snmp.EntPhysicalHardwareRev.Name),
	}
}

// ColumnReader walks MIB columns into a table. Defined here (consumer-side)
// so tests can feed tables without a device.
type ColumnReader interface {
	Columns(ctx context.Context, cols ...snmp.Column) (*snmp.Table, error)
}

// Load walks entPhysicalTable and returns its rows in index order.
func Load(ctx context.Context, r ColumnReader) ([]PhysicalEntity, error) {
	table, err := r.Columns(ctx, snmp.EntityColumns...)
	if err != nil {
		return nil, fmt.Errorf("load entity table: %w", err)
	}
	out := make([]PhysicalEntity, 0, table.Len())
	for _, idx := range table.Indexes() {
		row, _ := table.Row(idx)
		out = append(out, FromRow(idx, row))
	}
	return out, nil
}

// sortByIndex orders entities by numeric entPhysicalIndex.
func sortByIndex(entities []PhysicalEntity) []PhysicalEntity {
	sorted := make([]PhysicalEntity, len(entities))
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return lessIndex(sorted[i].Index, sorted[j].Index)
	})
	return sorted
}

func lessIndex(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
