package iftable

import (
	"strings"

	"github.com/HerbHall/snmpautoload/internal/snmp"
)

// duplexTable maps ifIndex to "Full" or "Half" from dot3StatsDuplexStatus.
type duplexTable map[string]string

func newDuplexTable(t *snmp.Table) duplexTable {
	d := make(duplexTable)
	if t == nil {
		return d
	}
	for _, idx := range t.Indexes() {
		row, _ := t.Row(idx)
		v := row.Get(snmp.Dot3StatsDuplexStatus.Name)
		if !v.Valid() {
			continue
		}
		d[idx] = "Half"
		if strings.Contains(strings.ToLower(v.SafeValue()), "full") {
			d[idx] = "Full"
		}
	}
	return d
}

// autoNegTable maps ifIndex to the admin status of its first MAU.
type autoNegTable map[string]string

func newAutoNegTable(t *snmp.Table) autoNegTable {
	a := make(autoNegTable)
	if t == nil {
		return a
	}
	for _, idx := range t.Indexes() {
		ifIndex, _, _ := strings.Cut(idx, ".")
		if _, seen := a[ifIndex]; seen {
			continue
		}
		row, _ := t.Row(idx)
		a[ifIndex] = row.Safe(snmp.IfMauAutoNegAdminStatus.Name)
	}
	return a
}

// value renders the auto-negotiation attribute: "True" only when enabled.
func (a autoNegTable) value(ifIndex string) string {
	if strings.Contains(strings.ToLower(a[ifIndex]), "enabled") {
		return "True"
	}
	return "False"
}

// aggregationMembers maps an aggregator ifIndex to its member ifIndexes,
// from dot3adAggPortAttachedAggID.
type aggregationMembers map[string][]string

func newAggregationMembers(t *snmp.Table) aggregationMembers {
	m := make(aggregationMembers)
	if t == nil {
		return m
	}
	for _, idx := range t.Indexes() {
		row, _ := t.Row(idx)
		agg := row.Safe(snmp.Dot3adAggPortAttachedAggID.Name)
		if agg == "" || agg == "0" || agg == idx {
			continue
		}
		m[agg] = append(m[agg], idx)
	}
	return m
}
