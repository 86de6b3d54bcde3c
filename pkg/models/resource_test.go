package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func sampleModel() *ResourceModel {
	m := NewResourceModel("sw1")
	m.Vendor = "Cisco"
	ch := NewChassis("0")
	ch.Model = "WS-C3850"
	m.ConnectChassis(ch)

	mod := NewModule("3")
	ch.ConnectModule(mod)
	sub := NewSubModule("2")
	mod.ConnectSubModule(sub)

	p := NewPort("12", "Gi3-2-12")
	p.MAC = "00:11:22:33:44:55"
	sub.ConnectPort(p)

	pp := NewPowerPort("1")
	ch.ConnectPowerPort(pp)

	m.ConnectPortChannel(NewPortChannel("10", "Po10"))
	return m
}

func TestRelativeAddress(t *testing.T) {
	m := sampleModel()
	ch := m.Chassis()[0]
	sub := ch.SubResources()[0].SubResources()[0]
	port := sub.SubResources()[0]

	if got := port.Address.String(); got != "CH0/M3/SM2/P12" {
		t.Errorf("port address = %q, want CH0/M3/SM2/P12", got)
	}
	if got := port.Address.Depth(); got != 4 {
		t.Errorf("depth = %d, want 4", got)
	}

	// Rewriting an ancestor index is visible in every descendant.
	sub.Parent().SetIndex("7")
	if got := port.Address.String(); got != "CH0/M7/SM2/P12" {
		t.Errorf("after SetIndex = %q, want CH0/M7/SM2/P12", got)
	}
}

func TestConnectMovesNode(t *testing.T) {
	a := NewModule("1")
	b := NewModule("2")
	child := NewSubModule("1")

	a.ConnectSubModule(child)
	b.ConnectSubModule(child)

	if len(a.SubResources()) != 0 {
		t.Error("child still attached to previous parent")
	}
	if got, ok := b.ChildByIndex(KindSubModule, "1"); !ok || got != child || child.Parent() != b {
		t.Error("child not attached to new parent")
	}
	if got := child.Address.String(); got != "M2/SM1" {
		t.Errorf("address = %q, want M2/SM1", got)
	}
}

func TestBuild(t *testing.T) {
	d, err := sampleModel().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var addrs []string
	for _, r := range d.Resources {
		addrs = append(addrs, r.RelativeAddress)
	}
	want := []string{"CH0", "CH0/M3", "CH0/M3/SM2", "CH0/M3/SM2/P12", "CH0/PP1", "PC10"}
	if strings.Join(addrs, ",") != strings.Join(want, ",") {
		t.Errorf("resources = %v, want %v", addrs, want)
	}

	names := map[string]string{}
	for _, r := range d.Resources {
		names[r.RelativeAddress] = r.Name + "|" + r.Model
	}
	for addr, want := range map[string]string{
		"CH0":            "Chassis 0|GenericChassis",
		"CH0/M3/SM2":     "Sub Module 2|GenericSubModule",
		"CH0/M3/SM2/P12": "Gi3-2-12|GenericPort",
		"CH0/PP1":        "Power Port 1|GenericPowerPort",
		"PC10":           "Po10|GenericPortChannel",
	} {
		if names[addr] != want {
			t.Errorf("resource %s = %q, want %q", addr, names[addr], want)
		}
	}

	found := false
	for _, a := range d.Attributes {
		if a.RelativeAddress == "CH0/M3/SM2/P12" && a.Name == "MAC Address" {
			found = a.Value == "00:11:22:33:44:55"
		}
		if a.RelativeAddress == "" && a.Name == "Vendor" && a.Value != "Cisco" {
			t.Errorf("Vendor = %q, want Cisco", a.Value)
		}
	}
	if !found {
		t.Error("port MAC attribute missing")
	}
}

func TestBuild_UniqueIDStable(t *testing.T) {
	a, err := sampleModel().Build()
	if err != nil {
		t.Fatal(err)
	}
	b, err := sampleModel().Build()
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for i := range a.Resources {
		if a.Resources[i].UniqueID != b.Resources[i].UniqueID {
			t.Errorf("unique id of %s differs between runs", a.Resources[i].RelativeAddress)
		}
		if seen[a.Resources[i].UniqueID] {
			t.Errorf("unique id of %s repeated", a.Resources[i].RelativeAddress)
		}
		seen[a.Resources[i].UniqueID] = true
	}
}

func TestBuild_DuplicateSiblingIndex(t *testing.T) {
	m := sampleModel()
	ch := m.Chassis()[0]
	ch.ConnectModule(NewModule("3"))

	_, err := m.Build()
	var dup *DuplicateIndexError
	if !errors.As(err, &dup) {
		t.Fatalf("Build() error = %v, want DuplicateIndexError", err)
	}
	if dup.Parent != "CH0" || dup.Kind != KindModule || dup.Index != "3" {
		t.Errorf("error = %+v", dup)
	}

	// A port and a module may share an index.
	m = sampleModel()
	m.Chassis()[0].ConnectPort(NewPort("3", "Gi3"))
	if _, err := m.Build(); err != nil {
		t.Errorf("different kinds sharing an index: %v", err)
	}
}

func TestAutoloadDetailsEncoding(t *testing.T) {
	d, err := sampleModel().Build()
	if err != nil {
		t.Fatal(err)
	}

	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"relative_address":"CH0/M3"`) {
		t.Errorf("json missing relative_address key: %s", raw)
	}

	out, err := yaml.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "unique_id:") {
		t.Errorf("yaml missing unique_id key:\n%s", out)
	}
}
