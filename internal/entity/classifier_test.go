package entity

import "testing"

func TestClassify(t *testing.T) {
	c, err := NewClassifier("")
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}

	tests := []struct {
		name string
		ent  PhysicalEntity
		want Role
	}{
		{
			name: "sfp_declared_port_is_container",
			ent:  PhysicalEntity{PhysicalClass: "port", VendorType: "cevContainerSFP"},
			want: RoleContainer,
		},
		{
			name: "xfp_declared_module_is_container",
			ent:  PhysicalEntity{PhysicalClass: "module", VendorType: "cevModuleXFP"},
			want: RoleContainer,
		},
		{
			name: "powershelf_is_container",
			ent:  PhysicalEntity{PhysicalClass: "powerSupply", VendorType: "acmePowerShelf"},
			want: RoleContainer,
		},
		{
			name: "declared_class_wins",
			ent:  PhysicalEntity{PhysicalClass: "module", VendorType: "cevPort.12"},
			want: RoleModule,
		},
		{
			name: "declared_class_quoted_enum",
			ent:  PhysicalEntity{PhysicalClass: "'powerSupply(6)'"},
			want: RolePowerSupply,
		},
		{
			name: "declared_unknown_class_kept",
			ent:  PhysicalEntity{PhysicalClass: "sensor"},
			want: Role("sensor"),
		},
		{
			name: "other_no_vendor_chassis_by_name",
			ent:  PhysicalEntity{PhysicalClass: "other", PositionID: "-1", Name: "Main Chassis"},
			want: RoleChassis,
		},
		{
			name: "other_no_vendor_chassis_by_descr",
			ent:  PhysicalEntity{PhysicalClass: "other", PositionID: "-1", Description: "CHASSIS 7600"},
			want: RoleChassis,
		},
		{
			name: "other_no_vendor_positioned_not_chassis",
			ent:  PhysicalEntity{PhysicalClass: "other", PositionID: "3", Name: "chassis slot"},
			want: RoleUnknown,
		},
		{
			name: "empty_class_no_vendor",
			ent:  PhysicalEntity{Name: "thing"},
			want: RoleUnknown,
		},
		{
			name: "vendor_container",
			ent:  PhysicalEntity{PhysicalClass: "other", VendorType: "cevContainerSlot"},
			want: RoleContainer,
		},
		{
			name: "vendor_chassis",
			ent:  PhysicalEntity{PhysicalClass: "other", VendorType: "cevChassisN5k"},
			want: RoleChassis,
		},
		{
			name: "vendor_module",
			ent:  PhysicalEntity{VendorType: "cevModuleC36xx"},
			want: RoleModule,
		},
		{
			name: "vendor_port",
			ent:  PhysicalEntity{VendorType: "cevPortGe"},
			want: RolePort,
		},
		{
			name: "vendor_power_supply",
			ent:  PhysicalEntity{VendorType: "cevPowerSupplyAC"},
			want: RolePowerSupply,
		},
		{
			name: "vendor_container_precedes_module",
			ent:  PhysicalEntity{VendorType: "cevContainerModuleSlot"},
			want: RoleContainer,
		},
		{
			name: "vendor_no_match_keeps_declared",
			ent:  PhysicalEntity{PhysicalClass: "other", VendorType: "1.3.6.1.4.1.2636.1.1"},
			want: Role("other"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.ent); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassify_ContainerPatternOverridesEveryClass(t *testing.T) {
	c, err := NewClassifier("")
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	classes := []string{"", "other", "chassis", "module", "port", "powerSupply", "stack", "backplane"}
	vendorTypes := []string{"cevSFP1000BaseSx", "ciscoXFR", "cevXFP10GLR", "cevContainer10GigBasePort", "cevModulePseAsicPlim"}
	for _, vt := range vendorTypes {
		for _, class := range classes {
			if got := c.Classify(PhysicalEntity{PhysicalClass: class, VendorType: vt}); got != RoleContainer {
				t.Errorf("Classify(class=%q, vendorType=%q) = %q, want container", class, vt, got)
			}
		}
	}
}

func TestNewClassifier_CustomPattern(t *testing.T) {
	c, err := NewClassifier(`(?i)^jnxContent`)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	if got := c.Classify(PhysicalEntity{PhysicalClass: "module", VendorType: "jnxContentsFPC"}); got != RoleContainer {
		t.Errorf("Classify = %q, want container", got)
	}
	if got := c.Classify(PhysicalEntity{PhysicalClass: "port", VendorType: "cevSFP"}); got != RolePort {
		t.Errorf("Classify = %q, want port (default pattern replaced)", got)
	}

	if _, err := NewClassifier("("); err == nil {
		t.Error("expected error for invalid pattern")
	}
}
