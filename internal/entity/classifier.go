package entity

import (
	"fmt"
	"regexp"
	"strings"
)

// Role is the structural meaning of a physical entity.
type Role string

const (
	RoleUnknown     Role = ""
	RoleChassis     Role = "chassis"
	RoleModule      Role = "module"
	RoleSubModule   Role = "submodule"
	RolePort        Role = "port"
	RolePowerSupply Role = "powerSupply"
	RoleContainer   Role = "container"
	RoleBackplane   Role = "backplane"
	RoleStack       Role = "stack"
)

// DefaultToContainerPattern matches vendor types that report transceiver
// slots and similar holders as ports or modules.
const DefaultToContainerPattern = `(?i)powershelf|^\S+sfp|^\S+xfr|^\S+xfp|^\S+Container10GigBasePort|^\S+ModulePseAsicPlim`

var canonicalRoles = map[string]Role{
	"chassis":     RoleChassis,
	"module":      RoleModule,
	"port":        RolePort,
	"powersupply": RolePowerSupply,
	"container":   RoleContainer,
	"backplane":   RoleBackplane,
	"stack":       RoleStack,
}

// vendorTypeRoles is checked in order; the first match wins.
var vendorTypeRoles = []struct {
	pattern *regexp.Regexp
	role    Role
}{
	{regexp.MustCompile(`(?i)^\S+container`), RoleContainer},
	{regexp.MustCompile(`(?i)^\S+chassis`), RoleChassis},
	{regexp.MustCompile(`(?i)^\S+module`), RoleModule},
	{regexp.MustCompile(`(?i)^\S+port`), RolePort},
	{regexp.MustCompile(`(?i)^\S+powersupply`), RolePowerSupply},
}

var enumSuffix = regexp.MustCompile(`\(\d+\)$`)

// Classifier derives a Role from an entity's class and vendor type.
type Classifier struct {
	toContainer *regexp.Regexp
}

// NewClassifier compiles the to-container pattern. An empty pattern uses
// DefaultToContainerPattern.
func NewClassifier(toContainerPattern string) (*Classifier, error) {
	if toContainerPattern == "" {
		toContainerPattern = DefaultToContainerPattern
	}
	re, err := regexp.Compile(toContainerPattern)
	if err != nil {
		return nil, fmt.Errorf("compile to-container pattern: %w", err)
	}
	return &Classifier{toContainer: re}, nil
}

// Classify returns the role of e. It never fails: rows it cannot place
// yield RoleUnknown, or the declared class verbatim when it is not one
// the autoload knows.
func (c *Classifier) Classify(e PhysicalEntity) Role {
	if e.VendorType != "" && c.toContainer.MatchString(e.VendorType) {
		return RoleContainer
	}

	declared := normalizeClass(e.PhysicalClass)
	if declared != "" && declared != "other" {
		if role, ok := canonicalRoles[declared]; ok {
			return role
		}
		return Role(declared)
	}

	if e.VendorType == "" {
		if e.PositionID == "-1" &&
			(strings.Contains(strings.ToLower(e.Name), "chassis") ||
				strings.Contains(strings.ToLower(e.Description), "chassis")) {
			return RoleChassis
		}
		return RoleUnknown
	}

	for _, vt := range vendorTypeRoles {
		if vt.pattern.MatchString(e.VendorType) {
			return vt.role
		}
	}
	return Role(declared)
}

// normalizeClass strips MIB rendering noise: "'powerSupply(6)'" becomes "powersupply".
func normalizeClass(class string) string {
	s := strings.Trim(strings.TrimSpace(class), `'"`)
	s = enumSuffix.ReplaceAllString(s, "")
	return strings.ToLower(s)
}
