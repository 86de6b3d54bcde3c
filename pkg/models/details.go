package models

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"
)

// Resource is one element of the flattened resource tree.
type Resource struct {
	Model           string `json:"model" yaml:"model"`
	Name            string `json:"name" yaml:"name"`
	RelativeAddress string `json:"relative_address" yaml:"relative_address"`
	UniqueID        string `json:"unique_id" yaml:"unique_id"`
}

// Attribute is one named value of a resource. Root attributes have an
// empty relative address.
type Attribute struct {
	RelativeAddress string `json:"relative_address" yaml:"relative_address"`
	Name            string `json:"name" yaml:"name"`
	Value           string `json:"value" yaml:"value"`
}

// AutoloadDetails is the flattened output of one discovery run.
type AutoloadDetails struct {
	Resources  []Resource  `json:"resources" yaml:"resources"`
	Attributes []Attribute `json:"attributes" yaml:"attributes"`
}

// DuplicateIndexError reports two siblings of one kind sharing an index.
type DuplicateIndexError struct {
	Parent string
	Kind   Kind
	Index  string
}

func (e *DuplicateIndexError) Error() string {
	parent := e.Parent
	if parent == "" {
		parent = "root"
	}
	return fmt.Sprintf("duplicate %s index %q under %s", e.Kind, e.Index, parent)
}

// Build validates the tree and flattens it depth-first. Siblings are
// ordered by kind, then by numeric index.
func (m *ResourceModel) Build() (*AutoloadDetails, error) {
	d := &AutoloadDetails{
		Resources:  []Resource{},
		Attributes: m.rootAttributes(),
	}

	roots := append(append([]*Node(nil), m.chassis...), m.portChannels...)
	if err := checkSiblings("", roots); err != nil {
		return nil, err
	}
	for _, n := range sortNodes(roots) {
		if err := m.flatten(d, n); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (m *ResourceModel) flatten(d *AutoloadDetails, n *Node) error {
	addr := n.Address.String()
	d.Resources = append(d.Resources, Resource{
		Model:           n.Kind.ResourceModel(),
		Name:            n.DisplayName(),
		RelativeAddress: addr,
		UniqueID:        m.uniqueID(addr),
	})
	for _, a := range n.attributes() {
		d.Attributes = append(d.Attributes, Attribute{RelativeAddress: addr, Name: a[0], Value: a[1]})
	}

	if err := checkSiblings(addr, n.children); err != nil {
		return err
	}
	for _, c := range sortNodes(n.children) {
		if err := m.flatten(d, c); err != nil {
			return err
		}
	}
	return nil
}

// uniqueID is stable across runs for one resource name and address.
func (m *ResourceModel) uniqueID(addr string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(m.ResourceName+"/"+addr)).String()
}

func (m *ResourceModel) rootAttributes() []Attribute {
	pairs := [][2]string{
		{"Vendor", m.Vendor},
		{"Model", m.Model},
		{"OS Version", m.OSVersion},
		{"System Name", m.SystemName},
		{"Contact Name", m.Contact},
		{"Location", m.Location},
	}
	out := make([]Attribute, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Attribute{Name: p[0], Value: p[1]})
	}
	return out
}

func (n *Node) attributes() [][2]string {
	switch n.Kind {
	case KindChassis:
		return [][2]string{
			{"Model", n.Model},
			{"Serial Number", n.SerialNumber},
		}
	case KindModule, KindSubModule:
		return [][2]string{
			{"Model", n.Model},
			{"Serial Number", n.SerialNumber},
			{"Version", n.Version},
		}
	case KindPowerPort:
		return [][2]string{
			{"Model", n.Model},
			{"Serial Number", n.SerialNumber},
			{"Version", n.Version},
			{"Port Description", n.Description},
		}
	case KindPort:
		return [][2]string{
			{"MAC Address", n.MAC},
			{"L2 Protocol Type", n.L2ProtocolType},
			{"IPv4 Address", n.IPv4},
			{"IPv6 Address", n.IPv6},
			{"Port Description", n.Description},
			{"Bandwidth", n.Bandwidth},
			{"MTU", n.MTU},
			{"Duplex", n.Duplex},
			{"Adjacent", n.Adjacent},
			{"Auto Negotiation", n.AutoNegotiation},
		}
	case KindPortChannel:
		return [][2]string{
			{"Associated Ports", n.AssociatedPorts},
			{"Port Description", n.Description},
			{"IPv4 Address", n.IPv4},
			{"IPv6 Address", n.IPv6},
		}
	}
	return nil
}

func checkSiblings(parent string, nodes []*Node) error {
	seen := make(map[Kind]map[string]bool)
	for _, n := range nodes {
		if seen[n.Kind] == nil {
			seen[n.Kind] = make(map[string]bool)
		}
		if seen[n.Kind][n.Index()] {
			return &DuplicateIndexError{Parent: parent, Kind: n.Kind, Index: n.Index()}
		}
		seen[n.Kind][n.Index()] = true
	}
	return nil
}

func sortNodes(nodes []*Node) []*Node {
	out := append([]*Node(nil), nodes...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Kind != b.Kind {
			return a.Kind.sortRank() < b.Kind.sortRank()
		}
		return lessIndex(a.Index(), b.Index())
	})
	return out
}

func lessIndex(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}
