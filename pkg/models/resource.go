package models

import (
	"strings"
)

// Kind is the role of a node in the resource tree.
type Kind string

const (
	KindChassis     Kind = "Chassis"
	KindModule      Kind = "Module"
	KindSubModule   Kind = "SubModule"
	KindPort        Kind = "Port"
	KindPowerPort   Kind = "PowerPort"
	KindPortChannel Kind = "PortChannel"
)

// Prefix returns the relative address prefix of the kind ("CH", "M", ...).
func (k Kind) Prefix() string {
	switch k {
	case KindChassis:
		return "CH"
	case KindModule:
		return "M"
	case KindSubModule:
		return "SM"
	case KindPort:
		return "P"
	case KindPowerPort:
		return "PP"
	case KindPortChannel:
		return "PC"
	default:
		return ""
	}
}

// ResourceModel returns the model name reported for resources of the kind.
func (k Kind) ResourceModel() string {
	return "Generic" + string(k)
}

// sortRank orders siblings in the rendered details.
func (k Kind) sortRank() int {
	switch k {
	case KindChassis:
		return 0
	case KindModule:
		return 1
	case KindSubModule:
		return 2
	case KindPowerPort:
		return 3
	case KindPort:
		return 4
	case KindPortChannel:
		return 5
	default:
		return 6
	}
}

// RelativeAddress is one segment of a node's path from the root. Parent
// links form the chain rendered as "CH0/M3/SM2/P12".
type RelativeAddress struct {
	Prefix      string
	NativeIndex string
	Parent      *RelativeAddress
}

// String renders the full path.
func (a *RelativeAddress) String() string {
	if a == nil {
		return ""
	}
	return strings.Join(a.Segments(), "/")
}

// Segments returns the path segments, root first.
func (a *RelativeAddress) Segments() []string {
	var segs []string
	for cur := a; cur != nil; cur = cur.Parent {
		segs = append(segs, cur.Prefix+cur.NativeIndex)
	}
	for l, r := 0, len(segs)-1; l < r; l, r = l+1, r-1 {
		segs[l], segs[r] = segs[r], segs[l]
	}
	return segs
}

// Depth is the number of segments in the path.
func (a *RelativeAddress) Depth() int {
	n := 0
	for cur := a; cur != nil; cur = cur.Parent {
		n++
	}
	return n
}

// Node is one element of the resource tree.
type Node struct {
	Kind    Kind
	Address *RelativeAddress

	// Name overrides the generated "<Kind> <index>" name. Ports and port
	// channels carry their interface name.
	Name string

	Model        string
	SerialNumber string
	Version      string
	Description  string

	MAC             string
	L2ProtocolType  string
	IPv4            string
	IPv6            string
	Bandwidth       string
	MTU             string
	Duplex          string
	Adjacent        string
	AutoNegotiation string

	AssociatedPorts string

	parent   *Node
	children []*Node
}

func newNode(kind Kind, index, name string) *Node {
	return &Node{
		Kind:    kind,
		Name:    name,
		Address: &RelativeAddress{Prefix: kind.Prefix(), NativeIndex: index},
	}
}

// NewChassis returns a detached chassis node.
func NewChassis(index string) *Node { return newNode(KindChassis, index, "") }

// NewModule returns a detached module node.
func NewModule(index string) *Node { return newNode(KindModule, index, "") }

// NewSubModule returns a detached sub-module node.
func NewSubModule(index string) *Node { return newNode(KindSubModule, index, "") }

// NewPort returns a detached port node.
func NewPort(index, name string) *Node { return newNode(KindPort, index, name) }

// NewPowerPort returns a detached power port node.
func NewPowerPort(index string) *Node { return newNode(KindPowerPort, index, "") }

// NewPortChannel returns a detached port-channel node.
func NewPortChannel(index, name string) *Node { return newNode(KindPortChannel, index, name) }

// Index returns the node's local index within its parent.
func (n *Node) Index() string {
	return n.Address.NativeIndex
}

// SetIndex rewrites the node's local index. Descendant addresses follow.
func (n *Node) SetIndex(index string) {
	n.Address.NativeIndex = index
}

// SetKind changes the node's role, e.g. a module found nested under another
// module becomes a sub-module.
func (n *Node) SetKind(kind Kind) {
	n.Kind = kind
	n.Address.Prefix = kind.Prefix()
}

// DisplayName is the resource name of the node.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	switch n.Kind {
	case KindSubModule:
		return "Sub Module " + n.Index()
	case KindPowerPort:
		return "Power Port " + n.Index()
	default:
		return string(n.Kind) + " " + n.Index()
	}
}

// Parent returns the node the receiver is attached to, or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// SubResources returns the attached children in attach order.
func (n *Node) SubResources() []*Node {
	return n.children
}

// ChildByIndex finds a direct child of the given kind and index.
func (n *Node) ChildByIndex(kind Kind, index string) (*Node, bool) {
	for _, c := range n.children {
		if c.Kind == kind && c.Index() == index {
			return c, true
		}
	}
	return nil, false
}

// ConnectModule attaches a module.
func (n *Node) ConnectModule(child *Node) { n.connect(child) }

// ConnectSubModule attaches a sub-module.
func (n *Node) ConnectSubModule(child *Node) { n.connect(child) }

// ConnectPort attaches a port.
func (n *Node) ConnectPort(child *Node) { n.connect(child) }

// ConnectPowerPort attaches a power port.
func (n *Node) ConnectPowerPort(child *Node) { n.connect(child) }

// connect attaches child, detaching it from a previous parent first.
func (n *Node) connect(child *Node) {
	if child.parent == n {
		return
	}
	if child.parent != nil {
		child.parent.detach(child)
	}
	child.parent = n
	child.Address.Parent = n.Address
	n.children = append(n.children, child)
}

func (n *Node) detach(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// ResourceModel is the root of the resource tree of one device.
type ResourceModel struct {
	ResourceName string

	Vendor     string
	Model      string
	OSVersion  string
	SystemName string
	Contact    string
	Location   string

	chassis      []*Node
	portChannels []*Node
}

// NewResourceModel returns an empty resource tree.
func NewResourceModel(resourceName string) *ResourceModel {
	return &ResourceModel{ResourceName: resourceName}
}

// ConnectChassis attaches a chassis to the root.
func (m *ResourceModel) ConnectChassis(n *Node) {
	n.Address.Parent = nil
	m.chassis = append(m.chassis, n)
}

// ConnectPortChannel attaches a port-channel to the root.
func (m *ResourceModel) ConnectPortChannel(n *Node) {
	n.Address.Parent = nil
	m.portChannels = append(m.portChannels, n)
}

// Chassis returns the attached chassis in attach order.
func (m *ResourceModel) Chassis() []*Node {
	return m.chassis
}

// PortChannels returns the attached port-channels in attach order.
func (m *ResourceModel) PortChannels() []*Node {
	return m.portChannels
}
