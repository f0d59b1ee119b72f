package sim

import "github.com/jslinux/JsOs/pci/hal"

// Node is a simulated ACPI device node. Nodes are built into trees with
// the constructors below and handed to the engine through [Firmware].
type Node struct {
	device     bool
	rootBridge bool
	address    uint32
	parent     *Node
	rootBus    uint8
	routes     []hal.IRQRoute
}

// NewRootBridgeNode creates a root-bridge device node decoding the given
// bus.
func NewRootBridgeNode(bus uint8) *Node {
	return &Node{device: true, rootBridge: true, rootBus: bus}
}

// NewDeviceNode creates a device node at the given slot and function under
// a parent.
func NewDeviceNode(parent *Node, slot, fn uint8) *Node {
	return &Node{
		device:  true,
		parent:  parent,
		address: uint32(slot)<<16 | uint32(fn),
	}
}

// NewScopeNode creates a non-device node (e.g. an ACPI scope), useful for
// modeling unresolvable parentage.
func NewScopeNode(parent *Node) *Node {
	return &Node{parent: parent}
}

// SetRoutingTable attaches interrupt routing entries for the bus behind
// this node.
func (n *Node) SetRoutingTable(routes []hal.IRQRoute) {
	n.routes = routes
}

// IsDevice implements [hal.ACPINode].
func (n *Node) IsDevice() bool { return n.device }

// IsRootBridge implements [hal.ACPINode].
func (n *Node) IsRootBridge() bool { return n.rootBridge }

// Address implements [hal.ACPINode].
func (n *Node) Address() uint32 { return n.address }

// Parent implements [hal.ACPINode].
func (n *Node) Parent() hal.ACPINode {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// RootBridgeBusNumber implements [hal.ACPINode].
func (n *Node) RootBridgeBusNumber() uint8 { return n.rootBus }

// IRQRoutingTable implements [hal.ACPINode].
func (n *Node) IRQRoutingTable() []hal.IRQRoute { return n.routes }

// Firmware is a simulated ACPI device tree. It implements [hal.ACPI].
type Firmware struct {
	nodes []hal.ACPINode
}

// NewFirmware creates an empty firmware tree.
func NewFirmware() *Firmware {
	return &Firmware{}
}

// Add appends nodes to the tree in firmware order.
func (f *Firmware) Add(nodes ...hal.ACPINode) {
	f.nodes = append(f.nodes, nodes...)
}

// PCIDevices implements [hal.ACPI].
func (f *Firmware) PCIDevices() []hal.ACPINode {
	return f.nodes
}

var (
	_ hal.ACPINode = (*Node)(nil)
	_ hal.ACPI     = (*Firmware)(nil)
)
