package topology

import (
	"strings"

	"go.uber.org/zap"

	"github.com/HerbHall/snmpautoload/internal/entity"
	"github.com/HerbHall/snmpautoload/internal/iftable"
	"github.com/HerbHall/snmpautoload/pkg/models"
)

// structureParent resolves the parent of a mapped port from the physical
// hierarchy, linking module nodes up to their chassis on first use. Levels
// the port id implies below that parent are synthesized. A nil node means
// the structure knows no parent for the port.
func (a *Assembler) structureParent(p entity.Port, lp *iftable.LogicalPort, segs []string) (*models.Node, error) {
	parentIdx, ok := a.structure.Parent(p.EntityIndex)
	if !ok {
		return nil, nil
	}
	parent, err := a.linkEntity(parentIdx, lp)
	if err != nil || parent == nil {
		return nil, err
	}
	if gap := len(segs) - parent.Address.Depth() - 1; gap > 0 {
		parent = a.synthesize(parent, segs[len(segs)-1-gap:len(segs)-1])
	}
	return parent, nil
}

// linkEntity returns the node of a chassis or module entity. A module is
// attached to its parent, and each unattached ancestor in turn, until the
// chain reaches a chassis or an attached node. A module under another
// module becomes a sub-module.
func (a *Assembler) linkEntity(index string, lp *iftable.LogicalPort) (*models.Node, error) {
	if c, ok := a.structure.ChassisByEntity(index); ok {
		return a.chassisByIdx[c.Index], nil
	}
	m, ok := a.structure.Module(index)
	if !ok {
		return nil, nil
	}

	node := a.moduleNode(m)
	cur, curNode := m, node
	seen := make(map[string]bool)
	for curNode.Parent() == nil {
		if seen[cur.EntityIndex] {
			return nil, topologyError(lp, "module cycle through entity %s", cur.EntityIndex)
		}
		seen[cur.EntityIndex] = true

		parentNode, next := a.parentOf(cur)
		if parentNode == nil {
			if len(a.chassis) > 1 {
				return nil, topologyError(lp, "module entity %s has no chassis ancestor", cur.EntityIndex)
			}
			parentNode = a.chassis[0]
		}
		if parentNode.Kind != models.KindChassis && curNode.Kind == models.KindModule {
			curNode.SetKind(models.KindSubModule)
		}
		a.connect(parentNode, curNode)
		if next == nil {
			break
		}
		cur, curNode = next, parentNode
	}
	return node, nil
}

// parentOf returns the node of a module's structural parent, and the
// parent module when it is one.
func (a *Assembler) parentOf(m *entity.Module) (*models.Node, *entity.Module) {
	if m.ParentIndex == "" {
		return nil, nil
	}
	if c, ok := a.structure.ChassisByEntity(m.ParentIndex); ok {
		return a.chassisByIdx[c.Index], nil
	}
	if pm, ok := a.structure.Module(m.ParentIndex); ok {
		return a.moduleNode(pm), pm
	}
	return nil, nil
}

// moduleNode materializes a module entity once. The node stays detached
// until linkEntity attaches it.
func (a *Assembler) moduleNode(m *entity.Module) *models.Node {
	if n, ok := a.modules[m.EntityIndex]; ok {
		return n
	}
	n := models.NewModule(m.Position)
	n.Model = m.Model
	n.SerialNumber = m.SerialNumber
	n.Version = m.Version
	a.modules[m.EntityIndex] = n
	if _, taken := a.moduleIDs[m.ID]; m.ID != "" && !taken {
		a.moduleIDs[m.ID] = n
	}
	return n
}

// connect attaches child under parent, moving it to a free index when a
// sibling of the same kind already holds its index.
func (a *Assembler) connect(parent, child *models.Node) {
	if hasChild(parent, child.Kind, child.Index(), child) {
		index := freeIndex(parent, child.Kind)
		a.logger.Debug("module index already in use",
			zap.String("parent", parent.Address.String()),
			zap.String("index", child.Index()),
			zap.String("assigned", index),
		)
		child.SetIndex(index)
	}
	if child.Kind == models.KindSubModule {
		parent.ConnectSubModule(child)
		return
	}
	parent.ConnectModule(child)
}

// synthesize walks levels below parent, reusing registered or existing
// nodes and creating the missing ones. Levels under a chassis are modules,
// deeper ones sub-modules.
func (a *Assembler) synthesize(parent *models.Node, levels []string) *models.Node {
	cur := parent
	for _, seg := range levels {
		kind := models.KindSubModule
		if cur.Kind == models.KindChassis {
			kind = models.KindModule
		}
		id := nodeID(cur) + "-" + seg

		if n, ok := a.moduleIDs[id]; ok {
			if n.Parent() == nil {
				if kind == models.KindSubModule && n.Kind == models.KindModule {
					n.SetKind(models.KindSubModule)
				}
				a.connect(cur, n)
			}
			cur = n
			continue
		}
		if n, ok := cur.ChildByIndex(kind, seg); ok {
			a.moduleIDs[id] = n
			cur = n
			continue
		}

		var n *models.Node
		if kind == models.KindModule {
			n = models.NewModule(seg)
		} else {
			n = models.NewSubModule(seg)
		}
		a.connect(cur, n)
		a.moduleIDs[id] = n
		a.stats.Synthesized[kind]++
		a.logger.Debug("synthesized module",
			zap.String("id", id),
			zap.String("address", n.Address.String()),
		)
		cur = n
	}
	return cur
}

// guessParent places a port no physical row could place, from its id
// alone. The longest registered or known prefix of the id is reused and
// the remaining levels are synthesized. A nil node asks for a direct
// chassis attach.
func (a *Assembler) guessParent(lp *iftable.LogicalPort, segs []string) (*models.Node, error) {
	if len(segs) < 2 {
		return nil, nil
	}
	parentSegs := segs[:len(segs)-1]

	chassis, levels := a.chassis[0], parentSegs
	if c, ok := a.chassisByIdx[parentSegs[0]]; ok && (len(a.chassis) > 1 || len(parentSegs) > 1) {
		if len(parentSegs) == 1 {
			return nil, nil
		}
		chassis, levels = c, parentSegs[1:]
	} else if len(a.chassis) > 1 && len(parentSegs) > 1 {
		return nil, topologyError(lp, "leading segment %s names no known chassis", parentSegs[0])
	}

	prefix := nodeID(chassis)
	for n := len(levels); n > 0; n-- {
		id := prefix + "-" + strings.Join(levels[:n], "-")
		if node, ok := a.moduleIDs[id]; ok && node.Parent() != nil {
			return a.synthesize(node, levels[n:]), nil
		}
		if m, ok := a.structure.ModuleByID(id); ok {
			node, err := a.linkEntity(m.EntityIndex, lp)
			if err != nil {
				return nil, err
			}
			if node != nil {
				return a.synthesize(node, levels[n:]), nil
			}
		}
	}
	return a.synthesize(chassis, levels), nil
}

// correctAncestors rewrites the indexes of parent and its ancestors from
// the segments the port id reports. Assignments that would collide with a
// sibling are skipped.
func (a *Assembler) correctAncestors(parent *models.Node, segs []string) {
	if len(segs) < 2 {
		return
	}
	portIDs := segs[:len(segs)-1]
	depth := parent.Address.Depth()

	switch {
	case depth > 2:
		list := append([]string(nil), portIDs[1:]...)
		if len(list) > 2 {
			list = list[:len(list)-1]
		}
		node := parent
		for i := len(list) - 1; i >= 0; i-- {
			if node == nil || node.Kind == models.KindChassis {
				break
			}
			a.setIndex(node, list[i])
			node = node.Parent()
		}
	case depth == 2 && len(portIDs) > 1:
		chassis := parent.Parent()
		if chassis == nil {
			return
		}
		if chassis.Index() == portIDs[0] {
			a.setIndex(parent, portIDs[1])
		} else {
			a.setIndex(parent, portIDs[0])
		}
	}
}

func (a *Assembler) setIndex(n *models.Node, index string) {
	if n.Index() == index {
		return
	}
	if p := n.Parent(); p != nil && hasChild(p, n.Kind, index, n) {
		a.logger.Debug("index correction skipped",
			zap.String("address", n.Address.String()),
			zap.String("index", index),
		)
		return
	}
	a.logger.Debug("module index corrected",
		zap.String("address", n.Address.String()),
		zap.String("index", index),
	)
	n.SetIndex(index)
}

// nodeID renders a node's native indexes root first, dash-joined.
func nodeID(n *models.Node) string {
	var segs []string
	for cur := n.Address; cur != nil; cur = cur.Parent {
		segs = append(segs, cur.NativeIndex)
	}
	for l, r := 0, len(segs)-1; l < r; l, r = l+1, r-1 {
		segs[l], segs[r] = segs[r], segs[l]
	}
	return strings.Join(segs, "-")
}
