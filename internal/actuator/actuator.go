// Package actuator pushes a planner decision onto the network: toggling
// SDN link admin state via PORT_MOD, paired with a BARRIER on each
// endpoint switch to fix ordering.
package actuator

import (
	"context"
	"fmt"
	"log"

	"github.com/netarch/teflow/internal/enforcement"
	"github.com/netarch/teflow/internal/model"
	"github.com/netarch/teflow/internal/openflow"
)

// Network is the subset of controller.Manager the actuator drives.
type Network interface {
	PortMod(swid model.SwitchId, pm openflow.PortMod) error
	Barrier(ctx context.Context, swid model.SwitchId) error
}

// Endpoint locates one side of a link in switch/port coordinates.
type Endpoint struct {
	Switch model.SwitchId
	Port   model.PortNo
}

// EndpointLocator resolves a link to the (switch, port) pair on each side,
// normally backed by topology.Viewer's edge set plus the node->SwitchId
// mapping in use.
type EndpointLocator func(model.LinkId) (u, v Endpoint, ok bool)

// upSpeedMbps is the advertised speed applied to a powered-on SDN link,
// per spec.md §4.9.
const upSpeedMbps = 10000

// Actuator applies a TEOutput's β decisions to the network, gated by the
// operator's enforcement pause switch.
type Actuator struct {
	net      Network
	locate   EndpointLocator
	enforcer *enforcement.State
}

// New builds an Actuator.
func New(net Network, locate EndpointLocator, enforcer *enforcement.State) *Actuator {
	return &Actuator{net: net, locate: locate, enforcer: enforcer}
}

// ApplyResult reports per-link outcomes so a caller can decide whether a
// partial application needs attention.
type ApplyResult struct {
	Applied []model.LinkId
	Failed  map[model.LinkId]error
	Skipped map[model.LinkId]error
}

// Apply pushes every link's β decision in plan to the network. It applies
// link by link: one link's failure tears down only that link's affected
// session (via the controller's own close-on-write-error behavior) and
// does not block the rest of the plan.
func (a *Actuator) Apply(ctx context.Context, plan model.TEOutput) ApplyResult {
	res := ApplyResult{Failed: make(map[model.LinkId]error), Skipped: make(map[model.LinkId]error)}

	if a.enforcer.Paused() {
		log.Println("[actuator] enforcement paused, skipping plan application")
		for link := range plan.Beta {
			res.Skipped[link] = fmt.Errorf("actuator: enforcement paused")
		}
		return res
	}

	for link, beta := range plan.Beta {
		if err := a.applyLink(ctx, link, beta == 1); err != nil {
			res.Failed[link] = err
			log.Printf("[actuator] link %v: %v", link, err)
			continue
		}
		res.Applied = append(res.Applied, link)
	}
	return res
}

// applyLink toggles both endpoints of link and barriers both switches, per
// spec.md §4.9.
func (a *Actuator) applyLink(ctx context.Context, link model.LinkId, up bool) error {
	u, v, ok := a.locate(link)
	if !ok {
		return fmt.Errorf("actuator: link %v has no known endpoints", link)
	}

	if err := a.modifyPort(u, up); err != nil {
		return fmt.Errorf("actuator: link %v side u: %w", link, err)
	}
	if err := a.modifyPort(v, up); err != nil {
		return fmt.Errorf("actuator: link %v side v: %w", link, err)
	}

	if err := a.net.Barrier(ctx, u.Switch); err != nil {
		return fmt.Errorf("actuator: link %v barrier on switch %d: %w", link, u.Switch, err)
	}
	if err := a.net.Barrier(ctx, v.Switch); err != nil {
		return fmt.Errorf("actuator: link %v barrier on switch %d: %w", link, v.Switch, err)
	}
	return nil
}

func (a *Actuator) modifyPort(ep Endpoint, up bool) error {
	pm := openflow.PortMod{
		PortNo: uint16(ep.Port),
		Mask:   openflow.PortConfigDown,
	}
	if up {
		pm.Config = 0
		pm.Advertise = openflow.Port10GbFD
	} else {
		pm.Config = openflow.PortConfigDown
		pm.Advertise = 0
	}
	return a.net.PortMod(ep.Switch, pm)
}
