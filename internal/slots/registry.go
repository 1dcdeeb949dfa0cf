package slots

import (
	"fmt"
	"strings"

	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/domain"
)

// registry lists every image placement in the guest app, in display order.
// One entry per slot keeps label, group, and default in lockstep.
var registry = []domain.Slot{
	{ID: "home.hero", Label: "Home hero", Group: domain.GroupHome, Default: "/static/defaults/home-hero.jpg"},
	{ID: "home.welcome", Label: "Welcome card", Group: domain.GroupHome, Default: "/static/defaults/home-welcome.jpg"},
	{ID: "home.offers", Label: "Offers banner", Group: domain.GroupHome, Default: "/static/defaults/home-offers.jpg"},

	{ID: "hub.dining", Label: "Dining tile", Group: domain.GroupHub, Default: "/static/defaults/hub-dining.jpg"},
	{ID: "hub.spa", Label: "Spa tile", Group: domain.GroupHub, Default: "/static/defaults/hub-spa.jpg"},
	{ID: "hub.pool", Label: "Pool tile", Group: domain.GroupHub, Default: "/static/defaults/hub-pool.jpg"},
	{ID: "hub.fitness", Label: "Fitness tile", Group: domain.GroupHub, Default: "/static/defaults/hub-fitness.jpg"},

	{ID: "room.classic", Label: "Classic room", Group: domain.GroupRoom, Default: "/static/defaults/room-classic.jpg"},
	{ID: "room.deluxe", Label: "Deluxe room", Group: domain.GroupRoom, Default: "/static/defaults/room-deluxe.jpg"},
	{ID: "room.suite", Label: "Suite", Group: domain.GroupRoom, Default: "/static/defaults/room-suite.jpg"},
	{ID: "room.bathroom", Label: "Bathroom", Group: domain.GroupRoom, Default: "/static/defaults/room-bathroom.jpg"},

	{ID: "events.ballroom", Label: "Ballroom", Group: domain.GroupEvents, Default: "/static/defaults/events-ballroom.jpg"},
	{ID: "events.meeting", Label: "Meeting rooms", Group: domain.GroupEvents, Default: "/static/defaults/events-meeting.jpg"},
	{ID: "events.wedding", Label: "Weddings", Group: domain.GroupEvents, Default: "/static/defaults/events-wedding.jpg"},

	{ID: "area.lobby", Label: "Lobby", Group: domain.GroupArea, Default: "/static/defaults/area-lobby.jpg"},
	{ID: "area.bar", Label: "Lobby bar", Group: domain.GroupArea, Default: "/static/defaults/area-bar.jpg"},
	{ID: "area.terrace", Label: "Terrace", Group: domain.GroupArea, Default: "/static/defaults/area-terrace.jpg"},
	{ID: "area.garden", Label: "Garden", Group: domain.GroupArea, Default: "/static/defaults/area-garden.jpg"},

	{ID: "concierge.portrait", Label: "Concierge portrait", Group: domain.GroupConcierge, Default: "/static/defaults/concierge-portrait.jpg"},
	{ID: "concierge.city", Label: "City guide", Group: domain.GroupConcierge, Default: "/static/defaults/concierge-city.jpg"},
	{ID: "concierge.transfers", Label: "Transfers", Group: domain.GroupConcierge, Default: "/static/defaults/concierge-transfers.jpg"},
}

var groups = []domain.Group{
	domain.GroupHome,
	domain.GroupHub,
	domain.GroupRoom,
	domain.GroupEvents,
	domain.GroupArea,
	domain.GroupConcierge,
}

var byID map[string]int

func init() {
	if err := Validate(registry); err != nil {
		panic(fmt.Sprintf("slots: invalid registry: %v", err))
	}
	byID = make(map[string]int, len(registry))
	for i, s := range registry {
		byID[s.ID] = i
	}
}

// Validate checks that every slot has a unique id, a label, a known group,
// and a bundled default path.
func Validate(list []domain.Slot) error {
	known := make(map[domain.Group]bool, len(groups))
	for _, g := range groups {
		known[g] = true
	}

	seen := make(map[string]bool, len(list))
	for i, s := range list {
		switch {
		case strings.TrimSpace(s.ID) == "":
			return fmt.Errorf("slot %d has no id", i)
		case seen[s.ID]:
			return fmt.Errorf("duplicate slot id %q", s.ID)
		case strings.TrimSpace(s.Label) == "":
			return fmt.Errorf("slot %q has no label", s.ID)
		case !known[s.Group]:
			return fmt.Errorf("slot %q has unknown group %q", s.ID, s.Group)
		case !strings.HasPrefix(s.Default, "/static/"):
			return fmt.Errorf("slot %q default %q is not a bundled path", s.ID, s.Default)
		}
		seen[s.ID] = true
	}
	return nil
}

// All returns a copy of every slot in registry order.
func All() []domain.Slot {
	out := make([]domain.Slot, len(registry))
	copy(out, registry)
	return out
}

func Lookup(id string) (domain.Slot, bool) {
	i, ok := byID[id]
	if !ok {
		return domain.Slot{}, false
	}
	return registry[i], true
}

func Known(id string) bool {
	_, ok := byID[id]
	return ok
}

func LabelOf(id string) string {
	s, _ := Lookup(id)
	return s.Label
}

func DefaultOf(id string) string {
	s, _ := Lookup(id)
	return s.Default
}

func GroupOf(id string) domain.Group {
	s, _ := Lookup(id)
	return s.Group
}

// Groups returns the slot groups in display order.
func Groups() []domain.Group {
	out := make([]domain.Group, len(groups))
	copy(out, groups)
	return out
}

func InGroup(g domain.Group) []domain.Slot {
	var out []domain.Slot
	for _, s := range registry {
		if s.Group == g {
			out = append(out, s)
		}
	}
	return out
}
