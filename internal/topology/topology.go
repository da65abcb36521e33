// Package topology is the pure, immutable zone-group model the Controller
// replaces wholesale on every topology update (§4.C).
package topology

import (
	"net/url"
	"strings"

	"github.com/ryanolf/sonos-manager/internal/upnp/soap"
)

// SpeakerInfo is one member entry within a zone group: identity and enough
// detail to reach the speaker directly.
type SpeakerInfo struct {
	UUID     string
	Name     string
	Location string
}

// BaseURL derives the speaker's control-point base URL ("http://host:1400")
// from its device-description Location, defaulting to Sonos's fixed port
// 1400 when the location carries none.
func (s SpeakerInfo) BaseURL() string {
	parsed, err := url.Parse(s.Location)
	if err != nil {
		return ""
	}
	host := parsed.Hostname()
	if host == "" {
		return ""
	}
	port := parsed.Port()
	if port == "" {
		port = "1400"
	}
	return "http://" + host + ":" + port
}

// Topology is an ordered mapping from coordinator UUID to its ordered list
// of member SpeakerInfo. A speaker is its own coordinator when it leads a
// single-member group.
type Topology struct {
	coordinators []string
	members      map[string][]SpeakerInfo
}

// Empty returns a Topology with no groups.
func Empty() Topology {
	return Topology{members: make(map[string][]SpeakerInfo)}
}

// FromZoneGroupState translates a parsed SOAP/GENA ZoneGroupState document
// into a Topology snapshot, skipping satellite/subwoofer entries (they are
// not independently addressable rooms).
func FromZoneGroupState(state soap.ZoneGroupState) Topology {
	t := Topology{members: make(map[string][]SpeakerInfo)}

	for _, group := range state.Groups {
		if group.Coordinator == "" {
			continue
		}
		var infos []SpeakerInfo
		for _, member := range group.Members {
			if member.IsSatellite || member.IsSubwoofer {
				continue
			}
			infos = append(infos, SpeakerInfo{
				UUID:     member.UUID,
				Name:     member.ZoneName,
				Location: member.Location,
			})
		}
		if len(infos) == 0 {
			continue
		}
		t.coordinators = append(t.coordinators, group.Coordinator)
		t.members[normalize(group.Coordinator)] = infos
	}

	return t
}

// CoordinatorOf returns the UUID of the group containing uuid (which may be
// uuid itself), or "" if uuid is not known to this topology.
func (t Topology) CoordinatorOf(uuid string) (string, bool) {
	target := normalize(uuid)
	for _, coordinator := range t.coordinators {
		for _, info := range t.members[normalize(coordinator)] {
			if normalize(info.UUID) == target {
				return coordinator, true
			}
		}
	}
	return "", false
}

// MembersOf returns the ordered member list for a coordinator UUID, or nil
// if coordinatorUUID does not lead a group in this topology.
func (t Topology) MembersOf(coordinatorUUID string) []SpeakerInfo {
	return t.members[normalize(coordinatorUUID)]
}

// AllSpeakers returns every SpeakerInfo across every group, in group order.
func (t Topology) AllSpeakers() []SpeakerInfo {
	var all []SpeakerInfo
	for _, coordinator := range t.coordinators {
		all = append(all, t.members[normalize(coordinator)]...)
	}
	return all
}

// Coordinators returns every coordinator UUID, in topology order.
func (t Topology) Coordinators() []string {
	return append([]string(nil), t.coordinators...)
}

// WithGroup returns a copy of t with one more group appended, coordinated
// by coordinatorUUID. It exists so tests can build synthetic topologies
// without going through a ZoneGroupState document.
func (t Topology) WithGroup(coordinatorUUID string, members []SpeakerInfo) Topology {
	next := Topology{
		coordinators: append(append([]string(nil), t.coordinators...), coordinatorUUID),
		members:      make(map[string][]SpeakerInfo, len(t.members)+1),
	}
	for k, v := range t.members {
		next.members[k] = v
	}
	next.members[normalize(coordinatorUUID)] = members
	return next
}

func normalize(uuid string) string {
	return strings.ToUpper(uuid)
}
