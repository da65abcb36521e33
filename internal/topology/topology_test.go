package topology

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ryanolf/sonos-manager/internal/upnp/soap"
)

func TestFromZoneGroupStateSkipsSatellitesAndEmptyGroups(t *testing.T) {
	state := soap.ZoneGroupState{Groups: []soap.ZoneGroup{
		{
			Coordinator: "RINCON_LIVING",
			Members: []soap.ZoneMember{
				{UUID: "RINCON_LIVING", ZoneName: "Living Room", Location: "http://10.0.0.5:1400/x"},
				{UUID: "RINCON_SUB", ZoneName: "Living Room", Location: "http://10.0.0.6:1400/x", IsSubwoofer: true},
			},
		},
		{
			Coordinator: "RINCON_EMPTY",
			Members: []soap.ZoneMember{
				{UUID: "RINCON_EMPTY_SAT", IsSatellite: true},
			},
		},
	}}

	topo := FromZoneGroupState(state)
	require.Equal(t, []string{"RINCON_LIVING"}, topo.Coordinators())
	require.Len(t, topo.MembersOf("RINCON_LIVING"), 1)
	require.Nil(t, topo.MembersOf("RINCON_EMPTY"))
}

func TestCoordinatorOfIsCaseInsensitiveAndFindsMembers(t *testing.T) {
	topo := Empty().WithGroup("RINCON_LIVING", []SpeakerInfo{
		{UUID: "RINCON_LIVING", Name: "Living Room"},
		{UUID: "RINCON_KITCHEN", Name: "Kitchen"},
	})

	coord, ok := topo.CoordinatorOf("rincon_kitchen")
	require.True(t, ok)
	require.Equal(t, "RINCON_LIVING", coord)

	_, ok = topo.CoordinatorOf("RINCON_UNKNOWN")
	require.False(t, ok)
}

func TestAllSpeakersSpansEveryGroup(t *testing.T) {
	topo := Empty().
		WithGroup("A", []SpeakerInfo{{UUID: "A"}}).
		WithGroup("B", []SpeakerInfo{{UUID: "B"}, {UUID: "B2"}})

	require.Len(t, topo.AllSpeakers(), 3)
}

func TestWithGroupDoesNotMutateOriginal(t *testing.T) {
	base := Empty().WithGroup("A", []SpeakerInfo{{UUID: "A"}})
	extended := base.WithGroup("B", []SpeakerInfo{{UUID: "B"}})

	require.Len(t, base.Coordinators(), 1)
	require.Len(t, extended.Coordinators(), 2)
}

func TestSpeakerInfoBaseURLDefaultsPort1400(t *testing.T) {
	info := SpeakerInfo{Location: "http://10.0.0.5/xml/device_description.xml"}
	require.Equal(t, "http://10.0.0.5:1400", info.BaseURL())

	withPort := SpeakerInfo{Location: "http://10.0.0.5:1401/xml/device_description.xml"}
	require.Equal(t, "http://10.0.0.5:1401", withPort.BaseURL())
}
