package soap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleZoneGroupState = `<ZoneGroups>
	<ZoneGroup Coordinator="RINCON_LIVING" ID="RINCON_LIVING:1">
		<ZoneGroupMember UUID="RINCON_LIVING" ZoneName="Living Room" Location="http://10.0.0.5:1400/xml/device_description.xml"/>
		<ZoneGroupMember UUID="RINCON_KITCHEN" ZoneName="Kitchen" Location="http://10.0.0.6:1400/xml/device_description.xml"/>
		<Satellite UUID="RINCON_SUB" ZoneName="Living Room" Location="http://10.0.0.7:1400/xml/device_description.xml" HTSatChanMapSet="RINCON_LIVING:LF,RF;RINCON_SUB:SW"/>
	</ZoneGroup>
	<ZoneGroup Coordinator="RINCON_BEDROOM" ID="RINCON_BEDROOM:1">
		<ZoneGroupMember UUID="RINCON_BEDROOM" ZoneName="Bedroom" Location="http://10.0.0.8:1400/xml/device_description.xml"/>
	</ZoneGroup>
</ZoneGroups>`

func TestParseZoneGroupStateXML(t *testing.T) {
	state := ParseZoneGroupStateXML(sampleZoneGroupState)
	require.Len(t, state.Groups, 2)

	living := state.Groups[0]
	require.Equal(t, "RINCON_LIVING", living.Coordinator)
	require.Len(t, living.Members, 3)
	require.True(t, living.Members[0].IsCoordinator)
	require.True(t, living.Members[2].IsSubwoofer)

	bedroom := state.Groups[1]
	require.Equal(t, "RINCON_BEDROOM", bedroom.Coordinator)
	require.Len(t, bedroom.Members, 1)
}

const sampleBrowseResult = `<DIDL-Lite xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/">
	<item id="FV:2/0" parentID="FV:2">
		<dc:title>My Favorite Station</dc:title>
		<upnp:class>object.item.audioItem.audioBroadcast</upnp:class>
		<res protocolInfo="x-rincon-mp3radio:*:*:*">x-rincon-mp3radio://stream.example/station</res>
		<desc id="cdudn" nameSpace="urn:schemas-rinconnetworks-com:metadata-1-0/">SA_RINCON65031_</desc>
	</item>
</DIDL-Lite>`

func TestParseDidlItems(t *testing.T) {
	items := parseDidlItems([]byte(sampleBrowseResult))
	require.Len(t, items, 1)
	require.Equal(t, "My Favorite Station", items[0].Title)
	require.Equal(t, "x-rincon-mp3radio://stream.example/station", items[0].Resource)
	require.Equal(t, "SA_RINCON65031_", items[0].ResourceMetaData)
}
