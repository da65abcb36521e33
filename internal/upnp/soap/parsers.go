package soap

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
)

func parseTextValue(payload []byte, element string) string {
	decoder := xml.NewDecoder(bytes.NewReader(payload))
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != element {
			continue
		}
		var value string
		if err := decoder.DecodeElement(&value, &se); err == nil {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func parseTransportInfo(payload []byte) TransportInfo {
	return TransportInfo{
		CurrentTransportState:  parseTextValue(payload, "CurrentTransportState"),
		CurrentTransportStatus: parseTextValue(payload, "CurrentTransportStatus"),
		CurrentSpeed:           parseTextValue(payload, "CurrentSpeed"),
	}
}

func parseTransportSettings(payload []byte) TransportSettings {
	return TransportSettings{
		PlayMode:       parseTextValue(payload, "PlayMode"),
		RecQualityMode: parseTextValue(payload, "RecQualityMode"),
	}
}

func parsePositionInfo(payload []byte) PositionInfo {
	track, _ := strconv.Atoi(parseTextValue(payload, "Track"))
	return PositionInfo{
		Track:         track,
		TrackDuration: parseTextValue(payload, "TrackDuration"),
		TrackMetaData: parseTextValue(payload, "TrackMetaData"),
		TrackURI:      parseTextValue(payload, "TrackURI"),
		RelTime:       parseTextValue(payload, "RelTime"),
		AbsTime:       parseTextValue(payload, "AbsTime"),
	}
}

func parseMediaInfo(payload []byte) MediaInfo {
	nrTracks, _ := strconv.Atoi(parseTextValue(payload, "NrTracks"))
	return MediaInfo{
		NrTracks:           nrTracks,
		MediaDuration:      parseTextValue(payload, "MediaDuration"),
		CurrentURI:         parseTextValue(payload, "CurrentURI"),
		CurrentURIMetaData: parseTextValue(payload, "CurrentURIMetaData"),
	}
}

func parseVolume(payload []byte) VolumeInfo {
	vol, _ := strconv.Atoi(parseTextValue(payload, "CurrentVolume"))
	return VolumeInfo{CurrentVolume: vol}
}

func parseBrowseResult(payload []byte) BrowseResult {
	var result BrowseResult
	result.NumberReturned, _ = strconv.Atoi(parseTextValue(payload, "NumberReturned"))
	result.TotalMatches, _ = strconv.Atoi(parseTextValue(payload, "TotalMatches"))
	result.UpdateID, _ = strconv.Atoi(parseTextValue(payload, "UpdateID"))

	didl := parseTextValue(payload, "Result")
	if didl == "" {
		return result
	}
	result.Items = parseDidlItems([]byte(didl))
	return result
}

// parseDidlItems parses a DIDL-Lite <item> list returned by Browse, used for
// favorite/playlist title resolution (§6.2).
func parseDidlItems(payload []byte) []FavoriteItem {
	decoder := xml.NewDecoder(bytes.NewReader(payload))
	var items []FavoriteItem
	var current *FavoriteItem

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "item", "container":
			item := FavoriteItem{}
			for _, attr := range se.Attr {
				switch attr.Name.Local {
				case "id":
					item.ID = attr.Value
				case "parentID":
					item.ParentID = attr.Value
				}
			}
			items = append(items, item)
			current = &items[len(items)-1]
		case "title":
			if current != nil {
				var value string
				if err := decoder.DecodeElement(&value, &se); err == nil {
					current.Title = strings.TrimSpace(value)
				}
			}
		case "class":
			if current != nil {
				var value string
				if err := decoder.DecodeElement(&value, &se); err == nil {
					current.UpnpClass = strings.TrimSpace(value)
				}
			}
		case "res":
			if current != nil {
				var value string
				if err := decoder.DecodeElement(&value, &se); err == nil {
					current.Resource = strings.TrimSpace(value)
				}
				for _, attr := range se.Attr {
					if attr.Name.Local == "protocolInfo" {
						current.ProtocolInfo = attr.Value
					}
				}
			}
		case "resMD":
			if current != nil {
				var value string
				if err := decoder.DecodeElement(&value, &se); err == nil {
					current.ResourceMetaData = strings.TrimSpace(value)
				}
			}
		case "desc":
			if current != nil {
				var value string
				if err := decoder.DecodeElement(&value, &se); err == nil {
					current.ResourceMetaData = strings.TrimSpace(value)
				}
			}
		}
	}

	return items
}

// parseZoneGroupState parses a GetZoneGroupState response, or a raw
// ZoneGroupState document delivered directly by a GENA topology event.
func parseZoneGroupState(payload []byte) ZoneGroupState {
	zoneXML := parseTextValue(payload, "ZoneGroupState")
	if zoneXML == "" {
		zoneXML = string(payload)
	}
	return ParseZoneGroupStateXML(zoneXML)
}

// ParseZoneGroupStateXML parses the raw <ZoneGroups> document shared by the
// SOAP GetZoneGroupState action and the GENA ZoneGroupTopology event payload,
// so both paths agree on the exact same structural parse.
func ParseZoneGroupStateXML(zoneXML string) ZoneGroupState {
	decoder := xml.NewDecoder(strings.NewReader(zoneXML))
	var state ZoneGroupState
	var currentGroup *ZoneGroup
	var coordinator string

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "ZoneGroup":
			group := ZoneGroup{}
			coordinator = ""
			for _, attr := range se.Attr {
				switch attr.Name.Local {
				case "ID":
					group.ID = attr.Value
				case "Coordinator":
					group.Coordinator = attr.Value
					coordinator = attr.Value
				}
			}
			state.Groups = append(state.Groups, group)
			currentGroup = &state.Groups[len(state.Groups)-1]
		case "ZoneGroupMember":
			if currentGroup == nil {
				continue
			}
			member := ZoneMember{IsVisible: true}
			for _, attr := range se.Attr {
				switch attr.Name.Local {
				case "UUID":
					member.UUID = attr.Value
				case "ZoneName":
					member.ZoneName = attr.Value
				case "Location":
					member.Location = attr.Value
				case "ChannelMapSet":
					member.ChannelMapSet = attr.Value
				case "Invisible":
					member.IsVisible = !(attr.Value == "true" || attr.Value == "1")
				}
			}
			if member.UUID != "" && strings.EqualFold(member.UUID, coordinator) {
				member.IsCoordinator = true
			}
			currentGroup.Members = append(currentGroup.Members, member)
		case "Satellite":
			if currentGroup == nil {
				continue
			}
			satellite := ZoneMember{}
			var htSatChan string
			for _, attr := range se.Attr {
				switch attr.Name.Local {
				case "UUID":
					satellite.UUID = attr.Value
				case "ZoneName":
					satellite.ZoneName = attr.Value
				case "Location":
					satellite.Location = attr.Value
				case "ChannelMapSet":
					satellite.ChannelMapSet = attr.Value
				case "HTSatChanMapSet":
					htSatChan = attr.Value
				}
			}
			if strings.Contains(htSatChan, ":SW") {
				satellite.IsSubwoofer = true
			}
			if strings.Contains(htSatChan, ":LR") || strings.Contains(htSatChan, ":RR") {
				satellite.IsSatellite = true
			}
			if satellite.UUID != "" {
				currentGroup.Members = append(currentGroup.Members, satellite)
			}
		}
	}

	return state
}
