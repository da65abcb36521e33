package gena

import (
	"bytes"
	"encoding/xml"
	"html"
	"strconv"
)

type propertyset struct {
	Properties []property `xml:"property"`
}

type property struct {
	LastChange     string `xml:"LastChange"`
	ZoneGroupState string `xml:"ZoneGroupState"`
}

// ParseNotifyBody parses a NOTIFY request body for one of the two
// service families the controller subscribes to. sid/seq come from the
// NOTIFY request's own headers, not the body.
func ParseNotifyBody(body []byte, sid string, seq int) (Notification, error) {
	notification := Notification{SID: sid, SEQ: seq}

	var ps propertyset
	if err := xml.Unmarshal(body, &ps); err != nil {
		return notification, err
	}

	for _, prop := range ps.Properties {
		if prop.ZoneGroupState != "" {
			notification.ZoneGroupState = html.UnescapeString(prop.ZoneGroupState)
		}
		if prop.LastChange != "" {
			unescaped := html.UnescapeString(prop.LastChange)
			kvs, err := parseLastChange(unescaped)
			if err == nil {
				notification.AVTransportChange = kvs
			}
		}
	}

	return notification, nil
}

// parseLastChange walks an AVTransport/RenderingControl LastChange document
// generically, in document order, collecting every child element of
// <InstanceID> that carries a "val" attribute as a (key, value) pair. This
// picks up every state variable Sonos emits — including CurrentPlayMode,
// which a field-by-field struct would need to name explicitly — without
// needing to know the service's full variable set in advance (§4.A).
func parseLastChange(xmlContent string) ([]KV, error) {
	decoder := xml.NewDecoder(bytes.NewReader([]byte(xmlContent)))
	var kvs []KV
	depth := 0
	inInstance := false

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch se := tok.(type) {
		case xml.StartElement:
			depth++
			if se.Name.Local == "InstanceID" {
				inInstance = true
				continue
			}
			if !inInstance {
				continue
			}
			val, channel, hasVal := attrValue(se.Attr)
			if !hasVal {
				continue
			}
			// Only the Master channel is meaningful at zone-command
			// granularity; per-channel (LF/RF) detail is not modeled.
			if channel != "" && channel != "Master" {
				continue
			}
			kvs = append(kvs, KV{Key: se.Name.Local, Value: val})
		case xml.EndElement:
			depth--
			if se.Name.Local == "InstanceID" {
				inInstance = false
			}
		}
	}

	return kvs, nil
}

func attrValue(attrs []xml.Attr) (val, channel string, ok bool) {
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "val":
			val = attr.Value
			ok = true
		case "channel":
			channel = attr.Value
		}
	}
	return val, channel, ok
}

// ParseSEQ extracts the NOTIFY sequence number header as an int.
func ParseSEQ(header string) int {
	seq, _ := strconv.Atoi(header)
	return seq
}
