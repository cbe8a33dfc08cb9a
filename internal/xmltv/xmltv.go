// Package xmltv serializes channels and their EIT events to the XMLTV
// schema consumed by PVR/EPG frontends.
package xmltv

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/dvbgrab/epgrabber/internal/dvbt"
)

const timeLayout = "20060102150405 -0700"

type tvRoot struct {
	XMLName    xml.Name    `xml:"tv"`
	Source     string      `xml:"source-info-name,attr,omitempty"`
	Channels   []channel   `xml:"channel"`
	Programmes []programme `xml:"programme"`
}

type channel struct {
	ID      string `xml:"id,attr"`
	Display string `xml:"display-name"`
}

type programme struct {
	Start    string `xml:"start,attr"`
	Stop     string `xml:"stop,attr"`
	Channel  string `xml:"channel,attr"`
	Title    value  `xml:"title"`
	SubTitle *value `xml:"sub-title,omitempty"`
	Desc     *value `xml:"desc,omitempty"`
}

type value struct {
	Lang  string `xml:"lang,attr,omitempty"`
	Value string `xml:",chardata"`
}

// channelID formats a channel's id attribute from its service_id, matching
// the stable identifier a guide needs across regenerations.
func channelID(ch dvbt.Channel) string {
	return fmt.Sprintf("svc-%d", ch.ServiceID)
}

// Write serializes channels and their events as an XMLTV document. Each
// event's title and optional description are tagged with Language when
// set; time fields print in the given location.
func Write(w io.Writer, channels []dvbt.Channel, events []dvbt.EitEvent, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	root := tvRoot{Source: "epgrabber"}
	idByService := map[uint16]string{}
	for _, ch := range channels {
		id := channelID(ch)
		idByService[ch.ServiceID] = id
		root.Channels = append(root.Channels, channel{ID: id, Display: ch.Name})
	}

	for _, ev := range events {
		id, ok := idByService[ev.ServiceID]
		if !ok {
			continue
		}
		start := time.Unix(ev.StartTime, 0).In(loc)
		stop := start.Add(time.Duration(ev.Duration) * time.Second)
		prog := programme{
			Start:   start.Format(timeLayout),
			Stop:    stop.Format(timeLayout),
			Channel: id,
			Title:   value{Lang: ev.Language, Value: ev.EventName},
		}
		if ev.Description != "" {
			prog.Desc = &value{Lang: ev.Language, Value: ev.Description}
		}
		root.Programmes = append(root.Programmes, prog)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("xmltv: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("xmltv: %w", err)
	}
	return nil
}
