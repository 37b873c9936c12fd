package calendar

import (
	"time"

	ics "github.com/arran4/golang-ical"
)

const icsProductID = "-//calbot//calendar export//EN"

// EncodeICS renders events as an iCalendar document. stamp is used as DTSTAMP
// for every event.
func EncodeICS(events []Event, stamp time.Time) []byte {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)

	for _, e := range events {
		ve := cal.AddEvent(e.ID)
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(e.Start)
		ve.SetEndAt(e.End)
		ve.SetSummary(e.Title)
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
	}

	return []byte(cal.Serialize())
}
