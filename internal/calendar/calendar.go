// Package calendar exports contact birthdays and anniversaries as an
// iCalendar feed with one yearly recurring event per contact.
package calendar

import (
	"bytes"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"cardbook/internal/card"
	"cardbook/internal/common/errors"
	"cardbook/internal/contact"
)

const productID = "-//cardbook//birthday calendar//EN"

// Birthdays builds a calendar with one yearly event per contact that has a
// birthday date. Free-text birthdays cannot be scheduled and are skipped.
func Birthdays(contacts []*contact.Contact) *ical.Calendar {
	return build(contacts, "birthday", func(c *card.Card) card.Date {
		return c.Birthday()
	})
}

// Anniversaries builds a calendar with one yearly event per contact that
// has an anniversary date.
func Anniversaries(contacts []*contact.Contact) *ical.Calendar {
	return build(contacts, "anniversary", func(c *card.Card) card.Date {
		return c.Anniversary()
	})
}

func build(contacts []*contact.Contact, kind string, date func(*card.Card) card.Date) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	now := time.Now().UTC()
	for _, ct := range contacts {
		d := date(ct.Card)
		if d.IsZero() || d.Text != "" {
			continue
		}
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, ct.UID()+"-"+kind)
		event.Props.SetDateTime(ical.PropDateTimeStamp, now)
		event.Props.SetText(ical.PropSummary,
			strings.ToUpper(kind[:1])+kind[1:]+" of "+ct.Card.FormattedName())

		start := ical.NewProp(ical.PropDateTimeStart)
		start.SetValueType(ical.ValueDate)
		start.Value = d.Time.Format("20060102")
		event.Props.Set(start)

		rule := ical.NewProp(ical.PropRecurrenceRule)
		rule.Value = "FREQ=YEARLY"
		event.Props.Set(rule)

		cal.Children = append(cal.Children, event.Component)
	}
	return cal
}

// Encode serializes the calendar.
func Encode(cal *ical.Calendar) ([]byte, error) {
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, errors.InternalError("failed to serialize calendar", err)
	}
	return buf.Bytes(), nil
}
