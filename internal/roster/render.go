package roster

import (
	"fmt"

	"github.com/Shivanand-hulikatti/activity-signup/internal/model"
)

// Fixed page text.
const (
	EmptyRosterMessage = "No participants yet. Be the first to sign up!"
	SelectPlaceholder  = "-- Select an activity --"
)

// RowKey identifies a roster row and the removal action bound to it.
type RowKey struct {
	Activity    string
	Participant string
}

// Row is one participant line of a card.
type Row struct {
	Key      RowKey
	Initials string
}

// Participant returns the identifier shown on the row.
func (r Row) Participant() string { return r.Key.Participant }

// Card is the rendered form of one activity.
type Card struct {
	Title       string
	Description string
	Schedule    string
	SpotsLeft   int
	Rows        []Row
}

// Availability is the spots-left line, e.g. "7 spots left".
func (c Card) Availability() string {
	return fmt.Sprintf("%d spots left", c.SpotsLeft)
}

// Placeholder returns the empty-roster message, or "" when the card has rows.
func (c Card) Placeholder() string {
	if len(c.Rows) > 0 {
		return ""
	}
	return EmptyRosterMessage
}

// SelectOption is one entry of the activity selector.
type SelectOption struct {
	Value string
	Label string
}

func newRow(activity, participant string) Row {
	return Row{
		Key:      RowKey{Activity: activity, Participant: participant},
		Initials: DeriveInitials(participant),
	}
}

func placeholderOptions() []SelectOption {
	return []SelectOption{{Value: "", Label: SelectPlaceholder}}
}

// Render turns the activity collection into cards and selector options,
// both in collection order. It has no side effects.
func Render(activities model.Activities) ([]Card, []SelectOption) {
	cards := make([]Card, 0, len(activities))
	options := placeholderOptions()
	for i := range activities {
		a := &activities[i]
		card := Card{
			Title:       a.Name,
			Description: a.Description,
			Schedule:    a.Schedule,
			SpotsLeft:   a.SpotsLeft(),
		}
		for _, p := range a.Participants {
			card.Rows = append(card.Rows, newRow(a.Name, p))
		}
		cards = append(cards, card)
		options = append(options, SelectOption{Value: a.Name, Label: a.Name})
	}
	return cards, options
}
