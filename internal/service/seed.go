package service

import "github.com/Shivanand-hulikatti/activity-signup/internal/model"

// DefaultActivities is the school's starting catalog.
func DefaultActivities() model.Activities {
	return model.Activities{
		{
			Name:            "Chess Club",
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		{
			Name:            "Programming Class",
			Description:     "Learn programming fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
		},
		{
			Name:            "Gym Class",
			Description:     "Physical education and sports activities",
			Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
			MaxParticipants: 30,
			Participants:    []string{"john@mergington.edu", "olivia@mergington.edu"},
		},
		{
			Name:            "Soccer Team",
			Description:     "Competitive soccer practices and matches against other schools",
			Schedule:        "Mondays, Wednesdays, 4:00 PM - 6:00 PM",
			MaxParticipants: 22,
			Participants:    []string{"liam@mergington.edu", "noah@mergington.edu"},
		},
		{
			Name:            "Basketball Club",
			Description:     "Pickup games, drills, and intramural tournaments",
			Schedule:        "Tuesdays and Thursdays, 5:00 PM - 7:00 PM",
			MaxParticipants: 18,
			Participants:    []string{"ava@mergington.edu", "isabella@mergington.edu"},
		},
		{
			Name:            "Art Club",
			Description:     "Explore drawing, painting, and mixed media projects",
			Schedule:        "Wednesdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 16,
			Participants:    []string{"mia@mergington.edu", "charlotte@mergington.edu"},
		},
		{
			Name:            "Drama Club",
			Description:     "Acting workshops, play production, and stagecraft",
			Schedule:        "Fridays, 4:00 PM - 6:30 PM",
			MaxParticipants: 25,
			Participants:    []string{"amelia@mergington.edu", "harper@mergington.edu"},
		},
		{
			Name:            "Science Club",
			Description:     "Hands-on experiments, guest lectures, and science fairs",
			Schedule:        "Thursdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 20,
			Participants:    []string{"ethan@mergington.edu", "lucas@mergington.edu"},
		},
		{
			Name:            "Debate Team",
			Description:     "Practice persuasive speaking, research, and competitive debates",
			Schedule:        "Mondays, 3:30 PM - 5:00 PM",
			MaxParticipants: 14,
			Participants:    []string{"sophomore1@mergington.edu", "junior1@mergington.edu"},
		},
	}
}
