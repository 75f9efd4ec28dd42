/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package invite carries the static invitation content shown once the
// gate is opened.
package invite

// Event is one ceremony on the celebration schedule.
type Event struct {
	Name  string `toml:"name" json:"name"`
	Date  string `toml:"date" json:"date"`
	Time  string `toml:"time" json:"time"`
	Venue string `toml:"venue" json:"venue"`
	Icon  string `toml:"icon" json:"icon"`
}

// Invitation is the text content of the card.
type Invitation struct {
	Groom      string   `toml:"groom" json:"groom"`
	Bride      string   `toml:"bride" json:"bride"`
	Family     string   `toml:"family" json:"family"`
	FatherName string   `toml:"father_name" json:"father_name"`
	DateLine   string   `toml:"date_line" json:"date_line"`
	Venue      string   `toml:"venue" json:"venue"`
	Invocation string   `toml:"invocation" json:"invocation"`
	Blessing   string   `toml:"blessing" json:"blessing"`
	Hosts      []string `toml:"hosts" json:"hosts"`
	Events     []Event  `toml:"events" json:"events"`
}

// Default returns the invitation for Rishu and Shruti.
func Default() Invitation {
	return Invitation{
		Groom:      "Rishu",
		Bride:      "Shruti",
		Family:     "Anurag family",
		FatherName: "Ramesh Gupta",
		DateLine:   "07 . 03 . 2026",
		Venue:      "Sasaram",
		Invocation: "वक्रतुण्ड महाकाय सूर्यकोटि समप्रभः। निर्विघ्नं कुरु मे देव सर्वकार्येषु सर्वदा ॥",
		Blessing: "Your presence at our celebration is the most precious gift we could receive. " +
			"Join us as we start our new chapter with your love and blessings.",
		Hosts: []string{"Anju Gupta", "Harshit Anurag", "Ujjwal Anurag"},
		Events: []Event{
			{Name: "Haldi", Time: "11:00 AM", Date: "March 5th", Icon: "✨", Venue: "Chanwar Takiya"},
			{Name: "Mehendi & Sangeet", Time: "08:00 PM", Date: "March 6th", Icon: "🎶", Venue: "Chanwar Takiya"},
			{Name: "Wedding Ceremony", Time: "07:00 PM", Date: "March 7th", Icon: "💍", Venue: "Moments Resort"},
		},
	}
}

// Couple renders the names the way the blessing section signs them.
func (inv Invitation) Couple() string {
	return inv.Bride + " ♡ " + inv.Groom
}
