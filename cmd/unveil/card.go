/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"unveil/internal/countdown"
	"unveil/pkg/invite"
)

const cardWidth = 60

func newCardCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "card",
		Short: "Print the invitation card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderCard(cfg.Invitation))
			return nil
		},
	}
}

func center(s string) string {
	return text.AlignCenter.Apply(s, cardWidth)
}

// renderCard lays out the unveiled page: save the date, the schedule and
// the blessings.
func renderCard(inv invite.Invitation) string {
	var b strings.Builder
	line := func(s string) {
		b.WriteString(strings.TrimRight(center(s), " "))
		b.WriteByte('\n')
	}

	if inv.Invocation != "" {
		for _, part := range strings.SplitAfter(inv.Invocation, "।") {
			line(strings.TrimSpace(part))
		}
		b.WriteByte('\n')
	}
	line("~ SAVE THE DATE ~")
	b.WriteByte('\n')
	if inv.Family != "" {
		line(strings.ToUpper(inv.Family))
	}
	if inv.FatherName != "" {
		line("In Loving Memory of")
		line("Late Shri " + inv.FatherName)
	}
	line("welcomes you to the wedding of")
	b.WriteByte('\n')
	line(inv.Groom)
	line("&")
	line(inv.Bride)
	b.WriteByte('\n')
	line("request the honor of your presence")
	line(strings.TrimSpace(inv.DateLine + "   " + inv.Venue))
	b.WriteByte('\n')

	if len(inv.Events) > 0 {
		line("CELEBRATION SCHEDULE")
		rows := make([][]string, 0, len(inv.Events))
		for _, ev := range inv.Events {
			rows = append(rows, []string{strings.TrimSpace(ev.Icon + " " + ev.Name), ev.Date, "Starts at " + ev.Time, ev.Venue})
		}
		b.WriteString(renderTable([]string{"Event", "Date", "Time", "Venue"}, rows))
		b.WriteString("\n\n")
	}

	line("BLESSINGS ONLY")
	if inv.Blessing != "" {
		for _, l := range wrap(`"`+inv.Blessing+`"`, cardWidth-8) {
			line(l)
		}
	}
	line("With Eager Hearts")
	line(inv.Couple())
	if len(inv.Hosts) > 0 {
		b.WriteByte('\n')
		line("Eagerly Awaiting Your Gracious Presence...")
		for _, h := range inv.Hosts {
			line(h)
		}
	}
	b.WriteByte('\n')
	line("CELEBRATE LOVE")
	return strings.TrimRight(b.String(), "\n")
}

// renderCountdown prints the four countdown boxes on one line.
func renderCountdown(st countdown.State) string {
	return fmt.Sprintf("%02d Days  %02d Hours  %02d Mins  %02d Secs", st.Days, st.Hours, st.Minutes, st.Seconds)
}

func wrap(s string, width int) []string {
	words := strings.Fields(s)
	var lines []string
	var cur strings.Builder
	for _, w := range words {
		if cur.Len() > 0 && cur.Len()+1+len(w) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
