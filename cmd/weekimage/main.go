// Renders a sample week calendar to week.png for eyeballing layout changes
// without a running server.
package main

import (
	"log"
	"os"
	"time"

	"github.com/deveshsoni7/SlotSwapper/internal/model"
	"github.com/deveshsoni7/SlotSwapper/internal/render"
)

func main() {
	now := time.Now()
	day := func(d, h, m int) time.Time {
		return time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location()).AddDate(0, 0, d)
	}

	slots := []*model.Slot{
		{ID: 1, Title: "Standup", StartTime: day(0, 9, 0), EndTime: day(0, 9, 30), Status: model.SlotStatusBusy},
		{ID: 2, Title: "On-call", StartTime: day(1, 14, 0), EndTime: day(1, 18, 0), Status: model.SlotStatusOfferable},
		{ID: 3, Title: "Review", StartTime: day(2, 10, 0), EndTime: day(2, 12, 0), Status: model.SlotStatusReserved},
		{ID: 4, Title: "Support shift", StartTime: day(3, 8, 0), EndTime: day(3, 16, 0), Status: model.SlotStatusOfferable},
	}

	png, err := render.WeekImage(slots, now)
	if err != nil {
		log.Fatalf("render week image: %v", err)
	}

	if err := os.WriteFile("week.png", png, 0o644); err != nil {
		log.Fatalf("write week.png: %v", err)
	}

	log.Println("wrote week.png")
}
