// Package render draws a user's week of slots as a PNG calendar.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/deveshsoni7/SlotSwapper/internal/model"
)

const (
	imageWidth      = 1120
	imageHeight     = 760
	headerHeight    = 60
	leftLabelsWidth = 56
	totalDays       = 7
	minHour         = 6
	maxHour         = 23
	slotPaddingX    = 4.0
	slotRadius      = 4.0
	minSlotHeight   = 6.0
)

var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 220}
	hourLabelColor = color.RGBA{110, 115, 120, 200}
	hourLineColor  = color.RGBA{210, 212, 215, 255}
	todayBgColor   = color.RGBA{255, 99, 71, 40}

	slotBusyColor      = color.RGBA{158, 163, 168, 230}
	slotOfferableColor = color.RGBA{133, 193, 85, 230}
	slotReservedColor  = color.RGBA{255, 196, 84, 235}
	slotTextColor      = color.RGBA{20, 24, 28, 230}
)

func statusColor(status model.SlotStatus) color.RGBA {
	switch status {
	case model.SlotStatusOfferable:
		return slotOfferableColor
	case model.SlotStatusReserved:
		return slotReservedColor
	default:
		return slotBusyColor
	}
}

// weekStart returns midnight of the Monday of now's week.
func weekStart(now time.Time) time.Time {
	day := int(now.Weekday())
	if day == 0 {
		day = 7 // Sunday closes the week
	}
	monday := now.AddDate(0, 0, 1-day)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, now.Location())
}

// WeekImage renders the slots that fall into now's week. Slots outside the
// visible hour range are clamped, multi-day slots are drawn per day.
func WeekImage(slots []*model.Slot, now time.Time) ([]byte, error) {
	start := weekStart(now)
	end := start.AddDate(0, 0, totalDays)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(bgColor)
	dc.Clear()

	dayWidth := float64(imageWidth-leftLabelsWidth) / totalDays
	gridHeight := float64(imageHeight - headerHeight)
	hourHeight := gridHeight / float64(maxHour-minHour+1)

	// Day columns, today highlighted
	for d := 0; d < totalDays; d++ {
		x := float64(leftLabelsWidth) + float64(d)*dayWidth
		day := start.AddDate(0, 0, d)

		if day.Year() == now.Year() && day.YearDay() == now.YearDay() {
			dc.SetColor(todayBgColor)
			dc.DrawRectangle(x, headerHeight, dayWidth, gridHeight)
			dc.Fill()
		}

		dc.SetColor(textColor)
		label := fmt.Sprintf("%s %02d.%02d", day.Weekday().String()[:3], day.Day(), int(day.Month()))
		dc.DrawStringAnchored(label, x+dayWidth/2, headerHeight/2, 0.5, 0.5)
	}

	// Hour lines and labels
	for h := minHour; h <= maxHour; h++ {
		y := float64(headerHeight) + float64(h-minHour)*hourHeight
		dc.SetColor(hourLineColor)
		dc.DrawLine(leftLabelsWidth, y, imageWidth, y)
		dc.Stroke()
		dc.SetColor(hourLabelColor)
		dc.DrawStringAnchored(fmt.Sprintf("%02d:00", h), leftLabelsWidth/2, y+hourHeight/2, 0.5, 0.5)
	}

	// Slots
	for _, slot := range slots {
		if !slot.EndTime.After(start) || !slot.StartTime.Before(end) {
			continue
		}
		drawSlot(dc, slot, start, dayWidth, hourHeight)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode week image: %w", err)
	}
	return buf.Bytes(), nil
}

func drawSlot(dc *gg.Context, slot *model.Slot, start time.Time, dayWidth, hourHeight float64) {
	for d := 0; d < totalDays; d++ {
		dayStart := start.AddDate(0, 0, d)
		dayEnd := dayStart.AddDate(0, 0, 1)

		from := slot.StartTime
		if from.Before(dayStart) {
			from = dayStart
		}
		to := slot.EndTime
		if to.After(dayEnd) {
			to = dayEnd
		}
		if !from.Before(to) {
			continue
		}

		fromHour := clampHour(float64(from.Hour()) + float64(from.Minute())/60)
		toHour := clampHour(float64(to.Hour()) + float64(to.Minute())/60)
		if to.Equal(dayEnd) {
			toHour = maxHour + 1
		}
		if toHour <= fromHour {
			continue
		}

		x := float64(leftLabelsWidth) + float64(d)*dayWidth + slotPaddingX
		y := float64(headerHeight) + (fromHour-minHour)*hourHeight
		h := (toHour - fromHour) * hourHeight
		if h < minSlotHeight {
			h = minSlotHeight
		}

		dc.SetColor(statusColor(slot.Status))
		dc.DrawRoundedRectangle(x, y, dayWidth-2*slotPaddingX, h, slotRadius)
		dc.Fill()

		if h >= 14 {
			dc.SetColor(slotTextColor)
			label := fmt.Sprintf("%s %s-%s", slot.Title, from.Format("15:04"), to.Format("15:04"))
			dc.DrawStringAnchored(label, x+(dayWidth-2*slotPaddingX)/2, y+h/2, 0.5, 0.5)
		}
	}
}

func clampHour(h float64) float64 {
	if h < minHour {
		return minHour
	}
	if h > maxHour+1 {
		return maxHour + 1
	}
	return h
}
