package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/gosimple/slug"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type ItineraryData struct {
	Title       string
	Description string
	OwnerName   string
	DateRange   string
	Status      string
	GeneratedAt string

	Participants []ParticipantLine
	Waypoints    []WaypointLine

	ComparisonNotes string

	// MapImage is an optional PNG rendered by the static map provider.
	// When empty but waypoints exist, a placeholder line is rendered.
	MapImage []byte
}

type ParticipantLine struct {
	Name    string
	Email   string
	Role    string
	CanEdit bool
}

type WaypointLine struct {
	Name             string
	Category         string
	Address          string
	PlannedArrival   string
	PlannedDeparture string
	ActualArrival    string
	ActualDeparture  string
	Notes            string
}

// Filename returns a download name derived from the trip title,
// e.g. "Balaton Loop 2026" -> "balaton-loop-2026.pdf".
func Filename(title string) string {
	s := slug.Make(title)
	if s == "" {
		s = "trip"
	}
	return s + ".pdf"
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateItinerary(ctx context.Context, data ItineraryData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, data.Title, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(22,
		col.New(6).Add(
			text.New("Dates: "+data.DateRange, props.Text{Top: 0}),
			text.New("Status: "+data.Status, props.Text{Top: 4}),
			text.New("Organized by: "+data.OwnerName, props.Text{Top: 8}),
			text.New("Exported: "+data.GeneratedAt, props.Text{Top: 12, Size: 8}),
		),
		col.New(6),
	)

	if data.Description != "" {
		m.AddRow(16,
			text.NewCol(12, data.Description, props.Text{Size: 9}),
		)
	}

	if len(data.MapImage) > 0 {
		m.AddRow(70,
			image.NewFromBytesCol(12, data.MapImage, extension.Png, props.Rect{
				Center:  true,
				Percent: 90,
			}),
		)
	} else if len(data.Waypoints) > 0 {
		m.AddRow(8,
			text.NewCol(12, "Map unavailable", props.Text{Size: 8, Style: fontstyle.Italic}),
		)
	}

	m.AddRow(10,
		text.NewCol(12, "Participants", props.Text{Size: 12, Style: fontstyle.Bold, Top: 2}),
	)
	m.AddRow(8,
		text.NewCol(5, "Name", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Email", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Role", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Edit", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, participant := range data.Participants {
		canEdit := "no"
		if participant.CanEdit {
			canEdit = "yes"
		}
		m.AddRow(7,
			text.NewCol(5, participant.Name, props.Text{Size: 9}),
			text.NewCol(4, participant.Email, props.Text{Size: 9}),
			text.NewCol(2, participant.Role, props.Text{Size: 9}),
			text.NewCol(1, canEdit, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		text.NewCol(12, "Waypoints", props.Text{Size: 12, Style: fontstyle.Bold, Top: 2}),
	)
	m.AddRow(8,
		text.NewCol(4, "Name", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Category", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Planned arrival", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Planned departure", props.Text{Style: fontstyle.Bold, Size: 9}),
	)
	for _, waypoint := range data.Waypoints {
		m.AddRow(7,
			text.NewCol(4, waypoint.Name, props.Text{Size: 9}),
			text.NewCol(2, waypoint.Category, props.Text{Size: 9}),
			text.NewCol(3, waypoint.PlannedArrival, props.Text{Size: 9}),
			text.NewCol(3, waypoint.PlannedDeparture, props.Text{Size: 9}),
		)
		if waypoint.Address != "" {
			m.AddRow(6,
				col.New(1),
				text.NewCol(11, waypoint.Address, props.Text{Size: 8}),
			)
		}
		if waypoint.Notes != "" {
			m.AddRow(6,
				col.New(1),
				text.NewCol(11, waypoint.Notes, props.Text{Size: 8}),
			)
		}
	}

	if data.ComparisonNotes != "" {
		m.AddRow(10,
			text.NewCol(12, "Planned vs. actual", props.Text{Size: 12, Style: fontstyle.Bold, Top: 2}),
		)
		m.AddRow(40,
			text.NewCol(12, data.ComparisonNotes, props.Text{Size: 8}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
