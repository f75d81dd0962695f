package server

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tripline/tripline/internal/providers/pdf"
	"github.com/tripline/tripline/internal/providers/staticmap"
	tripdomain "github.com/tripline/tripline/internal/trip/domain"
	waypointdomain "github.com/tripline/tripline/internal/waypoint/domain"
)

const exportTimeLayout = "2006.01.02 15:04"

// ExportTrip renders the itinerary as a downloadable PDF. The static map is
// best effort; a missing image never fails the export.
func (s *Server) ExportTrip(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	tripID, ok := pathID(c, "id")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	ctx := c.Request.Context()

	trip, err := s.tripSvc.Get(ctx, userID, tripID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	participants, err := s.tripSvc.ListParticipants(ctx, userID, tripID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	waypoints, err := s.waypointSvc.List(ctx, userID, tripID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	owner, err := s.authsvc.GetUser(ctx, trip.OwnerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data := pdf.ItineraryData{
		Title:           trip.Title,
		Description:     trip.Description,
		OwnerName:       owner.DisplayName,
		DateRange:       trip.StartDate.Format("2006.01.02") + " - " + trip.EndDate.Format("2006.01.02"),
		Status:          tripStatusLabel(trip.Status),
		GeneratedAt:     s.clock.Now().Format(exportTimeLayout),
		ComparisonNotes: trip.ComparisonNotes,
	}

	for _, participant := range participants {
		line := pdf.ParticipantLine{
			Role:    roleLabel(participant.Role),
			CanEdit: participant.CanEdit,
		}
		if user, err := s.authsvc.GetUser(ctx, participant.UserID); err == nil {
			line.Name = user.DisplayName
			line.Email = user.Email
		}
		data.Participants = append(data.Participants, line)
	}

	points := make([]staticmap.Point, 0, len(waypoints))
	for _, waypoint := range waypoints {
		data.Waypoints = append(data.Waypoints, pdf.WaypointLine{
			Name:             waypoint.Name,
			Category:         categoryLabel(waypoint.Category),
			Address:          waypoint.Address,
			PlannedArrival:   formatOptional(waypoint.PlannedArrival),
			PlannedDeparture: formatOptional(waypoint.PlannedDeparture),
			ActualArrival:    formatOptional(waypoint.ActualArrival),
			ActualDeparture:  formatOptional(waypoint.ActualDeparture),
			Notes:            waypoint.Notes,
		})
		points = append(points, staticmap.Point{
			Latitude:  waypoint.Latitude,
			Longitude: waypoint.Longitude,
		})
	}

	data.MapImage = s.staticMap.Fetch(ctx, points)

	reader, err := s.pdfProvider.GenerateItinerary(ctx, data)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordPDFExport(ctx)

	c.Header("Content-Disposition", `attachment; filename="`+pdf.Filename(trip.Title)+`"`)
	c.Data(http.StatusOK, "application/pdf", body)
}

func tripStatusLabel(status tripdomain.Status) string {
	switch status {
	case tripdomain.StatusPlanning:
		return "Planning"
	case tripdomain.StatusOrganization:
		return "Organization"
	case tripdomain.StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

func roleLabel(role tripdomain.Role) string {
	switch role {
	case tripdomain.RoleOwner:
		return "Owner"
	case tripdomain.RoleOrganizer:
		return "Organizer"
	case tripdomain.RoleMember:
		return "Member"
	default:
		return "Unknown"
	}
}

func categoryLabel(category waypointdomain.Category) string {
	switch category {
	case waypointdomain.CategoryRestaurant:
		return "Restaurant"
	case waypointdomain.CategoryAccommodation:
		return "Accommodation"
	case waypointdomain.CategoryAttraction:
		return "Attraction"
	case waypointdomain.CategoryGasStation:
		return "Gas station"
	case waypointdomain.CategoryParking:
		return "Parking"
	case waypointdomain.CategoryOther:
		return "Other"
	default:
		return "Unknown"
	}
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(exportTimeLayout)
}
