package booking

import (
	"time"

	"servisync/models"
)

const (
	placeholderImage = "https://cdn.servisync.app/images/technician-placeholder.png"
	unknownCategory  = "Unknown Category"
	unknownService   = "Unknown Service"
)

// Display formats for the derived date/time strings.
const (
	displayDateFormat = "2 January 2006"
	displayTimeFormat = "3:04 PM"
)

// Normalize turns a raw server record into the canonical Booking. Partial
// records are expected: missing technician, review or category never fail,
// they get safe defaults instead. The date/time display strings are derived
// from scheduledAt in the given location, deterministically.
func Normalize(raw models.RawBooking, loc *time.Location) models.Booking {
	if loc == nil {
		loc = time.Local
	}
	local := raw.ScheduledAt.In(loc)

	b := models.Booking{
		ID:             raw.ID,
		Status:         MapStatus(raw.Status),
		ScheduledAt:    raw.ScheduledAt,
		Date:           local.Format(displayDateFormat),
		Time:           local.Format(displayTimeFormat),
		ServiceName:    unknownService,
		CategoryName:   unknownCategory,
		Price:          raw.Price,
		SecurityPin:    raw.SecurityPin,
		Notes:          raw.Notes,
		Location:       raw.Location,
		ReferenceImage: raw.ReferenceImage,
	}

	if raw.Service != nil {
		if raw.Service.Name != "" {
			b.ServiceName = raw.Service.Name
		}
		if raw.Service.Category != nil && raw.Service.Category.Name != "" {
			b.CategoryName = raw.Service.Category.Name
		}
	}

	if raw.Technician != nil {
		image := raw.Technician.Image
		if image == "" {
			image = placeholderImage
		}
		b.Technician = &models.Technician{
			ID:    raw.Technician.ID,
			Name:  raw.Technician.Name,
			Phone: raw.Technician.Phone,
			Image: image,
		}
	}

	if raw.Review != nil {
		b.Review = &models.Review{
			ID:               raw.Review.ID,
			Rating:           raw.Review.Rating,
			TechnicianRating: raw.Review.TechnicianRating,
			Comment:          raw.Review.Review,
		}
	}

	return b
}
