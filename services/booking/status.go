package booking

import (
	"strings"

	"servisync/models"
)

// statusTable maps server wire codes to canonical client states. The backend
// has shipped several casings over time; all of them land here.
var statusTable = map[string]models.Status{
	"PENDING":     models.StatusPending,
	"ASSIGNED":    models.StatusAssigned,
	"CONFIRMED":   models.StatusAssigned,
	"IN_PROGRESS": models.StatusInProgress,
	"INPROGRESS":  models.StatusInProgress,
	"COMPLETED":   models.StatusCompleted,
	"CANCELLED":   models.StatusCanceled,
	"CANCELED":    models.StatusCanceled,
}

// MapStatus translates a server status code into the canonical client state.
// Unknown codes pass through verbatim so a new server state degrades to an
// unstyled badge instead of a crash; MapStatus never fails.
func MapStatus(serverCode string) models.Status {
	if s, ok := statusTable[serverCode]; ok {
		return s
	}
	if s, ok := statusTable[strings.ToUpper(serverCode)]; ok {
		return s
	}
	return models.Status(serverCode)
}
