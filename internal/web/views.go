package web

import (
	"github.com/a-h/templ"

	"github.com/JonMunkholm/florasheet/internal/core"
	"github.com/JonMunkholm/florasheet/internal/web/templates"
)

// auditPage renders a run as a standalone HTML page. Only cleaned records
// that reached the result are listed, so a failed run shows none.
func auditPage(run *core.Run) templ.Component {
	species := make([]core.Species, 0, len(run.Result.CleanedData))
	for _, rec := range run.Result.CleanedData {
		species = append(species, rec.Values.Species())
	}

	return templates.AuditPage(templates.AuditPageParams{
		RunID:     run.ID,
		InputFile: run.InputFile,
		Status:    run.Result.Status,
		Errors:    run.Result.Errors,
		Species:   species,
		Report:    string(run.Report),
	})
}

// errorAlert renders a coded user message as an HTML fragment.
func errorAlert(msg core.UserMessage) templ.Component {
	return templates.ErrorAlert(msg.Message, msg.Action, msg.Code)
}
