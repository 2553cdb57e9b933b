package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

// WriteLintResponse renders a finished lint run in the format the route
// selected: the JSON body, the raw tool output as plain text, or a
// SARIF 2.1.0 log.
func WriteLintResponse(w http.ResponseWriter, resp *models.LintResponse) error {
	switch resp.Format {
	case models.FormatText:
		return writeTextResult(w, resp)
	case models.FormatSARIF:
		return writeSARIFResult(w, resp)
	default:
		return WriteJSON(w, http.StatusOK, resp)
	}
}

func writeTextResult(w http.ResponseWriter, resp *models.LintResponse) error {
	var b strings.Builder
	if resp.Result != nil {
		b.WriteString(resp.Result.Stdout)
		if resp.Result.Stderr != "" {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteString("\n")
			}
			b.WriteString(resp.Result.Stderr)
		}
	}
	if b.Len() == 0 {
		if resp.Success {
			b.WriteString("no issues found\n")
		} else {
			b.WriteString("lint failed\n")
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Exit-Code", strconv.Itoa(resp.ExitCode))
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte(b.String()))
	return err
}

func writeSARIFResult(w http.ResponseWriter, resp *models.LintResponse) error {
	log := models.ToSARIF(resp.Linter, "", resp.Issues)
	w.Header().Set("Content-Type", "application/sarif+json")
	w.WriteHeader(http.StatusOK)
	return json.NewEncoder(w).Encode(log)
}
