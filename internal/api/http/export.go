package http

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"github.com/jantom38/eduplatform/internal/quiz"
)

// GET /courses/{courseID}/results/export — every scored attempt in the
// course as an XLSX workbook, one row per result.
func ExportCourseResultsHandler(db *sql.DB, store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		if !requireCourseOwner(w, r, db, courseID) {
			return
		}
		results, err := store.ListCourseResults(r.Context(), courseID)
		if err != nil {
			writeErr(w, err)
			return
		}

		f := excelize.NewFile()
		defer func() { _ = f.Close() }()
		sheet := f.GetSheetName(0)

		header := []string{"Quiz", "Student", "Correct", "Total", "Percentage", "Completed at"}
		for i, h := range header {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			_ = f.SetCellValue(sheet, cell, h)
		}
		for i, res := range results {
			row := i + 2
			pct := 0.0
			if res.Total > 0 {
				pct = float64(res.Correct) * 100 / float64(res.Total)
			}
			values := []any{
				res.QuizTitle,
				res.Username,
				res.Correct,
				res.Total,
				fmt.Sprintf("%.1f%%", pct),
				time.Unix(res.CompletedAt, 0).UTC().Format(time.RFC3339),
			}
			for j, v := range values {
				cell, _ := excelize.CoordinatesToCellName(j+1, row)
				_ = f.SetCellValue(sheet, cell, v)
			}
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="course-%s-results.xlsx"`, courseID))
		if err := f.Write(w); err != nil {
			// headers already sent; nothing sensible left to do
			return
		}
	}
}
