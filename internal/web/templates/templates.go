// Package templates renders the HTML pages of the ingestion service as
// templ components.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/edupath-ingest/internal/core"
)

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}
table{border-collapse:collapse}td,th{padding:.25rem .75rem;text-align:left;border-bottom:1px solid #e5e7eb}
.status{font-weight:600}.COMPLETED{color:#047857}.PARTIALLY_COMPLETED{color:#b45309}.FAILED{color:#b91c1c}
.alert{border:1px solid #fca5a5;background:#fef2f2;padding:1rem}`

// RunPage renders the status of a single run.
func RunPage(run core.Run) templ.Component {
	return layout(fmt.Sprintf("Run %d", run.ID), templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		total, ok, failed := run.Counts()
		rows := [][2]string{
			{"File", run.FileName},
			{"File type", run.FileType},
			{"Entity type", run.EntityType},
			{"Triggered by", run.TriggeredBy},
			{"Created", run.CreatedAt.Format(time.RFC3339)},
			{"Updated", run.UpdatedAt.Format(time.RFC3339)},
		}
		if run.TotalRecords != nil {
			rows = append(rows,
				[2]string{"Total records", strconv.Itoa(total)},
				[2]string{"Successful", strconv.Itoa(ok)},
				[2]string{"Failed", strconv.Itoa(failed)},
			)
		}

		if err := write(w,
			`<p>Status: <span class="status `, templ.EscapeString(string(run.Status)), `">`,
			templ.EscapeString(string(run.Status)), `</span></p><table>`,
		); err != nil {
			return err
		}
		for _, row := range rows {
			if err := write(w, `<tr><th>`, templ.EscapeString(row[0]), `</th><td>`, templ.EscapeString(row[1]), `</td></tr>`); err != nil {
				return err
			}
		}
		if err := write(w, `</table>`); err != nil {
			return err
		}

		if run.ErrorMessage != "" {
			if err := write(w, `<p class="alert">`, templ.EscapeString(run.ErrorMessage), `</p>`); err != nil {
				return err
			}
		}
		if len(run.RowErrors) > 0 {
			if err := write(w, `<h2>Row errors</h2><ul>`); err != nil {
				return err
			}
			for _, msg := range run.RowErrors {
				if err := write(w, `<li>`, templ.EscapeString(msg), `</li>`); err != nil {
					return err
				}
			}
			if err := write(w, `</ul>`); err != nil {
				return err
			}
		}
		if !run.Status.Terminal() {
			return write(w, `<p>Processing. Reload the page for progress.</p>`)
		}
		return nil
	}))
}

// ErrorPage renders a coded user-facing error.
func ErrorPage(message, action, code string) templ.Component {
	return layout("Error", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return write(w,
			`<div class="alert"><p>`, templ.EscapeString(message), `</p>`,
			`<p>`, templ.EscapeString(action), `</p>`,
			`<p><small>Code: `, templ.EscapeString(code), `</small></p></div>`,
		)
	}))
}

func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`,
			templ.EscapeString(title), `</title><style>`, pageStyle, `</style></head><body><h1>`,
			templ.EscapeString(title), `</h1>`,
		); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		return write(w, `</body></html>`)
	})
}

func write(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}
