package site

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/okian/diamond/internal/domain/model"
	"github.com/okian/diamond/internal/domain/scoring"
	"github.com/okian/diamond/internal/domain/types"
	"golang.org/x/text/message"
)

const styles = `body{font-family:system-ui,sans-serif;margin:0;background:#f8fafc;color:#0f172a}
header{background:#0f172a;color:#fff;padding:12px 24px;display:flex;gap:24px;align-items:center}
header a{color:#cbd5e1;text-decoration:none}header a:hover{color:#fff}
main{padding:24px}table{border-collapse:collapse;width:100%}
th,td{padding:6px 10px;border:1px solid #e2e8f0;text-align:center}
th a{color:inherit;text-decoration:none}td.name{text-align:left}
td.cell{color:#fff;font-weight:600}.legend span{display:inline-block;padding:2px 8px;margin-right:4px;color:#fff;border-radius:4px}
.feed li{list-style:none;border-bottom:1px solid #e2e8f0;padding:8px 0}
.badge{background:#1e293b;color:#fff;border-radius:4px;padding:1px 6px;font-size:12px;margin:0 6px}
.notes{color:#475569;font-style:italic}.muted{color:#64748b}`

// writer accumulates the first write error so components read linearly.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err == nil {
		_, w.err = io.WriteString(w.w, s)
	}
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) rawf(format string, args ...any) {
	w.raw(fmt.Sprintf(format, args...))
}

func (w *writer) child(ctx context.Context, c templ.Component) {
	if w.err == nil {
		w.err = c.Render(ctx, w.w)
	}
}

func layout(team, title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8"><title>`)
		w.text(title + " | " + team)
		w.raw(`</title><style>` + styles + `</style></head><body><header><strong>`)
		w.text(team)
		w.raw(`</strong><a href="/">Heatmap</a><a href="/recent">Recent</a>` +
			`<a href="/charts/heatmap">Chart</a><a href="/api-docs">API</a></header><main><h1>`)
		w.text(title)
		w.raw(`</h1>`)
		w.child(ctx, body)
		w.raw(`</main></body></html>`)
		return w.err
	})
}

func legend(w *writer) {
	w.raw(`<p class="legend">`)
	for _, b := range scoring.Buckets() {
		w.rawf(`<span style="background:%s">`, b.Color())
		w.text(b.String())
		w.raw(`</span>`)
	}
	w.rawf(`<span style="background:%s">no data</span></p>`, scoring.Missing.Color())
}

func heatmapPage(h types.Heatmap, p *message.Printer) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		w := &writer{w: out}
		legend(w)
		if len(h.Rows) == 0 {
			w.raw(`<p class="muted">No evaluations yet.</p>`)
			return w.err
		}
		w.raw(`<table><thead><tr>`)
		for _, f := range scoring.Fields() {
			w.rawf(`<th><a href="%s">`, templ.EscapeString(sortHref(&h, f)))
			w.text(columnTitles[f] + sortIndicator(&h, f))
			w.raw(`</a></th>`)
		}
		w.raw(`</tr></thead><tbody>`)
		for i := range h.Rows {
			row := &h.Rows[i]
			w.rawf(`<tr><td class="name"><a href="%s">`, templ.EscapeString(playerHref(row.Name)))
			w.text(row.Name)
			w.raw(`</a></td>`)
			for _, f := range scoring.Fields()[1:] {
				c := cellFor(row, f)
				w.rawf(`<td class="cell" style="background:%s" title="%s">`, c.Color, c.Bucket)
				w.text(cellText(p, row, f))
				w.raw(`</td>`)
			}
			w.raw(`</tr>`)
		}
		w.raw(`</tbody></table>`)
		w.rawf(`<p class="muted">%s</p>`, templ.EscapeString(p.Sprintf("%d players", len(h.Rows))))
		return w.err
	})
}

func evaluationItem(w *writer, p *message.Printer, ev *model.Evaluation, withPlayer bool) {
	w.raw(`<li>`)
	if withPlayer {
		w.rawf(`<a href="%s"><strong>`, templ.EscapeString(playerHref(ev.PlayerName)))
		w.text(ev.PlayerName)
		w.raw(`</strong></a>`)
	}
	w.raw(`<span class="badge">`)
	w.text(typeBadge(ev.Type))
	w.raw(`</span><span class="muted">by `)
	w.text(ev.EvaluatorName)
	w.raw(`</span> <strong>`)
	w.text(formatAverage(p, ev.AverageScore))
	w.raw(`</strong>`)
	if ev.HasVelocity() {
		w.raw(` <span>`)
		w.text(p.Sprintf("%.0f MPH", ev.Velocity))
		w.raw(`</span>`)
	}
	w.raw(`<br><span class="muted">`)
	ratings := make([]string, 0, len(ev.Ratings))
	for _, r := range ev.Ratings {
		ratings = append(ratings, ratingText(p, r))
	}
	w.text(strings.Join(ratings, " · "))
	w.raw(`</span>`)
	if ev.Notes != "" {
		w.raw(`<br><span class="notes">`)
		w.text(ev.Notes)
		w.raw(`</span>`)
	}
	w.raw(`<br><small class="muted">`)
	w.text(formatTime(ev.CreatedAt))
	w.raw(`</small></li>`)
}

func recentPage(evals []model.Evaluation, p *message.Printer) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		w := &writer{w: out}
		if len(evals) == 0 {
			w.raw(`<p class="muted">No evaluations yet.</p>`)
			return w.err
		}
		w.raw(`<ul class="feed">`)
		for i := range evals {
			evaluationItem(w, p, &evals[i], true)
		}
		w.raw(`</ul>`)
		return w.err
	})
}

func playerPage(profile types.Profile, p *message.Printer) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		w := &writer{w: out}
		row := &profile.Row
		w.raw(`<table><thead><tr><th>Category</th><th>Score</th></tr></thead><tbody>`)
		for _, f := range scoring.Fields()[1:] {
			c := cellFor(row, f)
			w.raw(`<tr><td class="name">`)
			w.text(columnTitles[f])
			w.rawf(`</td><td class="cell" style="background:%s">`, c.Color)
			w.text(cellText(p, row, f))
			w.raw(`</td></tr>`)
		}
		w.raw(`</tbody></table>`)
		w.rawf(`<p class="muted">%s</p><h2>History</h2>`,
			templ.EscapeString(p.Sprintf("%d of %d categories evaluated", profile.Summary.Evaluated(), len(model.Types()))))
		w.rawf(`<p class="muted">%s</p><ul class="feed">`,
			templ.EscapeString(p.Sprintf("%d evaluations", len(profile.Summary.Evaluations))))
		for i := range profile.Summary.Evaluations {
			evaluationItem(w, p, &profile.Summary.Evaluations[i], false)
		}
		w.raw(`</ul>`)
		return w.err
	})
}

func errorPage(status int, err error) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<p class="muted">`)
		if status == http.StatusNotFound && err != nil {
			w.text(err.Error())
		} else {
			w.text("Something went wrong. Try again shortly.")
		}
		w.raw(`</p><p><a href="/">Back to the heatmap</a></p>`)
		return w.err
	})
}
