// Package report gathers daily database stats and renders them as the HTML
// email body.
package report

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"supaops/internal/config"
)

// Stats is one day's snapshot of the tracked tables.
type Stats struct {
	Date time.Time

	LeadsTotal    int64
	OrgsTotal     int64
	CallsToday    int64
	ApolloCredits int64
	NewLeadsToday int64
	NewOrgsToday  int64
}

// StatsSource is the slice of the Supabase client the builder needs.
type StatsSource interface {
	TotalRows(ctx context.Context, table string) (int64, error)
	CountWhereEq(ctx context.Context, table, column, value string) (int64, error)
	CountSince(ctx context.Context, table, column, value string) (int64, error)
	FirstValue(ctx context.Context, table, column string) (int64, error)
}

type Builder struct {
	src StatsSource
	cfg config.ReportConfig
}

func NewBuilder(src StatsSource, cfg config.ReportConfig) *Builder {
	return &Builder{src: src, cfg: cfg}
}

// Gather queries all stats for the given day. It fails on the first query
// error so a partial report is never sent.
func (b *Builder) Gather(ctx context.Context, now time.Time) (Stats, error) {
	day := now.Format("2006-01-02")
	st := Stats{Date: now}

	var err error
	if st.LeadsTotal, err = b.src.TotalRows(ctx, b.cfg.LeadsTable); err != nil {
		return Stats{}, fmt.Errorf("leads total: %w", err)
	}
	if st.OrgsTotal, err = b.src.TotalRows(ctx, b.cfg.OrgsTable); err != nil {
		return Stats{}, fmt.Errorf("orgs total: %w", err)
	}
	if st.CallsToday, err = b.src.CountWhereEq(ctx, b.cfg.CallsTable, "date", day); err != nil {
		return Stats{}, fmt.Errorf("calls today: %w", err)
	}
	if st.ApolloCredits, err = b.src.FirstValue(ctx, b.cfg.CreditsTable, "total"); err != nil {
		return Stats{}, fmt.Errorf("apollo credits: %w", err)
	}
	if st.NewLeadsToday, err = b.src.CountSince(ctx, b.cfg.LeadsTable, "created_at", day); err != nil {
		return Stats{}, fmt.Errorf("new leads today: %w", err)
	}
	if st.NewOrgsToday, err = b.src.CountSince(ctx, b.cfg.OrgsTable, "created_at", day); err != nil {
		return Stats{}, fmt.Errorf("new orgs today: %w", err)
	}
	return st, nil
}

// Subject returns the email subject line for the given stats.
func Subject(st Stats) string {
	return "Supabase Daily Report - " + st.Date.Format("2006-01-02")
}

var bodyTmpl = template.Must(template.New("daily").Parse(`<html>
  <body>
    <h2>Supabase Daily Report</h2>
    <h3>Database Stats:</h3>
    <ul>
      <li>Total Leads: {{.LeadsTotal}}</li>
      <li>Total Organizations: {{.OrgsTotal}}</li>
      <li>Total Calls Made Today: {{.CallsToday}}</li>
      <li>Total Apollo Credits Saved: {{.ApolloCredits}}</li>
      <li>New Leads Added Today: {{.NewLeadsToday}}</li>
      <li>New Organizations Added Today: {{.NewOrgsToday}}</li>
    </ul>
  </body>
</html>`))

// RenderBody renders the HTML email body.
func RenderBody(st Stats) (string, error) {
	var sb strings.Builder
	if err := bodyTmpl.Execute(&sb, st); err != nil {
		return "", fmt.Errorf("render report body: %w", err)
	}
	return sb.String(), nil
}
