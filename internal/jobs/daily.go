package jobs

import (
	"context"
	"fmt"
	"time"

	"supaops/internal/report"
	"supaops/pkg/logx"
)

// HTMLSender is the slice of the mailer the report job needs.
type HTMLSender interface {
	SendHTML(ctx context.Context, to, subject, htmlBody string) error
}

// DailyReport gathers database stats and emails them as an HTML report.
type DailyReport struct {
	builder   *report.Builder
	sender    HTMLSender
	recipient string
	schedule  string
	log       logx.Logger

	now func() time.Time
}

func NewDailyReport(b *report.Builder, sender HTMLSender, recipient, schedule string, log logx.Logger) *DailyReport {
	return &DailyReport{
		builder:   b,
		sender:    sender,
		recipient: recipient,
		schedule:  schedule,
		log:       log,
		now:       time.Now,
	}
}

func (j *DailyReport) Name() string     { return "daily-report" }
func (j *DailyReport) Schedule() string { return j.schedule }

func (j *DailyReport) Run(ctx context.Context) error {
	now := j.now()
	stats, err := j.builder.Gather(ctx, now)
	if err != nil {
		return fmt.Errorf("daily report: %w", err)
	}
	body, err := report.RenderBody(stats)
	if err != nil {
		return fmt.Errorf("daily report: %w", err)
	}
	if err := j.sender.SendHTML(ctx, j.recipient, report.Subject(stats), body); err != nil {
		return fmt.Errorf("daily report: %w", err)
	}
	j.log.Info("daily report sent",
		logx.String("to", j.recipient),
		logx.Int64("leads_total", stats.LeadsTotal),
		logx.Int64("orgs_total", stats.OrgsTotal),
		logx.Int64("calls_today", stats.CallsToday),
		logx.Int64("new_leads_today", stats.NewLeadsToday),
		logx.Int64("new_orgs_today", stats.NewOrgsToday))
	return nil
}
