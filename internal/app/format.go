package app

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/k1bu/FORBETRA-sub000/internal/domain/alert"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/analytics"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/checkin"
)

var severityIcon = map[alert.Severity]string{
	alert.SeverityHigh:   "🔴",
	alert.SeverityMedium: "🟠",
	alert.SeverityLow:    "🟡",
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d", *v)
}

func formatSigned(v *int) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+d", *v)
}

func formatRatio(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.0f%%", *v*100)
}

func formatTrend(t *analytics.Trend) string {
	if t == nil {
		return "n/a"
	}
	return string(*t)
}

// FormatClientLine renders one compact digest entry.
func FormatClientLine(r *ClientReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (week %d): streak %d, best %d, stability %s, trajectory %s, alignment %s",
		r.ClientName, r.Week, r.Streak.CurrentStreak, r.Streak.BestStreak,
		formatOptionalInt(r.Analytics.StabilityScore),
		formatSigned(r.Analytics.TrajectoryScore),
		formatRatio(r.Analytics.AlignmentRatio))
	for _, a := range r.Alerts {
		fmt.Fprintf(&b, "\n  %s %s: %s", severityIcon[a.Severity], a.Kind, a.Message)
	}
	return b.String()
}

// FormatDigest renders a coach's daily digest. Clients with alerts come first.
func FormatDigest(coachName string, reports []*ClientReport, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Good morning, %s! Client digest for %s\n", coachName, now.Format("Mon 2 Jan 2006"))

	alerting, quiet := 0, 0
	for _, r := range reports {
		if len(r.Alerts) > 0 {
			alerting++
		}
	}
	if alerting > 0 {
		fmt.Fprintf(&b, "\n%d of %d clients need attention:\n", alerting, len(reports))
		for _, r := range reports {
			if len(r.Alerts) > 0 {
				b.WriteString("\n")
				b.WriteString(FormatClientLine(r))
				b.WriteString("\n")
			}
		}
	}
	for _, r := range reports {
		if len(r.Alerts) > 0 {
			continue
		}
		if quiet == 0 {
			b.WriteString("\nOn track:\n")
		}
		quiet++
		b.WriteString(FormatClientLine(r))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatReport renders the full single-client report for the /report command.
func FormatReport(r *ClientReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, cycle %d, week %d", r.ClientName, r.CycleID, r.Week)
	if r.Ended {
		b.WriteString(" (ended)")
	}
	if !r.Started {
		b.WriteString(" (not started)")
	}
	fmt.Fprintf(&b, "\n\nThis week: %d done, %d open, %d missed\n",
		r.Schedule.Count(checkin.StateCompleted), r.Schedule.Count(checkin.StateOpen), r.Schedule.Count(checkin.StateMissed))
	for _, slot := range r.Schedule.Slots {
		fmt.Fprintf(&b, "  %s %s: %s\n", slot.Day, slot.Date.Format("02.01"), slot.State)
	}
	if r.Schedule.Locked {
		b.WriteString("  (closed: next week already started)\n")
	}

	fmt.Fprintf(&b, "\nStreak: current %d, best %d, %d/%d check-ins done\n",
		r.Streak.CurrentStreak, r.Streak.BestStreak, r.Streak.TotalCompleted, r.Streak.TotalExpected)
	fmt.Fprintf(&b, "Stability: %s\nTrajectory: %s\nStakeholder alignment: %s\n",
		formatOptionalInt(r.Analytics.StabilityScore),
		formatSigned(r.Analytics.TrajectoryScore),
		formatRatio(r.Analytics.AlignmentRatio))

	if len(r.Gaps) > 0 {
		b.WriteString("\nPerception gaps:\n")
		for _, g := range r.Gaps {
			mark := ""
			if len(r.SignificantGaps) > 0 && containsGap(r.SignificantGaps, g) {
				mark = " ⚠"
			}
			fmt.Fprintf(&b, "  %s: self %.1f vs raters %.1f (%+.1f, %s)%s\n",
				g.Dimension, g.SelfScore, g.RaterAvg, g.Gap, g.Direction(), mark)
		}
	}
	if len(r.StakeholderTrends) > 0 {
		b.WriteString("\nGap trends by stakeholder:\n")
		for _, st := range r.StakeholderTrends {
			fmt.Fprintf(&b, "  #%d effort %s, performance %s\n",
				st.StakeholderID, formatTrend(st.EffortGapTrend), formatTrend(st.PerformanceGapTrend))
		}
	}
	if len(r.Alerts) > 0 {
		b.WriteString("\nAlerts:\n")
		for _, a := range r.Alerts {
			fmt.Fprintf(&b, "  %s %s: %s\n", severityIcon[a.Severity], a.Kind, a.Message)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func containsGap(gaps []analytics.PerceptionGap, g analytics.PerceptionGap) bool {
	for _, x := range gaps {
		if x == g {
			return true
		}
	}
	return false
}

// TelegramMessageLimit is the longest text Telegram accepts in one message.
const TelegramMessageLimit = 4096

// SplitMessage cuts text into parts of at most limit characters, breaking on
// line boundaries. A single line longer than limit is cut mid-line.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	var parts []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if part := strings.Trim(cur.String(), "\n"); part != "" {
			parts = append(parts, part)
		}
		cur.Reset()
		curLen = 0
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf8.RuneCountInString(line)
		if curLen+n > limit {
			flush()
		}
		for n > limit {
			runes := []rune(line)
			parts = append(parts, string(runes[:limit]))
			line = string(runes[limit:])
			n -= limit
		}
		cur.WriteString(line)
		curLen += n
	}
	flush()
	return parts
}
