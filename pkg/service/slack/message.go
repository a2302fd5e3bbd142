package slack

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/slack-go/slack"
)

// maxSectionText is the Slack limit for a section block's text
const maxSectionText = 3000

// truncateToMaxBytes cuts s to at most maxBytes without splitting a rune
func truncateToMaxBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func section(text string) slack.Block {
	return slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, truncateToMaxBytes(text, maxSectionText), false, false),
		nil, nil,
	)
}

func header(text string) slack.Block {
	return slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, truncateToMaxBytes(text, 150), false, false))
}

func footer(text string) slack.Block {
	return slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, text, false, false))
}

func index(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func projectLabel(p *model.Project) string {
	if p.Name != "" {
		return fmt.Sprintf("%s (%s)", p.Name, p.ID)
	}
	return p.ID.String()
}

// RiskTransitionMessage announces a risk status change
func RiskTransitionMessage(project *model.Project, risk *model.Risk, from types.RiskStatus) ([]slack.Block, string) {
	text := fmt.Sprintf("Risk #%d %q moved from %s to %s", risk.ID, risk.Title, from.Normalize(), risk.Status)

	var body strings.Builder
	fmt.Fprintf(&body, "*%s*\n", risk.Title)
	fmt.Fprintf(&body, "Status: `%s` → `%s`\n", from.Normalize(), risk.Status)
	if a := risk.Effective(); a != nil {
		fmt.Fprintf(&body, "Score: %d (P%d × I%d)\n", a.Score(), a.Probability, a.Impact)
	}
	if risk.Owner != "" {
		fmt.Fprintf(&body, "Owner: %s\n", risk.Owner)
	}
	if risk.ClosureReason != "" {
		fmt.Fprintf(&body, "Closure reason: %s\n", risk.ClosureReason)
	}

	blocks := []slack.Block{
		header(fmt.Sprintf("Risk #%d %s", risk.ID, risk.Status)),
		section(body.String()),
		footer(projectLabel(project)),
	}
	return blocks, text
}

// PerformanceAlertMessage warns that a control account fell below its
// CPI or SPI thresholds
func PerformanceAlertMessage(project *model.Project, account *model.AccountMetrics) ([]slack.Block, string) {
	ca := account.ControlAccount
	m := account.Cumulative
	text := fmt.Sprintf("Control account %s %s is %s (CPI %s, SPI %s)",
		ca.WBSCode, ca.Name, account.Status, index(m.CPI), index(m.SPI))

	var body strings.Builder
	fmt.Fprintf(&body, "*%s %s* is `%s` as of %s\n", ca.WBSCode, ca.Name, account.Status, m.DataDate.Format("2006-01-02"))
	fmt.Fprintf(&body, "CPI: %s  SPI: %s\n", index(m.CPI), index(m.SPI))
	fmt.Fprintf(&body, "CV: %s  SV: %s\n", m.CV.StringFixed(2), m.SV.StringFixed(2))
	fmt.Fprintf(&body, "EAC: %s  VAC: %s\n", m.EAC.StringFixed(2), m.VAC.StringFixed(2))

	blocks := []slack.Block{
		header(fmt.Sprintf("Performance %s", account.Status)),
		section(body.String()),
		footer(projectLabel(project)),
	}
	return blocks, text
}

// ExposureAlertMessage warns that the simulated P90 exposure exceeds limit
func ExposureAlertMessage(project *model.Project, result *model.SimulationResult, limit float64) ([]slack.Block, string) {
	p90, _ := result.Percentile(90)
	text := fmt.Sprintf("Simulated P90 exposure %.2f exceeds %.2f", p90, limit)

	var body strings.Builder
	fmt.Fprintf(&body, "P90 exposure *%.2f* exceeds the limit of %.2f\n", p90, limit)
	fmt.Fprintf(&body, "Mean: %.2f  StdDev: %.2f  Deterministic: %.2f\n", result.Mean, result.StdDev, result.Deterministic)
	fmt.Fprintf(&body, "%d active risks, %d iterations, seed %d\n", result.Risks, result.Iterations, result.Seed)

	blocks := []slack.Block{
		header("Risk exposure alert"),
		section(body.String()),
		footer(projectLabel(project)),
	}
	return blocks, text
}
