package presenter

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mikey/phish-triage/internal/core"
	"github.com/mikey/phish-triage/internal/ports"
	"github.com/mikey/phish-triage/internal/utils"
	"go.uber.org/zap"
)

var _ ports.Presenter = (*TerminalPresenter)(nil)

// TerminalPresenter renders dashboard state as plain text sections
type TerminalPresenter struct {
	out         io.Writer
	errOut      io.Writer
	text        *utils.TextProcessor
	logger      *zap.Logger
	maxBodySize int
	snippetSize int
}

// NewTerminalPresenter creates a new terminal presenter
func NewTerminalPresenter(
	out io.Writer,
	errOut io.Writer,
	text *utils.TextProcessor,
	logger *zap.Logger,
	maxBodySize int,
	snippetSize int,
) *TerminalPresenter {
	return &TerminalPresenter{
		out:         out,
		errOut:      errOut,
		text:        text,
		logger:      logger,
		maxBodySize: maxBodySize,
		snippetSize: snippetSize,
	}
}

// RenderList prints the filtered triage list as a table
func (p *TerminalPresenter) RenderList(list []core.MessageSummary, filter core.Filter, state core.StoreState) error {
	fmt.Fprintf(p.out, "\n=== Messages (%s) ===\n", filter)
	switch {
	case state.Loading:
		fmt.Fprintf(p.out, "Loading...\n")
		return nil
	case !state.Loaded && state.Err == nil:
		fmt.Fprintf(p.out, "Not loaded yet.\n")
		return nil
	case state.Err != nil:
		fmt.Fprintf(p.out, "Last refresh failed: %v\n", state.Err)
	}
	if len(list) == 0 {
		fmt.Fprintf(p.out, "No messages.\n")
		return nil
	}

	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tCATEGORY\tRISK\tURGENCY\tFROM\tSUBJECT\n")
	for _, m := range list {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%s\t%s\t%s\n",
			m.ID,
			m.Analysis.Category.Display(),
			m.Analysis.RiskScore,
			m.Analysis.UrgencyLevel,
			p.text.OneLine(m.From, 32),
			p.text.OneLine(m.Subject, p.snippetSize),
		)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write message table: %w", err)
	}
	fmt.Fprintf(p.out, "Showing %d of %d\n", len(list), state.Count)
	return nil
}

// RenderStats prints the category histogram, risk series and URL mean
func (p *TerminalPresenter) RenderStats(stats core.AggregateStats) error {
	fmt.Fprintf(p.out, "\n=== Statistics ===\n")
	fmt.Fprintf(p.out, "Total messages: %d\n", stats.Total)
	fmt.Fprintf(p.out, "Average URLs per message: %.2f\n", stats.MeanURLCount)

	fmt.Fprintf(p.out, "\n=== Categories ===\n")
	for _, b := range stats.Histogram {
		fmt.Fprintf(p.out, "%-11s %4d %s\n", b.Category, b.Count, strings.Repeat("#", b.Count))
	}

	fmt.Fprintf(p.out, "\n=== Risk Scores ===\n")
	if len(stats.RiskSeries) == 0 {
		fmt.Fprintf(p.out, "No messages.\n")
		return nil
	}
	for _, pt := range stats.RiskSeries {
		bar := int(pt.RiskScore / 5)
		if bar < 0 {
			bar = 0
		}
		fmt.Fprintf(p.out, "%-4s %6.1f %s\n", pt.Label, pt.RiskScore, strings.Repeat("=", bar))
	}
	return nil
}

// RenderDetail prints the opened message and its authoritative analysis
func (p *TerminalPresenter) RenderDetail(detail *core.MessageDetail) error {
	if detail == nil {
		fmt.Fprintf(p.out, "\nNo message open.\n")
		return nil
	}
	e := detail.Email
	fmt.Fprintf(p.out, "\n=== Email Summary ===\n")
	fmt.Fprintf(p.out, "ID: %s\n", e.ID)
	fmt.Fprintf(p.out, "From: %s\n", p.text.OneLine(e.From, 0))
	fmt.Fprintf(p.out, "To: %s\n", p.text.OneLine(e.To, 0))
	fmt.Fprintf(p.out, "Date: %s\n", e.Date)
	fmt.Fprintf(p.out, "Subject: %s\n", p.text.OneLine(e.Subject, 0))
	fmt.Fprintf(p.out, "\n%s\n", p.text.ProcessText(e.Body, p.maxBodySize))

	p.renderAnalysis(detail.Analysis)
	return nil
}

// RenderClassification prints the manual classification slot
func (p *TerminalPresenter) RenderClassification(c core.ManualClassification) error {
	switch {
	case c.Pending:
		fmt.Fprintf(p.out, "\nAnalyzing...\n")
	case c.Err != nil:
		fmt.Fprintf(p.out, "\nAnalysis failed: %v\n", c.Err)
	case c.Result != nil:
		p.renderAnalysis(*c.Result)
	default:
		fmt.Fprintf(p.out, "\nNothing analyzed yet.\n")
	}
	return nil
}

// RenderAuthURL prints the sign-in link
func (p *TerminalPresenter) RenderAuthURL(url string) error {
	fmt.Fprintf(p.out, "\n=== Sign In ===\n")
	fmt.Fprintf(p.out, "Open this link to authorize mailbox access:\n%s\n", url)
	return nil
}

// RenderHealth prints the backend status
func (p *TerminalPresenter) RenderHealth() error {
	fmt.Fprintf(p.out, "\n=== Backend ===\n")
	fmt.Fprintf(p.out, "Status: healthy\n")
	return nil
}

// RenderFailure prints a one-line failure message to the error stream
func (p *TerminalPresenter) RenderFailure(op core.Operation, err error) {
	msg := "request failed"
	switch op {
	case core.OpRefresh:
		msg = "Failed to load messages"
	case core.OpOpen:
		msg = "Failed to load message"
	case core.OpClassify:
		msg = "Failed to analyze text"
	case core.OpLogin:
		msg = "Failed to get sign-in link"
	case core.OpHealth:
		msg = "Backend health check failed"
	}
	if errors.Is(err, core.ErrNotAuthenticated) {
		msg += " (sign in first)"
	}
	fmt.Fprintf(p.errOut, "Error: %s: %v\n", msg, err)
}

func (p *TerminalPresenter) renderAnalysis(a core.AnalysisResult) {
	fmt.Fprintf(p.out, "\n=== Analysis ===\n")
	fmt.Fprintf(p.out, "Category: %s\n", a.Category.Display())
	fmt.Fprintf(p.out, "Risk score: %.1f\n", a.RiskScore)
	fmt.Fprintf(p.out, "Confidence: %.1f\n", a.Confidence)
	fmt.Fprintf(p.out, "ML probability: %.1f\n", a.MLProbability)
	fmt.Fprintf(p.out, "Urgency: %s\n", a.UrgencyLevel)
	fmt.Fprintf(p.out, "URLs: %d\n", a.URLCount)
	fmt.Fprintf(p.out, "Words: %d\n", a.WordCount)
	fmt.Fprintf(p.out, "Suspicious keywords: %d\n", a.SuspiciousKeywordCount)
}
