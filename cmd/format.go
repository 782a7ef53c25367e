package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rubiojr/docsearch/pkg/search"
	"github.com/rubiojr/docsearch/pkg/storage"
)

// Define styles using lipgloss
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	summaryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("32"))

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))
)

// formatNumber formats a number with K/M suffixes for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	} else if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	} else {
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	}
}

// formatTime formats a time relative to now or as an absolute date
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff >= 0 && diff < 24*time.Hour {
		if diff < time.Hour {
			minutes := int(diff.Minutes())
			if minutes < 1 {
				return "just now"
			}
			return fmt.Sprintf("%d minutes ago", minutes)
		}
		return fmt.Sprintf("%d hours ago", int(diff.Hours()))
	}

	if diff >= 0 && diff < 7*24*time.Hour {
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	}

	if t.Year() == now.Year() {
		return t.Format("Jan 2, 15:04")
	}
	return t.Format("Jan 2, 2006")
}

// formatDuration formats a duration in human-readable form
func formatDuration(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	} else if d < 24*time.Hour {
		return fmt.Sprintf("%.1f hours", d.Hours())
	} else if d < 30*24*time.Hour {
		return fmt.Sprintf("%.1f days", d.Hours()/24)
	} else if d < 365*24*time.Hour {
		return fmt.Sprintf("%.1f months", d.Hours()/(24*30))
	} else {
		return fmt.Sprintf("%.1f years", d.Hours()/(24*365))
	}
}

// formatStats writes document store statistics
func formatStats(w io.Writer, stats *storage.Stats) {
	fmt.Fprintln(w, titleStyle.Render("Document Store Statistics"))

	fmt.Fprintf(w, "Total documents: %s\n", formatNumber(stats.Total))
	if stats.Total == 0 {
		fmt.Fprintln(w, noDataStyle.Render("No documents imported yet. Run `docsearch import`."))
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("By visibility"))
	writeCounts(w, stats.Total, stats.ByVisibility)

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("By type"))
	writeCounts(w, stats.Total, stats.ByType)

	fmt.Fprintln(w)
	if stats.Oldest != nil {
		fmt.Fprintf(w, "Oldest: %s\n", formatTime(*stats.Oldest))
	}
	if stats.Newest != nil {
		fmt.Fprintf(w, "Newest: %s\n", formatTime(*stats.Newest))
		if stats.Oldest != nil {
			fmt.Fprintf(w, "Span:   %s\n", formatDuration(stats.Newest.Sub(*stats.Oldest)))
		}
	}
	if stats.LastImport != nil {
		fmt.Fprintf(w, "Last import: %s\n", formatTime(*stats.LastImport))
	}
}

func writeCounts(w io.Writer, total int, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		n := counts[k]
		fmt.Fprintf(w, "  %-12s %6s (%.1f%%)\n", k, formatNumber(n), float64(n)/float64(total)*100)
	}
}

// formatResults writes one page of search results. selected highlights a row;
// pass -1 for none.
func formatResults(w io.Writer, items []resultLine, selected int) {
	for i, item := range items {
		title := fmt.Sprintf("%d. %s", i+1, item.Title)
		if i == selected {
			title = selectedStyle.Render(title)
		} else {
			title = headerStyle.Render(title)
		}
		fmt.Fprintln(w, title)

		meta := item.Type
		if item.Date != "" {
			meta += " · " + item.Date
		}
		fmt.Fprintln(w, "   "+metaStyle.Render(meta))
		if item.Excerpt != "" {
			fmt.Fprintln(w, "   "+wrapText(item.Excerpt, 76, "   "))
		}
		fmt.Fprintln(w, "   "+urlStyle.Render(item.Link))
	}
}

// resultLine is a search hit prepared for terminal output.
type resultLine struct {
	search.ResultItem
	Link string
	Date string
}

// wrapText wraps s at width columns, prefixing continuation lines.
func wrapText(s string, width int, indent string) string {
	var b strings.Builder
	line := 0
	for i, word := range strings.Fields(s) {
		if i > 0 {
			if line+1+len(word) > width {
				b.WriteString("\n" + indent)
				line = 0
			} else {
				b.WriteByte(' ')
				line++
			}
		}
		b.WriteString(word)
		line += len(word)
	}
	return b.String()
}
