package cmd

import (
	"fmt"
	"time"

	"github.com/rubiojr/hackfinder/pkg/core"
	"github.com/rubiojr/hackfinder/pkg/render"
	"github.com/rubiojr/hackfinder/pkg/storage"
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

// formatBytes formats a byte count using binary units
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// formatTime formats a time relative to now or as an absolute date
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	// If it's within the last day, show relative time
	if diff < 24*time.Hour {
		if diff < time.Hour {
			minutes := int(diff.Minutes())
			if minutes < 1 {
				return "just now"
			}
			return fmt.Sprintf("%d minutes ago", minutes)
		}
		hours := int(diff.Hours())
		return fmt.Sprintf("%d hours ago", hours)
	}

	// If it's within the last week, show days ago
	if diff < 7*24*time.Hour {
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%d days ago", days)
	}

	// Otherwise show the date
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

// publicationSpan returns the time between two publication dates, if
// both parse as calendar days.
func publicationSpan(oldest, newest string) (time.Duration, bool) {
	from, err := time.Parse(time.DateOnly, core.Hack{Date: oldest}.Day())
	if err != nil {
		return 0, false
	}
	to, err := time.Parse(time.DateOnly, core.Hack{Date: newest}.Day())
	if err != nil {
		return 0, false
	}
	return to.Sub(from), true
}

// formatStats formats index statistics for display
func formatStats(stats *storage.Stats, top []core.CategoryCount) {
	fmt.Printf("📊 Index Statistics\n")
	fmt.Printf("═══════════════════════\n\n")

	fmt.Printf("Total hacks: %s\n", formatNumber(stats.Hacks))
	fmt.Printf("Categories:  %s\n", formatNumber(stats.Categories))
	fmt.Printf("Sources:     %s\n", formatNumber(stats.Sources))
	fmt.Printf("Index size:  %s\n", formatBytes(stats.SizeBytes))

	if stats.Hacks == 0 {
		fmt.Printf("\nThe index is empty. Run 'hackfinder import' to add hacks.\n")
		return
	}

	if stats.OldestDate != "" {
		fmt.Printf("Oldest:      %s\n", core.Hack{Date: stats.OldestDate}.Day())
	}
	if stats.NewestDate != "" {
		fmt.Printf("Newest:      %s\n", core.Hack{Date: stats.NewestDate}.Day())
		if span, ok := publicationSpan(stats.OldestDate, stats.NewestDate); ok {
			fmt.Printf("Span:        %s\n", formatDuration(span))
		}
	}
	if !stats.LastImported.IsZero() {
		fmt.Printf("Last import: %s\n", formatTime(stats.LastImported))
	}

	if len(top) == 0 {
		return
	}
	fmt.Printf("\nTop categories:\n")
	fmt.Printf("───────────────────\n")
	for _, cat := range top {
		percentage := float64(cat.Count) / float64(stats.Hacks) * 100
		fmt.Printf("📁 %-24s %6s (%.1f%%)\n", render.CategoryLabel(cat.Name), formatNumber(cat.Count), percentage)
	}
}
