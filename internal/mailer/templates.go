package mailer

import (
	"fmt"
	"strings"

	"github.com/bunkmate/bunkmate-api/internal/dto"
)

// AlertMessage builds the drop-below-threshold notification for a user.
func AlertMessage(toName, toAddress, subjectName string, percentage float64, threshold int) Message {
	html := fmt.Sprintf(`<h2>Attendance Warning!</h2>
<p>Hi %s,</p>
<p>Your attendance for <strong>%s</strong> has dropped below %d%%.</p>
<p><strong>Current Attendance:</strong> %.2f%%</p>
<p>Please attend upcoming classes to maintain your attendance.</p>`,
		toName, subjectName, threshold, percentage)

	text := fmt.Sprintf("Hi %s, your attendance for %s has dropped below %d%%. Current attendance: %.2f%%.",
		toName, subjectName, threshold, percentage)

	return Message{
		ToName:      toName,
		ToAddress:   toAddress,
		Subject:     fmt.Sprintf("Attendance Alert - Below %d%%", threshold),
		TextContent: text,
		HTMLContent: html,
	}
}

// WeeklyReportMessage builds the recurring summary email for a user.
func WeeklyReportMessage(summary dto.WeeklyReportSummary, threshold int) Message {
	var html strings.Builder
	fmt.Fprintf(&html, `<h2>Weekly Attendance Summary</h2>
<p>Hi %s,</p>
<p><strong>Overall Attendance:</strong> %.2f%%</p>
<p><strong>Total Classes:</strong> %d</p>
<p><strong>Classes Attended:</strong> %d</p>`,
		summary.Name, summary.OverallPercentage, summary.TotalClasses, summary.AttendedClasses)

	if len(summary.BelowThreshold) > 0 {
		fmt.Fprintf(&html, "<h3>Subjects Below %d%%:</h3><ul>", threshold)
		for _, subject := range summary.BelowThreshold {
			fmt.Fprintf(&html, "<li>%s: %.2f%%</li>", subject.Name, subject.Percentage)
		}
		html.WriteString("</ul>")
	}
	html.WriteString("<p>Keep up the good work!</p>")

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s, your overall attendance is %.2f%% (%d of %d classes).",
		summary.Name, summary.OverallPercentage, summary.AttendedClasses, summary.TotalClasses)
	for _, subject := range summary.BelowThreshold {
		fmt.Fprintf(&text, " %s is at %.2f%%.", subject.Name, subject.Percentage)
	}

	return Message{
		ToName:      summary.Name,
		ToAddress:   summary.Email,
		Subject:     "Weekly Attendance Report",
		TextContent: text.String(),
		HTMLContent: html.String(),
	}
}
