package bot

import (
	"fmt"
	"strings"

	"github.com/launchtrack/timeclock/internal/clock"
	"github.com/launchtrack/timeclock/internal/model"
)

const (
	msgAlreadyClockedIn = "⚠️ You are already clocked in!"
	msgNotClockedIn     = "⚠️ You are not clocked in!"
	msgLocationNotAsked = "Location not requested at this time."
	msgShareLocation    = "Please share your location using the button provided, or send /start to restart."
	msgUseButtons       = "Use the buttons below to clock in/out:"
	msgChooseOption     = "Choose an option:"
	msgGenericError     = "An unexpected error occurred. Please try again or contact support."
	msgNoRecords        = "📊 <b>No Records Found</b>\n\nStart tracking your time by clocking in!"

	msgVoiceNoRecord = "⚠️ Keine Arbeitszeit für heute gefunden. Bitte zuerst einstempeln."
	msgVoiceFailed   = "❌ Audio konnte nicht transkribiert werden. Bitte versuchen Sie es erneut."
	msgScanStarted   = "📷 <b>Bild wird verarbeitet...</b>\n\nTabelle wird erkannt und Daten werden extrahiert."
	msgScanNoTable   = "❌ Keine Tabelle oder Kreuze/Häkchen im Bild gefunden. Bitte versuchen Sie es mit einem klareren Bild."
	msgScanFailed    = "❌ Fehler beim Verarbeiten des Bildes. Bitte versuchen Sie es erneut."
)

func welcomeMessage(firstName string, cfg *model.UserConfig) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🕐 <b>Time Tracker %s</b>\n\n", Version)
	fmt.Fprintf(&sb, "Hello %s! 👋\n\n", firstName)
	sb.WriteString(configSummary(cfg))
	sb.WriteString("\nChoose an option below:")
	return sb.String()
}

func configSummary(cfg *model.UserConfig) string {
	if cfg == nil {
		return "⚠️ <b>No project configuration found</b>\nPlease set up your project details first.\n"
	}
	return fmt.Sprintf(
		"📋 <b>Project</b>: %s\n🏭 <b>Location</b>: %s\n👷 <b>Contractor</b>: %s\n🍽️ <b>Lunch Break</b>: %s\n",
		orNotSet(cfg.ProjectName), orNotSet(cfg.ProjectLocation),
		orNotSet(cfg.ContractorName), orNotSet(cfg.LunchDuration))
}

func orNotSet(s string) string {
	if s == "" {
		return "Not set"
	}
	return s
}

func helpMessage() string {
	return fmt.Sprintf(`🕐 <b>Time Tracker %s Help</b> 🕐

<b>Commands:</b>
/start - Start the bot and see the main menu
/help - Show this help message
/status - Check your current clock status
/records - Show your recent time records
/config - Configure project details

<b>How to use:</b>
🟢 Clock In - Start your work session
🔴 Clock Out - End your work session
📊 Records - See your recent time records
⚙️ Config - Set project name, location and contractor

<b>Note:</b> You must share your location when clocking in/out for verification.`, Version)
}

func configIntro(cfg *model.UserConfig) string {
	var sb strings.Builder
	sb.WriteString("⚙️ <b>Project Configuration</b>\n\n")
	if cfg != nil {
		sb.WriteString("<b>Current Settings:</b>\n")
		sb.WriteString(configSummary(cfg))
		sb.WriteString("\n")
	} else {
		sb.WriteString("<b>No configuration found</b>\n\n")
	}
	sb.WriteString("To update your configuration, please provide the following details:\n\n")
	sb.WriteString("1️⃣ Project Name\n2️⃣ Project Location (Factory)\n3️⃣ Contractor Name\n4️⃣ Lunch Break Duration\n\n")
	sb.WriteString("Please send the <b>Project Name</b> first:")
	return sb.String()
}

func configSaved(cfg model.UserConfig) string {
	return fmt.Sprintf(`✅ <b>Configuration Saved Successfully!</b>

<b>Your Settings:</b>
📋 Project Name: %s
🏭 Project Location: %s
👷 Contractor Name: %s
🍽️ Lunch Break: %s

These settings will be used in your time tracking reports.`,
		cfg.ProjectName, cfg.ProjectLocation, cfg.ContractorName, cfg.LunchDuration)
}

func recordsMessage(rows []model.TimesheetRow) string {
	if len(rows) == 0 {
		return msgNoRecords
	}
	var sb strings.Builder
	sb.WriteString("📊 <b>Your Recent Records:</b>\n\n")
	for _, r := range rows {
		fmt.Fprintf(&sb, "📅 %s\n", r.Date)
		if r.ClockIn != "" {
			fmt.Fprintf(&sb, "🟢 In: %s\n", r.ClockIn)
		}
		if r.ClockOut != "" {
			fmt.Fprintf(&sb, "🔴 Out: %s\n", r.ClockOut)
		}
		if r.ClockIn != "" && r.ClockOut != "" {
			if d, err := clock.Between(r.ClockIn, r.ClockOut); err == nil {
				fmt.Fprintf(&sb, "⏱ %s\n", clock.FormatDuration(d))
			}
		}
		if r.Description != "" {
			fmt.Fprintf(&sb, "📝 %s\n", r.Description)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func voiceSaved(transcription string) string {
	return fmt.Sprintf("✅ <b>Sprachnotiz zur heutigen Arbeitszeit hinzugefügt:</b>\n\n📝 \"%s\"", transcription)
}

func scanSaved(count int) string {
	return fmt.Sprintf("✅ <b>Tabelle erfolgreich verarbeitet!</b>\n\n📊 %d Datensätze zur Tabelle hinzugefügt.", count)
}
