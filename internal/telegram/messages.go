package telegram

import "fmt"

const helpText = "🤖 *Meat Report Bot*\n\n" +
	"Commands:\n\n" +
	"/start - Show this help message\n" +
	"/help - Show this help message\n\n" +
	"To create a report, send a message like:\n\n" +
	"*Example 1:*\n`Report banao - Party: ABC Foods, Customer: Ali Ahmed, Satisfactory`\n\n" +
	"*Example 2:*\n`ABC Foods - Ali Ahmed - Satisfactory`\n\n" +
	"*Status options:*\n- Satisfactory\n- Unsatisfactory"

const notUnderstoodText = "❌ Command not understood.\n\n" +
	"Please use format:\n`Party: ABC Foods, Customer: Ali Ahmed, Satisfactory`\n\n" +
	"Or send /help for more info."

const unsatisfactoryText = "⚠️ Unsatisfactory reports require manual creation through the web app for accuracy."

// HelpMessage lists the accepted command formats
func HelpMessage() string { return helpText }

// NotUnderstoodMessage is sent when no pattern matched
func NotUnderstoodMessage() string { return notUnderstoodText }

// UnsatisfactoryMessage tells the sender to use the web app instead
func UnsatisfactoryMessage() string { return unsatisfactoryText }

// CreatingMessage acknowledges a parsed command before any record is written
func CreatingMessage(c Command) string {
	return fmt.Sprintf("⏳ Creating report...\n\nParty: %s\nCustomer: %s\nStatus: %s", c.Party, c.Customer, c.Status)
}

// CreatedMessage confirms a satisfactory report
func CreatedMessage(sampleCode string, c Command) string {
	return fmt.Sprintf("✅ *Report Created!*\n\nSample Code: `%s`\nParty: %s\nCustomer: %s\nStatus: Satisfactory\n\n📊 All tests passed with satisfactory results.",
		sampleCode, c.Party, c.Customer)
}

// DocumentCaption labels the PDF sent after a report is created
func DocumentCaption(sampleCode string) string {
	return fmt.Sprintf("Report %s", sampleCode)
}

// PendingDigestMessage summarises samples still waiting for results
func PendingDigestMessage(count int, days int, codes []string) string {
	msg := fmt.Sprintf("🧪 *Pending samples*\n\n%d sample(s) pending for more than %d day(s).", count, days)
	for _, code := range codes {
		msg += "\n- `" + code + "`"
	}
	return msg
}
