package dispatch

import "fmt"

// SeverityColor returns the stable color encoding for a severity level,
// per §4.3's formatting rules. Unrecognized severities fall back to amber.
func SeverityColor(severity string) string {
	switch severity {
	case "Critical":
		return "red"
	case "High":
		return "orange"
	case "Medium":
		return "amber"
	case "Low":
		return "green"
	default:
		return "amber"
	}
}

var typeEmoji = map[string]string{
	"outbreak_alert":      "🔴",
	"hospitalization":     "🏥",
	"diagnosis":           "🩺",
	"lab_result":          "🧪",
	"symptom_report":      "📋",
	"system_error":        "⚠️",
	"compliance_finding":  "📑",
}

func emojiFor(alertType string) string {
	if e, ok := typeEmoji[alertType]; ok {
		return e
	}
	return "📣"
}

// Block is one Block-Kit-style message segment, adapted from the
// teacher's notifier.SlackClient payload shape (header, context, section,
// divider).
type Block struct {
	Kind string                 `json:"type"`
	Text map[string]interface{} `json:"text,omitempty"`
	Elements []map[string]interface{} `json:"elements,omitempty"`
	Fields   []map[string]interface{} `json:"fields,omitempty"`
}

// FormattedMessage is the structured block message produced for a single
// alert (§4.3: header, body, location/timestamp row, optional metadata
// row).
type FormattedMessage struct {
	Color  string  `json:"color"`
	Blocks []Block `json:"blocks"`
}

// Format builds the structured block message for an alert: a header
// (emoji keyed by type), the body text, a location/timestamp row, and —
// when metadata is non-empty — a trailing metadata row.
func Format(a Alert) FormattedMessage {
	blocks := []Block{
		{
			Kind: "header",
			Text: map[string]interface{}{
				"type": "plain_text",
				"text": fmt.Sprintf("%s %s", emojiFor(a.Type), a.Type),
			},
		},
		{
			Kind: "section",
			Text: map[string]interface{}{
				"type": "mrkdwn",
				"text": a.Message,
			},
		},
	}

	if a.Location != "" || !a.Timestamp.IsZero() {
		blocks = append(blocks, Block{
			Kind: "context",
			Elements: []map[string]interface{}{
				{
					"type": "mrkdwn",
					"text": locationTimestampText(a),
				},
			},
		})
	}

	if len(a.Metadata) > 0 {
		blocks = append(blocks, Block{
			Kind:   "section",
			Fields: metadataFields(a.Metadata),
		})
	}

	return FormattedMessage{Color: SeverityColor(a.Severity), Blocks: blocks}
}

func locationTimestampText(a Alert) string {
	loc := a.Location
	if loc == "" {
		loc = "UNKNOWN"
	}
	ts := "unknown time"
	if !a.Timestamp.IsZero() {
		ts = a.Timestamp.UTC().Format("2006-01-02T15:04:05Z")
	}
	return fmt.Sprintf("*Location:* %s | *Time:* %s", loc, ts)
}

func metadataFields(metadata map[string]interface{}) []map[string]interface{} {
	fields := make([]map[string]interface{}, 0, len(metadata))
	for k, v := range metadata {
		fields = append(fields, map[string]interface{}{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*%s:*\n%v", k, v),
		})
	}
	return fields
}
