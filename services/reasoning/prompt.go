package reasoning

import (
	"fmt"

	"github.com/opslane/riskplane/models"
)

const systemInstruction = `You are a supply-chain risk analyst. Assess the delivery risk of the order event below.
Respond with a single JSON object and nothing else. The object must have exactly these keys:
  "risk_level": one of "LOW", "MEDIUM", "HIGH"
  "decision": one of "LOG", "NOTIFY", "ESCALATE"
  "reason": a short explanation in plain English
Do not wrap the JSON in markdown. Do not add any other keys.`

const conformanceReminder = `Your previous reply did not conform to the required schema. Reply again with ONLY the JSON object: {"risk_level": "...", "decision": "...", "reason": "..."} using the allowed values exactly.`

// buildPrompt renders the event into the user prompt. When reprompt is set
// an explicit conformance instruction is appended, used on retries after a
// parse or validation failure.
func buildPrompt(event models.Event, reprompt bool) string {
	prompt := fmt.Sprintf(
		"Order ID: %s\nSupplier: %s\nExpected delivery: %s\nCurrent status: %s",
		event.OrderID,
		event.Supplier,
		event.ExpectedDelivery.Format("2006-01-02"),
		event.CurrentStatus,
	)
	if reprompt {
		prompt += "\n\n" + conformanceReminder
	}
	return prompt
}
