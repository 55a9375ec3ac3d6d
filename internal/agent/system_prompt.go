package agent

import "fmt"

// systemInstruction is the fixed policy for the strategy agent: answer in
// English, always retrieve customer data through the tool, and stop with
// an explanation when the tool fails rather than fabricating data.
const systemInstruction = "You are a professional Sales Negotiation Strategy Expert. " +
	"You MUST perform all analysis and generate the FINAL report entirely IN ENGLISH. " +
	"Your primary task is to help the user prepare for negotiations. " +
	"You MUST use the 'getCustomerData' tool to retrieve customer data. " +
	"After retrieving the data, you must analyze the last deal's outcome and price targets " +
	"to generate a structured negotiation strategy focused on maximizing profit margin. " +
	"If the tool execution fails, you must inform the user and stop."

// DefaultPurpose is used when the caller gives no negotiation purpose.
const DefaultPurpose = "Focus on maximizing profit margin"

// SystemInstruction returns the system policy for the strategy agent.
func SystemInstruction() string {
	return systemInstruction
}

// BuildPrompt renders the user request for a strategy report.
func BuildPrompt(customerName, purpose string) string {
	if purpose == "" {
		purpose = DefaultPurpose
	}
	return fmt.Sprintf(
		"Generate a negotiation strategy report for %s.\nThe negotiation purpose is: %s.",
		customerName, purpose)
}
