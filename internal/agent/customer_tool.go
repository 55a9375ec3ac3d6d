package agent

import (
	"context"

	"github.com/dealbrief/dealbrief/internal/customerdata"
)

// CustomerDataToolName is the single tool declared to the model.
const CustomerDataToolName = "getCustomerData"

const customerDataDescription = "Retrieves comprehensive customer negotiation data, " +
	"including purchase history, negotiation style, and pricing targets, " +
	"needed to prepare a sales strategy."

const customerDataSchema = `{
	"type": "object",
	"properties": {
		"customer_name": {
			"type": "string",
			"description": "The full name of the customer for whom the negotiation data is needed (e.g., 'Customer A')."
		}
	},
	"required": ["customer_name"]
}`

// CustomerDataTool fetches negotiation data from the customer data service.
type CustomerDataTool struct {
	client *customerdata.Client
}

// NewCustomerDataTool creates the tool over the given service client.
func NewCustomerDataTool(client *customerdata.Client) *CustomerDataTool {
	return &CustomerDataTool{client: client}
}

func (t *CustomerDataTool) Name() string            { return CustomerDataToolName }
func (t *CustomerDataTool) Description() string     { return customerDataDescription }
func (t *CustomerDataTool) ParameterSchema() string { return customerDataSchema }

// Execute fetches the customer record. The record is returned untouched
// so the model sees exactly what the service stores.
func (t *CustomerDataTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	name, _ := args["customer_name"].(string)
	return t.client.Fetch(ctx, name)
}
