package budget

import (
	"fmt"

	"github.com/dsg-innosource/data-platform/pkg/billing"
	"github.com/dsg-innosource/data-platform/pkg/period"
	"github.com/knadh/koanf/parsers/yaml"
)

// MarshalProposedState renders the post-run state in the same shape the
// configuration file stores it, so the operator can review the numbers and
// paste them in as next period's baseline. Nothing writes the configuration
// back automatically. Remaining amounts are rounded to cents here; the state
// file is a hand-off boundary like the reports.
func MarshalProposedState(p period.Period, s State) ([]byte, error) {
	remaining := make(map[string]interface{}, len(s))
	status := make(map[string]interface{}, len(s))
	for client, b := range s {
		remaining[client] = billing.RoundCents(b.Remaining)
		status[client] = string(b.Status)
	}
	doc := map[string]interface{}{
		"billing": map[string]interface{}{
			"remaining_budget": remaining,
			"budget_status":    status,
		},
	}
	body, err := yaml.Parser().Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshalling proposed budget state: %w", err)
	}
	header := fmt.Sprintf("# Proposed budget baseline after %s.\n# Review and paste into the billing configuration to start the next period.\n", p)
	return append([]byte(header), body...), nil
}
