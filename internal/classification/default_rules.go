package classification

import (
	"strings"

	"github.com/Veraticus/budgetflow/internal/model"
)

// BuiltInSource is the RuleSet source name of the default rules.
const BuiltInSource = "built-in"

// defaultRules are narrow, explicit references seen on Swedish statements.
// Order matters: the first matching rule wins.
var defaultRules = []model.MappingRule{
	{Pattern: "HYRA", Category: "Hyra"},
	{Pattern: "MAT", Category: "Mat"},
	{Pattern: "ICA", Category: "Mat"},
	{Pattern: "WILLYS", Category: "Mat"},
	{Pattern: "TELE2", Category: "Mobil"},
	{Pattern: "NETFLIX", Category: "Streaming"},
	{Pattern: "SPOTIFY", Category: "Streaming"},
	{Pattern: "VATTENFALL", Category: "El"},
	{Pattern: "BAHNHOF", Category: "Internet"},
	{Pattern: "SPARKONTO", Category: "Buffert"},
	{Pattern: "AVANZA", Category: "Fonder"},
	{Pattern: "LÖN", Category: "Lön"},
}

// DefaultRuleSet returns the built-in mapping rules.
func DefaultRuleSet() *model.RuleSet {
	return model.NewRuleSet(BuiltInSource, defaultRules)
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
