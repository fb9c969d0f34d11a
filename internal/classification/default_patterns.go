// Package classification holds the built-in budget layout, categories and
// mapping rules used when nothing external is configured.
package classification

import "github.com/Veraticus/budgetflow/internal/model"

// Default sheet layout offsets.
const (
	DefaultYearRow          = 1
	DefaultMonthHeaderRow   = 2
	DefaultIncomeRow        = 3
	DefaultFirstDataRow     = 5
	DefaultMonthStartColumn = 3
)

// Section labels used by the built-in categories.
const (
	SectionIncome   = "Inkomster"
	SectionShared   = "Gemensamt"
	SectionPersonal = "Personligt"
	SectionSavings  = "Sparande"
	SectionOther    = "Övrigt"
)

type categorySpec struct {
	Name     string
	Section  string
	Type     model.CategoryType
	Patterns []string
}

// defaultCategories is in sheet order; rows are assigned from DefaultFirstDataRow.
var defaultCategories = []categorySpec{
	// Income first so that unmatched deposits land on the salary row.
	{
		Name:     "Lön",
		Section:  SectionIncome,
		Type:     model.CategoryTypeIncome,
		Patterns: []string{"LÖN", "SALARY", "PAYROLL"},
	},
	{
		Name:     "Övriga inkomster",
		Section:  SectionIncome,
		Type:     model.CategoryTypeIncome,
		Patterns: []string{"SKATTEVERKET", "FÖRSÄKRINGSKASSAN", "CSN", "ÅTERBETALNING"},
	},

	// Shared household expenses
	{
		Name:     "Hyra",
		Section:  SectionShared,
		Type:     model.CategoryTypeSharedExpense,
		Patterns: []string{"HYRA", "BOSTAD", "AVGIFT BRF"},
	},
	{
		Name:     "Mat",
		Section:  SectionShared,
		Type:     model.CategoryTypeSharedExpense,
		Patterns: []string{"ICA", "COOP", "WILLYS", "HEMKÖP", "LIDL", "CITY GROSS", "MATHEM"},
	},
	{
		Name:     "El",
		Section:  SectionShared,
		Type:     model.CategoryTypeSharedExpense,
		Patterns: []string{"VATTENFALL", "ELLEVIO", "TIBBER", "FORTUM", "E.ON"},
	},
	{
		Name:     "Internet",
		Section:  SectionShared,
		Type:     model.CategoryTypeSharedExpense,
		Patterns: []string{"BAHNHOF", "BREDBAND", "COMHEM", "TELIA BREDBAND"},
	},
	{
		Name:     "Försäkringar",
		Section:  SectionShared,
		Type:     model.CategoryTypeSharedExpense,
		Patterns: []string{"FOLKSAM", "TRYGG-HANSA", "IF SKADE", "LÄNSFÖRSÄKRINGAR"},
	},

	// Personal expenses
	{
		Name:     "Mobil",
		Section:  SectionPersonal,
		Type:     model.CategoryTypePersonalExpense,
		Patterns: []string{"TELE2", "TELIA", "COMVIQ", "HALLON"},
	},
	{
		Name:     "Streaming",
		Section:  SectionPersonal,
		Type:     model.CategoryTypePersonalExpense,
		Patterns: []string{"NETFLIX", "SPOTIFY", "HBO", "DISNEY", "VIAPLAY"},
	},
	{
		Name:     "Transport",
		Section:  SectionPersonal,
		Type:     model.CategoryTypePersonalExpense,
		Patterns: []string{"UBER", "BOLT", "CIRCLE K", "PREEM", "OKQ8"},
	},
	{
		Name:     "Nöje",
		Section:  SectionPersonal,
		Type:     model.CategoryTypePersonalExpense,
		Patterns: []string{"RESTAURANG", "SYSTEMBOLAGET", "SF BIO", "PUB"},
	},
	{
		Name:     "Kläder",
		Section:  SectionPersonal,
		Type:     model.CategoryTypePersonalExpense,
		Patterns: []string{"H&M", "ZALANDO", "KAPPAHL", "LINDEX"},
	},

	// Savings
	{
		Name:     "Buffert",
		Section:  SectionSavings,
		Type:     model.CategoryTypeSavings,
		Patterns: []string{"SPARKONTO", "BUFFERT", "E-SPAR"},
	},
	{
		Name:     "Fonder",
		Section:  SectionSavings,
		Type:     model.CategoryTypeSavings,
		Patterns: []string{"AVANZA", "NORDNET", "FONDSPAR"},
	},

	// Catch-all row; only reachable through explicit rules.
	{
		Name:    "Övrigt",
		Section: SectionOther,
		Type:    model.CategoryTypeOther,
	},
}

// DefaultCategories returns the built-in category list with rows assigned
// consecutively from DefaultFirstDataRow.
func DefaultCategories() []model.BudgetCategory {
	return DefaultCategoriesAt(DefaultFirstDataRow)
}

// DefaultCategoriesAt returns the built-in category list with rows assigned
// consecutively from firstDataRow.
func DefaultCategoriesAt(firstDataRow int) []model.BudgetCategory {
	out := make([]model.BudgetCategory, 0, len(defaultCategories))
	for i, spec := range defaultCategories {
		out = append(out, model.BudgetCategory{
			Name:     spec.Name,
			Section:  spec.Section,
			Type:     spec.Type,
			Patterns: append([]string(nil), spec.Patterns...),
			RowIndex: firstDataRow + i,
		})
	}
	return out
}

// DefaultStructure returns the built-in sheet layout.
func DefaultStructure() *model.SheetStructure {
	return &model.SheetStructure{
		YearRow:          DefaultYearRow,
		MonthHeaderRow:   DefaultMonthHeaderRow,
		IncomeRow:        DefaultIncomeRow,
		FirstDataRow:     DefaultFirstDataRow,
		MonthStartColumn: DefaultMonthStartColumn,
		Categories:       DefaultCategories(),
	}
}

// PatternsFor returns the built-in patterns of a category by case-insensitive
// name, or nil when the name is not a built-in category.
func PatternsFor(name string) []string {
	for _, c := range DefaultCategories() {
		if equalFold(c.Name, name) {
			return c.Patterns
		}
	}
	return nil
}
