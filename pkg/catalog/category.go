package catalog

// CategoryID identifies one of the selectable setting groups.
type CategoryID string

const (
	// CategoryPrivacy groups anti-tracking and data collection settings
	CategoryPrivacy CategoryID = "privacy"
	// CategorySecurity groups hardening settings
	CategorySecurity CategoryID = "security"
	// CategoryPerformance groups speed and resource usage settings
	CategoryPerformance CategoryID = "performance"
)

// Category describes a selectable group of settings.
type Category struct {
	ID          CategoryID `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Icon        string     `json:"icon" yaml:"icon"`
}

var categories = []Category{
	{
		ID:          CategoryPrivacy,
		Title:       "Privacy",
		Description: "Enhance your browsing privacy by limiting tracking and data collection",
		Icon:        "shield",
	},
	{
		ID:          CategorySecurity,
		Title:       "Security",
		Description: "Strengthen browser security against potential threats and vulnerabilities",
		Icon:        "lock",
	},
	{
		ID:          CategoryPerformance,
		Title:       "Performance",
		Description: "Optimize Firefox for better speed and resource usage",
		Icon:        "zap",
	},
}

// Categories returns the category registry in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// LookupCategory returns the registered category with the given id.
func LookupCategory(id CategoryID) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// IsCategory reports whether id names a registered category.
func IsCategory(id CategoryID) bool {
	_, ok := LookupCategory(id)
	return ok
}
