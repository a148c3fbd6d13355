package domain

// CategoryInfo describes how a category is presented. Unknown categories fall
// back to a neutral color and icon instead of failing.
type CategoryInfo struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var defaultCategories = []CategoryInfo{
	{Name: "Food", Color: "#e74c3c", Icon: "utensils"},
	{Name: "Transport", Color: "#3498db", Icon: "bus"},
	{Name: "Housing", Color: "#9b59b6", Icon: "home"},
	{Name: "Utilities", Color: "#f39c12", Icon: "bolt"},
	{Name: "Entertainment", Color: "#1abc9c", Icon: "film"},
	{Name: "Health", Color: "#2ecc71", Icon: "heartbeat"},
	{Name: "Shopping", Color: "#e67e22", Icon: "shopping-bag"},
	{Name: "Education", Color: "#34495e", Icon: "book"},
	{Name: "Other", Color: "#95a5a6", Icon: "ellipsis-h"},
}

func DefaultCategories() []string {
	names := make([]string, len(defaultCategories))
	for i, category := range defaultCategories {
		names[i] = category.Name
	}
	return names
}

// LookupCategory resolves presentation info for a category name. Names outside
// the default set keep their raw name with fallback styling.
func LookupCategory(name string) CategoryInfo {
	for _, category := range defaultCategories {
		if category.Name == name {
			return category
		}
	}
	return CategoryInfo{Name: name, Color: "#7f8c8d", Icon: "tag"}
}

// MergeWithDefaults combines the fixed default category list with categories a
// user already has in use. Dedup is case-sensitive exact match; defaults keep
// their order, user extras follow in the order given.
func MergeWithDefaults(inUse []string) []string {
	seen := make(map[string]bool, len(defaultCategories)+len(inUse))
	merged := make([]string, 0, len(defaultCategories)+len(inUse))
	for _, category := range defaultCategories {
		seen[category.Name] = true
		merged = append(merged, category.Name)
	}
	for _, name := range inUse {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		merged = append(merged, name)
	}
	return merged
}
