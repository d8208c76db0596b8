package service

import (
	"regexp"
	"strings"

	"github.com/bornholm/triage/internal/core/model"
)

// Category rules are evaluated in order against the lower-cased
// concatenation of title and description. The first matching rule
// wins.
var categoryRules = []struct {
	category model.Category
	keywords []string
}{
	{model.CategoryScheduling, []string{"meeting", "schedule", "call", "appointment", "deadline"}},
	{model.CategoryFinance, []string{"payment", "invoice", "bill", "budget", "cost", "expense"}},
	{model.CategoryTechnical, []string{"bug", "fix", "error", "install", "repair", "maintain"}},
	{model.CategorySafety, []string{"safety", "hazard", "inspection", "compliance", "ppe"}},
}

// Priority rules follow the same first-match policy, independently of
// the category rules.
var priorityRules = []struct {
	priority model.Priority
	keywords []string
}{
	{model.PriorityHigh, []string{"urgent", "asap", "immediately", "today", "critical", "emergency"}},
	{model.PriorityMedium, []string{"soon", "important", "week"}},
}

var suggestedActions = map[model.Category][]string{
	model.CategoryScheduling: {"Block calendar", "Send invite", "Prepare agenda", "Set reminder"},
	model.CategoryFinance:    {"Collect invoices", "Verify amounts", "Request approval"},
	model.CategoryTechnical:  {"Reproduce issue", "Diagnose root cause", "Apply fix", "Verify resolution"},
	model.CategorySafety:     {"Review checklist", "Inspect site", "File compliance report"},
	model.CategoryGeneral:    {"Clarify scope", "Set due date", "Assign owner"},
}

var datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// peoplePattern requires a capitalized name but is only ever applied
// to already lower-cased content, so it can not match. This mirrors
// the historical behavior; fixing it would change the extracted
// entities callers observe for existing texts.
var peoplePattern = regexp.MustCompile(`(?:with|by|assign to) ([A-Z][a-z]+)`)

// Classifier derives category, priority, suggested actions and
// extracted entities from the free text of a task. It is pure and
// deterministic: identical inputs always yield identical results.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

func (c *Classifier) Classify(title string, description string) model.Classification {
	content := strings.ToLower(title + " " + description)

	category := model.CategoryGeneral
	for _, rule := range categoryRules {
		if containsAny(content, rule.keywords) {
			category = rule.category
			break
		}
	}

	priority := model.PriorityLow
	for _, rule := range priorityRules {
		if containsAny(content, rule.keywords) {
			priority = rule.priority
			break
		}
	}

	return model.Classification{
		Category:         category,
		Priority:         priority,
		SuggestedActions: suggestedActions[category],
		Entities:         extractEntities(content),
	}
}

func containsAny(content string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(content, k) {
			return true
		}
	}

	return false
}

func extractEntities(content string) model.ExtractedEntities {
	entities := model.ExtractedEntities{
		Dates:  []string{},
		People: []string{},
	}

	entities.Dates = append(entities.Dates, datePattern.FindAllString(content, -1)...)

	for _, m := range peoplePattern.FindAllStringSubmatch(content, -1) {
		entities.People = append(entities.People, m[1])
	}

	return entities
}
