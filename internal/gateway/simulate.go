package gateway

import (
	"fmt"
	"strings"
)

// The simulated catalogue keeps the pipeline runnable without API keys.
// Answers are keyed by lowercased query; anything else gets a generic
// placeholder with no citations.
var simulatedCatalogue = map[string]Answer{
	"best ai productivity tools": {
		Text: "The best AI productivity tools include Notion AI for note-taking and organization, " +
			"Asana for project management with AI features, and ClickUp for comprehensive task management. " +
			"These tools leverage artificial intelligence to enhance workflow automation, smart scheduling, " +
			"and intelligent task prioritization.",
		Citations: []string{
			"https://notion.so/product/ai",
			"https://asana.com/ai",
			"https://clickup.com/features/ai",
		},
	},
	"best crm software": {
		Text: "Leading CRM software solutions include HubSpot CRM for its comprehensive free tier, " +
			"Salesforce for enterprise-scale operations, and Pipedrive for sales-focused teams. " +
			"These platforms offer contact management, pipeline tracking, and automation features.",
		Citations: []string{
			"https://hubspot.com/products/crm",
			"https://salesforce.com",
			"https://pipedrive.com",
		},
	},
}

func simulatedAnswer(query string) *Answer {
	if a, ok := simulatedCatalogue[strings.ToLower(query)]; ok {
		out := a
		return &out
	}
	return &Answer{
		Text: fmt.Sprintf("Here are some options for '%s': Various tools and platforms are available "+
			"in this category, each with unique features and benefits.", query),
	}
}
