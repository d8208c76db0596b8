package model

// Classification is the structured verdict derived from the free text
// of a task. It is fully determined by the input text.
type Classification struct {
	Category         Category          `json:"category"`
	Priority         Priority          `json:"priority"`
	SuggestedActions []string          `json:"suggested_actions"`
	Entities         ExtractedEntities `json:"extracted_entities"`
}

type ExtractedEntities struct {
	Dates  []string `json:"dates"`
	People []string `json:"people"`
}
