package mcp

// RecommendInput defines the input for the recommend tool.
type RecommendInput struct {
	Message string `json:"message" jsonschema:"Free-text restaurant request (e.g. 'cheap japanese near tanjong pagar')"`
}

// RecommendOutput defines the output for the recommend tool.
type RecommendOutput struct {
	Response   string      `json:"response" jsonschema:"Formatted recommendation text"`
	Cuisine    string      `json:"cuisine,omitempty" jsonschema:"Resolved cuisine tag"`
	Area       string      `json:"area,omitempty" jsonschema:"Resolved area tag"`
	Budget     string      `json:"budget,omitempty" jsonschema:"Resolved budget tag"`
	Candidates []PlaceItem `json:"candidates,omitempty" jsonschema:"Candidate places after intersection and dedup"`
}

// PlaceItem provides a list view of a candidate place.
type PlaceItem struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	MapLink string `json:"map_link,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// ListTagsInput defines the input for the list_tags tool.
type ListTagsInput struct {
	Category string `json:"category,omitempty" jsonschema:"Filter by category: 'cuisine', 'area', 'budget', or empty for all"`
}

// ListTagsOutput defines the output for the list_tags tool.
type ListTagsOutput struct {
	Cuisines []string `json:"cuisines,omitempty" jsonschema:"Cuisine tag names"`
	Areas    []string `json:"areas,omitempty" jsonschema:"Area tag names"`
	Budgets  []string `json:"budgets,omitempty" jsonschema:"Price tier tag names"`
	Count    int      `json:"count" jsonschema:"Total number of tags returned"`
}
