package metadata

type Document struct {
	Name        string      `json:"name"`
	Symbol      string      `json:"symbol"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	ExternalURL string      `json:"external_url,omitempty"`
	Attributes  []Attribute `json:"attributes,omitempty"`
	Properties  *Properties `json:"properties,omitempty"`
}

type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

type Properties struct {
	Category string `json:"category,omitempty"`
	Files    []File `json:"files,omitempty"`
}

type File struct {
	URI  string `json:"uri"`
	Type string `json:"type,omitempty"`
}
