package tweet

// Entities are annotated spans over a post's text. Start and End are
// codepoint offsets into Text (End exclusive). Spans of different entities
// never overlap, per the API contract.
type Entities struct {
	Mentions []Mention
	Hashtags []Tag
	Cashtags []Tag
	URLs     []URL
}

type Mention struct {
	Start    int
	End      int
	Username string
}

type Tag struct {
	Start int
	End   int
	Tag   string
}

// URL maps a short URL token embedded in the text to its human readable
// form. Photos attached to a post each carry a URL entity, so the same
// ExpandedURL can appear more than once.
type URL struct {
	Start       int
	End         int
	URL         string
	ExpandedURL string
	DisplayURL  string
	MediaKey    string
}

func (e *Entities) Empty() bool {
	return e == nil || (len(e.Mentions) == 0 && len(e.Hashtags) == 0 && len(e.Cashtags) == 0 && len(e.URLs) == 0)
}
