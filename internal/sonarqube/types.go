package sonarqube

// searchResponse is the shape of /api/issues/search we consume. Fields
// beyond what reconciliation needs are ignored.
type searchResponse struct {
	Total  int     `json:"total"`
	Page   int     `json:"p"`
	Size   int     `json:"ps"`
	Issues []Issue `json:"issues"`
}

// Issue is a raw finding from the server. The server-side Key is its
// internal identifier and is deliberately not used for local identity;
// the store derives its own fingerprint.
type Issue struct {
	Key          string   `json:"key"`
	Rule         string   `json:"rule"`
	Severity     string   `json:"severity"`
	Type         string   `json:"type"`
	Component    string   `json:"component"`
	Line         int      `json:"line"`
	Message      string   `json:"message"`
	Tags         []string `json:"tags"`
	CreationDate string   `json:"creationDate"`
}
