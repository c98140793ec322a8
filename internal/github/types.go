package github

// File statuses reported by the pull request files API.
const (
	StatusAdded    = "added"
	StatusModified = "modified"
	StatusRemoved  = "removed"
	StatusRenamed  = "renamed"
	StatusChanged  = "changed"
)

// ChangedFile is one entry of a pull request's file list.
type ChangedFile struct {
	Filename         string `json:"filename"`
	PreviousFilename string `json:"previousFilename,omitempty"`
	Status           string `json:"status"`
	Additions        int    `json:"additions"`
	Deletions        int    `json:"deletions"`
	Changes          int    `json:"changes"`
	Patch            string `json:"patch,omitempty"`
	// Binary is set when GitHub returned no patch for a file without line
	// changes, which is how binary blobs show up.
	Binary bool `json:"binary,omitempty"`
}

// HasContentAtHead reports whether the file exists at the PR head commit.
func (f ChangedFile) HasContentAtHead() bool {
	switch f.Status {
	case StatusAdded, StatusModified, StatusChanged, StatusRenamed:
		return true
	}
	return false
}
