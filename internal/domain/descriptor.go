package domain

type Region int

const (
	RegionChina Region = iota
	RegionGlobal
)

func (r Region) String() string {
	switch r {
	case RegionChina:
		return "cn"
	case RegionGlobal:
		return "global"
	}
	return "unknown"
}

// Descriptor holds the identifiers scraped from the record page URL.
// They are required to query the record service on behalf of the current game session.
type Descriptor struct {
	PlayerID    string
	RecordID    string
	ServerID    string
	ResourcesID string
	Language    string
	Region      Region

	// The URL the descriptor was parsed from
	RawURL string
}
