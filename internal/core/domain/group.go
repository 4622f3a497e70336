package domain

// Group is a consensus group as reported by GTAS_getGroupsAfter.
// GroupID is the identity; Height is the group's formation index.
type Group struct {
	GroupID       string   `json:"group_id"`
	Height        uint64   `json:"height"`
	Dummy         bool     `json:"dummy"`
	Parent        string   `json:"parent"`
	Pre           string   `json:"pre"`
	BeginHeight   uint64   `json:"begin_height"`
	DismissHeight uint64   `json:"dismiss_height"`
	Members       []string `json:"members"`
}
