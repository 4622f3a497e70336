package domain

// Default node status sentinels. Real nodes may localize these, see
// config.NodeConfig.
const (
	NodeStatusRunning = "running"
	NodeStatusStopped = "stopped"
)

// Dashboard is the GTAS_dashboard payload.
type Dashboard struct {
	BlockHeight uint64     `json:"block_height"`
	GroupHeight uint64     `json:"group_height"`
	WorkGNum    int        `json:"work_g_num"`
	NodeInfo    NodeInfo   `json:"node_info"`
	Conns       []ConnInfo `json:"conns"`
}

// NodeInfo describes the node answering the dashboard call.
type NodeInfo struct {
	ID        string     `json:"id"`
	Balance   float64    `json:"balance"`
	Status    string     `json:"status"`
	NType     string     `json:"n_type"`
	WGroupNum int        `json:"w_group_num"`
	AGroupNum int        `json:"a_group_num"`
	TxPoolNum int        `json:"tx_pool_num"`
	MortGages []MortGage `json:"mort_gages"`
}

// MortGage is one stake entry of the node.
type MortGage struct {
	Stake       uint64 `json:"stake"`
	ApplyHeight uint64 `json:"apply_height"`
	AbortHeight uint64 `json:"abort_height"`
	Type        string `json:"type"`
	Status      string `json:"status,omitempty"`
}

// ConnInfo is a peer connection of the node.
type ConnInfo struct {
	ID      string `json:"id"`
	IP      string `json:"ip"`
	TCPPort string `json:"tcp_port"`
}
