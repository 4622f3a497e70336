package domain

import "encoding/json"

// Block is one block header as reported by GTAS_getBlock.
// Timestamps are kept in the node's own format.
type Block struct {
	Height  uint64 `json:"height"`
	Hash    string `json:"hash"`
	PreHash string `json:"pre_hash"`
	CurTime string `json:"cur_time"`
	PreTime string `json:"pre_time"`
	Castor  string `json:"castor"`
	GroupID string `json:"group_id"`
	Txs     uint64 `json:"txs"`
	QN      uint64 `json:"qn"`
	TotalQN uint64 `json:"total_qn"`
}

// BlockDetail is the GTAS_blockDetail payload. Only the header is decoded;
// transaction and bonus sections are passed through to renderers untouched.
type BlockDetail struct {
	Block
	GenBonusTx   json.RawMessage `json:"gen_bonus_tx,omitempty"`
	Trans        json.RawMessage `json:"trans,omitempty"`
	BodyBonusTxs json.RawMessage `json:"body_bonus_txs,omitempty"`
	MinerBonus   json.RawMessage `json:"miner_bonus,omitempty"`
	PreTotalQN   uint64          `json:"pre_total_qn,omitempty"`
}
