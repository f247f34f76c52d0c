package models

// Alert is one validated IDS alert reduced to the fields used for triage.
type Alert struct {
	SrcIP     string `json:"src_ip"`
	DestIP    string `json:"dest_ip"`
	DestPort  int    `json:"dest_port"`
	Signature string `json:"signature"`
}
