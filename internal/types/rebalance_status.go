package types

// Enum values for Rebalance status
type RebalanceStatus string

const (
	RebalanceStatusSuccess RebalanceStatus = "SUCCESS"
	RebalanceStatusFailed  RebalanceStatus = "FAILED"
)

func (s RebalanceStatus) String() string {
	return string(s)
}
