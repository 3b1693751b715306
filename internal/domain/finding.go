package domain

import "time"

// FindingType enumerates the account-level anomalies the findings engine
// detects.
type FindingType string

const (
	FindingCPASpike               FindingType = "CPA_SPIKE"
	FindingROASDrop               FindingType = "ROAS_DROP"
	FindingCVRDrop                FindingType = "CVR_DROP"
	FindingCTRDrop                FindingType = "CTR_DROP"
	FindingSpendConcentration     FindingType = "SPEND_CONCENTRATION"
	FindingNoConversionsHighSpend FindingType = "NO_CONVERSIONS_HIGH_SPEND"
	FindingVolatility             FindingType = "VOLATILITY"
	FindingUnderfundedWinners     FindingType = "UNDERFUNDED_WINNERS"
)

// Severity grades a finding.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityHealthy  Severity = "HEALTHY"
)

// FindingSchemaVersion is stamped on every finding so downstream consumers
// can detect shape changes.
const FindingSchemaVersion = 2

// FindingEvidence is the numeric backing of a finding: the value now, the
// value in the prior period, the observed change, and the threshold it
// crossed.
type FindingEvidence struct {
	Current   float64 `json:"current"`
	Previous  float64 `json:"previous"`
	Delta     float64 `json:"delta"`
	Threshold float64 `json:"threshold"`
}

// Finding is one detected anomaly for one client. Append-only: every run
// produces a fresh batch, nothing is updated in place.
type Finding struct {
	ID            string          `json:"id" db:"id"`
	ClientID      string          `json:"client_id" db:"client_id"`
	Type          FindingType     `json:"type" db:"type"`
	Title         string          `json:"title" db:"title"`
	Description   string          `json:"description" db:"description"`
	Severity      Severity        `json:"severity" db:"severity"`
	Status        string          `json:"status" db:"status"`
	Entities      []string        `json:"entities" db:"entities"`
	Evidence      FindingEvidence `json:"evidence" db:"evidence"`
	SchemaVersion int             `json:"schema_version" db:"schema_version"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
