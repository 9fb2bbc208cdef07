package core

import "time"

// ClaimType classifies a factual claim extracted from an article.
type ClaimType string

const (
	// ClaimNumerical covers percentages, measurements and other figures.
	ClaimNumerical ClaimType = "numerical"
	// ClaimTechnical covers statements about technologies or methods.
	ClaimTechnical ClaimType = "technical"
	// ClaimComparative covers comparisons between approaches.
	ClaimComparative ClaimType = "comparative"
	// ClaimPrinciple covers physical principles and formulas.
	ClaimPrinciple ClaimType = "principle"
)

// Claim is one discrete factual statement requiring verification. Claims are
// ephemeral: they live only for the duration of a single audit pass.
type Claim struct {
	ID      int       `json:"claim_id"`
	Text    string    `json:"claim_text"`
	Type    ClaimType `json:"claim_type"`
	Section string    `json:"section"`
}

// ClaimSet is the structured-output envelope for claim extraction.
type ClaimSet struct {
	Claims []Claim `json:"claims"`
}

// Recommendation is the auditor's disposition for one claim.
type Recommendation string

const (
	// RecommendKeep leaves the claim as written.
	RecommendKeep Recommendation = "keep"
	// RecommendModify asks for a more precise restatement.
	RecommendModify Recommendation = "modify"
	// RecommendRemove marks the claim unverifiable.
	RecommendRemove Recommendation = "remove"
)

// Verdict is the structured-output envelope for one verification call.
type Verdict struct {
	Verified           bool    `json:"verified"`
	Confidence         float64 `json:"confidence"`
	SupportingEvidence string  `json:"supporting_evidence,omitempty"`
	Issue              string  `json:"issue,omitempty"`
	Recommendation     string  `json:"recommendation"`
}

// Verification is the auditor's final record for one claim.
type Verification struct {
	ClaimID            int            `json:"claim_id"`
	ClaimText          string         `json:"claim_text"`
	Verified           bool           `json:"verified"`
	Confidence         float64        `json:"confidence"`
	SupportingEvidence string         `json:"supporting_evidence,omitempty"`
	Issue              string         `json:"issue,omitempty"`
	Recommendation     Recommendation `json:"recommendation"`
}

// AuditStatus is the terminal verdict of an audit pass.
type AuditStatus string

const (
	// AuditPassed means the verification rate met the publication threshold.
	AuditPassed AuditStatus = "PASSED"
	// AuditFailed means too many claims could not be verified.
	AuditFailed AuditStatus = "FAILED"
)

// AuditReport is computed once from the full verification set and never
// mutated afterwards. It is the pipeline's sole publish/reject gate.
type AuditReport struct {
	Status              AuditStatus    `json:"audit_status"`
	VerificationRate    float64        `json:"verification_rate"`
	TotalClaims         int            `json:"total_claims"`
	VerifiedClaims      int            `json:"verified_claims"`
	UnverifiedClaims    int            `json:"unverified_claims"`
	MinimumRequiredRate float64        `json:"minimum_required_rate"`
	Verifications       []Verification `json:"verifications"`
	Recommendations     []string       `json:"recommendations"`
	AuditedAt           time.Time      `json:"audited_at"`
}

// Passed reports whether the article cleared the gate.
func (r *AuditReport) Passed() bool { return r.Status == AuditPassed }
