// Package audit implements the anti-hallucination verification stage. Every
// technical claim in a finished article is extracted and independently
// verified against the dossier's technical content at temperature zero; the
// article passes only when enough claims verify. Passing articles gain a
// references section derived from the dossier.
package audit

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/contentmesh/contentmesh/core"
	"github.com/contentmesh/contentmesh/logging"
	"github.com/contentmesh/contentmesh/model"
	"github.com/contentmesh/contentmesh/structured"
)

// MinimumVerificationRate is the percentage of claims that must verify for
// an article to pass.
const MinimumVerificationRate = 80.0

// Options configure an Auditor.
type Options struct {
	Logger logging.Logger
}

// Auditor verifies articles against their source dossier.
type Auditor struct {
	contract *structured.Contract
	opts     Options
}

// NewAuditor creates an Auditor over the given structured output contract.
func NewAuditor(contract *structured.Contract, optFns ...func(o *Options)) *Auditor {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Auditor{contract: contract, opts: opts}
}

// Run audits the article. On a pass the references section is appended to
// the article and its metadata is updated; on a fail the article is left
// untouched apart from the audit flag. An article that yields no checkable
// claims passes vacuously; a failed extraction call fails the audit instead,
// since an article that could not be checked is not a verified article.
func (a *Auditor) Run(ctx context.Context, article *core.Article, d *core.Dossier) (*core.AuditReport, error) {
	a.opts.Logger.Info("Starting anti-hallucination audit", "title", article.Title)

	claims, err := a.extractClaims(ctx, article.FullText)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		a.opts.Logger.Error("Claim extraction failed, failing audit", "error", err.Error())
		article.Metadata.AuditPassed = false
		return &core.AuditReport{
			Status:              core.AuditFailed,
			VerificationRate:    0,
			MinimumRequiredRate: MinimumVerificationRate,
			Recommendations:     []string{"Claim extraction failed, article could not be verified"},
			AuditedAt:           time.Now(),
		}, nil
	}

	evidence := verificationEvidence(d)
	verifications := make([]core.Verification, 0, len(claims))
	for _, claim := range claims {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		verifications = append(verifications, a.verifyClaim(ctx, claim, evidence))
	}

	total := len(verifications)
	verified := 0
	for _, v := range verifications {
		if v.Verified {
			verified++
		}
	}

	rate := 100.0
	if total > 0 {
		rate = math.Round(float64(verified)/float64(total)*100*100) / 100
	}
	passed := rate >= MinimumVerificationRate

	status := core.AuditFailed
	if passed {
		status = core.AuditPassed
		article.FullText += "\n\n" + References(d)
		article.Metadata.ReferencesAdded = true
	}
	article.Metadata.AuditPassed = passed

	report := &core.AuditReport{
		Status:              status,
		VerificationRate:    rate,
		TotalClaims:         total,
		VerifiedClaims:      verified,
		UnverifiedClaims:    total - verified,
		MinimumRequiredRate: MinimumVerificationRate,
		Verifications:       verifications,
		Recommendations:     recommendations(verifications),
		AuditedAt:           time.Now(),
	}

	a.opts.Logger.Info("Audit completed",
		"status", string(status), "rate", rate, "claims", total)
	return report, nil
}

// extractClaims pulls checkable technical claims out of the article text.
func (a *Auditor) extractClaims(ctx context.Context, articleText string) ([]core.Claim, error) {
	temp := float32(0)
	req := model.Request{
		System:      "You are a rigorous technical auditor.",
		Messages:    []core.Message{core.UserMessage(extractPrompt(articleText))},
		Temperature: &temp,
		MaxTokens:   2048,
		SchemaName:  "claim_set",
	}

	var set core.ClaimSet
	if _, err := a.contract.Generate(ctx, req, &set); err != nil {
		return nil, err
	}
	a.opts.Logger.Info("Claims extracted", "count", len(set.Claims))
	return set.Claims, nil
}

// verifyClaim checks one claim against the dossier evidence. Any failure in
// the verification call itself counts as unverified with a removal
// recommendation; the audit never errors out on a single claim.
func (a *Auditor) verifyClaim(ctx context.Context, claim core.Claim, evidence string) core.Verification {
	temp := float32(0)
	req := model.Request{
		System:      "You are a rigorous technical auditor.",
		Messages:    []core.Message{core.UserMessage(verifyPrompt(claim.Text, evidence))},
		Temperature: &temp,
		MaxTokens:   1024,
		SchemaName:  "claim_verdict",
	}

	var verdict core.Verdict
	if _, err := a.contract.Generate(ctx, req, &verdict); err != nil {
		a.opts.Logger.Error("Claim verification failed",
			"claim", claim.ID, "error", err.Error())
		return core.Verification{
			ClaimID:        claim.ID,
			ClaimText:      claim.Text,
			Verified:       false,
			Confidence:     0,
			Issue:          fmt.Sprintf("verification error: %v", err),
			Recommendation: core.RecommendRemove,
		}
	}

	v := core.Verification{
		ClaimID:            claim.ID,
		ClaimText:          claim.Text,
		Verified:           verdict.Verified,
		Confidence:         verdict.Confidence,
		SupportingEvidence: verdict.SupportingEvidence,
		Issue:              verdict.Issue,
		Recommendation:     parseRecommendation(verdict.Recommendation),
	}
	if v.Verified {
		a.opts.Logger.Info("Claim verified", "claim", claim.ID)
	} else {
		a.opts.Logger.Warn("Claim not verifiable", "claim", claim.ID, "issue", v.Issue)
	}
	return v
}

// References renders the technical references section for the dossier. Every
// document contributes one anonymized entry; an empty dossier still yields a
// fallback reference.
func References(d *core.Dossier) string {
	var refs []string
	num := 1
	for _, doc := range d.AllDocuments() {
		docType := doc.DocType
		if docType == "" || docType == "unknown" {
			docType = "Technical Document"
		}
		refs = append(refs, fmt.Sprintf("[%d] %s - %s Engineering",
			num, titleCase(docType), titleCase(doc.Discipline)))
		num++
	}
	if len(refs) == 0 {
		refs = append(refs, "[1] Internal Technical Documentation")
	}

	return "## Technical References\n\n" +
		strings.Join(refs, "\n") +
		"\n\n*All references come from the internal technical knowledge base.*"
}

func recommendations(verifications []core.Verification) []string {
	var remove, modify int
	for _, v := range verifications {
		switch v.Recommendation {
		case core.RecommendRemove:
			remove++
		case core.RecommendModify:
			modify++
		}
	}

	var out []string
	if remove > 0 {
		out = append(out, fmt.Sprintf("Remove %d unverifiable claims", remove))
	}
	if modify > 0 {
		out = append(out, fmt.Sprintf("Modify %d claims for greater precision", modify))
	}
	if len(out) == 0 {
		out = append(out, "Article technically sound, ready for publication")
	}
	return out
}

// verificationEvidence joins the technical content of every dossier document.
// Only sanitized technical content is ever shown to the verifier.
func verificationEvidence(d *core.Dossier) string {
	var parts []string
	for _, doc := range d.AllDocuments() {
		if doc.TechnicalContent != "" {
			parts = append(parts, doc.TechnicalContent)
		}
	}
	return strings.Join(parts, "\n\n")
}

func parseRecommendation(s string) core.Recommendation {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keep", "maintain":
		return core.RecommendKeep
	case "modify":
		return core.RecommendModify
	default:
		return core.RecommendRemove
	}
}

// titleCase capitalizes the first letter of each underscore- or
// space-separated word, for reference display.
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func extractPrompt(articleText string) string {
	return fmt.Sprintf(`ARTICLE:
%s

TASK:
Extract every technical claim that requires verification.

Include:
- Numerical data (percentages, measurements, ratings)
- Claims about technologies or methods
- Technical comparisons
- Physical principles or formulas

Exclude:
- General opinions
- Obvious statements

Return a JSON object with a "claims" array; each claim has claim_id,
claim_text, claim_type (one of "numerical", "technical", "comparative",
"principle") and section.`, articleText)
}

func verifyPrompt(claimText, evidence string) string {
	return fmt.Sprintf(`VERIFIED SOURCES (knowledge dossier):
%s

CLAIM TO VERIFY:
"%s"

TASK:
Determine whether this claim is verifiable with the provided sources.

CRITERIA:
- Is the claim backed by the sources?
- Do numerical values match?
- Are the technical principles correct?

Return a JSON object with verified (boolean), confidence (0.0-1.0),
supporting_evidence (verbatim quote when verified), issue (description when
not verified) and recommendation ("keep", "modify" or "remove").`, evidence, claimText)
}
