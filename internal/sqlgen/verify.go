package sqlgen

import (
	"github.com/dbaworks/awr-advisor/internal/awrmodel"
	"github.com/dbaworks/awr-advisor/internal/decision"
)

// VerificationResult reports whether two signal sets provably produced
// different generated output, proving the generator is signal-driven
// rather than templated per category.
type VerificationResult struct {
	SignalsDifferent   bool
	CategoriesDiffer   bool
	FingerprintsDiffer bool
	SQLTextDiffers     bool
	Category1          awrmodel.SQLCategory
	Category2          awrmodel.SQLCategory
	Fingerprint1       string
	Fingerprint2       string
	ProofPassed        bool
	CommandsCount1     int
	CommandsCount2     int
}

// VerifyDynamicGeneration proves that two distinct signal sets never
// collapse to identical generated SQL text, even when they land in the
// same category. This strengthens the check beyond "categories differ OR
// SQL differs": when the categories match, SQL text differing is
// mandatory, not merely sufficient, since two same-category SQL ids with
// different fingerprints must never be mistaken for one another from
// generated text alone.
func VerifyDynamicGeneration(s1, s2 awrmodel.NormalizedSignals) VerificationResult {
	d1 := decision.Evaluate(s1)
	d2 := decision.Evaluate(s2)

	cmds1 := GenerateAll(d1)
	cmds2 := GenerateAll(d2)

	fp1 := Fingerprint(s1)
	fp2 := Fingerprint(s2)

	sqlText1 := joinSQL(cmds1)
	sqlText2 := joinSQL(cmds2)

	categoriesDiffer := d1.Category != d2.Category
	sqlDiffers := sqlText1 != sqlText2
	fpDiffers := fp1 != fp2

	proof := categoriesDiffer || sqlDiffers
	if !categoriesDiffer {
		// Same category: the only acceptable proof is that the SQL text
		// itself diverged. A fingerprint difference alone is not enough,
		// it must actually show up in the generated artifacts.
		proof = sqlDiffers
	}

	return VerificationResult{
		SignalsDifferent:   s1 != s2,
		CategoriesDiffer:   categoriesDiffer,
		FingerprintsDiffer: fpDiffers,
		SQLTextDiffers:     sqlDiffers,
		Category1:          d1.Category,
		Category2:          d2.Category,
		Fingerprint1:       fp1,
		Fingerprint2:       fp2,
		ProofPassed:        proof,
		CommandsCount1:     len(cmds1),
		CommandsCount2:     len(cmds2),
	}
}

func joinSQL(cmds []awrmodel.GeneratedSQL) string {
	s := ""
	for _, c := range cmds {
		s += c.SQL
	}
	return s
}
