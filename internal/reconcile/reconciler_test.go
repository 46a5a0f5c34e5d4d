package reconcile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/disperse-validator/internal/lineparser"
	"github.com/ginjaninja78/disperse-validator/internal/validation"
)

var (
	addrA = "0xAAAA" + strings.Repeat("0", 35) + "1"
	addrB = "0xBBBB" + strings.Repeat("0", 35) + "2"
)

func join(lines ...string) string {
	return strings.Join(lines, "\n")
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want Policy
	}{
		{"", PolicyNone},
		{"none", PolicyNone},
		{"keep-first", PolicyKeepFirst},
		{"KEEP_FIRST", PolicyKeepFirst},
		{"combine-balance", PolicyCombineBalance},
		{" combine ", PolicyCombineBalance},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParsePolicy("shuffle")
	assert.Error(t, err)
}

func TestKeepFirst_DropsExactRepeats(t *testing.T) {
	raw := join(addrA+"=10", addrB+"=3", addrA+"=10", addrA+"=10")

	assert.Equal(t, join(addrA+"=10", addrB+"=3"), KeepFirst(raw))
}

func TestKeepFirst_SameAddressDifferentAmountIsKept(t *testing.T) {
	raw := join(addrA+"=10", addrA+"=5")

	assert.Equal(t, raw, KeepFirst(raw))
}

func TestKeepFirst_KeyUsesRawAmountToken(t *testing.T) {
	raw := join(addrA+"=10", addrA+"=10.0")

	assert.Equal(t, raw, KeepFirst(raw))
}

func TestKeepFirst_KeyIsCaseSensitive(t *testing.T) {
	raw := join(addrA+"=10", strings.ToLower(addrA)+"=10")

	assert.Equal(t, raw, KeepFirst(raw))
}

func TestKeepFirst_KeepsOriginalLineText(t *testing.T) {
	raw := join(addrA+" , 10", addrA+"=10")

	assert.Equal(t, addrA+" , 10", KeepFirst(raw))
}

func TestKeepFirst_PassesThroughIncompleteLines(t *testing.T) {
	raw := join("notanaddress", "", addrA+"=1", "notanaddress", addrA+"=1")

	assert.Equal(t, join("notanaddress", "", addrA+"=1", "notanaddress"), KeepFirst(raw))
}

func TestKeepFirst_IsIdempotent(t *testing.T) {
	raw := join(addrA+"=1", addrB+"=2", addrA+"=1", "junk", addrB+"=2", addrB+"=3")

	once := KeepFirst(raw)
	assert.Equal(t, once, KeepFirst(once))
}

func TestCombineBalance_ExampleFromProductDocs(t *testing.T) {
	raw := join(addrA+"=10", strings.ToLower(addrA)+"=5", "notanaddress", addrB+"=3")

	got := CombineBalance(raw)

	assert.Equal(t, join(addrA+"=15", addrB+"=3"), got)
}

func TestCombineBalance_FirstOccurrenceCasingAndOrder(t *testing.T) {
	lower := strings.ToLower(addrA)
	raw := join(addrB+"=1", lower+"=2", addrA+"=3", addrB+"=0.5")

	assert.Equal(t, join(addrB+"=1.5", lower+"=5"), CombineBalance(raw))
}

func TestCombineBalance_FloatSemantics(t *testing.T) {
	raw := join(addrA+"=0.1", addrA+"=0.2")

	assert.Equal(t, addrA+"=0.30000000000000004", CombineBalance(raw))
}

func TestCombineBalance_DropsIncompleteLines(t *testing.T) {
	raw := join("", "notanaddress", addrA+"=1")

	assert.Equal(t, addrA+"=1", CombineBalance(raw))
}

func TestCombineBalance_UnparseableAmountPoisonsTotal(t *testing.T) {
	raw := join(addrA+"=1", addrA+"=abc")

	got := CombineBalance(raw)
	assert.Equal(t, addrA+"=NaN", got)

	result := validation.Validate(got)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, validation.AmountInvalid, result.Errors[0].Kind)
}

func TestCombineBalance_OneLinePerDistinctAddress(t *testing.T) {
	raw := join(addrA+"=1", addrB+"=2", strings.ToLower(addrB)+"=3", addrA+"=4", "x", addrA+"=5")

	got := CombineBalance(raw)
	lines := lineparser.Parse(got)

	require.Len(t, lines, 2)
	totals := map[string]string{}
	for _, line := range lines {
		totals[validation.NormalizeAddress(line.Candidate.Address)] = line.Candidate.Amount
	}
	assert.Equal(t, "10", totals[strings.ToLower(addrA)])
	assert.Equal(t, "5", totals[strings.ToLower(addrB)])
}

func TestCombineBalance_NoValidLines(t *testing.T) {
	assert.Equal(t, "", CombineBalance("junk\n\nmore junk"))
}

func TestResolve_RevalidatesRewrittenText(t *testing.T) {
	raw := join(addrA+"=10", strings.ToLower(addrA)+"=5", "notanaddress", addrB+"=3")

	before := validation.Validate(raw)
	require.True(t, before.HasDuplicates())

	for _, policy := range []Policy{PolicyNone, PolicyKeepFirst, PolicyCombineBalance} {
		t.Run(string(policy), func(t *testing.T) {
			outcome, err := Resolve(raw, policy)
			require.NoError(t, err)

			assert.Equal(t, policy, outcome.Policy)
			assert.Equal(t, validation.Validate(outcome.Text), outcome.Result)
			assert.Equal(t, 4, outcome.LinesBefore)
			assert.Equal(t, lineparser.LineCount(outcome.Text), outcome.LinesAfter)
		})
	}
}

func TestResolve_CombineBalanceClearsDuplicates(t *testing.T) {
	raw := join(addrA+"=10", strings.ToLower(addrA)+"=5", "notanaddress", addrB+"=3")

	outcome, err := Resolve(raw, PolicyCombineBalance)
	require.NoError(t, err)

	assert.True(t, outcome.Result.Valid())
	assert.Equal(t, 2, outcome.Removed())
}

func TestResolve_KeepFirstClearsDuplicatesWithSingleAmounts(t *testing.T) {
	raw := join(addrA+"=10", addrB+"=3", addrA+"=10")

	outcome, err := Resolve(raw, PolicyKeepFirst)
	require.NoError(t, err)

	assert.False(t, outcome.Result.HasDuplicates())
	assert.Equal(t, 1, outcome.Removed())
}

func TestReconciler_UsesConfiguredValidator(t *testing.T) {
	raw := join(addrA+"=1=2", addrB+"=1")

	outcome, err := New(validation.New(validation.Options{ReportExtraFields: true})).Resolve(raw, PolicyKeepFirst)
	require.NoError(t, err)

	require.Len(t, outcome.Result.Errors, 1)
	assert.Equal(t, validation.ExtraFields, outcome.Result.Errors[0].Kind)
}

func TestReconciler_CaseSensitiveCombineKeepsCasingVariantsApart(t *testing.T) {
	upper := "0xAAAA" + strings.Repeat("0", 35) + "1"
	lower := strings.ToLower(upper)
	raw := join(upper+"=1", lower+"=2", upper+"=3")

	validator := validation.New(validation.Options{CaseSensitiveDuplicates: true})
	outcome, err := New(validator).Resolve(raw, PolicyCombineBalance)
	require.NoError(t, err)

	assert.Equal(t, join(upper+"=4", lower+"=2"), outcome.Text)
	assert.True(t, outcome.Result.Valid())

	// The package-level function keeps the default, case-insensitive merge.
	assert.Equal(t, upper+"=6", CombineBalance(raw))
}

func TestApply_UnknownPolicy(t *testing.T) {
	_, err := Apply("x", Policy("bogus"))
	assert.Error(t, err)

	_, err = Resolve("x", Policy("bogus"))
	assert.Error(t, err)
}
