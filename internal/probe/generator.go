package probe

import (
	"math/rand"
	"strings"
)

// Sentence pools for generated postings. Scam-like and legitimate pools are
// mixed so the service sees both classes.
var (
	scamTitles = []string{
		"Remote Data Entry, $5000/week, no experience",
		"Earn cash from home today",
		"Urgent hiring: payment processing agent",
		"Easy money, work from home",
	}
	scamText = []string{
		"Send your bank details to get started",
		"Pay a small training fee and start earning",
		"Contact us on WhatsApp for an immediate offer",
		"Wire transfer agents needed, weekly cash payment",
		"No interview required, money sent to your account",
	}
	legitTitles = []string{
		"Senior Backend Engineer",
		"Data Analyst",
		"Product Designer",
		"Customer Success Manager",
	}
	legitText = []string{
		"Established software company serving customers in insurance",
		"Our team designs and develops products used by millions",
		"Bachelor degree and 3 years of experience required",
		"Collaborate with product and engineering on analytics",
		"Competitive salary, benefits and a hybrid office",
	}
)

// emptyFieldRate is the chance a non-title field is left empty.
const emptyFieldRate = 0.2

// GeneratePostings returns n postings derived only from seed. The first
// posting is always the canonical scam example.
func GeneratePostings(n int, seed int64) []JobPosting {
	if n <= 0 {
		return []JobPosting{}
	}
	r := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible test data

	out := make([]JobPosting, n)
	out[0] = ScamExample()
	for i := 1; i < n; i++ {
		titles, text := legitTitles, legitText
		if r.Intn(2) == 0 {
			titles, text = scamTitles, scamText
		}
		out[i] = JobPosting{
			Title:          titles[r.Intn(len(titles))],
			CompanyProfile: field(r, text),
			Description:    field(r, text),
			Requirements:   field(r, text),
		}
	}
	return out
}

// ScamExample is the reference fraudulent posting.
func ScamExample() JobPosting {
	return JobPosting{
		Title:          "Remote Data Entry, $5000/week, no experience",
		CompanyProfile: "",
		Description:    "Send your bank details to get started",
		Requirements:   "",
	}
}

func field(r *rand.Rand, pool []string) string {
	if r.Float64() < emptyFieldRate {
		return ""
	}
	parts := make([]string, 1+r.Intn(2))
	for i := range parts {
		parts[i] = pool[r.Intn(len(pool))]
	}
	return strings.Join(parts, ". ")
}

// reversed returns a reversed copy of in.
func reversed[T any](in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
