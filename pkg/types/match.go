package types

type MatchType string

const (
	MatchTypeExactSameCity      MatchType = "Exact Match - Same City"
	MatchTypeCompatibleSameCity MatchType = "Compatible Match - Same City"
	MatchTypeExactOtherCity     MatchType = "Exact Match - Other City"
)

// Priority is lower for better matches.
func (m MatchType) Priority() int {
	switch m {
	case MatchTypeExactSameCity:
		return 1
	case MatchTypeCompatibleSameCity:
		return 2
	case MatchTypeExactOtherCity:
		return 3
	}
	return 0
}

type MatchedDonor struct {
	Donor
	MatchType MatchType `json:"matchType"`
	Priority  int       `json:"priority"`
}

type MatchingDonors struct {
	ExactMatches      []*MatchedDonor `json:"exactMatches"`
	CompatibleMatches []*MatchedDonor `json:"compatibleMatches"`
	OtherCityMatches  []*MatchedDonor `json:"otherCityMatches"`
}

type MatchResult struct {
	MatchingDonors MatchingDonors `json:"matchingDonors"`
	TotalMatches   int            `json:"totalMatches"`
	Message        string         `json:"message"`
}

// BloodRequestResponse is the body returned for a successful blood request.
type BloodRequestResponse struct {
	Success   bool   `json:"success"`
	RequestID string `json:"requestId"`
	MatchResult
}

type Statistics struct {
	TotalDonors     int64 `json:"totalDonors"`
	TotalRequests   int64 `json:"totalRequests"`
	TotalLivesSaved int64 `json:"totalLivesSaved"`
	CitiesCovered   int64 `json:"citiesCovered"`
}
