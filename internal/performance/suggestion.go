package performance

// Bucket classifies an accuracy percentage.
type Bucket string

const (
	BucketRemedial      Bucket = "remedial"
	BucketEncouragement Bucket = "encouragement"
	BucketChallenge     Bucket = "challenge"
)

const (
	remedialThreshold  = 50.0
	challengeThreshold = 80.0
)

// Suggestion is the advisory text shown after each answer.
type Suggestion struct {
	Bucket Bucket `json:"bucket"`
	Text   string `json:"text"`
}

var suggestionText = map[Bucket]string{
	BucketRemedial:      "Focus on reviewing the basics to improve your understanding.",
	BucketEncouragement: "You're doing well! Keep practicing to reach mastery.",
	BucketChallenge:     "Excellent work! Consider trying harder questions for a challenge.",
}

// BucketFor maps accuracy to a bucket: below 50 is remedial, below 80 is
// encouragement, anything else is challenge.
func BucketFor(accuracy float64) Bucket {
	switch {
	case accuracy < remedialThreshold:
		return BucketRemedial
	case accuracy < challengeThreshold:
		return BucketEncouragement
	default:
		return BucketChallenge
	}
}

// Suggest returns the suggestion for an accuracy percentage.
func Suggest(accuracy float64) Suggestion {
	b := BucketFor(accuracy)
	return Suggestion{Bucket: b, Text: suggestionText[b]}
}
