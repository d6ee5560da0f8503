package ai

import (
	"regexp"
	"strings"
)

// SentimentResult classifies the emotional tone of one partner message.
type SentimentResult struct {
	Sentiment  string
	Confidence float64
	Indicators []string
}

type sentimentPattern struct {
	re        *regexp.Regexp
	indicator string
}

var positivePatterns = []sentimentPattern{
	{regexp.MustCompile(`\b(great|awesome|amazing|wonderful|fantastic|excellent)\b`), "strong_positive"},
	{regexp.MustCompile(`\b(good|nice|cool|interesting|love|like|enjoy)\b`), "positive"},
	{regexp.MustCompile(`\b(thanks|thank you|appreciate)\b`), "gratitude"},
	{regexp.MustCompile(`(haha|lol|hehe)`), "humor"},
	{regexp.MustCompile(`\b(agree|yes|exactly|right|true)\b`), "agreement"},
	{regexp.MustCompile(`![^?]|!$`), "excitement"},
}

var negativePatterns = []sentimentPattern{
	{regexp.MustCompile(`\b(terrible|horrible|awful|worst|hate)\b`), "strong_negative"},
	{regexp.MustCompile(`\b(bad|annoying|frustrating|boring|disappointed)\b`), "negative"},
	{regexp.MustCompile(`(don't like|not good|not great)`), "mild_negative"},
	{regexp.MustCompile(`\b(sorry|apologize)\b`), "apology"},
	{regexp.MustCompile(`(confused|don't understand|unclear)`), "confusion"},
	{regexp.MustCompile(`\b(sad|upset|worried|anxious)\b`), "distress"},
	{regexp.MustCompile(`\?{2,}`), "uncertainty"},
}

var engagementPatterns = []sentimentPattern{
	{regexp.MustCompile(`\?$`), "question"},
	{regexp.MustCompile(`\b(what|how|why|when|where|who)\b.*\?`), "inquiry"},
	{regexp.MustCompile(`\b(tell me|share|explain|describe)\b`), "request"},
	{regexp.MustCompile(`\b(think|believe|feel|wonder)\b`), "reflection"},
}

var disengagementPatterns = []sentimentPattern{
	{regexp.MustCompile(`^(ok|okay|sure|fine|mhm|hmm)\.?$`), "minimal_response"},
	{regexp.MustCompile(`^(yes|no|maybe)\.?$`), "short_response"},
	{regexp.MustCompile(`\b(whatever|idk|dunno)\b`), "dismissive"},
}

// AnalyzeSentiment runs the keyword classifier over one message. It is
// deliberately cheap: it runs on every partner turn inside the response
// pipeline.
func AnalyzeSentiment(text string) SentimentResult {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	if trimmed == "" {
		return SentimentResult{Sentiment: "neutral", Confidence: 0.5, Indicators: []string{"empty_message"}}
	}

	var indicators []string
	var positive, negative, engagement float64

	for _, p := range positivePatterns {
		if p.re.MatchString(trimmed) {
			indicators = append(indicators, p.indicator)
			if strings.HasPrefix(p.indicator, "strong") {
				positive += 2
			} else {
				positive++
			}
		}
	}
	for _, p := range negativePatterns {
		if p.re.MatchString(trimmed) {
			indicators = append(indicators, p.indicator)
			if strings.HasPrefix(p.indicator, "strong") {
				negative += 2
			} else {
				negative++
			}
		}
	}
	for _, p := range engagementPatterns {
		if p.re.MatchString(trimmed) {
			indicators = append(indicators, p.indicator)
			engagement++
		}
	}
	for _, p := range disengagementPatterns {
		if p.re.MatchString(trimmed) {
			indicators = append(indicators, p.indicator)
			engagement--
		}
	}

	sentiment, confidence := scoreSentiment(positive, negative, engagement)
	return SentimentResult{Sentiment: sentiment, Confidence: confidence, Indicators: indicators}
}

func scoreSentiment(positive, negative, engagement float64) (string, float64) {
	total := positive + negative
	if total == 0 {
		switch {
		case engagement > 0:
			return "neutral_engaged", 0.6
		case engagement < 0:
			return "neutral_disengaged", 0.6
		default:
			return "neutral", 0.5
		}
	}

	var sentiment string
	var confidence float64
	switch {
	case positive > negative*1.5:
		sentiment = "positive"
		confidence = min(0.9, 0.5+(positive-negative)*0.1)
	case negative > positive*1.5:
		sentiment = "negative"
		confidence = min(0.9, 0.5+(negative-positive)*0.1)
	case positive > 0 && negative > 0:
		sentiment, confidence = "mixed", 0.6
	default:
		sentiment, confidence = "neutral", 0.5
	}

	if engagement > 2 {
		if sentiment == "positive" {
			sentiment = "enthusiastic"
		} else if sentiment == "neutral" {
			sentiment = "engaged"
		}
	} else if engagement < -1 && sentiment == "neutral" {
		sentiment = "disengaged"
	}
	return sentiment, confidence
}

// SentimentTrend classifies the direction of recent sentiments.
func SentimentTrend(sentiments []string) string {
	if len(sentiments) < 2 {
		return "stable"
	}

	positiveSet := map[string]bool{"positive": true, "enthusiastic": true, "engaged": true}
	negativeSet := map[string]bool{"negative": true, "disengaged": true, "frustrated": true}

	recent := sentiments[len(sentiments)-2:]
	older := sentiments[:len(sentiments)-2]

	count := func(set map[string]bool, list []string) int {
		n := 0
		for _, s := range list {
			if set[s] {
				n++
			}
		}
		return n
	}

	recentPos, recentNeg := count(positiveSet, recent), count(negativeSet, recent)
	olderPos, olderNeg := count(positiveSet, older), count(negativeSet, older)

	switch {
	case recentPos > recentNeg && recentPos > olderPos:
		return "improving"
	case recentNeg > recentPos && recentNeg > olderNeg:
		return "declining"
	default:
		return "stable"
	}
}
