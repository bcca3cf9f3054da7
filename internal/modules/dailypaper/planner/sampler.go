package planner

import (
	"math"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/catalog"
)

const (
	lowAccuracyThreshold = 40
	lowAccuracyBoost     = 1.35
	errorTrendBoost      = 1.15
	weakAreaMultiplier   = 1.5
)

type WeightedTopic struct {
	Topic  string  `json:"topic"`
	Weight float64 `json:"weight"`
}

// WeightTopics turns admin weights into the topic hint sent to the source.
// Topics without an admin weight get 1; non-positive weights drop the topic.
// If nothing survives, every topic gets weight 1.
func WeightTopics(subject catalog.Subject, topics []string, adminWeights map[string]float64, profile *AdaptiveProfile) []WeightedTopic {
	out := make([]WeightedTopic, 0, len(topics))
	for _, topic := range topics {
		w, ok := adminWeights[topic]
		if !ok {
			w = 1
		}
		if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			continue
		}
		out = append(out, WeightedTopic{Topic: topic, Weight: w})
	}
	if len(out) == 0 {
		for _, topic := range topics {
			out = append(out, WeightedTopic{Topic: topic, Weight: 1})
		}
	}
	if profile == nil {
		return out
	}

	for i := range out {
		stat, ok := profile.TopicStats[out[i].Topic]
		if !ok {
			continue
		}
		if stat.Accuracy != nil && *stat.Accuracy < lowAccuracyThreshold {
			out[i].Weight *= lowAccuracyBoost
		}
		if profile.PredictionMode && stat.ErrorTrend != nil && *stat.ErrorTrend > 0 {
			out[i].Weight *= errorTrendBoost
		}
	}
	if b := profile.WeakAreaBoost; b != nil && b.Enabled && b.Subject == string(subject) {
		for i := range out {
			if out[i].Topic == b.Topic {
				out[i].Weight *= weakAreaMultiplier
			}
		}
	}
	return out
}
