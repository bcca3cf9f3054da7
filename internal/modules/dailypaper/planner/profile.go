package planner

// TopicStat is the learner signal for one topic. Nil fields mean "unknown"
// and never trigger a boost.
type TopicStat struct {
	Accuracy   *float64 `json:"accuracy,omitempty"`
	ErrorTrend *float64 `json:"errorTrend,omitempty"`
}

type WeakAreaBoost struct {
	Enabled bool   `json:"enabled"`
	Subject string `json:"subject"`
	Topic   string `json:"topic"`
}

// AdaptiveProfile biases difficulty and topic weighting for a run. It is an
// input only and is never persisted.
type AdaptiveProfile struct {
	OverallAccuracy            *float64             `json:"overallAccuracy,omitempty"`
	AverageResponseTimeSeconds *float64             `json:"averageResponseTimeSeconds,omitempty"`
	EliteMode                  bool                 `json:"eliteMode"`
	PredictionMode             bool                 `json:"predictionMode"`
	WeakAreaBoost              *WeakAreaBoost       `json:"weakAreaBoost,omitempty"`
	TopicStats                 map[string]TopicStat `json:"topicStats,omitempty"`
}

func Float(v float64) *float64 { return &v }
