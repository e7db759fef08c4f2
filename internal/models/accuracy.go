package models

import "time"

// ModelAccuracy summarizes graded feedback for one model.
type ModelAccuracy struct {
	ModelType            ModelType `json:"model_type"`
	Graded               int       `json:"graded"`
	Correct              int       `json:"correct"`
	Accuracy             float64   `json:"accuracy"`               // 0-1
	MeanCalibrationError float64   `json:"mean_calibration_error"` // 0-100
	BrierScore           float64   `json:"brier_score"`
}

// AccuracyPoint is one day of one model's accuracy trend.
type AccuracyPoint struct {
	Day       time.Time `json:"day"`
	ModelType ModelType `json:"model_type"`
	Graded    uint64    `json:"graded"`
	Accuracy  float64   `json:"accuracy"`
}
