package model

import "time"

// Prediction is one stored classification together with the passenger
// attributes it was computed from.
type Prediction struct {
	ID          int64     `json:"id"`
	UserEmail   string    `json:"user_email"`
	Pclass      int       `json:"pclass"`
	Sex         string    `json:"sex"`
	Age         float64   `json:"age"`
	SibSp       int       `json:"sibsp"`
	Parch       int       `json:"parch"`
	Fare        float64   `json:"fare"`
	Embarked    string    `json:"embarked"`
	Result      string    `json:"result"`
	Probability float64   `json:"probability"`
	CreatedAt   time.Time `json:"created_at"`
}

// PredictionRequest represents a prediction request body.
// Pointer fields distinguish a missing field from an explicit zero.
type PredictionRequest struct {
	Pclass   *int     `json:"pclass"`
	Sex      *string  `json:"sex"`
	Age      *float64 `json:"age"`
	SibSp    *int     `json:"sibsp"`
	Parch    *int     `json:"parch"`
	Fare     *float64 `json:"fare"`
	Embarked *string  `json:"embarked"`
}

// PredictionResult is the response to a prediction request.
type PredictionResult struct {
	Result      string  `json:"result"`
	Probability float64 `json:"probability"`
}

// StatsResponse holds aggregate figures over all predictions.
type StatsResponse struct {
	TotalPredictions int64 `json:"total_predictions"`
	ModelAccuracy    int   `json:"model_accuracy"`
}
