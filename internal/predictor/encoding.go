package predictor

// Vector is the numeric input row fed to the classifier, in FeatureOrder.
type Vector [7]float64

// FeatureOrder is the column order the artifact was trained on.
var FeatureOrder = [...]string{"Pclass", "Sex", "Age", "SibSp", "Parch", "Fare", "Embarked"}

// Features describes one passenger.
type Features struct {
	Pclass   int
	Sex      string
	Age      float64
	SibSp    int
	Parch    int
	Fare     float64
	Embarked string
}

// EncodingTable maps categorical passenger attributes to the numeric codes
// fixed at training time.
type EncodingTable struct {
	Version         int
	Sex             map[string]float64
	SexDefault      float64
	Embarked        map[string]float64
	EmbarkedDefault float64
}

// EncodingV1 matches the label encoders used when the bundled artifact was
// trained: male=1 / female=0, S=0 / C=1 / Q=2.
var EncodingV1 = EncodingTable{
	Version:         1,
	Sex:             map[string]float64{"male": 1},
	SexDefault:      0,
	Embarked:        map[string]float64{"S": 0, "C": 1, "Q": 2},
	EmbarkedDefault: 0,
}

// Encode converts f into a Vector. Unrecognized categories fall back to the
// table defaults.
func (t EncodingTable) Encode(f Features) Vector {
	sex, ok := t.Sex[f.Sex]
	if !ok {
		sex = t.SexDefault
	}

	embarked, ok := t.Embarked[f.Embarked]
	if !ok {
		embarked = t.EmbarkedDefault
	}

	return Vector{
		float64(f.Pclass),
		sex,
		f.Age,
		float64(f.SibSp),
		float64(f.Parch),
		f.Fare,
		embarked,
	}
}
