package ml

type Label string

const (
	LabelBenign Label = "BENIGN"
	LabelDDoS   Label = "DDoS"
	LabelError  Label = "Error"
)

// classLabels assumes the deployed model was trained with DDoS encoded as
// class 1. The model's own class list is not consulted.
var classLabels = map[int]Label{
	0: LabelBenign,
	1: LabelDDoS,
}

func LabelFromClassID(classID int) Label {
	if label, ok := classLabels[classID]; ok {
		return label
	}
	return LabelBenign
}
