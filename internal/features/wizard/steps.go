package wizard

// Step is a position in the report wizard.
type Step int

const (
	StepIndustry Step = iota
	StepReportType
	StepAudiencePurpose
	StepToneDepth
	StepDataInputs
	StepReview
)

// StepCount is the number of wizard steps.
const StepCount = int(StepReview) + 1

var stepNames = [StepCount]string{
	"Industry",
	"Report Type",
	"Audience & Purpose",
	"Tone & Depth",
	"Data Inputs",
	"Review & Generate",
}

func (s Step) String() string {
	if s < 0 || int(s) >= StepCount {
		return "Unknown"
	}
	return stepNames[s]
}

// Steps lists every step in order.
func Steps() []Step {
	steps := make([]Step, StepCount)
	for i := range steps {
		steps[i] = Step(i)
	}
	return steps
}

// missing lists the selections step still lacks. Data inputs are optional and
// the review step is never "complete", it only generates.
func (s Step) missing(d *Draft) []string {
	var out []string
	switch s {
	case StepIndustry:
		if d.Industry == "" {
			out = append(out, "industry")
		}
	case StepReportType:
		if d.ReportType == "" {
			out = append(out, "reportType")
		}
	case StepAudiencePurpose:
		if d.Audience == "" {
			out = append(out, "audience")
		}
		if d.Purpose == "" {
			out = append(out, "purpose")
		}
	case StepToneDepth:
		if d.Tone == "" {
			out = append(out, "tone")
		}
		if d.Depth == "" {
			out = append(out, "depth")
		}
	case StepDataInputs:
	case StepReview:
		out = append(out, "generate")
	}
	return out
}
