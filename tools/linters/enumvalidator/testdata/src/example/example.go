package example

type ResolutionCategory string

const (
	ResolutionUpgrade    ResolutionCategory = "upgrade"
	ResolutionWorkaround ResolutionCategory = "workaround"
)

type Reason string

const (
	ReasonTimeout     Reason = "timeout"
	ReasonAuthFailure Reason = "auth_failure"
)

type AnalysisResult struct {
	Resolution ResolutionCategory
}

type Outcome struct {
	Reason Reason
}

func bad() {
	r := &AnalysisResult{}
	r.Resolution = "escalate" // want "enum field Resolution assigned string literal"

	o := &Outcome{}
	o.Reason = "network_down" // want "enum field Reason assigned string literal"
}

func badLiteral() {
	r := AnalysisResult{Resolution: "upgrade"} // want "enum field Resolution assigned string literal"
	_ = r
}

func good() {
	r := &AnalysisResult{}
	r.Resolution = ResolutionUpgrade // OK: using constant

	o := &Outcome{}
	o.Reason = ReasonTimeout // OK: using constant
}

func alsoGood() {
	// OK: Variable, not literal
	resolution := ResolutionWorkaround
	r := AnalysisResult{Resolution: resolution}
	_ = r
}
