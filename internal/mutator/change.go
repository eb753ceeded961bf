package mutator

// Op is the kind of mutation planned for a config.
type Op string

const (
	// OpApply sets a dynamic per-broker value.
	OpApply Op = "apply"

	// OpRemove deletes the dynamic per-broker value.
	OpRemove Op = "remove"
)

// Status is the outcome of one planned change.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// RedactedValue replaces sensitive values in rendered results.
const RedactedValue = "*****"

// PlannedChange is one config mutation on one broker.
type PlannedChange struct {
	// NodeID is the broker the change targets.
	NodeID string `json:"broker_id" yaml:"broker_id"`

	// ConfigName is the config key.
	ConfigName string `json:"config_name" yaml:"config_name"`

	// Sensitive marks values that must be redacted when rendered.
	Sensitive bool `json:"sensitive" yaml:"sensitive"`

	// Op is apply or remove.
	Op Op `json:"op" yaml:"op"`

	// FromValue is the active value at validation time, nil when unknown.
	FromValue *string `json:"old_value" yaml:"old_value"`

	// ToValue is the value being set. Always nil for remove.
	ToValue *string `json:"new_value,omitempty" yaml:"new_value,omitempty"`
}

// ChangeResult is a PlannedChange with its outcome. Each result carries enough
// context to explain its outcome without asking the cluster again.
type ChangeResult struct {
	PlannedChange `yaml:",inline"`

	Status    Status    `json:"status" yaml:"status"`
	ErrorKind ErrorKind `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`

	// Cause is the underlying error for errors.Is checks. Not serialised.
	Cause error `json:"-" yaml:"-"`
}

func success(c PlannedChange) ChangeResult {
	return ChangeResult{PlannedChange: c, Status: StatusSuccess}
}

func failure(c PlannedChange, err error) ChangeResult {
	return ChangeResult{
		PlannedChange: c,
		Status:        StatusError,
		ErrorKind:     KindOf(err),
		Error:         err.Error(),
		Cause:         err,
	}
}

// Redact returns a copy of r with from/to values masked when r is sensitive.
// r itself is left untouched.
func Redact(r ChangeResult) ChangeResult {
	if !r.Sensitive {
		return r
	}
	if r.FromValue != nil {
		r.FromValue = strPtr(RedactedValue)
	}
	if r.ToValue != nil {
		r.ToValue = strPtr(RedactedValue)
	}
	return r
}

// RedactAll applies Redact to every result.
func RedactAll(results []ChangeResult) []ChangeResult {
	out := make([]ChangeResult, len(results))
	for i, r := range results {
		out[i] = Redact(r)
	}
	return out
}

// Outcome partitions a pass's results. Both lists are always present, even
// when every change failed.
type Outcome struct {
	Success []ChangeResult `json:"success" yaml:"success"`
	Errors  []ChangeResult `json:"errors" yaml:"errors"`
}

// Failed reports whether any change ended in error.
func (o *Outcome) Failed() bool {
	return len(o.Errors) > 0
}

// Merge appends other's results to o.
func (o *Outcome) Merge(other *Outcome) {
	if other == nil {
		return
	}
	o.Success = append(o.Success, other.Success...)
	o.Errors = append(o.Errors, other.Errors...)
}

func newOutcome() *Outcome {
	return &Outcome{Success: []ChangeResult{}, Errors: []ChangeResult{}}
}

func strPtr(s string) *string {
	return &s
}
