package core

// slot holds the outcome of one detector. A slot is written exactly once:
// either with an evaluated finding or with an unavailability reason.
type slot struct {
	finding *Finding
	reason  string
	written bool
}

// AnalysisContext is the per-request record flowing through the pipeline.
// The email input is immutable; each detector owns exactly one result slot.
// Slots are indexed by Category so concurrent detectors never contend.
type AnalysisContext struct {
	Email *Email

	slots [categoryCount]slot
}

// NewAnalysisContext creates a fresh context for one analysis request
func NewAnalysisContext(email *Email) *AnalysisContext {
	return &AnalysisContext{Email: email}
}

// SetFinding stores an evaluated finding in the category's slot.
// The first write wins; later writes are ignored so a slow detector
// completing after its timeout cannot overwrite the timeout marker.
func (c *AnalysisContext) SetFinding(cat Category, f *Finding) {
	if c.slots[cat].written {
		return
	}
	c.slots[cat] = slot{finding: f, written: true}
}

// SetUnavailable marks the category's slot as not evaluated
func (c *AnalysisContext) SetUnavailable(cat Category, reason string) {
	if c.slots[cat].written {
		return
	}
	c.slots[cat] = slot{reason: reason, written: true}
}

// Finding returns the evaluated finding for a category. ok is false when
// the slot is unavailable or was never written, with reason explaining why.
func (c *AnalysisContext) Finding(cat Category) (f *Finding, ok bool, reason string) {
	s := c.slots[cat]
	if !s.written {
		return nil, false, "not evaluated"
	}
	if s.finding == nil {
		return nil, false, s.reason
	}
	return s.finding, true, ""
}

// EvaluatedCount returns how many categories hold an evaluated finding
func (c *AnalysisContext) EvaluatedCount() int {
	n := 0
	for i := Category(0); i < categoryCount; i++ {
		if c.slots[i].written && c.slots[i].finding != nil {
			n++
		}
	}
	return n
}
