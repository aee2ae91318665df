package analysis

// Progress milestones are estimates: the final size of the response is unknown until it ends.
const (
	ProgressStarted      = 10
	ProgressStreamOpened = 30
	ProgressStep         = 10
	ProgressCap          = 90
	ProgressDone         = 100
)

// tracker reports monotonically non-decreasing progress values.
type tracker struct {
	notify  func(Update)
	current int
}

func newTracker(notify func(Update)) *tracker {
	if notify == nil {
		notify = func(Update) {}
	}
	return &tracker{notify: notify}
}

func (t *tracker) start() {
	t.report(ProgressStarted)
}

func (t *tracker) opened() {
	t.report(ProgressStreamOpened)
}

func (t *tracker) chunk() {
	t.report(min(t.current+ProgressStep, ProgressCap))
}

func (t *tracker) done(words []Candidate) {
	t.current = ProgressDone
	if words == nil {
		words = []Candidate{}
	}
	t.notify(Update{Progress: ProgressDone, Words: words, Done: true})
}

func (t *tracker) report(value int) {
	t.current = max(t.current, value)
	t.notify(Update{Progress: t.current})
}
