package protocol

// Annotation is one decoded event spanning [Start, End] in sample indices.
// Labels run from the longest form to the shortest.
type Annotation struct {
	Category Category `json:"category"`
	Start    uint64   `json:"start"`
	End      uint64   `json:"end"`
	Labels   []string `json:"labels"`
}

func (a Annotation) Row() Row {
	return a.Category.Row()
}

// Long returns the most descriptive label.
func (a Annotation) Long() string {
	if len(a.Labels) == 0 {
		return ""
	}
	return a.Labels[0]
}

// Short returns the most compact label.
func (a Annotation) Short() string {
	if len(a.Labels) == 0 {
		return ""
	}
	return a.Labels[len(a.Labels)-1]
}

// Sink receives annotations in stream order.
type Sink interface {
	Put(a Annotation)
}

// TransactionSink is implemented by sinks that also want fully formed
// transactions. Partial transactions are never delivered.
type TransactionSink interface {
	PutTransaction(tx Transaction)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(a Annotation)

func (f SinkFunc) Put(a Annotation) {
	f(a)
}

// Collector buffers everything it receives.
type Collector struct {
	Annotations  []Annotation  `json:"annotations"`
	Transactions []Transaction `json:"transactions"`
}

func (c *Collector) Put(a Annotation) {
	c.Annotations = append(c.Annotations, a)
}

func (c *Collector) PutTransaction(tx Transaction) {
	c.Transactions = append(c.Transactions, tx)
}

// Filter returns the collected annotations of the given categories, in order.
func (c *Collector) Filter(cats ...Category) []Annotation {
	out := make([]Annotation, 0)
	for _, a := range c.Annotations {
		for _, cat := range cats {
			if a.Category == cat {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// Categories returns the category of every collected annotation, in order.
func (c *Collector) Categories() []Category {
	out := make([]Category, 0, len(c.Annotations))
	for _, a := range c.Annotations {
		out = append(out, a.Category)
	}
	return out
}
