package fixedfunc

// Pipeline is a built-in stage. payload is the data that triggered the
// current run; it is nil for timer runs.
type Pipeline interface {
	Name() string
	Run(payload []byte) error
}
