package tracker

// NoticeLevel tells the presentation layer how to style a notice.
type NoticeLevel int

const (
	NoticeSuccess NoticeLevel = iota
	NoticeError
)

func (l NoticeLevel) String() string {
	if l == NoticeError {
		return "error"
	}
	return "success"
}

// Notice is a short, non-fatal message about the outcome of an operation.
type Notice struct {
	Level   NoticeLevel
	Title   string
	Message string
}

// Notifier receives notices. It may be called from any goroutine.
type Notifier func(Notice)
