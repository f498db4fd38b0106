package model

type NoticeKind string

const (
	NoticeMessage NoticeKind = "message"
	NoticeError   NoticeKind = "error"
)

// Notice is something the form must show the user.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	Title     string     `json:"title,omitempty"`
	Indicator string     `json:"indicator,omitempty"`
	Alert     bool       `json:"alert,omitempty"`
}
