package internal

const (
	MessageTypeDashboardState = "dashboard_state"
	MessageTypeSelectDate     = "select_date"
	MessageTypeError          = "error"
)

// ClientMessage is what the browser sends over the dashboard socket.
type ClientMessage struct {
	Type string `json:"type"`
	Date string `json:"date,omitempty"`
}

type ServerMessage struct {
	Type    string         `json:"type"`
	Data    *DashboardView `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
}

func NewStateMessage(view DashboardView) ServerMessage {
	return ServerMessage{Type: MessageTypeDashboardState, Data: &view}
}

func NewErrorMessage(message string) ServerMessage {
	return ServerMessage{Type: MessageTypeError, Message: message}
}
