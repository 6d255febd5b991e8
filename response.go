package pokerorchestrator

type ResponseType string

const (
	ResponseType_TableCreated    ResponseType = "table_created"
	ResponseType_TableState      ResponseType = "table_state"
	ResponseType_HandFinished    ResponseType = "hand_finished"
	ResponseType_TournamentState ResponseType = "tournament_state"
	ResponseType_Error           ResponseType = "error"
)

// CommandResponse is the single response value every command produces. Errors
// are carried as values; Execute never propagates a failure to the caller.
type CommandResponse struct {
	Type        ResponseType    `json:"type"`
	Table       *TableView      `json:"table,omitempty"`
	Tournament  *TournamentView `json:"tournament,omitempty"`
	HandSummary *HandSummary    `json:"hand_summary,omitempty"`
	Message     string          `json:"message,omitempty"`
}

func newTableCreatedResponse(view *TableView) CommandResponse {
	return CommandResponse{Type: ResponseType_TableCreated, Table: view}
}

func newTableStateResponse(view *TableView) CommandResponse {
	return CommandResponse{Type: ResponseType_TableState, Table: view}
}

func newHandFinishedResponse(view *TableView, summary *HandSummary) CommandResponse {
	return CommandResponse{Type: ResponseType_HandFinished, Table: view, HandSummary: summary}
}

func newTournamentStateResponse(view *TournamentView) CommandResponse {
	return CommandResponse{Type: ResponseType_TournamentState, Tournament: view}
}

func newErrorResponse(err error) CommandResponse {
	return CommandResponse{Type: ResponseType_Error, Message: err.Error()}
}

// HandSummary describes a finished hand for the hand-finished response.
type HandSummary struct {
	HandID  uint64         `json:"hand_id"`
	GameID  string         `json:"game_id"`
	TableID TableID        `json:"table_id"`
	Winners []HandWinner   `json:"winners"`
	History []HandLogEntry `json:"history"`
}

type HandWinner struct {
	PlayerID PlayerID `json:"player_id"`
	Seat     int      `json:"seat"`
	Amount   int64    `json:"amount"`
}
