package api

import "time"

// requests---------------------

type AskRequest struct {
	UserID   string `json:"user_id" validate:"required" example:"u1"`
	Thread   string `json:"thread,omitempty" example:"engine-trouble"`
	Question string `json:"question" validate:"required" example:"My 1975 engine won't start"`
}

type ChatHistoryRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// responses--------------------

type WelcomeResponse struct {
	Message string `json:"message" example:"Hello, welcome to the API :)"`
}

type AskResponse struct {
	Response string   `json:"response"`
	Images   []string `json:"images"`
}

// TurnRecord is one persisted exchange as exposed on the history endpoints,
// most-recent-first.
type TurnRecord struct {
	Id        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ThreadID  string    `json:"thread_id,omitempty"`
	Req       string    `json:"req"`
	Res       string    `json:"res"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatHistoryEntry is the reduced shape served by /getchathistory.
type ChatHistoryEntry struct {
	Req string `json:"req"`
	Res string `json:"res"`
}

type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"question is required"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type JobResponse struct {
	Id            string         `json:"id" example:"job_cz109"`
	Status        string         `json:"status"`
	CurrentStep   string         `json:"current_step"`
	PagesUploaded int            `json:"pages_uploaded"`
	PagesFailed   int            `json:"pages_failed"`
	Error         *ErrorResponse `json:"error,omitempty"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       time.Time      `json:"end_time,omitempty"`
}
