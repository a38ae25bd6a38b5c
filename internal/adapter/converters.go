package adapter

import (
	"fmt"

	"motoassist/internal/api"
	"motoassist/internal/domain/chatModel"
	"motoassist/internal/domain/jobModel"
)

func ToTurnRecords(turns []chatModel.ConversationTurn) []api.TurnRecord {
	records := make([]api.TurnRecord, 0, len(turns))
	for _, turn := range turns {
		records = append(records, api.TurnRecord{
			Id:        turn.Id,
			UserID:    turn.UserId,
			ThreadID:  turn.ThreadId,
			Req:       turn.Request,
			Res:       turn.Response,
			Timestamp: turn.Timestamp,
		})
	}
	return records
}

func ToChatHistoryEntries(turns []chatModel.ConversationTurn) []api.ChatHistoryEntry {
	entries := make([]api.ChatHistoryEntry, 0, len(turns))
	for _, turn := range turns {
		entries = append(entries, api.ChatHistoryEntry{
			Req: turn.Request,
			Res: turn.Response,
		})
	}
	return entries
}

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToJobResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.ErrorResponse
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.ErrorResponse{
			Code:    job.Error.Code,
			Message: job.Error.Message,
		}
	}

	return api.JobResponse{
		Id:            job.Id,
		Status:        string(job.Status),
		CurrentStep:   string(job.CurrentStep),
		PagesUploaded: job.PagesUploaded,
		PagesFailed:   job.PagesFailed,
		Error:         errorPtr,
		StartTime:     job.CreatedTime,
		EndTime:       job.EndTime,
	}
}
