package model

import "resumebuilder/store"

type LoginRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LoginResponse struct {
	Token string        `json:"token"`
	User  store.UserRef `json:"user"`
}

type CreateResumeRequest struct {
	Title string `json:"title"`
}

// ResumeSummary is one row of the dashboard list.
type ResumeSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	UpdatedAt    string `json:"updatedAt"`
	SectionCount int    `json:"sectionCount"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Summarize(docs []store.Document) []ResumeSummary {
	out := make([]ResumeSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, ResumeSummary{
			ID:           d.ID,
			Title:        d.Title,
			UpdatedAt:    d.UpdatedAt.Format("2006-01-02"),
			SectionCount: len(d.Sections),
		})
	}
	return out
}
