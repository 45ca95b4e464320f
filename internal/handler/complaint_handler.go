package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"duvidha/internal/app/complaint"
	"duvidha/internal/pkg/errs"
	"duvidha/internal/pkg/req"
	"duvidha/internal/pkg/resp"
)

type CreateComplaintInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	RoomNumber  string `json:"roomNumber"`
}

type UpdateStatusInput struct {
	Status string `json:"status"`
}

type ComplaintResponse struct {
	Complaint complaint.Complaint `json:"complaint"`
}

type ComplaintListResponse struct {
	Complaints []complaint.Complaint `json:"complaints"`
}

// HandleCreateComplaint files a complaint owned by the caller.
func HandleCreateComplaint(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, _, ok := identity(r)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input CreateComplaintInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		input.Title = strings.TrimSpace(input.Title)
		input.Description = strings.TrimSpace(input.Description)
		var fields []errs.FieldError
		if input.Title == "" {
			fields = append(fields, errs.FieldError{Field: "title", Message: "Title is required"})
		}
		if input.Description == "" {
			fields = append(fields, errs.FieldError{Field: "description", Message: "Description is required"})
		}
		if len(fields) > 0 {
			resp.RespondError(w, r, errs.NewValidationError(fields))
			return
		}

		created, err := deps.Complaints.Create(r.Context(), complaint.Complaint{
			UserID:      owner,
			Title:       input.Title,
			Description: input.Description,
			Category:    strings.ToLower(strings.TrimSpace(input.Category)),
			RoomNumber:  strings.TrimSpace(input.RoomNumber),
		})
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondCreated(w, r, ComplaintResponse{Complaint: created})
	}
}

// HandleListComplaints lists the caller's complaints, or every complaint for maintainers.
func HandleListComplaints(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, role, ok := identity(r)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		filter := complaint.ListFilter{}
		if !role.IsMaintainer() {
			filter.UserID = &caller
		}

		list, err := deps.Complaints.List(r.Context(), filter)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondOK(w, r, ComplaintListResponse{Complaints: list})
	}
}

// HandleGetComplaint returns one complaint to its owner or a maintainer.
func HandleGetComplaint(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, role, ok := identity(r)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrComplaintNotFound))
			return
		}

		c, err := deps.Complaints.GetByID(r.Context(), id)
		if err != nil {
			resp.RespondError(w, r, complaintLookupError(err))
			return
		}

		if c.UserID != caller && !role.IsMaintainer() {
			resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
			return
		}

		resp.RespondOK(w, r, ComplaintResponse{Complaint: c})
	}
}

// HandleUpdateComplaintStatus moves a complaint through its lifecycle. Maintainers only.
func HandleUpdateComplaintStatus(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, role, ok := identity(r)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}
		if !role.IsMaintainer() {
			resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrComplaintNotFound))
			return
		}

		var input UpdateStatusInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		status, err := complaint.ParseStatus(input.Status)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrComplaintStatusInvalid, input.Status))
			return
		}

		updated, err := deps.Complaints.UpdateStatus(r.Context(), id, status)
		if err != nil {
			resp.RespondError(w, r, complaintLookupError(err))
			return
		}

		resp.RespondOK(w, r, ComplaintResponse{Complaint: updated})
	}
}

func complaintLookupError(err error) *errs.CustomError {
	if errors.Is(err, complaint.ErrNotFound) {
		return errs.NewError(errs.ErrComplaintNotFound)
	}
	return errs.NewError(errs.ErrUnknown, err)
}
